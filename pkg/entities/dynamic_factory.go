package entities

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gonewx/starfield/pkg/config"
)

// NewAsteroidEntity 创建小行星的渲染实体
//
// 参数:
//   - rm: 资源加载器
//   - position: 初始位置
//   - scale: 类别缩放（均匀）
//
// 返回:
//   - *GameEntity: 已计算世界矩阵的实体
//   - error: 网格或材质缺失
func NewAsteroidEntity(rm ResourceLoader, position mgl32.Vec3, scale float32) (*GameEntity, error) {
	mesh, material, err := loadPair(rm, config.MeshSphere, config.MaterialAsteroid)
	if err != nil {
		return nil, fmt.Errorf("failed to create asteroid entity: %w", err)
	}
	e := NewGameEntity(mesh, material)
	e.Name = "asteroid"
	e.Transform.SetPosition(position.X(), position.Y(), position.Z())
	e.Transform.SetScale(scale, scale, scale)
	e.Transform.UpdateWorldMatrix()
	return e, nil
}

// NewProjectileEntity 创建子弹的渲染实体
func NewProjectileEntity(rm ResourceLoader, position mgl32.Vec3, scale float32) (*GameEntity, error) {
	mesh, material, err := loadPair(rm, config.MeshSphere, config.MaterialProjectile)
	if err != nil {
		return nil, fmt.Errorf("failed to create projectile entity: %w", err)
	}
	e := NewGameEntity(mesh, material)
	e.Name = "projectile"
	e.Transform.SetPosition(position.X(), position.Y(), position.Z())
	e.Transform.SetScale(scale, scale, scale)
	e.Transform.UpdateWorldMatrix()
	return e, nil
}
