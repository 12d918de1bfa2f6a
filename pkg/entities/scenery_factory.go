package entities

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gonewx/starfield/pkg/config"
)

// NewPlanetEntity 场景中央的静态星球
func NewPlanetEntity(rm ResourceLoader, position mgl32.Vec3, radius float32) (*GameEntity, error) {
	mesh, material, err := loadPair(rm, config.MeshPlanet, config.MaterialPlanet)
	if err != nil {
		return nil, fmt.Errorf("failed to create planet entity: %w", err)
	}
	e := NewGameEntity(mesh, material)
	e.Name = "planet"
	e.Transform.SetPosition(position.X(), position.Y(), position.Z())
	// 星球网格是单位球
	e.Transform.SetScale(radius, radius, radius)
	e.Transform.UpdateWorldMatrix()
	return e, nil
}

// NewSkyboxEntity 天空盒实体；世界矩阵保持单位阵，绘制时只使用去平移的视图矩阵
func NewSkyboxEntity(rm ResourceLoader) (*GameEntity, error) {
	mesh, material, err := loadPair(rm, config.MeshSkybox, config.MaterialSky)
	if err != nil {
		return nil, fmt.Errorf("failed to create skybox entity: %w", err)
	}
	e := NewGameEntity(mesh, material)
	e.Name = "skybox"
	e.Transform.UpdateWorldMatrix()
	return e, nil
}

// NewMinimapMarker 小地图上标记玩家位置的实体，只在小地图通道绘制
func NewMinimapMarker(rm ResourceLoader, scale float32, tint color.RGBA) (*GameEntity, error) {
	mesh, material, err := loadPair(rm, config.MeshMarker, config.MaterialMarker)
	if err != nil {
		return nil, fmt.Errorf("failed to create minimap marker: %w", err)
	}
	e := NewGameEntity(mesh, material)
	e.Name = "minimap_marker"
	e.MinimapOnly = true
	e.Tint = &tint
	e.Transform.SetScale(scale, scale, scale)
	e.Transform.UpdateWorldMatrix()
	return e, nil
}
