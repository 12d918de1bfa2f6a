package entities

import (
	"image/color"

	"github.com/gonewx/starfield/pkg/components"
	"github.com/gonewx/starfield/pkg/gfx"
)

// GameEntity 可渲染实体
// 独占一个 Transform，网格和材质只是引用（由 ResourceManager 持有）
type GameEntity struct {
	Name      string
	Transform components.Transform
	Mesh      *gfx.Mesh
	Material  *gfx.Material

	// MinimapOnly 只在小地图中绘制（玩家位置标记）
	MinimapOnly bool
	// Tint 非 nil 时覆盖材质颜色
	Tint *color.RGBA
}

// NewGameEntity 创建位于原点、单位缩放的实体
func NewGameEntity(mesh *gfx.Mesh, material *gfx.Material) *GameEntity {
	return &GameEntity{
		Transform: components.NewTransform(),
		Mesh:      mesh,
		Material:  material,
	}
}
