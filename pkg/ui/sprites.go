// Package ui 屏幕空间精灵服务与主菜单按钮
package ui

import (
	"github.com/gonewx/starfield/pkg/gfx"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// SpriteService 屏幕空间绘制服务，与摄像机无关
type SpriteService interface {
	DrawSprite(tex gfx.TextureID, x, y int)
	DrawText(text string, x, y int)
}

// TextureSource 按句柄查找已上传的纹理图像
type TextureSource interface {
	Image(id gfx.TextureID) *ebiten.Image
}

// EbitenSprites 直接绘制到 Ebitengine 屏幕
type EbitenSprites struct {
	textures TextureSource
	target   *ebiten.Image
}

// NewEbitenSprites 创建精灵服务
func NewEbitenSprites(textures TextureSource) *EbitenSprites {
	return &EbitenSprites{textures: textures}
}

// SetTarget 设置本帧的绘制目标
func (s *EbitenSprites) SetTarget(screen *ebiten.Image) {
	s.target = screen
}

func (s *EbitenSprites) DrawSprite(tex gfx.TextureID, x, y int) {
	if s.target == nil {
		return
	}
	img := s.textures.Image(tex)
	if img == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	s.target.DrawImage(img, op)
}

func (s *EbitenSprites) DrawText(text string, x, y int) {
	if s.target == nil {
		return
	}
	ebitenutil.DebugPrintAt(s.target, text, x, y)
}

// SpriteCall 一次被记录的绘制
type SpriteCall struct {
	Texture gfx.TextureID
	Text    string
	X, Y    int
}

// RecordingSprites 只记录调用，用于无窗口运行和测试
type RecordingSprites struct {
	Calls []SpriteCall
}

func (s *RecordingSprites) DrawSprite(tex gfx.TextureID, x, y int) {
	s.Calls = append(s.Calls, SpriteCall{Texture: tex, X: x, Y: y})
}

func (s *RecordingSprites) DrawText(text string, x, y int) {
	s.Calls = append(s.Calls, SpriteCall{Text: text, X: x, Y: y})
}

// Reset 清空记录
func (s *RecordingSprites) Reset() {
	s.Calls = s.Calls[:0]
}
