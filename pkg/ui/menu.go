package ui

import (
	"image"

	"github.com/gonewx/starfield/pkg/gfx"
)

// 按钮尺寸（像素），与 ResourceManager 生成的按钮纹理一致
const (
	ButtonWidth  = 200
	ButtonHeight = 60
	buttonGap    = 24
)

// Button 矩形按钮
type Button struct {
	Label   string
	Bounds  image.Rectangle
	Texture gfx.TextureID
}

// Contains 点是否落在按钮内
func (b *Button) Contains(p image.Point) bool {
	return p.In(b.Bounds)
}

// Draw 绘制按钮底图和文字
func (b *Button) Draw(s SpriteService) {
	s.DrawSprite(b.Texture, b.Bounds.Min.X, b.Bounds.Min.Y)
	// DebugPrint 字宽 6 像素、字高 16 像素
	tx := b.Bounds.Min.X + (b.Bounds.Dx()-len(b.Label)*6)/2
	ty := b.Bounds.Min.Y + (b.Bounds.Dy()-16)/2
	s.DrawText(b.Label, tx, ty)
}

// MenuChoice 主菜单点击结果
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoicePlay
	ChoiceQuit
)

// MainMenu 主菜单：Play / Quit 两个按钮，垂直居中
type MainMenu struct {
	Title string
	Play  Button
	Quit  Button
}

// NewMainMenu 按屏幕尺寸布局主菜单
func NewMainMenu(title string, playTex, quitTex gfx.TextureID, screenW, screenH int) *MainMenu {
	m := &MainMenu{
		Title: title,
		Play:  Button{Label: "PLAY", Texture: playTex},
		Quit:  Button{Label: "QUIT", Texture: quitTex},
	}
	m.Layout(screenW, screenH)
	return m
}

// Layout 屏幕尺寸变化时重新居中
func (m *MainMenu) Layout(screenW, screenH int) {
	x := (screenW - ButtonWidth) / 2
	y := screenH/2 - ButtonHeight - buttonGap/2
	m.Play.Bounds = image.Rect(x, y, x+ButtonWidth, y+ButtonHeight)
	y += ButtonHeight + buttonGap
	m.Quit.Bounds = image.Rect(x, y, x+ButtonWidth, y+ButtonHeight)
}

// Hit 判断点击落在哪个按钮上
func (m *MainMenu) Hit(p image.Point) MenuChoice {
	switch {
	case m.Play.Contains(p):
		return ChoicePlay
	case m.Quit.Contains(p):
		return ChoiceQuit
	default:
		return ChoiceNone
	}
}

// Draw 绘制标题和按钮
func (m *MainMenu) Draw(s SpriteService) {
	s.DrawText(m.Title, m.Play.Bounds.Min.X+(ButtonWidth-len(m.Title)*6)/2, m.Play.Bounds.Min.Y-48)
	m.Play.Draw(s)
	m.Quit.Draw(s)
}
