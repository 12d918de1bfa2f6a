package game

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrQuit 场景请求结束进程；App 将其转换为 ebiten.Termination
var ErrQuit = errors.New("quit requested")

// Scene 游戏场景
// Update 完整结束后才会调用 Draw
type Scene interface {
	// Update 推进一帧，deltaTime 单位为秒
	// 只会返回 ErrQuit
	Update(deltaTime float64) error

	// Draw 绘制到 screen；headless 运行时 screen 为 nil
	Draw(screen *ebiten.Image)
}

// Resizable 可选接口：窗口尺寸变化时需要重建投影矩阵的场景
type Resizable interface {
	OnResize(width, height int)
}

// Saveable 可选接口，用于在退出时保存用户设置
//
// 实现此接口的场景会在以下时机被调用 SaveOnExit()：
//   - 游戏窗口关闭
//   - 场景返回 ErrQuit
type Saveable interface {
	// SaveOnExit 返回 true 表示保存成功或无需保存
	SaveOnExit() bool
}
