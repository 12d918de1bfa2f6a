// Package input 输入服务契约与逐帧按键沿跟踪
//
// 核心只消费布尔值和坐标，不处理原始设备事件。
// 一次性动作（切换开火模式、退出）使用按下沿而不是按键状态，
// 沿状态由 EdgeTracker 保存，不使用函数内静态变量。
package input

// Action 游戏动作
type Action int

const (
	ActionFire Action = iota
	ActionToggleFireMode
	ActionToggleMinimap
	ActionQuit
	ActionMoveForward
	ActionMoveBack
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionResetCamera

	actionCount
)

var actionNames = [...]string{
	ActionFire:           "fire",
	ActionToggleFireMode: "toggle_fire_mode",
	ActionToggleMinimap:  "toggle_minimap",
	ActionQuit:           "quit",
	ActionMoveForward:    "move_forward",
	ActionMoveBack:       "move_back",
	ActionMoveLeft:       "move_left",
	ActionMoveRight:      "move_right",
	ActionMoveUp:         "move_up",
	ActionMoveDown:       "move_down",
	ActionResetCamera:    "reset_camera",
}

func (a Action) String() string {
	if a >= 0 && a < actionCount {
		return actionNames[a]
	}
	return "unknown"
}

// Service 输入服务
type Service interface {
	// CursorPosition 指针位置（屏幕像素）
	CursorPosition() (x, y int)
	// PointerDown 主按钮（鼠标左键或触摸）是否按下
	PointerDown() bool
	// ActionDown 动作对应的按键是否按下
	ActionDown(a Action) bool
}
