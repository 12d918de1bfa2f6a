package systems

import (
	"github.com/gonewx/starfield/pkg/camera"
	"github.com/gonewx/starfield/pkg/input"
)

// LookSettings 鼠标视角参数
type LookSettings struct {
	Speed       float32 // 每像素旋转的弧度
	Sensitivity float32 // 用户设置的倍率
	InvertY     bool
}

// CameraSystem 根据输入更新主摄像机，并刷新两个摄像机的矩阵
// 俯视小地图摄像机位置固定，只刷新视图矩阵
type CameraSystem struct {
	main    *camera.Camera
	minimap *camera.Camera
}

// NewCameraSystem 创建摄像机系统
func NewCameraSystem(main, minimap *camera.Camera) *CameraSystem {
	return &CameraSystem{main: main, minimap: minimap}
}

// Update 拖拽指针旋转视角，移动键平移，重置键回到初始位置
func (cs *CameraSystem) Update(dt float32, in *input.EdgeTracker, look LookSettings) {
	if in != nil {
		if in.PointerDown() && !in.PointerJustPressed() {
			d := in.CursorDelta()
			k := look.Speed * look.Sensitivity
			dy := float32(d.Y)
			if look.InvertY {
				dy = -dy
			}
			// 向右拖动转向屏幕右侧（右手坐标系中偏航角减小），向下拖动俯视
			cs.main.Rotate(dy*k, -float32(d.X)*k)
		}

		var mv camera.MoveInput
		mv.Forward = axis(in.Down(input.ActionMoveForward), in.Down(input.ActionMoveBack))
		mv.Right = axis(in.Down(input.ActionMoveRight), in.Down(input.ActionMoveLeft))
		mv.Up = axis(in.Down(input.ActionMoveUp), in.Down(input.ActionMoveDown))
		cs.main.SetMoveInput(mv)

		if in.JustPressed(input.ActionResetCamera) {
			cs.main.Reset()
		}
	}

	cs.main.Update(dt)
	cs.minimap.Update(dt)
}

func axis(pos, neg bool) float32 {
	var v float32
	if pos {
		v++
	}
	if neg {
		v--
	}
	return v
}
