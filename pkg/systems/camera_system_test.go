package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gonewx/starfield/pkg/camera"
	"github.com/gonewx/starfield/pkg/input"
	"github.com/stretchr/testify/assert"
)

func newTestCameras() (*camera.Camera, *camera.Camera) {
	main := camera.New(mgl32.Vec3{0, 0, 0}, camera.DefaultOptions())
	opts := camera.DefaultOptions()
	opts.Movable = false
	minimap := camera.New(mgl32.Vec3{0, 60, 0}, opts)
	return main, minimap
}

func TestCameraSystem_DragRotates(t *testing.T) {
	main, minimap := newTestCameras()
	cs := NewCameraSystem(main, minimap)
	svc := input.NewScriptedService()
	tr := input.NewEdgeTracker()
	look := LookSettings{Speed: 0.01, Sensitivity: 1}

	svc.MoveCursor(100, 100)
	svc.Pointer = true
	tr.Poll(svc)
	cs.Update(0, tr, look)
	assert.Equal(t, float32(0), main.Yaw(), "按下的那一帧不旋转")

	svc.MoveCursor(110, 120)
	tr.Poll(svc)
	cs.Update(0, tr, look)
	assert.InDelta(t, -0.1, main.Yaw(), 1e-6, "向右拖动偏航角减小")
	assert.InDelta(t, 0.2, main.Pitch(), 1e-6)

	// 松开后不再旋转
	svc.Pointer = false
	svc.MoveCursor(200, 200)
	tr.Poll(svc)
	cs.Update(0, tr, look)
	assert.InDelta(t, -0.1, main.Yaw(), 1e-6)
}

func TestCameraSystem_InvertY(t *testing.T) {
	main, minimap := newTestCameras()
	cs := NewCameraSystem(main, minimap)
	svc := input.NewScriptedService()
	tr := input.NewEdgeTracker()

	svc.Pointer = true
	tr.Poll(svc)
	svc.MoveCursor(0, 10)
	tr.Poll(svc)
	cs.Update(0, tr, LookSettings{Speed: 0.01, Sensitivity: 2, InvertY: true})
	assert.InDelta(t, -0.2, main.Pitch(), 1e-6)
}

func TestCameraSystem_MoveAndReset(t *testing.T) {
	main, minimap := newTestCameras()
	cs := NewCameraSystem(main, minimap)
	svc := input.NewScriptedService()
	tr := input.NewEdgeTracker()

	svc.Press(input.ActionMoveForward)
	tr.Poll(svc)
	cs.Update(1, tr, LookSettings{})
	assert.InDelta(t, 5, main.Position().Z(), 1e-5, "沿 +Z 前进 MoveSpeed")
	assert.Equal(t, mgl32.Vec3{0, 60, 0}, minimap.Position(), "小地图摄像机不移动")

	svc.Release(input.ActionMoveForward)
	svc.Press(input.ActionResetCamera)
	tr.Poll(svc)
	cs.Update(1, tr, LookSettings{})
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, main.Position())
}

func TestAxis(t *testing.T) {
	assert.Equal(t, float32(1), axis(true, false))
	assert.Equal(t, float32(-1), axis(false, true))
	assert.Equal(t, float32(0), axis(true, true))
	assert.Equal(t, float32(0), axis(false, false))
}
