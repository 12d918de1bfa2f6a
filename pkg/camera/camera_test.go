package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertMatEqual(t *testing.T, want, got mgl32.Mat4) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-5), "want\n%v\ngot\n%v", want, got)
}

// TestRotateZero_LooksAlongPlusZ 零旋转时观察方向为世界 +Z
func TestRotateZero_LooksAlongPlusZ(t *testing.T) {
	eye := mgl32.Vec3{0, 5, -15}
	c := New(eye, DefaultOptions())

	c.Rotate(0, 0)
	c.UpdateViewMatrix()

	want := mgl32.LookAtV(eye, eye.Add(mgl32.Vec3{0, 0, 1}), mgl32.Vec3{0, 1, 0})
	assertMatEqual(t, want, c.View())
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, c.Forward())
}

func TestRotate_PitchClamped(t *testing.T) {
	tests := []struct {
		name  string
		delta float32
		want  float32
	}{
		{"向上超过 90°", math.Pi, MaxPitch},
		{"向下超过 90°", -math.Pi, -MaxPitch},
		{"范围内", 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(mgl32.Vec3{}, DefaultOptions())
			c.Rotate(tt.delta, 0)
			assert.InDelta(t, tt.want, c.Pitch(), 1e-6)

			c.UpdateViewMatrix()
			for i := 0; i < 16; i++ {
				assert.False(t, math.IsNaN(float64(c.View()[i])))
			}
		})
	}
}

func TestRotate_Accumulates(t *testing.T) {
	c := New(mgl32.Vec3{}, DefaultOptions())
	c.Rotate(0.1, 0.2)
	c.Rotate(0.1, 0.2)
	assert.InDelta(t, 0.2, c.Pitch(), 1e-6)
	assert.InDelta(t, 0.4, c.Yaw(), 1e-6)

	// 偏航 90° 后看向 +X
	c.SetRotation(0, math.Pi/2)
	c.UpdateViewMatrix()
	assert.InDelta(t, 1, c.Forward().X(), 1e-5)
	assert.InDelta(t, 0, c.Forward().Z(), 1e-5)
}

// TestRightMatchesScreen 右向量经过视图矩阵后指向观察空间 +X
func TestRightMatchesScreen(t *testing.T) {
	c := New(mgl32.Vec3{1, 2, 3}, DefaultOptions())
	c.SetRotation(0.3, -1.1)
	c.UpdateViewMatrix()

	r := c.View().Mul4x1(c.Right().Vec4(0)).Vec3()
	u := c.View().Mul4x1(c.Up().Vec4(0)).Vec3()
	assert.InDelta(t, 1, r.X(), 1e-5)
	assert.InDelta(t, 1, u.Y(), 1e-5)
}

func TestUpdate_MovesAlongInput(t *testing.T) {
	opts := DefaultOptions()
	opts.MoveSpeed = 2
	c := New(mgl32.Vec3{0, 5, -15}, opts)

	c.SetMoveInput(MoveInput{Forward: 1})
	c.Update(0.5)
	assert.InDelta(t, -14, c.Position().Z(), 1e-5)

	// 输入只作用一次
	c.Update(0.5)
	assert.InDelta(t, -14, c.Position().Z(), 1e-5)

	c.Reset()
	assert.Equal(t, mgl32.Vec3{0, 5, -15}, c.Position())
}

func TestUpdate_FixedCameraIgnoresInput(t *testing.T) {
	opts := DefaultOptions()
	opts.Movable = false
	c := New(mgl32.Vec3{0, 60, 0}, opts)
	c.SetMoveInput(MoveInput{Forward: 1, Right: 1})
	c.Update(1)
	assert.Equal(t, mgl32.Vec3{0, 60, 0}, c.Position())
}

// TestUpdateProjectionMatrix_Resize 尺寸变化后必须重新计算投影，否则保留旧的宽高比
func TestUpdateProjectionMatrix_Resize(t *testing.T) {
	opts := DefaultOptions()
	c := New(mgl32.Vec3{}, opts)

	c.UpdateProjectionMatrix(800.0 / 600.0)
	stale := c.Projection()

	c.UpdateProjectionMatrix(1920.0 / 1080.0)
	want := mgl32.Perspective(opts.FieldOfView, 1920.0/1080.0, opts.Near, opts.Far)
	assertMatEqual(t, want, c.Projection())
	assert.False(t, stale.ApproxEqualThreshold(c.Projection(), 1e-6))

	c.UpdateProjectionMatrix(0)
	assertMatEqual(t, want, c.Projection())
	assert.InDelta(t, 1920.0/1080.0, c.Aspect(), 1e-6)
}

// TestSkyView_IgnoresTranslation 天空盒视图与摄像机位置无关
func TestSkyView_IgnoresTranslation(t *testing.T) {
	a := New(mgl32.Vec3{0, 0, 0}, DefaultOptions())
	b := New(mgl32.Vec3{100, -20, 50}, DefaultOptions())
	a.SetRotation(0.2, 0.7)
	b.SetRotation(0.2, 0.7)
	a.UpdateViewMatrix()
	b.UpdateViewMatrix()

	assert.False(t, a.View().ApproxEqualThreshold(b.View(), 1e-4))
	assertMatEqual(t, a.SkyView(), b.SkyView())
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, b.SkyView().Col(3))
}
