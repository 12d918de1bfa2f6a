package components

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

// TestUpdateWorldMatrix_Translation 只设置位置时，平移位于世界矩阵第 3 列
func TestUpdateWorldMatrix_Translation(t *testing.T) {
	positions := []mgl32.Vec3{{0, 0, 0}, {1, 2, 3}, {-4.5, 0.25, 100}}
	for _, p := range positions {
		tr := NewTransform()
		tr.SetPosition(p.X(), p.Y(), p.Z())
		tr.UpdateWorldMatrix()
		assert.Equal(t, p.Vec4(1), tr.WorldMatrix().Col(3))
	}
}

func TestUpdateWorldMatrix_NotAutoDirtied(t *testing.T) {
	tr := NewTransform()
	tr.SetPosition(1, 1, 1)
	assert.Equal(t, mgl32.Ident4(), tr.WorldMatrix(), "修改后未调用 UpdateWorldMatrix 时矩阵不变")

	tr.UpdateWorldMatrix()
	assert.NotEqual(t, mgl32.Ident4(), tr.WorldMatrix())
}

// TestUpdateWorldMatrix_Order 先缩放、再旋转、最后平移
func TestUpdateWorldMatrix_Order(t *testing.T) {
	tr := NewTransform()
	tr.SetScale(2, 2, 2)
	tr.SetRotation(0, math.Pi/2, 0)
	tr.SetPosition(10, 0, 0)
	tr.UpdateWorldMatrix()

	// (1,0,0) 缩放为 (2,0,0)，绕 Y 旋转 90° 为 (0,0,-2)，平移后 (10,0,-2)
	p := tr.WorldMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 10, p.X(), 1e-5)
	assert.InDelta(t, 0, p.Y(), 1e-5)
	assert.InDelta(t, -2, p.Z(), 1e-5)
}

func TestMoveAndRotate_Additive(t *testing.T) {
	tr := NewTransform()
	tr.Move(1, 2, 3)
	tr.Move(1, 0, -1)
	tr.Rotate(0.1, 0, 0)
	tr.Rotate(0.1, 0.2, 0)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, tr.Position())
	assert.InDelta(t, 0.2, tr.Rotation().X(), 1e-6)
	assert.InDelta(t, 0.2, tr.Rotation().Y(), 1e-6)

	tr.SetPosition(0, 0, 0)
	assert.Equal(t, mgl32.Vec3{}, tr.Position())
}

// TestEulerFromQuat 转换后的欧拉角重建出相同的旋转矩阵
func TestEulerFromQuat(t *testing.T) {
	tests := []mgl32.Vec3{
		{0, 0, 0},
		{0.3, 0, 0},
		{0, -0.8, 0},
		{0, 0, 1.2},
		{0.4, 0.5, -0.6},
	}
	for _, e := range tests {
		m := mgl32.HomogRotate3DX(e.X()).Mul4(mgl32.HomogRotate3DY(e.Y())).Mul4(mgl32.HomogRotate3DZ(e.Z()))
		q := mgl32.Mat4ToQuat(m)

		tr := NewTransform()
		r := EulerFromQuat(q)
		tr.SetRotation(r.X(), r.Y(), r.Z())
		tr.UpdateWorldMatrix()
		assert.True(t, m.ApproxEqualThreshold(tr.WorldMatrix(), 1e-4), "euler %v -> %v", e, r)
	}
}
