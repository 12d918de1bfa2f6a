package components

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform 存储实体的位置、旋转（欧拉角，弧度）和缩放
//
// 世界矩阵不会自动失效：任何修改之后、本帧绘制之前，
// 调用方必须至少调用一次 UpdateWorldMatrix()。
// 缩放和旋转不做范围检查，由调用方保证取值合法。
type Transform struct {
	position mgl32.Vec3
	rotation mgl32.Vec3
	scale    mgl32.Vec3

	worldMatrix mgl32.Mat4
}

// NewTransform 创建一个位于原点、无旋转、单位缩放的变换
func NewTransform() Transform {
	return Transform{
		scale:       mgl32.Vec3{1, 1, 1},
		worldMatrix: mgl32.Ident4(),
	}
}

// Move 按增量平移
func (t *Transform) Move(dx, dy, dz float32) {
	t.position = t.position.Add(mgl32.Vec3{dx, dy, dz})
}

// Rotate 按增量累加欧拉角
func (t *Transform) Rotate(dx, dy, dz float32) {
	t.rotation = t.rotation.Add(mgl32.Vec3{dx, dy, dz})
}

// SetPosition 绝对设置位置
func (t *Transform) SetPosition(x, y, z float32) {
	t.position = mgl32.Vec3{x, y, z}
}

// SetRotation 绝对设置欧拉角
func (t *Transform) SetRotation(x, y, z float32) {
	t.rotation = mgl32.Vec3{x, y, z}
}

// SetScale 绝对设置缩放
func (t *Transform) SetScale(x, y, z float32) {
	t.scale = mgl32.Vec3{x, y, z}
}

func (t *Transform) Position() mgl32.Vec3 { return t.position }
func (t *Transform) Rotation() mgl32.Vec3 { return t.rotation }
func (t *Transform) Scale() mgl32.Vec3 { return t.scale }

// UpdateWorldMatrix 由位置/旋转/缩放重新计算世界矩阵
//
// 行向量约定下的组合顺序为 Scale * RotZ * RotY * RotX * Translation，
// 转置到列向量（mgl32 列主序）后即 T * Rx * Ry * Rz * S，平移位于第 3 列。
func (t *Transform) UpdateWorldMatrix() {
	trans := mgl32.Translate3D(t.position.X(), t.position.Y(), t.position.Z())
	rotX := mgl32.HomogRotate3DX(t.rotation.X())
	rotY := mgl32.HomogRotate3DY(t.rotation.Y())
	rotZ := mgl32.HomogRotate3DZ(t.rotation.Z())
	sc := mgl32.Scale3D(t.scale.X(), t.scale.Y(), t.scale.Z())

	t.worldMatrix = trans.Mul4(rotX).Mul4(rotY).Mul4(rotZ).Mul4(sc)
}

// WorldMatrix 返回最近一次 UpdateWorldMatrix 的结果
func (t *Transform) WorldMatrix() mgl32.Mat4 {
	return t.worldMatrix
}

// EulerFromQuat 把四元数转换为与 UpdateWorldMatrix 组合顺序（Rx*Ry*Rz）一致的欧拉角
func EulerFromQuat(q mgl32.Quat) mgl32.Vec3 {
	m := q.Normalize().Mat4()

	sy := m.At(0, 2)
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	y := float32(math.Asin(float64(sy)))

	var x, z float32
	if sy < 0.9999 && sy > -0.9999 {
		x = float32(math.Atan2(float64(-m.At(1, 2)), float64(m.At(2, 2))))
		z = float32(math.Atan2(float64(-m.At(0, 1)), float64(m.At(0, 0))))
	} else {
		// 万向节锁：把全部旋转归到 X 轴
		x = float32(math.Atan2(float64(m.At(2, 1)), float64(m.At(1, 1))))
		z = 0
	}
	return mgl32.Vec3{x, y, z}
}
