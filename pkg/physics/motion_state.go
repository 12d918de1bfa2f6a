package physics

import "github.com/go-gl/mathgl/mgl32"

// Transform 刚体的世界变换：原点 + 旋转
type Transform struct {
	Origin   mgl32.Vec3
	Rotation mgl32.Quat
}

// IdentityTransform 位于原点、无旋转
func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent()}
}

// NewTransform 位于 origin、无旋转
func NewTransform(origin mgl32.Vec3) Transform {
	return Transform{Origin: origin, Rotation: mgl32.QuatIdent()}
}

// MotionState 物理引擎对刚体当前世界变换的记录
// 仿真每个子步结束后写入，渲染侧每帧读取
type MotionState interface {
	GetWorldTransform() Transform
	SetWorldTransform(t Transform)
}

// DefaultMotionState 直接保存变换的运动状态
type DefaultMotionState struct {
	transform Transform
}

// NewDefaultMotionState 以初始变换创建运动状态
func NewDefaultMotionState(t Transform) *DefaultMotionState {
	return &DefaultMotionState{transform: t}
}

func (m *DefaultMotionState) GetWorldTransform() Transform {
	return m.transform
}

func (m *DefaultMotionState) SetWorldTransform(t Transform) {
	m.transform = t
}
