package physics

// BodyHandle 持有刚体及其形状、运动状态
// 释放时先把刚体移出世界，再释放刚体、运动状态、形状
type BodyHandle struct {
	Body        *RigidBody
	Shape       Shape
	MotionState MotionState
}

// NewBodyHandle 用形状、初始变换和质量创建刚体
func NewBodyHandle(shape Shape, start Transform, cfg BodyConfig) *BodyHandle {
	ms := NewDefaultMotionState(start)
	cfg.Shape = shape
	cfg.MotionState = ms
	return &BodyHandle{
		Body:        NewRigidBody(cfg),
		Shape:       shape,
		MotionState: ms,
	}
}

// Destroy 释放句柄；刚体仍在世界中时先移出
// 可重复调用
func (h *BodyHandle) Destroy(w *World) {
	if h.Body == nil {
		return
	}
	if h.Body.inWorld && w != nil {
		w.RemoveBody(h.Body)
	}
	h.Body.shape = nil
	h.Body.motionState = nil
	h.Body = nil
	h.MotionState = nil
	h.Shape = nil
}

// Transform 运动状态中的世界变换
func (h *BodyHandle) Transform() Transform {
	if h.MotionState == nil {
		return IdentityTransform()
	}
	return h.MotionState.GetWorldTransform()
}
