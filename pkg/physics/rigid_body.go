package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BodyConfig 创建刚体所需的参数
type BodyConfig struct {
	// Mass 为 0 表示静态刚体
	Mass        float32
	Shape       Shape
	MotionState MotionState
	Restitution float32
	Friction    float32
	// LinearDamping 每秒损失的线速度比例 [0,1]
	LinearDamping  float32
	AngularDamping float32
}

// RigidBody 刚体
// 形状和运动状态由创建者持有，刚体只保存引用
type RigidBody struct {
	shape       Shape
	motionState MotionState
	transform   Transform

	mass            float32
	invMass         float32
	localInertia    mgl32.Vec3
	invInertiaLocal mgl32.Vec3

	linearVelocity  mgl32.Vec3
	angularVelocity mgl32.Vec3

	restitution    float32
	friction       float32
	linearDamping  float32
	angularDamping float32

	inWorld bool
	// UserIndex 调用方附加的索引（例如槽位编号），-1 表示未设置
	UserIndex int
}

// NewRigidBody 创建刚体
// 只有质量不为 0 时才计算局部惯性，静态刚体惯性为零
func NewRigidBody(cfg BodyConfig) *RigidBody {
	b := &RigidBody{
		shape:          cfg.Shape,
		motionState:    cfg.MotionState,
		mass:           cfg.Mass,
		restitution:    cfg.Restitution,
		friction:       cfg.Friction,
		linearDamping:  clamp01(cfg.LinearDamping),
		angularDamping: clamp01(cfg.AngularDamping),
		UserIndex:      -1,
	}
	if cfg.MotionState != nil {
		b.transform = cfg.MotionState.GetWorldTransform()
	} else {
		b.transform = IdentityTransform()
	}
	if cfg.Mass != 0 && cfg.Shape != nil {
		b.invMass = 1 / cfg.Mass
		b.localInertia = cfg.Shape.CalculateLocalInertia(cfg.Mass)
		for i := 0; i < 3; i++ {
			if b.localInertia[i] != 0 {
				b.invInertiaLocal[i] = 1 / b.localInertia[i]
			}
		}
	}
	return b
}

// IsStatic 质量为 0 的刚体不受重力和冲量影响
func (b *RigidBody) IsStatic() bool { return b.invMass == 0 }

func (b *RigidBody) Mass() float32 { return b.mass }
func (b *RigidBody) InverseMass() float32 { return b.invMass }
func (b *RigidBody) LocalInertia() mgl32.Vec3 { return b.localInertia }
func (b *RigidBody) Shape() Shape { return b.shape }
func (b *RigidBody) MotionState() MotionState { return b.motionState }
func (b *RigidBody) InWorld() bool { return b.inWorld }
func (b *RigidBody) LinearVelocity() mgl32.Vec3 { return b.linearVelocity }
func (b *RigidBody) AngularVelocity() mgl32.Vec3 { return b.angularVelocity }

// SetLinearVelocity 静态刚体忽略
func (b *RigidBody) SetLinearVelocity(v mgl32.Vec3) {
	if b.IsStatic() {
		return
	}
	b.linearVelocity = v
}

// SetAngularVelocity 静态刚体忽略
func (b *RigidBody) SetAngularVelocity(w mgl32.Vec3) {
	if b.IsStatic() {
		return
	}
	b.angularVelocity = w
}

// ApplyCentralImpulse 在质心施加冲量
func (b *RigidBody) ApplyCentralImpulse(impulse mgl32.Vec3) {
	b.linearVelocity = b.linearVelocity.Add(impulse.Mul(b.invMass))
}

// WorldTransform 刚体内部的世界变换
func (b *RigidBody) WorldTransform() Transform { return b.transform }

// SetWorldTransform 瞬移刚体，同时写入运动状态
func (b *RigidBody) SetWorldTransform(t Transform) {
	b.transform = t
	if b.motionState != nil {
		b.motionState.SetWorldTransform(t)
	}
}

// ClearForces 清空速度
func (b *RigidBody) ClearForces() {
	b.linearVelocity = mgl32.Vec3{}
	b.angularVelocity = mgl32.Vec3{}
}

// applyGravity 积分重力与阻尼
func (b *RigidBody) applyGravity(g mgl32.Vec3, h float32) {
	if b.IsStatic() {
		return
	}
	b.linearVelocity = b.linearVelocity.Add(g.Mul(h))
	if b.linearDamping > 0 {
		b.linearVelocity = b.linearVelocity.Mul(float32(math.Pow(float64(1-b.linearDamping), float64(h))))
	}
	if b.angularDamping > 0 {
		b.angularVelocity = b.angularVelocity.Mul(float32(math.Pow(float64(1-b.angularDamping), float64(h))))
	}
}

// integrate 按速度推进位置与朝向
func (b *RigidBody) integrate(h float32) {
	if b.IsStatic() {
		return
	}
	b.transform.Origin = b.transform.Origin.Add(b.linearVelocity.Mul(h))
	w := b.angularVelocity
	if w.Len() > 0 {
		spin := mgl32.Quat{W: 0, V: w}.Mul(b.transform.Rotation).Scale(0.5 * h)
		b.transform.Rotation = b.transform.Rotation.Add(spin).Normalize()
	}
}

// syncMotionState 把内部变换写回运动状态
func (b *RigidBody) syncMotionState() {
	if b.motionState != nil && !b.IsStatic() {
		b.motionState.SetWorldTransform(b.transform)
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
