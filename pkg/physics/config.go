// Package physics 刚体仿真层
//
// 组合方式与 Bullet 一致：碰撞配置 → 调度器（窄相）→ 宽相 → 约束求解器 → 动力学世界，
// 启动时组合一次。世界对刚体只持有非拥有引用，刚体的分配与释放由调用方（BodyHandle）负责。
package physics

import "github.com/go-gl/mathgl/mgl32"

// Config 物理世界参数
type Config struct {
	Gravity mgl32.Vec3
	// FixedTimeStep 固定子步长（秒）
	FixedTimeStep float32
	// MaxSubSteps 每次 StepSimulation 最多执行的子步数；为 0 时退化为以 dt 单步推进
	MaxSubSteps int
	// SolverIterations 顺序冲量求解器迭代次数
	SolverIterations int
}

// DefaultConfig 重力 (0,-10,0)，60Hz 固定步长，每帧最多 4 个子步
func DefaultConfig() Config {
	return Config{
		Gravity:          mgl32.Vec3{0, -10, 0},
		FixedTimeStep:    1.0 / 60.0,
		MaxSubSteps:      4,
		SolverIterations: 10,
	}
}

// CollisionConfiguration 碰撞检测的全局参数
type CollisionConfiguration struct {
	// ContactSlop 允许的穿透量，小于该值不做位置修正
	ContactSlop float32
	// CorrectionPercent Baumgarte 位置修正比例
	CorrectionPercent float32
	// RestingThreshold 法向相对速度低于该值时不施加反弹
	RestingThreshold float32
}

// NewDefaultCollisionConfiguration 默认碰撞配置
func NewDefaultCollisionConfiguration() *CollisionConfiguration {
	return &CollisionConfiguration{
		ContactSlop:       0.01,
		CorrectionPercent: 0.4,
		RestingThreshold:  0.5,
	}
}
