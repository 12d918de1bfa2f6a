package physics

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// World 动力学世界
//
// 组合顺序：CollisionConfiguration → Dispatcher → Broadphase → Solver → World。
// 销毁顺序与之相反，见 Destroy。
type World struct {
	config     Config
	collision  *CollisionConfiguration
	dispatcher *Dispatcher
	broadphase *Broadphase
	solver     *SequentialImpulseSolver

	bodies    []*RigidBody
	contacts  []BodyPair
	localTime float32
	destroyed bool

	logger *zap.Logger
}

// NewWorld 组合物理管线并设置重力
func NewWorld(cfg Config, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	collision := NewDefaultCollisionConfiguration()
	dispatcher := NewDispatcher(collision)
	broadphase := NewBroadphase()
	solver := NewSequentialImpulseSolver(collision, cfg.SolverIterations)

	w := &World{
		config:     cfg,
		collision:  collision,
		dispatcher: dispatcher,
		broadphase: broadphase,
		solver:     solver,
		logger:     logger.Named("Physics"),
	}
	w.logger.Debug("world created",
		zap.Float32("gravityY", cfg.Gravity.Y()),
		zap.Float32("fixedTimeStep", cfg.FixedTimeStep),
		zap.Int("maxSubSteps", cfg.MaxSubSteps))
	return w
}

// Gravity 当前重力
func (w *World) Gravity() mgl32.Vec3 { return w.config.Gravity }

// SetGravity 修改重力
func (w *World) SetGravity(g mgl32.Vec3) { w.config.Gravity = g }

// NumBodies 世界中的刚体数量
func (w *World) NumBodies() int { return len(w.bodies) }

// Destroyed 世界是否已销毁
func (w *World) Destroyed() bool { return w.destroyed }

// AddBody 把刚体加入世界；已在世界中则不做任何事并记录警告
func (w *World) AddBody(b *RigidBody) {
	if b == nil {
		return
	}
	if w.destroyed {
		w.logger.Warn("add body to destroyed world ignored")
		return
	}
	if b.inWorld {
		w.logger.Warn("body already in world", zap.Int("userIndex", b.UserIndex))
		return
	}
	if b.motionState != nil {
		b.transform = b.motionState.GetWorldTransform()
	}
	b.inWorld = true
	w.bodies = append(w.bodies, b)
}

// RemoveBody 把刚体移出世界；不在世界中则不做任何事并记录警告
func (w *World) RemoveBody(b *RigidBody) {
	if b == nil {
		return
	}
	if !b.inWorld {
		w.logger.Warn("body not in world", zap.Int("userIndex", b.UserIndex))
		return
	}
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	b.inWorld = false
}

// StepSimulation 推进仿真
//
// 以 FixedTimeStep 为子步长推进，每次最多 MaxSubSteps 步，不足一步的时间累积到下次；
// 超出上限的时间直接丢弃。MaxSubSteps 为 0 时以 dt 单步推进。
// 返回实际执行的子步数。
func (w *World) StepSimulation(dt float32) (int, error) {
	if w.destroyed {
		return 0, ErrWorldDestroyed
	}
	w.contacts = w.contacts[:0]
	if dt <= 0 {
		return 0, nil
	}

	if w.config.MaxSubSteps == 0 || w.config.FixedTimeStep <= 0 {
		w.internalStep(dt)
		w.syncMotionStates()
		return 1, nil
	}

	w.localTime += dt
	steps := int(w.localTime / w.config.FixedTimeStep)
	w.localTime -= float32(steps) * w.config.FixedTimeStep
	if steps > w.config.MaxSubSteps {
		w.logger.Debug("sub steps clamped", zap.Int("wanted", steps), zap.Int("max", w.config.MaxSubSteps))
		steps = w.config.MaxSubSteps
	}
	for i := 0; i < steps; i++ {
		w.internalStep(w.config.FixedTimeStep)
	}
	if steps > 0 {
		w.syncMotionStates()
	}
	return steps, nil
}

func (w *World) internalStep(h float32) {
	for _, b := range w.bodies {
		b.applyGravity(w.config.Gravity, h)
	}
	pairs := w.broadphase.FindPairs(w.bodies)
	contacts := w.dispatcher.Dispatch(pairs)
	w.solver.Solve(contacts)
	for _, b := range w.bodies {
		b.integrate(h)
	}
	for _, c := range contacts {
		w.recordContact(c.A, c.B)
	}
}

func (w *World) recordContact(a, b *RigidBody) {
	for _, p := range w.contacts {
		if (p.A == a && p.B == b) || (p.A == b && p.B == a) {
			return
		}
	}
	w.contacts = append(w.contacts, BodyPair{A: a, B: b})
}

func (w *World) syncMotionStates() {
	for _, b := range w.bodies {
		b.syncMotionState()
	}
}

// Contacts 上一次 StepSimulation 中发生接触的刚体对
// 返回的切片在下一次 StepSimulation 前有效
func (w *World) Contacts() []BodyPair {
	return w.contacts
}

// Destroy 销毁世界
// 先移出所有剩余刚体，再依次释放求解器、宽相、调度器、碰撞配置
func (w *World) Destroy() {
	if w.destroyed {
		return
	}
	for _, b := range w.bodies {
		b.inWorld = false
	}
	w.logger.Debug("bodies removed", zap.Int("count", len(w.bodies)))
	w.bodies = nil
	w.contacts = nil

	w.solver = nil
	w.broadphase = nil
	w.dispatcher = nil
	w.collision = nil
	w.destroyed = true
	w.logger.Debug("world destroyed")
}
