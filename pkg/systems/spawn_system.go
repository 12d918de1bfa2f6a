package systems

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gonewx/starfield/pkg/components"
	"github.com/gonewx/starfield/pkg/config"
	"github.com/gonewx/starfield/pkg/ecs"
	"github.com/gonewx/starfield/pkg/entities"
	"github.com/gonewx/starfield/pkg/physics"
	"go.uber.org/zap"
)

// 音效名称
const (
	SoundFire    = "fire"
	SoundSpawn   = "spawn"
	SoundDespawn = "despawn"
)

// SoundPlayer 播放短音效；game.AudioManager 实现此接口
type SoundPlayer interface {
	Play(name string)
}

// FireMode 开火模式
type FireMode int

const (
	// FireSingle 每次按下开一枪
	FireSingle FireMode = iota
	// FireAuto 按住时冷却结束即开火
	FireAuto
)

func (m FireMode) String() string {
	if m == FireAuto {
		return config.FireModeAuto
	}
	return config.FireModeSingle
}

// SpawnSystem 小行星与子弹的生命周期管理
//
// 小行星：生成计时器到期时创建，回收计时器到期时按轮转索引把物体移出物理世界。
// 子弹：开火时复用已回收的槽位，没有则新建；超出寿命或击中小行星后回收到固定位置。
// 槽位只追加、不压缩，刚体/实体/元数据始终在同一索引。
type SpawnSystem struct {
	world       *physics.World
	rm          entities.ResourceLoader
	asteroids   *ecs.SlotArena
	projectiles *ecs.SlotArena

	astCfg  config.AsteroidConfig
	projCfg config.ProjectileConfig

	spawnTimer   components.Timer
	despawnTimer components.Timer
	fireCooldown components.Timer
	deathCounter int
	fireMode     FireMode

	rng    *rand.Rand
	sounds SoundPlayer
	logger *zap.Logger
}

// NewSpawnSystem 创建生成系统
//
// 参数:
//   - world: 物理世界
//   - rm: 资源加载器，构造时检查小行星/子弹所需的网格和材质
//   - asteroids, projectiles: 两类物体各自的槽位集合
//   - cfg: 游戏配置
//   - seed: 随机种子（可复现）
//   - sounds: 可为 nil
//
// 返回:
//   - error: 所需资源缺失
func NewSpawnSystem(world *physics.World, rm entities.ResourceLoader, asteroids, projectiles *ecs.SlotArena,
	cfg *config.GameConfig, seed int64, sounds SoundPlayer, logger *zap.Logger) (*SpawnSystem, error) {
	if _, err := rm.GetMesh(config.MeshSphere); err != nil {
		return nil, fmt.Errorf("spawn system: mesh %q: %w", config.MeshSphere, err)
	}
	for _, name := range []string{config.MaterialAsteroid, config.MaterialProjectile} {
		if _, err := rm.GetMaterial(name); err != nil {
			return nil, fmt.Errorf("spawn system: material %q: %w", name, err)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SpawnSystem{
		world:        world,
		rm:           rm,
		asteroids:    asteroids,
		projectiles:  projectiles,
		astCfg:       cfg.Asteroids,
		projCfg:      cfg.Projectiles,
		spawnTimer:   components.NewTimer("asteroid_spawn", cfg.Asteroids.SpawnInterval),
		despawnTimer: components.NewTimer("asteroid_despawn", cfg.Asteroids.DespawnInterval),
		fireCooldown: components.NewTimer("fire_cooldown", cfg.Projectiles.Cooldown),
		rng:          rand.New(rand.NewSource(seed)),
		sounds:       sounds,
		logger:       logger.Named("SpawnSystem"),
	}
	// 第一发不需要等待冷却
	s.fireCooldown.Remaining = 0
	if cfg.Projectiles.FireMode == config.FireModeAuto {
		s.fireMode = FireAuto
	}
	s.logger.Debug("initialized",
		zap.Float64("spawnInterval", s.spawnTimer.Interval),
		zap.Float64("despawnInterval", s.despawnTimer.Interval),
		zap.Float64("cooldown", s.fireCooldown.Interval),
		zap.Int64("seed", seed))
	return s, nil
}

// Update 推进计时器并执行到期的动作
// 每个计时器一帧最多触发一次（无追帧）
func (s *SpawnSystem) Update(dt float64) {
	if s.despawnTimer.Tick(dt) {
		s.DespawnNext()
	}
	if s.spawnTimer.Tick(dt) {
		s.SpawnAsteroid()
	}
	s.fireCooldown.Cooldown(dt)

	s.handleContacts()
	s.ageSlots(s.asteroids, dt)
	s.ageSlots(s.projectiles, dt)
	s.expireProjectiles()
}

// SpawnAsteroid 在生成点附近创建一颗小行星
// 槽位数达到上限时复用已移出世界的槽位，没有可复用的槽位则放弃本次生成
func (s *SpawnSystem) SpawnAsteroid() ecs.SlotID {
	origin := config.Vec3(s.astCfg.SpawnOrigin)
	pos := origin.Add(mgl32.Vec3{s.uniform(s.astCfg.Spread), 0, s.uniform(s.astCfg.Spread)})
	vel := mgl32.Vec3{s.jitter(), s.jitter(), s.jitter()}
	spin := mgl32.Vec3{s.uniform(1), s.uniform(1), s.uniform(1)}

	if s.astCfg.MaxSlots > 0 && s.asteroids.Len() >= s.astCfg.MaxSlots {
		id := s.asteroids.FindDead()
		if id == ecs.InvalidSlot {
			s.logger.Debug("asteroid slots exhausted", zap.Int("slots", s.asteroids.Len()))
			return ecs.InvalidSlot
		}
		s.reactivate(s.asteroids, id, pos, vel)
		s.asteroids.Get(id).Body.Body.SetAngularVelocity(spin)
		s.play(SoundSpawn)
		s.logger.Debug("asteroid respawned", zap.Int("slot", int(id)))
		return id
	}

	handle := physics.NewBodyHandle(
		physics.NewSphereShape(s.astCfg.Radius),
		physics.NewTransform(pos),
		physics.BodyConfig{Mass: s.astCfg.Mass, Restitution: s.astCfg.Restitution, Friction: 0.5},
	)
	entity, err := entities.NewAsteroidEntity(s.rm, pos, s.astCfg.Scale)
	if err != nil {
		// 资源在构造时已检查，到这里说明资源表被破坏
		panic(fmt.Errorf("spawn asteroid: %w", err))
	}
	handle.Body.SetLinearVelocity(vel)
	handle.Body.SetAngularVelocity(spin)
	s.world.AddBody(handle.Body)

	id := s.asteroids.Insert(handle, entity, components.SlotMeta{Kind: components.ObjectAsteroid})
	handle.Body.UserIndex = int(id)
	s.play(SoundSpawn)
	s.logger.Debug("asteroid spawned",
		zap.Int("slot", int(id)),
		zap.Float32("x", pos.X()), zap.Float32("y", pos.Y()), zap.Float32("z", pos.Z()))
	return id
}

// DespawnNext 选出轮转索引处的小行星，只有在世界中时才移出；槽位和实体保留
func (s *SpawnSystem) DespawnNext() {
	n := s.asteroids.Len()
	if n == 0 {
		return
	}
	id := ecs.SlotID(s.deathCounter % n)
	s.deathCounter = (s.deathCounter + 1) % n

	slot := s.asteroids.Get(id)
	if slot.Body == nil || !slot.Body.Body.InWorld() {
		return
	}
	s.world.RemoveBody(slot.Body.Body)
	s.asteroids.Kill(id)
	s.play(SoundDespawn)
	s.logger.Debug("asteroid despawned", zap.Int("slot", int(id)))
}

// Fire 从 origin 沿 dir 发射子弹；冷却中或槽位耗尽时返回 InvalidSlot
func (s *SpawnSystem) Fire(origin, dir mgl32.Vec3) ecs.SlotID {
	if !s.fireCooldown.Ready() {
		return ecs.InvalidSlot
	}
	if dir.Len() == 0 {
		return ecs.InvalidSlot
	}
	vel := dir.Normalize().Mul(s.projCfg.Speed)

	id := s.projectiles.FindDead()
	switch {
	case id != ecs.InvalidSlot:
		s.reactivate(s.projectiles, id, origin, vel)
	case s.projCfg.MaxSlots > 0 && s.projectiles.Len() >= s.projCfg.MaxSlots:
		s.logger.Debug("projectile slots exhausted", zap.Int("slots", s.projectiles.Len()))
		return ecs.InvalidSlot
	default:
		handle := physics.NewBodyHandle(
			physics.NewSphereShape(s.projCfg.Radius),
			physics.NewTransform(origin),
			physics.BodyConfig{Mass: s.projCfg.Mass, Restitution: 0.2},
		)
		entity, err := entities.NewProjectileEntity(s.rm, origin, s.projCfg.Scale)
		if err != nil {
			panic(fmt.Errorf("fire projectile: %w", err))
		}
		handle.Body.SetLinearVelocity(vel)
		s.world.AddBody(handle.Body)
		id = s.projectiles.Insert(handle, entity, components.SlotMeta{Kind: components.ObjectProjectile})
		handle.Body.UserIndex = int(id)
	}

	s.fireCooldown.Reset()
	s.play(SoundFire)
	s.logger.Debug("projectile fired", zap.Int("slot", int(id)))
	return id
}

// HandleFireInput 按开火模式处理输入：单发只响应按下沿，连发响应按住
func (s *SpawnSystem) HandleFireInput(down, justPressed bool, origin, dir mgl32.Vec3) ecs.SlotID {
	if (s.fireMode == FireSingle && justPressed) || (s.fireMode == FireAuto && down) {
		return s.Fire(origin, dir)
	}
	return ecs.InvalidSlot
}

// Recycle 回收子弹：清零速度、移出世界、移动到回收点并同步渲染实体
// 之后可以重新加入世界而不需要重新分配
func (s *SpawnSystem) Recycle(id ecs.SlotID) {
	slot := s.projectiles.Get(id)
	if slot == nil || slot.Body == nil {
		return
	}
	body := slot.Body.Body
	body.ClearForces()
	if body.InWorld() {
		s.world.RemoveBody(body)
	}
	body.SetWorldTransform(physics.NewTransform(config.Vec3(s.projCfg.RespawnPoint)))
	s.projectiles.Kill(id)
	SyncSlot(slot)
	s.logger.Debug("projectile recycled", zap.Int("slot", int(id)))
}

// ToggleFireMode 在单发/连发之间切换
func (s *SpawnSystem) ToggleFireMode() FireMode {
	if s.fireMode == FireSingle {
		s.fireMode = FireAuto
	} else {
		s.fireMode = FireSingle
	}
	s.logger.Debug("fire mode", zap.Stringer("mode", s.fireMode))
	return s.fireMode
}

func (s *SpawnSystem) FireMode() FireMode { return s.fireMode }
func (s *SpawnSystem) SpawnTimer() components.Timer { return s.spawnTimer }
func (s *SpawnSystem) DespawnTimer() components.Timer { return s.despawnTimer }
func (s *SpawnSystem) FireCooldown() components.Timer { return s.fireCooldown }
func (s *SpawnSystem) DeathCounter() int { return s.deathCounter }

// reactivate 把已移出世界的槽位放回世界
func (s *SpawnSystem) reactivate(arena *ecs.SlotArena, id ecs.SlotID, pos, vel mgl32.Vec3) {
	slot := arena.Get(id)
	body := slot.Body.Body
	body.SetWorldTransform(physics.NewTransform(pos))
	body.ClearForces()
	body.SetLinearVelocity(vel)
	s.world.AddBody(body)
	arena.Revive(id)
	slot.Meta.Age = 0
	slot.Meta.Generation++
	SyncSlot(slot)
}

// handleContacts 击中小行星的子弹立即回收
func (s *SpawnSystem) handleContacts() {
	for _, pair := range s.world.Contacts() {
		if id, ok := s.projectileHit(pair.A, pair.B); ok {
			s.Recycle(id)
		} else if id, ok := s.projectileHit(pair.B, pair.A); ok {
			s.Recycle(id)
		}
	}
}

func (s *SpawnSystem) projectileHit(p, other *physics.RigidBody) (ecs.SlotID, bool) {
	if p.UserIndex < 0 || other.UserIndex < 0 {
		return ecs.InvalidSlot, false
	}
	ps := s.projectiles.Get(ecs.SlotID(p.UserIndex))
	as := s.asteroids.Get(ecs.SlotID(other.UserIndex))
	if ps == nil || as == nil || ps.Body == nil || as.Body == nil {
		return ecs.InvalidSlot, false
	}
	if ps.Body.Body != p || as.Body.Body != other || !ps.Alive {
		return ecs.InvalidSlot, false
	}
	return ecs.SlotID(p.UserIndex), true
}

func (s *SpawnSystem) ageSlots(arena *ecs.SlotArena, dt float64) {
	arena.Each(func(_ ecs.SlotID, slot *ecs.Slot) {
		if slot.Alive {
			slot.Meta.Age += dt
		}
	})
}

func (s *SpawnSystem) expireProjectiles() {
	s.projectiles.Each(func(id ecs.SlotID, slot *ecs.Slot) {
		if slot.Alive && slot.Meta.Age >= s.projCfg.Lifetime {
			s.Recycle(id)
		}
	})
}

// jitter 均匀分布于 [-j, j] 的整数
func (s *SpawnSystem) jitter() float32 {
	j := s.astCfg.VelocityJitter
	if j <= 0 {
		return 0
	}
	return float32(s.rng.Intn(2*j+1) - j)
}

// uniform 均匀分布于 [-r, r]
func (s *SpawnSystem) uniform(r float32) float32 {
	return (s.rng.Float32()*2 - 1) * r
}

func (s *SpawnSystem) play(name string) {
	if s.sounds != nil {
		s.sounds.Play(name)
	}
}

// Destroy 释放所有刚体句柄
func (s *SpawnSystem) Destroy() {
	s.asteroids.Destroy(s.world)
	s.projectiles.Destroy(s.world)
}
