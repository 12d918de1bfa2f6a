package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gonewx/starfield/pkg/config"
	"github.com/gonewx/starfield/pkg/ecs"
	"github.com/gonewx/starfield/pkg/gfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpawnSystem_MissingResource(t *testing.T) {
	f := newSpawnFixture(t, nil)
	delete(f.res.materials, config.MaterialProjectile)

	_, err := NewSpawnSystem(f.world, f.res, f.asteroids, f.projectiles, f.cfg, 1, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, gfx.ErrMissingResource)
}

func TestSpawnSystem_SpawnTimerFiresOncePerFrame(t *testing.T) {
	f := newSpawnFixture(t, func(cfg *config.GameConfig) {
		cfg.Asteroids.SpawnInterval = 5
		cfg.Asteroids.DespawnInterval = 100
	})

	// 一帧 16 秒只生成一颗，剩余时间重置为完整间隔
	f.spawner.Update(16)
	assert.Equal(t, 1, f.asteroids.Len())
	assert.Equal(t, 5.0, f.spawner.SpawnTimer().Remaining)
	assert.Equal(t, 1, f.world.NumBodies())

	f.spawner.Update(4.5)
	assert.Equal(t, 1, f.asteroids.Len())
	f.spawner.Update(0.5)
	assert.Equal(t, 2, f.asteroids.Len())
}

func TestSpawnSystem_DespawnRotation(t *testing.T) {
	f := newSpawnFixture(t, nil)
	for i := 0; i < 3; i++ {
		f.spawner.SpawnAsteroid()
	}
	require.Equal(t, 3, f.world.NumBodies())

	for i := 0; i < 3; i++ {
		f.spawner.DespawnNext()
		slot := f.asteroids.Get(ecs.SlotID(i))
		assert.False(t, slot.Body.Body.InWorld(), "槽位 %d 应已移出世界", i)
		assert.False(t, slot.Alive)
		assert.NotNil(t, slot.Entity, "实体保留")
	}
	assert.Equal(t, 0, f.world.NumBodies())
	assert.Equal(t, 0, f.spawner.DeathCounter())
	assert.Equal(t, 3, f.asteroids.Len(), "槽位不压缩")

	// 已不在世界中：只推进计数器
	f.spawner.DespawnNext()
	assert.Equal(t, 1, f.spawner.DeathCounter())
	assert.Equal(t, 0, f.world.NumBodies())
}

func TestSpawnSystem_DespawnEmptyIsNoop(t *testing.T) {
	f := newSpawnFixture(t, nil)
	assert.NotPanics(t, func() { f.spawner.DespawnNext() })
	assert.Equal(t, 0, f.spawner.DeathCounter())
}

func TestSpawnSystem_SpawnReusesDeadSlotAtCap(t *testing.T) {
	f := newSpawnFixture(t, func(cfg *config.GameConfig) {
		cfg.Asteroids.MaxSlots = 2
	})
	f.spawner.SpawnAsteroid()
	f.spawner.SpawnAsteroid()
	assert.Equal(t, ecs.InvalidSlot, f.spawner.SpawnAsteroid(), "没有可复用槽位")

	f.spawner.DespawnNext()
	id := f.spawner.SpawnAsteroid()
	assert.Equal(t, ecs.SlotID(0), id)
	assert.Equal(t, 2, f.asteroids.Len())
	assert.Equal(t, 1, f.asteroids.Get(id).Meta.Generation)
	assert.True(t, f.asteroids.Get(id).Body.Body.InWorld())
}

func TestSpawnSystem_RecycleProjectile(t *testing.T) {
	f := newSpawnFixture(t, func(cfg *config.GameConfig) {
		cfg.Projectiles.Speed = 10
	})

	id := f.spawner.Fire(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{0, 0, 1})
	require.NotEqual(t, ecs.InvalidSlot, id)
	slot := f.projectiles.Get(id)
	assert.Equal(t, mgl32.Vec3{0, 0, 10}, slot.Body.Body.LinearVelocity())

	f.spawner.Recycle(id)

	want := mgl32.Vec3{0, 3, -2}
	assert.Equal(t, want, slot.Body.Body.WorldTransform().Origin)
	assert.Equal(t, want, slot.Body.Transform().Origin)
	assert.Equal(t, mgl32.Vec3{}, slot.Body.Body.LinearVelocity())
	assert.Equal(t, want, slot.Entity.Transform.Position())
	assert.False(t, slot.Body.Body.InWorld())
	assert.False(t, slot.Alive)

	// 重复回收不报错
	assert.NotPanics(t, func() { f.spawner.Recycle(id) })
}

func TestSpawnSystem_SyncMatchesPhysicsExactly(t *testing.T) {
	f := newSpawnFixture(t, nil)
	f.spawner.SpawnAsteroid()
	f.spawner.Fire(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 1, 0})
	sync := NewSyncSystem(f.asteroids, f.projectiles)

	for i := 0; i < 10; i++ {
		_, err := f.world.StepSimulation(1.0 / 60.0)
		require.NoError(t, err)
		sync.Update()
	}

	for _, arena := range []*ecs.SlotArena{f.asteroids, f.projectiles} {
		arena.Each(func(id ecs.SlotID, slot *ecs.Slot) {
			assert.Equal(t, slot.Body.Transform().Origin, slot.Entity.Transform.Position())
			m := slot.Entity.Transform.WorldMatrix()
			assert.Equal(t, slot.Body.Transform().Origin, m.Col(3).Vec3())
		})
	}
}

func TestSpawnSystem_FireCooldown(t *testing.T) {
	f := newSpawnFixture(t, func(cfg *config.GameConfig) {
		cfg.Projectiles.Cooldown = 3
	})
	origin, dir := mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}

	assert.NotEqual(t, ecs.InvalidSlot, f.spawner.Fire(origin, dir), "第一发无需等待")
	assert.Equal(t, ecs.InvalidSlot, f.spawner.Fire(origin, dir))

	f.spawner.Update(2.5)
	assert.Equal(t, ecs.InvalidSlot, f.spawner.Fire(origin, dir))
	f.spawner.Update(0.5)
	assert.NotEqual(t, ecs.InvalidSlot, f.spawner.Fire(origin, dir))
	assert.Equal(t, 2, f.projectiles.AliveCount())

	assert.Equal(t, []string{SoundFire, SoundFire}, f.sounds.played)
}

func TestSpawnSystem_FireRejectsZeroDirection(t *testing.T) {
	f := newSpawnFixture(t, nil)
	assert.Equal(t, ecs.InvalidSlot, f.spawner.Fire(mgl32.Vec3{}, mgl32.Vec3{}))
	assert.Equal(t, 0, f.projectiles.Len())
}

func TestSpawnSystem_FireReusesRecycledSlot(t *testing.T) {
	f := newSpawnFixture(t, func(cfg *config.GameConfig) {
		cfg.Projectiles.Cooldown = 1
	})
	id := f.spawner.Fire(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})
	f.spawner.Recycle(id)
	f.spawner.Update(1)

	again := f.spawner.Fire(mgl32.Vec3{5, 0, 0}, mgl32.Vec3{0, 0, 1})
	assert.Equal(t, id, again)
	assert.Equal(t, 1, f.projectiles.Len())
	slot := f.projectiles.Get(again)
	assert.Equal(t, 1, slot.Meta.Generation)
	assert.Equal(t, 0.0, slot.Meta.Age)
	assert.Equal(t, mgl32.Vec3{5, 0, 0}, slot.Entity.Transform.Position())
}

func TestSpawnSystem_HandleFireInput(t *testing.T) {
	tests := []struct {
		name        string
		mode        string
		down        bool
		justPressed bool
		wantFire    bool
	}{
		{"单发-按下沿", config.FireModeSingle, true, true, true},
		{"单发-按住", config.FireModeSingle, true, false, false},
		{"单发-未按", config.FireModeSingle, false, false, false},
		{"连发-按住", config.FireModeAuto, true, false, true},
		{"连发-按下沿", config.FireModeAuto, true, true, true},
		{"连发-未按", config.FireModeAuto, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSpawnFixture(t, func(cfg *config.GameConfig) {
				cfg.Projectiles.FireMode = tt.mode
			})
			id := f.spawner.HandleFireInput(tt.down, tt.justPressed, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})
			assert.Equal(t, tt.wantFire, id != ecs.InvalidSlot)
		})
	}
}

func TestSpawnSystem_ToggleFireMode(t *testing.T) {
	f := newSpawnFixture(t, nil)
	assert.Equal(t, FireSingle, f.spawner.FireMode())
	assert.Equal(t, FireAuto, f.spawner.ToggleFireMode())
	assert.Equal(t, "auto", f.spawner.FireMode().String())
	assert.Equal(t, FireSingle, f.spawner.ToggleFireMode())
}

func TestSpawnSystem_ProjectileHitRecycles(t *testing.T) {
	f := newSpawnFixture(t, nil)
	aid := f.spawner.SpawnAsteroid()
	target := f.asteroids.Get(aid).Body.Transform().Origin

	pid := f.spawner.Fire(target, mgl32.Vec3{0, 0, 1})
	require.NotEqual(t, ecs.InvalidSlot, pid)

	_, err := f.world.StepSimulation(1.0 / 60.0)
	require.NoError(t, err)
	require.NotEmpty(t, f.world.Contacts())

	f.spawner.Update(0)
	slot := f.projectiles.Get(pid)
	assert.False(t, slot.Alive)
	assert.False(t, slot.Body.Body.InWorld())
	assert.Equal(t, mgl32.Vec3{0, 3, -2}, slot.Body.Transform().Origin)
	assert.True(t, f.asteroids.Get(aid).Body.Body.InWorld(), "小行星不受影响")
}

func TestSpawnSystem_ProjectileLifetime(t *testing.T) {
	f := newSpawnFixture(t, func(cfg *config.GameConfig) {
		cfg.Projectiles.Lifetime = 4
	})
	id := f.spawner.Fire(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})

	f.spawner.Update(3.5)
	assert.True(t, f.projectiles.Get(id).Alive)
	f.spawner.Update(0.5)
	assert.False(t, f.projectiles.Get(id).Alive)
	assert.Equal(t, 0, f.world.NumBodies())
}

func TestSpawnSystem_Destroy(t *testing.T) {
	f := newSpawnFixture(t, nil)
	f.spawner.SpawnAsteroid()
	f.spawner.Fire(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})
	require.Equal(t, 2, f.world.NumBodies())

	f.spawner.Destroy()
	assert.Equal(t, 0, f.world.NumBodies())
	assert.Equal(t, 0, f.asteroids.Len())
	assert.Equal(t, 0, f.projectiles.Len())
}
