package scenes

import (
	"context"
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gonewx/starfield/pkg/config"
	"github.com/gonewx/starfield/pkg/game"
	"github.com/gonewx/starfield/pkg/gfx"
	"github.com/gonewx/starfield/pkg/input"
	"github.com/gonewx/starfield/pkg/systems"
	"github.com/gonewx/starfield/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 1.0 / 64

type recordingSounds struct {
	played []string
}

func (r *recordingSounds) Play(name string) { r.played = append(r.played, name) }

type sceneFixture struct {
	scene   *SpaceScene
	in      *input.ScriptedService
	dev     *gfx.RecordingDevice
	sprites *ui.RecordingSprites
	sounds  *recordingSounds
	cfg     *config.GameConfig
}

func newSceneFixture(t *testing.T, mutate func(cfg *config.GameConfig)) *sceneFixture {
	t.Helper()
	cfg := config.DefaultGameConfig()
	if mutate != nil {
		mutate(cfg)
	}
	dev := gfx.NewRecordingDevice()
	rm := game.NewResourceManager(dev, nil)
	require.NoError(t, rm.LoadAll(context.Background()))

	f := &sceneFixture{
		in:      input.NewScriptedService(),
		dev:     dev,
		sprites: &ui.RecordingSprites{},
		sounds:  &recordingSounds{},
		cfg:     cfg,
	}
	s, err := NewSpaceScene(SpaceDeps{
		Config:    cfg,
		Device:    dev,
		Sprites:   f.sprites,
		Resources: rm,
		Sounds:    f.sounds,
		Input:     f.in,
		Seed:      cfg.SeedValue(),
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	f.scene = s
	return f
}

func (f *sceneFixture) step(t *testing.T, dt float64) {
	t.Helper()
	require.NoError(t, f.scene.Update(dt))
}

func center(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

// click 在按钮中心按下指针并推进一帧，然后松开
func (f *sceneFixture) click(b ui.Button) error {
	p := center(b.Bounds)
	f.in.MoveCursor(p.X, p.Y)
	f.in.Pointer = true
	err := f.scene.Update(frame)
	f.in.Pointer = false
	return err
}

func (f *sceneFixture) play(t *testing.T) {
	t.Helper()
	require.NoError(t, f.click(f.scene.Menu().Play))
	require.Equal(t, game.PhaseGamePlay, f.scene.State())
}

// press 按下动作推进一帧，再松开推进一帧
func (f *sceneFixture) press(t *testing.T, a input.Action) {
	t.Helper()
	f.in.Press(a)
	f.step(t, frame)
	f.in.Release(a)
	f.step(t, frame)
}

func (f *sceneFixture) count(op gfx.CommandOp) int {
	n := 0
	for _, c := range f.dev.Commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

func TestNewSpaceScene_MissingResources(t *testing.T) {
	dev := gfx.NewRecordingDevice()
	_, err := NewSpaceScene(SpaceDeps{
		Device:    dev,
		Resources: game.NewResourceManager(dev, nil),
		Input:     input.NewScriptedService(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, gfx.ErrMissingResource)
}

func TestSpaceScene_MainMenuDoesNotSimulate(t *testing.T) {
	f := newSceneFixture(t, nil)

	f.step(t, 10)
	f.step(t, 10)

	st := f.scene.Stats()
	assert.Equal(t, game.PhaseMainMenu, st.Phase)
	assert.Zero(t, st.AsteroidSlots)
	assert.Zero(t, st.Particles)
	// 只有星球
	assert.Equal(t, 1, st.Bodies)
}

func TestSpaceScene_PlayClick(t *testing.T) {
	f := newSceneFixture(t, nil)

	f.play(t)
	assert.Contains(t, f.sounds.played, game.SoundClick)

	// 点击落在按钮之外不会改变阶段
	f2 := newSceneFixture(t, nil)
	f2.in.MoveCursor(0, 0)
	f2.in.Pointer = true
	f2.step(t, frame)
	assert.Equal(t, game.PhaseMainMenu, f2.scene.State())
}

func TestSpaceScene_QuitClickExits(t *testing.T) {
	f := newSceneFixture(t, nil)

	err := f.click(f.scene.Menu().Quit)
	assert.ErrorIs(t, err, game.ErrQuit)
	assert.Equal(t, game.PhaseExit, f.scene.State())
}

func TestSpaceScene_QuitFlagIgnoredInGamePlay(t *testing.T) {
	f := newSceneFixture(t, nil)
	f.play(t)

	f.scene.state.RequestQuit()
	f.step(t, frame)
	assert.Equal(t, game.PhaseGamePlay, f.scene.State())

	// 菜单不在 GamePlay 中响应点击
	require.NoError(t, f.click(f.scene.Menu().Quit))
	assert.Equal(t, game.PhaseGamePlay, f.scene.State())
}

func TestSpaceScene_EscapeQuits(t *testing.T) {
	tests := []struct {
		name   string
		inGame bool
	}{
		{"主菜单", false},
		{"游戏中", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSceneFixture(t, nil)
			if tt.inGame {
				f.play(t)
			}
			f.in.Press(input.ActionQuit)
			assert.ErrorIs(t, f.scene.Update(frame), game.ErrQuit)
		})
	}
}

func TestSpaceScene_SpawnTimerInGamePlay(t *testing.T) {
	f := newSceneFixture(t, nil)
	f.play(t)

	// 一帧跨过多个周期只生成一次
	f.step(t, 3*f.cfg.Asteroids.SpawnInterval)
	st := f.scene.Stats()
	assert.Equal(t, 1, st.AsteroidSlots)
	assert.Equal(t, 1, st.AsteroidsAlive)
	assert.Equal(t, 2, st.Bodies)
	assert.Contains(t, f.sounds.played, systems.SoundSpawn)
}

func TestSpaceScene_SyncAfterStep(t *testing.T) {
	f := newSceneFixture(t, nil)
	f.play(t)
	f.step(t, f.cfg.Asteroids.SpawnInterval)

	for i := 0; i < 5; i++ {
		f.step(t, frame)
	}
	slot := f.scene.asteroids.Get(0)
	require.NotNil(t, slot)
	want := slot.Body.MotionState.GetWorldTransform().Origin
	assert.Equal(t, want, slot.Entity.Transform.Position())
}

func TestSpaceScene_FireInput(t *testing.T) {
	f := newSceneFixture(t, nil)
	f.play(t)

	f.in.Press(input.ActionFire)
	f.step(t, frame)
	assert.Equal(t, 1, f.scene.Stats().ProjectilesAlive)
	assert.Contains(t, f.sounds.played, systems.SoundFire)

	// 单发模式：按住不连发
	f.step(t, frame)
	assert.Equal(t, 1, f.scene.Stats().ProjectileSlots)

	// 冷却中再次按下无效
	f.in.Release(input.ActionFire)
	f.step(t, frame)
	f.in.Press(input.ActionFire)
	f.step(t, frame)
	assert.Equal(t, 1, f.scene.Stats().ProjectileSlots)
	f.in.Release(input.ActionFire)

	f.press(t, input.ActionToggleFireMode)
	assert.Equal(t, systems.FireAuto, f.scene.Stats().FireMode)
}

func TestSpaceScene_ProjectileLeavesFromCamera(t *testing.T) {
	f := newSceneFixture(t, func(cfg *config.GameConfig) {
		cfg.Physics.Gravity = []float32{0, 0, 0}
	})
	f.play(t)

	cam := f.scene.MainCamera()
	f.in.Press(input.ActionFire)
	f.step(t, frame)

	slot := f.scene.projectiles.Get(0)
	require.NotNil(t, slot)
	v := slot.Body.Body.LinearVelocity()
	assert.InDelta(t, f.cfg.Projectiles.Speed, v.Len(), 1e-3)
	assert.InDelta(t, 1, v.Normalize().Dot(cam.Forward()), 1e-5)
}

func TestSpaceScene_Draw(t *testing.T) {
	t.Run("主菜单不绘制小地图", func(t *testing.T) {
		f := newSceneFixture(t, nil)
		f.dev.Reset()
		f.scene.Draw(nil)

		assert.Equal(t, 1, f.count(gfx.OpClear))
		assert.Equal(t, 1, f.count(gfx.OpPresent))
		var texts []string
		for _, c := range f.sprites.Calls {
			texts = append(texts, c.Text)
		}
		assert.Contains(t, texts, "PLAY")
		assert.Contains(t, texts, "QUIT")
	})

	t.Run("游戏中绘制小地图", func(t *testing.T) {
		f := newSceneFixture(t, nil)
		f.play(t)
		f.dev.Reset()
		f.scene.Draw(nil)
		assert.Equal(t, 2, f.count(gfx.OpClear))
	})

	t.Run("M 键隐藏小地图并写入设置", func(t *testing.T) {
		f := newSceneFixture(t, nil)
		f.play(t)
		f.press(t, input.ActionToggleMinimap)
		assert.False(t, f.scene.settings.GetSettings().ShowMinimap)

		f.dev.Reset()
		f.scene.Draw(nil)
		assert.Equal(t, 1, f.count(gfx.OpClear))
	})
}

// 窗口尺寸变化必须同时刷新两个摄像机的投影矩阵
func TestSpaceScene_OnResizeUpdatesBothProjections(t *testing.T) {
	f := newSceneFixture(t, nil)
	mainCam, mapCam := f.scene.MainCamera(), f.scene.MinimapCamera()
	assert.InDelta(t, 1280.0/720.0, mainCam.Aspect(), 1e-6)

	f.scene.OnResize(1000, 500)

	assert.InDelta(t, 2, mainCam.Aspect(), 1e-6)
	cc := f.cfg.Camera
	assert.Equal(t, mgl32.Perspective(cc.FieldOfView, 2, cc.Near, cc.Far), mainCam.Projection())
	mm := f.cfg.Minimap
	assert.InDelta(t, float32(mm.Width)/float32(mm.Height), mapCam.Aspect(), 1e-6)

	// 小地图保持与右上角的距离
	assert.Equal(t, gfx.Viewport{Width: 1000, Height: 500}, f.scene.render.Screen())
	assert.Equal(t, gfx.Viewport{X: 740, Y: 20, Width: 240, Height: 180}, f.scene.render.MinimapViewport())

	// 菜单重新居中
	assert.Equal(t, 500, f.scene.Menu().Play.Bounds.Min.X+f.scene.Menu().Play.Bounds.Dx()/2)

	// 非法尺寸被忽略
	f.scene.OnResize(0, 0)
	assert.InDelta(t, 2, mainCam.Aspect(), 1e-6)
}

func TestSpaceScene_MarkerFollowsCamera(t *testing.T) {
	f := newSceneFixture(t, nil)
	f.play(t)

	f.in.Press(input.ActionMoveForward)
	f.step(t, 0.5)
	f.in.Release(input.ActionMoveForward)

	cam := f.scene.MainCamera()
	assert.Greater(t, cam.Position().Z(), float32(-15))
	assert.Equal(t, cam.Position(), f.scene.marker.Transform.Position())
}

func TestSpaceScene_ParticlesFollowCamera(t *testing.T) {
	f := newSceneFixture(t, nil)
	f.play(t)
	f.step(t, 0.25)

	assert.Positive(t, f.scene.Stats().Particles)
	off := config.Vec3(f.cfg.Particles.Offset)
	cam := f.scene.MainCamera()
	want := cam.Position().Add(cam.Up().Mul(off.Y())).Add(cam.Forward().Mul(off.Z()))
	got := f.scene.particles.EmitterPosition()
	assert.InDelta(t, want.X(), got.X(), 1e-5)
	assert.InDelta(t, want.Y(), got.Y(), 1e-5)
	assert.InDelta(t, want.Z(), got.Z(), 1e-5)
}

func TestSpaceScene_Close(t *testing.T) {
	f := newSceneFixture(t, nil)
	f.play(t)
	f.step(t, f.cfg.Asteroids.SpawnInterval)
	require.Equal(t, 2, f.scene.Stats().Bodies)

	assert.True(t, f.scene.SaveOnExit())
	f.scene.Close()
	f.scene.Close()

	assert.True(t, f.scene.world.Destroyed())
	assert.Zero(t, f.scene.world.NumBodies())
	assert.ErrorIs(t, f.scene.Update(frame), game.ErrQuit)
	assert.NotPanics(t, func() { f.scene.Draw(nil) })
}
