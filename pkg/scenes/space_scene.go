package scenes

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gonewx/starfield/pkg/camera"
	"github.com/gonewx/starfield/pkg/config"
	"github.com/gonewx/starfield/pkg/ecs"
	"github.com/gonewx/starfield/pkg/entities"
	"github.com/gonewx/starfield/pkg/game"
	"github.com/gonewx/starfield/pkg/gfx"
	"github.com/gonewx/starfield/pkg/input"
	"github.com/gonewx/starfield/pkg/physics"
	"github.com/gonewx/starfield/pkg/systems"
	"github.com/gonewx/starfield/pkg/ui"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// SceneSpace 场景名称，供 SceneManager 的工厂函数使用
const SceneSpace = "space"

// 子弹从摄像机前方这个距离处射出，避免和摄像机重合
const muzzleDistance = 1.5

var minimapClear = color.RGBA{R: 8, G: 10, B: 24, A: 255}

// SpaceDeps 创建 SpaceScene 所需的协作者
type SpaceDeps struct {
	Config *config.GameConfig
	Device gfx.Device
	// Sprites 屏幕空间 UI 绘制
	Sprites ui.SpriteService
	// Resources 必须已经 LoadAll
	Resources *game.ResourceManager
	// Settings 为 nil 时使用只存在于内存中的默认设置
	Settings *game.SettingsManager
	// Sounds 可为 nil
	Sounds systems.SoundPlayer
	Input  input.Service
	Seed   int64
	Logger *zap.Logger
}

// renderTarget 需要逐帧绑定 ebiten 屏幕的服务（EbitenDevice / EbitenSprites）
type renderTarget interface {
	SetTarget(screen *ebiten.Image)
}

// SpaceScene 帧调度器
//
// Update 固定顺序：
//  1. 根据主菜单点击锁存的标志计算 GameState
//  2. GamePlay 时：物理步进 → 同步变换 → 计时器（生成/回收）→ 输入沿 → 摄像机 → 粒子
//  3. Escape 按下沿或 Exit 阶段返回 game.ErrQuit
//
// Draw 只读取 Update 写入的状态。两者都在 ebiten 的主循环中串行调用，不需要加锁。
type SpaceScene struct {
	cfg      *config.GameConfig
	device   gfx.Device
	sprites  ui.SpriteService
	settings *game.SettingsManager
	sounds   systems.SoundPlayer
	input    input.Service
	edges    *input.EdgeTracker
	state    *game.GameState

	world       *physics.World
	planetBody  *physics.BodyHandle
	planet      *entities.GameEntity
	marker      *entities.GameEntity
	asteroids   *ecs.SlotArena
	projectiles *ecs.SlotArena

	mainCam *camera.Camera
	mapCam  *camera.Camera

	spawner   *systems.SpawnSystem
	sync      *systems.SyncSystem
	cameras   *systems.CameraSystem
	particles *systems.ParticleSystem
	render    *systems.RenderSystem
	menu      *ui.MainMenu

	screenW, screenH int
	frames           int
	closed           bool
	logger           *zap.Logger
}

// NewSpaceScene 组装物理世界、实体、系统和渲染器
//
// 参数:
//   - deps: 协作者；Resources 中缺少网格、材质或纹理时返回错误
//
// 返回:
//   - *SpaceScene: 处于 MainMenu 阶段的场景
//   - error: 配置错误（资源缺失），启动应当中止
func NewSpaceScene(deps SpaceDeps) (*SpaceScene, error) {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultGameConfig()
	}
	if deps.Device == nil || deps.Resources == nil || deps.Input == nil {
		return nil, fmt.Errorf("space scene: device, resources and input are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := deps.Settings
	if settings == nil {
		settings = game.NewSettingsManager(nil, logger)
	}

	s := &SpaceScene{
		cfg:         cfg,
		device:      deps.Device,
		sprites:     deps.Sprites,
		settings:    settings,
		sounds:      deps.Sounds,
		input:       deps.Input,
		edges:       input.NewEdgeTracker(),
		state:       game.NewGameState(logger),
		asteroids:   ecs.NewSlotArena(),
		projectiles: ecs.NewSlotArena(),
		screenW:     cfg.Window.Width,
		screenH:     cfg.Window.Height,
		logger:      logger.Named("SpaceScene"),
	}

	s.world = physics.NewWorld(physics.Config{
		Gravity:          config.Vec3(cfg.Physics.Gravity),
		FixedTimeStep:    cfg.Physics.FixedTimeStep,
		MaxSubSteps:      cfg.Physics.MaxSubSteps,
		SolverIterations: cfg.Physics.SolverIterations,
	}, logger)

	if err := s.initEntities(deps.Resources); err != nil {
		s.world.Destroy()
		return nil, err
	}
	s.initCameras()

	spawner, err := systems.NewSpawnSystem(s.world, deps.Resources, s.asteroids, s.projectiles, cfg, deps.Seed, deps.Sounds, logger)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("space scene: %w", err)
	}
	s.spawner = spawner
	s.sync = systems.NewSyncSystem(s.asteroids, s.projectiles)
	s.cameras = systems.NewCameraSystem(s.mainCam, s.mapCam)

	if err := s.initParticles(deps.Resources, deps.Seed); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.initRenderer(deps.Resources); err != nil {
		s.Close()
		return nil, err
	}

	s.logger.Info("scene ready",
		zap.Int("screenW", s.screenW),
		zap.Int("screenH", s.screenH),
		zap.Int64("seed", deps.Seed))
	return s, nil
}

// initEntities 星球（静态刚体 + 渲染实体）和小地图标记
func (s *SpaceScene) initEntities(rm *game.ResourceManager) error {
	pc := s.cfg.Planet
	pos := config.Vec3(pc.Position)

	planet, err := entities.NewPlanetEntity(rm, pos, pc.Radius)
	if err != nil {
		return fmt.Errorf("space scene: %w", err)
	}
	s.planet = planet

	// 质量为 0 的静态刚体，小行星和子弹会被弹开
	s.planetBody = physics.NewBodyHandle(
		physics.NewSphereShape(pc.Radius),
		physics.NewTransform(pos),
		physics.BodyConfig{Restitution: 0.6},
	)
	s.world.AddBody(s.planetBody.Body)

	marker, err := entities.NewMinimapMarker(rm, s.cfg.Minimap.MarkerScale, toRGBA(config.Vec4(s.cfg.Minimap.MarkerColor)))
	if err != nil {
		return fmt.Errorf("space scene: %w", err)
	}
	s.marker = marker
	return nil
}

func (s *SpaceScene) initCameras() {
	mc := s.cfg.Camera
	s.mainCam = camera.New(config.Vec3(mc.Position), camera.Options{
		FieldOfView: mc.FieldOfView,
		Near:        mc.Near,
		Far:         mc.Far,
		MoveSpeed:   mc.MoveSpeed,
		Movable:     true,
	})
	s.mainCam.SetRotation(mc.Pitch, mc.Yaw)
	s.mainCam.UpdateViewMatrix()

	oc := s.cfg.MinimapCamera
	s.mapCam = camera.New(config.Vec3(oc.Position), camera.Options{
		FieldOfView: oc.FieldOfView,
		Near:        oc.Near,
		Far:         oc.Far,
	})
	s.mapCam.SetRotation(oc.Pitch, oc.Yaw)
	s.mapCam.UpdateViewMatrix()

	s.mainCam.UpdateProjectionMatrix(float32(s.screenW) / float32(s.screenH))
	s.mapCam.UpdateProjectionMatrix(s.minimapViewport(s.screenW, s.screenH).Aspect())
	s.followCamera()
}

func (s *SpaceScene) initParticles(rm *game.ResourceManager, seed int64) error {
	mesh, err := rm.GetMesh(config.MeshParticles)
	if err != nil {
		return fmt.Errorf("space scene: %w", err)
	}
	material, err := rm.GetMaterial(config.MaterialParticle)
	if err != nil {
		return fmt.Errorf("space scene: %w", err)
	}
	s.particles, err = systems.NewParticleSystem(s.cfg.Particles, mesh, material, seed+1)
	if err != nil {
		return fmt.Errorf("space scene: %w", err)
	}
	s.particles.SetEmitterPosition(s.emitterPosition())
	return nil
}

func (s *SpaceScene) initRenderer(rm *game.ResourceManager) error {
	sky, err := entities.NewSkyboxEntity(rm)
	if err != nil {
		return fmt.Errorf("space scene: %w", err)
	}
	playTex, err := rm.GetTexture(config.TextureButtonPlay)
	if err != nil {
		return fmt.Errorf("space scene: %w", err)
	}
	quitTex, err := rm.GetTexture(config.TextureButtonQuit)
	if err != nil {
		return fmt.Errorf("space scene: %w", err)
	}
	s.menu = ui.NewMainMenu(s.cfg.Window.Title, playTex, quitTex, s.screenW, s.screenH)

	var lights [2]gfx.DirectionalLight
	for i := range lights {
		l := s.cfg.Lights[i]
		lights[i] = gfx.DirectionalLight{
			AmbientColor: config.Vec4(l.Ambient),
			DiffuseColor: config.Vec4(l.Diffuse),
			Direction:    config.Vec3(l.Direction),
		}
	}
	markerTint := toRGBA(config.Vec4(s.cfg.Minimap.MarkerColor))

	s.render = systems.NewRenderSystem(s.device, s.sprites, systems.RenderSetup{
		MainCamera:    s.mainCam,
		MinimapCamera: s.mapCam,
		Screen:        gfx.Viewport{Width: s.screenW, Height: s.screenH},
		Minimap:       s.minimapViewport(s.screenW, s.screenH),
		Lights:        lights,
		ClearColor:    toRGBA(config.Vec4(s.cfg.ClearColor)),
		MinimapClear:  minimapClear,
		MarkerTint:    &markerTint,
		Sky:           sky,
		Statics:       []*entities.GameEntity{s.planet, s.marker},
		Arenas:        []*ecs.SlotArena{s.asteroids, s.projectiles},
		Particles:     s.particles,
	}, s.logger)
	return nil
}

// Update 推进一帧；只会返回 game.ErrQuit
func (s *SpaceScene) Update(deltaTime float64) error {
	if s.closed {
		return game.ErrQuit
	}
	s.frames++
	s.edges.Poll(s.input)

	// 1. 主菜单点击只锁存标志，由 GameState 统一求值
	if s.state.Phase() == game.PhaseMainMenu && s.edges.PointerJustPressed() {
		switch s.menu.Hit(s.edges.Cursor()) {
		case ui.ChoicePlay:
			s.state.RequestPlay()
			s.play(game.SoundClick)
		case ui.ChoiceQuit:
			s.state.RequestQuit()
			s.play(game.SoundClick)
		}
	}
	phase := s.state.Evaluate()

	// 2. 游戏逻辑
	if phase == game.PhaseGamePlay {
		s.updateGameplay(deltaTime)
	}

	// 3. 退出检查
	if phase == game.PhaseExit || s.edges.JustPressed(input.ActionQuit) {
		s.logger.Info("quit requested", zap.Stringer("phase", phase), zap.Int("frames", s.frames))
		return game.ErrQuit
	}
	return nil
}

func (s *SpaceScene) updateGameplay(dt float64) {
	if _, err := s.world.StepSimulation(float32(dt)); err != nil {
		s.logger.Error("physics step failed", zap.Error(err))
		return
	}
	s.sync.Update()
	s.spawner.Update(dt)

	origin := s.mainCam.Position().Add(s.mainCam.Forward().Mul(muzzleDistance))
	s.spawner.HandleFireInput(s.edges.Down(input.ActionFire), s.edges.JustPressed(input.ActionFire), origin, s.mainCam.Forward())
	if s.edges.JustPressed(input.ActionToggleFireMode) {
		s.spawner.ToggleFireMode()
	}
	if s.edges.JustPressed(input.ActionToggleMinimap) {
		shown := s.settings.ToggleMinimap()
		if err := s.settings.Save(); err != nil {
			s.logger.Warn("failed to save settings", zap.Error(err))
		}
		s.logger.Debug("minimap toggled", zap.Bool("shown", shown))
	}

	prefs := s.settings.GetSettings()
	s.cameras.Update(float32(dt), s.edges, systems.LookSettings{
		Speed:       s.cfg.Camera.LookSpeed,
		Sensitivity: prefs.LookSensitivity,
		InvertY:     prefs.InvertY,
	})
	s.followCamera()

	s.planet.Transform.Rotate(0, s.cfg.Planet.Spin*float32(dt), 0)
	s.planet.Transform.UpdateWorldMatrix()

	s.particles.SetEmitterPosition(s.emitterPosition())
	s.particles.Update(dt)
}

// followCamera 小地图标记跟随主摄像机的位置和朝向
func (s *SpaceScene) followCamera() {
	p := s.mainCam.Position()
	s.marker.Transform.SetPosition(p.X(), p.Y(), p.Z())
	s.marker.Transform.SetRotation(0, s.mainCam.Yaw(), 0)
	s.marker.Transform.UpdateWorldMatrix()
}

// emitterPosition 发射器位于摄像机坐标系中的固定偏移处
func (s *SpaceScene) emitterPosition() mgl32.Vec3 {
	off := config.Vec3(s.cfg.Particles.Offset)
	return s.mainCam.Position().
		Add(s.mainCam.Right().Mul(off.X())).
		Add(s.mainCam.Up().Mul(off.Y())).
		Add(s.mainCam.Forward().Mul(off.Z()))
}

// Draw 执行渲染通道；screen 为 nil 时（无窗口）只驱动设备
func (s *SpaceScene) Draw(screen *ebiten.Image) {
	if s.closed {
		return
	}
	if screen != nil {
		if t, ok := s.device.(renderTarget); ok {
			t.SetTarget(screen)
		}
		if t, ok := s.sprites.(renderTarget); ok {
			t.SetTarget(screen)
		}
	}

	phase := s.state.Phase()
	s.render.Draw(systems.FrameOptions{
		ShowMinimap: phase == game.PhaseGamePlay && s.settings.GetSettings().ShowMinimap,
		Overlay: func(sprites ui.SpriteService) {
			if phase == game.PhaseMainMenu {
				s.menu.Draw(sprites)
				return
			}
			s.drawHUD(sprites)
		},
	})
}

func (s *SpaceScene) drawHUD(sprites ui.SpriteService) {
	sprites.DrawText(fmt.Sprintf("asteroids: %d  projectiles: %d  fire: %s",
		s.asteroids.AliveCount(), s.projectiles.AliveCount(), s.spawner.FireMode()), 8, 8)
	sprites.DrawText("[SPACE] fire  [F] mode  [M] minimap  [R] reset  [ESC] quit", 8, 24)
}

// OnResize 重新计算两个摄像机的投影矩阵和视口
// 主摄像机使用屏幕宽高比，小地图摄像机使用小地图视口的宽高比
func (s *SpaceScene) OnResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.screenW, s.screenH = width, height
	mm := s.minimapViewport(width, height)

	s.mainCam.UpdateProjectionMatrix(float32(width) / float32(height))
	s.mapCam.UpdateProjectionMatrix(mm.Aspect())
	s.render.SetScreen(gfx.Viewport{Width: width, Height: height})
	s.render.SetMinimapViewport(mm)
	s.menu.Layout(width, height)
	s.logger.Debug("resized", zap.Int("width", width), zap.Int("height", height))
}

// minimapViewport 小地图保持配置中与右上角的距离
func (s *SpaceScene) minimapViewport(width, height int) gfx.Viewport {
	mc := s.cfg.Minimap
	margin := s.cfg.Window.Width - mc.X - mc.Width
	if margin < 0 {
		margin = 0
	}
	vp := gfx.Viewport{X: width - mc.Width - margin, Y: mc.Y, Width: mc.Width, Height: mc.Height}
	if vp.X < 0 {
		vp.X = 0
	}
	if vp.Y+vp.Height > height {
		vp.Y = 0
	}
	return vp
}

// SaveOnExit 保存用户设置
func (s *SpaceScene) SaveOnExit() bool {
	if err := s.settings.Save(); err != nil {
		s.logger.Error("failed to save settings on exit", zap.Error(err))
		return false
	}
	return true
}

// Close 释放所有刚体句柄并销毁物理世界；可以重复调用
func (s *SpaceScene) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.spawner != nil {
		s.spawner.Destroy()
	}
	if s.planetBody != nil {
		s.planetBody.Destroy(s.world)
	}
	s.world.Destroy()
	s.logger.Debug("closed", zap.Int("frames", s.frames))
}

// State 当前阶段
func (s *SpaceScene) State() game.Phase { return s.state.Phase() }

// Stats 无窗口运行时输出的统计信息
type Stats struct {
	Frames           int
	Phase            game.Phase
	AsteroidSlots    int
	AsteroidsAlive   int
	ProjectileSlots  int
	ProjectilesAlive int
	Particles        int
	Bodies           int
	FireMode         systems.FireMode
}

// Stats 返回当前统计
func (s *SpaceScene) Stats() Stats {
	return Stats{
		Frames:           s.frames,
		Phase:            s.state.Phase(),
		AsteroidSlots:    s.asteroids.Len(),
		AsteroidsAlive:   s.asteroids.AliveCount(),
		ProjectileSlots:  s.projectiles.Len(),
		ProjectilesAlive: s.projectiles.AliveCount(),
		Particles:        s.particles.Count(),
		Bodies:           s.world.NumBodies(),
		FireMode:         s.spawner.FireMode(),
	}
}

// MainCamera 主摄像机
func (s *SpaceScene) MainCamera() *camera.Camera { return s.mainCam }

// MinimapCamera 俯视摄像机
func (s *SpaceScene) MinimapCamera() *camera.Camera { return s.mapCam }

// Menu 主菜单布局
func (s *SpaceScene) Menu() *ui.MainMenu { return s.menu }

func (s *SpaceScene) play(name string) {
	if s.sounds != nil {
		s.sounds.Play(name)
	}
}

func toRGBA(v mgl32.Vec4) color.RGBA {
	c := func(f float32) uint8 { return uint8(mgl32.Clamp(f, 0, 1)*255 + 0.5) }
	return color.RGBA{R: c(v.X()), G: c(v.Y()), B: c(v.Z()), A: c(v.W())}
}
