// Package app 提供游戏应用的核心包装器
//
// 该包将游戏初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/gonewx/starfield/pkg/config"
	"github.com/gonewx/starfield/pkg/embedded"
	"github.com/gonewx/starfield/pkg/game"
	"github.com/gonewx/starfield/pkg/gfx"
	"github.com/gonewx/starfield/pkg/input"
	"github.com/gonewx/starfield/pkg/logger"
	"github.com/gonewx/starfield/pkg/scenes"
	"github.com/gonewx/starfield/pkg/ui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
)

// AppName gdata 存储目录名
const AppName = "starfield"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 游戏配置文件；为空时读取嵌入的 data/game.yaml
	ConfigPath string
	// Seed 非空时覆盖配置中的随机种子
	Seed string
	// Logger 为 nil 时按 Verbose 创建
	Logger *zap.Logger
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	settings     *game.SettingsManager
	gameConfig   *config.GameConfig
	logger       *zap.Logger
	verbose      bool
	deltaTime    float64

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化游戏应用
//
// 桌面端调用前应先调用 embedded.Init()；未初始化时使用内置默认配置。
// 配置不合法或资源创建失败时返回错误，启动应当中止。
func NewApp(cfg Config) (*App, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.New(cfg.Verbose)
	}
	appLog := log.Named("App")

	gameConfig, err := LoadGameConfig(cfg)
	if err != nil {
		return nil, err
	}
	appLog.Info("game config loaded",
		zap.String("source", configSource(cfg)),
		zap.String("seed", gameConfig.Seed))

	settings := game.NewSettingsManager(openStorage(appLog), log)

	device := gfx.NewEbitenDevice()
	resources := game.NewResourceManager(device, log)
	if err := resources.LoadAll(context.Background()); err != nil {
		return nil, fmt.Errorf("资源加载失败: %w", err)
	}

	audioManager := game.NewAudioManager(audio.NewContext(game.SampleRate), settings, log)
	sprites := ui.NewEbitenSprites(device)
	in := input.NewEbitenService(nil)

	sceneManager := game.NewSceneManager(log)
	sceneManager.SetSceneFactory(func(name string) (game.Scene, error) {
		switch name {
		case scenes.SceneSpace:
			return scenes.NewSpaceScene(scenes.SpaceDeps{
				Config:    gameConfig,
				Device:    device,
				Sprites:   sprites,
				Resources: resources,
				Settings:  settings,
				Sounds:    audioManager,
				Input:     in,
				Seed:      gameConfig.SeedValue(),
				Logger:    log,
			})
		default:
			return nil, fmt.Errorf("unknown scene %q", name)
		}
	})
	if err := sceneManager.Load(scenes.SceneSpace); err != nil {
		return nil, fmt.Errorf("场景创建失败: %w", err)
	}

	return newApp(sceneManager, settings, gameConfig, log, cfg.Verbose), nil
}

func newApp(sm *game.SceneManager, settings *game.SettingsManager, gameConfig *config.GameConfig, log *zap.Logger, verbose bool) *App {
	return &App{
		sceneManager: sm,
		settings:     settings,
		gameConfig:   gameConfig,
		logger:       log.Named("App"),
		verbose:      verbose,
		deltaTime:    1.0 / float64(gameConfig.Window.TPS),
	}
}

// LoadGameConfig 按优先级读取游戏配置：--config 文件 > 嵌入文件 > 内置默认值
// Seed 非空时覆盖配置中的种子
func LoadGameConfig(cfg Config) (*config.GameConfig, error) {
	var (
		gameConfig *config.GameConfig
		err        error
	)
	switch {
	case cfg.ConfigPath != "":
		gameConfig, err = config.LoadGameConfig(cfg.ConfigPath)
	case embedded.IsInitialized():
		var data []byte
		data, err = embedded.ReadFile(embedded.GameConfigPath)
		if err == nil {
			gameConfig, err = config.ParseGameConfig(data)
		}
	default:
		gameConfig = config.DefaultGameConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("游戏配置加载失败: %w", err)
	}
	if cfg.Seed != "" {
		gameConfig.Seed = cfg.Seed
	}
	return gameConfig, nil
}

func configSource(cfg Config) string {
	switch {
	case cfg.ConfigPath != "":
		return cfg.ConfigPath
	case embedded.IsInitialized():
		return embedded.GameConfigPath
	default:
		return "defaults"
	}
}

// openStorage 打开 gdata 存储；失败时返回 nil，设置只保存在内存中
func openStorage(log *zap.Logger) *gdata.Manager {
	m, err := gdata.Open(gdata.Config{AppName: AppName})
	if err != nil {
		log.Warn("gdata unavailable, settings will not persist", zap.Error(err))
		return nil
	}
	return m
}

// Run 设置窗口并进入 ebiten 主循环；正常退出（ErrQuit 或关闭窗口）返回 nil
func (a *App) Run() error {
	w := a.gameConfig.Window
	ebiten.SetWindowSize(w.Width, w.Height)
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(w.TPS)
	ebiten.SetFullscreen(a.settings.GetSettings().Fullscreen)
	ebiten.SetWindowClosingHandled(true)

	err := ebiten.RunGame(a)
	a.Shutdown()
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Shutdown 保存设置并释放场景
func (a *App) Shutdown() {
	if !a.sceneManager.SaveOnExit() {
		a.logger.Warn("settings were not saved")
	}
	if c, ok := a.sceneManager.GetCurrentScene().(interface{ Close() }); ok {
		c.Close()
	}
	a.logger.Info("shutdown")
}

// Update 更新游戏逻辑
// 每个 tick 调用一次，deltaTime 固定为 1/TPS
func (a *App) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			w := a.gameConfig.Window
			ebiten.SetWindowSize(w.Width, w.Height)
			a.logger.Debug("delayed SetWindowSize", zap.Int("width", w.Width), zap.Int("height", w.Height))
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}

	return a.step()
}

// step 推进当前场景一帧，把 ErrQuit 转换为 ebiten.Termination
func (a *App) step() error {
	err := a.sceneManager.Update(a.deltaTime)
	if errors.Is(err, game.ErrQuit) {
		return ebiten.Termination
	}
	return err
}

func (a *App) toggleFullscreen() {
	if ebiten.IsFullscreen() {
		// 退出全屏
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		a.settings.SetFullscreen(false)
	} else {
		ebiten.SetFullscreen(true)
		a.settings.SetFullscreen(true)
	}
	if err := a.settings.Save(); err != nil {
		a.logger.Warn("failed to save settings", zap.Error(err))
	}
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	// 先填充黑色背景（全屏时左右两边为黑色）
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 逻辑屏幕尺寸跟随窗口尺寸
// 尺寸变化时通知场景重建投影矩阵
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth <= 0 || outsideHeight <= 0 {
		outsideWidth, outsideHeight = a.gameConfig.Window.Width, a.gameConfig.Window.Height
	}
	if a.sceneManager.Resize(outsideWidth, outsideHeight) {
		a.logger.Debug("layout changed", zap.Int("width", outsideWidth), zap.Int("height", outsideHeight))
	}
	return outsideWidth, outsideHeight
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// GameConfig 返回生效的游戏配置
func (a *App) GameConfig() *config.GameConfig {
	return a.gameConfig
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
