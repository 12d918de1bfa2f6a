package game

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// SceneFactory 按名称创建场景，避免 game 包依赖具体场景实现
type SceneFactory func(name string) (Scene, error)

// SceneManager 管理当前活动场景
// 任一时刻只有一个场景的 Update 和 Draw 被调用
type SceneManager struct {
	currentScene Scene
	sceneFactory SceneFactory
	width        int
	height       int
	logger       *zap.Logger
}

// NewSceneManager 创建没有活动场景的管理器
func NewSceneManager(logger *zap.Logger) *SceneManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SceneManager{logger: logger.Named("SceneManager")}
}

// SetSceneFactory 设置场景工厂函数
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SwitchTo 切换活动场景；已知窗口尺寸时立即通知新场景
func (sm *SceneManager) SwitchTo(scene Scene) {
	sm.currentScene = scene
	if r, ok := scene.(Resizable); ok && sm.width > 0 && sm.height > 0 {
		r.OnResize(sm.width, sm.height)
	}
}

// GetCurrentScene 返回当前活动场景，可能为 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// Load 用工厂函数创建并切换到指定场景
func (sm *SceneManager) Load(name string) error {
	if sm.sceneFactory == nil {
		return fmt.Errorf("load scene %q: scene factory not set", name)
	}
	scene, err := sm.sceneFactory(name)
	if err != nil {
		return fmt.Errorf("load scene %q: %w", name, err)
	}
	sm.SwitchTo(scene)
	sm.logger.Info("scene loaded", zap.String("scene", name))
	return nil
}

// Update 推进当前场景
func (sm *SceneManager) Update(deltaTime float64) error {
	if sm.currentScene == nil {
		return nil
	}
	return sm.currentScene.Update(deltaTime)
}

// Draw 绘制当前场景
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}

// Resize 记录窗口尺寸，变化时转发给当前场景
// 返回尺寸是否发生了变化
func (sm *SceneManager) Resize(width, height int) bool {
	if width == sm.width && height == sm.height {
		return false
	}
	sm.width, sm.height = width, height
	sm.logger.Debug("resize", zap.Int("width", width), zap.Int("height", height))
	if r, ok := sm.currentScene.(Resizable); ok {
		r.OnResize(width, height)
	}
	return true
}

// SaveOnExit 通知当前场景保存设置
func (sm *SceneManager) SaveOnExit() bool {
	if s, ok := sm.currentScene.(Saveable); ok {
		return s.SaveOnExit()
	}
	return true
}
