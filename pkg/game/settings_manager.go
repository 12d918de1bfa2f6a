package game

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// GameSettings 用户偏好设置
// 只保存偏好，不保存游戏进度
type GameSettings struct {
	// 视角设置
	LookSensitivity float32 `yaml:"lookSensitivity"` // 鼠标灵敏度倍率 0.1 ~ 5.0
	InvertY         bool    `yaml:"invertY"`         // 反转纵向视角

	// 显示设置
	ShowMinimap bool `yaml:"showMinimap"` // 显示小地图
	Fullscreen  bool `yaml:"fullscreen"`  // 启动时是否全屏

	// 音频设置
	SoundVolume  float64 `yaml:"soundVolume"`  // 音效音量 0.0 ~ 1.0
	SoundEnabled bool    `yaml:"soundEnabled"` // 音效开关
}

// DefaultSettings 返回默认设置
func DefaultSettings() *GameSettings {
	return &GameSettings{
		LookSensitivity: 1,
		InvertY:         false,
		ShowMinimap:     true,
		Fullscreen:      false,
		SoundVolume:     0.6,
		SoundEnabled:    true,
	}
}

// SettingsManager 设置管理器
// 负责设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式，仅内存设置）
	settings     *GameSettings
	logger       *zap.Logger
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "global"
)

// 灵敏度范围
const (
	minLookSensitivity = 0.1
	maxLookSensitivity = 5
)

// NewSettingsManager 创建设置管理器并尝试加载已保存的设置
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式）
//   - logger: 可为 nil
//
// 返回：
//   - *SettingsManager: 加载失败时使用默认设置，不返回错误
func NewSettingsManager(gdataManager *gdata.Manager, logger *zap.Logger) *SettingsManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
		logger:       logger.Named("SettingsManager"),
	}

	if err := sm.Load(); err != nil {
		// 加载失败不是致命错误
		sm.logger.Warn("failed to load settings, using defaults", zap.Error(err))
	}
	return sm
}

// Load 从 gdata 加载设置
// gdataManager 为 nil 或文件不存在时使用默认设置
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}
	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settings, err := ParseSettings(data)
	if err != nil {
		sm.settings = DefaultSettings()
		return err
	}
	sm.settings = settings
	sm.logger.Debug("settings loaded")
	return nil
}

// ParseSettings 解析 YAML 设置；缺失的字段保持默认值，越界值被限制
func ParseSettings(data []byte) (*GameSettings, error) {
	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	settings.SoundVolume = clampVolume(settings.SoundVolume)
	settings.LookSensitivity = clampSensitivity(settings.LookSensitivity)
	return settings, nil
}

// Save 保存设置到 gdata
// gdataManager 为 nil 时返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}
	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	sm.logger.Debug("settings saved")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *GameSettings {
	return sm.settings
}

// SetLookSensitivity 设置鼠标灵敏度，限制在 0.1 ~ 5.0
// 仅修改内存中的设置，需调用 Save() 持久化（下同）
func (sm *SettingsManager) SetLookSensitivity(v float32) {
	sm.settings.LookSensitivity = clampSensitivity(v)
}

func (sm *SettingsManager) SetInvertY(enabled bool) { sm.settings.InvertY = enabled }

// ToggleMinimap 切换小地图显示，返回新状态
func (sm *SettingsManager) ToggleMinimap() bool {
	sm.settings.ShowMinimap = !sm.settings.ShowMinimap
	return sm.settings.ShowMinimap
}

func (sm *SettingsManager) SetFullscreen(enabled bool) { sm.settings.Fullscreen = enabled }

// SetSoundVolume 设置音效音量，限制在 0.0 ~ 1.0
func (sm *SettingsManager) SetSoundVolume(volume float64) {
	sm.settings.SoundVolume = clampVolume(volume)
}

func (sm *SettingsManager) SetSoundEnabled(enabled bool) { sm.settings.SoundEnabled = enabled }

// clampVolume 将音量值限制在 0.0 ~ 1.0 范围内
func clampVolume(volume float64) float64 {
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}

func clampSensitivity(v float32) float32 {
	if v < minLookSensitivity {
		return minLookSensitivity
	}
	if v > maxLookSensitivity {
		return maxLookSensitivity
	}
	return v
}
