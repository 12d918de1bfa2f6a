package game

import (
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"go.uber.org/zap"
)

// SampleRate 音频上下文采样率
const SampleRate = 48000

// 音效名称；与 systems.SoundFire 等保持一致
const (
	SoundFire    = "fire"
	SoundSpawn   = "spawn"
	SoundDespawn = "despawn"
	SoundClick   = "click"
)

// AudioManager 音效管理器
// 职责：
//   - 启动时合成所有音效的 PCM 数据（无需音频文件）
//   - 按名称播放音效，并应用 SettingsManager 中的音量和开关
//
// audio.Context 为 nil 时所有播放调用都是空操作（headless 运行与测试）。
type AudioManager struct {
	context         *audio.Context
	settingsManager *SettingsManager
	pcm             map[string][]byte
	players         map[string]*audio.Player
	logger          *zap.Logger
}

// NewAudioManager 创建音效管理器
//
// 参数：
//   - ctx: 全局音频上下文，可为 nil
//   - sm: 设置管理器（用于读取音量），可为 nil
func NewAudioManager(ctx *audio.Context, sm *SettingsManager, logger *zap.Logger) *AudioManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	am := &AudioManager{
		context:         ctx,
		settingsManager: sm,
		pcm:             make(map[string][]byte),
		players:         make(map[string]*audio.Player),
		logger:          logger.Named("AudioManager"),
	}
	for name, gen := range soundGenerators {
		am.pcm[name] = gen()
	}
	return am
}

// Play 播放音效；未知名称、音效关闭或音量为 0 时不播放
func (am *AudioManager) Play(name string) {
	if am == nil || am.context == nil {
		return
	}
	volume := 1.0
	if am.settingsManager != nil {
		s := am.settingsManager.GetSettings()
		if !s.SoundEnabled {
			return
		}
		volume = s.SoundVolume
	}
	if volume <= 0 {
		return
	}

	player := am.player(name)
	if player == nil {
		return
	}
	player.SetVolume(volume)
	if err := player.Rewind(); err != nil {
		am.logger.Warn("failed to rewind sound", zap.String("sound", name), zap.Error(err))
	}
	player.Play()
}

// PCM 返回音效的原始数据（16 位小端立体声）
func (am *AudioManager) PCM(name string) []byte {
	return am.pcm[name]
}

func (am *AudioManager) player(name string) *audio.Player {
	if p, ok := am.players[name]; ok {
		return p
	}
	data, ok := am.pcm[name]
	if !ok {
		am.logger.Debug("unknown sound", zap.String("sound", name))
		return nil
	}
	p := am.context.NewPlayerFromBytes(data)
	am.players[name] = p
	return p
}

var soundGenerators = map[string]func() []byte{
	// 开火：快速下滑的方波
	SoundFire: func() []byte {
		return synthesize(0.12, func(t, p float64) float64 {
			f := 880 - 600*p
			return square(f*t) * 0.5
		})
	},
	// 生成：低频正弦淡入淡出
	SoundSpawn: func() []byte {
		return synthesize(0.25, func(t, p float64) float64 {
			return math.Sin(2*math.Pi*160*t) * math.Sin(math.Pi*p) * 0.6
		})
	},
	// 回收：衰减噪声
	SoundDespawn: func() []byte {
		r := rand.New(rand.NewSource(1))
		return synthesize(0.2, func(_, p float64) float64 {
			return (r.Float64()*2 - 1) * 0.4
		})
	},
	SoundClick: func() []byte {
		return synthesize(0.04, func(t, _ float64) float64 {
			return math.Sin(2*math.Pi*1200*t) * 0.5
		})
	},
}

// synthesize 生成 duration 秒的 16 位立体声 PCM
// wave(t, progress) 返回 [-1, 1] 的采样，progress 为 0~1 的播放进度；自带线性淡出
func synthesize(duration float64, wave func(t, progress float64) float64) []byte {
	n := int(duration * SampleRate)
	buf := make([]byte, n*4)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		p := float64(i) / float64(n)
		v := wave(t, p) * (1 - p)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		s := uint16(int16(v * math.MaxInt16))
		binary.LittleEndian.PutUint16(buf[i*4:], s)
		binary.LittleEndian.PutUint16(buf[i*4+2:], s)
	}
	return buf
}

func square(phase float64) float64 {
	if math.Mod(phase, 1) < 0.5 {
		return 1
	}
	return -1
}
