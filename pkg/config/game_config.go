package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig 配置内容不合法
var ErrInvalidConfig = errors.New("invalid game config")

// GameConfig 游戏配置（data/game.yaml）
type GameConfig struct {
	Window        WindowConfig     `yaml:"window"`
	Seed          string           `yaml:"seed"` // 随机种子字符串，经 xxhash 转为 int64
	ClearColor    []float32        `yaml:"clearColor"`
	Physics       PhysicsConfig    `yaml:"physics"`
	Camera        CameraConfig     `yaml:"camera"`
	MinimapCamera CameraConfig     `yaml:"minimapCamera"`
	Minimap       MinimapConfig    `yaml:"minimap"`
	Planet        PlanetConfig     `yaml:"planet"`
	Asteroids     AsteroidConfig   `yaml:"asteroids"`
	Projectiles   ProjectileConfig `yaml:"projectiles"`
	Lights        []LightConfig    `yaml:"lights"`
	Particles     ParticleConfig   `yaml:"particles"`
}

// WindowConfig 窗口配置
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	TPS    int    `yaml:"tps"` // 每秒更新次数
}

// PhysicsConfig 物理世界配置
type PhysicsConfig struct {
	Gravity          []float32 `yaml:"gravity"`
	FixedTimeStep    float32   `yaml:"fixedTimeStep"`
	MaxSubSteps      int       `yaml:"maxSubSteps"` // 0 = 以 dt 单步推进
	SolverIterations int       `yaml:"solverIterations"`
}

// CameraConfig 摄像机配置
type CameraConfig struct {
	Position    []float32 `yaml:"position"`
	Pitch       float32   `yaml:"pitch"` // 弧度
	Yaw         float32   `yaml:"yaw"`   // 弧度
	FieldOfView float32   `yaml:"fieldOfView"`
	Near        float32   `yaml:"near"`
	Far         float32   `yaml:"far"`
	MoveSpeed   float32   `yaml:"moveSpeed"`
	// LookSpeed 鼠标拖拽时每像素旋转的弧度
	LookSpeed float32 `yaml:"lookSpeed"`
}

// MinimapConfig 小地图视口配置
type MinimapConfig struct {
	X           int       `yaml:"x"`
	Y           int       `yaml:"y"`
	Width       int       `yaml:"width"`
	Height      int       `yaml:"height"`
	MarkerColor []float32 `yaml:"markerColor"` // RGBA 0~1
	MarkerScale float32   `yaml:"markerScale"`
}

// PlanetConfig 场景中央的静态星球
type PlanetConfig struct {
	Position []float32 `yaml:"position"`
	Radius   float32   `yaml:"radius"`
	Spin     float32   `yaml:"spin"` // 绕 Y 轴自转角速度（弧度/秒）
}

// AsteroidConfig 小行星生成/回收配置
type AsteroidConfig struct {
	SpawnInterval   float64   `yaml:"spawnInterval"`
	DespawnInterval float64   `yaml:"despawnInterval"`
	Scale           float32   `yaml:"scale"`
	Radius          float32   `yaml:"radius"`
	Mass            float32   `yaml:"mass"`
	Restitution     float32   `yaml:"restitution"`
	SpawnOrigin     []float32 `yaml:"spawnOrigin"`
	Spread          float32   `yaml:"spread"`         // 生成位置在 X/Z 上的随机偏移范围
	VelocityJitter  int       `yaml:"velocityJitter"` // 速度分量在 [-j, j] 内取整数
	MaxSlots        int       `yaml:"maxSlots"`       // 0 = 不限
}

// ProjectileConfig 子弹配置
type ProjectileConfig struct {
	Cooldown     float64   `yaml:"cooldown"`
	Speed        float32   `yaml:"speed"`
	Scale        float32   `yaml:"scale"`
	Radius       float32   `yaml:"radius"`
	Mass         float32   `yaml:"mass"`
	RespawnPoint []float32 `yaml:"respawnPoint"`
	Lifetime     float64   `yaml:"lifetime"`
	MaxSlots     int       `yaml:"maxSlots"`
	// FireMode "single"（按键沿触发）或 "auto"（按住连发）
	FireMode string `yaml:"fireMode"`
}

// LightConfig 方向光配置
type LightConfig struct {
	Ambient   []float32 `yaml:"ambient"`
	Diffuse   []float32 `yaml:"diffuse"`
	Direction []float32 `yaml:"direction"`
}

// ParticleConfig 粒子发射器配置
type ParticleConfig struct {
	SpawnRate float64   `yaml:"spawnRate"` // 每秒生成数量
	MaxActive int       `yaml:"maxActive"`
	Lifetime  float64   `yaml:"lifetime"`
	Speed     float32   `yaml:"speed"`
	Size      float32   `yaml:"size"`
	Color     []float32 `yaml:"color"`
	// Offset 发射器相对摄像机的位置偏移（摄像机坐标系：右/上/前）
	Offset []float32 `yaml:"offset"`
}

// Fire modes
const (
	FireModeSingle = "single"
	FireModeAuto   = "auto"
)

// DefaultGameConfig 内置默认配置，与 data/game.yaml 保持一致
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Window:     WindowConfig{Title: "Starfield", Width: 1280, Height: 720, TPS: 60},
		Seed:       "starfield",
		ClearColor: []float32{0.4, 0.6, 0.75, 1},
		Physics: PhysicsConfig{
			Gravity:          []float32{0, -10, 0},
			FixedTimeStep:    1.0 / 60.0,
			MaxSubSteps:      4,
			SolverIterations: 10,
		},
		Camera: CameraConfig{
			Position:    []float32{0, 5, -15},
			FieldOfView: math.Pi / 4,
			Near:        0.1,
			Far:         500,
			MoveSpeed:   5,
			LookSpeed:   0.005,
		},
		MinimapCamera: CameraConfig{
			Position:    []float32{0, 60, 0},
			Pitch:       math.Pi/2 - 0.01,
			FieldOfView: math.Pi / 4,
			Near:        0.1,
			Far:         500,
		},
		Minimap: MinimapConfig{
			X:           1020,
			Y:           20,
			Width:       240,
			Height:      180,
			MarkerColor: []float32{1, 1, 0, 1},
			MarkerScale: 2,
		},
		Planet: PlanetConfig{Position: []float32{0, 0, 10}, Radius: 3, Spin: 0.2},
		Asteroids: AsteroidConfig{
			SpawnInterval:   5,
			DespawnInterval: 7,
			Scale:           1,
			Radius:          1,
			Mass:            1,
			Restitution:     0.5,
			SpawnOrigin:     []float32{0, 20, 10},
			Spread:          8,
			VelocityJitter:  3,
			MaxSlots:        64,
		},
		Projectiles: ProjectileConfig{
			Cooldown:     3,
			Speed:        30,
			Scale:        0.25,
			Radius:       0.25,
			Mass:         0.5,
			RespawnPoint: []float32{0, 3, -2},
			Lifetime:     4,
			MaxSlots:     16,
			FireMode:     FireModeSingle,
		},
		Lights: []LightConfig{
			{Ambient: []float32{0.1, 0.1, 0.1, 1}, Diffuse: []float32{0, 0, 1, 1}, Direction: []float32{1, -1, 0}},
			{Ambient: []float32{0.1, 0.1, 0.1, 1}, Diffuse: []float32{1, 0, 0, 1}, Direction: []float32{-1, -1, 0}},
		},
		Particles: ParticleConfig{
			SpawnRate: 40,
			MaxActive: 256,
			Lifetime:  1.5,
			Speed:     1.5,
			Size:      0.2,
			Color:     []float32{1, 0.6, 0.2, 1},
			Offset:    []float32{0, -1, 4},
		},
	}
}

// ParseGameConfig 解析 YAML 并校验；未出现的字段保留默认值
func ParseGameConfig(data []byte) (*GameConfig, error) {
	cfg := DefaultGameConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse game config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadGameConfig 从 YAML 文件加载游戏配置
func LoadGameConfig(filePath string) (*GameConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config file: %w", err)
	}
	return ParseGameConfig(data)
}

// Validate 检查配置的有效性，错误包装 ErrInvalidConfig
func (c *GameConfig) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return invalid("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.TPS <= 0 {
		return invalid("window.tps must be positive, got %d", c.Window.TPS)
	}

	vectors := []struct {
		name string
		v    []float32
		n    int
	}{
		{"clearColor", c.ClearColor, 4},
		{"physics.gravity", c.Physics.Gravity, 3},
		{"camera.position", c.Camera.Position, 3},
		{"minimapCamera.position", c.MinimapCamera.Position, 3},
		{"minimap.markerColor", c.Minimap.MarkerColor, 4},
		{"planet.position", c.Planet.Position, 3},
		{"asteroids.spawnOrigin", c.Asteroids.SpawnOrigin, 3},
		{"projectiles.respawnPoint", c.Projectiles.RespawnPoint, 3},
		{"particles.color", c.Particles.Color, 4},
		{"particles.offset", c.Particles.Offset, 3},
	}
	for _, v := range vectors {
		if len(v.v) != v.n {
			return invalid("%s must have %d components, got %d", v.name, v.n, len(v.v))
		}
	}

	if c.Physics.FixedTimeStep < 0 || c.Physics.MaxSubSteps < 0 {
		return invalid("physics.fixedTimeStep and physics.maxSubSteps must be >= 0")
	}
	if c.Physics.MaxSubSteps > 0 && c.Physics.FixedTimeStep == 0 {
		return invalid("physics.fixedTimeStep is required when maxSubSteps > 0")
	}

	for _, cam := range []struct {
		name string
		cfg  CameraConfig
	}{{"camera", c.Camera}, {"minimapCamera", c.MinimapCamera}} {
		if cam.cfg.FieldOfView <= 0 || cam.cfg.FieldOfView >= math.Pi {
			return invalid("%s.fieldOfView must be in (0, pi), got %v", cam.name, cam.cfg.FieldOfView)
		}
		if cam.cfg.Near <= 0 || cam.cfg.Far <= cam.cfg.Near {
			return invalid("%s near/far must satisfy 0 < near < far, got %v/%v", cam.name, cam.cfg.Near, cam.cfg.Far)
		}
	}

	if c.Minimap.Width <= 0 || c.Minimap.Height <= 0 {
		return invalid("minimap size must be positive, got %dx%d", c.Minimap.Width, c.Minimap.Height)
	}

	if c.Asteroids.SpawnInterval <= 0 || c.Asteroids.DespawnInterval <= 0 {
		return invalid("asteroid spawn/despawn intervals must be positive")
	}
	if c.Asteroids.Radius <= 0 || c.Asteroids.Mass < 0 || c.Asteroids.VelocityJitter < 0 || c.Asteroids.MaxSlots < 0 {
		return invalid("asteroid radius must be positive and mass/velocityJitter/maxSlots non-negative")
	}

	if c.Projectiles.Cooldown < 0 || c.Projectiles.Lifetime <= 0 {
		return invalid("projectile cooldown must be >= 0 and lifetime positive")
	}
	if c.Projectiles.Radius <= 0 || c.Projectiles.Mass <= 0 || c.Projectiles.MaxSlots < 0 {
		return invalid("projectile radius and mass must be positive")
	}
	if c.Projectiles.FireMode != FireModeSingle && c.Projectiles.FireMode != FireModeAuto {
		return invalid("projectiles.fireMode must be %q or %q, got %q", FireModeSingle, FireModeAuto, c.Projectiles.FireMode)
	}

	if len(c.Lights) != 2 {
		return invalid("exactly 2 lights are required, got %d", len(c.Lights))
	}
	for i, l := range c.Lights {
		if len(l.Ambient) != 4 || len(l.Diffuse) != 4 || len(l.Direction) != 3 {
			return invalid("lights[%d] needs ambient/diffuse RGBA and direction XYZ", i)
		}
		if Vec3(l.Direction).Len() == 0 {
			return invalid("lights[%d].direction must be non-zero", i)
		}
	}

	if c.Particles.SpawnRate < 0 || c.Particles.MaxActive < 0 || c.Particles.Lifetime <= 0 {
		return invalid("particles spawnRate/maxActive must be >= 0 and lifetime positive")
	}
	return nil
}

// SeedValue 把种子字符串哈希为 RNG 种子
func (c *GameConfig) SeedValue() int64 {
	return int64(xxhash.Sum64String(c.Seed))
}

// Vec3 把已校验的三元组转换为向量
func Vec3(v []float32) mgl32.Vec3 {
	var out mgl32.Vec3
	copy(out[:], v)
	return out
}

// Vec4 把已校验的四元组转换为向量
func Vec4(v []float32) mgl32.Vec4 {
	var out mgl32.Vec4
	copy(out[:], v)
	return out
}
