package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gonewx/starfield/pkg/config"
	"github.com/gonewx/starfield/pkg/gfx"
)

// Particle 单个粒子
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Age      float64
	Lifetime float64
	Size     float32
}

// ParticleSystem 单个发射器的 CPU 粒子系统
//
// Update 阶段生成、推进和淘汰粒子；绘制阶段由 RenderSystem 调用 Upload，
// 按当前摄像机朝向生成公告板四边形并写入动态网格。
type ParticleSystem struct {
	cfg       config.ParticleConfig
	emitter   mgl32.Vec3
	particles []Particle
	spawnAcc  float64
	rng       *rand.Rand
	color     mgl32.Vec4

	mesh     *gfx.Mesh
	material *gfx.Material

	centers []mgl32.Vec3
	sizes   []float32
	colors  []mgl32.Vec4
}

// NewParticleSystem 创建粒子系统
// mesh 是由 ResourceManager 创建的动态网格，每帧被覆盖
func NewParticleSystem(cfg config.ParticleConfig, mesh *gfx.Mesh, material *gfx.Material, seed int64) (*ParticleSystem, error) {
	if mesh == nil || material == nil {
		return nil, fmt.Errorf("particle system: %w: mesh or material", gfx.ErrMissingResource)
	}
	return &ParticleSystem{
		cfg:       cfg,
		particles: make([]Particle, 0, cfg.MaxActive),
		rng:       rand.New(rand.NewSource(seed)),
		color:     config.Vec4(cfg.Color),
		mesh:      mesh,
		material:  material,
	}, nil
}

// SetEmitterPosition 移动发射器
func (ps *ParticleSystem) SetEmitterPosition(p mgl32.Vec3) {
	ps.emitter = p
}

func (ps *ParticleSystem) EmitterPosition() mgl32.Vec3 { return ps.emitter }
func (ps *ParticleSystem) Count() int { return len(ps.particles) }
func (ps *ParticleSystem) Particles() []Particle { return ps.particles }
func (ps *ParticleSystem) Mesh() *gfx.Mesh { return ps.mesh }
func (ps *ParticleSystem) Material() *gfx.Material { return ps.material }

// Update 生成新粒子、推进并淘汰过期粒子
func (ps *ParticleSystem) Update(dt float64) {
	ps.spawnAcc += dt * ps.cfg.SpawnRate
	n := int(ps.spawnAcc)
	ps.spawnAcc -= float64(n)
	for i := 0; i < n && len(ps.particles) < ps.cfg.MaxActive; i++ {
		ps.spawn()
	}

	alive := ps.particles[:0]
	for _, p := range ps.particles {
		p.Age += dt
		if p.Age >= p.Lifetime {
			continue
		}
		p.Position = p.Position.Add(p.Velocity.Mul(float32(dt)))
		alive = append(alive, p)
	}
	ps.particles = alive
}

// spawn 在发射器位置生成一个方向随机的粒子
func (ps *ParticleSystem) spawn() {
	theta := ps.rng.Float64() * 2 * math.Pi
	z := ps.rng.Float64()*2 - 1
	r := math.Sqrt(1 - z*z)
	dir := mgl32.Vec3{float32(r * math.Cos(theta)), float32(r * math.Sin(theta)), float32(z)}
	speed := ps.cfg.Speed * (0.5 + ps.rng.Float32()*0.5)

	ps.particles = append(ps.particles, Particle{
		Position: ps.emitter,
		Velocity: dir.Mul(speed),
		Lifetime: ps.cfg.Lifetime * (0.75 + ps.rng.Float64()*0.25),
		Size:     ps.cfg.Size,
	})
}

// Upload 生成面向摄像机的四边形并写入动态网格
// 粒子颜色的 alpha 随寿命线性衰减
func (ps *ParticleSystem) Upload(device gfx.Device, right, up mgl32.Vec3) error {
	ps.centers = ps.centers[:0]
	ps.sizes = ps.sizes[:0]
	ps.colors = ps.colors[:0]
	for _, p := range ps.particles {
		fade := float32(1 - p.Age/p.Lifetime)
		ps.centers = append(ps.centers, p.Position)
		ps.sizes = append(ps.sizes, p.Size)
		ps.colors = append(ps.colors, mgl32.Vec4{ps.color.X(), ps.color.Y(), ps.color.Z(), ps.color.W() * fade})
	}
	vertices, indices := gfx.BillboardQuads(ps.centers, ps.sizes, ps.colors, right, up)
	return device.UpdateBuffers(ps.mesh, vertices, indices)
}
