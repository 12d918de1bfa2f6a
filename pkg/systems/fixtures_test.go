package systems

import (
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gonewx/starfield/pkg/config"
	"github.com/gonewx/starfield/pkg/ecs"
	"github.com/gonewx/starfield/pkg/gfx"
	"github.com/gonewx/starfield/pkg/physics"
	"github.com/stretchr/testify/require"
)

// testResources 在记录设备上创建的最小资源表
type testResources struct {
	device    *gfx.RecordingDevice
	meshes    map[string]*gfx.Mesh
	materials map[string]*gfx.Material
}

func newTestResources(t *testing.T) *testResources {
	t.Helper()
	dev := gfx.NewRecordingDevice()
	r := &testResources{
		device:    dev,
		meshes:    make(map[string]*gfx.Mesh),
		materials: make(map[string]*gfx.Material),
	}

	geoms := map[string]gfx.Geometry{
		config.MeshSphere: gfx.SphereGeometry(config.MeshSphere, 1, 6, 8),
		config.MeshCube:   gfx.CubeGeometry(config.MeshCube, 1),
		config.MeshSkybox: gfx.CubeGeometry(config.MeshSkybox, 50),
		config.MeshMarker: gfx.CubeGeometry(config.MeshMarker, 1),
		config.MeshPlanet: gfx.SphereGeometry(config.MeshPlanet, 1, 6, 8),
	}
	for name, g := range geoms {
		m, err := dev.CreateMesh(name, g.Vertices, g.Indices)
		require.NoError(t, err)
		r.meshes[name] = m
	}

	basicVS, err := dev.LoadShader(gfx.ShaderBasicVS)
	require.NoError(t, err)
	basicPS, err := dev.LoadShader(gfx.ShaderBasicPS)
	require.NoError(t, err)
	skyVS, err := dev.LoadShader(gfx.ShaderSkyVS)
	require.NoError(t, err)
	skyPS, err := dev.LoadShader(gfx.ShaderSkyPS)
	require.NoError(t, err)
	partVS, err := dev.LoadShader(gfx.ShaderParticleVS)
	require.NoError(t, err)
	partPS, err := dev.LoadShader(gfx.ShaderParticlePS)
	require.NoError(t, err)

	for _, name := range []string{config.MaterialAsteroid, config.MaterialProjectile, config.MaterialPlanet, config.MaterialMarker} {
		r.materials[name] = &gfx.Material{Name: name, VertexShader: basicVS, PixelShader: basicPS}
	}
	r.materials[config.MaterialSky] = &gfx.Material{Name: config.MaterialSky, VertexShader: skyVS, PixelShader: skyPS}
	r.materials[config.MaterialParticle] = &gfx.Material{Name: config.MaterialParticle, VertexShader: partVS, PixelShader: partPS}
	return r
}

func (r *testResources) GetMesh(name string) (*gfx.Mesh, error) {
	if m, ok := r.meshes[name]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("mesh %q: %w", name, gfx.ErrMissingResource)
}

func (r *testResources) GetMaterial(name string) (*gfx.Material, error) {
	if m, ok := r.materials[name]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("material %q: %w", name, gfx.ErrMissingResource)
}

// particleMesh 粒子用的空动态网格
func (r *testResources) particleMesh(t *testing.T) *gfx.Mesh {
	t.Helper()
	vs, is := gfx.BillboardQuads([]mgl32.Vec3{{}}, []float32{1}, []mgl32.Vec4{{1, 1, 1, 1}}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	m, err := r.device.CreateMesh("particles", vs, is)
	require.NoError(t, err)
	require.NoError(t, r.device.UpdateBuffers(m, nil, nil))
	return m
}

type spawnFixture struct {
	world       *physics.World
	res         *testResources
	asteroids   *ecs.SlotArena
	projectiles *ecs.SlotArena
	spawner     *SpawnSystem
	sounds      *recordingSounds
	cfg         *config.GameConfig
}

// newSpawnFixture 无重力世界 + 默认配置；mutate 可修改配置
func newSpawnFixture(t *testing.T, mutate func(cfg *config.GameConfig)) *spawnFixture {
	t.Helper()
	cfg := config.DefaultGameConfig()
	if mutate != nil {
		mutate(cfg)
	}
	pc := physics.DefaultConfig()
	pc.Gravity = mgl32.Vec3{}
	pc.MaxSubSteps = 0

	f := &spawnFixture{
		world:       physics.NewWorld(pc, nil),
		res:         newTestResources(t),
		asteroids:   ecs.NewSlotArena(),
		projectiles: ecs.NewSlotArena(),
		sounds:      &recordingSounds{},
		cfg:         cfg,
	}
	s, err := NewSpawnSystem(f.world, f.res, f.asteroids, f.projectiles, cfg, 42, f.sounds, nil)
	require.NoError(t, err)
	f.spawner = s
	return f
}

type recordingSounds struct {
	played []string
}

func (r *recordingSounds) Play(name string) { r.played = append(r.played, name) }
