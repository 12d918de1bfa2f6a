package systems

import (
	"errors"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gonewx/starfield/pkg/camera"
	"github.com/gonewx/starfield/pkg/config"
	"github.com/gonewx/starfield/pkg/ecs"
	"github.com/gonewx/starfield/pkg/entities"
	"github.com/gonewx/starfield/pkg/gfx"
	"github.com/gonewx/starfield/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testScreen  = gfx.Viewport{Width: 800, Height: 600}
	testMinimap = gfx.Viewport{X: 600, Y: 10, Width: 190, Height: 140}
	testTint    = color.RGBA{R: 255, G: 255, A: 255}
)

type renderFixture struct {
	*spawnFixture
	render    *RenderSystem
	sprites   *ui.RecordingSprites
	particles *ParticleSystem
	planet    *entities.GameEntity
	marker    *entities.GameEntity
}

func newRenderFixture(t *testing.T) *renderFixture {
	t.Helper()
	f := &renderFixture{spawnFixture: newSpawnFixture(t, nil), sprites: &ui.RecordingSprites{}}

	mainCam := camera.New(mgl32.Vec3{0, 5, -15}, camera.DefaultOptions())
	mainCam.UpdateProjectionMatrix(testScreen.Aspect())
	mapOpts := camera.DefaultOptions()
	mapOpts.Movable = false
	mapCam := camera.New(mgl32.Vec3{0, 60, 0}, mapOpts)
	mapCam.SetRotation(camera.MaxPitch, 0)
	mapCam.UpdateViewMatrix()
	mapCam.UpdateProjectionMatrix(testMinimap.Aspect())

	sky, err := entities.NewSkyboxEntity(f.res)
	require.NoError(t, err)
	f.planet, err = entities.NewPlanetEntity(f.res, mgl32.Vec3{0, 0, 10}, 3)
	require.NoError(t, err)
	f.marker, err = entities.NewMinimapMarker(f.res, 2, testTint)
	require.NoError(t, err)

	pmat, err := f.res.GetMaterial(config.MaterialParticle)
	require.NoError(t, err)
	f.particles, err = NewParticleSystem(f.cfg.Particles, f.res.particleMesh(t), pmat, 7)
	require.NoError(t, err)

	f.spawner.SpawnAsteroid()
	f.res.device.Reset()

	tint := testTint
	f.render = NewRenderSystem(f.res.device, f.sprites, RenderSetup{
		MainCamera:    mainCam,
		MinimapCamera: mapCam,
		Screen:        testScreen,
		Minimap:       testMinimap,
		ClearColor:    color.RGBA{R: 100, G: 150, B: 190, A: 255},
		MinimapClear:  color.RGBA{A: 255},
		MarkerTint:    &tint,
		Sky:           sky,
		Statics:       []*entities.GameEntity{f.planet, f.marker},
		Arenas:        []*ecs.SlotArena{f.asteroids, f.projectiles},
		Particles:     f.particles,
	}, nil)
	return f
}

func (f *renderFixture) mesh(name string) *gfx.Mesh {
	return f.res.meshes[name]
}

func opNames(cmds []gfx.Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Op.String()
	}
	return out
}

func TestRenderSystem_PassOrder(t *testing.T) {
	f := newRenderFixture(t)
	f.render.Draw(FrameOptions{ShowMinimap: true})

	want := []string{
		"viewport", "clear", // 清屏
		"rasterizer", "depth", "submit", "rasterizer", "depth", // 天空盒
		"viewport", "submit", "submit", // 星球 + 小行星
		"blend", "depth", "blend", "depth", // 粒子（本帧为空）
		"viewport", "clear", "viewport", "submit", "submit", "submit", "viewport", // 小地图
		"present",
	}
	assert.Equal(t, want, opNames(f.res.device.Commands))
	assert.Equal(t, 1, f.res.device.Frames)
}

func TestRenderSystem_SkyPass(t *testing.T) {
	f := newRenderFixture(t)
	f.render.Draw(FrameOptions{})

	submits := f.res.device.Submits()
	require.NotEmpty(t, submits)
	sky := submits[0]
	assert.Equal(t, f.mesh(config.MeshSkybox).VertexBuffer, sky.VertexBuffer, "天空盒最先绘制")
	assert.Equal(t, gfx.RasterSky, sky.ActiveRasterizer)
	assert.Equal(t, gfx.DepthSky, sky.ActiveDepth)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, sky.Bindings.View.Col(3), "视图矩阵不含平移")

	for _, s := range submits[1:] {
		assert.Equal(t, gfx.RasterDefault, s.ActiveRasterizer, "天空盒之后恢复默认状态")
		assert.Equal(t, gfx.DepthDefault, s.ActiveDepth)
	}
}

func TestRenderSystem_MinimapUsesSamePath(t *testing.T) {
	f := newRenderFixture(t)
	f.render.Draw(FrameOptions{ShowMinimap: true})

	var mainVBs, mapVBs []gfx.BufferID
	var mapTints []*color.RGBA
	for _, s := range f.res.device.Submits()[1:] {
		switch s.ActiveViewport {
		case testScreen:
			mainVBs = append(mainVBs, s.VertexBuffer)
			if s.VertexBuffer == f.mesh(config.MeshSphere).VertexBuffer {
				assert.Nil(t, s.Bindings.Tint, "主视图使用材质颜色")
			}
		case testMinimap:
			mapVBs = append(mapVBs, s.VertexBuffer)
			mapTints = append(mapTints, s.Bindings.Tint)
		}
	}

	planet := f.mesh(config.MeshPlanet).VertexBuffer
	marker := f.mesh(config.MeshMarker).VertexBuffer
	sphere := f.mesh(config.MeshSphere).VertexBuffer
	assert.Equal(t, []gfx.BufferID{planet, sphere}, mainVBs, "主视图不绘制小地图标记")
	assert.Equal(t, []gfx.BufferID{planet, marker, sphere}, mapVBs)
	require.Len(t, mapTints, 3)
	assert.Nil(t, mapTints[0])
	assert.Equal(t, testTint, *mapTints[1])
	assert.Equal(t, testTint, *mapTints[2], "小地图中动态物体使用标记色")
}

func TestRenderSystem_MinimapHidden(t *testing.T) {
	f := newRenderFixture(t)
	f.render.Draw(FrameOptions{ShowMinimap: false})

	for _, c := range f.res.device.Commands {
		if c.Op == gfx.OpViewport {
			assert.Equal(t, testScreen, c.Viewport)
		}
	}
}

func TestRenderSystem_SkipsBodiesOutOfWorld(t *testing.T) {
	f := newRenderFixture(t)
	f.spawner.DespawnNext()
	f.res.device.Reset()

	f.render.Draw(FrameOptions{})
	sphere := f.mesh(config.MeshSphere).VertexBuffer
	for _, s := range f.res.device.Submits() {
		assert.NotEqual(t, sphere, s.VertexBuffer)
	}
}

func TestRenderSystem_ParticlePass(t *testing.T) {
	f := newRenderFixture(t)
	f.particles.Update(0.5)
	require.Positive(t, f.particles.Count())

	f.render.Draw(FrameOptions{})

	parts := f.res.device.SubmitsWithShader(gfx.ShaderParticleVS)
	require.Len(t, parts, 1)
	p := parts[0]
	assert.Equal(t, gfx.BlendParticle, p.ActiveBlend)
	assert.Equal(t, gfx.DepthReadOnly, p.ActiveDepth)
	assert.Equal(t, f.particles.Count()*6, p.IndexCount)

	var lastBlend gfx.BlendState
	var lastDepth gfx.DepthStencilState
	for _, c := range f.res.device.Commands {
		switch c.Op {
		case gfx.OpBlend:
			lastBlend = c.Blend
		case gfx.OpDepth:
			lastDepth = c.Depth
		}
	}
	assert.Equal(t, gfx.BlendDefault, lastBlend, "粒子之后恢复默认混合")
	assert.Equal(t, gfx.DepthDefault, lastDepth)
}

func TestRenderSystem_Overlay(t *testing.T) {
	f := newRenderFixture(t)
	var presentBefore bool
	f.render.Draw(FrameOptions{Overlay: func(s ui.SpriteService) {
		s.DrawText("fire mode: single", 10, 10)
		presentBefore = f.res.device.Frames > 0
	}})

	require.Len(t, f.sprites.Calls, 1)
	assert.Equal(t, "fire mode: single", f.sprites.Calls[0].Text)
	assert.False(t, presentBefore, "UI 在呈现之前绘制")
}

func TestRenderSystem_MissingResourcePanics(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *entities.GameEntity)
	}{
		{"缺少网格", func(e *entities.GameEntity) { e.Mesh = nil }},
		{"缺少材质", func(e *entities.GameEntity) { e.Material = nil }},
		{"缺少着色器", func(e *entities.GameEntity) {
			m := *e.Material
			m.PixelShader = 0
			e.Material = &m
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRenderFixture(t)
			tt.mutate(f.planet)

			err := capturePanic(func() { f.render.Draw(FrameOptions{}) })
			require.Error(t, err)
			assert.True(t, errors.Is(err, gfx.ErrMissingResource), "got %v", err)
		})
	}
}

func TestRenderSystem_SetScreen(t *testing.T) {
	f := newRenderFixture(t)
	vp := gfx.Viewport{Width: 1024, Height: 768}
	f.render.SetScreen(vp)
	f.render.Draw(FrameOptions{})

	assert.Equal(t, vp, f.res.device.Commands[0].Viewport)
	assert.Equal(t, vp, f.render.Screen())
}

// capturePanic 执行 fn 并返回 panic 携带的错误
func capturePanic(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			}
		}
	}()
	fn()
	return nil
}
