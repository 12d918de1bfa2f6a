package systems

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gonewx/starfield/pkg/camera"
	"github.com/gonewx/starfield/pkg/ecs"
	"github.com/gonewx/starfield/pkg/entities"
	"github.com/gonewx/starfield/pkg/gfx"
	"github.com/gonewx/starfield/pkg/ui"
	"go.uber.org/zap"
)

// RenderSetup 渲染系统的输入
type RenderSetup struct {
	MainCamera    *camera.Camera
	MinimapCamera *camera.Camera
	Screen        gfx.Viewport
	Minimap       gfx.Viewport
	Lights        [2]gfx.DirectionalLight
	ClearColor    color.RGBA
	MinimapClear  color.RGBA
	// MarkerTint 小地图中动态物体的统一颜色，nil 表示使用材质颜色
	MarkerTint *color.RGBA

	Sky       *entities.GameEntity
	Statics   []*entities.GameEntity
	Arenas    []*ecs.SlotArena
	Particles *ParticleSystem
}

// FrameOptions 每帧可变的绘制选项
type FrameOptions struct {
	ShowMinimap bool
	// Overlay 屏幕空间 UI 绘制
	Overlay func(s ui.SpriteService)
}

// RenderSystem 多通道渲染
//
// 每帧按固定顺序执行：清屏 → 天空盒 → 不透明实体 → 动态物体 → 粒子 → UI → 小地图 → 呈现。
// 主视图和小地图共用 drawScene，只有摄像机、视口和过滤条件不同。
// 绘制阶段只读取实体和摄像机状态。
type RenderSystem struct {
	device  gfx.Device
	sprites ui.SpriteService
	setup   RenderSetup
	logger  *zap.Logger
}

// scenePass 一次场景通道的参数
type scenePass struct {
	name     string
	camera   *camera.Camera
	viewport gfx.Viewport
	// minimap 为 true 时包含只在小地图显示的实体
	minimap bool
	tint    *color.RGBA
}

// NewRenderSystem 创建渲染系统
func NewRenderSystem(device gfx.Device, sprites ui.SpriteService, setup RenderSetup, logger *zap.Logger) *RenderSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &RenderSystem{
		device:  device,
		sprites: sprites,
		setup:   setup,
		logger:  logger.Named("RenderSystem"),
	}
	r.logger.Debug("initialized",
		zap.Int("statics", len(setup.Statics)),
		zap.Int("screenW", setup.Screen.Width),
		zap.Int("screenH", setup.Screen.Height))
	return r
}

// SetScreen 窗口尺寸变化后更新主视口
func (r *RenderSystem) SetScreen(vp gfx.Viewport) { r.setup.Screen = vp }

// SetMinimapViewport 更新小地图视口
func (r *RenderSystem) SetMinimapViewport(vp gfx.Viewport) { r.setup.Minimap = vp }

func (r *RenderSystem) Screen() gfx.Viewport { return r.setup.Screen }
func (r *RenderSystem) MinimapViewport() gfx.Viewport { return r.setup.Minimap }

// Draw 绘制一帧
// 缺少网格、材质或着色器属于前置条件错误，直接 panic
func (r *RenderSystem) Draw(opts FrameOptions) {
	s := &r.setup

	// 1. 清屏
	r.device.SetViewport(s.Screen)
	r.device.Clear(s.ClearColor)

	// 2. 天空盒：正面剔除 + LessEqual，视图矩阵去掉平移
	if s.Sky != nil {
		r.device.SetRasterizerState(gfx.RasterSky)
		r.device.SetDepthStencilState(gfx.DepthSky)
		r.submit("sky", s.Sky, s.MainCamera.SkyView(), s.MainCamera.Projection(), nil)
		r.device.SetRasterizerState(gfx.RasterDefault)
		r.device.SetDepthStencilState(gfx.DepthDefault)
	}

	// 3/4. 不透明实体与动态物体
	r.drawScene(scenePass{
		name:     "main",
		camera:   s.MainCamera,
		viewport: s.Screen,
	})

	// 5. 粒子：叠加混合、不写深度，结束后恢复默认状态
	r.drawParticles()

	// 6. UI
	if opts.Overlay != nil && r.sprites != nil {
		opts.Overlay(r.sprites)
	}

	// 7. 小地图
	if opts.ShowMinimap && s.MinimapCamera != nil {
		r.device.SetViewport(s.Minimap)
		r.device.Clear(s.MinimapClear)
		r.drawScene(scenePass{
			name:     "minimap",
			camera:   s.MinimapCamera,
			viewport: s.Minimap,
			minimap:  true,
			tint:     s.MarkerTint,
		})
		r.device.SetViewport(s.Screen)
	}

	// 8. 呈现
	r.device.Present()
}

// drawScene 用给定摄像机和视口绘制静态实体和在世界中的动态物体
func (r *RenderSystem) drawScene(p scenePass) {
	r.device.SetViewport(p.viewport)
	view, proj := p.camera.View(), p.camera.Projection()

	for _, e := range r.setup.Statics {
		if e.MinimapOnly && !p.minimap {
			continue
		}
		r.submit(p.name, e, view, proj, e.Tint)
	}

	for _, arena := range r.setup.Arenas {
		arena.Each(func(_ ecs.SlotID, slot *ecs.Slot) {
			if !slotInWorld(slot) {
				return
			}
			tint := slot.Entity.Tint
			if p.tint != nil {
				tint = p.tint
			}
			r.submit(p.name, slot.Entity, view, proj, tint)
		})
	}
}

func (r *RenderSystem) drawParticles() {
	ps := r.setup.Particles
	if ps == nil {
		return
	}
	cam := r.setup.MainCamera
	if err := ps.Upload(r.device, cam.Right(), cam.Up()); err != nil {
		panic(fmt.Errorf("render particles: %w", err))
	}

	r.device.SetBlendState(gfx.BlendParticle)
	r.device.SetDepthStencilState(gfx.DepthReadOnly)
	if ps.Mesh().IndexCount > 0 {
		m := ps.Material()
		mustMaterial("particles", "particles", m)
		r.device.Submit(ps.Mesh().VertexBuffer, ps.Mesh().IndexBuffer, ps.Mesh().IndexCount, &gfx.ShaderBindings{
			VertexShader: m.VertexShader,
			PixelShader:  m.PixelShader,
			World:        mgl32.Ident4(),
			View:         cam.View(),
			Projection:   cam.Projection(),
			Texture:      m.Texture,
			Sampler:      m.Sampler,
		})
	}
	r.device.SetBlendState(gfx.BlendDefault)
	r.device.SetDepthStencilState(gfx.DepthDefault)
}

// submit 绑定实体的网格、材质、矩阵和光照并提交
func (r *RenderSystem) submit(pass string, e *entities.GameEntity, view, proj mgl32.Mat4, tint *color.RGBA) {
	if e == nil {
		panic(fmt.Errorf("render %s pass: %w: nil entity", pass, gfx.ErrMissingResource))
	}
	if e.Mesh == nil || e.Mesh.VertexBuffer == 0 || e.Mesh.IndexBuffer == 0 {
		panic(fmt.Errorf("render %s pass: entity %q: %w: mesh", pass, e.Name, gfx.ErrMissingResource))
	}
	mustMaterial(pass, e.Name, e.Material)

	r.device.Submit(e.Mesh.VertexBuffer, e.Mesh.IndexBuffer, e.Mesh.IndexCount, &gfx.ShaderBindings{
		VertexShader: e.Material.VertexShader,
		PixelShader:  e.Material.PixelShader,
		World:        e.Transform.WorldMatrix(),
		View:         view,
		Projection:   proj,
		Texture:      e.Material.Texture,
		NormalMap:    e.Material.NormalMap,
		Sampler:      e.Material.Sampler,
		Lights:       r.setup.Lights,
		Tint:         tint,
	})
}

func mustMaterial(pass, name string, m *gfx.Material) {
	if m == nil || m.VertexShader == 0 || m.PixelShader == 0 {
		panic(fmt.Errorf("render %s pass: entity %q: %w: material or shader", pass, name, gfx.ErrMissingResource))
	}
}

// slotInWorld 只绘制刚体仍在物理世界中的槽位
func slotInWorld(slot *ecs.Slot) bool {
	return slot.Alive && slot.Entity != nil && slot.Body != nil && slot.Body.Body != nil && slot.Body.Body.InWorld()
}
