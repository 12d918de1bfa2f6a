package game

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gonewx/starfield/pkg/config"
	"github.com/gonewx/starfield/pkg/gfx"
	"github.com/gonewx/starfield/pkg/ui"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ResourceManager 集中管理网格、纹理、材质和着色器
//
// 所有资源在启动时由 LoadAll 一次性创建：几何体和纹理像素在 errgroup 中并发生成（纯 CPU），
// 之后在调用方协程上依次上传到设备。任一步失败都会中止初始化。
// 创建完成后资源只读，GetMesh/GetMaterial 可以在帧循环中安全调用。
//
// Usage:
//
//	rm := NewResourceManager(device, logger)
//	if err := rm.LoadAll(ctx); err != nil {
//	    return err
//	}
//	mesh, err := rm.GetMesh(config.MeshSphere)
type ResourceManager struct {
	device gfx.Device

	meshes    map[string]*gfx.Mesh
	materials map[string]*gfx.Material
	textures  map[string]gfx.TextureID
	shaders   map[string]gfx.ShaderID
	sampler   gfx.SamplerID

	logger *zap.Logger
}

// meshSpec 程序化网格描述
type meshSpec struct {
	name  string
	build func() gfx.Geometry
}

// textureSpec 程序化纹理描述
type textureSpec struct {
	name  string
	build func() image.Image
}

// materialSpec 材质 = 着色器对 + 纹理
type materialSpec struct {
	name         string
	vertexShader string
	pixelShader  string
	texture      string
}

var meshSpecs = []meshSpec{
	{config.MeshSphere, func() gfx.Geometry { return gfx.SphereGeometry(config.MeshSphere, 1, 16, 24) }},
	{config.MeshCube, func() gfx.Geometry { return gfx.CubeGeometry(config.MeshCube, 1) }},
	{config.MeshSkybox, func() gfx.Geometry { return gfx.CubeGeometry(config.MeshSkybox, 50) }},
	{config.MeshMarker, func() gfx.Geometry { return gfx.CubeGeometry(config.MeshMarker, 1) }},
	{config.MeshPlanet, func() gfx.Geometry { return gfx.SphereGeometry(config.MeshPlanet, 1, 24, 32) }},
}

var textureSpecs = []textureSpec{
	{config.TextureAsteroid, func() image.Image { return noiseTexture(64, color.RGBA{120, 110, 100, 255}, 40, 11) }},
	{config.TextureProjectile, func() image.Image { return solidTexture(4, color.RGBA{255, 170, 40, 255}) }},
	{config.TexturePlanet, planetTexture},
	{config.TextureSky, func() image.Image { return starTexture(256, 300, 7) }},
	{config.TextureMarker, func() image.Image { return solidTexture(4, color.RGBA{255, 255, 255, 255}) }},
	{config.TextureParticle, func() image.Image { return radialTexture(32) }},
	{config.TextureButtonPlay, func() image.Image { return buttonTexture(color.RGBA{40, 140, 70, 255}) }},
	{config.TextureButtonQuit, func() image.Image { return buttonTexture(color.RGBA{150, 50, 50, 255}) }},
}

var materialSpecs = []materialSpec{
	{config.MaterialAsteroid, gfx.ShaderBasicVS, gfx.ShaderBasicPS, config.TextureAsteroid},
	{config.MaterialProjectile, gfx.ShaderBasicVS, gfx.ShaderBasicPS, config.TextureProjectile},
	{config.MaterialPlanet, gfx.ShaderBasicVS, gfx.ShaderBasicPS, config.TexturePlanet},
	{config.MaterialSky, gfx.ShaderSkyVS, gfx.ShaderSkyPS, config.TextureSky},
	{config.MaterialMarker, gfx.ShaderBasicVS, gfx.ShaderBasicPS, config.TextureMarker},
	{config.MaterialParticle, gfx.ShaderParticleVS, gfx.ShaderParticlePS, config.TextureParticle},
}

var shaderNames = []string{
	gfx.ShaderBasicVS, gfx.ShaderBasicPS,
	gfx.ShaderSkyVS, gfx.ShaderSkyPS,
	gfx.ShaderParticleVS, gfx.ShaderParticlePS,
}

// NewResourceManager 创建空的资源管理器
func NewResourceManager(device gfx.Device, logger *zap.Logger) *ResourceManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceManager{
		device:    device,
		meshes:    make(map[string]*gfx.Mesh),
		materials: make(map[string]*gfx.Material),
		textures:  make(map[string]gfx.TextureID),
		shaders:   make(map[string]gfx.ShaderID),
		logger:    logger.Named("ResourceManager"),
	}
}

// LoadAll 创建全部资源
// 着色器或纹理缺失属于配置错误，返回的错误应中止启动
func (rm *ResourceManager) LoadAll(ctx context.Context) error {
	for _, name := range shaderNames {
		id, err := rm.device.LoadShader(name)
		if err != nil {
			return fmt.Errorf("load shader %q: %w", name, err)
		}
		rm.shaders[name] = id
	}

	geoms := make([]gfx.Geometry, len(meshSpecs))
	images := make([]image.Image, len(textureSpecs))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range meshSpecs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			geoms[i] = spec.build()
			return nil
		})
	}
	for i, spec := range textureSpecs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			images[i] = spec.build()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("generate resources: %w", err)
	}

	// 设备调用只在当前协程进行
	for _, geom := range geoms {
		mesh, err := rm.device.CreateMesh(geom.Name, geom.Vertices, geom.Indices)
		if err != nil {
			return fmt.Errorf("create mesh: %w", err)
		}
		mesh.Radius = geom.Radius
		rm.meshes[geom.Name] = mesh
	}
	for i, spec := range textureSpecs {
		id, err := rm.device.CreateTexture(spec.name, images[i])
		if err != nil {
			return fmt.Errorf("create texture %q: %w", spec.name, err)
		}
		rm.textures[spec.name] = id
	}

	sampler, err := rm.device.CreateSampler(gfx.SamplerDesc{Wrap: true, Linear: true})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	rm.sampler = sampler

	for _, spec := range materialSpecs {
		if err := rm.addMaterial(spec); err != nil {
			return err
		}
	}

	if err := rm.createParticleMesh(); err != nil {
		return err
	}

	rm.logger.Info("resources loaded",
		zap.Int("meshes", len(rm.meshes)),
		zap.Int("textures", len(rm.textures)),
		zap.Int("materials", len(rm.materials)))
	return nil
}

func (rm *ResourceManager) addMaterial(spec materialSpec) error {
	vs, ok := rm.shaders[spec.vertexShader]
	if !ok {
		return fmt.Errorf("material %q: %w: %s", spec.name, gfx.ErrUnknownShader, spec.vertexShader)
	}
	ps, ok := rm.shaders[spec.pixelShader]
	if !ok {
		return fmt.Errorf("material %q: %w: %s", spec.name, gfx.ErrUnknownShader, spec.pixelShader)
	}
	tex, ok := rm.textures[spec.texture]
	if !ok {
		return fmt.Errorf("material %q: %w: texture %s", spec.name, gfx.ErrMissingResource, spec.texture)
	}
	rm.materials[spec.name] = &gfx.Material{
		Name:         spec.name,
		VertexShader: vs,
		PixelShader:  ps,
		Texture:      tex,
		Sampler:      rm.sampler,
	}
	return nil
}

// createParticleMesh 粒子的动态网格：先用一个四边形分配缓冲，再清空
func (rm *ResourceManager) createParticleMesh() error {
	vs, is := gfx.BillboardQuads(
		[]mgl32.Vec3{{}}, []float32{1}, []mgl32.Vec4{{1, 1, 1, 1}},
		mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	mesh, err := rm.device.CreateMesh(config.MeshParticles, vs, is)
	if err != nil {
		return fmt.Errorf("create particle mesh: %w", err)
	}
	if err := rm.device.UpdateBuffers(mesh, nil, nil); err != nil {
		return fmt.Errorf("reset particle mesh: %w", err)
	}
	rm.meshes[config.MeshParticles] = mesh
	return nil
}

// GetMesh 按名称查询网格
func (rm *ResourceManager) GetMesh(name string) (*gfx.Mesh, error) {
	if m, ok := rm.meshes[name]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("mesh %q: %w", name, gfx.ErrMissingResource)
}

// GetMaterial 按名称查询材质
func (rm *ResourceManager) GetMaterial(name string) (*gfx.Material, error) {
	if m, ok := rm.materials[name]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("material %q: %w", name, gfx.ErrMissingResource)
}

// GetTexture 按名称查询纹理（UI 精灵使用）
func (rm *ResourceManager) GetTexture(name string) (gfx.TextureID, error) {
	if id, ok := rm.textures[name]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("texture %q: %w", name, gfx.ErrMissingResource)
}

// ---- 程序化纹理 ----

func solidTexture(size int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// noiseTexture 每个像素在 base 上随机偏移 ±amp
func noiseTexture(size int, base color.RGBA, amp int, seed int64) image.Image {
	r := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := r.Intn(2*amp+1) - amp
			img.SetRGBA(x, y, color.RGBA{clampByte(int(base.R) + d), clampByte(int(base.G) + d), clampByte(int(base.B) + d), 255})
		}
	}
	return img
}

// planetTexture 纬向条纹
func planetTexture() image.Image {
	const w, h = 128, 64
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		band := 0.5 + 0.5*math.Sin(float64(y)*0.45)
		c := color.RGBA{
			R: uint8(150 + 80*band),
			G: uint8(90 + 60*band),
			B: uint8(60 + 30*band),
			A: 255,
		}
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// starTexture 深蓝底色上的随机星点
func starTexture(size, stars int, seed int64) image.Image {
	img := solidTexture(size, color.RGBA{8, 10, 30, 255}).(*image.RGBA)
	r := rand.New(rand.NewSource(seed))
	for i := 0; i < stars; i++ {
		v := uint8(160 + r.Intn(96))
		img.SetRGBA(r.Intn(size), r.Intn(size), color.RGBA{v, v, v, 255})
	}
	return img
}

// radialTexture 中心不透明、边缘透明的圆点（粒子）
func radialTexture(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	c := float64(size-1) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)-c, float64(y)-c) / c
			a := clampByte(int(255 * (1 - d)))
			img.SetRGBA(x, y, color.RGBA{255, 255, 255, a})
		}
	}
	return img
}

// buttonTexture 带 2 像素浅色边框的按钮底图
func buttonTexture(fill color.RGBA) image.Image {
	const w, h, border = ui.ButtonWidth, ui.ButtonHeight, 2
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	edge := color.RGBA{clampByte(int(fill.R) + 80), clampByte(int(fill.G) + 80), clampByte(int(fill.B) + 80), 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < border || y < border || x >= w-border || y >= h-border {
				img.SetRGBA(x, y, edge)
			} else {
				img.SetRGBA(x, y, fill)
			}
		}
	}
	return img
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
