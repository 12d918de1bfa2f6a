// Package gfx 定义核心依赖的图形设备契约以及网格、材质、光照等句柄
//
// 设备的具体实现（缓冲区、着色器、纹理的创建）对核心是不透明服务：
// 核心只通过 Device 接口提交绘制，自身不关心底层 API。
package gfx

import (
	"errors"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrUnknownShader 请求的着色器程序不存在（配置错误，初始化应中止）
	ErrUnknownShader = errors.New("gfx: unknown shader")
	// ErrMissingResource 句柄为空或已释放
	ErrMissingResource = errors.New("gfx: missing resource")
)

// Vertex 网格顶点
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Color    mgl32.Vec4 // 顶点色（粒子使用），不透明网格为白色
}

// BufferID / ShaderID / TextureID / SamplerID 都是设备分配的不透明句柄，0 表示无效
type (
	BufferID  uint32
	ShaderID  uint32
	TextureID uint32
	SamplerID uint32
)

// Mesh 不可变的网格句柄（构造后核心只读）
type Mesh struct {
	Name         string
	VertexBuffer BufferID
	IndexBuffer  BufferID
	IndexCount   int
	// Radius 包围球半径（局部空间），用于生成物理形状
	Radius float32
}

// Material 材质句柄：着色器 + 纹理/法线贴图/采样器
type Material struct {
	Name         string
	VertexShader ShaderID
	PixelShader  ShaderID
	Texture      TextureID
	NormalMap    TextureID
	Sampler      SamplerID
}

// DirectionalLight 方向光，场景初始化后只读
type DirectionalLight struct {
	AmbientColor mgl32.Vec4
	DiffuseColor mgl32.Vec4
	Direction    mgl32.Vec3
}

// Viewport 屏幕上的绘制区域（像素）
type Viewport struct {
	X, Y          int
	Width, Height int
}

// Rect 返回视口对应的 image.Rectangle
func (v Viewport) Rect() image.Rectangle {
	return image.Rect(v.X, v.Y, v.X+v.Width, v.Y+v.Height)
}

// Aspect 视口宽高比，高度为 0 时返回 1
func (v Viewport) Aspect() float32 {
	if v.Height == 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// CullMode 光栅化剔除模式
type CullMode int

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

// RasterizerState 光栅化状态
type RasterizerState struct {
	Cull CullMode
}

// DepthFunc 深度比较函数
type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
	DepthAlways
)

// DepthStencilState 深度状态
type DepthStencilState struct {
	Enable bool
	Write  bool
	Func   DepthFunc
}

// BlendMode 混合模式
type BlendMode int

const (
	BlendOpaque BlendMode = iota
	BlendAlpha
	BlendAdditive
)

// BlendState 混合状态
type BlendState struct {
	Mode BlendMode
}

// 常用状态组合
var (
	RasterDefault = RasterizerState{Cull: CullBack}
	RasterSky     = RasterizerState{Cull: CullFront}

	DepthDefault  = DepthStencilState{Enable: true, Write: true, Func: DepthLess}
	DepthSky      = DepthStencilState{Enable: true, Write: true, Func: DepthLessEqual}
	DepthReadOnly = DepthStencilState{Enable: true, Write: false, Func: DepthLess}

	BlendDefault  = BlendState{Mode: BlendOpaque}
	BlendParticle = BlendState{Mode: BlendAdditive}
)

// ShaderBindings 一次绘制提交的顶点阶段与像素阶段绑定
type ShaderBindings struct {
	VertexShader ShaderID
	PixelShader  ShaderID

	// 顶点阶段
	World      mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4

	// 像素阶段
	Texture   TextureID
	NormalMap TextureID
	Sampler   SamplerID
	Lights    [2]DirectionalLight
	// Tint 非 nil 时覆盖输出颜色（小地图标记色）
	Tint *color.RGBA
}

// SamplerDesc 采样器描述
type SamplerDesc struct {
	Wrap   bool
	Linear bool
}

// Device 图形设备服务
//
// 核心假定这些调用不会在帧中途静默失败：资源创建错误在初始化时返回，
// Submit 的前置条件（有效句柄）由调用方保证。
type Device interface {
	CreateMesh(name string, vertices []Vertex, indices []uint32) (*Mesh, error)
	// UpdateBuffers 替换动态网格（粒子）的顶点和索引数据
	UpdateBuffers(mesh *Mesh, vertices []Vertex, indices []uint32) error
	CreateTexture(name string, img image.Image) (TextureID, error)
	CreateSampler(desc SamplerDesc) (SamplerID, error)
	LoadShader(name string) (ShaderID, error)

	Clear(c color.RGBA)
	SetViewport(vp Viewport)
	SetRasterizerState(s RasterizerState)
	SetDepthStencilState(s DepthStencilState)
	SetBlendState(s BlendState)
	Submit(vb, ib BufferID, indexCount int, b *ShaderBindings)
	Present()
}
