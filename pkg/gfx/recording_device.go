package gfx

import (
	"image"
	"image/color"
)

// CommandOp 记录的设备调用类型
type CommandOp int

const (
	OpClear CommandOp = iota
	OpViewport
	OpRasterizer
	OpDepth
	OpBlend
	OpSubmit
	OpPresent
)

func (op CommandOp) String() string {
	switch op {
	case OpClear:
		return "clear"
	case OpViewport:
		return "viewport"
	case OpRasterizer:
		return "rasterizer"
	case OpDepth:
		return "depth"
	case OpBlend:
		return "blend"
	case OpSubmit:
		return "submit"
	case OpPresent:
		return "present"
	default:
		return "unknown"
	}
}

// Command 一次被记录的设备调用
type Command struct {
	Op         CommandOp
	Color      color.RGBA
	Viewport   Viewport
	Rasterizer RasterizerState
	Depth      DepthStencilState
	Blend      BlendState

	VertexBuffer BufferID
	IndexBuffer  BufferID
	IndexCount   int
	Bindings     ShaderBindings
	// 以下为提交时的管线状态快照
	ActiveViewport   Viewport
	ActiveRasterizer RasterizerState
	ActiveDepth      DepthStencilState
	ActiveBlend      BlendState
}

// RecordingDevice 不绘制任何像素，只记录调用序列
// 用于无窗口运行（cmd/verify_frames）和渲染顺序的测试
type RecordingDevice struct {
	store

	Commands []Command
	Frames   int

	viewport Viewport
	raster   RasterizerState
	depth    DepthStencilState
	blend    BlendState
}

// NewRecordingDevice 创建记录设备
func NewRecordingDevice() *RecordingDevice {
	return &RecordingDevice{
		store:  newStore(),
		raster: RasterDefault,
		depth:  DepthDefault,
		blend:  BlendDefault,
	}
}

func (d *RecordingDevice) CreateMesh(name string, vertices []Vertex, indices []uint32) (*Mesh, error) {
	return d.createMesh(name, vertices, indices)
}

func (d *RecordingDevice) UpdateBuffers(mesh *Mesh, vertices []Vertex, indices []uint32) error {
	return d.updateBuffers(mesh, vertices, indices)
}

func (d *RecordingDevice) CreateTexture(name string, img image.Image) (TextureID, error) {
	return d.createTexture(name, img)
}

func (d *RecordingDevice) CreateSampler(desc SamplerDesc) (SamplerID, error) {
	return d.createSampler(desc)
}

func (d *RecordingDevice) LoadShader(name string) (ShaderID, error) {
	return d.loadShader(name)
}

func (d *RecordingDevice) Clear(c color.RGBA) {
	d.Commands = append(d.Commands, Command{Op: OpClear, Color: c, ActiveViewport: d.viewport})
}

func (d *RecordingDevice) SetViewport(vp Viewport) {
	d.viewport = vp
	d.Commands = append(d.Commands, Command{Op: OpViewport, Viewport: vp})
}

func (d *RecordingDevice) SetRasterizerState(s RasterizerState) {
	d.raster = s
	d.Commands = append(d.Commands, Command{Op: OpRasterizer, Rasterizer: s})
}

func (d *RecordingDevice) SetDepthStencilState(s DepthStencilState) {
	d.depth = s
	d.Commands = append(d.Commands, Command{Op: OpDepth, Depth: s})
}

func (d *RecordingDevice) SetBlendState(s BlendState) {
	d.blend = s
	d.Commands = append(d.Commands, Command{Op: OpBlend, Blend: s})
}

// Submit 记录一次绘制；前置条件不满足时 panic
func (d *RecordingDevice) Submit(vb, ib BufferID, indexCount int, b *ShaderBindings) {
	if err := d.checkSubmit(vb, ib, indexCount, b); err != nil {
		panic(err)
	}
	d.Commands = append(d.Commands, Command{
		Op:               OpSubmit,
		VertexBuffer:     vb,
		IndexBuffer:      ib,
		IndexCount:       indexCount,
		Bindings:         *b,
		ActiveViewport:   d.viewport,
		ActiveRasterizer: d.raster,
		ActiveDepth:      d.depth,
		ActiveBlend:      d.blend,
	})
}

func (d *RecordingDevice) Present() {
	d.Frames++
	d.Commands = append(d.Commands, Command{Op: OpPresent})
}

// Reset 清空已记录的命令
func (d *RecordingDevice) Reset() {
	d.Commands = d.Commands[:0]
}

// Submits 返回所有提交命令
func (d *RecordingDevice) Submits() []Command {
	var out []Command
	for _, c := range d.Commands {
		if c.Op == OpSubmit {
			out = append(out, c)
		}
	}
	return out
}

// SubmitsWithShader 返回使用指定顶点着色器程序的提交
func (d *RecordingDevice) SubmitsWithShader(vsName string) []Command {
	var out []Command
	for _, c := range d.Commands {
		if c.Op == OpSubmit && d.ShaderName(c.Bindings.VertexShader) == vsName {
			out = append(out, c)
		}
	}
	return out
}
