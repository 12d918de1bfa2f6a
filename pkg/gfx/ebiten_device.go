package gfx

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// maxBatchVertices DrawTriangles 使用 uint16 索引
const maxBatchVertices = 65532

// EbitenDevice 基于 Ebitengine 的软件顶点阶段设备
//
// 顶点变换、近平面裁剪、面剔除和光照在 CPU 上完成，最终通过
// DrawTriangles 提交屏幕空间三角形。Ebitengine 没有深度缓冲，
// 每次提交内部按深度从远到近排序（画家算法），跨提交依赖绘制顺序。
type EbitenDevice struct {
	store

	images map[TextureID]*ebiten.Image
	white  *ebiten.Image
	target *ebiten.Image

	viewport Viewport
	raster   RasterizerState
	depth    DepthStencilState
	blend    BlendState

	tris     []screenTri
	vertices []ebiten.Vertex
	indices  []uint16

	// DrawCalls 上一帧提交的 DrawTriangles 次数
	DrawCalls int
	drawCalls int
}

type clipVertex struct {
	pos   mgl32.Vec4
	uv    mgl32.Vec2
	color mgl32.Vec4
}

type screenTri struct {
	v     [3]clipVertex
	depth float32
}

// NewEbitenDevice 创建设备
func NewEbitenDevice() *EbitenDevice {
	base := ebiten.NewImage(3, 3)
	base.Fill(color.White)
	return &EbitenDevice{
		store:  newStore(),
		images: make(map[TextureID]*ebiten.Image),
		white:  base.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
		raster: RasterDefault,
		depth:  DepthDefault,
		blend:  BlendDefault,
	}
}

// SetTarget 设置本帧的渲染目标（ebiten 的屏幕图像）
func (d *EbitenDevice) SetTarget(screen *ebiten.Image) {
	d.target = screen
	b := screen.Bounds()
	d.viewport = Viewport{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}
}

func (d *EbitenDevice) CreateMesh(name string, vertices []Vertex, indices []uint32) (*Mesh, error) {
	return d.createMesh(name, vertices, indices)
}

func (d *EbitenDevice) UpdateBuffers(mesh *Mesh, vertices []Vertex, indices []uint32) error {
	return d.updateBuffers(mesh, vertices, indices)
}

func (d *EbitenDevice) CreateTexture(name string, img image.Image) (TextureID, error) {
	id, err := d.createTexture(name, img)
	if err != nil {
		return 0, err
	}
	d.images[id] = ebiten.NewImageFromImage(img)
	return id, nil
}

// Image 返回纹理句柄对应的 GPU 图像，供屏幕空间精灵绘制
func (d *EbitenDevice) Image(id TextureID) *ebiten.Image {
	return d.images[id]
}

func (d *EbitenDevice) CreateSampler(desc SamplerDesc) (SamplerID, error) {
	return d.createSampler(desc)
}

func (d *EbitenDevice) LoadShader(name string) (ShaderID, error) {
	return d.loadShader(name)
}

// Clear 填充当前视口
func (d *EbitenDevice) Clear(c color.RGBA) {
	d.mustTarget()
	d.viewportImage().Fill(c)
}

func (d *EbitenDevice) SetViewport(vp Viewport) { d.viewport = vp }
func (d *EbitenDevice) SetRasterizerState(s RasterizerState) { d.raster = s }
func (d *EbitenDevice) SetDepthStencilState(s DepthStencilState) { d.depth = s }
func (d *EbitenDevice) SetBlendState(s BlendState) { d.blend = s }

// Present 结束一帧；屏幕翻转由 Ebitengine 在 Draw 返回后完成
func (d *EbitenDevice) Present() {
	d.DrawCalls = d.drawCalls
	d.drawCalls = 0
}

// Submit 变换、裁剪、剔除并绘制一个索引网格
func (d *EbitenDevice) Submit(vb, ib BufferID, indexCount int, b *ShaderBindings) {
	d.mustTarget()
	if err := d.checkSubmit(vb, ib, indexCount, b); err != nil {
		panic(err)
	}

	src := d.white
	if img, ok := d.images[b.Texture]; ok {
		src = img
	}
	srcW, srcH := float32(src.Bounds().Dx()), float32(src.Bounds().Dy())

	vertices := d.vertexBuffers[vb]
	indices := d.indexBuffers[ib][:indexCount]
	mvp := b.Projection.Mul4(b.View).Mul4(b.World)
	normalMatrix := b.World.Mat3().Inv().Transpose()
	pixel := d.ShaderName(b.PixelShader)

	shaded := make([]clipVertex, len(vertices))
	for i, v := range vertices {
		shaded[i] = clipVertex{
			pos:   mvp.Mul4x1(v.Position.Vec4(1)),
			uv:    v.UV,
			color: shadeVertex(pixel, v, normalMatrix, b),
		}
	}

	d.tris = d.tris[:0]
	for i := 0; i+2 < len(indices); i += 3 {
		tri := [3]clipVertex{shaded[indices[i]], shaded[indices[i+1]], shaded[indices[i+2]]}
		for _, t := range clipNear(tri) {
			if st, ok := d.project(t); ok {
				d.tris = append(d.tris, st)
			}
		}
	}
	sort.SliceStable(d.tris, func(i, j int) bool { return d.tris[i].depth > d.tris[j].depth })

	d.vertices = d.vertices[:0]
	d.indices = d.indices[:0]
	for _, t := range d.tris {
		if len(d.vertices)+3 > maxBatchVertices {
			d.flush(src)
		}
		base := uint16(len(d.vertices))
		for _, v := range t.v {
			d.vertices = append(d.vertices, ebiten.Vertex{
				DstX:   v.pos.X(),
				DstY:   v.pos.Y(),
				SrcX:   float32(src.Bounds().Min.X) + v.uv.X()*srcW,
				SrcY:   float32(src.Bounds().Min.Y) + v.uv.Y()*srcH,
				ColorR: v.color.X(),
				ColorG: v.color.Y(),
				ColorB: v.color.Z(),
				ColorA: v.color.W(),
			})
		}
		d.indices = append(d.indices, base, base+1, base+2)
	}
	d.flush(src)
}

func (d *EbitenDevice) flush(src *ebiten.Image) {
	if len(d.indices) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{
		ColorScaleMode: ebiten.ColorScaleModeStraightAlpha,
		Address:        ebiten.AddressRepeat,
	}
	switch d.blend.Mode {
	case BlendAdditive:
		op.Blend = ebiten.BlendLighter
	default:
		op.Blend = ebiten.BlendSourceOver
	}
	if src == d.white {
		op.Address = ebiten.AddressUnsafe
	}
	d.viewportImage().DrawTriangles(d.vertices, d.indices, src, op)
	d.drawCalls++
	d.vertices = d.vertices[:0]
	d.indices = d.indices[:0]
}

// project 透视除法、剔除并映射到视口像素坐标
func (d *EbitenDevice) project(tri [3]clipVertex) (screenTri, bool) {
	var ndc [3]mgl32.Vec3
	for i, v := range tri {
		w := v.pos.W()
		ndc[i] = mgl32.Vec3{v.pos.X() / w, v.pos.Y() / w, v.pos.Z() / w}
	}

	area := (ndc[1].X()-ndc[0].X())*(ndc[2].Y()-ndc[0].Y()) - (ndc[2].X()-ndc[0].X())*(ndc[1].Y()-ndc[0].Y())
	switch d.raster.Cull {
	case CullBack:
		if area <= 0 {
			return screenTri{}, false
		}
	case CullFront:
		if area >= 0 {
			return screenTri{}, false
		}
	}

	vp := d.viewport
	out := screenTri{}
	for i, n := range ndc {
		out.v[i] = clipVertex{
			pos: mgl32.Vec4{
				float32(vp.X) + (n.X()+1)/2*float32(vp.Width),
				float32(vp.Y) + (1-n.Y())/2*float32(vp.Height),
				n.Z(),
				1,
			},
			uv:    tri[i].uv,
			color: tri[i].color,
		}
		out.depth += n.Z() / 3
	}
	return out, true
}

func (d *EbitenDevice) viewportImage() *ebiten.Image {
	return d.target.SubImage(d.viewport.Rect()).(*ebiten.Image)
}

func (d *EbitenDevice) mustTarget() {
	if d.target == nil {
		panic(fmt.Errorf("ebiten device: %w: no render target", ErrMissingResource))
	}
}

// clipNear 用 z >= -w（GL 裁剪空间近平面）裁剪三角形，返回 0~2 个三角形
func clipNear(tri [3]clipVertex) [][3]clipVertex {
	inside := func(v clipVertex) bool { return v.pos.Z() >= -v.pos.W() }
	dist := func(v clipVertex) float32 { return v.pos.Z() + v.pos.W() }

	var poly []clipVertex
	for i := 0; i < 3; i++ {
		cur := tri[i]
		next := tri[(i+1)%3]
		if inside(cur) {
			poly = append(poly, cur)
		}
		if inside(cur) != inside(next) {
			t := dist(cur) / (dist(cur) - dist(next))
			poly = append(poly, lerpVertex(cur, next, t))
		}
	}

	switch len(poly) {
	case 3:
		return [][3]clipVertex{{poly[0], poly[1], poly[2]}}
	case 4:
		return [][3]clipVertex{{poly[0], poly[1], poly[2]}, {poly[0], poly[2], poly[3]}}
	default:
		return nil
	}
}

func lerpVertex(a, b clipVertex, t float32) clipVertex {
	return clipVertex{
		pos:   a.pos.Add(b.pos.Sub(a.pos).Mul(t)),
		uv:    a.uv.Add(b.uv.Sub(a.uv).Mul(t)),
		color: a.color.Add(b.color.Sub(a.color).Mul(t)),
	}
}

// shadeVertex 按像素着色器程序计算顶点颜色
func shadeVertex(pixelShader string, v Vertex, normalMatrix mgl32.Mat3, b *ShaderBindings) mgl32.Vec4 {
	if b.Tint != nil {
		return mgl32.Vec4{
			float32(b.Tint.R) / 255,
			float32(b.Tint.G) / 255,
			float32(b.Tint.B) / 255,
			float32(b.Tint.A) / 255,
		}
	}

	switch pixelShader {
	case ShaderSkyPS:
		return mgl32.Vec4{1, 1, 1, 1}
	case ShaderParticlePS:
		return v.Color
	}

	n := normalMatrix.Mul3x1(v.Normal)
	if n.Len() > 0 {
		n = n.Normalize()
	}
	var lit mgl32.Vec3
	for _, l := range b.Lights {
		lit = lit.Add(l.AmbientColor.Vec3())
		if l.Direction.Len() == 0 {
			continue
		}
		ndotl := n.Dot(l.Direction.Normalize().Mul(-1))
		if ndotl > 0 {
			lit = lit.Add(l.DiffuseColor.Vec3().Mul(ndotl))
		}
	}
	return mgl32.Vec4{
		mgl32.Clamp(lit.X()*v.Color.X(), 0, 1),
		mgl32.Clamp(lit.Y()*v.Color.Y(), 0, 1),
		mgl32.Clamp(lit.Z()*v.Color.Z(), 0, 1),
		v.Color.W(),
	}
}
