package gfx

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Geometry 尚未上传到设备的 CPU 端网格数据
type Geometry struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Radius   float32
}

var white = mgl32.Vec4{1, 1, 1, 1}

// CubeGeometry 生成边长为 size 的立方体，每个面 4 个顶点
// 从外侧看逆时针为正面（right × up = normal）
func CubeGeometry(name string, size float32) Geometry {
	h := size / 2
	type face struct {
		normal    mgl32.Vec3
		right, up mgl32.Vec3
	}
	faces := []face{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}

	g := Geometry{Name: name, Radius: h * float32(math.Sqrt(3))}
	for _, f := range faces {
		center := f.normal.Mul(h)
		base := uint32(len(g.Vertices))
		corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
		for _, c := range corners {
			pos := center.Add(f.right.Mul(c[0] * h)).Add(f.up.Mul(c[1] * h))
			g.Vertices = append(g.Vertices, Vertex{
				Position: pos,
				Normal:   f.normal,
				UV:       mgl32.Vec2{(c[0] + 1) / 2, 1 - (c[1]+1)/2},
				Color:    white,
			})
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}

// SphereGeometry 生成 UV 球
func SphereGeometry(name string, radius float32, stacks, slices int) Geometry {
	if stacks < 2 {
		stacks = 2
	}
	if slices < 3 {
		slices = 3
	}

	g := Geometry{Name: name, Radius: radius}
	for i := 0; i <= stacks; i++ {
		phi := math.Pi * float64(i) / float64(stacks)
		for j := 0; j <= slices; j++ {
			theta := 2 * math.Pi * float64(j) / float64(slices)
			n := mgl32.Vec3{
				float32(math.Sin(phi) * math.Cos(theta)),
				float32(math.Cos(phi)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			g.Vertices = append(g.Vertices, Vertex{
				Position: n.Mul(radius),
				Normal:   n,
				UV:       mgl32.Vec2{float32(j) / float32(slices), float32(i) / float32(stacks)},
				Color:    white,
			})
		}
	}

	row := uint32(slices + 1)
	for i := 0; i < stacks; i++ {
		for j := 0; j < slices; j++ {
			a := uint32(i)*row + uint32(j)
			b := a + row
			g.Indices = append(g.Indices, a, a+1, b, a+1, b+1, b)
		}
	}
	return g
}

// PlaneGeometry 生成 XZ 平面上边长为 size 的方形地面，法线朝 +Y
func PlaneGeometry(name string, size, uvRepeat float32) Geometry {
	h := size / 2
	g := Geometry{Name: name, Radius: h * float32(math.Sqrt2)}
	up := mgl32.Vec3{0, 1, 0}
	g.Vertices = []Vertex{
		{Position: mgl32.Vec3{-h, 0, -h}, Normal: up, UV: mgl32.Vec2{0, uvRepeat}, Color: white},
		{Position: mgl32.Vec3{h, 0, -h}, Normal: up, UV: mgl32.Vec2{uvRepeat, uvRepeat}, Color: white},
		{Position: mgl32.Vec3{h, 0, h}, Normal: up, UV: mgl32.Vec2{uvRepeat, 0}, Color: white},
		{Position: mgl32.Vec3{-h, 0, h}, Normal: up, UV: mgl32.Vec2{0, 0}, Color: white},
	}
	g.Indices = []uint32{0, 2, 1, 0, 3, 2}
	return g
}

// BillboardQuads 为粒子生成面向摄像机的四边形
//
// right/up 为摄像机在世界空间的右向量和上向量。
func BillboardQuads(centers []mgl32.Vec3, sizes []float32, colors []mgl32.Vec4, right, up mgl32.Vec3) ([]Vertex, []uint32) {
	vertices := make([]Vertex, 0, len(centers)*4)
	indices := make([]uint32, 0, len(centers)*6)
	for i, c := range centers {
		r := right.Mul(sizes[i] / 2)
		u := up.Mul(sizes[i] / 2)
		normal := right.Cross(up)
		base := uint32(len(vertices))
		vertices = append(vertices,
			Vertex{Position: c.Sub(r).Sub(u), Normal: normal, UV: mgl32.Vec2{0, 1}, Color: colors[i]},
			Vertex{Position: c.Add(r).Sub(u), Normal: normal, UV: mgl32.Vec2{1, 1}, Color: colors[i]},
			Vertex{Position: c.Add(r).Add(u), Normal: normal, UV: mgl32.Vec2{1, 0}, Color: colors[i]},
			Vertex{Position: c.Sub(r).Add(u), Normal: normal, UV: mgl32.Vec2{0, 0}, Color: colors[i]},
		)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}
