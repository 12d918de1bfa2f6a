package physics

import "github.com/go-gl/mathgl/mgl32"

// ShapeType 碰撞形状类型
type ShapeType int

const (
	ShapeSphere ShapeType = iota
	ShapeBox
	ShapeStaticPlane
)

// planeExtent 无限平面在宽相中使用的包围盒半径
const planeExtent = 1e6

// Shape 碰撞形状
type Shape interface {
	Type() ShapeType
	// CalculateLocalInertia 计算质量为 mass 时的局部惯性张量对角线
	CalculateLocalInertia(mass float32) mgl32.Vec3
	// AABB 在给定变换下的轴对齐包围盒
	AABB(t Transform) (min, max mgl32.Vec3)
}

// SphereShape 球体
type SphereShape struct {
	Radius float32
}

// NewSphereShape 创建球体形状
func NewSphereShape(radius float32) *SphereShape {
	return &SphereShape{Radius: radius}
}

func (s *SphereShape) Type() ShapeType { return ShapeSphere }

func (s *SphereShape) CalculateLocalInertia(mass float32) mgl32.Vec3 {
	i := 0.4 * mass * s.Radius * s.Radius
	return mgl32.Vec3{i, i, i}
}

func (s *SphereShape) AABB(t Transform) (mgl32.Vec3, mgl32.Vec3) {
	r := mgl32.Vec3{s.Radius, s.Radius, s.Radius}
	return t.Origin.Sub(r), t.Origin.Add(r)
}

// BoxShape 长方体（半边长）
type BoxShape struct {
	HalfExtents mgl32.Vec3
}

// NewBoxShape 创建长方体形状
func NewBoxShape(halfExtents mgl32.Vec3) *BoxShape {
	return &BoxShape{HalfExtents: halfExtents}
}

func (b *BoxShape) Type() ShapeType { return ShapeBox }

func (b *BoxShape) CalculateLocalInertia(mass float32) mgl32.Vec3 {
	lx, ly, lz := 2*b.HalfExtents.X(), 2*b.HalfExtents.Y(), 2*b.HalfExtents.Z()
	return mgl32.Vec3{
		mass / 12 * (ly*ly + lz*lz),
		mass / 12 * (lx*lx + lz*lz),
		mass / 12 * (lx*lx + ly*ly),
	}
}

func (b *BoxShape) AABB(t Transform) (mgl32.Vec3, mgl32.Vec3) {
	m := t.Rotation.Mat4().Mat3()
	var ext mgl32.Vec3
	for row := 0; row < 3; row++ {
		var e float32
		for col := 0; col < 3; col++ {
			e += abs32(m.At(row, col)) * b.HalfExtents[col]
		}
		ext[row] = e
	}
	return t.Origin.Sub(ext), t.Origin.Add(ext)
}

// boundingRadius 外接球半径
func (b *BoxShape) boundingRadius() float32 {
	return b.HalfExtents.Len()
}

// StaticPlaneShape 无限平面：Normal·x = Constant（局部空间）
type StaticPlaneShape struct {
	Normal   mgl32.Vec3
	Constant float32
}

// NewStaticPlaneShape 创建静态平面形状
func NewStaticPlaneShape(normal mgl32.Vec3, constant float32) *StaticPlaneShape {
	return &StaticPlaneShape{Normal: normal.Normalize(), Constant: constant}
}

func (p *StaticPlaneShape) Type() ShapeType { return ShapeStaticPlane }

// CalculateLocalInertia 平面只能是静态的
func (p *StaticPlaneShape) CalculateLocalInertia(float32) mgl32.Vec3 {
	return mgl32.Vec3{}
}

func (p *StaticPlaneShape) AABB(Transform) (mgl32.Vec3, mgl32.Vec3) {
	e := mgl32.Vec3{planeExtent, planeExtent, planeExtent}
	return e.Mul(-1), e
}

// worldPlane 平面在世界空间中的法线和常数
func (p *StaticPlaneShape) worldPlane(t Transform) (mgl32.Vec3, float32) {
	n := t.Rotation.Rotate(p.Normal).Normalize()
	return n, p.Constant + n.Dot(t.Origin)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
