package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Contact 一个接触点，Normal 从 A 指向 B
type Contact struct {
	A, B   *RigidBody
	Normal mgl32.Vec3
	Depth  float32
	Point  mgl32.Vec3

	normalImpulse  float32
	tangentImpulse float32
	targetVelocity float32
}

// Dispatcher 窄相：按形状类型分派碰撞检测
type Dispatcher struct {
	config   *CollisionConfiguration
	contacts []Contact
}

// NewDispatcher 创建调度器
func NewDispatcher(config *CollisionConfiguration) *Dispatcher {
	return &Dispatcher{config: config}
}

// Dispatch 对宽相给出的每个候选对做窄相检测
func (d *Dispatcher) Dispatch(pairs []BodyPair) []Contact {
	d.contacts = d.contacts[:0]
	for _, p := range pairs {
		if c, ok := collide(p.A, p.B); ok {
			d.contacts = append(d.contacts, c)
		}
	}
	return d.contacts
}

// collide 保证返回的接触 A/B 与入参一致
func collide(a, b *RigidBody) (Contact, bool) {
	ta, tb := a.shape.Type(), b.shape.Type()
	if ta > tb {
		c, ok := collide(b, a)
		if ok {
			c.A, c.B = a, b
			c.Normal = c.Normal.Mul(-1)
		}
		return c, ok
	}

	switch {
	case ta == ShapeSphere && tb == ShapeSphere:
		return sphereSphere(a, b)
	case ta == ShapeSphere && tb == ShapeBox:
		c, ok := boxSphere(b, a)
		if ok {
			c.A, c.B = a, b
			c.Normal = c.Normal.Mul(-1)
		}
		return c, ok
	case ta == ShapeSphere && tb == ShapeStaticPlane:
		c, ok := planeSphere(b, a)
		if ok {
			c.A, c.B = a, b
			c.Normal = c.Normal.Mul(-1)
		}
		return c, ok
	case ta == ShapeBox && tb == ShapeBox:
		return boxBox(a, b)
	case ta == ShapeBox && tb == ShapeStaticPlane:
		c, ok := planeBox(b, a)
		if ok {
			c.A, c.B = a, b
			c.Normal = c.Normal.Mul(-1)
		}
		return c, ok
	}
	return Contact{}, false
}

func spheresOverlap(a, b *RigidBody, ra, rb float32) (Contact, bool) {
	pa, pb := a.transform.Origin, b.transform.Origin
	d := pb.Sub(pa)
	dist := d.Len()
	if dist >= ra+rb {
		return Contact{}, false
	}
	n := mgl32.Vec3{0, 1, 0}
	if dist > 1e-6 {
		n = d.Mul(1 / dist)
	}
	return Contact{
		A:      a,
		B:      b,
		Normal: n,
		Depth:  ra + rb - dist,
		Point:  pa.Add(n.Mul(ra)),
	}, true
}

func sphereSphere(a, b *RigidBody) (Contact, bool) {
	return spheresOverlap(a, b, a.shape.(*SphereShape).Radius, b.shape.(*SphereShape).Radius)
}

// boxBox 两个长方体按外接球近似
func boxBox(a, b *RigidBody) (Contact, bool) {
	return spheresOverlap(a, b, a.shape.(*BoxShape).boundingRadius(), b.shape.(*BoxShape).boundingRadius())
}

// planeSphere 法线从平面指向球
func planeSphere(plane, sphere *RigidBody) (Contact, bool) {
	n, c := plane.shape.(*StaticPlaneShape).worldPlane(plane.transform)
	r := sphere.shape.(*SphereShape).Radius
	p := sphere.transform.Origin
	dist := n.Dot(p) - c
	if dist >= r {
		return Contact{}, false
	}
	return Contact{
		A:      plane,
		B:      sphere,
		Normal: n,
		Depth:  r - dist,
		Point:  p.Sub(n.Mul(dist)),
	}, true
}

// planeBox 取最深的角点作为接触点
func planeBox(plane, box *RigidBody) (Contact, bool) {
	n, c := plane.shape.(*StaticPlaneShape).worldPlane(plane.transform)
	he := box.shape.(*BoxShape).HalfExtents
	rot := box.transform.Rotation
	minDist := float32(math.MaxFloat32)
	var deepest mgl32.Vec3
	for i := 0; i < 8; i++ {
		local := mgl32.Vec3{he.X(), he.Y(), he.Z()}
		if i&1 != 0 {
			local[0] = -local[0]
		}
		if i&2 != 0 {
			local[1] = -local[1]
		}
		if i&4 != 0 {
			local[2] = -local[2]
		}
		corner := box.transform.Origin.Add(rot.Rotate(local))
		if dist := n.Dot(corner) - c; dist < minDist {
			minDist = dist
			deepest = corner
		}
	}
	if minDist >= 0 {
		return Contact{}, false
	}
	return Contact{
		A:      plane,
		B:      box,
		Normal: n,
		Depth:  -minDist,
		Point:  deepest,
	}, true
}

// boxSphere 法线从长方体指向球
func boxSphere(box, sphere *RigidBody) (Contact, bool) {
	he := box.shape.(*BoxShape).HalfExtents
	r := sphere.shape.(*SphereShape).Radius
	rot := box.transform.Rotation
	local := rot.Inverse().Rotate(sphere.transform.Origin.Sub(box.transform.Origin))

	var closest mgl32.Vec3
	for i := 0; i < 3; i++ {
		closest[i] = mgl32.Clamp(local[i], -he[i], he[i])
	}
	diff := local.Sub(closest)
	dist := diff.Len()
	if dist >= r {
		return Contact{}, false
	}

	var nLocal mgl32.Vec3
	var depth float32
	if dist > 1e-6 {
		nLocal = diff.Mul(1 / dist)
		depth = r - dist
	} else {
		// 球心在长方体内部：沿穿透最浅的轴推出
		axis, best := 0, float32(math.MaxFloat32)
		for i := 0; i < 3; i++ {
			if pen := he[i] - abs32(local[i]); pen < best {
				axis, best = i, pen
			}
		}
		if local[axis] < 0 {
			nLocal[axis] = -1
		} else {
			nLocal[axis] = 1
		}
		depth = best + r
	}
	return Contact{
		A:      box,
		B:      sphere,
		Normal: rot.Rotate(nLocal),
		Depth:  depth,
		Point:  box.transform.Origin.Add(rot.Rotate(closest)),
	}, true
}
