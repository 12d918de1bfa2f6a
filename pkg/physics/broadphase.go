package physics

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// BodyPair 宽相输出的候选碰撞对
type BodyPair struct {
	A, B *RigidBody
}

type proxy struct {
	body     *RigidBody
	min, max mgl32.Vec3
}

// Broadphase X 轴扫描裁剪（sweep and prune）宽相
type Broadphase struct {
	proxies []proxy
	pairs   []BodyPair
}

// NewBroadphase 创建宽相
func NewBroadphase() *Broadphase {
	return &Broadphase{}
}

// FindPairs 计算包围盒重叠的刚体对
// 两个静态刚体之间不产生碰撞对
func (bp *Broadphase) FindPairs(bodies []*RigidBody) []BodyPair {
	bp.proxies = bp.proxies[:0]
	for _, b := range bodies {
		if b.shape == nil {
			continue
		}
		mn, mx := b.shape.AABB(b.transform)
		bp.proxies = append(bp.proxies, proxy{body: b, min: mn, max: mx})
	}
	sort.Slice(bp.proxies, func(i, j int) bool {
		return bp.proxies[i].min.X() < bp.proxies[j].min.X()
	})

	bp.pairs = bp.pairs[:0]
	for i := range bp.proxies {
		a := &bp.proxies[i]
		for j := i + 1; j < len(bp.proxies); j++ {
			b := &bp.proxies[j]
			if b.min.X() > a.max.X() {
				break
			}
			if a.body.IsStatic() && b.body.IsStatic() {
				continue
			}
			if b.min.Y() > a.max.Y() || a.min.Y() > b.max.Y() {
				continue
			}
			if b.min.Z() > a.max.Z() || a.min.Z() > b.max.Z() {
				continue
			}
			bp.pairs = append(bp.pairs, BodyPair{A: a.body, B: b.body})
		}
	}
	return bp.pairs
}
