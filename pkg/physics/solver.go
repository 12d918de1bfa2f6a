package physics

import "github.com/go-gl/mathgl/mgl32"

// SequentialImpulseSolver 顺序冲量约束求解器
// 只处理线性冲量：法向（含反弹）和库仑摩擦
type SequentialImpulseSolver struct {
	config     *CollisionConfiguration
	iterations int
}

// NewSequentialImpulseSolver 创建求解器
func NewSequentialImpulseSolver(config *CollisionConfiguration, iterations int) *SequentialImpulseSolver {
	if iterations <= 0 {
		iterations = 1
	}
	return &SequentialImpulseSolver{config: config, iterations: iterations}
}

// Solve 迭代求解接触速度约束，随后按穿透深度做位置修正
func (s *SequentialImpulseSolver) Solve(contacts []Contact) {
	for i := range contacts {
		c := &contacts[i]
		c.normalImpulse = 0
		c.tangentImpulse = 0
		vn := relativeVelocity(c).Dot(c.Normal)
		if vn < -s.config.RestingThreshold {
			c.targetVelocity = -c.A.restitution * c.B.restitution * vn
		} else {
			c.targetVelocity = 0
		}
	}

	for it := 0; it < s.iterations; it++ {
		for i := range contacts {
			s.solveContact(&contacts[i])
		}
	}

	for i := range contacts {
		s.correctPosition(&contacts[i])
	}
}

func relativeVelocity(c *Contact) mgl32.Vec3 {
	return c.B.linearVelocity.Sub(c.A.linearVelocity)
}

func (s *SequentialImpulseSolver) solveContact(c *Contact) {
	invSum := c.A.invMass + c.B.invMass
	if invSum == 0 {
		return
	}

	vn := relativeVelocity(c).Dot(c.Normal)
	lambda := (c.targetVelocity - vn) / invSum
	prev := c.normalImpulse
	c.normalImpulse = max(prev+lambda, 0)
	applyImpulse(c, c.Normal.Mul(c.normalImpulse-prev))

	mu := c.A.friction * c.B.friction
	if mu == 0 {
		return
	}
	vr := relativeVelocity(c)
	tangent := vr.Sub(c.Normal.Mul(vr.Dot(c.Normal)))
	if tangent.Len() < 1e-6 {
		return
	}
	tangent = tangent.Normalize()
	lambdaT := -vr.Dot(tangent) / invSum
	limit := mu * c.normalImpulse
	prevT := c.tangentImpulse
	c.tangentImpulse = mgl32.Clamp(prevT+lambdaT, -limit, limit)
	applyImpulse(c, tangent.Mul(c.tangentImpulse-prevT))
}

func applyImpulse(c *Contact, impulse mgl32.Vec3) {
	c.A.linearVelocity = c.A.linearVelocity.Sub(impulse.Mul(c.A.invMass))
	c.B.linearVelocity = c.B.linearVelocity.Add(impulse.Mul(c.B.invMass))
}

// correctPosition Baumgarte 位置修正
func (s *SequentialImpulseSolver) correctPosition(c *Contact) {
	invSum := c.A.invMass + c.B.invMass
	if invSum == 0 {
		return
	}
	excess := c.Depth - s.config.ContactSlop
	if excess <= 0 {
		return
	}
	corr := c.Normal.Mul(excess / invSum * s.config.CorrectionPercent)
	c.A.transform.Origin = c.A.transform.Origin.Sub(corr.Mul(c.A.invMass))
	c.B.transform.Origin = c.B.transform.Origin.Add(corr.Mul(c.B.invMass))
}
