// Package camera 提供由位置和俯仰/偏航角推导视图矩阵、由宽高比推导投影矩阵的摄像机
//
// 游戏中同时存在两个互相独立的实例：可移动的第一人称摄像机和固定的俯视小地图摄像机。
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxPitch 俯仰角上限
//
// 俯仰角被限制在 ±(π/2 - 0.01) 之内：正好 ±90° 时观察方向与世界上方向平行，
// LookAt 退化为奇异矩阵。
const MaxPitch = math.Pi/2 - 0.01

var (
	worldUp      = mgl32.Vec3{0, 1, 0}
	worldForward = mgl32.Vec3{0, 0, 1}
)

// Options 投影与移动参数
type Options struct {
	FieldOfView float32 // 垂直视场角（弧度）
	Near        float32
	Far         float32
	MoveSpeed   float32 // 单位/秒，0 表示摄像机不随输入移动
	// Movable 为 false 时 Update 不处理移动输入（俯视小地图摄像机）
	Movable bool
}

// DefaultOptions fov π/4，近平面 0.1，远平面 100
func DefaultOptions() Options {
	return Options{
		FieldOfView: math.Pi / 4,
		Near:        0.1,
		Far:         100,
		MoveSpeed:   5,
		Movable:     true,
	}
}

// MoveInput 一帧内的移动意图（-1~1）
type MoveInput struct {
	Forward float32
	Right   float32
	Up      float32
}

// Camera 摄像机
//
// 位置或角度变化后，View() 只有在 UpdateViewMatrix()（或 Update）之后才有效；
// 宽高比变化后必须重新调用 UpdateProjectionMatrix。
type Camera struct {
	position      mgl32.Vec3
	startPosition mgl32.Vec3
	pitch         float32 // 绕 X 轴
	yaw           float32 // 绕 Y 轴
	direction     mgl32.Vec3

	viewMatrix mgl32.Mat4
	projMatrix mgl32.Mat4
	aspect     float32

	opts  Options
	input MoveInput
}

// New 创建摄像机并立即计算一次视图矩阵
func New(position mgl32.Vec3, opts Options) *Camera {
	c := &Camera{
		position:      position,
		startPosition: position,
		direction:     worldForward,
		viewMatrix:    mgl32.Ident4(),
		projMatrix:    mgl32.Ident4(),
		opts:          opts,
	}
	c.UpdateViewMatrix()
	return c
}

// MoveRelative 沿摄像机自身坐标轴移动（x 右，y 上，z 前）
func (c *Camera) MoveRelative(x, y, z float32) {
	delta := c.Right().Mul(x).Add(worldUp.Mul(y)).Add(c.direction.Mul(z))
	c.position = c.position.Add(delta)
}

// MoveAbsolute 沿世界坐标轴移动
func (c *Camera) MoveAbsolute(x, y, z float32) {
	c.position = c.position.Add(mgl32.Vec3{x, y, z})
}

// SetPosition 直接设置位置
func (c *Camera) SetPosition(p mgl32.Vec3) {
	c.position = p
}

// Rotate 累加俯仰角和偏航角，俯仰角被限制在 ±MaxPitch
func (c *Camera) Rotate(pitchDelta, yawDelta float32) {
	c.SetRotation(c.pitch+pitchDelta, c.yaw+yawDelta)
}

// SetRotation 绝对设置俯仰角和偏航角
func (c *Camera) SetRotation(pitch, yaw float32) {
	c.pitch = mgl32.Clamp(pitch, -MaxPitch, MaxPitch)
	c.yaw = yaw
}

// SetMoveInput 设置下一次 Update 使用的移动意图
func (c *Camera) SetMoveInput(in MoveInput) {
	c.input = in
}

// Reset 回到初始位置和零角度
func (c *Camera) Reset() {
	c.position = c.startPosition
	c.pitch, c.yaw = 0, 0
	c.UpdateViewMatrix()
}

// Update 应用移动意图并刷新视图矩阵
func (c *Camera) Update(dt float32) {
	if c.opts.Movable && c.opts.MoveSpeed > 0 {
		step := c.opts.MoveSpeed * dt
		c.MoveRelative(c.input.Right*step, c.input.Up*step, c.input.Forward*step)
	}
	c.input = MoveInput{}
	c.UpdateViewMatrix()
}

// UpdateViewMatrix 由俯仰/偏航旋转 +Z 前向量得到观察方向，再构建 LookAt 矩阵
func (c *Camera) UpdateViewMatrix() {
	rot := mgl32.QuatRotate(c.yaw, worldUp).Mul(mgl32.QuatRotate(c.pitch, mgl32.Vec3{1, 0, 0}))
	c.direction = rot.Rotate(worldForward).Normalize()
	c.viewMatrix = mgl32.LookAtV(c.position, c.position.Add(c.direction), worldUp)
}

// UpdateProjectionMatrix 按宽高比重建透视投影；视口尺寸变化时必须调用
func (c *Camera) UpdateProjectionMatrix(aspectRatio float32) {
	if aspectRatio <= 0 {
		return
	}
	c.aspect = aspectRatio
	c.projMatrix = mgl32.Perspective(c.opts.FieldOfView, aspectRatio, c.opts.Near, c.opts.Far)
}

func (c *Camera) Position() mgl32.Vec3 { return c.position }
func (c *Camera) Forward() mgl32.Vec3 { return c.direction }
func (c *Camera) Pitch() float32 { return c.pitch }
func (c *Camera) Yaw() float32 { return c.yaw }
func (c *Camera) Aspect() float32 { return c.aspect }
func (c *Camera) View() mgl32.Mat4 { return c.viewMatrix }
func (c *Camera) Projection() mgl32.Mat4 { return c.projMatrix }
func (c *Camera) Options() Options { return c.opts }

// Right 摄像机右向量（世界空间，与 LookAt 的屏幕右方向一致）
func (c *Camera) Right() mgl32.Vec3 {
	r := c.direction.Cross(worldUp)
	if r.Len() == 0 {
		return mgl32.Vec3{1, 0, 0}
	}
	return r.Normalize()
}

// Up 摄像机上向量（世界空间）
func (c *Camera) Up() mgl32.Vec3 {
	return c.Right().Cross(c.direction).Normalize()
}

// SkyView 去掉平移的视图矩阵，天空盒不随摄像机位置移动
func (c *Camera) SkyView() mgl32.Mat4 {
	v := c.viewMatrix
	v.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	return v
}
