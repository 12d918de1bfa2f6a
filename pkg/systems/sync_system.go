package systems

import (
	"github.com/gonewx/starfield/pkg/components"
	"github.com/gonewx/starfield/pkg/ecs"
)

// SyncSystem 把物理运动状态复制到渲染实体的变换
// 在 StepSimulation 之后、绘制之前每帧执行一次
type SyncSystem struct {
	arenas []*ecs.SlotArena
}

// NewSyncSystem 创建同步系统
func NewSyncSystem(arenas ...*ecs.SlotArena) *SyncSystem {
	return &SyncSystem{arenas: arenas}
}

// Update 同步所有槽位（含已移出世界的槽位，其运动状态保持最后一次设置的值）
func (s *SyncSystem) Update() {
	for _, a := range s.arenas {
		a.Each(func(_ ecs.SlotID, slot *ecs.Slot) {
			SyncSlot(slot)
		})
	}
}

// SyncSlot 原样复制位置（不做插值），旋转由四元数转换为欧拉角
func SyncSlot(slot *ecs.Slot) {
	if slot.Body == nil || slot.Body.MotionState == nil || slot.Entity == nil {
		return
	}
	t := slot.Body.MotionState.GetWorldTransform()
	tr := &slot.Entity.Transform
	tr.SetPosition(t.Origin.X(), t.Origin.Y(), t.Origin.Z())
	r := components.EulerFromQuat(t.Rotation)
	tr.SetRotation(r.X(), r.Y(), r.Z())
	tr.UpdateWorldMatrix()
}
