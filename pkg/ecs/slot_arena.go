package ecs

import (
	"github.com/gonewx/starfield/pkg/components"
	"github.com/gonewx/starfield/pkg/entities"
	"github.com/gonewx/starfield/pkg/physics"
)

// SlotID 槽位索引，在整个生命周期内保持稳定
type SlotID int

// InvalidSlot 表示没有可用槽位
const InvalidSlot SlotID = -1

// Slot 一个动态物体：刚体句柄 + 渲染实体 + 元数据 + 存活标记
type Slot struct {
	Body   *physics.BodyHandle
	Entity *entities.GameEntity
	Meta   components.SlotMeta
	// Alive 刚体是否在物理世界中；为 false 时槽位保留但不参与绘制
	Alive bool
}

// SlotArena 索引稳定的槽位集合
//
// 三者（刚体、实体、元数据）总是在同一次 Insert 中一起追加，
// Kill 只清除存活标记，从不压缩或移动槽位，因此其他系统在帧中途持有的索引始终有效。
type SlotArena struct {
	slots []Slot
	alive int
}

// NewSlotArena 创建空集合
func NewSlotArena() *SlotArena {
	return &SlotArena{}
}

// Insert 追加一个存活槽位并返回其索引
func (a *SlotArena) Insert(body *physics.BodyHandle, entity *entities.GameEntity, meta components.SlotMeta) SlotID {
	a.slots = append(a.slots, Slot{Body: body, Entity: entity, Meta: meta, Alive: true})
	a.alive++
	return SlotID(len(a.slots) - 1)
}

// Kill 清除存活标记，长度不变；返回是否发生了变化
func (a *SlotArena) Kill(id SlotID) bool {
	s := a.Get(id)
	if s == nil || !s.Alive {
		return false
	}
	s.Alive = false
	a.alive--
	return true
}

// Revive 重新标记为存活；返回是否发生了变化
func (a *SlotArena) Revive(id SlotID) bool {
	s := a.Get(id)
	if s == nil || s.Alive {
		return false
	}
	s.Alive = true
	a.alive++
	return true
}

// Get 返回槽位指针，越界返回 nil
func (a *SlotArena) Get(id SlotID) *Slot {
	if id < 0 || int(id) >= len(a.slots) {
		return nil
	}
	return &a.slots[id]
}

// Len 槽位总数（含已死亡）
func (a *SlotArena) Len() int { return len(a.slots) }

// AliveCount 存活槽位数
func (a *SlotArena) AliveCount() int { return a.alive }

// Each 按索引顺序遍历所有槽位（含已死亡）
func (a *SlotArena) Each(fn func(id SlotID, s *Slot)) {
	for i := range a.slots {
		fn(SlotID(i), &a.slots[i])
	}
}

// FindDead 返回第一个已死亡的槽位，没有则返回 InvalidSlot
func (a *SlotArena) FindDead() SlotID {
	for i := range a.slots {
		if !a.slots[i].Alive {
			return SlotID(i)
		}
	}
	return InvalidSlot
}

// Destroy 释放所有刚体句柄（先移出世界）并清空集合
func (a *SlotArena) Destroy(world *physics.World) {
	for i := range a.slots {
		if a.slots[i].Body != nil {
			a.slots[i].Body.Destroy(world)
		}
	}
	a.slots = nil
	a.alive = 0
}
