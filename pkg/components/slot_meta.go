package components

// ObjectKind 动态物体类别
type ObjectKind int

const (
	ObjectAsteroid ObjectKind = iota
	ObjectProjectile
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectAsteroid:
		return "asteroid"
	case ObjectProjectile:
		return "projectile"
	default:
		return "unknown"
	}
}

// SlotMeta 动态物体的附加数据，与刚体、渲染实体按同一槽位索引配对
type SlotMeta struct {
	Kind ObjectKind
	// Age 进入物理世界后经过的时间（秒），回收/重新加入时清零
	Age float64
	// Generation 槽位被重新加入世界的次数
	Generation int
}
