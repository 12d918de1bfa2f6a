package components

// Timer 倒计时计时器
// 用于生成/回收周期以及开火冷却
//
// 触发策略是"无追帧累加器"：一帧内即使 dt 跨越多个周期也只触发一次，
// 触发后立即重置为 Interval，不会累积负值。
type Timer struct {
	Name      string  // 计时器名称，如 "asteroid_spawn"
	Interval  float64 // 周期（秒）
	Remaining float64 // 距离下次触发的剩余时间（秒）
}

// NewTimer 创建一个从满周期开始倒计时的计时器
func NewTimer(name string, interval float64) Timer {
	return Timer{
		Name:      name,
		Interval:  interval,
		Remaining: interval,
	}
}

// Tick 推进计时器，跨过零点时返回 true 并重置
func (t *Timer) Tick(dt float64) bool {
	t.Remaining -= dt
	if t.Remaining <= 0 {
		t.Remaining = t.Interval
		return true
	}
	return false
}

// Ready 冷却类计时器：剩余时间已归零
func (t *Timer) Ready() bool {
	return t.Remaining <= 0
}

// Cooldown 冷却类计时器的推进：归零后停在 0，不自动重置
func (t *Timer) Cooldown(dt float64) {
	if t.Remaining > 0 {
		t.Remaining -= dt
		if t.Remaining < 0 {
			t.Remaining = 0
		}
	}
}

// Reset 重新开始一个完整周期
func (t *Timer) Reset() {
	t.Remaining = t.Interval
}
