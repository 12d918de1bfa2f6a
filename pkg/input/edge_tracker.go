package input

import "image"

// EdgeTracker 保存上一帧的输入状态，用于计算按下/松开沿
// 每帧在 Update 开始时调用一次 Poll
type EdgeTracker struct {
	prev, cur [actionCount]bool

	pointerPrev, pointerCur bool
	cursorPrev, cursor      image.Point
	polled                  bool
}

// NewEdgeTracker 创建跟踪器
func NewEdgeTracker() *EdgeTracker {
	return &EdgeTracker{}
}

// Poll 读取本帧输入
func (t *EdgeTracker) Poll(s Service) {
	t.prev = t.cur
	t.pointerPrev = t.pointerCur
	t.cursorPrev = t.cursor

	for a := Action(0); a < actionCount; a++ {
		t.cur[a] = s.ActionDown(a)
	}
	t.pointerCur = s.PointerDown()
	x, y := s.CursorPosition()
	t.cursor = image.Pt(x, y)

	// 第一帧没有历史，指针增量为 0
	if !t.polled {
		t.cursorPrev = t.cursor
		t.polled = true
	}
}

// Down 动作当前是否按下
func (t *EdgeTracker) Down(a Action) bool { return t.cur[a] }

// JustPressed 本帧按下、上一帧未按下
func (t *EdgeTracker) JustPressed(a Action) bool { return t.cur[a] && !t.prev[a] }

// JustReleased 本帧松开、上一帧按下
func (t *EdgeTracker) JustReleased(a Action) bool { return !t.cur[a] && t.prev[a] }

func (t *EdgeTracker) PointerDown() bool { return t.pointerCur }
func (t *EdgeTracker) PointerJustPressed() bool { return t.pointerCur && !t.pointerPrev }
func (t *EdgeTracker) PointerJustReleased() bool { return !t.pointerCur && t.pointerPrev }

// Cursor 本帧指针位置
func (t *EdgeTracker) Cursor() image.Point { return t.cursor }

// CursorDelta 相对上一帧的指针位移
func (t *EdgeTracker) CursorDelta() image.Point { return t.cursor.Sub(t.cursorPrev) }
