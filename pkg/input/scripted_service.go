package input

// ScriptedService 由代码设置状态的输入服务，用于无窗口运行和测试
type ScriptedService struct {
	X, Y    int
	Pointer bool
	down    [actionCount]bool
}

// NewScriptedService 创建空输入
func NewScriptedService() *ScriptedService {
	return &ScriptedService{}
}

func (s *ScriptedService) CursorPosition() (int, int) { return s.X, s.Y }
func (s *ScriptedService) PointerDown() bool { return s.Pointer }
func (s *ScriptedService) ActionDown(a Action) bool { return a >= 0 && a < actionCount && s.down[a] }

// Press 按下动作键
func (s *ScriptedService) Press(a Action) { s.down[a] = true }

// Release 松开动作键
func (s *ScriptedService) Release(a Action) { s.down[a] = false }

// MoveCursor 移动指针
func (s *ScriptedService) MoveCursor(x, y int) { s.X, s.Y = x, y }

// ReleaseAll 松开所有按键和指针
func (s *ScriptedService) ReleaseAll() {
	s.down = [actionCount]bool{}
	s.Pointer = false
}
