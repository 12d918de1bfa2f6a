package input

import "github.com/hajimehoshi/ebiten/v2"

// DefaultBindings 默认键位
func DefaultBindings() map[Action][]ebiten.Key {
	return map[Action][]ebiten.Key{
		ActionFire:           {ebiten.KeySpace},
		ActionToggleFireMode: {ebiten.KeyF},
		ActionToggleMinimap:  {ebiten.KeyM},
		ActionQuit:           {ebiten.KeyEscape},
		ActionMoveForward:    {ebiten.KeyW, ebiten.KeyArrowUp},
		ActionMoveBack:       {ebiten.KeyS, ebiten.KeyArrowDown},
		ActionMoveLeft:       {ebiten.KeyA, ebiten.KeyArrowLeft},
		ActionMoveRight:      {ebiten.KeyD, ebiten.KeyArrowRight},
		ActionMoveUp:         {ebiten.KeyE},
		ActionMoveDown:       {ebiten.KeyQ},
		ActionResetCamera:    {ebiten.KeyR},
	}
}

// EbitenService 读取 Ebitengine 的键盘、鼠标和触摸状态
type EbitenService struct {
	bindings map[Action][]ebiten.Key
	touches  []ebiten.TouchID
}

// NewEbitenService 创建输入服务；bindings 为 nil 时使用默认键位
func NewEbitenService(bindings map[Action][]ebiten.Key) *EbitenService {
	if bindings == nil {
		bindings = DefaultBindings()
	}
	return &EbitenService{bindings: bindings}
}

// CursorPosition 优先使用第一个触摸点（移动设备），否则使用鼠标位置
func (s *EbitenService) CursorPosition() (int, int) {
	s.touches = ebiten.AppendTouchIDs(s.touches[:0])
	if len(s.touches) > 0 {
		return ebiten.TouchPosition(s.touches[0])
	}
	return ebiten.CursorPosition()
}

// PointerDown 鼠标左键或任意触摸
func (s *EbitenService) PointerDown() bool {
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return true
	}
	s.touches = ebiten.AppendTouchIDs(s.touches[:0])
	return len(s.touches) > 0
}

func (s *EbitenService) ActionDown(a Action) bool {
	for _, k := range s.bindings[a] {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}
