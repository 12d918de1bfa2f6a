package game

import "go.uber.org/zap"

// Phase 游戏阶段
type Phase int

const (
	// PhaseMainMenu 初始阶段
	PhaseMainMenu Phase = iota
	// PhaseGamePlay 游戏进行中
	PhaseGamePlay
	// PhaseExit 请求退出
	PhaseExit
)

func (p Phase) String() string {
	switch p {
	case PhaseMainMenu:
		return "MainMenu"
	case PhaseGamePlay:
		return "GamePlay"
	case PhaseExit:
		return "Exit"
	default:
		return "Unknown"
	}
}

// GameState 由 UI 点击标志驱动的阶段状态机
//
// 点击只设置标志（RequestPlay / RequestQuit），每帧开始时 Evaluate 检查一次并清除标志：
//   - MainMenu + play  → GamePlay
//   - MainMenu + quit  → Exit
//   - GamePlay + quit  → 无效果
//
// 同一帧内两个标志同时存在时先处理 play，此后已不在 MainMenu，quit 被忽略。
type GameState struct {
	phase         Phase
	playRequested bool
	quitRequested bool
	logger        *zap.Logger
}

// NewGameState 创建处于 MainMenu 的状态机
func NewGameState(logger *zap.Logger) *GameState {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameState{
		phase:  PhaseMainMenu,
		logger: logger.Named("GameState"),
	}
}

// RequestPlay 锁存 "开始" 点击
func (gs *GameState) RequestPlay() { gs.playRequested = true }

// RequestQuit 锁存 "退出" 点击
func (gs *GameState) RequestQuit() { gs.quitRequested = true }

// Phase 当前阶段
func (gs *GameState) Phase() Phase { return gs.phase }

// Evaluate 根据锁存的标志推进阶段，返回新的阶段
func (gs *GameState) Evaluate() Phase {
	prev := gs.phase
	if gs.playRequested && gs.phase == PhaseMainMenu {
		gs.phase = PhaseGamePlay
	}
	if gs.quitRequested && gs.phase == PhaseMainMenu {
		gs.phase = PhaseExit
	}
	gs.playRequested = false
	gs.quitRequested = false

	if gs.phase != prev {
		gs.logger.Info("phase changed", zap.Stringer("from", prev), zap.Stringer("to", gs.phase))
	}
	return gs.phase
}
