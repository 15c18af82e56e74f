package game

import (
	"context"
	"sync"
	"time"

	"chessbot/internal/chess"
	"chessbot/internal/engine"
)

// GameState 是一局棋：局面、走过的着法和专属引擎。
// 所有读写都要经过 mu，思考期间整局被锁住。
type GameState struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	pos       *chess.Position
	eng       *engine.Engine
	updatedAt time.Time
}

// View 是对局的只读快照
type View struct {
	ID        string
	FEN       string
	ToMove    chess.Side
	Legal     []chess.Move
	Moves     []chess.Move
	Status    chess.Status
	UpdatedAt time.Time
}

func (g *GameState) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewLocked()
}

func (g *GameState) viewLocked() View {
	return View{
		ID:        g.ID,
		FEN:       g.pos.Encode(),
		ToMove:    g.pos.SideToMove(),
		Legal:     g.pos.LegalMoves(false),
		Moves:     g.pos.Moves(),
		Status:    g.pos.Status(),
		UpdatedAt: g.updatedAt,
	}
}

// Play 走一步 UCI 着法（人类一方）
func (g *GameState) Play(uci string) (View, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.pos.PlayMoves(uci); err != nil {
		return g.viewLocked(), err
	}
	g.updatedAt = time.Now()
	return g.viewLocked(), nil
}

// Think 让引擎为当前局面选一步。budget<=0 用配置里的预算；apply 为真时直接落子。
// onIter 不为 nil 时每完成一层回调一次。
func (g *GameState) Think(ctx context.Context, budget time.Duration, apply bool, onIter func(engine.Iteration)) (engine.Result, View) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.eng.OnIteration = onIter
	defer func() { g.eng.OnIteration = nil }()

	if budget <= 0 {
		budget = g.eng.Config().TimeBudget()
	}
	res := g.eng.ThinkFor(ctx, g.pos, budget, 0)
	if apply && !res.Move.IsNull() {
		g.pos.Apply(res.Move)
		g.updatedAt = time.Now()
	}
	return res, g.viewLocked()
}
