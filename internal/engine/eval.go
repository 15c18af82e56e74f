package engine

import (
	"chessbot/internal/chess"
)

// Evaluator 给出走子方视角的静态分：子力 + 机动性
type Evaluator struct {
	values   [chess.NumPieceKinds]int
	mobility int
}

func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{values: cfg.PieceValues, mobility: cfg.MobilityWeight}
}

// Value 返回兵种分值，空子为 0
func (ev *Evaluator) Value(k chess.PieceKind) int {
	if k < 0 || int(k) >= chess.NumPieceKinds {
		return 0
	}
	return ev.values[k]
}

// MaterialFor 从 side 视角：己方子力 - 对方子力
func (ev *Evaluator) MaterialFor(pos *chess.Position, side chess.Side) int {
	score := 0
	opp := side.Opponent()
	for k := chess.Pawn; k <= chess.King; k++ {
		score += (pos.PieceCount(side, k) - pos.PieceCount(opp, k)) * ev.values[k]
	}
	return score
}

func (ev *Evaluator) Material(pos *chess.Position) int {
	return ev.MaterialFor(pos, pos.SideToMove())
}

func (ev *Evaluator) Evaluate(pos *chess.Position) int {
	score := ev.Material(pos)
	if ev.mobility != 0 {
		score += ev.mobility * len(pos.LegalMoves(false))
	}
	return score
}
