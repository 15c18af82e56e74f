package engine

import (
	"sort"

	"chessbot/internal/chess"
)

// Orderer 给着法排序：分高的先搜，同分保持生成顺序
type Orderer struct {
	ev          *Evaluator
	promotion   int
	castle      int
	captureDiv  int
	attackedDiv int
}

func NewOrderer(cfg Config, ev *Evaluator) *Orderer {
	return &Orderer{
		ev:          ev,
		promotion:   cfg.PromotionBonus,
		castle:      cfg.CastleBonus,
		captureDiv:  cfg.CaptureMoverDivisor,
		attackedDiv: cfg.AttackedDivisor,
	}
}

// Score 在走子之前的局面上计算排序分
func (o *Orderer) Score(pos *chess.Position, mv chess.Move) int {
	penalty := 0
	moved := o.ev.Value(mv.Piece)
	if mv.Promotion {
		penalty -= o.promotion
	}
	if mv.Castle {
		penalty -= o.castle
	}
	if mv.Capture {
		penalty -= o.ev.Value(mv.Captured) - moved/o.captureDiv
	}
	if pos.IsSquareAttackedByOpponent(mv.Target) {
		penalty += moved / o.attackedDiv
	}
	return -penalty
}

type scoredMove struct {
	mv    chess.Move
	score int
}

// Order 原地排序。hint 在列表里时强制排第一，不在就忽略。
func (o *Orderer) Order(pos *chess.Position, moves []chess.Move, hint chess.Move) {
	if len(moves) < 2 {
		return
	}
	scored := make([]scoredMove, len(moves))
	for i, mv := range moves {
		scored[i] = scoredMove{mv: mv, score: o.Score(pos, mv)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	for i := range scored {
		moves[i] = scored[i].mv
	}
	if !hint.IsNull() {
		promoteHint(moves, hint)
	}
}

// 只认底层编码，同一着法在别的局面里标志位可能不同
func promoteHint(moves []chess.Move, hint chess.Move) {
	for i, mv := range moves {
		if mv.Raw != hint.Raw {
			continue
		}
		copy(moves[1:i+1], moves[:i])
		moves[0] = mv
		return
	}
}
