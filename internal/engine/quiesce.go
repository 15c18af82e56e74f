package engine

import "chessbot/internal/chess"

// quiesce 只搜吃子，直到局面安静。stand pat 作为下界。
// 吃子会让子力单调减少，所以一定会停下来。
func (sc *searchCtx) quiesce(alpha, beta, ply int) int {
	if sc.tick() {
		return 0
	}
	pos := sc.pos
	if !sc.quiescence {
		return sc.eval.Evaluate(pos)
	}

	standPat := sc.eval.Evaluate(pos)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	captures := pos.LegalMoves(true)
	sc.order.Order(pos, captures, chess.NullMove)
	for _, mv := range captures {
		pos.Apply(mv)
		score := -sc.quiesce(-beta, -alpha, ply+1)
		pos.Revert()
		if sc.aborted {
			return 0
		}
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}
