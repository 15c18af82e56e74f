package engine

import (
	"context"
	"time"

	"chessbot/internal/chess"
)

// 每隔多少个节点读一次时钟
const tickMask = 0xff

// searchCtx 是一次深度搜索的全部可变状态，由 Think 创建、用完即弃
type searchCtx struct {
	ctx      context.Context
	pos      *chess.Position
	eval     *Evaluator
	order    *Orderer
	table    *Table // nil 表示不用置换表
	deadline time.Time

	hint       chess.Move
	hintAll    bool
	quiescence bool

	nodes     int64
	nodeLimit int64 // 0 表示不限
	aborted   bool

	rootBest  chess.Move
	rootScore int
}

// tick 在每个节点入口调用，返回 true 表示本层搜索作废
func (sc *searchCtx) tick() bool {
	if sc.aborted {
		return true
	}
	sc.nodes++
	if sc.nodeLimit > 0 && sc.nodes > sc.nodeLimit {
		sc.aborted = true
		return true
	}
	if sc.nodes&tickMask == 0 {
		if !sc.deadline.IsZero() && time.Now().After(sc.deadline) {
			sc.aborted = true
		} else if sc.ctx != nil && sc.ctx.Err() != nil {
			sc.aborted = true
		}
	}
	return sc.aborted
}

func (sc *searchCtx) hintAt(ply int) chess.Move {
	if ply == 0 || sc.hintAll {
		return sc.hint
	}
	return chess.NullMove
}

// search 负极大值 alpha-beta。ply=0 是根节点，根的最佳着法写进 sc.rootBest。
// 被中止时返回 0，调用方看 sc.aborted 丢弃结果。
func (sc *searchCtx) search(depth, alpha, beta, ply int) int {
	if sc.tick() {
		return 0
	}
	pos := sc.pos

	// 根节点即使已经重复也要给出一步棋
	if ply > 0 {
		switch pos.Status() {
		case chess.Checkmate:
			return -(MateScore - ply)
		case chess.Ongoing:
		default:
			return 0
		}
	}

	if depth <= 0 {
		return sc.quiesce(alpha, beta, ply)
	}

	hash := pos.Hash()
	if sc.table != nil {
		if e, ok := sc.table.Lookup(hash); ok && e.Depth >= depth {
			score := fromTableScore(e.Score, ply)
			if ply > 0 {
				if e.Bound == Exact || score <= alpha {
					return score
				}
			} else if e.Bound == Exact && sc.adoptRoot(e.Best, score) {
				return score
			}
		}
	}

	moves := pos.LegalMoves(false)
	if len(moves) == 0 {
		if pos.InCheck() {
			return -(MateScore - ply)
		}
		return 0
	}
	sc.order.Order(pos, moves, sc.hintAt(ply))

	alphaOrig := alpha
	best := -scoreInf
	bestMove := chess.NullMove
	for _, mv := range moves {
		pos.Apply(mv)
		score := -sc.search(depth-1, -beta, -alpha, ply+1)
		pos.Revert()
		if sc.aborted {
			return 0
		}

		if score > best {
			best = score
			bestMove = mv
			if ply == 0 {
				sc.rootBest, sc.rootScore = mv, score
			}
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			// 剪枝，不写表
			return best
		}
	}

	if sc.table != nil {
		bound := Upper
		if best > alphaOrig {
			bound = Exact
		}
		sc.table.Store(hash, Entry{
			Depth: depth,
			Score: toTableScore(best, ply),
			Best:  bestMove,
			Bound: bound,
		})
	}
	return best
}

// adoptRoot 根节点命中置换表时，确认表里的着法在当前局面合法再采用
func (sc *searchCtx) adoptRoot(mv chess.Move, score int) bool {
	if mv.IsNull() {
		return false
	}
	legal, ok := findLegal(sc.pos, mv)
	if ok {
		sc.rootBest, sc.rootScore = legal, score
	}
	return ok
}
