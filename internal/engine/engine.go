package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"chessbot/internal/chess"
)

// Result 是一次 Think 的输出
type Result struct {
	Move    chess.Move   // 最佳着法；无子可动时为 NullMove
	Score   int          // 走子方视角
	Depth   int          // 最后一个完整搜完的深度，0 表示用了兜底着法
	Nodes   int64        // 节点数（含被中止的那一层）
	Elapsed time.Duration
	Aborted bool // 有一层因为超时 / 取消被丢弃
	PV      []chess.Move
}

// Iteration 每完成一层迭代回调一次
type Iteration struct {
	Depth   int
	Score   int
	Move    chess.Move
	Nodes   int64
	Elapsed time.Duration
	PV      []chess.Move
}

// Engine 不是并发安全的：同一时间只能有一个 Think。
type Engine struct {
	cfg    Config
	eval   *Evaluator
	order  *Orderer
	table  *Table
	logger zerolog.Logger

	OnIteration func(Iteration)
}

func NewEngine(cfg Config, logger zerolog.Logger) *Engine {
	ev := NewEvaluator(cfg)
	return &Engine{
		cfg:    cfg,
		eval:   ev,
		order:  NewOrderer(cfg, ev),
		logger: logger.With().Str("component", "engine").Logger(),
	}
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Evaluator() *Evaluator {
	return e.eval
}

func (e *Engine) Orderer() *Orderer {
	return e.order
}

// Reset 丢掉跨回合保存的置换表（新对局时调用）
func (e *Engine) Reset() {
	if e.table != nil {
		e.table.Clear()
	}
}

// TableLen 当前置换表的条目数
func (e *Engine) TableLen() int {
	if e.table == nil {
		return 0
	}
	return e.table.Len()
}

// tableForTurn 默认每回合清空，PersistTable 时沿用上回合的表
func (e *Engine) tableForTurn() *Table {
	if !e.cfg.UseTable {
		return nil
	}
	if e.table == nil {
		e.table = NewTable(e.cfg.TablePolicy, e.cfg.TableCapacity)
	} else if !e.cfg.PersistTable {
		e.table.Clear()
	}
	return e.table
}

func (e *Engine) newSearchCtx(ctx context.Context, pos *chess.Position, table *Table, hint chess.Move, deadline time.Time) *searchCtx {
	return &searchCtx{
		ctx:        ctx,
		pos:        pos,
		eval:       e.eval,
		order:      e.order,
		table:      table,
		deadline:   deadline,
		hint:       hint,
		hintAll:    e.cfg.HintScope == HintAll,
		quiescence: e.cfg.Quiescence,
	}
}

// SetConfig 换配置。置换表的策略或容量变了就丢掉旧表。
func (e *Engine) SetConfig(cfg Config) {
	if cfg.UseTable != e.cfg.UseTable || cfg.TablePolicy != e.cfg.TablePolicy || cfg.TableCapacity != e.cfg.TableCapacity {
		e.table = nil
	}
	e.cfg = cfg
	e.eval = NewEvaluator(cfg)
	e.order = NewOrderer(cfg, e.eval)
}

// Think 在时间预算内迭代加深，返回最后一个完整深度的最佳着法。
// spent 是本回合在调用之前已经用掉的时间。
func (e *Engine) Think(ctx context.Context, pos *chess.Position, spent time.Duration) Result {
	return e.ThinkFor(ctx, pos, e.cfg.TimeBudget()-spent, 0)
}

// ThinkFor 用给定的剩余时间思考；maxDepth>0 时覆盖配置里的深度上限
func (e *Engine) ThinkFor(ctx context.Context, pos *chess.Position, budget time.Duration, maxDepth int) Result {
	return e.ThinkLimits(ctx, pos, Limits{Budget: budget, MaxDepth: maxDepth})
}

// Limits 是一次思考的上限。Budget 是剩余时间；MaxDepth、Nodes 为 0 表示沿用配置 / 不限。
type Limits struct {
	Budget   time.Duration
	MaxDepth int
	Nodes    int64
}

// ThinkLimits 同 ThinkFor，另外可以限制总节点数（UCI go nodes）。
// 超过节点数的那一层和超时一样作废。
func (e *Engine) ThinkLimits(ctx context.Context, pos *chess.Position, lim Limits) Result {
	start := time.Now()
	deadline := start.Add(lim.Budget)
	limit := e.cfg.depthLimit()
	if lim.MaxDepth > 0 && lim.MaxDepth < maxSearchDepth {
		limit = lim.MaxDepth
	}

	moves := pos.LegalMoves(false)
	if len(moves) == 0 {
		e.logger.Info().Str("fen", pos.Encode()).Msg("no legal moves")
		return Result{Move: chess.NullMove}
	}
	// 一层都没搜完时的兜底：排序后的第一步
	e.order.Order(pos, moves, chess.NullMove)
	res := Result{Move: moves[0], Score: e.eval.Evaluate(pos)}

	table := e.tableForTurn()
	hint := chess.NullMove
	for depth := 1; depth <= limit; depth++ {
		if time.Now().After(deadline) || ctx.Err() != nil {
			break
		}
		if lim.Nodes > 0 && res.Nodes >= lim.Nodes {
			break
		}
		sc := e.newSearchCtx(ctx, pos, table, hint, deadline)
		if lim.Nodes > 0 {
			sc.nodeLimit = lim.Nodes - res.Nodes
		}
		score := sc.search(depth, -scoreInf, scoreInf, 0)
		res.Nodes += sc.nodes
		if sc.aborted {
			res.Aborted = true
			e.logger.Debug().Int("depth", depth).Int64("nodes", sc.nodes).Msg("depth aborted")
			break
		}
		if sc.rootBest.IsNull() {
			break
		}

		res.Move, res.Score, res.Depth = sc.rootBest, score, depth
		hint = sc.rootBest

		elapsed := time.Since(start)
		e.logger.Debug().
			Int("depth", depth).
			Int("score", score).
			Str("move", res.Move.String()).
			Int64("nodes", res.Nodes).
			Dur("elapsed", elapsed).
			Msg("iteration")
		if e.OnIteration != nil {
			e.OnIteration(Iteration{
				Depth:   depth,
				Score:   score,
				Move:    res.Move,
				Nodes:   res.Nodes,
				Elapsed: elapsed,
				PV:      e.principalVariation(pos, table, res.Move, depth),
			})
		}
		if IsMateScore(score) {
			break
		}
	}

	res.Elapsed = time.Since(start)
	res.PV = e.principalVariation(pos, table, res.Move, res.Depth)
	e.logger.Info().
		Str("move", res.Move.String()).
		Int("score", res.Score).
		Int("depth", res.Depth).
		Int64("nodes", res.Nodes).
		Dur("elapsed", res.Elapsed).
		Bool("aborted", res.Aborted).
		Msg("think")
	return res
}

// SearchDepth 固定深度搜一次：不限时、不带 hint
func (e *Engine) SearchDepth(pos *chess.Position, depth int) Result {
	start := time.Now()
	moves := pos.LegalMoves(false)
	if len(moves) == 0 || depth <= 0 {
		return Result{Move: chess.NullMove}
	}
	sc := e.newSearchCtx(context.Background(), pos, e.tableForTurn(), chess.NullMove, time.Time{})
	score := sc.search(depth, -scoreInf, scoreInf, 0)
	return Result{
		Move:    sc.rootBest,
		Score:   score,
		Depth:   depth,
		Nodes:   sc.nodes,
		Elapsed: time.Since(start),
		PV:      e.principalVariation(pos, sc.table, sc.rootBest, depth),
	}
}

// principalVariation 沿着置换表里的最佳着法往下走，最多 depth 步，走完全部撤销
func (e *Engine) principalVariation(pos *chess.Position, table *Table, first chess.Move, depth int) []chess.Move {
	if first.IsNull() {
		return nil
	}
	pv := []chess.Move{first}
	if table == nil {
		return pv
	}
	pos.Apply(first)
	applied := 1
	seen := map[uint64]bool{pos.Hash(): true}
	for len(pv) < depth {
		entry, ok := table.Lookup(pos.Hash())
		if !ok || entry.Best.IsNull() {
			break
		}
		next, found := findLegal(pos, entry.Best)
		if !found {
			break
		}
		pos.Apply(next)
		applied++
		pv = append(pv, next)
		if seen[pos.Hash()] {
			break
		}
		seen[pos.Hash()] = true
	}
	for ; applied > 0; applied-- {
		pos.Revert()
	}
	return pv
}

func findLegal(pos *chess.Position, mv chess.Move) (chess.Move, bool) {
	for _, legal := range pos.LegalMoves(false) {
		if legal.Raw == mv.Raw {
			return legal, true
		}
	}
	return chess.NullMove, false
}
