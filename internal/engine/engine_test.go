package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chessbot/internal/chess"
)

func TestOpeningMove(t *testing.T) {
	e := newTestEngine(DefaultConfig())
	pos := chess.NewInitialPosition()

	res := e.SearchDepth(pos, 1)
	if res.Move.IsNull() || !isLegal(pos, res.Move) {
		t.Fatalf("depth 1 returned %s", res.Move)
	}

	cfg := DefaultConfig()
	cfg.MaxDepth = 1
	res = newTestEngine(cfg).Think(context.Background(), pos, 0)
	if res.Move.IsNull() || !isLegal(pos, res.Move) || res.Depth != 1 {
		t.Fatalf("think returned %s at depth %d", res.Move, res.Depth)
	}
	if len(pos.LegalMoves(false)) != 20 {
		t.Fatalf("position disturbed")
	}
}

func TestThinkFallbackWhenBudgetSpent(t *testing.T) {
	cfg := DefaultConfig()
	e := newTestEngine(cfg)
	pos := mustDecode(t, kiwipeteFEN)

	moves := pos.LegalMoves(false)
	e.Orderer().Order(pos, moves, chess.NullMove)

	res := e.Think(context.Background(), pos, cfg.TimeBudget()+time.Second)
	if res.Depth != 0 {
		t.Fatalf("no depth should complete, got %d", res.Depth)
	}
	if res.Move != moves[0] {
		t.Fatalf("fallback: got %s want %s", res.Move, moves[0])
	}
}

func TestThinkCancelledContext(t *testing.T) {
	e := newTestEngine(DefaultConfig())
	pos := mustDecode(t, italianFEN)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.Think(ctx, pos, 0)
	if res.Move.IsNull() || !isLegal(pos, res.Move) {
		t.Fatalf("cancelled think must still return a legal move, got %s", res.Move)
	}
	if res.Depth != 0 {
		t.Fatalf("depth=%d after cancel", res.Depth)
	}
}

func TestThinkNoLegalMoves(t *testing.T) {
	e := newTestEngine(DefaultConfig())
	for _, fen := range []string{foolsMateFEN, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"} {
		res := e.Think(context.Background(), mustDecode(t, fen), 0)
		if !res.Move.IsNull() || res.Move.String() != "0000" {
			t.Fatalf("%s: expected null move, got %s", fen, res.Move)
		}
	}
}

func TestThinkStopsAtDeadline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeBudgetMs = 100
	e := newTestEngine(cfg)
	pos := mustDecode(t, kiwipeteFEN)
	before := pos.Snapshot()

	start := time.Now()
	res := e.Think(context.Background(), pos, 0)
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("think overran: %s", elapsed)
	}
	if !res.Aborted {
		t.Fatalf("unbounded depth should end in an aborted iteration")
	}
	if res.Move.IsNull() || !isLegal(pos, res.Move) {
		t.Fatalf("illegal move %s", res.Move)
	}
	if pos.Snapshot() != before {
		t.Fatalf("position changed by aborted search")
	}
}

func TestThinkFindsMate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeBudgetMs = 60_000
	e := newTestEngine(cfg)

	res := e.Think(context.Background(), mustDecode(t, backRankFEN), 0)
	if res.Move.String() != "a1a8" || res.Score != MateScore-1 {
		t.Fatalf("got %s score=%d", res.Move, res.Score)
	}
	// 证明杀棋后提前结束
	if res.Depth != 1 {
		t.Fatalf("expected to stop at depth 1, got %d", res.Depth)
	}
}

func TestHintScopes(t *testing.T) {
	for _, scope := range []HintScope{HintRoot, HintAll} {
		for _, useTable := range []bool{false, true} {
			name := fmt.Sprintf("%s/table=%t", scope, useTable)
			t.Run(name, func(t *testing.T) {
				cfg := DefaultConfig()
				cfg.TimeBudgetMs = 60_000
				cfg.MaxDepth = 3
				cfg.UseTable = useTable
				cfg.HintScope = scope

				refCfg := cfg
				refCfg.UseTable = false
				refCfg.HintScope = HintRoot

				pos := mustDecode(t, italianFEN)
				before := pos.Snapshot()
				res := newTestEngine(cfg).Think(context.Background(), pos, 0)
				ref := newTestEngine(refCfg).SearchDepth(pos, 3)

				if res.Depth != 3 {
					t.Fatalf("depth=%d", res.Depth)
				}
				// 排序和置换表只影响剪枝效率，不影响根节点分数
				if res.Score != ref.Score {
					t.Fatalf("score with hint=%d plain=%d", res.Score, ref.Score)
				}
				if !isLegal(pos, res.Move) {
					t.Fatalf("illegal move %s", res.Move)
				}
				if pos.Snapshot() != before {
					t.Fatalf("position changed")
				}
			})
		}
	}
}

func TestPersistTable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeBudgetMs = 60_000
	cfg.MaxDepth = 3
	cfg.PersistTable = true
	e := newTestEngine(cfg)

	pos := mustDecode(t, italianFEN)
	before := pos.Snapshot()
	first := e.Think(context.Background(), pos, 0)
	size := e.TableLen()
	if size == 0 {
		t.Fatalf("table empty after think")
	}

	second := e.Think(context.Background(), pos, 0)
	if e.TableLen() < size {
		t.Fatalf("persisted table shrank: %d -> %d", size, e.TableLen())
	}
	if second.Depth != first.Depth || !isLegal(pos, second.Move) {
		t.Fatalf("second think: depth=%d move=%s", second.Depth, second.Move)
	}
	if second.Nodes > first.Nodes {
		t.Fatalf("warm table searched more nodes: %d > %d", second.Nodes, first.Nodes)
	}
	if pos.Snapshot() != before {
		t.Fatalf("position changed")
	}

	e.Reset()
	if e.TableLen() != 0 {
		t.Fatalf("reset left %d entries", e.TableLen())
	}

	// 不保留时每回合从空表开始，两次搜索完全一样
	cfg.PersistTable = false
	fresh := newTestEngine(cfg)
	a := fresh.Think(context.Background(), pos, 0)
	if fresh.TableLen() == 0 {
		t.Fatalf("table unused during think")
	}
	b := fresh.Think(context.Background(), pos, 0)
	if a.Nodes != b.Nodes || a.Move != b.Move || a.Score != b.Score {
		t.Fatalf("turns differ without persistence: %d/%d nodes", a.Nodes, b.Nodes)
	}
}

func TestOnIteration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeBudgetMs = 60_000
	cfg.MaxDepth = 3
	e := newTestEngine(cfg)

	var got []Iteration
	e.OnIteration = func(it Iteration) { got = append(got, it) }
	pos := mustDecode(t, italianFEN)
	res := e.Think(context.Background(), pos, 0)

	if len(got) != 3 {
		t.Fatalf("iterations=%d want 3", len(got))
	}
	for i, it := range got {
		if it.Depth != i+1 {
			t.Fatalf("iteration %d has depth %d", i, it.Depth)
		}
		if len(it.PV) == 0 || it.PV[0] != it.Move {
			t.Fatalf("pv must start with the move")
		}
		if len(it.PV) > it.Depth {
			t.Fatalf("pv longer than depth")
		}
	}
	if last := got[len(got)-1]; last.Move != res.Move || last.Score != res.Score {
		t.Fatalf("result differs from last iteration")
	}
}

func TestThinkNodeLimit(t *testing.T) {
	cfg := DefaultConfig()
	pos := mustDecode(t, italianFEN)
	before := pos.Snapshot()

	res := newTestEngine(cfg).ThinkLimits(context.Background(), pos, Limits{Budget: time.Minute, Nodes: 500})
	if !res.Aborted {
		t.Fatalf("expected the node limit to cut a depth short")
	}
	if res.Nodes > 501 {
		t.Fatalf("searched %d nodes with a limit of 500", res.Nodes)
	}
	if res.Depth < 1 || !isLegal(pos, res.Move) {
		t.Fatalf("depth=%d move=%s", res.Depth, res.Move)
	}
	if pos.Snapshot() != before {
		t.Fatalf("position changed")
	}

	// 不限节点时同样的预算能搜得更深
	full := newTestEngine(cfg).ThinkLimits(context.Background(), pos, Limits{Budget: time.Minute, MaxDepth: 3})
	if full.Aborted || full.Depth != 3 {
		t.Fatalf("unlimited think: depth=%d aborted=%t", full.Depth, full.Aborted)
	}
}
