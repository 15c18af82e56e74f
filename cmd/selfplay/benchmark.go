package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"chessbot/internal/chess"
	"chessbot/internal/engine"
)

var benchPositions = []struct {
	name string
	fen  string
}{
	{"initial", chess.InitialFEN},
	{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"},
	{"italian", "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3"},
	{"rook_endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"},
	{"middlegame", "r2q1rk1/pp2bppp/2n1bn2/3p4/3P4/2NBBN2/PP3PPP/R2Q1RK1 w - - 0 10"},
}

// runBenchmark 对每个局面做一次定深搜索，报告节点数和每秒节点数
func runBenchmark(logger zerolog.Logger, depth int) {
	eng := engine.NewEngine(engine.DefaultConfig(), zerolog.Nop())

	var totalNodes int64
	var totalTime time.Duration
	for _, bp := range benchPositions {
		pos, err := chess.DecodePosition(bp.fen)
		if err != nil {
			logger.Fatal().Err(err).Str("position", bp.name).Msg("bench")
		}
		eng.Reset()
		start := time.Now()
		res := eng.SearchDepth(pos, depth)
		elapsed := time.Since(start)
		totalNodes += res.Nodes
		totalTime += elapsed

		fmt.Printf("%-14s best %-6s score %7d nodes %10d time %8v nps %d\n",
			bp.name, res.Move, res.Score, res.Nodes, elapsed.Round(time.Millisecond), nps(res.Nodes, elapsed))
	}
	fmt.Printf("\nTotal: nodes %d time %v nps %d\n", totalNodes, totalTime.Round(time.Millisecond), nps(totalNodes, totalTime))
}

func nps(nodes int64, d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(float64(nodes) / d.Seconds())
}
