package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"chessbot/internal/chess"
	"chessbot/internal/engine"
)

// debug 打印一个局面的合法着法、排序分、静态评估，再做一次定深搜索
func main() {
	fen := flag.String("fen", chess.InitialFEN, "position to inspect")
	depth := flag.Int("depth", 4, "fixed search depth (0 to skip)")
	flag.Parse()

	pos, err := chess.DecodePosition(*fen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	eng := engine.NewEngine(engine.DefaultConfig(), zerolog.Nop())

	fmt.Println("FEN:", pos.Encode())
	fmt.Println("Status:", pos.Status())
	fmt.Println("Eval:", eng.Evaluator().Evaluate(pos))

	moves := pos.LegalMoves(false)
	eng.Orderer().Order(pos, moves, chess.NullMove)
	fmt.Println("Legal moves:", len(moves))
	for _, mv := range moves {
		fmt.Printf("  %-6s %6d\n", mv, eng.Orderer().Score(pos, mv))
	}

	if *depth <= 0 {
		return
	}
	start := time.Now()
	res := eng.SearchDepth(pos, *depth)
	fmt.Printf("Depth %d: best %s score %d nodes %d (%v)\n",
		*depth, res.Move, res.Score, res.Nodes, time.Since(start).Round(time.Millisecond))
}
