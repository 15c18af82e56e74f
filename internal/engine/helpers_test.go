package engine

import (
	"strings"
	"testing"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"chessbot/internal/chess"
)

const (
	kiwipeteFEN   = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	rookEndFEN    = "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"
	italianFEN    = "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3"
	backRankFEN   = "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"
	mateInTwoFEN  = "k7/8/2K5/8/8/8/8/7R w - - 0 1"
	foolsMateFEN  = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"
	queenUpFEN    = "4k1n1/8/8/8/8/8/8/Q3K3 w - - 0 1"
	captureMixFEN = "r1b1k2r/ppp2ppp/2n2n2/1B1qp3/1b1P4/2N2N2/PPP2PPP/R1BQK2R w KQkq - 0 7"
)

var noDeadline time.Time

func newTestEngine(cfg Config) *Engine {
	return NewEngine(cfg, zerolog.Nop())
}

func mustDecode(t *testing.T, fen string) *chess.Position {
	t.Helper()
	pos, err := chess.DecodePosition(fen)
	if err != nil {
		t.Fatalf("decode %q: %v", fen, err)
	}
	return pos
}

func isLegal(pos *chess.Position, mv chess.Move) bool {
	_, ok := findLegal(pos, mv)
	return ok
}

// swapColors 上下翻转棋盘并交换颜色，走子方也交换
func swapColors(fen string) string {
	fields := strings.Fields(fen)
	ranks := strings.Split(fields[0], "/")
	swapped := make([]string, len(ranks))
	for i, rank := range ranks {
		var b strings.Builder
		for _, c := range rank {
			switch {
			case unicode.IsUpper(c):
				b.WriteRune(unicode.ToLower(c))
			case unicode.IsLower(c):
				b.WriteRune(unicode.ToUpper(c))
			default:
				b.WriteRune(c)
			}
		}
		swapped[len(ranks)-1-i] = b.String()
	}
	side := "b"
	if fields[1] == "b" {
		side = "w"
	}
	return strings.Join(swapped, "/") + " " + side + " - - 0 1"
}

// minimax 不剪枝的负极大值，终局判定与 search 一致，叶子直接用静态估值
func minimax(pos *chess.Position, ev *Evaluator, ord *Orderer, depth, ply int) (int, chess.Move) {
	if ply > 0 {
		switch pos.Status() {
		case chess.Checkmate:
			return -(MateScore - ply), chess.NullMove
		case chess.Ongoing:
		default:
			return 0, chess.NullMove
		}
	}
	if depth == 0 {
		return ev.Evaluate(pos), chess.NullMove
	}
	moves := pos.LegalMoves(false)
	if len(moves) == 0 {
		if pos.InCheck() {
			return -(MateScore - ply), chess.NullMove
		}
		return 0, chess.NullMove
	}
	ord.Order(pos, moves, chess.NullMove)
	best, bestMove := -scoreInf, chess.NullMove
	for _, mv := range moves {
		pos.Apply(mv)
		score, _ := minimax(pos, ev, ord, depth-1, ply+1)
		pos.Revert()
		if -score > best {
			best, bestMove = -score, mv
		}
	}
	return best, bestMove
}
