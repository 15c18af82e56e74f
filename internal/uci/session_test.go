package uci

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chessbot/internal/chess"
	"chessbot/internal/engine"
)

func run(t *testing.T, script string) []string {
	t.Helper()
	var out bytes.Buffer
	if err := Serve(context.Background(), strings.NewReader(script), &out, engine.DefaultConfig(), zerolog.Nop()); err != nil {
		t.Fatalf("serve: %v", err)
	}
	return strings.Split(strings.TrimSpace(out.String()), "\n")
}

func lastWithPrefix(lines []string, prefix string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(lines[i], prefix) {
			return lines[i]
		}
	}
	return ""
}

func TestHandshake(t *testing.T) {
	lines := run(t, "uci\nisready\nquit\n")
	if lines[0] != "id name "+engineName {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if lastWithPrefix(lines, "uciok") == "" || lines[len(lines)-1] != "readyok" {
		t.Fatalf("handshake incomplete: %v", lines)
	}
	if lastWithPrefix(lines, "option name HintScope") == "" {
		t.Fatalf("options not advertised")
	}
}

func TestGoDepth(t *testing.T) {
	lines := run(t, "position startpos moves e2e4 e7e5\ngo depth 2\nquit\n")
	best := lastWithPrefix(lines, "bestmove ")
	if best == "" {
		t.Fatalf("no bestmove in %v", lines)
	}
	pos, err := chess.ParsePositionCommand("startpos moves e2e4 e7e5")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pos.FindMove(strings.TrimPrefix(best, "bestmove ")); err != nil {
		t.Fatalf("illegal bestmove %q: %v", best, err)
	}
	if lastWithPrefix(lines, "info depth 2 ") == "" {
		t.Fatalf("missing depth 2 info: %v", lines)
	}
}

func TestGoMateAndNull(t *testing.T) {
	lines := run(t, "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1\ngo depth 3\nquit\n")
	if got := lastWithPrefix(lines, "bestmove "); got != "bestmove a1a8" {
		t.Fatalf("got %q", got)
	}
	if info := lastWithPrefix(lines, "info depth"); !strings.Contains(info, "score mate 1") {
		t.Fatalf("mate not reported: %q", info)
	}

	lines = run(t, "position fen 7k/5Q2/6K1/8/8/8/8/8 b - - 0 1\ngo movetime 50\nquit\n")
	if got := lastWithPrefix(lines, "bestmove "); got != "bestmove 0000" {
		t.Fatalf("stalemate: got %q", got)
	}
}

func TestBadCommandsReportErrors(t *testing.T) {
	lines := run(t, "position startpos moves e2e5\ngo sideways 3\nsetoption name MaxDepth value 99\nsetoption name Colour value red\nfoo\nisready\nquit\n")
	errs := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "info string error") {
			errs++
		}
	}
	if errs != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", errs, lines)
	}
	if lines[len(lines)-1] != "readyok" {
		t.Fatalf("session should survive errors")
	}
}

func TestSetOption(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(engine.DefaultConfig(), &out, zerolog.Nop())
	ctx := context.Background()
	for _, cmd := range []string{
		"setoption name MaxDepth value 2",
		"setoption name Quiescence value false",
		"setoption name HintScope value all",
		"setoption name TimeBudget value 750",
		"setoption name PersistTable value true",
	} {
		if s.Exec(ctx, cmd) {
			t.Fatalf("%s quit the session", cmd)
		}
	}
	cfg := s.eng.Config()
	if cfg.MaxDepth != 2 || cfg.Quiescence || cfg.HintScope != engine.HintAll || cfg.TimeBudgetMs != 750 || !cfg.PersistTable {
		t.Fatalf("options not applied: %+v", cfg)
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestAllocate(t *testing.T) {
	budget := 3 * time.Second
	cases := []struct {
		name string
		p    goParams
		side chess.Side
		want time.Duration
	}{
		{"default", goParams{}, chess.White, budget},
		{"movetime", goParams{moveTime: 5 * time.Second}, chess.White, 5 * time.Second},
		{"clock", goParams{wtime: 60 * time.Second, winc: time.Second}, chess.White, 2500 * time.Millisecond},
		{"clock_capped", goParams{btime: 300 * time.Second}, chess.Black, budget},
		{"other_side", goParams{wtime: 60 * time.Second, btime: 30 * time.Second}, chess.Black, time.Second},
		{"nearly_flagged", goParams{wtime: 60 * time.Millisecond}, chess.White, minBudget},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := allocate(tc.p, tc.side, budget); got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestParseGo(t *testing.T) {
	p, err := parseGo("wtime 1000 btime 2000 winc 10 binc 20 movestogo 5 depth 4")
	if err != nil {
		t.Fatal(err)
	}
	if p.wtime != time.Second || p.btime != 2*time.Second || p.winc != 10*time.Millisecond || p.binc != 20*time.Millisecond || p.depth != 4 {
		t.Fatalf("unexpected %+v", p)
	}
	for _, bad := range []string{"depth", "depth x", "warp 3"} {
		if _, err := parseGo(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestGoNodes(t *testing.T) {
	lines := run(t, "position startpos\ngo nodes 300\nquit\n")
	best := lastWithPrefix(lines, "bestmove ")
	if _, err := chess.NewInitialPosition().FindMove(strings.TrimPrefix(best, "bestmove ")); err != nil {
		t.Fatalf("illegal bestmove %q: %v", best, err)
	}
	if info := lastWithPrefix(lines, "info depth"); info == "" || strings.Contains(info, "info depth 4 ") {
		t.Fatalf("node limit not honoured: %v", lines)
	}

	p, err := parseGo("infinite nodes 1234")
	if err != nil {
		t.Fatal(err)
	}
	if !p.infinite || p.nodes != 1234 {
		t.Fatalf("unexpected %+v", p)
	}
}
