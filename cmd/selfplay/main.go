package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	nchess "github.com/notnil/chess"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"chessbot/internal/chess"
	"chessbot/internal/engine"
)

// PlayerConfig 是对局一方：限时引擎或定深基线
type PlayerConfig struct {
	Name     string
	Cfg      engine.Config
	Budget   time.Duration
	MaxDepth int
}

type gameResult struct {
	winner string // "timed" / "baseline" / ""
	status chess.Status
	pgn    string
}

func main() {
	totalGames := flag.Int("games", 10, "number of games to play")
	budgetMs := flag.Int("budget", 1000, "time budget per move for the timed engine (ms)")
	baseDepth := flag.Int("baseline-depth", 5, "fixed depth of the baseline engine")
	parallel := flag.Int("parallel", 2, "games played concurrently")
	maxPlies := flag.Int("maxplies", 300, "adjudicate a draw after this many plies")
	pgnPath := flag.String("pgn", "", "write all games to this PGN file")
	bench := flag.Bool("bench", false, "run the node-rate benchmark instead of a match")
	benchDepth := flag.Int("bench-depth", 5, "search depth used by -bench")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *bench {
		runBenchmark(logger, *benchDepth)
		return
	}

	timedCfg := engine.DefaultConfig()
	timedCfg.TimeBudgetMs = *budgetMs
	timed := PlayerConfig{
		Name:   fmt.Sprintf("Timed (%d ms)", *budgetMs),
		Cfg:    timedCfg,
		Budget: timedCfg.TimeBudget(),
	}
	baseline := PlayerConfig{
		Name:     fmt.Sprintf("Baseline (Depth %d)", *baseDepth),
		Cfg:      engine.DefaultConfig(),
		Budget:   time.Hour,
		MaxDepth: *baseDepth,
	}

	results := make([]gameResult, *totalGames)
	var mu sync.Mutex
	done := 0

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*parallel)
	for i := 0; i < *totalGames; i++ {
		i := i
		g.Go(func() error {
			white, black := timed, baseline
			if i%2 == 1 {
				white, black = baseline, timed
			}
			res, err := playGame(ctx, white, black, *maxPlies)
			if err != nil {
				return errors.Wrapf(err, "game %d", i+1)
			}
			switch res.winner {
			case "white":
				res.winner = label(white, timed)
			case "black":
				res.winner = label(black, timed)
			}
			results[i] = res

			mu.Lock()
			done++
			logger.Info().Int("game", i+1).Int("done", done).
				Str("white", white.Name).Str("black", black.Name).
				Str("status", res.status.String()).Str("winner", res.winner).Msg("game finished")
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("selfplay")
	}

	timedWins, baseWins, draws := 0, 0, 0
	for _, r := range results {
		switch r.winner {
		case "timed":
			timedWins++
		case "baseline":
			baseWins++
		default:
			draws++
		}
	}
	fmt.Printf("\n=== Final Score ===\n")
	fmt.Printf("%s: %d\n", timed.Name, timedWins)
	fmt.Printf("%s: %d\n", baseline.Name, baseWins)
	fmt.Printf("Draws: %d\n", draws)

	if *pgnPath != "" {
		f, err := os.Create(*pgnPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("create pgn")
		}
		defer f.Close()
		for _, r := range results {
			fmt.Fprintln(f, r.pgn)
			fmt.Fprintln(f)
		}
	}
}

func label(p, timed PlayerConfig) string {
	if p.Name == timed.Name {
		return "timed"
	}
	return "baseline"
}

// playGame 下一整局，返回 "white" / "black" / "" 以及 PGN
func playGame(ctx context.Context, white, black PlayerConfig, maxPlies int) (gameResult, error) {
	pos := chess.NewInitialPosition()
	engines := [2]*engine.Engine{
		engine.NewEngine(white.Cfg, zerolog.Nop()),
		engine.NewEngine(black.Cfg, zerolog.Nop()),
	}
	players := [2]PlayerConfig{white, black}

	record := nchess.NewGame()
	record.AddTagPair("White", white.Name)
	record.AddTagPair("Black", black.Name)

	for ply := 0; ply < maxPlies; ply++ {
		if st := pos.Status(); st != chess.Ongoing {
			res := gameResult{status: st, pgn: record.String()}
			if st == chess.Checkmate {
				res.winner = pos.SideToMove().Opponent().String()
			}
			return res, nil
		}
		side := pos.SideToMove()
		p := players[side]
		res := engines[side].ThinkFor(ctx, pos, p.Budget, p.MaxDepth)
		if res.Move.IsNull() {
			return gameResult{}, errors.Errorf("no move in ongoing position %s", pos.Encode())
		}
		mv, err := nchess.UCINotation{}.Decode(record.Position(), res.Move.String())
		if err != nil {
			return gameResult{}, errors.Wrapf(err, "record %s", res.Move)
		}
		if err := record.Move(mv); err != nil {
			return gameResult{}, errors.Wrapf(err, "record %s", res.Move)
		}
		pos.Apply(res.Move)
	}
	return gameResult{status: chess.Ongoing, pgn: record.String()}, nil
}
