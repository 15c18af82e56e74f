package uci

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"chessbot/internal/chess"
	"chessbot/internal/engine"
)

const (
	engineName   = "chessbot 1.0"
	engineAuthor = "chessbot authors"

	// 按剩余时间分配时，假设还要走这么多步
	movesToGo = 30
	minBudget = 10 * time.Millisecond
)

// Session 是一条 UCI 连接的状态：当前局面 + 引擎
type Session struct {
	cfg    engine.Config
	eng    *engine.Engine
	pos    *chess.Position
	out    io.Writer
	logger zerolog.Logger
}

func NewSession(cfg engine.Config, out io.Writer, logger zerolog.Logger) *Session {
	s := &Session{
		cfg:    cfg,
		eng:    engine.NewEngine(cfg, logger),
		pos:    chess.NewInitialPosition(),
		out:    out,
		logger: logger.With().Str("component", "uci").Logger(),
	}
	s.eng.OnIteration = s.info
	return s
}

// Exec 执行一行命令，返回 true 表示收到 quit
func (s *Session) Exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	s.logger.Debug().Str("cmd", line).Msg("command")
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "uci":
		s.uci()
	case "isready":
		s.println("readyok")
	case "ucinewgame":
		s.pos = chess.NewInitialPosition()
		s.eng.Reset()
	case "position":
		pos, err := chess.ParsePositionCommand(arg)
		if err != nil {
			s.fail(err)
			return false
		}
		s.pos = pos
	case "go":
		s.goThink(ctx, arg)
	case "setoption":
		if err := s.setOption(arg); err != nil {
			s.fail(err)
		}
	case "stop", "ponderhit":
		// 搜索是同步的，go 返回时已经结束
	case "quit":
		return true
	default:
		s.logger.Warn().Str("cmd", name).Msg("unknown command")
	}
	return false
}

func (s *Session) uci() {
	s.println("id name " + engineName)
	s.println("id author " + engineAuthor)
	s.println(fmt.Sprintf("option name TimeBudget type spin default %d min 1 max 3600000", s.cfg.TimeBudgetMs))
	s.println(fmt.Sprintf("option name MaxDepth type spin default %d min 0 max 64", s.cfg.MaxDepth))
	s.println(fmt.Sprintf("option name Quiescence type check default %t", s.cfg.Quiescence))
	s.println(fmt.Sprintf("option name PersistTable type check default %t", s.cfg.PersistTable))
	s.println(fmt.Sprintf("option name HintScope type combo default %s var root var all", s.cfg.HintScope))
	s.println("info string go infinite searches for TimeBudget ms; go blocks, so stop only takes effect after bestmove")
	s.println("uciok")
}

// goParams 是 go 命令的参数，没给的字段为 0
type goParams struct {
	moveTime time.Duration
	wtime    time.Duration
	btime    time.Duration
	winc     time.Duration
	binc     time.Duration
	depth    int
	nodes    int64
	infinite bool
}

func parseGo(arg string) (goParams, error) {
	var p goParams
	fields := strings.Fields(arg)
	for i := 0; i < len(fields); i++ {
		key := fields[i]
		switch key {
		case "infinite":
			p.infinite = true
			continue
		case "ponder":
			continue
		case "movetime", "wtime", "btime", "winc", "binc", "depth", "movestogo", "nodes":
		default:
			return p, errors.Errorf("unknown go parameter %q", key)
		}
		if i+1 >= len(fields) {
			return p, errors.Errorf("go %s: missing value", key)
		}
		i++
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return p, errors.Wrapf(err, "go %s", key)
		}
		ms := time.Duration(n) * time.Millisecond
		switch key {
		case "movetime":
			p.moveTime = ms
		case "wtime":
			p.wtime = ms
		case "btime":
			p.btime = ms
		case "winc":
			p.winc = ms
		case "binc":
			p.binc = ms
		case "depth":
			p.depth = n
		case "nodes":
			p.nodes = int64(n)
		}
	}
	return p, nil
}

// allocate 决定本步用多少时间：movetime 优先，其次按剩余时间分配，都没有就用默认预算
func allocate(p goParams, side chess.Side, budget time.Duration) time.Duration {
	if p.moveTime > 0 {
		return p.moveTime
	}
	remaining, inc := p.wtime, p.winc
	if side == chess.Black {
		remaining, inc = p.btime, p.binc
	}
	if remaining <= 0 {
		return budget
	}
	alloc := min(budget, remaining/movesToGo+inc/2)
	return max(alloc, minBudget)
}

func (s *Session) goThink(ctx context.Context, arg string) {
	p, err := parseGo(arg)
	if err != nil {
		s.fail(err)
		return
	}
	budget := allocate(p, s.pos.SideToMove(), s.cfg.TimeBudget())
	timed := p.moveTime > 0 || p.wtime > 0 || p.btime > 0
	if (p.depth > 0 || p.nodes > 0) && !timed && !p.infinite {
		// 只给深度或节点数时不限时；infinite 用配置的预算
		budget = time.Hour
	}
	res := s.eng.ThinkLimits(ctx, s.pos, engine.Limits{Budget: budget, MaxDepth: p.depth, Nodes: p.nodes})
	s.println("bestmove " + res.Move.String())
}

func (s *Session) info(it engine.Iteration) {
	score := fmt.Sprintf("cp %d", it.Score)
	if engine.IsMateScore(it.Score) {
		score = fmt.Sprintf("mate %d", engine.MateIn(it.Score))
	}
	pv := make([]string, len(it.PV))
	for i, mv := range it.PV {
		pv[i] = mv.String()
	}
	s.println(fmt.Sprintf("info depth %d score %s nodes %d time %d pv %s",
		it.Depth, score, it.Nodes, it.Elapsed.Milliseconds(), strings.Join(pv, " ")))
}

// setOption 解析 "name <X> value <Y>"
func (s *Session) setOption(arg string) error {
	rest, ok := strings.CutPrefix(arg, "name ")
	if !ok {
		return errors.Errorf("setoption: expected name, got %q", arg)
	}
	name, value, _ := strings.Cut(rest, " value ")
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)

	cfg := s.cfg
	var err error
	switch strings.ToLower(name) {
	case "timebudget":
		cfg.TimeBudgetMs, err = strconv.Atoi(value)
	case "maxdepth":
		cfg.MaxDepth, err = strconv.Atoi(value)
	case "quiescence":
		cfg.Quiescence, err = strconv.ParseBool(value)
	case "persisttable":
		cfg.PersistTable, err = strconv.ParseBool(value)
	case "hintscope":
		cfg.HintScope = engine.HintScope(value)
	default:
		return errors.Errorf("unknown option %q", name)
	}
	if err != nil {
		return errors.Wrapf(err, "option %s", name)
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrapf(err, "option %s", name)
	}
	s.cfg = cfg
	s.eng.SetConfig(cfg)
	return nil
}

func (s *Session) fail(err error) {
	s.logger.Error().Err(err).Msg("command failed")
	s.println("info string error: " + err.Error())
}

func (s *Session) println(line string) {
	if _, err := fmt.Fprintln(s.out, line); err != nil {
		s.logger.Error().Err(err).Str("line", line).Msg("write failed")
	}
}
