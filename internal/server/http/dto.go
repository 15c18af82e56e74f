package httpserver

import (
	"github.com/samber/lo"

	"chessbot/internal/chess"
	"chessbot/internal/engine"
	"chessbot/internal/server/game"
)

// NewGameRequest 开局请求，fen 为空时用初始局面
type NewGameRequest struct {
	FEN string `json:"fen"`
}

type PlayRequest struct {
	GameID string `json:"game_id"`
	Move   string `json:"move"` // UCI 记法，如 e2e4、e7e8q
}

type StateRequest struct {
	GameID string `json:"game_id"`
}

// AiMoveRequest 让引擎为当前局面走一步
type AiMoveRequest struct {
	GameID string `json:"game_id"`
	TimeMs int64  `json:"time_ms"` // 0 用服务端默认预算
	Apply  bool   `json:"apply"`   // 为真时直接落子
}

// StateResponse 是对局状态，new_game / play / state 都返回它
type StateResponse struct {
	GameID     string   `json:"game_id"`
	Position   string   `json:"position"` // FEN
	ToMove     string   `json:"to_move"`  // "white" / "black"
	LegalMoves []string `json:"legal_moves"`
	Moves      []string `json:"moves"`
	Status     string   `json:"status"` // ongoing / checkmate / stalemate / fifty_move / ...
}

type AiMoveResponse struct {
	BestMove string        `json:"best_move"` // 无子可动时为 "0000"
	Score    int           `json:"score"`
	Mate     int           `json:"mate,omitempty"` // 几步杀，负数表示被杀
	Depth    int           `json:"depth"`
	Nodes    int64         `json:"nodes"`
	TimeMs   int64         `json:"time_ms"`
	PV       []string      `json:"pv"`
	Aborted  bool          `json:"aborted"`
	State    StateResponse `json:"state"`
}

// IterationMessage 是 /ws/analysis 推送的消息
type IterationMessage struct {
	Type   string   `json:"type"` // "iteration" / "result" / "error"
	Depth  int      `json:"depth,omitempty"`
	Score  int      `json:"score,omitempty"`
	Mate   int      `json:"mate,omitempty"`
	Move   string   `json:"move,omitempty"`
	Nodes  int64    `json:"nodes,omitempty"`
	TimeMs int64    `json:"time_ms,omitempty"`
	PV     []string `json:"pv,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func movesToDTO(ms []chess.Move) []string {
	return lo.Map(ms, func(m chess.Move, _ int) string { return m.String() })
}

func stateToDTO(v game.View) StateResponse {
	return StateResponse{
		GameID:     v.ID,
		Position:   v.FEN,
		ToMove:     v.ToMove.String(),
		LegalMoves: movesToDTO(v.Legal),
		Moves:      movesToDTO(v.Moves),
		Status:     v.Status.String(),
	}
}

func resultToDTO(res engine.Result, v game.View) AiMoveResponse {
	return AiMoveResponse{
		BestMove: res.Move.String(),
		Score:    res.Score,
		Mate:     engine.MateIn(res.Score),
		Depth:    res.Depth,
		Nodes:    res.Nodes,
		TimeMs:   res.Elapsed.Milliseconds(),
		PV:       movesToDTO(res.PV),
		Aborted:  res.Aborted,
		State:    stateToDTO(v),
	}
}

func iterationToDTO(it engine.Iteration) IterationMessage {
	return IterationMessage{
		Type:   "iteration",
		Depth:  it.Depth,
		Score:  it.Score,
		Mate:   engine.MateIn(it.Score),
		Move:   it.Move.String(),
		Nodes:  it.Nodes,
		TimeMs: it.Elapsed.Milliseconds(),
		PV:     movesToDTO(it.PV),
	}
}
