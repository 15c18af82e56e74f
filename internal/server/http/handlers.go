package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"chessbot/internal/server/game"
)

// Handler 持有所有对局，路由见 router.go
type Handler struct {
	games  *game.Manager
	logger zerolog.Logger
}

func NewHandler(games *game.Manager, logger zerolog.Logger) *Handler {
	return &Handler{games: games, logger: logger.With().Str("component", "http").Logger()}
}

func (h *Handler) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameRequest
	// 允许空 body
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}
	g, err := h.games.NewGame(req.FEN)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, h.logger, stateToDTO(g.View()))
}

func (h *Handler) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if !h.decode(w, r, &req) {
		return
	}
	g, err := h.games.Get(req.GameID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	v, err := g.Play(req.Move)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, h.logger, stateToDTO(v))
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	var req StateRequest
	if !h.decode(w, r, &req) {
		return
	}
	g, err := h.games.Get(req.GameID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, h.logger, stateToDTO(g.View()))
}

func (h *Handler) handleAiMove(w http.ResponseWriter, r *http.Request) {
	var req AiMoveRequest
	if !h.decode(w, r, &req) {
		return
	}
	g, err := h.games.Get(req.GameID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	budget := time.Duration(req.TimeMs) * time.Millisecond
	res, v := g.Think(r.Context(), budget, req.Apply, nil)
	writeJSON(w, h.logger, resultToDTO(res, v))
}

func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, h.games.Config())
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, errors.Wrap(err, "bad json"))
		return false
	}
	return true
}

// 这里的错误都来自请求本身：找不到对局 404，其余 400
func statusFor(err error) int {
	if errors.Is(err, game.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	h.logger.Warn().Err(err).Int("status", code).Msg("request failed")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if encErr := json.NewEncoder(w).Encode(errorResponse{Error: err.Error()}); encErr != nil {
		h.logger.Error().Err(encErr).Msg("write error response")
	}
}

func writeJSON(w http.ResponseWriter, logger zerolog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("writeJSON")
	}
}
