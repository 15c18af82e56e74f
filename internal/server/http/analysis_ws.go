package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"chessbot/internal/engine"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// handleAnalysisWS 对 game_id 对应的局面思考一次（不落子），
// 每完成一层推一条 iteration，最后推 result 并关闭连接。
//
//	GET /ws/analysis?game_id=<id>&time_ms=<n>
func (h *Handler) handleAnalysisWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	g, err := h.games.Get(q.Get("game_id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var budget time.Duration
	if raw := q.Get("time_ms"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			http.Error(w, "bad time_ms", http.StatusBadRequest)
			return
		}
		budget = time.Duration(ms) * time.Millisecond
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	send := func(msg IterationMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debug().Err(err).Msg("websocket write")
			return false
		}
		return true
	}

	res, v := g.Think(ctx, budget, false, func(it engine.Iteration) {
		send(iterationToDTO(it))
	})
	final := resultToDTO(res, v)
	send(IterationMessage{
		Type:   "result",
		Depth:  final.Depth,
		Score:  final.Score,
		Mate:   final.Mate,
		Move:   final.BestMove,
		Nodes:  final.Nodes,
		TimeMs: final.TimeMs,
		PV:     final.PV,
	})
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(wsWriteTimeout))
}
