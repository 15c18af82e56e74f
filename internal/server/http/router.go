package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter 把 API、分析 websocket 和（可选的）静态文件挂到一个 chi 路由上
func NewRouter(h *Handler, webDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/new_game", h.handleNewGame)
		r.Post("/play", h.handlePlay)
		r.Post("/state", h.handleState)
		r.Post("/ai_move", h.handleAiMove)
		r.Get("/config", h.handleConfig)
	})
	r.Get("/ws/analysis", h.handleAnalysisWS)

	if RegisterStaticRoutes(r, webDir) {
		h.logger.Info().Str("dir", webDir).Msg("serving static files")
	}
	return r
}
