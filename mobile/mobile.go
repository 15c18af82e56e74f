package mobile

import (
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"chessbot/internal/engine"
	"chessbot/internal/server/game"
	httpserver "chessbot/internal/server/http"
)

// StartServer starts the local HTTP server.
// webDir: physical path to the extracted web assets
// port: port to listen on, e.g. "2888"
func StartServer(webDir string, port string) {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("app", "mobile").Logger()
	h := httpserver.NewHandler(game.NewManager(engine.DefaultConfig(), logger), logger)
	handler := httpserver.NewRouter(h, webDir)

	// Run in background so it doesn't block the Android UI thread
	go func() {
		if err := http.ListenAndServe("127.0.0.1:"+port, handler); err != nil {
			logger.Error().Err(err).Msg("server error")
		}
	}()
}
