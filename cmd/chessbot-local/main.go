package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"chessbot/internal/engine"
	"chessbot/internal/server/game"
	httpserver "chessbot/internal/server/http"
)

func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default: // linux / bsd
		cmd = exec.Command("xdg-open", url)
	}

	_ = cmd.Start() // 服务器环境可能没有图形界面
}

func main() {
	addr := flag.String("addr", ":2888", "listen address")
	webDir := flag.String("web", "./web", "directory with index.html / js")
	cfgPath := flag.String("config", "", "engine config json (optional)")
	level := flag.String("log-level", "info", "debug / info / warn / error")
	browser := flag.Bool("browser", true, "open the default browser after start")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(*level); err == nil {
		logger = logger.Level(lvl)
	}

	cfg := engine.DefaultConfig()
	if *cfgPath != "" {
		var err error
		if cfg, err = engine.LoadConfig(*cfgPath); err != nil {
			logger.Fatal().Err(err).Str("path", *cfgPath).Msg("load config")
		}
	}

	h := httpserver.NewHandler(game.NewManager(cfg, logger), logger)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           httpserver.NewRouter(h, *webDir),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", *addr).Str("web", *webDir).
		Dur("budget", cfg.TimeBudget()).Msg("listening")

	// 延迟 100ms 打开浏览器，否则服务器可能还没起来
	if *browser {
		go func() {
			time.Sleep(100 * time.Millisecond)
			openBrowser("http://127.0.0.1" + *addr)
		}()
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("serve")
	}
}
