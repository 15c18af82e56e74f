package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"chessbot/internal/engine"
	"chessbot/internal/uci"
)

var (
	serverMode = flag.Bool("s", false, "open server mode")
	port       = flag.Int("p", 1234, "server mode listening port")
	cfgPath    = flag.String("config", "", "engine config json (optional)")
	logPath    = flag.String("log", "chessbot.log", "log file in stdin mode (empty for stderr)")
	logLevel   = flag.String("log-level", "info", "debug / info / warn / error")
)

func main() {
	flag.Parse()

	// stdin 模式下 stdout 是协议通道，日志只能写文件或 stderr
	out := os.Stderr
	if !*serverMode && *logPath != "" {
		if f, err := os.Create(*logPath); err == nil {
			defer f.Close()
			out = f
		}
	}
	logger := zerolog.New(out).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		logger = logger.Level(lvl)
	}

	cfg := engine.DefaultConfig()
	if *cfgPath != "" {
		var err error
		if cfg, err = engine.LoadConfig(*cfgPath); err != nil {
			logger.Fatal().Err(err).Str("path", *cfgPath).Msg("load config")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if *serverMode {
		err = uci.ListenAndServe(ctx, fmt.Sprintf("0.0.0.0:%d", *port), cfg, logger)
	} else {
		err = uci.Serve(ctx, os.Stdin, os.Stdout, cfg, logger)
	}
	if err != nil {
		logger.Error().Err(err).Msg("engine stopped")
		os.Exit(1)
	}
}
