package uci

import (
	"bufio"
	"context"
	"io"
	"net"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"chessbot/internal/engine"
)

// Serve 逐行读取命令直到 quit 或输入结束
func Serve(ctx context.Context, r io.Reader, w io.Writer, cfg engine.Config, logger zerolog.Logger) error {
	s := NewSession(cfg, w, logger)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if s.Exec(ctx, scanner.Text()) {
			s.logger.Info().Msg("engine quit")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return errors.Wrap(scanner.Err(), "read commands")
}

// ListenAndServe 网络模式：每个连接一个独立的引擎
func ListenAndServe(ctx context.Context, addr string, cfg engine.Config, logger zerolog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", addr)
	}
	logger.Info().Str("addr", ln.Addr().String()).Msg("uci server listening")
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "accept")
		}
		connLog := logger.With().Str("remote", conn.RemoteAddr().String()).Logger()
		connLog.Info().Msg("accept connection")
		go func() {
			defer conn.Close()
			if err := Serve(ctx, conn, conn, cfg, connLog); err != nil {
				connLog.Warn().Err(err).Msg("connection closed")
			}
		}()
	}
}
