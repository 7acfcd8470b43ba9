// Package main implements the Amun language server entry point.
package main

import (
	"context"
	"io"
	"os"

	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"

	"github.com/amunlang/amun/pkg/lsp"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	server, err := lsp.NewServer(lsp.ServerConfig{Logger: logger.Sugar()})
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	rwc := &stdinoutCloser{stdin: os.Stdin, stdout: os.Stdout}
	stream := jsonrpc2.NewStream(rwc)
	conn := jsonrpc2.NewConn(stream)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server.SetConn(conn, ctx)

	conn.Go(ctx, server.Handler())
	logger.Info("amun-lsp started")

	<-conn.Done()
	logger.Info("amun-lsp stopped")
}

// newLogger builds the zap logger every Amun driver/LSP entry point
// uses (SPEC_FULL §B); amun-lsp writes to stderr since stdout carries
// the LSP wire protocol.
func newLogger() *zap.Logger {
	level := zap.InfoLevel
	if os.Getenv("AMUN_LSP_LOG") == "debug" {
		level = zap.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		// zap.NewProductionConfig().Build() only fails on a malformed
		// config, which the literal above can't produce.
		panic(err)
	}
	return logger
}

// stdinoutCloser wraps stdin/stdout as the io.ReadWriteCloser
// jsonrpc2.NewStream expects.
type stdinoutCloser struct {
	stdin  *os.File
	stdout *os.File
}

func (s *stdinoutCloser) Read(p []byte) (int, error)  { return s.stdin.Read(p) }
func (s *stdinoutCloser) Write(p []byte) (int, error) { return s.stdout.Write(p) }
func (s *stdinoutCloser) Close() error                { return nil }

var _ io.ReadWriteCloser = (*stdinoutCloser)(nil)
