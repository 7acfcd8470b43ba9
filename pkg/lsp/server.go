// Package lsp implements an Amun language server: an LSP stdio server
// that type-checks an open document on every change and publishes the
// result as textDocument/publishDiagnostics notifications.
//
// Diagnostics are already expressed in Amun source coordinates, so
// there's no position-translation or subprocess proxy layer here —
// just the server's request-dispatch skeleton (ServerConfig/Server/
// NewServer/SetConn/Handler/handleRequest) and the initialize/
// shutdown/exit lifecycle, driving pkg/compiler directly.
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/amunlang/amun/pkg/compiler"
)

// ServerConfig holds configuration for the LSP server. Logger is a
// *zap.SugaredLogger rather than a bespoke Logger interface: it already
// exposes the Debugf/Infof/Warnf/Errorf surface request handling needs,
// so there is nothing left for a separate interface to abstract (§B:
// zap confined to the driver/LSP boundary).
type ServerConfig struct {
	Logger *zap.SugaredLogger
	// WarningsAsErrors mirrors compiler.Options.WarningsAsErrors: when
	// set, a reported warning is published as an Error-severity
	// diagnostic.
	WarningsAsErrors bool
}

// Server implements the Amun LSP server.
type Server struct {
	config ServerConfig
	docs   *documentStore

	connMu  sync.RWMutex
	ideConn jsonrpc2.Conn
	ctx     context.Context

	initialized bool
}

// NewServer creates a new LSP server instance.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("lsp: ServerConfig.Logger must not be nil")
	}
	return &Server{
		config: cfg,
		docs:   newDocumentStore(),
	}, nil
}

// SetConn stores the connection and context in the server (thread-safe).
func (s *Server) SetConn(conn jsonrpc2.Conn, ctx context.Context) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.ideConn = conn
	s.ctx = ctx
}

// GetConn returns the stored connection and context (thread-safe).
func (s *Server) GetConn() (jsonrpc2.Conn, context.Context) {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return s.ideConn, s.ctx
}

// Handler returns a jsonrpc2 handler for this server.
func (s *Server) Handler() jsonrpc2.Handler {
	return jsonrpc2.ReplyHandler(s.handleRequest)
}

// handleRequest routes LSP requests to the appropriate handler.
func (s *Server) handleRequest(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.config.Logger.Debugf("received request: %s", req.Method())

	switch req.Method() {
	case "initialize":
		return s.handleInitialize(ctx, reply, req)
	case "initialized":
		return reply(ctx, nil, nil)
	case "shutdown":
		return s.handleShutdown(ctx, reply, req)
	case "exit":
		return s.handleExit(ctx, reply, req)
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, reply, req)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, reply, req)
	case "textDocument/didClose":
		return s.handleDidClose(ctx, reply, req)
	default:
		s.config.Logger.Debugf("method not implemented: %s", req.Method())
		return reply(ctx, nil, fmt.Errorf("method not implemented: %s", req.Method()))
	}
}

// handleInitialize processes the initialize request.
func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, fmt.Errorf("invalid initialize params: %w", err))
	}

	result := protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "amun-lsp",
			Version: "0.1.0",
		},
	}

	s.initialized = true
	s.config.Logger.Infof("server initialized")
	return reply(ctx, result, nil)
}

// handleShutdown processes the shutdown request.
func (s *Server) handleShutdown(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.config.Logger.Infof("shutdown requested")
	s.initialized = false
	return reply(ctx, nil, nil)
}

// handleExit processes the exit notification.
func (s *Server) handleExit(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.config.Logger.Infof("exit requested")
	return reply(ctx, nil, nil)
}

// handleDidOpen processes didOpen notifications: it records the
// document's content and runs an initial check pass.
func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	s.docs.open(params.TextDocument.URI, params.TextDocument.Text)
	s.checkAndPublish(ctx, params.TextDocument.URI, params.TextDocument.Version)
	return reply(ctx, nil, nil)
}

// handleDidChange processes didChange notifications. The server
// negotiates TextDocumentSyncKindFull, so every notification carries
// the document's complete new text.
func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	if len(params.ContentChanges) == 0 {
		return reply(ctx, nil, nil)
	}

	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.docs.open(params.TextDocument.URI, text)
	s.checkAndPublish(ctx, params.TextDocument.URI, params.TextDocument.Version)
	return reply(ctx, nil, nil)
}

// handleDidClose processes didClose notifications.
func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	s.docs.close(params.TextDocument.URI)
	return reply(ctx, nil, nil)
}

// checkAndPublish writes the document's current text to its backing
// path, runs compiler.CheckSourceCode over it, and publishes the
// resulting diagnostics. The parser reads sources from disk
// (pkg/parser.ParseCompilationUnit), so an open document's in-memory
// edits are written through to its file before checking — there is no
// in-memory overlay filesystem to hook into instead.
func (s *Server) checkAndPublish(ctx context.Context, uri protocol.DocumentURI, version int32) {
	path, err := s.docs.writeThrough(uri)
	if err != nil {
		s.config.Logger.Warnf("writing document through for check: %v", err)
		return
	}

	opts := compiler.Options{
		EmitWarnings:     true,
		WarningsAsErrors: s.config.WarningsAsErrors,
		Logger:           s.config.Logger.Desugar(),
	}
	diags, err := compiler.CheckSourceCode(path, opts)
	if err != nil {
		s.config.Logger.Debugf("check reported errors for %s: %v", path, err)
	}

	s.publishDiagnostics(ctx, uri, version, translateDiagnostics(diags, path))
}

// publishDiagnostics sends a textDocument/publishDiagnostics
// notification over the stored IDE connection, if one is set.
func (s *Server) publishDiagnostics(ctx context.Context, uri protocol.DocumentURI, version int32, diagnostics []protocol.Diagnostic) {
	conn, serverCtx := s.GetConn()
	if conn == nil {
		s.config.Logger.Warnf("no IDE connection available, cannot publish diagnostics")
		return
	}
	publishCtx := serverCtx
	if publishCtx == nil {
		publishCtx = ctx
	}

	params := protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
		Version:     version,
	}
	if err := conn.Notify(publishCtx, "textDocument/publishDiagnostics", params); err != nil {
		s.config.Logger.Warnf("publishing diagnostics: %v", err)
	}
}
