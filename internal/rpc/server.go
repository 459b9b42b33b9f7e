package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"go.lsp.dev/jsonrpc2"

	"github.com/robert-at-pretension-io/verilog-scan/internal/config"
	"github.com/robert-at-pretension-io/verilog-scan/internal/extractor"
	"github.com/robert-at-pretension-io/verilog-scan/internal/indexer"
	"github.com/robert-at-pretension-io/verilog-scan/internal/observability"
	"github.com/robert-at-pretension-io/verilog-scan/internal/validator"
)

// Server answers JSON-RPC 2.0 requests for summaries and fact tables
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	check  *validator.Validator
	memo   *summaryMemo

	mu       sync.Mutex
	shutdown bool
	exit     chan struct{}
	exitOnce sync.Once
}

// NewServer creates a server. A nil cfg means DefaultConfig.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	check, err := validator.New()
	if err != nil {
		return nil, fmt.Errorf("load summary contract: %w", err)
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		check:  check,
		memo:   newSummaryMemo(),
		exit:   make(chan struct{}),
	}, nil
}

// Serve handles requests on the given reader/writer until the client sends
// "exit", the stream ends, or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	conn.Go(ctx, s.handler)

	select {
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	case <-s.exit:
		_ = conn.Close()
		return nil
	case <-conn.Done():
		return conn.Err()
	}
}

func (s *Server) handler(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.logger.Debug("rpc request", "method", req.Method())
	observability.RPCRequestsTotal.WithLabelValues(req.Method()).Inc()

	if req.Method() == MethodExit {
		s.exitOnce.Do(func() { close(s.exit) })
		return nil
	}

	s.mu.Lock()
	down := s.shutdown
	s.mu.Unlock()
	if down {
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.InvalidRequest,
			Message: "server is shutting down",
		})
	}

	switch req.Method() {
	case MethodAnalyze:
		return s.handleAnalyze(ctx, reply, req)
	case MethodIndex:
		return s.handleIndex(ctx, reply, req)
	case MethodShutdown:
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		return reply(ctx, nil, nil)
	default:
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.MethodNotFound,
			Message: "method not supported: " + req.Method(),
		})
	}
}

func (s *Server) handleAnalyze(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params AnalyzeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, invalidParams(err.Error()))
	}
	if params.Path == "" {
		return reply(ctx, nil, invalidParams("path is required"))
	}

	mode := extractor.ListLast
	split := s.cfg.SplitDeclarationLists()
	if params.SplitLists != nil {
		split = *params.SplitLists
	}
	if split {
		mode = extractor.ListSplit
	}

	ext := extractor.NewWithOptions(extractor.Options{ListMode: mode, Logger: s.logger})
	info, statErr := os.Stat(params.Path)
	if statErr == nil {
		if summary, ok := s.memo.get(params.Path, ext.Mode(), info); ok {
			return reply(ctx, summary, nil)
		}
	}

	summary, err := ext.Extract(params.Path)
	if err != nil {
		return reply(ctx, nil, internalError(err))
	}
	if err := s.check.Validate(summary); err != nil {
		return reply(ctx, nil, internalError(err))
	}
	if statErr == nil {
		s.memo.put(params.Path, ext.Mode(), info, summary)
	}
	return reply(ctx, summary, nil)
}

func (s *Server) handleIndex(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params IndexParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, invalidParams(err.Error()))
	}
	if params.Root == "" {
		return reply(ctx, nil, invalidParams("root is required"))
	}

	idx := indexer.New(s.cfg)
	idx.Logger = s.logger
	result, err := idx.Run(ctx, params.Root)
	if err != nil {
		return reply(ctx, nil, internalError(err))
	}
	return reply(ctx, IndexResult{
		RunID:       result.RunID,
		Tables:      result.Tables,
		Stats:       result.Stats,
		ParseErrors: result.ParseErrors,
	}, nil)
}

func invalidParams(msg string) *jsonrpc2.Error {
	return &jsonrpc2.Error{Code: jsonrpc2.InvalidParams, Message: msg}
}

func internalError(err error) *jsonrpc2.Error {
	return &jsonrpc2.Error{Code: jsonrpc2.InternalError, Message: err.Error()}
}

// readWriteCloser wraps reader and writer into a ReadWriteCloser
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	if c, ok := rwc.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
