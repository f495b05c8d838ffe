package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/tablesession"
	"github.com/aretw0/tablesession/internal/logging"
	"github.com/aretw0/tablesession/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SessionResult aligns with the HTTP SessionResponse so both adapters answer alike.
type SessionResult struct {
	SessionID string `json:"session_id" jsonschema_description:"The session identifier"`
	Data      string `json:"data" jsonschema_description:"The current session payload, empty when the session has no rows"`
}

// GCResult reports a garbage collection run.
type GCResult struct {
	Deleted int64  `json:"deleted" jsonschema_description:"Number of removed rows"`
	MaxAge  string `json:"max_age" jsonschema_description:"Retention window that was applied"`
}

// StoreFactory returns a fresh session handler for one tool call.
type StoreFactory func() (ports.Handler, error)

// Server exposes a session store as an MCP Server.
type Server struct {
	newStore  StoreFactory
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for tool failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(factory StoreFactory, opts ...Option) *Server {
	s := &Server{
		newStore:  factory,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("tablesession-mcp", strings.TrimSpace(tablesession.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over Server-Sent Events until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: read_session
	s.mcpServer.AddTool(mcp.NewTool("read_session",
		mcp.WithDescription("Read the current payload of a session. Returns an empty payload for unknown sessions."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleRead))

	// TOOL: write_session
	s.mcpServer.AddTool(mcp.NewTool("write_session",
		mcp.WithDescription("Store a new payload for a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("data", mcp.Required(), mcp.Description("New session payload")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleWrite))

	// TOOL: destroy_session
	s.mcpServer.AddTool(mcp.NewTool("destroy_session",
		mcp.WithDescription("Remove every row of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleDestroy))

	// TOOL: collect_garbage
	s.mcpServer.AddTool(mcp.NewTool("collect_garbage",
		mcp.WithDescription("Remove rows of every session created max_age or longer ago."),
		mcp.WithString("max_age", mcp.Required(), mcp.Description("Retention window as a Go duration, e.g. 24m")),
		mcp.WithOutputSchema[GCResult](),
	), mcp.NewStructuredToolHandler(s.handleGC))
}

func (s *Server) handleRead(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResult, error) {
	sessionID, err := sessionArg(args)
	if err != nil {
		return SessionResult{}, err
	}
	store, err := s.store()
	if err != nil {
		return SessionResult{}, err
	}

	data, err := store.Read(ctx, sessionID)
	if err != nil {
		s.logger.Error("MCP Read failed", "session_id", sessionID, "err", err)
		return SessionResult{}, fmt.Errorf("read failed: %w", err)
	}
	return SessionResult{SessionID: sessionID, Data: data}, nil
}

func (s *Server) handleWrite(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResult, error) {
	sessionID, err := sessionArg(args)
	if err != nil {
		return SessionResult{}, err
	}
	data, ok := args["data"].(string)
	if !ok {
		return SessionResult{}, errors.New("data is required")
	}
	store, err := s.store()
	if err != nil {
		return SessionResult{}, err
	}

	if err := store.Write(ctx, sessionID, data); err != nil {
		s.logger.Error("MCP Write failed", "session_id", sessionID, "err", err)
		return SessionResult{}, fmt.Errorf("write failed: %w", err)
	}
	return SessionResult{SessionID: sessionID, Data: data}, nil
}

func (s *Server) handleDestroy(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SessionResult, error) {
	sessionID, err := sessionArg(args)
	if err != nil {
		return SessionResult{}, err
	}
	store, err := s.store()
	if err != nil {
		return SessionResult{}, err
	}

	if err := store.Destroy(ctx, sessionID); err != nil {
		s.logger.Error("MCP Destroy failed", "session_id", sessionID, "err", err)
		return SessionResult{}, fmt.Errorf("destroy failed: %w", err)
	}
	return SessionResult{SessionID: sessionID}, nil
}

func (s *Server) handleGC(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GCResult, error) {
	raw, _ := args["max_age"].(string)
	maxAge, err := time.ParseDuration(raw)
	if err != nil || maxAge < 0 {
		return GCResult{}, fmt.Errorf("invalid max_age %q: expected a non-negative duration such as 24m", raw)
	}
	store, err := s.store()
	if err != nil {
		return GCResult{}, err
	}

	n, err := store.GC(ctx, maxAge)
	if err != nil {
		s.logger.Error("MCP GC failed", "err", err)
		return GCResult{}, fmt.Errorf("gc failed: %w", err)
	}
	return GCResult{Deleted: n, MaxAge: maxAge.String()}, nil
}

func (s *Server) store() (ports.Handler, error) {
	store, err := s.newStore()
	if err != nil {
		s.logger.Error("Failed to create session store", "err", err)
		return nil, fmt.Errorf("session store unavailable: %w", err)
	}
	return store, nil
}

func sessionArg(args map[string]interface{}) (string, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", errors.New("session_id is required")
	}
	return sessionID, nil
}
