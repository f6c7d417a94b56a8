// Package mcpserve exposes catalog tools over the Model Context Protocol.
package mcpserve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/inspectrepl/catalog"
)

// ErrConfiguration is returned when the server config is invalid.
var ErrConfiguration = errors.New("configuration error")

// Default implementation identity.
const (
	DefaultName    = "inspectrepl"
	DefaultVersion = "dev"
)

// Logger is an optional interface for server diagnostics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Config configures a Server.
type Config struct {
	// Catalog provides the tools to serve.
	// Required.
	Catalog *catalog.Catalog

	// Name and Version identify the server to clients.
	Name    string
	Version string

	// Logger is an optional logger.
	Logger Logger
}

// Validate checks that required fields are set.
func (c *Config) Validate() error {
	if c.Catalog == nil {
		return fmt.Errorf("%w: missing required fields: Catalog", ErrConfiguration)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
}

// Server serves a catalog as MCP tools.
type Server struct {
	cfg    Config
	server *mcp.Server
}

// New creates a Server and registers every catalog tool with it.
func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	s := &Server{
		cfg:    cfg,
		server: mcp.NewServer(&mcp.Implementation{Name: cfg.Name, Version: cfg.Version}, nil),
	}
	for _, tool := range cfg.Catalog.Tools() {
		t := tool.Tool
		s.server.AddTool(&t, s.handler(t.Name))
	}
	return s, nil
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server { return s.server }

// Run serves a single session over t until the client disconnects or ctx is
// done.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	s.info("mcp server starting", "name", s.cfg.Name)
	err := s.server.Run(ctx, t)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// handler adapts the catalog tool name to an MCP tool handler. Tool failures
// are reported to the client as error results, not protocol errors.
func (s *Server) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]any{}
		if raw := req.Params.Arguments; len(raw) > 0 && strings.TrimSpace(string(raw)) != "null" {
			if err := json.Unmarshal(raw, &args); err != nil {
				return errorResult(fmt.Errorf("%w: %v", catalog.ErrInvalidArgs, err)), nil
			}
		}

		out, err := s.cfg.Catalog.Execute(ctx, name, args)
		if err != nil {
			s.warn("tool call failed", "tool", name, "error", err)
			return errorResult(err), nil
		}
		text, err := json.Marshal(out)
		if err != nil {
			return errorResult(err), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
		}, nil
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}

func (s *Server) info(msg string, args ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Info(msg, args...)
	}
}

func (s *Server) warn(msg string, args ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Warn(msg, args...)
	}
}
