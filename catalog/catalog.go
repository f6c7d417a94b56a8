// Package catalog describes shell operations as tools.
//
// A Catalog pairs each tool definition with its handler, registers the
// definition in a tooldiscovery index so it can be searched, and keeps its
// long-form documentation in a tooldoc store. The CLI reads the catalog for
// its help command; the MCP server exposes the same tools to clients.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jonwraymond/tooldiscovery/index"
	"github.com/jonwraymond/tooldiscovery/search"
	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Namespace is the namespace every catalog tool is registered under.
const Namespace = "inspectrepl"

// Common errors for catalog operations.
var (
	ErrToolNotFound = errors.New("tool not found")
	ErrToolExists   = errors.New("tool already registered")
	ErrInvalidArgs  = errors.New("invalid tool arguments")
)

// HandlerFunc is the function signature for tool handlers.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

// ToolDef defines a tool with its handler and documentation.
type ToolDef struct {
	Name        string
	Title       string
	Description string
	InputSchema map[string]any
	Annotations *mcp.ToolAnnotations
	Tags        []string
	Doc         tooldoc.DocEntry
	Handler     HandlerFunc
}

// Catalog holds tool definitions and their search index.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: lookups of unknown names return ErrToolNotFound.
type Catalog struct {
	mu    sync.RWMutex
	defs  map[string]ToolDef
	index index.Index
	docs  *tooldoc.InMemoryStore
}

// New creates an empty catalog backed by a BM25 index.
func New() *Catalog {
	idx := index.NewInMemoryIndex(index.IndexOptions{
		Searcher: search.NewBM25Searcher(search.BM25Config{}),
	})
	return &Catalog{
		defs:  make(map[string]ToolDef),
		index: idx,
		docs:  tooldoc.NewInMemoryStore(tooldoc.StoreOptions{Index: idx}),
	}
}

// ID returns the qualified tool ID for name.
func ID(name string) string {
	return Namespace + ":" + name
}

// Register adds def to the catalog.
func (c *Catalog) Register(def ToolDef) error {
	if def.Name == "" {
		return fmt.Errorf("%w: tool name is required", ErrInvalidArgs)
	}
	if def.Handler == nil {
		return fmt.Errorf("%w: tool %s has no handler", ErrInvalidArgs, def.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.defs[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolExists, def.Name)
	}
	if err := c.index.RegisterTool(toolOf(def), model.NewLocalBackend(def.Name)); err != nil {
		return fmt.Errorf("index %s: %w", def.Name, err)
	}
	if err := c.docs.RegisterDoc(ID(def.Name), def.Doc); err != nil {
		return fmt.Errorf("document %s: %w", def.Name, err)
	}
	c.defs[def.Name] = def
	return nil
}

func toolOf(def ToolDef) model.Tool {
	schema := def.InputSchema
	if schema == nil {
		schema = map[string]any{"type": "object"}
	}
	return model.Tool{
		Tool: mcp.Tool{
			Name:        def.Name,
			Title:       def.Title,
			Description: def.Description,
			InputSchema: schema,
			Annotations: def.Annotations,
		},
		Namespace: Namespace,
		Tags:      model.NormalizeTags(def.Tags),
	}
}

// Tools returns the registered tools sorted by name.
func (c *Catalog) Tools() []model.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Tool, 0, len(c.defs))
	for _, def := range c.defs {
		out = append(out, toolOf(def))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Execute invokes the handler registered under name.
func (c *Catalog) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	c.mu.RLock()
	def, ok := c.defs[name]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return def.Handler(ctx, args)
}

// Search returns up to limit tools matching query.
func (c *Catalog) Search(query string, limit int) ([]index.Summary, error) {
	return c.index.Search(query, limit)
}

// Describe returns the documentation for the tool registered under name.
func (c *Catalog) Describe(name string, level tooldoc.DetailLevel) (tooldoc.ToolDoc, error) {
	c.mu.RLock()
	_, ok := c.defs[name]
	c.mu.RUnlock()
	if !ok {
		return tooldoc.ToolDoc{}, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return c.docs.DescribeTool(ID(name), level)
}

// stringArg extracts a required string argument.
func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidArgs, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidArgs, key, raw)
	}
	return s, nil
}
