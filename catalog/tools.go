package catalog

import (
	"context"

	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/inspectrepl/complete"
	"github.com/jonwraymond/inspectrepl/protocol"
	"github.com/jonwraymond/inspectrepl/session"
	"github.com/jonwraymond/inspectrepl/statement"
)

// Engine is the subset of the shell engine the catalog tools call.
type Engine interface {
	OnLine(ctx context.Context, text string) (statement.Result, error)
	OnAutocomplete(ctx context.Context, buffer string) (complete.Outcome, error)
	Session() *session.State
	Render(v protocol.RemoteValue) string
}

// EvaluateResult is returned by the evaluate tool.
type EvaluateResult struct {
	Status string `json:"status"`
	Text   string `json:"text,omitempty"`
	Threw  bool   `json:"threw,omitempty"`
}

// CompleteResult is returned by the complete tool.
type CompleteResult struct {
	Kind    string   `json:"kind"`
	Items   []string `json:"items,omitempty"`
	Preview string   `json:"preview,omitempty"`
}

// LastResult is returned by the last tool.
type LastResult struct {
	Value     string `json:"value,omitempty"`
	HasValue  bool   `json:"hasValue"`
	Error     string `json:"error,omitempty"`
	HasError  bool   `json:"hasError"`
	Completed int    `json:"completed"`
}

// ForEngine returns a catalog with the evaluate, complete and last tools
// bound to e.
func ForEngine(e Engine) (*Catalog, error) {
	c := New()
	for _, def := range engineTools(e) {
		if err := c.Register(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func engineTools(e Engine) []ToolDef {
	return []ToolDef{
		{
			Name:        "evaluate",
			Title:       "Evaluate",
			Description: "Evaluates JavaScript in the attached process and returns the rendered result",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"code": map[string]any{
						"type":        "string",
						"description": "Source text; top-level await is allowed",
					},
				},
				"required": []any{"code"},
			},
			Tags: []string{"javascript", "evaluate", "repl"},
			Doc: tooldoc.DocEntry{
				Summary: "Runs a line of JavaScript with side effects in the target",
				Notes: "Declarations persist between calls. A status of need-more means the " +
					"code is incomplete; resend it with the rest appended.",
				Examples: []tooldoc.ToolExample{
					{Title: "Arithmetic", Args: map[string]any{"code": "6 * 7"}},
					{Title: "Await a promise", Args: map[string]any{"code": "const r = await fetch(url)"}},
				},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				code, err := stringArg(args, "code")
				if err != nil {
					return nil, err
				}
				res, err := e.OnLine(ctx, code)
				if err != nil {
					return nil, err
				}
				return EvaluateResult{Status: res.Status.String(), Text: res.Text, Threw: res.Threw}, nil
			},
		},
		{
			Name:        "complete",
			Title:       "Complete",
			Description: "Suggests completions or a preview for a partial JavaScript buffer without side effects",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"buffer": map[string]any{
						"type":        "string",
						"description": "Input text up to the cursor",
					},
				},
				"required": []any{"buffer"},
			},
			Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
			Tags:        []string{"javascript", "completion", "preview"},
			Doc: tooldoc.DocEntry{
				Summary: "Lists completion suffixes, an argument hint, or a value preview",
				Notes: "Items are suffixes to append to the buffer. Evaluation is side-effect " +
					"free and time-limited; anything that would mutate state yields no outcome.",
				Examples: []tooldoc.ToolExample{
					{Title: "Member names", Args: map[string]any{"buffer": "Math.m"}},
					{Title: "Argument hint", Args: map[string]any{"buffer": "console.log("}},
				},
			},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				buffer, err := stringArg(args, "buffer")
				if err != nil {
					return nil, err
				}
				out, err := e.OnAutocomplete(ctx, buffer)
				if err != nil {
					return nil, err
				}
				return CompleteResult{Kind: out.Kind.String(), Items: out.Items, Preview: out.Preview}, nil
			},
		},
		{
			Name:        "last",
			Title:       "Last result",
			Description: "Returns the most recent evaluation result and thrown error",
			InputSchema: map[string]any{"type": "object"},
			Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
			Tags:        []string{"repl", "session"},
			Doc: tooldoc.DocEntry{
				Summary: "Shows the values bound to _ and _error",
			},
			Handler: func(_ context.Context, _ map[string]any) (any, error) {
				s := e.Session()
				res := LastResult{Completed: s.Completed()}
				if v, ok := s.LastValue(); ok {
					res.Value, res.HasValue = e.Render(v), true
				}
				if v, ok := s.LastError(); ok {
					res.Error, res.HasError = e.Render(v), true
				}
				return res, nil
			},
		},
	}
}
