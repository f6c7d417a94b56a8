// Package signature resolves the parameter lists shown as call hints.
//
// Parameters come from three places: a Cache of lists already resolved for
// a remote function handle, a static table for built-in functions whose
// source is not introspectable, and the function's own source text as
// reported in its remote description.
package signature

import (
	"strings"
	"sync"

	"github.com/jonwraymond/inspectrepl/jsparse"
)

// Tokens is an ordered parameter list in display form: "a", "?b" for a
// parameter with a default, "...rest", "{x, y}" or "[x, y]" for patterns.
type Tokens []string

// Remaining returns the tokens not yet covered by supplied arguments.
func (t Tokens) Remaining(supplied int) Tokens {
	if supplied < 0 {
		supplied = 0
	}
	if supplied >= len(t) {
		return nil
	}
	return t[supplied:]
}

// String joins the tokens the way they are shown to the user.
func (t Tokens) String() string {
	return strings.Join(t, ", ")
}

// Cache maps remote function handles to resolved parameter lists.
//
// Entries are never evicted. Completion handles are released in object
// groups, after which their entries are never hit again. A handle reused by
// the target for an unrelated function after the original is gone yields a
// stale hit; the cache accepts that.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Keys: empty handles are never stored.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Tokens
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Tokens)}
}

// Get returns the tokens cached for handle.
func (c *Cache) Get(handle string) (Tokens, bool) {
	if handle == "" {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.entries[handle]
	return t, ok
}

// Put caches tokens for handle.
func (c *Cache) Put(handle string, tokens Tokens) {
	if handle == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[handle] = tokens
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// IsNative reports whether a function description is a built-in stub
// rather than source text.
func IsNative(description string) bool {
	return strings.Contains(description, "[native code]")
}

// FromDescription extracts parameter tokens from a function's source text.
// The text is tried first as a function, arrow or class expression, then as
// a method shorthand inside an object literal. Classes report their
// constructor's parameters.
func FromDescription(description string) (Tokens, bool) {
	if description == "" || IsNative(description) {
		return nil, false
	}
	for _, wrapped := range []string{
		"(" + description + "\n)",
		"({" + description + "\n})",
	} {
		expr, err := jsparse.ParseExpression(wrapped)
		if err != nil {
			continue
		}
		params, ok := jsparse.FunctionParams(expr)
		if !ok {
			continue
		}
		return Tokens(jsparse.ParamTokens(params)), true
	}
	return nil, false
}

// FunctionName returns the declared name in a function or class
// description, or "" for anonymous functions and arrows.
func FunctionName(description string) string {
	keyword := false
	for _, t := range jsparse.Tokenize(description) {
		switch {
		case t.Kind == jsparse.IdentToken && t.Text == "async" && !keyword:
		case t.Is("function") || t.Is("class"):
			keyword = true
		case t.Is("*") && keyword:
		case t.Kind == jsparse.IdentToken && keyword:
			return t.Text
		default:
			return ""
		}
	}
	return ""
}
