package signature

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromDescription(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want Tokens
	}{
		{"function", "function f(a, b = 1, ...rest) { return a }", Tokens{"a", "?b", "...rest"}},
		{"arrow", "(x, {y, z}) => x + y", Tokens{"x", "{y, z}"}},
		{"async arrow", "async (url, opts = {}) => fetch(url, opts)", Tokens{"url", "?opts"}},
		{"method shorthand", "log(...args) { this.write(args) }", Tokens{"...args"}},
		{"async method", "async load(path) { return path }", Tokens{"path"}},
		{"class", "class Point { constructor(x, y) { this.x = x } }", Tokens{"x", "y"}},
		{"trailing comment", "function g(a) { return a } // done", Tokens{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromDescription(tt.desc)
			if !ok {
				t.Fatalf("FromDescription(%q) failed", tt.desc)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromDescription_Unresolvable(t *testing.T) {
	for _, desc := range []string{
		"",
		"function push() { [native code] }",
		"not a function at all (",
		"42",
	} {
		if got, ok := FromDescription(desc); ok {
			t.Errorf("FromDescription(%q) = %v, want failure", desc, got)
		}
	}
}

func TestIsNative(t *testing.T) {
	if !IsNative("function max() { [native code] }") {
		t.Error("expected native")
	}
	if IsNative("function f() {}") {
		t.Error("expected not native")
	}
}

func TestFunctionName(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"function Array() { [native code] }", "Array"},
		{"async function load(p) {}", "load"},
		{"function* gen() {}", "gen"},
		{"class Point {}", "Point"},
		{"function () {}", ""},
		{"async x => x", ""},
		{"(a) => a", ""},
	}
	for _, tt := range tests {
		if got := FunctionName(tt.desc); got != tt.want {
			t.Errorf("FunctionName(%q) = %q, want %q", tt.desc, got, tt.want)
		}
	}
}

func TestTokens_Remaining(t *testing.T) {
	tokens := Tokens{"a", "?b", "...rest"}
	if diff := cmp.Diff(Tokens{"?b", "...rest"}, tokens.Remaining(1)); diff != "" {
		t.Errorf("Remaining(1) mismatch (-want +got):\n%s", diff)
	}
	if got := tokens.Remaining(3); got != nil {
		t.Errorf("Remaining(3) = %v, want nil", got)
	}
	if got := tokens.Remaining(-1).String(); got != "a, ?b, ...rest" {
		t.Errorf("Remaining(-1) = %q", got)
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("h1"); ok {
		t.Fatal("expected miss on empty cache")
	}
	c.Put("h1", Tokens{"x"})
	c.Put("", Tokens{"ignored"})
	got, ok := c.Get("h1")
	if !ok {
		t.Fatal("expected hit")
	}
	if diff := cmp.Diff(Tokens{"x"}, got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h := string(rune('a' + i))
			c.Put(h, Tokens{h})
			c.Get(h)
		}(i)
	}
	wg.Wait()
	if c.Len() != 16 {
		t.Errorf("Len = %d, want 16", c.Len())
	}
}

func TestNativeTable_Lookup(t *testing.T) {
	table := Builtins()

	got, ok := table.Lookup("log", "console")
	if !ok {
		t.Fatal("console.log missing")
	}
	if diff := cmp.Diff(Tokens{"...data"}, got); diff != "" {
		t.Errorf("console.log mismatch (-want +got):\n%s", diff)
	}

	got, ok = table.Lookup("bind", "myFunc", "Function")
	if !ok || got.String() != "thisArg, ...args" {
		t.Errorf("fallback owner lookup = %v, %v", got, ok)
	}

	if _, ok := table.Lookup("parseInt", "", GlobalOwner); !ok {
		t.Error("globalThis.parseInt missing")
	}
	if _, ok := table.Lookup("nope", "Math"); ok {
		t.Error("unexpected hit")
	}
}
