package complete

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jonwraymond/inspectrepl/protocol"
	"github.com/jonwraymond/inspectrepl/protocol/protocoltest"
	"github.com/jonwraymond/inspectrepl/signature"
	"github.com/jonwraymond/inspectrepl/speculate"
)

// newTarget scripts a target with a small global object.
func newTarget() *protocoltest.Client {
	client := protocoltest.New()
	client.LexicalNames = []string{"counter", "Math"}
	client.SetValue("globalThis", protocoltest.Object("global-1", "global"))
	client.SetProperties("global-1",
		protocoltest.Prop("Math", true, protocoltest.Object("math-1", "Math")),
		protocoltest.Prop("console", true, protocoltest.Object("console-1", "console")),
		protocoltest.Prop("JSON", true, protocoltest.Object("json-1", "JSON")),
		protocoltest.SymbolProp("Symbol(Symbol.toStringTag)", true),
	)

	client.SetValue("Math", protocoltest.Object("math-1", "Math"))
	client.SetProperties("math-1",
		protocoltest.Prop("max", true, protocoltest.Function("fn-max", "function max() { [native code] }")),
		protocoltest.Prop("min", true, protocoltest.Function("fn-min", "function min() { [native code] }")),
		protocoltest.Prop("PI", true, protocoltest.Number(3.14)),
		protocoltest.SymbolProp("mSymbol", true),
		protocoltest.Prop("mixin", false, protocoltest.Function("fn-mixin", "function mixin(a) {}")),
		protocoltest.Prop("toString", false, protocoltest.Function("fn-ts", "function toString() { [native code] }")),
	)

	client.SetValue("console", protocoltest.Object("console-1", "console"))
	client.SetValue("console.log", protocoltest.Function("fn-log", "function log() { [native code] }"))
	client.SetValue("Math.max", protocoltest.Function("fn-max", "function max() { [native code] }"))
	return client
}

func newResolver(client protocol.Client) *Resolver {
	return New(Config{Speculate: speculate.New(speculate.Config{Client: client})})
}

func TestComplete_EmptyBufferListsGlobals(t *testing.T) {
	r := newResolver(newTarget())

	out, err := r.Complete(context.Background(), "")
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}
	want := Outcome{Kind: List, Items: []string{"counter", "Math", "console", "JSON"}}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_IdentifierPrefix(t *testing.T) {
	r := newResolver(newTarget())

	out, err := r.Complete(context.Background(), "Ma")
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}
	want := Outcome{Kind: List, Items: []string{"th"}}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_ExactIdentifierPreviews(t *testing.T) {
	r := newResolver(newTarget())

	out, err := r.Complete(context.Background(), "Math")
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}
	if out.Kind != InlinePreview || out.Preview != "Math" {
		t.Errorf("outcome = %+v, want preview of Math", out)
	}
}

func TestComplete_MemberOwnBeforeInherited(t *testing.T) {
	client := newTarget()
	r := newResolver(client)

	out, err := r.Complete(context.Background(), "Math.m")
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}
	want := Outcome{Kind: List, Items: []string{"ax", "in", "ixin"}}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"math-1"}, client.PropertyCalls()); diff != "" {
		t.Errorf("property calls mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_MemberSuffixesKeepCandidatePrefix(t *testing.T) {
	r := newResolver(newTarget())
	all, err := r.Complete(context.Background(), "Math.")
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}

	prefix := "mi"
	out, err := r.Complete(context.Background(), "Math."+prefix)
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}
	for _, suffix := range out.Items {
		found := false
		for _, name := range all.Items {
			if strings.HasPrefix(name, prefix) && name[len(prefix):] == suffix {
				found = true
			}
		}
		if !found {
			t.Errorf("suffix %q does not come from a candidate starting with %q", suffix, prefix)
		}
	}
}

func TestComplete_ExactMemberPreviews(t *testing.T) {
	r := newResolver(newTarget())

	out, err := r.Complete(context.Background(), "Math.max")
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}
	if out.Kind != InlinePreview || out.Preview != "[Function: max]" {
		t.Errorf("outcome = %+v", out)
	}
}

func TestComplete_BracketAccess(t *testing.T) {
	client := newTarget()
	client.SetValue("arr", protocol.RemoteValue{Handle: "arr-1", Type: protocol.TypeObject, Subtype: "array", ClassName: "Array"})
	client.SetProperties("arr-1",
		protocoltest.Prop("0", true, protocoltest.Number(1)),
		protocoltest.Prop("1", true, protocoltest.Number(2)),
		protocoltest.Prop("length", true, protocoltest.Number(2)),
		protocoltest.Prop("it's", true, protocoltest.Number(0)),
	)
	r := newResolver(client)

	tests := []struct {
		buffer string
		want   []string
	}{
		{"arr[", []string{"0]", "1]", "'length']", `'it\'s']`}},
		{"arr[1", nil},
		{"arr['", []string{"length']", `it\'s']`}},
		{"arr['le", []string{"ngth']"}},
		{`arr["le`, []string{`ngth"]`}},
	}
	for _, tt := range tests {
		t.Run(tt.buffer, func(t *testing.T) {
			out, err := r.Complete(context.Background(), tt.buffer)
			if err != nil {
				t.Fatalf("Complete error = %v", err)
			}
			if len(tt.want) == 0 {
				if out.Kind == List {
					t.Errorf("outcome = %+v, want no list", out)
				}
				return
			}
			if diff := cmp.Diff(tt.want, out.Items); diff != "" {
				t.Errorf("items mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComplete_BracketIndexKeysAreBare(t *testing.T) {
	client := newTarget()
	client.SetValue("list", protocoltest.Object("list-1", "Array"))
	client.SetProperties("list-1",
		protocoltest.Prop("10", true, protocoltest.Number(1)),
		protocoltest.Prop("11", true, protocoltest.Number(2)),
	)
	r := newResolver(client)

	out, err := r.Complete(context.Background(), "list[1")
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}
	if diff := cmp.Diff([]string{"0]", "1]"}, out.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	for _, item := range out.Items {
		if strings.ContainsAny(item, `'"`) {
			t.Errorf("index completion %q contains a quote", item)
		}
	}
}

func TestComplete_PrimitiveReceiverIsBoxed(t *testing.T) {
	client := newTarget()
	client.SetValue("'abc'", protocoltest.String("abc"))
	client.SetValue("Object('abc'\n)", protocoltest.Object("str-1", "String"))
	client.SetProperties("str-1",
		protocoltest.Prop("0", true, protocoltest.String("a")),
		protocoltest.Prop("length", true, protocoltest.Number(3)),
		protocoltest.Prop("localeCompare", false, protocoltest.Function("fn-lc", "function localeCompare() { [native code] }")),
	)
	r := newResolver(client)

	out, err := r.Complete(context.Background(), "'abc'.l")
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}
	want := Outcome{Kind: List, Items: []string{"ength", "ocaleCompare"}}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_NativeCallHint(t *testing.T) {
	client := newTarget()
	r := newResolver(client)

	out, err := r.Complete(context.Background(), "console.log(")
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}
	if out.Kind != InlinePreview || out.Preview != "...data" {
		t.Errorf("outcome = %+v, want hint ...data", out)
	}
	if tokens, ok := r.Signatures().Get("fn-log"); !ok || tokens.String() != "...data" {
		t.Errorf("cache entry = %v, %v", tokens, ok)
	}
}

func TestComplete_SourceCallHint(t *testing.T) {
	client := newTarget()
	client.SetValue("f", protocoltest.Function("fn-f", "function f(a, b = 1, ...rest) {}"))
	r := newResolver(client)

	tests := []struct {
		buffer string
		want   Outcome
	}{
		{"f(", Outcome{Kind: InlinePreview, Preview: "a, ?b, ...rest"}},
		{"f(1", Outcome{Kind: InlinePreview, Preview: ", ?b, ...rest"}},
		{"f(1,", Outcome{Kind: InlinePreview, Preview: " ?b, ...rest"}},
		{"f(1, ", Outcome{Kind: InlinePreview, Preview: "?b, ...rest"}},
		{"f(1, 2, 3, ", Outcome{}},
	}
	for _, tt := range tests {
		t.Run(tt.buffer, func(t *testing.T) {
			out, err := r.Complete(context.Background(), tt.buffer)
			if err != nil {
				t.Fatalf("Complete error = %v", err)
			}
			if diff := cmp.Diff(tt.want, out); diff != "" {
				t.Errorf("outcome mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if n := r.Signatures().Len(); n != 1 {
		t.Errorf("cache entries = %d, want 1", n)
	}
}

func TestComplete_LastArgument(t *testing.T) {
	client := newTarget()
	client.SetValue("f", protocoltest.Function("fn-f", "function f(a, b = 1, ...rest) {}"))
	r := newResolver(client)

	tests := []struct {
		buffer string
		want   Outcome
	}{
		{"console.log(Math.m", Outcome{Kind: List, Items: []string{"ax", "in", "ixin"}}},
		{"f(Ma", Outcome{Kind: List, Items: []string{"th"}}},
		{"f(1, Ma", Outcome{Kind: List, Items: []string{"th"}}},
		{"f(zz", Outcome{Kind: InlinePreview, Preview: ", ?b, ...rest"}},
		{"f(Math", Outcome{Kind: InlinePreview, Preview: ", ?b, ...rest"}},
		{"f(1, Math.zz", Outcome{Kind: InlinePreview, Preview: ", ...rest"}},
	}
	for _, tt := range tests {
		t.Run(tt.buffer, func(t *testing.T) {
			out, err := r.Complete(context.Background(), tt.buffer)
			if err != nil {
				t.Fatalf("Complete error = %v", err)
			}
			if diff := cmp.Diff(tt.want, out); diff != "" {
				t.Errorf("outcome mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComplete_CachedSignatureSkipsResolution(t *testing.T) {
	client := newTarget()
	client.SetValue("g", protocoltest.Function("fn-g", "function g(x) {}"))
	cache := signature.NewCache()
	cache.Put("fn-g", signature.Tokens{"cached"})
	r := New(Config{
		Speculate:  speculate.New(speculate.Config{Client: client}),
		Signatures: cache,
	})

	out, err := r.Complete(context.Background(), "g(")
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}
	if out.Preview != "cached" {
		t.Errorf("preview = %q, want cached tokens", out.Preview)
	}
}

func TestComplete_FallbackPreview(t *testing.T) {
	client := newTarget()
	client.SetValue("1 + 2", protocoltest.Number(3))
	r := newResolver(client)

	out, err := r.Complete(context.Background(), "1 + 2")
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}
	if diff := cmp.Diff(Outcome{Kind: InlinePreview, Preview: "3"}, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
}

func TestComplete_FailedLookupsGiveNone(t *testing.T) {
	r := newResolver(newTarget())

	for _, buffer := range []string{"missing.", "missing(", "missing + 1"} {
		out, err := r.Complete(context.Background(), buffer)
		if err != nil {
			t.Fatalf("Complete(%q) error = %v", buffer, err)
		}
		if out.Kind != None {
			t.Errorf("Complete(%q) = %+v, want none", buffer, out)
		}
	}
}

func TestComplete_TransportFailureIsReturned(t *testing.T) {
	client := newTarget()
	client.SetError("Math", fmt.Errorf("%w: connection reset", protocol.ErrTransport))
	r := newResolver(client)

	_, err := r.Complete(context.Background(), "Math.m")
	if !errors.Is(err, protocol.ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}

func TestFilter(t *testing.T) {
	got := Filter([]string{"max", "min", "PI", "max", "m"}, "m")
	if diff := cmp.Diff([]string{"ax", "in", ""}, got); diff != "" {
		t.Errorf("Filter mismatch (-want +got):\n%s", diff)
	}
	if got := Filter([]string{"a"}, "z"); got != nil {
		t.Errorf("Filter = %v, want nil", got)
	}
}

func TestArgumentHint(t *testing.T) {
	tokens := signature.Tokens{"a", "?b"}
	tests := []struct {
		argCount int
		buffer   string
		want     string
		ok       bool
	}{
		{0, "f(", "a, ?b", true},
		{1, "f(x", ", ?b", true},
		{1, "f(x,", " ?b", true},
		{1, "f(x,\t", "?b", true},
		{2, "f(x, y", "", false},
	}
	for _, tt := range tests {
		got, ok := ArgumentHint(tokens, tt.argCount, tt.buffer)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ArgumentHint(%d, %q) = %q, %v; want %q, %v", tt.argCount, tt.buffer, got, ok, tt.want, tt.ok)
		}
	}
}

func TestOutcome_Constructors(t *testing.T) {
	if ListOf(nil).Kind != None {
		t.Error("empty list should be none")
	}
	if PreviewOf("  ").Kind != None {
		t.Error("blank preview should be none")
	}
	if got := InlinePreview.String(); got != "preview" {
		t.Errorf("String = %q", got)
	}
}
