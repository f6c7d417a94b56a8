package speculate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jonwraymond/inspectrepl/protocol"
	"github.com/jonwraymond/inspectrepl/protocol/protocoltest"
	"github.com/jonwraymond/inspectrepl/render"
)

func TestNew_Defaults(t *testing.T) {
	e := New(Config{Client: protocoltest.New()})
	if e.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", e.timeout, DefaultTimeout)
	}
	if e.overhead != DefaultTimeoutOverhead {
		t.Errorf("overhead = %v, want %v", e.overhead, DefaultTimeoutOverhead)
	}
}

func TestBestEffort_RequestFlags(t *testing.T) {
	client := protocoltest.New()
	client.SetValue("Math", protocoltest.Object("obj-1", "Math"))
	e := New(Config{Client: client, ContextID: 3, Timeout: 200 * time.Millisecond})

	v, ok, err := e.BestEffort(context.Background(), "Math")
	if err != nil || !ok {
		t.Fatalf("BestEffort = %v, %v", ok, err)
	}
	if v.Handle != "obj-1" {
		t.Errorf("handle = %q", v.Handle)
	}

	want := protocol.EvaluationRequest{
		Expression:        "Math",
		GeneratePreview:   true,
		ThrowOnSideEffect: true,
		Timeout:           200 * time.Millisecond,
		ContextID:         3,
		ObjectGroup:       ObjectGroup,
		Silent:            true,
	}
	if diff := cmp.Diff([]protocol.EvaluationRequest{want}, client.Evaluations()); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestBestEffort_ExceptionIsNoData(t *testing.T) {
	client := protocoltest.New()
	client.SetException("boom()", "EvalError: Possible side-effect in debug-evaluate")
	e := New(Config{Client: client})

	_, ok, err := e.BestEffort(context.Background(), "boom()")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a thrown evaluation")
	}
}

func TestBestEffort_TimeoutIsNoData(t *testing.T) {
	client := protocoltest.New()
	client.SetError("slow()", fmt.Errorf("%w: Runtime.evaluate", protocol.ErrTimeout))
	e := New(Config{Client: client})

	_, ok, err := e.BestEffort(context.Background(), "slow()")
	if err != nil || ok {
		t.Errorf("BestEffort = %v, %v; want false, nil", ok, err)
	}
}

func TestBestEffort_LocalDeadline(t *testing.T) {
	client := protocoltest.New()
	client.EvaluateFunc = func(ctx context.Context, _ protocol.EvaluationRequest) (protocol.EvaluationResult, error) {
		<-ctx.Done()
		return protocol.EvaluationResult{}, fmt.Errorf("%w: deadline", protocol.ErrTimeout)
	}
	e := New(Config{Client: client, Timeout: 10 * time.Millisecond, TimeoutOverhead: 10 * time.Millisecond})

	start := time.Now()
	_, ok, err := e.BestEffort(context.Background(), "hang()")
	if err != nil || ok {
		t.Errorf("BestEffort = %v, %v; want false, nil", ok, err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("local deadline not applied, took %v", elapsed)
	}
}

func TestBestEffort_TransportIsFatal(t *testing.T) {
	client := protocoltest.New()
	client.SetError("x", fmt.Errorf("%w: connection reset", protocol.ErrTransport))
	e := New(Config{Client: client})

	_, _, err := e.BestEffort(context.Background(), "x")
	if !errors.Is(err, protocol.ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}

func TestBestEffort_CanceledContext(t *testing.T) {
	e := New(Config{Client: protocoltest.New()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := e.BestEffort(ctx, "x")
	if ok || !errors.Is(err, context.Canceled) {
		t.Errorf("BestEffort = %v, %v; want false, context.Canceled", ok, err)
	}
}

func TestBestEffort_EmptySource(t *testing.T) {
	client := protocoltest.New()
	e := New(Config{Client: client})
	if _, ok, err := e.BestEffort(context.Background(), "   "); ok || err != nil {
		t.Errorf("BestEffort(blank) = %v, %v", ok, err)
	}
	if n := len(client.Evaluations()); n != 0 {
		t.Errorf("evaluations = %d, want 0", n)
	}
}

func TestBoxed(t *testing.T) {
	client := protocoltest.New()
	client.SetValue("Object('abc'\n)", protocoltest.Object("str-1", "String"))
	e := New(Config{Client: client})

	v, ok, err := e.Boxed(context.Background(), "'abc'")
	if err != nil || !ok {
		t.Fatalf("Boxed = %v, %v", ok, err)
	}
	if v.ClassName != "String" {
		t.Errorf("className = %q", v.ClassName)
	}
}

func TestDirect_RequestFlags(t *testing.T) {
	client := protocoltest.New()
	client.SetValue("({a: 1})", protocoltest.Object("obj-2", "Object"))
	e := New(Config{Client: client})

	res, err := e.Direct(context.Background(), "{a: 1}", true)
	if err != nil {
		t.Fatalf("Direct error = %v", err)
	}
	if res.Threw() || res.Value.Handle != "obj-2" {
		t.Errorf("result = %+v", res)
	}

	want := protocol.EvaluationRequest{
		Expression:      "({a: 1})",
		GeneratePreview: true,
		AwaitPromise:    true,
		ReplMode:        true,
	}
	if diff := cmp.Diff([]protocol.EvaluationRequest{want}, client.Evaluations()); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestDisambiguate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{a: 1}", "({a: 1})"},
		{"  {a: 1, b}  ", "({a: 1, b})"},
		{"{}", "({})"},
		{"{ let x = 1; x }", "{ let x = 1; x }"},
		{"{a: 1}; {b: 2}", "{a: 1}; {b: 2}"},
		{"x = {a: 1}", "x = {a: 1}"},
		{"{", "{"},
	}
	for _, tt := range tests {
		if got := Disambiguate(tt.in); got != tt.want {
			t.Errorf("Disambiguate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBestEffort_ObjectGroupFromContext(t *testing.T) {
	client := protocoltest.New()
	client.SetValue("Math", protocoltest.Object("obj-1", "Math"))
	e := New(Config{Client: client})

	ctx := WithObjectGroup(context.Background(), "completion-4")
	if _, ok, err := e.BestEffort(ctx, "Math"); err != nil || !ok {
		t.Fatalf("BestEffort = %v, %v", ok, err)
	}
	if _, err := e.Direct(ctx, "Math", false); err != nil {
		t.Fatalf("Direct error = %v", err)
	}

	var groups []string
	for _, r := range client.Evaluations() {
		groups = append(groups, r.ObjectGroup)
	}
	if diff := cmp.Diff([]string{"completion-4", ""}, groups); diff != "" {
		t.Errorf("object groups mismatch (-want +got):\n%s", diff)
	}
}

func TestObjectGroupFrom_Default(t *testing.T) {
	if got := ObjectGroupFrom(context.Background()); got != ObjectGroup {
		t.Errorf("ObjectGroupFrom = %q, want %q", got, ObjectGroup)
	}
	if got := ObjectGroupFrom(WithObjectGroup(context.Background(), "")); got != ObjectGroup {
		t.Errorf("ObjectGroupFrom(empty) = %q, want %q", got, ObjectGroup)
	}
}

func TestRelease_IgnoresCancellation(t *testing.T) {
	client := protocoltest.New()
	e := New(Config{Client: client})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Release(ctx, "completion-1"); err != nil {
		t.Fatalf("Release error = %v", err)
	}
	if diff := cmp.Diff([]string{"completion-1"}, client.Released()); diff != "" {
		t.Errorf("released mismatch (-want +got):\n%s", diff)
	}
}

// A pure expression must render the same whether it was evaluated for a
// preview or committed as a line.
func TestBestEffortMatchesDirect(t *testing.T) {
	values := map[string]protocol.RemoteValue{
		"1 + 2": protocoltest.Number(3),
		"({a: 1})": {
			Handle:      "obj-1",
			Type:        protocol.TypeObject,
			ClassName:   "Object",
			Description: "Object",
			Preview: &protocol.ObjectPreview{
				Type:       protocol.TypeObject,
				Properties: []protocol.PropertyPreview{{Name: "a", Type: protocol.TypeNumber, Value: "1"}},
			},
		},
		"'a' + 'b'": protocoltest.String("ab"),
	}
	client := protocoltest.New()
	client.EvaluateFunc = func(_ context.Context, req protocol.EvaluationRequest) (protocol.EvaluationResult, error) {
		v, ok := values[req.Expression]
		if !ok {
			return protocol.EvaluationResult{Exception: protocoltest.Exception("SyntaxError: " + req.Expression)}, nil
		}
		if !req.GeneratePreview {
			v.Preview = nil
		}
		return protocol.EvaluationResult{Value: v}, nil
	}
	e := New(Config{Client: client})
	r := render.Text{}

	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2", "3"},
		{"{a: 1}", "{ a: 1 }"},
		{"'a' + 'b'", "'ab'"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v, ok, err := e.BestEffort(context.Background(), tt.src)
			if err != nil || !ok {
				t.Fatalf("BestEffort = %v, %v", ok, err)
			}
			res, err := e.Direct(context.Background(), tt.src, false)
			if err != nil || res.Threw() {
				t.Fatalf("Direct = %+v, %v", res, err)
			}
			speculative, committed := r.Render(v), r.Render(res.Value)
			if speculative != committed {
				t.Errorf("best-effort %q != direct %q", speculative, committed)
			}
			if committed != tt.want {
				t.Errorf("Render = %q, want %q", committed, tt.want)
			}
		})
	}
}
