package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jonwraymond/inspectrepl/complete"
	"github.com/jonwraymond/inspectrepl/protocol"
	"github.com/jonwraymond/inspectrepl/protocol/protocoltest"
	"github.com/jonwraymond/inspectrepl/render"
	"github.com/jonwraymond/inspectrepl/speculate"
	"github.com/jonwraymond/inspectrepl/statement"
)

// mockLogger records log calls by level.
type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	warns  []string
	errors []string
}

func (l *mockLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *mockLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *mockLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

// upperRenderer renders every value as its upper-cased description.
type upperRenderer struct{}

func (upperRenderer) Render(v protocol.RemoteValue) string {
	return strings.ToUpper(v.Description)
}

func newGlobals() *protocoltest.Client {
	client := protocoltest.New()
	client.SetValue("globalThis", protocoltest.Object("global-1", "global"))
	client.SetProperties("global-1",
		protocoltest.Prop("Math", true, protocoltest.Object("math-1", "Math")),
		protocoltest.Prop("process", true, protocoltest.Object("process-1", "process")),
	)
	return client
}

func TestConfig_ValidateRequired_Client(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for nil Client")
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
	if !strings.Contains(err.Error(), "Client") {
		t.Errorf("expected error to mention Client, got %q", err.Error())
	}
}

func TestConfig_ValidateLimits(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative timeout", Config{Client: protocoltest.New(), SpeculativeTimeout: -time.Second}},
		{"negative width", Config{Client: protocoltest.New(), PreviewWidth: -1}},
		{"negative release", Config{Client: protocoltest.New(), ReleaseEvery: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, ErrConfiguration) {
				t.Errorf("Validate = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Client: protocoltest.New()}
	cfg.applyDefaults()

	if cfg.SpeculativeTimeout != speculate.DefaultTimeout {
		t.Errorf("SpeculativeTimeout = %v", cfg.SpeculativeTimeout)
	}
	if cfg.PreviewWidth != render.DefaultWidth {
		t.Errorf("PreviewWidth = %d", cfg.PreviewWidth)
	}
	if cfg.ReleaseEvery != DefaultReleaseEvery {
		t.Errorf("ReleaseEvery = %d", cfg.ReleaseEvery)
	}
	if _, ok := cfg.Renderer.(render.Text); !ok {
		t.Errorf("Renderer = %T, want render.Text", cfg.Renderer)
	}
	if len(cfg.Natives) == 0 {
		t.Error("Natives not defaulted")
	}
	if cfg.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestConfig_PreviewerFallsBackToText(t *testing.T) {
	cfg := Config{Client: protocoltest.New(), Renderer: upperRenderer{}, PreviewWidth: 12}
	if got, ok := cfg.previewer().(render.Text); !ok || got.Width != 12 {
		t.Errorf("previewer = %#v, want render.Text{Width: 12}", cfg.previewer())
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("New = %v, want ErrConfiguration", err)
	}
}

func TestEngine_OnLine(t *testing.T) {
	client := protocoltest.New()
	client.SetValue("'hi'.toUpperCase()", protocoltest.String("HI"))
	e, err := New(Config{Client: client})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	res, err := e.OnLine(context.Background(), "'hi'.toUpperCase()")
	if err != nil {
		t.Fatalf("OnLine error = %v", err)
	}
	if res.Text != "'HI'" || res.Status != statement.Complete {
		t.Errorf("result = %+v", res)
	}
	if _, ok := e.Session().LastValue(); !ok {
		t.Error("last value not recorded")
	}
}

func TestEngine_OnLineUsesRenderer(t *testing.T) {
	client := protocoltest.New()
	client.SetValue("process", protocoltest.Object("process-1", "process"))
	e, err := New(Config{Client: client, Renderer: upperRenderer{}})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	res, err := e.OnLine(context.Background(), "process")
	if err != nil {
		t.Fatalf("OnLine error = %v", err)
	}
	if res.Text != "PROCESS" {
		t.Errorf("Text = %q, want PROCESS", res.Text)
	}
}

func TestEngine_OnLineContinuation(t *testing.T) {
	client := protocoltest.New()
	client.SetException("if (x) {", "SyntaxError: Unexpected end of input")
	e, err := New(Config{Client: client})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	res, err := e.OnLine(context.Background(), "if (x) {")
	if err != nil {
		t.Fatalf("OnLine error = %v", err)
	}
	if res.Status != statement.NeedMore {
		t.Errorf("status = %v, want need-more", res.Status)
	}
}

func TestEngine_OnLineTransportFailure(t *testing.T) {
	client := protocoltest.New()
	client.SetError("x", fmt.Errorf("%w: closed", protocol.ErrTransport))
	logger := &mockLogger{}
	e, err := New(Config{Client: client, Logger: logger})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	_, err = e.OnLine(context.Background(), "x")
	if !errors.Is(err, ErrEvaluation) || !errors.Is(err, protocol.ErrTransport) {
		t.Errorf("err = %v, want ErrEvaluation wrapping ErrTransport", err)
	}
	var lineErr *LineError
	if !errors.As(err, &lineErr) || lineErr.Line != "x" {
		t.Errorf("err = %#v, want *LineError for line x", err)
	}
	if len(logger.errors) != 1 {
		t.Errorf("error logs = %v, want one", logger.errors)
	}
}

func TestEngine_OnAutocomplete(t *testing.T) {
	e, err := New(Config{Client: newGlobals()})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	out, err := e.OnAutocomplete(context.Background(), "pro")
	if err != nil {
		t.Fatalf("OnAutocomplete error = %v", err)
	}
	want := complete.Outcome{Kind: complete.List, Items: []string{"cess"}}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_OnAutocompleteLastRequestWins(t *testing.T) {
	client := newGlobals()
	started := make(chan struct{})
	var once sync.Once
	client.EvaluateFunc = func(ctx context.Context, req protocol.EvaluationRequest) (protocol.EvaluationResult, error) {
		switch req.Expression {
		case "slow":
			once.Do(func() { close(started) })
			<-ctx.Done()
			return protocol.EvaluationResult{}, fmt.Errorf("%w: %v", protocol.ErrTimeout, ctx.Err())
		case "globalThis":
			return protocol.EvaluationResult{Value: protocoltest.Object("global-1", "global")}, nil
		}
		return protocol.EvaluationResult{Exception: protocoltest.Exception("ReferenceError: nope")}, nil
	}
	e, err := New(Config{Client: client})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	staleErr := make(chan error, 1)
	go func() {
		_, err := e.OnAutocomplete(context.Background(), "slow.")
		staleErr <- err
	}()
	<-started

	out, err := e.OnAutocomplete(context.Background(), "Ma")
	if err != nil {
		t.Fatalf("OnAutocomplete error = %v", err)
	}
	if diff := cmp.Diff([]string{"th"}, out.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	select {
	case err := <-staleErr:
		if !errors.Is(err, ErrSuperseded) {
			t.Errorf("stale request err = %v, want ErrSuperseded", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stale request was not cancelled")
	}
}

func TestEngine_OnAutocompleteReleasesRetiredGroups(t *testing.T) {
	client := newGlobals()
	e, err := New(Config{Client: client, ReleaseEvery: 2})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	for _, buffer := range []string{"pro", "Ma", "pro"} {
		if _, err := e.OnAutocomplete(context.Background(), buffer); err != nil {
			t.Fatalf("OnAutocomplete(%q) error = %v", buffer, err)
		}
	}

	var groups []string
	for _, r := range client.Evaluations() {
		if len(groups) == 0 || groups[len(groups)-1] != r.ObjectGroup {
			groups = append(groups, r.ObjectGroup)
		}
	}
	wantGroups := []string{speculate.ObjectGroup + "-0", speculate.ObjectGroup + "-1"}
	if diff := cmp.Diff(wantGroups, groups); diff != "" {
		t.Errorf("object groups mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{speculate.ObjectGroup + "-0"}, client.Released()); diff != "" {
		t.Errorf("released mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_OnAutocompleteKeepsGroupInUse(t *testing.T) {
	client := newGlobals()
	started := make(chan struct{})
	unblock := make(chan struct{})
	var once sync.Once
	client.EvaluateFunc = func(ctx context.Context, req protocol.EvaluationRequest) (protocol.EvaluationResult, error) {
		switch req.Expression {
		case "slow":
			once.Do(func() { close(started) })
			<-unblock
			return protocol.EvaluationResult{Exception: protocoltest.Exception("EvalError: side effect")}, nil
		case "globalThis":
			return protocol.EvaluationResult{Value: protocoltest.Object("global-1", "global")}, nil
		}
		return protocol.EvaluationResult{Exception: protocoltest.Exception("ReferenceError: nope")}, nil
	}
	e, err := New(Config{Client: client, ReleaseEvery: 1})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	staleErr := make(chan error, 1)
	go func() {
		_, err := e.OnAutocomplete(context.Background(), "slow.")
		staleErr <- err
	}()
	<-started

	if _, err := e.OnAutocomplete(context.Background(), "Ma"); err != nil {
		t.Fatalf("OnAutocomplete error = %v", err)
	}
	if diff := cmp.Diff([]string{speculate.ObjectGroup + "-1"}, client.Released()); diff != "" {
		t.Errorf("released while slow request runs (-want +got):\n%s", diff)
	}

	close(unblock)
	select {
	case err := <-staleErr:
		if !errors.Is(err, ErrSuperseded) {
			t.Errorf("stale request err = %v, want ErrSuperseded", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("slow request did not finish")
	}
	want := []string{speculate.ObjectGroup + "-1", speculate.ObjectGroup + "-0"}
	if diff := cmp.Diff(want, client.Released()); diff != "" {
		t.Errorf("released mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Accessors(t *testing.T) {
	client := protocoltest.New()
	e, err := New(Config{Client: client})
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if e.Client() != client {
		t.Error("Client accessor mismatch")
	}
	if e.Signatures() == nil || e.Session() == nil {
		t.Error("accessors returned nil")
	}
	if got := e.Render(protocoltest.Number(5)); got != "5" {
		t.Errorf("Render = %q", got)
	}
}

func TestLineError(t *testing.T) {
	inner := fmt.Errorf("%w: reset", protocol.ErrTransport)
	err := &LineError{Line: "x", Err: inner}
	if !errors.Is(err, ErrEvaluation) {
		t.Error("expected errors.Is to match ErrEvaluation")
	}
	if !errors.Is(err, protocol.ErrTransport) {
		t.Error("expected errors.Is to match wrapped ErrTransport")
	}
	if err.Error() != "evaluation error: transport failure: reset" {
		t.Errorf("Error = %q", err.Error())
	}
}

func TestErrSuperseded_Sentinel(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrSuperseded)
	if !errors.Is(err, ErrSuperseded) {
		t.Error("expected errors.Is to match ErrSuperseded")
	}
}
