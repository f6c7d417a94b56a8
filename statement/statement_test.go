package statement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jonwraymond/inspectrepl/protocol"
	"github.com/jonwraymond/inspectrepl/protocol/protocoltest"
	"github.com/jonwraymond/inspectrepl/speculate"
)

type mockLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *mockLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func newEvaluator(client protocol.Client, publish bool) *Evaluator {
	return New(Config{
		Speculate: speculate.New(speculate.Config{Client: client}),
		Publish:   publish,
	})
}

func TestRun_Value(t *testing.T) {
	client := protocoltest.New()
	client.SetValue("1 + 1", protocoltest.Number(2))
	e := newEvaluator(client, false)

	res, err := e.Run(context.Background(), "1 + 1")
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if res.Status != Complete || res.Text != "2" || res.Threw {
		t.Errorf("result = %+v", res)
	}
	if v, ok := e.Session().LastValue(); !ok || v.Description != "2" {
		t.Errorf("LastValue = %+v, %v", v, ok)
	}
}

func TestRun_Exception(t *testing.T) {
	client := protocoltest.New()
	client.SetException("boom()", "Error: boom\n    at <anonymous>:1:1")
	e := newEvaluator(client, false)

	res, err := e.Run(context.Background(), "boom()")
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if !res.Threw || res.Status != Complete {
		t.Errorf("result = %+v", res)
	}
	if !strings.HasPrefix(res.Text, "Uncaught Error: boom") {
		t.Errorf("Text = %q", res.Text)
	}
	if _, ok := e.Session().LastValue(); ok {
		t.Error("last value must not be set by a throw")
	}
	if v, ok := e.Session().LastError(); !ok || v.ClassName != "Error" {
		t.Errorf("LastError = %+v, %v", v, ok)
	}
}

func TestRun_IncompleteInputNeedsMore(t *testing.T) {
	client := protocoltest.New()
	client.SetException("{", "SyntaxError: Unexpected end of input")
	client.SetValue("({})", protocoltest.Object("obj-1", "Object"))
	e := newEvaluator(client, false)

	res, err := e.Run(context.Background(), "{")
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if res.Status != NeedMore {
		t.Errorf("Run({) status = %v, want need-more", res.Status)
	}
	if e.Session().Completed() != 0 {
		t.Error("incomplete input must not touch the session")
	}

	res, err = e.Run(context.Background(), "{}")
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if res.Status != Complete || res.Threw {
		t.Errorf("Run({}) = %+v, want complete value", res)
	}
}

func TestRun_TopLevelAwaitBindingSurvives(t *testing.T) {
	client := protocoltest.New()
	globals := map[string]protocol.RemoteValue{}
	var requests []protocol.EvaluationRequest
	client.EvaluateFunc = func(_ context.Context, req protocol.EvaluationRequest) (protocol.EvaluationResult, error) {
		requests = append(requests, req)
		switch req.Expression {
		case "let x;\n(async () => {\nvoid (x = await f());\n})()":
			globals["x"] = protocoltest.Number(7)
			return protocol.EvaluationResult{Value: protocoltest.Undefined()}, nil
		case "x":
			return protocol.EvaluationResult{Value: globals["x"]}, nil
		}
		return protocol.EvaluationResult{Exception: protocoltest.Exception("ReferenceError: unexpected")}, nil
	}
	e := newEvaluator(client, false)

	if _, err := e.Run(context.Background(), "const x = await f();"); err != nil {
		t.Fatalf("Run error = %v", err)
	}
	res, err := e.Run(context.Background(), "x")
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if res.Text != "7" {
		t.Errorf("x = %q, want 7", res.Text)
	}
	if len(requests) != 2 || !requests[0].AwaitPromise || requests[1].AwaitPromise {
		t.Errorf("AwaitPromise flags wrong: %+v", requests)
	}
}

func TestRun_PublishesLastValue(t *testing.T) {
	client := protocoltest.New()
	client.SetValue("obj", protocoltest.Object("obj-9", "Thing"))
	e := newEvaluator(client, true)

	if _, err := e.Run(context.Background(), "obj"); err != nil {
		t.Fatalf("Run error = %v", err)
	}
	calls := client.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	want := []protocol.CallArgument{
		{Value: []byte(`"_"`)},
		{Handle: "obj-9"},
	}
	if diff := cmp.Diff(want, calls[0].Arguments); diff != "" {
		t.Errorf("arguments mismatch (-want +got):\n%s", diff)
	}
	if calls[0].FunctionText != publishFunction {
		t.Errorf("function text = %q", calls[0].FunctionText)
	}
}

func TestRun_PublishFailureIsLogged(t *testing.T) {
	client := protocoltest.New()
	client.SetException("oops()", "TypeError: oops")
	client.CallResult = protocol.EvaluationResult{Exception: protocoltest.Exception("TypeError: frozen")}
	logger := &mockLogger{}
	e := New(Config{
		Speculate: speculate.New(speculate.Config{Client: client}),
		Publish:   true,
		Logger:    logger,
	})

	res, err := e.Run(context.Background(), "oops()")
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if !res.Threw {
		t.Errorf("result = %+v", res)
	}
	if len(logger.warns) != 1 {
		t.Errorf("warnings = %v, want one", logger.warns)
	}
	if got := string(client.Calls()[0].Arguments[0].Value); got != `"_error"` {
		t.Errorf("published name = %s, want \"_error\"", got)
	}
}

func TestRun_TransportFailure(t *testing.T) {
	client := protocoltest.New()
	client.SetError("x", fmt.Errorf("%w: broken pipe", protocol.ErrTransport))
	e := newEvaluator(client, false)

	_, err := e.Run(context.Background(), "x")
	if !errors.Is(err, protocol.ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
	if e.Session().Completed() != 0 {
		t.Error("session must not change on transport failure")
	}
}

func TestRun_Blank(t *testing.T) {
	client := protocoltest.New()
	e := newEvaluator(client, false)
	res, err := e.Run(context.Background(), "  ")
	if err != nil || res.Status != Complete || res.Text != "" {
		t.Errorf("Run(blank) = %+v, %v", res, err)
	}
	if len(client.Evaluations()) != 0 {
		t.Error("blank line must not be evaluated")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		exception string
		src       string
		want      Verdict
	}{
		{"open brace", "SyntaxError: Unexpected end of input", "{", Recoverable},
		{"open function", "SyntaxError: Unexpected end of input", "function f() {", Recoverable},
		{"open template", "SyntaxError: Unterminated template literal", "`a ${b", Recoverable},
		{"open call", "SyntaxError: missing ) after argument list", "f(1,", Recoverable},
		{"malformed call", "SyntaxError: missing ) after argument list", "f(a b", Fatal},
		{"unexpected token", "SyntaxError: Unexpected token ')'", "f())", Fatal},
		{"unterminated string", "SyntaxError: Invalid or unexpected token", "'abc", Fatal},
		{"not a syntax error", "TypeError: x is not a function", "{", Fatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(protocoltest.Exception(tt.exception), tt.src); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
	if Classify(nil, "{") != Fatal {
		t.Error("nil details must be fatal")
	}
}
