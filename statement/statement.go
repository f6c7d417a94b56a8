// Package statement runs submitted shell lines to completion.
//
// Run evaluates a line directly in the target, rewriting top-level await
// first. A line that fails only because it is incomplete reports NeedMore so
// the shell can ask for a continuation line; any other outcome is recorded
// in the session and rendered.
package statement

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonwraymond/inspectrepl/jsparse"
	"github.com/jonwraymond/inspectrepl/protocol"
	"github.com/jonwraymond/inspectrepl/render"
	"github.com/jonwraymond/inspectrepl/rewrite"
	"github.com/jonwraymond/inspectrepl/session"
	"github.com/jonwraymond/inspectrepl/speculate"
)

// Names under which results are published to the target.
const (
	LastValueName = "_"
	LastErrorName = "_error"
)

// publishFunction defines a global without going through setters the
// target may have installed on the name.
const publishFunction = `function (name, value) {
  Object.defineProperty(globalThis, name, { value, writable: true, configurable: true, enumerable: false });
}`

// Logger is an optional interface for statement diagnostics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Warn(msg string, args ...any)
}

// Status tells the shell what to do after a line.
type Status int

const (
	// Complete means the line ran and Result.Text is ready to show.
	Complete Status = iota
	// NeedMore means the line is incomplete; the shell should append the
	// next line and submit the combined buffer.
	NeedMore
)

func (s Status) String() string {
	if s == NeedMore {
		return "need-more"
	}
	return "complete"
}

// Result is the outcome of running one line.
type Result struct {
	Status Status

	// Text is the rendered value, or the rendered exception prefixed with
	// "Uncaught ".
	Text string

	// Value is the resulting or thrown remote value.
	Value protocol.RemoteValue

	// Threw reports whether Value was thrown.
	Threw bool
}

// Config configures an Evaluator.
type Config struct {
	// Speculate runs the direct evaluations.
	// Required.
	Speculate *speculate.Evaluator

	// Session receives the last value and last error.
	// Defaults to a fresh session.
	Session *session.State

	// Renderer renders results.
	// Defaults to render.Text{}.
	Renderer render.Renderer

	// Publish exposes results to the target as _ and _error.
	Publish bool

	// Logger is an optional logger.
	Logger Logger
}

// Evaluator runs lines and maintains the session.
type Evaluator struct {
	spec     *speculate.Evaluator
	session  *session.State
	renderer render.Renderer
	publish  bool
	logger   Logger
}

// New creates an Evaluator. cfg.Speculate must be set.
func New(cfg Config) *Evaluator {
	e := &Evaluator{
		spec:     cfg.Speculate,
		session:  cfg.Session,
		renderer: cfg.Renderer,
		publish:  cfg.Publish,
		logger:   cfg.Logger,
	}
	if e.session == nil {
		e.session = session.New()
	}
	if e.renderer == nil {
		e.renderer = render.Text{}
	}
	return e
}

// Session returns the session the evaluator writes to.
func (e *Evaluator) Session() *session.State { return e.session }

// Run evaluates line, which may span several physical lines. Exceptions
// thrown by the target are part of the Result; the error is non-nil only
// when the evaluation itself could not be carried out.
func (e *Evaluator) Run(ctx context.Context, line string) (Result, error) {
	if strings.TrimSpace(line) == "" {
		return Result{Status: Complete}, nil
	}

	src, rewritten := rewrite.TopLevelAwait(line)
	res, err := e.spec.Direct(ctx, src, rewritten)
	if err != nil {
		return Result{}, err
	}

	if res.Threw() {
		if Classify(res.Exception, line) == Recoverable {
			return Result{Status: NeedMore}, nil
		}
		thrown := res.Exception.Exception
		e.session.SetError(thrown)
		if err := e.publishValue(ctx, LastErrorName, thrown); err != nil {
			return Result{}, err
		}
		return Result{
			Status: Complete,
			Text:   "Uncaught " + e.renderException(res.Exception),
			Value:  thrown,
			Threw:  true,
		}, nil
	}

	e.session.SetValue(res.Value)
	if err := e.publishValue(ctx, LastValueName, res.Value); err != nil {
		return Result{}, err
	}
	return Result{Status: Complete, Text: e.renderer.Render(res.Value), Value: res.Value}, nil
}

func (e *Evaluator) renderException(details *protocol.ExceptionDetails) string {
	if details.Exception.Type == "" {
		return strings.TrimPrefix(details.Message(), "Uncaught ")
	}
	return e.renderer.Render(details.Exception)
}

// publishValue defines name on the target's global object. Failures other
// than transport failures are logged and ignored.
func (e *Evaluator) publishValue(ctx context.Context, name string, v protocol.RemoteValue) error {
	if !e.publish {
		return nil
	}
	rawName, err := json.Marshal(name)
	if err != nil {
		return err
	}
	res, err := e.spec.Client().CallFunctionOn(ctx, protocol.CallRequest{
		FunctionText: publishFunction,
		Arguments: []protocol.CallArgument{
			{Value: rawName},
			protocol.ArgumentFor(v),
		},
		ContextID: e.spec.ContextID(),
		Silent:    true,
	})
	switch {
	case err != nil && protocol.IsFatal(err):
		return err
	case err != nil:
		e.warn("publishing result failed", "name", name, "error", err)
	case res.Threw():
		e.warn("publishing result threw", "name", name, "exception", res.Exception.Message())
	}
	return nil
}

func (e *Evaluator) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}

// Verdict classifies a thrown evaluation.
type Verdict int

const (
	// Fatal means the exception is reported to the user.
	Fatal Verdict = iota
	// Recoverable means the input merely ended too early.
	Recoverable
)

func (v Verdict) String() string {
	if v == Recoverable {
		return "recoverable"
	}
	return "fatal"
}

// incompleteMessages are the target's syntax errors for input that stopped
// short.
var incompleteMessages = []string{
	"Unexpected end of input",
	"Unterminated template literal",
	"missing ) after argument list",
}

// Classify decides whether an exception thrown for src means src is only
// incomplete. The exception must be a syntax error, and either carry one of
// the target's end-of-input messages or describe text the local parser also
// finds truncated.
func Classify(details *protocol.ExceptionDetails, src string) Verdict {
	if details == nil {
		return Fatal
	}
	msg := details.Message()
	if details.Exception.ClassName != "SyntaxError" && !strings.Contains(msg, "SyntaxError") {
		return Fatal
	}
	for _, m := range incompleteMessages {
		if strings.Contains(msg, m) {
			return confirm(src)
		}
	}
	if jsparse.Incomplete(src) {
		return Recoverable
	}
	return Fatal
}

// confirm guards the message match against lines that are complete but
// malformed, which the target may report with the same wording.
func confirm(src string) Verdict {
	res := jsparse.ParseLoose(src)
	if res.OK() || res.Incomplete {
		return Recoverable
	}
	return Fatal
}
