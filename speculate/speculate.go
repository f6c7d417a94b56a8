// Package speculate evaluates source text in the target on behalf of the
// shell.
//
// Two modes exist. Best-effort evaluation backs completion and inline
// previews: side effects are refused by the target, execution time is
// bounded, and any exception or timeout simply means "no data". Direct
// evaluation backs statement execution: no suppression, no bound, and the
// outcome is reported to the user.
package speculate

import (
	"context"
	"strings"
	"time"

	"github.com/jonwraymond/inspectrepl/jsparse"
	"github.com/jonwraymond/inspectrepl/protocol"
)

// Defaults for best-effort evaluation.
const (
	DefaultTimeout         = 500 * time.Millisecond
	DefaultTimeoutOverhead = 250 * time.Millisecond
)

// ObjectGroup is the object group best-effort handles are placed in when the
// context names none. Properties and call results derived from those handles
// inherit it.
const ObjectGroup = "inspectrepl-speculative"

type groupKey struct{}

// WithObjectGroup returns a context whose best-effort evaluations place their
// handles in group, so they can be released together.
func WithObjectGroup(ctx context.Context, group string) context.Context {
	return context.WithValue(ctx, groupKey{}, group)
}

// ObjectGroupFrom returns the object group carried by ctx, or ObjectGroup.
func ObjectGroupFrom(ctx context.Context) string {
	if g, ok := ctx.Value(groupKey{}).(string); ok && g != "" {
		return g
	}
	return ObjectGroup
}

// Config configures an Evaluator.
type Config struct {
	// Client issues the evaluations.
	// Required.
	Client protocol.Client

	// ContextID selects the execution context. Zero means the client's
	// default.
	ContextID int

	// Timeout bounds best-effort evaluation inside the target.
	// Defaults to DefaultTimeout.
	Timeout time.Duration

	// TimeoutOverhead is added to Timeout for the local deadline to account
	// for the round trip. Defaults to DefaultTimeoutOverhead.
	TimeoutOverhead time.Duration
}

// Evaluator runs best-effort and direct evaluations.
type Evaluator struct {
	client    protocol.Client
	contextID int
	timeout   time.Duration
	overhead  time.Duration
}

// New creates an Evaluator. cfg.Client must be set.
func New(cfg Config) *Evaluator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	overhead := cfg.TimeoutOverhead
	if overhead <= 0 {
		overhead = DefaultTimeoutOverhead
	}
	return &Evaluator{
		client:    cfg.Client,
		contextID: cfg.ContextID,
		timeout:   timeout,
		overhead:  overhead,
	}
}

// Client returns the underlying protocol client.
func (e *Evaluator) Client() protocol.Client { return e.client }

// ContextID returns the execution context evaluations run in.
func (e *Evaluator) ContextID() int { return e.contextID }

// Timeout returns the best-effort time bound.
func (e *Evaluator) Timeout() time.Duration { return e.timeout }

// BestEffort evaluates src with side effects suppressed and a bounded
// timeout. ok is false when the evaluation threw, timed out or was refused.
// The error is non-nil only for transport failures and for cancellation of
// ctx itself.
func (e *Evaluator) BestEffort(ctx context.Context, src string) (v protocol.RemoteValue, ok bool, err error) {
	if strings.TrimSpace(src) == "" {
		return protocol.RemoteValue{}, false, nil
	}

	evalCtx, cancel := context.WithTimeout(ctx, e.timeout+e.overhead)
	defer cancel()

	res, err := e.client.Evaluate(evalCtx, protocol.EvaluationRequest{
		Expression:        Disambiguate(src),
		GeneratePreview:   true,
		ThrowOnSideEffect: true,
		Timeout:           e.timeout,
		ContextID:         e.contextID,
		ObjectGroup:       ObjectGroupFrom(ctx),
		Silent:            true,
	})
	if err != nil {
		if protocol.IsFatal(err) {
			return protocol.RemoteValue{}, false, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return protocol.RemoteValue{}, false, ctxErr
		}
		return protocol.RemoteValue{}, false, nil
	}
	if res.Threw() {
		return protocol.RemoteValue{}, false, nil
	}
	return res.Value, true, nil
}

// Boxed evaluates src best-effort wrapped in Object(), so primitive results
// become wrapper objects whose properties can be listed.
func (e *Evaluator) Boxed(ctx context.Context, src string) (protocol.RemoteValue, bool, error) {
	return e.BestEffort(ctx, "Object("+src+"\n)")
}

// Direct evaluates src without side-effect suppression or time bound.
// awaitPromise resolves a promise result before returning. REPL mode is on
// so a line may redeclare a top-level let or const.
func (e *Evaluator) Direct(ctx context.Context, src string, awaitPromise bool) (protocol.EvaluationResult, error) {
	return e.client.Evaluate(ctx, protocol.EvaluationRequest{
		Expression:      Disambiguate(src),
		GeneratePreview: true,
		AwaitPromise:    awaitPromise,
		ContextID:       e.contextID,
		ReplMode:        true,
	})
}

// Release frees every handle best-effort evaluations placed in group. It is
// bounded by the best-effort timeout and ignores cancellation of ctx, so a
// finished or superseded request can still clean up after itself.
func (e *Evaluator) Release(ctx context.Context, group string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout+e.overhead)
	defer cancel()
	return e.client.ReleaseObjectGroup(ctx, group)
}

// Disambiguate resolves the object-literal versus block ambiguity. Text
// that starts with '{', ends with '}' and parses as a parenthesized
// expression is returned wrapped in parentheses; anything else is returned
// unchanged.
func Disambiguate(src string) string {
	trimmed := strings.TrimSpace(src)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return src
	}
	wrapped := "(" + trimmed + ")"
	if _, err := jsparse.ParseExpression(wrapped); err != nil {
		return src
	}
	return wrapped
}
