package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonwraymond/inspectrepl/complete"
	"github.com/jonwraymond/inspectrepl/protocol"
	"github.com/jonwraymond/inspectrepl/render"
	"github.com/jonwraymond/inspectrepl/session"
	"github.com/jonwraymond/inspectrepl/signature"
	"github.com/jonwraymond/inspectrepl/speculate"
	"github.com/jonwraymond/inspectrepl/statement"
)

// LineResult is the outcome of a committed line.
type LineResult = statement.Result

// Engine evaluates lines and resolves completions against one target.
//
// Contract:
// - Concurrency: safe for concurrent use. Lines are evaluated one at a
// time; completions may overlap, and only the newest one reports a result.
// - Context: every method honors cancellation/deadlines.
// - Errors: exceptions thrown by the target are results, not errors.
// Transport failures are returned and are fatal for the target.
type Engine struct {
	cfg        Config
	spec       *speculate.Evaluator
	statements *statement.Evaluator
	resolver   *complete.Resolver
	session    *session.State

	lineMu sync.Mutex

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc

	// Completion handles live in numbered object groups. A group stops
	// taking requests after ReleaseEvery of them and is released once none
	// of its requests is still running.
	gen     uint64
	genUses int
	inUse   map[uint64]int
}

// New creates an Engine with the given configuration.
// Returns ErrConfiguration if any required field is missing.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	spec := speculate.New(speculate.Config{
		Client:    cfg.Client,
		ContextID: cfg.ContextID,
		Timeout:   cfg.SpeculativeTimeout,
	})
	state := session.New()
	return &Engine{
		cfg:     cfg,
		spec:    spec,
		session: state,
		inUse:   make(map[uint64]int),
		statements: statement.New(statement.Config{
			Speculate: spec,
			Session:   state,
			Renderer:  cfg.Renderer,
			Publish:   cfg.PublishLastValue,
			Logger:    cfg.Logger,
		}),
		resolver: complete.New(complete.Config{
			Speculate:  spec,
			Signatures: signature.NewCache(),
			Natives:    cfg.Natives,
			Previewer:  cfg.previewer(),
			Logger:     cfg.Logger,
		}),
	}, nil
}

// OnLine evaluates a committed line. When the result status is NeedMore the
// caller should append the next line to text and call OnLine again with the
// combined buffer.
func (e *Engine) OnLine(ctx context.Context, text string) (LineResult, error) {
	e.lineMu.Lock()
	defer e.lineMu.Unlock()

	res, err := e.statements.Run(ctx, text)
	if err != nil {
		if protocol.IsFatal(err) {
			e.cfg.Logger.Error("line evaluation failed", "error", err)
		}
		return LineResult{}, &LineError{Line: text, Err: err}
	}
	return res, nil
}

// OnAutocomplete resolves the completion for buffer. Starting a request
// cancels the one before it; a request overtaken this way returns
// ErrSuperseded. Handles the request creates in the target are released in
// batches of Config.ReleaseEvery requests.
func (e *Engine) OnAutocomplete(ctx context.Context, buffer string) (complete.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	e.seq++
	seq := e.seq
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = cancel
	gen := e.acquireGroup()
	e.mu.Unlock()
	defer e.releaseGroup(ctx, gen)

	out, err := e.resolver.Complete(speculate.WithObjectGroup(ctx, groupName(gen)), buffer)

	e.mu.Lock()
	stale := e.seq != seq
	if !stale {
		e.cancel = nil
	}
	e.mu.Unlock()

	if stale {
		return complete.Outcome{}, ErrSuperseded
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		e.cfg.Logger.Warn("completion failed", "error", err)
	}
	return out, err
}

// acquireGroup returns the object group generation for a new request.
// e.mu must be held.
func (e *Engine) acquireGroup() uint64 {
	gen := e.gen
	e.inUse[gen]++
	e.genUses++
	if e.genUses >= e.cfg.ReleaseEvery {
		e.gen++
		e.genUses = 0
	}
	return gen
}

// releaseGroup ends a request's use of generation gen and releases the group
// when it was the last user of a retired generation.
func (e *Engine) releaseGroup(ctx context.Context, gen uint64) {
	e.mu.Lock()
	e.inUse[gen]--
	idle := e.inUse[gen] == 0
	if idle {
		delete(e.inUse, gen)
	}
	retired := idle && gen != e.gen
	e.mu.Unlock()

	if !retired {
		return
	}
	if err := e.spec.Release(ctx, groupName(gen)); err != nil {
		e.cfg.Logger.Warn("releasing completion handles failed", "group", groupName(gen), "error", err)
	}
}

func groupName(gen uint64) string {
	return fmt.Sprintf("%s-%d", speculate.ObjectGroup, gen)
}

// Render renders v with the configured renderer.
func (e *Engine) Render(v protocol.RemoteValue) string {
	return e.cfg.Renderer.Render(v)
}

// Session returns the last value / last error record.
func (e *Engine) Session() *session.State { return e.session }

// Signatures returns the call-hint signature cache.
func (e *Engine) Signatures() *signature.Cache { return e.resolver.Signatures() }

// Client returns the protocol client the engine uses.
func (e *Engine) Client() protocol.Client { return e.cfg.Client }

var _ render.Renderer = (*Engine)(nil)
