// Package complete turns a partially typed buffer into completion
// suggestions.
//
// The Resolver classifies the expression the buffer ends with and queries the
// target through best-effort evaluation, in priority order:
//
//  1. An empty buffer lists every global name.
//  2. A bare identifier lists matching global names, or previews the value
//     when the identifier already names a global exactly.
//  3. A member access lists the receiver's property names, own before
//     inherited, formatted for dot or bracket access.
//  4. An open call hints the parameters not yet supplied.
//  5. Anything else, and any step above that could not complete, previews
//     the value of the whole buffer.
//
// Every list is filtered by the text already typed, with that text stripped
// from each suggestion so the caller can append it to the buffer.
package complete

import (
	"context"
	"strconv"
	"strings"

	"github.com/jonwraymond/inspectrepl/jsparse"
	"github.com/jonwraymond/inspectrepl/protocol"
	"github.com/jonwraymond/inspectrepl/render"
	"github.com/jonwraymond/inspectrepl/signature"
	"github.com/jonwraymond/inspectrepl/speculate"
)

// Logger is an optional interface for completion diagnostics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Warn(msg string, args ...any)
}

// Config configures a Resolver.
type Config struct {
	// Speculate runs the best-effort evaluations.
	// Required.
	Speculate *speculate.Evaluator

	// Signatures caches resolved parameter lists by function handle.
	// Defaults to a fresh cache.
	Signatures *signature.Cache

	// Natives holds parameters of built-in functions.
	// Defaults to signature.Builtins().
	Natives signature.NativeTable

	// Previewer renders inline previews.
	// Defaults to render.Text{}.
	Previewer render.Previewer

	// Logger is an optional logger for degraded lookups.
	Logger Logger
}

// Resolver produces completion outcomes for buffers.
type Resolver struct {
	spec      *speculate.Evaluator
	client    protocol.Client
	cache     *signature.Cache
	natives   signature.NativeTable
	previewer render.Previewer
	logger    Logger
}

// New creates a Resolver. cfg.Speculate must be set.
func New(cfg Config) *Resolver {
	r := &Resolver{
		spec:      cfg.Speculate,
		client:    cfg.Speculate.Client(),
		cache:     cfg.Signatures,
		natives:   cfg.Natives,
		previewer: cfg.Previewer,
		logger:    cfg.Logger,
	}
	if r.cache == nil {
		r.cache = signature.NewCache()
	}
	if r.natives == nil {
		r.natives = signature.Builtins()
	}
	if r.previewer == nil {
		r.previewer = render.Text{}
	}
	return r
}

// Signatures returns the signature cache used for call hints.
func (r *Resolver) Signatures() *signature.Cache { return r.cache }

// Complete resolves the suggestion for buffer, with the cursor at its end.
// Failed lookups degrade to a preview or to None; the returned error is
// non-nil only for transport failures and cancellation of ctx.
func (r *Resolver) Complete(ctx context.Context, buffer string) (Outcome, error) {
	if strings.TrimSpace(buffer) == "" {
		names, err := r.globalNames(ctx)
		if err != nil {
			return Outcome{}, err
		}
		return ListOf(Filter(names, "")), nil
	}

	expr := jsparse.Classify(buffer)
	var (
		out  Outcome
		done bool
		err  error
	)
	switch expr.Kind {
	case jsparse.KindIdentifier:
		out, done, err = r.identifier(ctx, buffer, expr)
	case jsparse.KindMember:
		out, done, err = r.member(ctx, buffer, expr)
	case jsparse.KindCall:
		out, done, err = r.call(ctx, buffer, expr)
	}
	if err == nil && out.Kind == None && expr.Call != nil {
		// Nothing to complete in the last argument; hint the open call.
		out, done, err = r.call(ctx, buffer, *expr.Call)
	}
	if err != nil || done {
		return out, err
	}
	return r.preview(ctx, buffer)
}

// identifier completes a bare identifier against the global names.
func (r *Resolver) identifier(ctx context.Context, buffer string, expr jsparse.Expression) (Outcome, bool, error) {
	names, err := r.globalNames(ctx)
	if err != nil {
		return Outcome{}, false, err
	}
	for _, name := range names {
		if name == expr.Name {
			out, err := r.preview(ctx, buffer)
			return out, true, err
		}
	}
	return ListOf(Filter(names, expr.Name)), true, nil
}

// globalNames lists the lexical bindings followed by the own property names
// of the global object, without duplicates.
func (r *Resolver) globalNames(ctx context.Context) ([]string, error) {
	lexical, err := r.client.GlobalLexicalScopeNames(ctx, r.spec.ContextID())
	if err != nil {
		if err := r.degrade(ctx, "global lexical scope names", err); err != nil {
			return nil, err
		}
	}
	names := append([]string(nil), lexical...)

	global, ok, err := r.spec.BestEffort(ctx, "globalThis")
	if err != nil {
		return nil, err
	}
	if ok && global.HasHandle() {
		props, err := r.client.GetProperties(ctx, global.Handle, protocol.PropertiesOptions{OwnOnly: true})
		if err != nil {
			if err := r.degrade(ctx, "global properties", err); err != nil {
				return nil, err
			}
		}
		for _, p := range props {
			if !p.Symbol {
				names = append(names, p.Name)
			}
		}
	}
	return dedupe(names), nil
}

// member completes a dotted or bracketed property access.
func (r *Resolver) member(ctx context.Context, buffer string, expr jsparse.Expression) (Outcome, bool, error) {
	receiver, ok, err := r.receiver(ctx, expr.Receiver.Text(buffer))
	if err != nil || !ok || !receiver.HasHandle() {
		return Outcome{}, false, err
	}

	props, err := r.client.GetProperties(ctx, receiver.Handle, protocol.PropertiesOptions{})
	if err != nil {
		return Outcome{}, false, r.degrade(ctx, "properties", err)
	}
	names := propertyNames(props)

	if !expr.Computed {
		for _, name := range names {
			if name == expr.Name {
				out, err := r.preview(ctx, buffer)
				return out, true, err
			}
		}
		var idents []string
		for _, name := range names {
			if jsparse.IsIdentifierName(name) {
				idents = append(idents, name)
			}
		}
		return ListOf(Filter(idents, expr.Name)), true, nil
	}

	typed := expr.Property.Text(buffer)
	quote, key := splitQuote(typed)
	for _, name := range names {
		if name == key && (quote != 0 || isIndex(name)) {
			out, err := r.preview(ctx, buffer)
			return out, true, err
		}
	}
	return ListOf(Filter(bracketCandidates(names, quote), typed)), true, nil
}

// receiver evaluates the object of a member access, boxing primitives so
// their wrapper's properties can be listed.
func (r *Resolver) receiver(ctx context.Context, src string) (protocol.RemoteValue, bool, error) {
	v, ok, err := r.spec.BestEffort(ctx, src)
	if err != nil || !ok {
		return v, ok, err
	}
	switch v.Type {
	case protocol.TypeObject, protocol.TypeFunction, protocol.TypeUndefined:
		return v, true, nil
	}
	return r.spec.Boxed(ctx, src)
}

// call hints the remaining parameters of an open call.
func (r *Resolver) call(ctx context.Context, buffer string, expr jsparse.Expression) (Outcome, bool, error) {
	callee, ok, err := r.spec.BestEffort(ctx, expr.Callee.Text(buffer))
	if err != nil || !ok || callee.Type != protocol.TypeFunction {
		return Outcome{}, false, err
	}

	tokens, ok := r.cache.Get(callee.Handle)
	if !ok {
		tokens, ok, err = r.resolve(ctx, buffer, expr, callee)
		if err != nil || !ok {
			return Outcome{}, false, err
		}
		r.cache.Put(callee.Handle, tokens)
	}

	hint, ok := ArgumentHint(tokens, expr.ArgCount, buffer)
	if !ok {
		return Outcome{}, true, nil
	}
	return PreviewOf(hint), true, nil
}

// resolve derives the parameter tokens of callee, from the native table for
// built-ins and from the source text otherwise.
func (r *Resolver) resolve(ctx context.Context, buffer string, expr jsparse.Expression, callee protocol.RemoteValue) (signature.Tokens, bool, error) {
	if !signature.IsNative(callee.Description) {
		tokens, ok := signature.FromDescription(callee.Description)
		return tokens, ok, nil
	}

	switch node := expr.Node.(type) {
	case *jsparse.Call:
		return r.native(ctx, buffer, node.Callee)
	case *jsparse.New:
		return r.native(ctx, buffer, node.Callee)
	}
	return nil, false, nil
}

func (r *Resolver) native(ctx context.Context, buffer string, callee jsparse.Expr) (signature.Tokens, bool, error) {
	switch c := callee.(type) {
	case *jsparse.Ident:
		tokens, ok := r.natives.Lookup(c.Name, signature.GlobalOwner)
		return tokens, ok, nil
	case *jsparse.Member:
		prop, isIdent := c.Property.(*jsparse.Ident)
		if c.Computed || !isIdent {
			return nil, false, nil
		}
		owner, ok, err := r.spec.BestEffort(ctx, c.Object.Pos().Text(buffer))
		if err != nil || !ok {
			return nil, false, err
		}
		tokens, ok := r.natives.Lookup(prop.Name, ownerNames(owner)...)
		return tokens, ok, nil
	}
	return nil, false, nil
}

// ownerNames lists the native table owners that may define a member of v.
func ownerNames(v protocol.RemoteValue) []string {
	switch v.Type {
	case protocol.TypeFunction:
		return []string{signature.FunctionName(v.Description), "Function"}
	case protocol.TypeObject:
		return []string{v.ClassName, v.Description}
	case protocol.TypeString:
		return []string{"String"}
	case protocol.TypeNumber:
		return []string{"Number"}
	case protocol.TypeBoolean:
		return []string{"Boolean"}
	case protocol.TypeBigInt:
		return []string{"BigInt"}
	case protocol.TypeSymbol:
		return []string{"Symbol"}
	}
	return nil
}

// ArgumentHint formats the parameters not yet covered by argCount supplied
// arguments. The hint is separated from existing arguments by ", " unless
// the buffer already ends in a comma, with or without trailing whitespace.
// ok is false when every parameter is supplied.
func ArgumentHint(tokens signature.Tokens, argCount int, buffer string) (string, bool) {
	rest := tokens.Remaining(argCount)
	if len(rest) == 0 {
		return "", false
	}
	text := rest.String()
	if argCount == 0 {
		return text, true
	}
	trimmed := strings.TrimRight(buffer, " \t\r\n")
	switch {
	case strings.HasSuffix(trimmed, ",") && len(trimmed) < len(buffer):
		return text, true
	case strings.HasSuffix(trimmed, ","):
		return " " + text, true
	default:
		return ", " + text, true
	}
}

// preview renders the best-effort value of the whole buffer.
func (r *Resolver) preview(ctx context.Context, buffer string) (Outcome, error) {
	v, ok, err := r.spec.BestEffort(ctx, buffer)
	if err != nil || !ok {
		return Outcome{}, err
	}
	return PreviewOf(r.previewer.Preview(v)), nil
}

// degrade turns a failed lookup into "no data" unless it is fatal.
func (r *Resolver) degrade(ctx context.Context, what string, err error) error {
	if protocol.IsFatal(err) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if r.logger != nil {
		r.logger.Warn("completion lookup failed", "lookup", what, "error", err)
	}
	return nil
}

// propertyNames orders string-keyed properties own first, then inherited,
// each in enumeration order.
func propertyNames(props []protocol.PropertyDescriptor) []string {
	var own, inherited []string
	for _, p := range props {
		switch {
		case p.Symbol:
		case p.IsOwn:
			own = append(own, p.Name)
		default:
			inherited = append(inherited, p.Name)
		}
	}
	return dedupe(append(own, inherited...))
}

// splitQuote separates an opening quote typed inside brackets from the key
// text after it.
func splitQuote(typed string) (quote byte, key string) {
	if typed != "" && (typed[0] == '\'' || typed[0] == '"') {
		return typed[0], typed[1:]
	}
	return 0, typed
}

// bracketCandidates formats names as they would be completed after '['.
// Index keys stay bare. With a quote already typed, only quoted keys are
// offered.
func bracketCandidates(names []string, typedQuote byte) []string {
	q := typedQuote
	if q == 0 {
		q = '\''
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if isIndex(name) {
			if typedQuote == 0 {
				out = append(out, name+"]")
			}
			continue
		}
		out = append(out, string(q)+escapeKey(name, q)+string(q)+"]")
	}
	return out
}

func escapeKey(key string, q byte) string {
	r := strings.NewReplacer(`\`, `\\`, string(q), `\`+string(q), "\n", `\n`)
	return r.Replace(key)
}

// isIndex reports whether name is a canonical non-negative integer key.
func isIndex(name string) bool {
	n, err := strconv.ParseUint(name, 10, 32)
	return err == nil && strconv.FormatUint(n, 10) == name
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
