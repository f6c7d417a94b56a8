package jsparse

// ExprKind is the completion-relevant shape of an expression.
type ExprKind int

const (
	// KindOther is any expression without a more specific shape.
	KindOther ExprKind = iota
	// KindIdentifier is a bare identifier reference.
	KindIdentifier
	// KindMember is a dotted or bracketed property access.
	KindMember
	// KindCall is a call or construction still missing its ')'.
	KindCall
)

func (k ExprKind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"
	case KindMember:
		return "member"
	case KindCall:
		return "call"
	default:
		return "other"
	}
}

// Expression describes the expression the input ends with.
type Expression struct {
	Kind ExprKind
	Node Expr
	Span Span

	// Name is the identifier name for KindIdentifier, and the property name
	// of a dotted access for KindMember.
	Name string

	// Receiver and Property locate the two halves of a member access. For
	// computed access Property covers the bracketed expression, which may be
	// empty or an unterminated string.
	Receiver Span
	Property Span
	Computed bool

	// Callee locates the function of an open call, ArgCount counts the
	// arguments present so far.
	Callee   Span
	ArgCount int

	// Call describes the open call an identifier or member access is the
	// last argument of, nil when there is none.
	Call *Expression
}

// Classify parses src tolerantly and describes the expression it ends with.
// Identifier and member shapes are reported only when the expression reaches
// the end of src; everything else is KindOther with an empty Node when no
// trailing expression exists.
func Classify(src string) Expression {
	res := ParseLoose(src)
	body := res.Program.Body
	if len(body) == 0 {
		return Expression{}
	}
	expr := trailingExpr(body[len(body)-1])
	if expr == nil {
		return Expression{}
	}
	if _, bad := expr.(*Bad); bad {
		return Expression{}
	}

	if inner, call, ok := completable(expr, len(src)); ok {
		out := describeExpr(inner)
		if call != nil {
			c := describeExpr(call)
			out.Call = &c
		}
		return out
	}
	return Expression{Kind: KindOther, Node: expr, Span: expr.Pos()}
}

// trailingExpr returns the expression a statement ends with, descending into
// blocks still missing their closing brace.
func trailingExpr(s Stmt) Expr {
	switch v := s.(type) {
	case *ExprStmt:
		return v.Expr
	case *VarDecl:
		if len(v.Decls) == 0 {
			return nil
		}
		return v.Decls[len(v.Decls)-1].Init
	case *Return:
		return v.Arg
	case *Throw:
		return v.Arg
	case *Block:
		if v.Closed || len(v.Body) == 0 {
			return nil
		}
		return trailingExpr(v.Body[len(v.Body)-1])
	}
	return nil
}

// completable finds the innermost identifier, member access or open call in
// the right-most operand position of e. For an identifier or member access
// typed as the last argument of an open call, that call is returned too.
func completable(e Expr, end int) (Expr, Expr, bool) {
	switch v := e.(type) {
	case *Ident:
		if v.Name == "this" || v.Name == "super" || v.End != end {
			return nil, nil, false
		}
		return v, nil, true
	case *Member:
		if v.End != end && v.Closed {
			return nil, nil, false
		}
		if v.Closed && v.Computed {
			return nil, nil, false
		}
		return v, nil, true
	case *Call:
		if v.Closed {
			return nil, nil, false
		}
		inner, call := innermostCall(v, v.Args, end)
		return inner, call, true
	case *New:
		if v.Closed {
			return nil, nil, false
		}
		inner, call := innermostCall(v, v.Args, end)
		return inner, call, true
	case *Assign:
		return completable(v.Value, end)
	case *Binary:
		return completable(v.Right, end)
	case *Unary:
		return completable(v.Arg, end)
	case *Await:
		return completable(v.Arg, end)
	case *Spread:
		return completable(v.Arg, end)
	case *Conditional:
		return completable(v.Alt, end)
	case *Sequence:
		return completable(v.List[len(v.List)-1], end)
	}
	return nil, nil, false
}

// innermostCall returns what the user is typing inside the argument list of
// call: a nested open call, an identifier or member access reaching the end
// together with the call it is an argument of, or call itself.
func innermostCall(call Expr, args []Expr, end int) (Expr, Expr) {
	if len(args) == 0 {
		return call, nil
	}
	inner, outer, ok := completable(args[len(args)-1], end)
	if !ok {
		return call, nil
	}
	switch inner.(type) {
	case *Call, *New:
		return inner, nil
	}
	if outer == nil {
		outer = call
	}
	return inner, outer
}

func describeExpr(e Expr) Expression {
	out := Expression{Node: e, Span: e.Pos()}
	switch v := e.(type) {
	case *Ident:
		out.Kind = KindIdentifier
		out.Name = v.Name
		out.Property = v.Span
	case *Member:
		out.Kind = KindMember
		out.Receiver = v.Object.Pos()
		out.Property = v.Property.Pos()
		out.Computed = v.Computed
		if id, ok := v.Property.(*Ident); ok && !v.Computed {
			out.Name = id.Name
		}
	case *Call:
		out.Kind = KindCall
		out.Callee = v.Callee.Pos()
		out.ArgCount = len(v.Args)
	case *New:
		out.Kind = KindCall
		out.Callee = v.Callee.Pos()
		out.ArgCount = len(v.Args)
	}
	return out
}
