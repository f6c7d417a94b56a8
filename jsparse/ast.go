package jsparse

// Span is a half-open byte range [Start, End) in the source.
type Span struct {
	Start int
	End   int
}

// Pos returns the span itself; embedding Span gives every node Pos.
func (s Span) Pos() Span { return s }

// Text returns the spanned slice of src, clamped to its bounds.
func (s Span) Text(src string) string {
	start, end := s.Start, s.End
	if start < 0 {
		start = 0
	}
	if end > len(src) {
		end = len(src)
	}
	if start >= end {
		return ""
	}
	return src[start:end]
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool { return s.End <= s.Start }

// Node is any syntax tree node.
type Node interface {
	Pos() Span
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Pattern is a binding target in declarations and parameter lists.
type Pattern interface {
	Node
	patternNode()
}

// Program is the root of a parse.
type Program struct {
	Span
	Body []Stmt
}

// Expressions.
type (
	// Ident is an identifier reference, including this and super.
	Ident struct {
		Span
		Name string
	}

	// Literal is a number, string, regex, boolean or null literal.
	Literal struct {
		Span
		Kind TokenKind
		Raw  string

		// Unterminated is set for strings and regexes cut off by end of input.
		Unterminated bool
	}

	// TemplateLit is a template literal, kept as raw text.
	TemplateLit struct {
		Span
		Raw          string
		Unterminated bool
	}

	// TaggedTemplate is tag`...`.
	TaggedTemplate struct {
		Span
		Tag   Expr
		Quasi *TemplateLit
	}

	// Member is object.property, object[property] or object?.property.
	Member struct {
		Span
		Object   Expr
		Property Expr
		Computed bool
		Optional bool

		// Closed is false for a computed access missing its ']'.
		Closed bool
	}

	// Call is callee(args).
	Call struct {
		Span
		Callee   Expr
		Args     []Expr
		Optional bool

		// Closed is false when the closing parenthesis is missing.
		Closed bool
	}

	// New is new callee(args).
	New struct {
		Span
		Callee Expr
		Args   []Expr
		Closed bool
	}

	// Unary is a prefix operator applied to an operand.
	Unary struct {
		Span
		Op  string
		Arg Expr
	}

	// Update is ++ or -- in prefix or postfix position.
	Update struct {
		Span
		Op     string
		Prefix bool
		Arg    Expr
	}

	// Binary covers arithmetic, comparison and logical operators.
	Binary struct {
		Span
		Op    string
		Left  Expr
		Right Expr
	}

	// Assign is target op value for every assignment operator.
	Assign struct {
		Span
		Op     string
		Target Expr
		Value  Expr
	}

	// Conditional is test ? cons : alt.
	Conditional struct {
		Span
		Test Expr
		Cons Expr
		Alt  Expr
	}

	// Sequence is a comma expression.
	Sequence struct {
		Span
		List []Expr
	}

	// Spread is ...arg in calls, arrays and objects.
	Spread struct {
		Span
		Arg Expr
	}

	// Await is await arg.
	Await struct {
		Span
		Arg Expr
	}

	// Yield is yield arg or yield* arg.
	Yield struct {
		Span
		Delegate bool
		Arg      Expr
	}

	// Paren is a parenthesized expression.
	Paren struct {
		Span
		Expr   Expr
		Closed bool
	}

	// Array is an array literal. Holes are nil.
	Array struct {
		Span
		Elems []Expr
	}

	// Object is an object literal.
	Object struct {
		Span
		Props []*Property
	}

	// Function is a function expression or the function of a declaration.
	Function struct {
		Span
		Name      *Ident
		Async     bool
		Generator bool
		Params    []Pattern
		Body      *Block
	}

	// Arrow is an arrow function. Body is an Expr or a *Block.
	Arrow struct {
		Span
		Async  bool
		Params []Pattern
		Body   Node
	}

	// Class is a class expression or the class of a declaration.
	Class struct {
		Span
		Name    *Ident
		Super   Expr
		Members []*ClassMember
	}

	// MetaProperty is new.target or import.meta.
	MetaProperty struct {
		Span
		Meta     string
		Property string
	}

	// Bad marks a region the parser could not make sense of.
	Bad struct {
		Span
	}
)

// PropertyKind distinguishes plain, accessor and method properties.
type PropertyKind int

const (
	PropInit PropertyKind = iota
	PropGet
	PropSet
	PropMethod
	PropSpread
)

// Property is one entry of an object literal.
type Property struct {
	Span
	Kind      PropertyKind
	Key       Expr
	Computed  bool
	Shorthand bool
	Value     Expr
}

// MemberKind distinguishes class member forms.
type MemberKind int

const (
	MemberMethod MemberKind = iota
	MemberGetter
	MemberSetter
	MemberField
	MemberConstructor
	MemberStaticBlock
)

// ClassMember is one element of a class body.
type ClassMember struct {
	Span
	Kind     MemberKind
	Static   bool
	Key      Expr
	Computed bool

	// Value is the method function for methods and accessors.
	Value *Function

	// Init is the initializer of a field.
	Init Expr

	// Block is the body of a static initialization block.
	Block *Block
}

// Patterns.
type (
	// ObjectPattern is {a, b: c, ...rest}.
	ObjectPattern struct {
		Span
		Props []*PatternProp
		Rest  Pattern
	}

	// ArrayPattern is [a, , b, ...rest]. Holes are nil.
	ArrayPattern struct {
		Span
		Elems []Pattern
	}

	// AssignPattern is a binding with a default, target = value.
	AssignPattern struct {
		Span
		Left  Pattern
		Right Expr
	}

	// RestElement is ...arg in a parameter list or array pattern.
	RestElement struct {
		Span
		Arg Pattern
	}

	// BadPattern marks an unparseable binding.
	BadPattern struct {
		Span
	}
)

// PatternProp is one property of an object pattern.
type PatternProp struct {
	Span
	Key       Expr
	Computed  bool
	Shorthand bool
	Value     Pattern
}

// Statements.
type (
	// ExprStmt is an expression in statement position.
	ExprStmt struct {
		Span
		Expr Expr
	}

	// VarDecl is a var, let or const declaration.
	VarDecl struct {
		Span
		Kind  string
		Decls []*Declarator
	}

	// FuncDecl is a function declaration.
	FuncDecl struct {
		Span
		Func *Function
	}

	// ClassDecl is a class declaration.
	ClassDecl struct {
		Span
		Class *Class
	}

	// Block is { body }.
	Block struct {
		Span
		Body   []Stmt
		Closed bool
	}

	// If is if (test) cons else alt.
	If struct {
		Span
		Test Expr
		Cons Stmt
		Alt  Stmt
	}

	// For covers for(;;), for-in and for-of loops. Init is a *VarDecl or an Expr.
	For struct {
		Span
		Kind   string
		Await  bool
		Init   Node
		Test   Expr
		Update Expr
		Body   Stmt
	}

	// While is while (test) body.
	While struct {
		Span
		Test Expr
		Body Stmt
	}

	// DoWhile is do body while (test).
	DoWhile struct {
		Span
		Body Stmt
		Test Expr
	}

	// Return is return arg.
	Return struct {
		Span
		Arg Expr
	}

	// Throw is throw arg.
	Throw struct {
		Span
		Arg Expr
	}

	// Try is try/catch/finally.
	Try struct {
		Span
		Block     *Block
		Param     Pattern
		Handler   *Block
		Finalizer *Block
	}

	// Switch is switch (disc) { cases }.
	Switch struct {
		Span
		Disc  Expr
		Cases []*Case
	}

	// Jump is break or continue with an optional label.
	Jump struct {
		Span
		Keyword string
		Label   string
	}

	// Labeled is label: body.
	Labeled struct {
		Span
		Label string
		Body  Stmt
	}

	// Empty is a lone semicolon.
	Empty struct {
		Span
	}

	// Debugger is the debugger statement.
	Debugger struct {
		Span
	}

	// BadStmt marks a statement the parser could not make sense of.
	BadStmt struct {
		Span
	}
)

// Declarator is one binding of a VarDecl.
type Declarator struct {
	Span
	Target Pattern
	Init   Expr
}

// Case is one clause of a switch; Test is nil for default.
type Case struct {
	Span
	Test Expr
	Body []Stmt
}

func (*Ident) exprNode()          {}
func (*Literal) exprNode()        {}
func (*TemplateLit) exprNode()    {}
func (*TaggedTemplate) exprNode() {}
func (*Member) exprNode()         {}
func (*Call) exprNode()           {}
func (*New) exprNode()            {}
func (*Unary) exprNode()          {}
func (*Update) exprNode()         {}
func (*Binary) exprNode()         {}
func (*Assign) exprNode()         {}
func (*Conditional) exprNode()    {}
func (*Sequence) exprNode()       {}
func (*Spread) exprNode()         {}
func (*Await) exprNode()          {}
func (*Yield) exprNode()          {}
func (*Paren) exprNode()          {}
func (*Array) exprNode()          {}
func (*Object) exprNode()         {}
func (*Function) exprNode()       {}
func (*Arrow) exprNode()          {}
func (*Class) exprNode()          {}
func (*MetaProperty) exprNode()   {}
func (*Bad) exprNode()            {}

func (*Ident) patternNode()         {}
func (*ObjectPattern) patternNode() {}
func (*ArrayPattern) patternNode()  {}
func (*AssignPattern) patternNode() {}
func (*RestElement) patternNode()   {}
func (*BadPattern) patternNode()    {}

func (*ExprStmt) stmtNode()  {}
func (*VarDecl) stmtNode()   {}
func (*FuncDecl) stmtNode()  {}
func (*ClassDecl) stmtNode() {}
func (*Block) stmtNode()     {}
func (*If) stmtNode()        {}
func (*For) stmtNode()       {}
func (*While) stmtNode()     {}
func (*DoWhile) stmtNode()   {}
func (*Return) stmtNode()    {}
func (*Throw) stmtNode()     {}
func (*Try) stmtNode()       {}
func (*Switch) stmtNode()    {}
func (*Jump) stmtNode()      {}
func (*Labeled) stmtNode()   {}
func (*Empty) stmtNode()     {}
func (*Debugger) stmtNode()  {}
func (*BadStmt) stmtNode()   {}
