package jsparse

import (
	"errors"
	"fmt"
)

// ErrSyntax is the sentinel wrapped by every SyntaxError.
var ErrSyntax = errors.New("syntax error")

// SyntaxError is one problem found while parsing.
type SyntaxError struct {
	Pos int
	Msg string

	// AtEnd is set when the problem is that input ended too early.
	AtEnd bool
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// Unwrap returns ErrSyntax.
func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Result is the outcome of a tolerant parse.
type Result struct {
	Program *Program
	Errors  []*SyntaxError

	// Incomplete is set when every problem stems from input ending early:
	// unclosed brackets, a dangling operator, an open template or comment.
	Incomplete bool
}

// OK reports whether the parse found no problems.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// ParseLoose parses src as a script, recovering from every error. The
// returned tree covers as much of the input as could be understood and is
// never nil.
func ParseLoose(src string) *Result {
	p := newParser(src)
	prog := p.parseProgram()
	return p.result(prog)
}

// ParseStrict parses src as a script and fails on the first problem.
func ParseStrict(src string) (*Program, error) {
	res := ParseLoose(src)
	if !res.OK() {
		return nil, res.Errors[0]
	}
	return res.Program, nil
}

// ParseExpression parses src as exactly one expression.
func ParseExpression(src string) (Expr, error) {
	p := newParser(src)
	expr := p.parseExpression(false)
	if p.tok().Kind != EOF {
		p.errorf("unexpected %s", describe(p.tok()))
	}
	if len(p.errs) > 0 {
		return nil, p.errs[0]
	}
	return expr, nil
}

// Incomplete reports whether src fails to parse only because it ends too
// early, so that more input could complete it.
func Incomplete(src string) bool {
	return ParseLoose(src).Incomplete
}

type parser struct {
	src         string
	toks        []Token
	pos         int
	lastEnd     int
	errs        []*SyntaxError
	openComment bool
	generator   bool
}

func newParser(src string) *parser {
	toks, openComment := NewLexer(src).scanAll()
	return &parser{src: src, toks: toks, openComment: openComment}
}

func (p *parser) result(prog *Program) *Result {
	res := &Result{Program: prog, Errors: p.errs}
	if p.openComment {
		res.Errors = append(res.Errors, &SyntaxError{Pos: len(p.src), Msg: "unterminated comment", AtEnd: true})
	}
	res.Incomplete = len(res.Errors) > 0 && res.Errors[0].AtEnd
	return res
}

func (p *parser) tok() Token { return p.toks[p.pos] }

func (p *parser) peek(n int) Token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if t.Kind != EOF {
		p.pos++
		p.lastEnd = t.End
	}
	return t
}

func (p *parser) at(text string) bool { return p.tok().Is(text) }

func (p *parser) atEOF() bool { return p.tok().Kind == EOF }

func (p *parser) isWord(word string) bool {
	t := p.tok()
	return t.Kind == IdentToken && t.Text == word
}

func (p *parser) eat(text string) bool {
	if p.at(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(text string) bool {
	if p.eat(text) {
		return true
	}
	p.errorf("expected %q, found %s", text, describe(p.tok()))
	return false
}

func (p *parser) errorf(format string, args ...any) {
	t := p.tok()
	if t.Kind == EOF {
		p.errs = append(p.errs, &SyntaxError{Pos: t.Start, Msg: "unexpected end of input", AtEnd: true})
		return
	}
	p.errs = append(p.errs, &SyntaxError{Pos: t.Start, Msg: fmt.Sprintf(format, args...)})
}

// span closes a node that began at start.
func (p *parser) span(start int) Span {
	end := p.lastEnd
	if end < start {
		end = start
	}
	return Span{Start: start, End: end}
}

func describe(t Token) string {
	if t.Kind == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

// Statements

func (p *parser) parseProgram() *Program {
	return &Program{
		Span: Span{Start: 0, End: len(p.src)},
		Body: p.parseStatements(""),
	}
}

// parseStatements parses until the closing punctuator or end of input.
func (p *parser) parseStatements(closer string) []Stmt {
	var out []Stmt
	for !p.atEOF() && (closer == "" || !p.at(closer)) {
		start := p.pos
		s := p.parseStatement()
		if p.pos == start {
			t := p.next()
			s = &BadStmt{Span: Span{Start: t.Start, End: t.End}}
		}
		out = append(out, s)
	}
	return out
}

func (p *parser) parseStatement() Stmt {
	t := p.tok()
	start := t.Start

	switch t.Kind {
	case Punct:
		switch t.Text {
		case "{":
			return p.parseBlock()
		case ";":
			p.next()
			return &Empty{Span: p.span(start)}
		}
	case Keyword:
		switch t.Text {
		case "var", "const":
			p.next()
			decl := p.parseVarDecl(start, t.Text, false)
			p.consumeSemicolon()
			decl.Span = p.span(start)
			return decl
		case "function":
			return &FuncDecl{Func: p.parseFunction(), Span: p.span(start)}
		case "class":
			return &ClassDecl{Class: p.parseClass(), Span: p.span(start)}
		case "if":
			return p.parseIf()
		case "for":
			return p.parseFor()
		case "while":
			p.next()
			test := p.parseCondition()
			body := p.parseStatement()
			return &While{Span: p.span(start), Test: test, Body: body}
		case "do":
			p.next()
			body := p.parseStatement()
			p.expect("while")
			test := p.parseCondition()
			p.eat(";")
			return &DoWhile{Span: p.span(start), Body: body, Test: test}
		case "return":
			p.next()
			var arg Expr
			if !p.statementEnds() {
				arg = p.parseExpression(false)
			}
			p.consumeSemicolon()
			return &Return{Span: p.span(start), Arg: arg}
		case "throw":
			p.next()
			arg := p.parseExpression(false)
			p.consumeSemicolon()
			return &Throw{Span: p.span(start), Arg: arg}
		case "try":
			return p.parseTry()
		case "switch":
			return p.parseSwitch()
		case "break", "continue":
			p.next()
			jump := &Jump{Keyword: t.Text}
			if n := p.tok(); n.Kind == IdentToken && !n.NewlineBefore {
				jump.Label = p.next().Text
			}
			p.consumeSemicolon()
			jump.Span = p.span(start)
			return jump
		case "debugger":
			p.next()
			p.consumeSemicolon()
			return &Debugger{Span: p.span(start)}
		case "import", "export":
			if t.Text == "import" && (p.peek(1).Is("(") || p.peek(1).Is(".")) {
				break
			}
			p.errorf("%s declarations are not supported in scripts", t.Text)
			p.next()
			for !p.atEOF() && !p.at(";") && !p.tok().NewlineBefore {
				p.next()
			}
			p.eat(";")
			return &BadStmt{Span: p.span(start)}
		}
	case IdentToken:
		switch {
		case t.Text == "let" && p.letDeclaration():
			p.next()
			decl := p.parseVarDecl(start, "let", false)
			p.consumeSemicolon()
			decl.Span = p.span(start)
			return decl
		case t.Text == "async" && p.peek(1).Is("function") && !p.peek(1).NewlineBefore:
			return &FuncDecl{Func: p.parseFunction(), Span: p.span(start)}
		case p.peek(1).Is(":"):
			p.next()
			p.next()
			body := p.parseStatement()
			return &Labeled{Span: p.span(start), Label: t.Text, Body: body}
		}
	}

	expr := p.parseExpression(false)
	p.consumeSemicolon()
	return &ExprStmt{Span: p.span(start), Expr: expr}
}

func (p *parser) letDeclaration() bool {
	n := p.peek(1)
	return n.Kind == IdentToken || n.Is("[") || n.Is("{")
}

func (p *parser) statementEnds() bool {
	t := p.tok()
	return t.Kind == EOF || t.Is(";") || t.Is("}") || t.NewlineBefore
}

func (p *parser) consumeSemicolon() {
	if p.eat(";") {
		return
	}
	if p.statementEnds() {
		return
	}
	p.errorf("unexpected %s", describe(p.tok()))
}

func (p *parser) parseBlock() *Block {
	start := p.tok().Start
	p.expect("{")
	body := p.parseStatements("}")
	closed := p.expect("}")
	return &Block{Span: p.span(start), Body: body, Closed: closed}
}

func (p *parser) parseVarDecl(start int, kind string, noIn bool) *VarDecl {
	decl := &VarDecl{Kind: kind}
	for {
		dstart := p.tok().Start
		target := p.parseBindingTarget()
		d := &Declarator{Target: target}
		if p.eat("=") {
			d.Init = p.parseAssign(noIn)
		}
		d.Span = p.span(dstart)
		decl.Decls = append(decl.Decls, d)
		if !p.eat(",") {
			break
		}
	}
	decl.Span = p.span(start)
	return decl
}

func (p *parser) parseCondition() Expr {
	p.expect("(")
	test := p.parseExpression(false)
	p.expect(")")
	return test
}

func (p *parser) parseIf() Stmt {
	start := p.next().Start
	test := p.parseCondition()
	cons := p.parseStatement()
	var alt Stmt
	if p.eat("else") {
		alt = p.parseStatement()
	}
	return &If{Span: p.span(start), Test: test, Cons: cons, Alt: alt}
}

func (p *parser) parseFor() Stmt {
	start := p.next().Start
	loop := &For{Kind: "for"}
	if p.isWord("await") {
		p.next()
		loop.Await = true
	}
	p.expect("(")

	switch {
	case p.at(";"):
	case p.at("var") || p.at("const") || (p.isWord("let") && p.letDeclaration()):
		dstart := p.tok().Start
		kind := p.next().Text
		loop.Init = p.parseVarDecl(dstart, kind, true)
	default:
		loop.Init = p.parseExpression(true)
	}

	switch {
	case p.isWord("of"):
		p.next()
		loop.Kind = "of"
		loop.Test = p.parseAssign(false)
	case p.at("in"):
		p.next()
		loop.Kind = "in"
		loop.Test = p.parseExpression(false)
	default:
		p.expect(";")
		if !p.at(";") {
			loop.Test = p.parseExpression(false)
		}
		p.expect(";")
		if !p.at(")") {
			loop.Update = p.parseExpression(false)
		}
	}
	p.expect(")")
	loop.Body = p.parseStatement()
	loop.Span = p.span(start)
	return loop
}

func (p *parser) parseTry() Stmt {
	start := p.next().Start
	stmt := &Try{Block: p.parseBlock()}
	if p.eat("catch") {
		if p.eat("(") {
			stmt.Param = p.parseBindingTarget()
			p.expect(")")
		}
		stmt.Handler = p.parseBlock()
	}
	if p.eat("finally") {
		stmt.Finalizer = p.parseBlock()
	}
	if stmt.Handler == nil && stmt.Finalizer == nil {
		p.errorf("missing catch or finally after try")
	}
	stmt.Span = p.span(start)
	return stmt
}

func (p *parser) parseSwitch() Stmt {
	start := p.next().Start
	stmt := &Switch{Disc: p.parseCondition()}
	p.expect("{")
	for !p.atEOF() && !p.at("}") {
		cstart := p.tok().Start
		c := &Case{}
		switch {
		case p.eat("case"):
			c.Test = p.parseExpression(false)
		case p.eat("default"):
		default:
			p.errorf("unexpected %s in switch", describe(p.tok()))
			p.next()
			continue
		}
		p.expect(":")
		for !p.atEOF() && !p.at("}") && !p.at("case") && !p.at("default") {
			before := p.pos
			s := p.parseStatement()
			if p.pos == before {
				p.next()
				continue
			}
			c.Body = append(c.Body, s)
		}
		c.Span = p.span(cstart)
		stmt.Cases = append(stmt.Cases, c)
	}
	p.expect("}")
	stmt.Span = p.span(start)
	return stmt
}

// Expressions

func (p *parser) parseExpression(noIn bool) Expr {
	start := p.tok().Start
	first := p.parseAssign(noIn)
	if !p.at(",") {
		return first
	}
	seq := &Sequence{List: []Expr{first}}
	for p.eat(",") {
		seq.List = append(seq.List, p.parseAssign(noIn))
	}
	seq.Span = p.span(start)
	return seq
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "<<=": true, ">>=": true, ">>>=": true, "&=": true,
	"|=": true, "^=": true, "&&=": true, "||=": true, "??=": true,
}

func (p *parser) parseAssign(noIn bool) Expr {
	if arrow := p.tryArrow(noIn); arrow != nil {
		return arrow
	}
	start := p.tok().Start
	if p.generator && p.isWord("yield") {
		p.next()
		y := &Yield{}
		if p.eat("*") {
			y.Delegate = true
		}
		if y.Delegate || !p.expressionEnds() {
			y.Arg = p.parseAssign(noIn)
		}
		y.Span = p.span(start)
		return y
	}

	left := p.parseConditional(noIn)
	if t := p.tok(); t.Kind == Punct && assignOps[t.Text] {
		op := p.next().Text
		value := p.parseAssign(noIn)
		return &Assign{Span: p.span(start), Op: op, Target: left, Value: value}
	}
	return left
}

// expressionEnds reports whether the current token cannot begin an operand.
func (p *parser) expressionEnds() bool {
	t := p.tok()
	if t.Kind == EOF || t.NewlineBefore {
		return true
	}
	if t.Kind != Punct {
		return false
	}
	switch t.Text {
	case ")", "]", "}", ";", ",", ":", "=", "=>", ".", "?.", "?":
		return true
	}
	return false
}

// tryArrow parses an arrow function if one starts at the current token.
func (p *parser) tryArrow(noIn bool) Expr {
	t := p.tok()
	start := t.Start
	async := false
	off := 0
	if t.Kind == IdentToken && t.Text == "async" {
		n := p.peek(1)
		if !n.NewlineBefore && (n.Kind == IdentToken || n.Is("(")) {
			async = true
			off = 1
		}
	}

	first := p.peek(off)
	switch {
	case first.Kind == IdentToken && p.peek(off+1).Is("=>") && !p.peek(off+1).NewlineBefore:
		if async {
			p.next()
		}
		id := p.next()
		params := []Pattern{&Ident{Span: Span{Start: id.Start, End: id.End}, Name: id.Text}}
		return p.parseArrowRest(start, async, params, noIn)
	case first.Is("("):
		closeAt := p.matchParen(p.pos + off)
		if closeAt < 0 || closeAt+1 >= len(p.toks) {
			return nil
		}
		arrow := p.toks[closeAt+1]
		if !arrow.Is("=>") || arrow.NewlineBefore {
			return nil
		}
		if async {
			p.next()
		}
		params := p.parseParams()
		return p.parseArrowRest(start, async, params, noIn)
	}
	return nil
}

// matchParen returns the index of the token closing the bracket at i, or -1.
func (p *parser) matchParen(i int) int {
	depth := 0
	for ; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.Kind == EOF {
			return -1
		}
		if t.Kind != Punct {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (p *parser) parseArrowRest(start int, async bool, params []Pattern, noIn bool) Expr {
	p.expect("=>")
	arrow := &Arrow{Async: async, Params: params}
	if p.at("{") {
		saved := p.generator
		p.generator = false
		arrow.Body = p.parseBlock()
		p.generator = saved
	} else {
		arrow.Body = p.parseAssign(noIn)
	}
	arrow.Span = p.span(start)
	return arrow
}

func (p *parser) parseConditional(noIn bool) Expr {
	start := p.tok().Start
	test := p.parseBinary(1, noIn)
	if !p.eat("?") {
		return test
	}
	cons := p.parseAssign(false)
	p.expect(":")
	alt := p.parseAssign(noIn)
	return &Conditional{Span: p.span(start), Test: test, Cons: cons, Alt: alt}
}

func binaryPrec(t Token, noIn bool) int {
	switch t.Kind {
	case Punct:
		switch t.Text {
		case "??":
			return 1
		case "||":
			return 2
		case "&&":
			return 3
		case "|":
			return 4
		case "^":
			return 5
		case "&":
			return 6
		case "==", "!=", "===", "!==":
			return 7
		case "<", ">", "<=", ">=":
			return 8
		case "<<", ">>", ">>>":
			return 9
		case "+", "-":
			return 10
		case "*", "/", "%":
			return 11
		case "**":
			return 12
		}
	case Keyword:
		switch t.Text {
		case "instanceof":
			return 8
		case "in":
			if !noIn {
				return 8
			}
		}
	}
	return 0
}

func (p *parser) parseBinary(minPrec int, noIn bool) Expr {
	start := p.tok().Start
	left := p.parseUnary()
	for {
		prec := binaryPrec(p.tok(), noIn)
		if prec == 0 || prec < minPrec {
			return left
		}
		op := p.next().Text
		nextMin := prec + 1
		if op == "**" {
			nextMin = prec
		}
		right := p.parseBinary(nextMin, noIn)
		left = &Binary{Span: p.span(start), Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() Expr {
	t := p.tok()
	start := t.Start
	switch {
	case t.Kind == Punct && (t.Text == "!" || t.Text == "~" || t.Text == "+" || t.Text == "-"),
		t.Kind == Keyword && (t.Text == "typeof" || t.Text == "void" || t.Text == "delete"):
		p.next()
		arg := p.parseUnary()
		return &Unary{Span: p.span(start), Op: t.Text, Arg: arg}
	case t.Is("++") || t.Is("--"):
		p.next()
		arg := p.parseUnary()
		return &Update{Span: p.span(start), Op: t.Text, Prefix: true, Arg: arg}
	case t.Kind == IdentToken && t.Text == "await" && p.awaitOperand():
		p.next()
		arg := p.parseUnary()
		return &Await{Span: p.span(start), Arg: arg}
	}

	expr := p.parseLHS()
	if n := p.tok(); (n.Is("++") || n.Is("--")) && !n.NewlineBefore {
		p.next()
		return &Update{Span: p.span(start), Op: n.Text, Arg: expr}
	}
	return expr
}

// awaitOperand reports whether an await keyword is followed by an operand.
// Input ending right after await counts, so the expression reads as
// incomplete rather than as a reference named await.
func (p *parser) awaitOperand() bool {
	n := p.peek(1)
	if n.Kind == EOF {
		return true
	}
	if n.Kind != Punct {
		return n.Kind != Keyword || (n.Text != "in" && n.Text != "instanceof")
	}
	switch n.Text {
	case ")", "]", "}", ";", ",", ":", "=", "=>", ".", "?.", "?":
		return false
	}
	return binaryPrec(n, false) == 0 || n.Text == "+" || n.Text == "-"
}

func (p *parser) parseLHS() Expr {
	start := p.tok().Start
	var expr Expr
	if p.at("new") {
		expr = p.parseNew()
	} else {
		expr = p.parsePrimary()
	}
	return p.parseSuffixes(expr, start, true)
}

func (p *parser) parseNew() Expr {
	start := p.next().Start
	if p.eat(".") {
		name := p.tok()
		if name.Kind == IdentToken || name.Kind == Keyword {
			p.next()
		} else {
			p.errorf("expected property after new.")
		}
		return &MetaProperty{Span: p.span(start), Meta: "new", Property: name.Text}
	}

	cstart := p.tok().Start
	var callee Expr
	if p.at("new") {
		callee = p.parseNew()
	} else {
		callee = p.parsePrimary()
	}
	callee = p.parseSuffixes(callee, cstart, false)

	n := &New{Callee: callee, Closed: true}
	if p.at("(") {
		n.Args, n.Closed = p.parseArguments()
	}
	n.Span = p.span(start)
	return n
}

func (p *parser) parseSuffixes(expr Expr, start int, allowCall bool) Expr {
	for {
		t := p.tok()
		switch {
		case t.Is("."):
			p.next()
			expr = &Member{Object: expr, Property: p.parsePropertyIdent(), Closed: true, Span: p.span(start)}
		case t.Is("?."):
			p.next()
			switch {
			case p.at("(") && allowCall:
				args, closed := p.parseArguments()
				expr = &Call{Callee: expr, Args: args, Optional: true, Closed: closed, Span: p.span(start)}
			case p.at("["):
				expr = p.parseComputed(expr, start, true)
			default:
				expr = &Member{Object: expr, Property: p.parsePropertyIdent(), Optional: true, Closed: true, Span: p.span(start)}
			}
		case t.Is("["):
			expr = p.parseComputed(expr, start, false)
		case t.Is("(") && allowCall:
			args, closed := p.parseArguments()
			expr = &Call{Callee: expr, Args: args, Closed: closed, Span: p.span(start)}
		case t.Kind == Template:
			p.next()
			quasi := &TemplateLit{Span: Span{Start: t.Start, End: t.End}, Raw: t.Text, Unterminated: t.Unterminated}
			p.noteUnterminated(t)
			expr = &TaggedTemplate{Tag: expr, Quasi: quasi, Span: p.span(start)}
		default:
			return expr
		}
	}
}

// parsePropertyIdent parses the name after a dot. A missing name yields an
// empty identifier positioned where the name would start.
func (p *parser) parsePropertyIdent() *Ident {
	t := p.tok()
	if t.Kind == IdentToken || t.Kind == Keyword || t.Kind == PrivateName {
		p.next()
		return &Ident{Span: Span{Start: t.Start, End: t.End}, Name: t.Text}
	}
	at := t.Start
	if t.Kind != EOF {
		at = p.lastEnd
	}
	p.errorf("expected property name, found %s", describe(t))
	return &Ident{Span: Span{Start: at, End: at}}
}

func (p *parser) parseComputed(object Expr, start int, optional bool) Expr {
	p.expect("[")
	prop := p.parseExpression(false)
	closed := p.expect("]")
	return &Member{
		Span:     p.span(start),
		Object:   object,
		Property: prop,
		Computed: true,
		Optional: optional,
		Closed:   closed,
	}
}

// parseArguments parses a parenthesized argument list. closed is false when
// input ended before the closing parenthesis.
func (p *parser) parseArguments() (args []Expr, closed bool) {
	p.expect("(")
	for !p.atEOF() && !p.at(")") {
		before := p.pos
		start := p.tok().Start
		var arg Expr
		if p.eat("...") {
			arg = &Spread{Arg: p.parseAssign(false)}
			arg.(*Spread).Span = p.span(start)
		} else {
			arg = p.parseAssign(false)
		}
		if p.pos == before {
			break
		}
		args = append(args, arg)
		if !p.eat(",") {
			break
		}
	}
	return args, p.expect(")")
}

func (p *parser) parsePrimary() Expr {
	t := p.tok()
	start := t.Start
	switch t.Kind {
	case IdentToken:
		if t.Text == "async" && p.peek(1).Is("function") && !p.peek(1).NewlineBefore {
			return p.parseFunction()
		}
		p.next()
		return &Ident{Span: Span{Start: t.Start, End: t.End}, Name: t.Text}
	case PrivateName:
		p.next()
		return &Ident{Span: Span{Start: t.Start, End: t.End}, Name: t.Text}
	case Keyword:
		switch t.Text {
		case "this", "super":
			p.next()
			return &Ident{Span: Span{Start: t.Start, End: t.End}, Name: t.Text}
		case "null", "true", "false":
			p.next()
			return &Literal{Span: Span{Start: t.Start, End: t.End}, Kind: Keyword, Raw: t.Text}
		case "function":
			return p.parseFunction()
		case "class":
			return p.parseClass()
		case "new":
			return p.parseNew()
		case "import":
			p.next()
			if p.eat(".") {
				prop := p.parsePropertyIdent()
				return &MetaProperty{Span: p.span(start), Meta: "import", Property: prop.Name}
			}
			return &Ident{Span: Span{Start: t.Start, End: t.End}, Name: t.Text}
		}
	case Number, String, Regex:
		p.next()
		p.noteUnterminated(t)
		return &Literal{Span: Span{Start: t.Start, End: t.End}, Kind: t.Kind, Raw: t.Text, Unterminated: t.Unterminated}
	case Template:
		p.next()
		p.noteUnterminated(t)
		return &TemplateLit{Span: Span{Start: t.Start, End: t.End}, Raw: t.Text, Unterminated: t.Unterminated}
	case Punct:
		switch t.Text {
		case "(":
			p.next()
			inner := p.parseExpression(false)
			closed := p.expect(")")
			return &Paren{Span: p.span(start), Expr: inner, Closed: closed}
		case "[":
			return p.parseArray()
		case "{":
			return p.parseObject()
		}
	}

	p.errorf("unexpected %s", describe(t))
	return &Bad{Span: Span{Start: start, End: start}}
}

// noteUnterminated records a literal cut off by the end of input. Only open
// templates can be completed by more input; strings and regexes cannot span
// lines.
func (p *parser) noteUnterminated(t Token) {
	if !t.Unterminated {
		return
	}
	switch t.Kind {
	case Template:
		p.errs = append(p.errs, &SyntaxError{Pos: t.Start, Msg: "unterminated template literal", AtEnd: true})
	case String:
		p.errs = append(p.errs, &SyntaxError{Pos: t.Start, Msg: "unterminated string literal"})
	case Regex:
		p.errs = append(p.errs, &SyntaxError{Pos: t.Start, Msg: "unterminated regular expression"})
	}
}

func (p *parser) parseArray() Expr {
	start := p.next().Start
	arr := &Array{}
	for !p.atEOF() && !p.at("]") {
		if p.eat(",") {
			arr.Elems = append(arr.Elems, nil)
			continue
		}
		before := p.pos
		estart := p.tok().Start
		var elem Expr
		if p.eat("...") {
			elem = &Spread{Arg: p.parseAssign(false)}
			elem.(*Spread).Span = p.span(estart)
		} else {
			elem = p.parseAssign(false)
		}
		if p.pos == before {
			break
		}
		arr.Elems = append(arr.Elems, elem)
		if !p.at("]") && !p.expect(",") {
			break
		}
	}
	p.expect("]")
	arr.Span = p.span(start)
	return arr
}

func (p *parser) parseObject() Expr {
	start := p.next().Start
	obj := &Object{}
	for !p.atEOF() && !p.at("}") {
		before := p.pos
		prop := p.parseObjectProperty()
		if p.pos == before {
			break
		}
		obj.Props = append(obj.Props, prop)
		if !p.eat(",") {
			break
		}
	}
	p.expect("}")
	obj.Span = p.span(start)
	return obj
}

// isModifier reports whether the current word modifies the member that
// follows rather than naming it.
func (p *parser) isModifier(word string) bool {
	if !p.isWord(word) {
		return false
	}
	n := p.peek(1)
	if n.Kind == EOF {
		return false
	}
	if word == "async" && n.NewlineBefore {
		return false
	}
	return !(n.Is(",") || n.Is(":") || n.Is("(") || n.Is("}") || n.Is("=") || n.Is(";"))
}

func (p *parser) parseObjectProperty() *Property {
	start := p.tok().Start
	if p.eat("...") {
		return &Property{Kind: PropSpread, Value: p.parseAssign(false), Span: p.span(start)}
	}

	prop := &Property{Kind: PropInit}
	async, gen := false, false
	switch {
	case p.isModifier("get"):
		p.next()
		prop.Kind = PropGet
	case p.isModifier("set"):
		p.next()
		prop.Kind = PropSet
	case p.isModifier("async"):
		p.next()
		async = true
	}
	if p.eat("*") {
		gen = true
	}

	keyTok := p.tok()
	prop.Key, prop.Computed = p.parsePropertyKey()

	switch {
	case prop.Kind == PropGet || prop.Kind == PropSet || async || gen || p.at("("):
		if prop.Kind == PropInit {
			prop.Kind = PropMethod
		}
		prop.Value = p.parseFunctionRest(start, nil, async, gen)
	case p.eat(":"):
		prop.Value = p.parseAssign(false)
	default:
		id, ok := prop.Key.(*Ident)
		if !ok || prop.Computed || keyTok.Kind != IdentToken {
			p.errorf("unexpected %s in object literal", describe(p.tok()))
			prop.Value = prop.Key
			break
		}
		prop.Shorthand = true
		prop.Value = id
		if p.at("=") {
			p.errorf("invalid shorthand property initializer")
			p.next()
			p.parseAssign(false)
		}
	}
	prop.Span = p.span(start)
	return prop
}

// parsePropertyKey parses an object or class member key.
func (p *parser) parsePropertyKey() (Expr, bool) {
	t := p.tok()
	switch t.Kind {
	case IdentToken, Keyword, PrivateName:
		p.next()
		return &Ident{Span: Span{Start: t.Start, End: t.End}, Name: t.Text}, false
	case String, Number:
		p.next()
		p.noteUnterminated(t)
		return &Literal{Span: Span{Start: t.Start, End: t.End}, Kind: t.Kind, Raw: t.Text, Unterminated: t.Unterminated}, false
	case Punct:
		if t.Text == "[" {
			p.next()
			key := p.parseAssign(false)
			p.expect("]")
			return key, true
		}
	}
	p.errorf("expected property name, found %s", describe(t))
	return &Bad{Span: Span{Start: t.Start, End: t.Start}}, false
}

// parseFunction parses a function expression or declaration starting at
// async or function.
func (p *parser) parseFunction() *Function {
	start := p.tok().Start
	async := false
	if p.isWord("async") {
		p.next()
		async = true
	}
	p.expect("function")
	gen := p.eat("*")
	var name *Ident
	if t := p.tok(); t.Kind == IdentToken {
		p.next()
		name = &Ident{Span: Span{Start: t.Start, End: t.End}, Name: t.Text}
	}
	return p.parseFunctionRest(start, name, async, gen)
}

// parseFunctionRest parses parameters and body.
func (p *parser) parseFunctionRest(start int, name *Ident, async, gen bool) *Function {
	fn := &Function{Name: name, Async: async, Generator: gen}
	fn.Params = p.parseParams()
	saved := p.generator
	p.generator = gen
	fn.Body = p.parseBlock()
	p.generator = saved
	fn.Span = p.span(start)
	return fn
}

func (p *parser) parseParams() []Pattern {
	var params []Pattern
	if !p.expect("(") {
		return nil
	}
	for !p.atEOF() && !p.at(")") {
		before := p.pos
		start := p.tok().Start
		var param Pattern
		if p.eat("...") {
			param = &RestElement{Arg: p.parseBindingTarget()}
			param.(*RestElement).Span = p.span(start)
		} else {
			param = p.parseBindingElement()
		}
		if p.pos == before {
			break
		}
		params = append(params, param)
		if !p.eat(",") {
			break
		}
	}
	p.expect(")")
	return params
}

// parseBindingTarget parses an identifier or destructuring pattern.
func (p *parser) parseBindingTarget() Pattern {
	t := p.tok()
	switch {
	case t.Kind == IdentToken:
		p.next()
		return &Ident{Span: Span{Start: t.Start, End: t.End}, Name: t.Text}
	case t.Is("["):
		return p.parseArrayPattern()
	case t.Is("{"):
		return p.parseObjectPattern()
	}
	p.errorf("expected binding, found %s", describe(t))
	return &BadPattern{Span: Span{Start: t.Start, End: t.Start}}
}

// parseBindingElement parses a binding target with an optional default.
func (p *parser) parseBindingElement() Pattern {
	start := p.tok().Start
	target := p.parseBindingTarget()
	if !p.eat("=") {
		return target
	}
	def := p.parseAssign(false)
	return &AssignPattern{Span: p.span(start), Left: target, Right: def}
}

func (p *parser) parseArrayPattern() Pattern {
	start := p.next().Start
	pat := &ArrayPattern{}
	for !p.atEOF() && !p.at("]") {
		if p.eat(",") {
			pat.Elems = append(pat.Elems, nil)
			continue
		}
		before := p.pos
		estart := p.tok().Start
		var elem Pattern
		if p.eat("...") {
			elem = &RestElement{Arg: p.parseBindingTarget()}
			elem.(*RestElement).Span = p.span(estart)
		} else {
			elem = p.parseBindingElement()
		}
		if p.pos == before {
			break
		}
		pat.Elems = append(pat.Elems, elem)
		if !p.at("]") && !p.expect(",") {
			break
		}
	}
	p.expect("]")
	pat.Span = p.span(start)
	return pat
}

func (p *parser) parseObjectPattern() Pattern {
	start := p.next().Start
	pat := &ObjectPattern{}
	for !p.atEOF() && !p.at("}") {
		before := p.pos
		if p.eat("...") {
			pat.Rest = p.parseBindingTarget()
		} else {
			pstart := p.tok().Start
			keyTok := p.tok()
			key, computed := p.parsePropertyKey()
			prop := &PatternProp{Key: key, Computed: computed}
			if p.eat(":") {
				prop.Value = p.parseBindingElement()
			} else {
				id, ok := key.(*Ident)
				if !ok || computed || keyTok.Kind != IdentToken {
					p.errorf("unexpected %s in object pattern", describe(p.tok()))
					prop.Value = &BadPattern{Span: key.Pos()}
				} else {
					prop.Shorthand = true
					prop.Value = id
					if p.eat("=") {
						def := p.parseAssign(false)
						prop.Value = &AssignPattern{Span: p.span(pstart), Left: id, Right: def}
					}
				}
			}
			prop.Span = p.span(pstart)
			pat.Props = append(pat.Props, prop)
		}
		if p.pos == before {
			break
		}
		if !p.eat(",") {
			break
		}
	}
	p.expect("}")
	pat.Span = p.span(start)
	return pat
}

func (p *parser) parseClass() *Class {
	start := p.next().Start
	cls := &Class{}
	if t := p.tok(); t.Kind == IdentToken {
		p.next()
		cls.Name = &Ident{Span: Span{Start: t.Start, End: t.End}, Name: t.Text}
	}
	if p.eat("extends") {
		cls.Super = p.parseLHS()
	}
	p.expect("{")
	for !p.atEOF() && !p.at("}") {
		if p.eat(";") {
			continue
		}
		before := p.pos
		m := p.parseClassMember()
		if p.pos == before {
			p.errorf("unexpected %s in class body", describe(p.tok()))
			p.next()
			continue
		}
		cls.Members = append(cls.Members, m)
	}
	p.expect("}")
	cls.Span = p.span(start)
	return cls
}

func (p *parser) parseClassMember() *ClassMember {
	start := p.tok().Start
	m := &ClassMember{Kind: MemberMethod}
	if p.isModifier("static") {
		p.next()
		m.Static = true
		if p.at("{") {
			m.Kind = MemberStaticBlock
			m.Block = p.parseBlock()
			m.Span = p.span(start)
			return m
		}
	}

	async, gen := false, false
	switch {
	case p.isModifier("get"):
		p.next()
		m.Kind = MemberGetter
	case p.isModifier("set"):
		p.next()
		m.Kind = MemberSetter
	case p.isModifier("async"):
		p.next()
		async = true
	}
	if p.eat("*") {
		gen = true
	}

	m.Key, m.Computed = p.parsePropertyKey()
	if p.at("(") {
		if id, ok := m.Key.(*Ident); ok && m.Kind == MemberMethod && !m.Static && !m.Computed && id.Name == "constructor" {
			m.Kind = MemberConstructor
		}
		m.Value = p.parseFunctionRest(start, nil, async, gen)
		m.Span = p.span(start)
		return m
	}

	if m.Kind != MemberMethod || async || gen {
		p.errorf("expected method parameters, found %s", describe(p.tok()))
	}
	m.Kind = MemberField
	if p.eat("=") {
		m.Init = p.parseAssign(false)
	}
	p.consumeSemicolon()
	m.Span = p.span(start)
	return m
}
