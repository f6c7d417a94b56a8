package jsparse

// Inspect traverses the tree rooted at n in depth-first order, calling f for
// each node. If f returns false the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if isNil(n) || !f(n) {
		return
	}
	for _, c := range children(n) {
		Inspect(c, f)
	}
}

// isNil catches typed nil pointers stored in interfaces.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Block:
		return v == nil
	case *Function:
		return v == nil
	case *Ident:
		return v == nil
	case *TemplateLit:
		return v == nil
	case *VarDecl:
		return v == nil
	}
	return false
}

func children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if !isNil(c) {
				out = append(out, c)
			}
		}
	}
	addExpr := func(e Expr) {
		if e != nil {
			add(e)
		}
	}
	addPattern := func(p Pattern) {
		if p != nil {
			add(p)
		}
	}
	addStmt := func(s Stmt) {
		if s != nil {
			add(s)
		}
	}

	switch v := n.(type) {
	case *Program:
		for _, s := range v.Body {
			addStmt(s)
		}
	case *TaggedTemplate:
		addExpr(v.Tag)
		add(v.Quasi)
	case *Member:
		addExpr(v.Object)
		if v.Computed {
			addExpr(v.Property)
		}
	case *Call:
		addExpr(v.Callee)
		for _, a := range v.Args {
			addExpr(a)
		}
	case *New:
		addExpr(v.Callee)
		for _, a := range v.Args {
			addExpr(a)
		}
	case *Unary:
		addExpr(v.Arg)
	case *Update:
		addExpr(v.Arg)
	case *Binary:
		addExpr(v.Left)
		addExpr(v.Right)
	case *Assign:
		addExpr(v.Target)
		addExpr(v.Value)
	case *Conditional:
		addExpr(v.Test)
		addExpr(v.Cons)
		addExpr(v.Alt)
	case *Sequence:
		for _, e := range v.List {
			addExpr(e)
		}
	case *Spread:
		addExpr(v.Arg)
	case *Await:
		addExpr(v.Arg)
	case *Yield:
		addExpr(v.Arg)
	case *Paren:
		addExpr(v.Expr)
	case *Array:
		for _, e := range v.Elems {
			addExpr(e)
		}
	case *Object:
		for _, p := range v.Props {
			add(p)
		}
	case *Property:
		if v.Computed {
			addExpr(v.Key)
		}
		if !v.Shorthand {
			addExpr(v.Value)
		}
	case *Function:
		if v.Name != nil {
			add(v.Name)
		}
		for _, p := range v.Params {
			addPattern(p)
		}
		add(v.Body)
	case *Arrow:
		for _, p := range v.Params {
			addPattern(p)
		}
		if v.Body != nil {
			add(v.Body)
		}
	case *Class:
		if v.Name != nil {
			add(v.Name)
		}
		addExpr(v.Super)
		for _, m := range v.Members {
			add(m)
		}
	case *ClassMember:
		if v.Computed {
			addExpr(v.Key)
		}
		if v.Value != nil {
			add(v.Value)
		}
		addExpr(v.Init)
		if v.Block != nil {
			add(v.Block)
		}
	case *ObjectPattern:
		for _, p := range v.Props {
			add(p)
		}
		addPattern(v.Rest)
	case *PatternProp:
		if v.Computed {
			addExpr(v.Key)
		}
		addPattern(v.Value)
	case *ArrayPattern:
		for _, e := range v.Elems {
			addPattern(e)
		}
	case *AssignPattern:
		addPattern(v.Left)
		addExpr(v.Right)
	case *RestElement:
		addPattern(v.Arg)
	case *ExprStmt:
		addExpr(v.Expr)
	case *VarDecl:
		for _, d := range v.Decls {
			add(d)
		}
	case *Declarator:
		addPattern(v.Target)
		addExpr(v.Init)
	case *FuncDecl:
		add(v.Func)
	case *ClassDecl:
		add(v.Class)
	case *Block:
		for _, s := range v.Body {
			addStmt(s)
		}
	case *If:
		addExpr(v.Test)
		addStmt(v.Cons)
		addStmt(v.Alt)
	case *For:
		if v.Init != nil {
			add(v.Init)
		}
		addExpr(v.Test)
		addExpr(v.Update)
		addStmt(v.Body)
	case *While:
		addExpr(v.Test)
		addStmt(v.Body)
	case *DoWhile:
		addStmt(v.Body)
		addExpr(v.Test)
	case *Return:
		addExpr(v.Arg)
	case *Throw:
		addExpr(v.Arg)
	case *Try:
		add(v.Block)
		addPattern(v.Param)
		if v.Handler != nil {
			add(v.Handler)
		}
		if v.Finalizer != nil {
			add(v.Finalizer)
		}
	case *Switch:
		addExpr(v.Disc)
		for _, c := range v.Cases {
			add(c)
		}
	case *Case:
		addExpr(v.Test)
		for _, s := range v.Body {
			addStmt(s)
		}
	case *Labeled:
		addStmt(v.Body)
	}
	return out
}
