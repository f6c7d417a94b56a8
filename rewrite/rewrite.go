// Package rewrite prepares shell lines that await at the top level.
//
// A line such as
//
//	const user = await load(id);
//
// cannot be evaluated as a plain script. TopLevelAwait turns it into an
// async arrow that is invoked immediately, and lifts the line's declarations
// out of the arrow so the bindings outlive it:
//
//	let user;
//	(async () => {
//	void (user = await load(id));
//	})()
//
// The caller evaluates the result with promise awaiting enabled.
package rewrite

import (
	"strings"

	"github.com/jonwraymond/inspectrepl/jsparse"
)

// TopLevelAwait rewrites src when it awaits outside of any function. ok is
// false, and src is returned unchanged, when src does not parse or has
// nothing to rewrite.
func TopLevelAwait(src string) (out string, ok bool) {
	prog, err := jsparse.ParseStrict(src)
	if err != nil || !jsparse.HasTopLevelAwait(prog) {
		return src, false
	}

	var hoisted, funcs, body []string
	for i, stmt := range prog.Body {
		last := i == len(prog.Body)-1
		switch s := stmt.(type) {
		case *jsparse.VarDecl:
			if h := declare(s.Kind, s.Decls); h != "" {
				hoisted = append(hoisted, h)
			}
			for _, d := range s.Decls {
				if d.Init == nil {
					continue
				}
				body = append(body, "void ("+text(d.Target, src)+" = "+text(d.Init, src)+");")
			}
		case *jsparse.FuncDecl:
			if s.Func.Name == nil {
				body = append(body, statement(s, src))
				continue
			}
			name := s.Func.Name.Name
			hoisted = append(hoisted, "var "+name+";")
			funcs = append(funcs, name+" = "+text(s.Func, src)+";")
		case *jsparse.ClassDecl:
			if s.Class.Name == nil {
				body = append(body, statement(s, src))
				continue
			}
			name := s.Class.Name.Name
			hoisted = append(hoisted, "let "+name+";")
			body = append(body, name+" = "+text(s.Class, src)+";")
		case *jsparse.ExprStmt:
			if last {
				body = append(body, "return ("+text(s.Expr, src)+");")
				continue
			}
			body = append(body, statement(s, src))
		default:
			body = append(body, statement(s, src))
		}
	}

	var b strings.Builder
	for _, h := range hoisted {
		b.WriteString(h)
		b.WriteByte('\n')
	}
	b.WriteString("(async () => {\n")
	for _, line := range append(funcs, body...) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("})()")
	return b.String(), true
}

// declare hoists the names bound by decls. var keeps its kind; let and const
// become let so the wrapper can assign them.
func declare(kind string, decls []*jsparse.Declarator) string {
	if kind != "var" {
		kind = "let"
	}
	var names []string
	for _, d := range decls {
		for _, id := range jsparse.BoundNames(d.Target) {
			names = append(names, id.Name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return kind + " " + strings.Join(names, ", ") + ";"
}

func statement(s jsparse.Stmt, src string) string {
	t := text(s, src)
	if strings.HasSuffix(t, ";") || strings.HasSuffix(t, "}") {
		return t
	}
	return t + ";"
}

func text(n jsparse.Node, src string) string {
	return strings.TrimSpace(n.Pos().Text(src))
}
