package jsparse

import "strings"

// ParamToken renders one formal parameter for a signature hint:
//
//	a          -> "a"
//	a = 1      -> "?a"
//	...rest    -> "...rest"
//	{a, b}     -> "{a, b}"
//	[x, y]     -> "[x, y]"
//
// Anything else renders as "?".
func ParamToken(p Pattern) string {
	switch v := p.(type) {
	case *Ident:
		return v.Name
	case *AssignPattern:
		return "?" + ParamToken(v.Left)
	case *RestElement:
		return "..." + ParamToken(v.Arg)
	case *ObjectPattern:
		parts := make([]string, 0, len(v.Props)+1)
		for _, prop := range v.Props {
			parts = append(parts, fieldToken(prop))
		}
		if v.Rest != nil {
			parts = append(parts, "..."+ParamToken(v.Rest))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *ArrayPattern:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			if e != nil {
				parts[i] = ParamToken(e)
			}
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "?"
}

// fieldToken names an object pattern field by its key when the key is a
// plain name, so {a: renamed} still reads as field a.
func fieldToken(prop *PatternProp) string {
	key, ok := prop.Key.(*Ident)
	if !ok || prop.Computed {
		return ParamToken(prop.Value)
	}
	switch v := prop.Value.(type) {
	case *Ident:
		return key.Name
	case *AssignPattern:
		if _, plain := v.Left.(*Ident); plain {
			return "?" + key.Name
		}
	}
	return ParamToken(prop.Value)
}

// ParamTokens renders a whole parameter list.
func ParamTokens(params []Pattern) []string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = ParamToken(p)
	}
	return out
}

// FunctionParams finds the parameters of the first function-like node in e:
// a function or arrow, a class constructor, or the first method of an object
// literal. ok is false when e holds no function.
func FunctionParams(e Expr) (params []Pattern, ok bool) {
	for {
		paren, isParen := e.(*Paren)
		if !isParen {
			break
		}
		e = paren.Expr
	}

	switch v := e.(type) {
	case *Function:
		return v.Params, true
	case *Arrow:
		return v.Params, true
	case *Class:
		for _, m := range v.Members {
			if m.Kind == MemberConstructor && m.Value != nil {
				return m.Value.Params, true
			}
		}
		return nil, true
	case *Object:
		for _, prop := range v.Props {
			if fn, isFn := prop.Value.(*Function); isFn && prop.Kind == PropMethod {
				return fn.Params, true
			}
		}
	}
	return nil, false
}
