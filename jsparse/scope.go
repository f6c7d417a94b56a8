package jsparse

// HasTopLevelAwait reports whether prog awaits outside of every function
// body, either with an await expression or a for await loop.
func HasTopLevelAwait(prog *Program) bool {
	found := false
	Inspect(prog, func(n Node) bool {
		if found {
			return false
		}
		switch v := n.(type) {
		case *Function, *Arrow, *ClassMember:
			return false
		case *Await:
			found = true
			return false
		case *For:
			if v.Await {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// BoundNames lists the identifiers a binding pattern introduces, in source
// order.
func BoundNames(p Pattern) []*Ident {
	var out []*Ident
	var visit func(Pattern)
	visit = func(p Pattern) {
		switch v := p.(type) {
		case *Ident:
			out = append(out, v)
		case *AssignPattern:
			visit(v.Left)
		case *RestElement:
			visit(v.Arg)
		case *ObjectPattern:
			for _, prop := range v.Props {
				visit(prop.Value)
			}
			if v.Rest != nil {
				visit(v.Rest)
			}
		case *ArrayPattern:
			for _, e := range v.Elems {
				if e != nil {
					visit(e)
				}
			}
		}
	}
	visit(p)
	return out
}
