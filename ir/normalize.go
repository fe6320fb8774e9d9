package ir

// Normalize returns a copy of g with optionality flattened.
//
// A field typed optional<T> becomes Optional=true with Type=T, however many
// optional layers wrap it. Anywhere else optional<optional<T>> collapses to
// optional<T>. Optionality nested inside a container, as in
// list<optional<T>>, is kept.
func Normalize(g *Graph) *Graph {
	out := g.Clone()
	for _, d := range out.decls {
		switch d := d.(type) {
		case *Struct:
			normalizeFields(d.Fields)
		case *Enum:
			normalizeFields(d.SharedFields)
			for i := range d.Variants {
				p := &d.Variants[i].Payload
				switch p.Kind {
				case PayloadTyped:
					t := collapse(*p.Type)
					p.Type = &t
				case PayloadAnonymous:
					normalizeFields(p.Fields)
				}
			}
		case *Alias:
			d.Target = collapse(d.Target)
		}
	}
	if g.frozen {
		out.Freeze()
	}
	return out
}

func normalizeFields(fields []Field) {
	for i := range fields {
		f := &fields[i]
		t := collapse(f.Type)
		if t.Kind == RefOptional {
			f.Optional = true
			t = *t.Elem
		}
		f.Type = t
	}
}

// collapse removes directly nested optional layers at every depth.
func collapse(t TypeRef) TypeRef {
	switch t.Kind {
	case RefOptional:
		inner := collapse(*t.Elem)
		if inner.Kind == RefOptional {
			return inner
		}
		return Optional(inner)
	case RefList:
		return List(collapse(*t.Elem))
	case RefMap:
		return Map(collapse(*t.Key), collapse(*t.Value))
	case RefNamed:
		if len(t.Args) == 0 {
			return t
		}
		args := make([]TypeRef, len(t.Args))
		for i, a := range t.Args {
			args[i] = collapse(a)
		}
		return Named(t.Name, args...)
	}
	return t
}

// HasNestedOptional reports whether optional<optional<T>> occurs anywhere in t.
func HasNestedOptional(t TypeRef) bool {
	found := false
	t.Walk(func(r TypeRef) {
		if r.Kind == RefOptional && r.Elem.Kind == RefOptional {
			found = true
		}
	})
	return found
}
