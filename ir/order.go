package ir

// References returns the names of the declarations d refers to, in first
// appearance order. Type parameters of d and payloads of skipped variants
// are not references.
func References(d Decl) []string {
	info := d.Info()
	seen := make(map[string]bool)
	var refs []string
	visit := func(t TypeRef) {
		t.Walk(func(r TypeRef) {
			if r.Kind != RefNamed || r.IsTypeVar(info.Generics) || r.Name == info.Name || seen[r.Name] {
				return
			}
			seen[r.Name] = true
			refs = append(refs, r.Name)
		})
	}
	visitFields := func(fields []Field) {
		for _, f := range fields {
			visit(f.Type)
		}
	}

	switch d := d.(type) {
	case *Struct:
		visitFields(d.Fields)
	case *Enum:
		visitFields(d.SharedFields)
		for _, v := range d.Variants {
			if v.Skip {
				continue
			}
			switch v.Payload.Kind {
			case PayloadTyped:
				visit(*v.Payload.Type)
			case PayloadAnonymous:
				visitFields(v.Payload.Fields)
			}
		}
	case *Alias:
		visit(d.Target)
	}
	return refs
}

// Sort returns a copy of g in which every declaration follows the
// declarations it references. Among declarations with no ordering
// constraint the input order is kept, so an already ordered graph comes back
// unchanged. A reference cycle is broken at its earliest member.
func Sort(g *Graph) *Graph {
	n := len(g.decls)
	deps := make([][]int, n)
	for i, d := range g.decls {
		for _, name := range References(d) {
			// external names impose no order
			if j, ok := g.index[name]; ok {
				deps[i] = append(deps[i], j)
			}
		}
	}

	placed := make([]bool, n)
	order := make([]Decl, 0, n)
	ready := func(i int) bool {
		for _, j := range deps[i] {
			if !placed[j] {
				return false
			}
		}
		return true
	}

	for len(order) < n {
		pick := -1
		for i := 0; i < n; i++ {
			if !placed[i] && ready(i) {
				pick = i
				break
			}
		}
		if pick < 0 {
			// every remaining declaration waits on another, so some lie on a cycle
			for i := 0; i < n; i++ {
				if !placed[i] && onCycle(i, deps, placed) {
					pick = i
					break
				}
			}
		}
		placed[pick] = true
		order = append(order, g.decls[pick])
	}

	out := &Graph{decls: make([]Decl, n), index: make(map[string]int, n)}
	for i, d := range order {
		out.decls[i] = d.cloneDecl()
		out.index[d.Info().Name] = i
	}
	return out
}

// onCycle reports whether start reaches itself through unplaced declarations.
func onCycle(start int, deps [][]int, placed []bool) bool {
	visited := make([]bool, len(deps))
	stack := append([]int(nil), deps[start]...)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if i == start {
			return true
		}
		if placed[i] || visited[i] {
			continue
		}
		visited[i] = true
		stack = append(stack, deps[i]...)
	}
	return false
}
