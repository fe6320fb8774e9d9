// Package ir is the language-neutral type graph every backend renders from.
//
// A Graph is an ordered arena of declarations with a name index. Order is
// significant: emitters walk it front to back, so a declaration must appear
// before anything that references it by value. The only mutation the graph
// supports is inserting a declaration before an existing one, which is how
// promotion splices synthesized structs ahead of their enum. After Freeze
// that too is rejected.
package ir

import (
	"github.com/teranos/typeforge/errors"
)

// Graph is an ordered collection of uniquely named declarations.
type Graph struct {
	decls  []Decl
	index  map[string]int
	frozen bool
}

// New builds a graph in the given order. Duplicate or empty names are rejected.
func New(decls ...Decl) (*Graph, error) {
	g := &Graph{index: make(map[string]int, len(decls))}
	for _, d := range decls {
		if err := g.Append(d); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// MustNew is New for fixtures known to be valid.
func MustNew(decls ...Decl) *Graph {
	g, err := New(decls...)
	if err != nil {
		panic(err)
	}
	return g
}

// Len returns the number of declarations.
func (g *Graph) Len() int { return len(g.decls) }

// Decls returns the declarations in order. The slice is a copy; the
// declarations are shared.
func (g *Graph) Decls() []Decl {
	return append([]Decl(nil), g.decls...)
}

// Lookup finds a declaration by name.
func (g *Graph) Lookup(name string) (Decl, bool) {
	i, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.decls[i], true
}

// Index returns the position of name, or -1.
func (g *Graph) Index(name string) int {
	if i, ok := g.index[name]; ok {
		return i
	}
	return -1
}

// Enums returns every enum in graph order.
func (g *Graph) Enums() []*Enum {
	var out []*Enum
	for _, d := range g.decls {
		if e, ok := d.(*Enum); ok {
			out = append(out, e)
		}
	}
	return out
}

// Append adds a declaration at the end.
func (g *Graph) Append(d Decl) error {
	if err := g.admit(d); err != nil {
		return err
	}
	g.index[d.Info().Name] = len(g.decls)
	g.decls = append(g.decls, d)
	return nil
}

// InsertBefore places d immediately before the declaration named anchor.
func (g *Graph) InsertBefore(anchor string, d Decl) error {
	at, ok := g.index[anchor]
	if !ok {
		return errors.Located(errors.ErrInvalidGraph, anchor, "", "insertion anchor not found")
	}
	if err := g.admit(d); err != nil {
		return err
	}
	g.decls = append(g.decls, nil)
	copy(g.decls[at+1:], g.decls[at:])
	g.decls[at] = d
	for i := at; i < len(g.decls); i++ {
		g.index[g.decls[i].Info().Name] = i
	}
	return nil
}

func (g *Graph) admit(d Decl) error {
	if g.frozen {
		return errors.Wrap(errors.ErrInvalidGraph, "graph is frozen")
	}
	name := d.Info().Name
	if name == "" {
		return errors.Located(errors.ErrInvalidGraph, "", "", "declaration with empty name")
	}
	if _, dup := g.index[name]; dup {
		return errors.Located(errors.ErrInvalidGraph, name, "", "duplicate declaration")
	}
	return nil
}

// Freeze makes the graph reject further insertions.
func (g *Graph) Freeze() { g.frozen = true }

// Frozen reports whether Freeze has been called.
func (g *Graph) Frozen() bool { return g.frozen }

// Clone returns an unfrozen deep copy.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		decls: make([]Decl, len(g.decls)),
		index: make(map[string]int, len(g.index)),
	}
	for i, d := range g.decls {
		out.decls[i] = d.cloneDecl()
		out.index[d.Info().Name] = i
	}
	return out
}
