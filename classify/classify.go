// Package classify decides how each enum is represented on the wire.
//
// An enum whose variants are all unit variants, none skipped, and which has
// no shared fields is a PureEnumeration: a bare discriminant value. Anything
// else is a TaggedUnion: a {tag, content} pair whose content type depends on
// the variant. Backends render from the Shape alone and never re-inspect
// the enum's variants.
package classify

import (
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/ir"
	"github.com/teranos/typeforge/naming"
	"github.com/teranos/typeforge/promote"
)

// Kind is the wire representation of an enum.
type Kind int

const (
	PureEnumeration Kind = iota
	TaggedUnion
)

func (k Kind) String() string {
	if k == PureEnumeration {
		return "pure-enumeration"
	}
	return "tagged-union"
}

// PayloadKind describes what a variant's content is.
type PayloadKind int

const (
	// PayloadNone: unit variant, no content.
	PayloadNone PayloadKind = iota
	// PayloadNamed: a declared or external named type.
	PayloadNamed
	// PayloadPrimitive: a built-in scalar.
	PayloadPrimitive
	// PayloadGeneric: a type variable or a list/map/optional container.
	PayloadGeneric
	// PayloadAnonymous: an inline field list that has not been promoted yet.
	PayloadAnonymous
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadNone:
		return "none"
	case PayloadNamed:
		return "named"
	case PayloadPrimitive:
		return "primitive"
	case PayloadGeneric:
		return "generic"
	case PayloadAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// VariantShape is one emitted alternative.
type VariantShape struct {
	Name         string
	Discriminant string
	Payload      PayloadKind
	Type         *ir.TypeRef // set unless Payload is PayloadNone or PayloadAnonymous
	Fields       []ir.Field  // set for PayloadAnonymous
	Generics     []string    // enum parameters the payload references
	Constructor  string      // suggested helper name, new_{enum}_{variant}
	Doc          []string
}

// TakesArgument reports whether the variant's constructor takes a payload argument.
func (v VariantShape) TakesArgument() bool {
	return v.Payload != PayloadNone
}

// Shape is the classification of one enum.
type Shape struct {
	Enum       string
	Kind       Kind
	Variants   []VariantShape // non-skipped variants, declaration order
	Skipped    []string
	TagKey     string
	ContentKey string
}

// HasUnit reports whether any emitted variant carries no content.
func (s *Shape) HasUnit() bool {
	for _, v := range s.Variants {
		if v.Payload == PayloadNone {
			return true
		}
	}
	return false
}

// Discriminants returns the wire tags in variant order.
func (s *Shape) Discriminants() []string {
	out := make([]string, len(s.Variants))
	for i, v := range s.Variants {
		out[i] = v.Discriminant
	}
	return out
}

// Variant returns the shape of the named variant, if it is emitted.
func (s *Shape) Variant(name string) (VariantShape, bool) {
	for _, v := range s.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return VariantShape{}, false
}

// Classify computes the shape of e.
func Classify(e *ir.Enum) (*Shape, error) {
	shape := &Shape{
		Enum:       e.Name,
		Kind:       PureEnumeration,
		TagKey:     e.Tag(),
		ContentKey: e.Content(),
	}
	if len(e.SharedFields) > 0 {
		shape.Kind = TaggedUnion
	}

	seen := make(map[string]string, len(e.Variants))
	for _, v := range e.Variants {
		if v.Skip {
			shape.Skipped = append(shape.Skipped, v.Name)
			shape.Kind = TaggedUnion
			continue
		}

		tag := v.WireName()
		if prev, dup := seen[tag]; dup {
			return nil, errors.Located(errors.ErrDiscriminantCollision, e.Name, v.Name,
				"wire tag %q already used by variant %s", tag, prev)
		}
		seen[tag] = v.Name

		vs := VariantShape{
			Name:         v.Name,
			Discriminant: tag,
			Constructor:  ConstructorName(e.Name, v.Name),
			Doc:          v.Doc,
		}
		switch v.Payload.Kind {
		case ir.PayloadUnit:
			vs.Payload = PayloadNone
		case ir.PayloadTyped:
			t := *v.Payload.Type
			vs.Type = &t
			vs.Payload = payloadKindOf(t, e.Generics)
			vs.Generics = t.Uses(e.Generics)
		case ir.PayloadAnonymous:
			vs.Payload = PayloadAnonymous
			vs.Fields = v.Payload.Fields
			for _, f := range v.Payload.Fields {
				vs.Generics = mergeInOrder(e.Generics, vs.Generics, f.Type.Uses(e.Generics))
			}
		}
		if vs.Payload != PayloadNone {
			shape.Kind = TaggedUnion
		}
		shape.Variants = append(shape.Variants, vs)
	}
	return shape, nil
}

func payloadKindOf(t ir.TypeRef, generics []string) PayloadKind {
	switch t.Kind {
	case ir.RefPrimitive:
		return PayloadPrimitive
	case ir.RefNamed:
		if t.IsTypeVar(generics) {
			return PayloadGeneric
		}
		return PayloadNamed
	}
	return PayloadGeneric
}

// mergeInOrder returns the union of a and b ordered as in params.
func mergeInOrder(params, a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		set[s] = true
	}
	var out []string
	for _, p := range params {
		if set[p] {
			out = append(out, p)
		}
	}
	return out
}

// ConstructorName is the canonical helper name for a variant: new_{enum}_{variant}.
func ConstructorName(enum, variant string) string {
	return "new_" + naming.ToSnakeCase(enum) + "_" + naming.ToSnakeCase(variant)
}

// Shapes is the ordered set of classifications for a graph.
type Shapes struct {
	order []*Shape
	index map[string]*Shape
}

// Get returns the shape of the named enum.
func (s *Shapes) Get(enum string) (*Shape, bool) {
	sh, ok := s.index[enum]
	return sh, ok
}

// All returns every shape in graph order.
func (s *Shapes) All() []*Shape {
	return append([]*Shape(nil), s.order...)
}

// Len returns the number of classified enums.
func (s *Shapes) Len() int { return len(s.order) }

// ClassifyGraph classifies every enum in g, stopping at the first failure.
func ClassifyGraph(g *ir.Graph) (*Shapes, error) {
	out := &Shapes{index: make(map[string]*Shape)}
	for _, e := range g.Enums() {
		shape, err := Classify(e)
		if err != nil {
			return nil, err
		}
		out.order = append(out.order, shape)
		out.index[e.Name] = shape
	}
	return out, nil
}

// Promoted returns a copy of s in which every anonymous variant refers to
// the struct synthesized for it.
func (s *Shapes) Promoted(promotions promote.Promotions) *Shapes {
	out := &Shapes{index: make(map[string]*Shape, len(s.order))}
	for _, sh := range s.order {
		c := *sh
		c.Variants = append([]VariantShape(nil), sh.Variants...)
		for i := range c.Variants {
			v := &c.Variants[i]
			if v.Payload != PayloadAnonymous {
				continue
			}
			p, ok := promotions.Lookup(sh.Enum, v.Name)
			if !ok {
				continue
			}
			args := make([]ir.TypeRef, len(p.Generics))
			for j, g := range p.Generics {
				args[j] = ir.Named(g)
			}
			t := ir.Named(p.Struct, args...)
			v.Payload, v.Type, v.Fields = PayloadNamed, &t, nil
		}
		out.order = append(out.order, &c)
		out.index[c.Enum] = &c
	}
	return out
}
