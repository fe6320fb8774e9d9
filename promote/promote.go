// Package promote gives anonymous enum variant payloads a name of their own.
//
// For every variant whose payload is an inline field list, Promote
// synthesizes a struct named {Enum}{Variant}, inserts it immediately before
// the enum and rewrites the variant to reference it. The input graph is never
// modified; the result graph is frozen.
package promote

import (
	"fmt"

	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/ir"
	"github.com/teranos/typeforge/naming"
)

// Promotion records one synthesized struct.
type Promotion struct {
	Enum     string
	Variant  string
	Struct   string
	Generics []string
}

// Promotions is the ordered list of structs synthesized by one run.
type Promotions []Promotion

// Lookup returns the promotion made for enum's variant.
func (p Promotions) Lookup(enum, variant string) (Promotion, bool) {
	for _, pr := range p {
		if pr.Enum == enum && pr.Variant == variant {
			return pr, true
		}
	}
	return Promotion{}, false
}

// Result is the promoted graph plus what was synthesized.
type Result struct {
	Graph      *ir.Graph
	Promotions Promotions
}

// StructName derives the synthesized struct name for a variant.
func StructName(enum, variant string) string {
	return enum + naming.UpperFirst(variant)
}

// DocLine is the generated doc comment attached to a synthesized struct.
func DocLine(enum, variant string) string {
	return fmt.Sprintf("Generated type representing the anonymous struct variant `%s` of the `%s` enum", variant, enum)
}

// Promote returns a new graph in which no emitted variant has an anonymous
// payload. Skipped variants keep theirs.
// Running it twice over equal graphs yields equal results.
func Promote(g *ir.Graph) (*Result, error) {
	out := g.Clone()
	var promotions Promotions

	for _, e := range out.Enums() {
		for i := range e.Variants {
			v := &e.Variants[i]
			// skipped variants never reach the output, so neither does their payload
			if v.Skip || v.Payload.Kind != ir.PayloadAnonymous {
				continue
			}

			name := StructName(e.Name, v.Name)
			if existing, taken := out.Lookup(name); taken {
				return nil, errors.Located(errors.ErrPromotionNameCollision, e.Name, v.Name,
					"synthesized struct %s collides with %s %s", name, existing.Kind(), name)
			}

			var generics []string
			for _, f := range v.Payload.Fields {
				generics = append(generics, f.Type.Uses(e.Generics)...)
			}
			generics = inOrder(e.Generics, generics)

			synth := &ir.Struct{
				DeclInfo: ir.DeclInfo{
					Name:     name,
					Doc:      []string{DocLine(e.Name, v.Name)},
					Generics: generics,
				},
				Fields: v.Payload.Fields,
				Origin: &ir.Origin{Enum: e.Name, Variant: v.Name},
			}
			if err := out.InsertBefore(e.Name, synth); err != nil {
				return nil, err
			}

			args := make([]ir.TypeRef, len(generics))
			for j, p := range generics {
				args[j] = ir.Named(p)
			}
			v.Payload = ir.TypedPayload(ir.Named(name, args...))

			promotions = append(promotions, Promotion{
				Enum:     e.Name,
				Variant:  v.Name,
				Struct:   name,
				Generics: generics,
			})
		}
	}

	out.Freeze()
	return &Result{Graph: out, Promotions: promotions}, nil
}

func inOrder(params, used []string) []string {
	set := make(map[string]bool, len(used))
	for _, u := range used {
		set[u] = true
	}
	var out []string
	for _, p := range params {
		if set[p] {
			out = append(out, p)
		}
	}
	return out
}
