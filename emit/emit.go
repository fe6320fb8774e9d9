// Package emit renders a promoted, classified type graph into target-language
// declarations.
//
// # Architecture
//
// Everything that is not target-specific is decided before a backend runs:
//  1. promote gives every anonymous variant payload a named struct
//  2. classify fixes each enum's shape (pure enumeration or tagged union)
//  3. naming resolves every identifier and wire alias for the target
//
// A Backend only walks the graph in order and renders. It fails only when the
// target cannot express a construct (ErrUnsupportedShape) or an identifier
// cannot be made legal (ErrIllegalIdentifier).
//
// # Implementing a New Backend
//
//  1. Create package: emit/<language>/backend.go
//  2. Implement the Backend interface
//  3. Register it in pipeline.DefaultRegistry
//  4. Add naming.Rules for the language
//
// Output must be deterministic: never iterate a map while rendering.
package emit

import (
	"fmt"

	"github.com/teranos/typeforge/classify"
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/ir"
	"github.com/teranos/typeforge/naming"
	"github.com/teranos/typeforge/promote"
)

// Backend renders declarations for one target language.
type Backend interface {
	// Language returns the language name (e.g., "python", "rust")
	Language() string

	// FileExtension returns the file extension for this language (e.g., "py", "rs")
	FileExtension() string

	// Rules returns the identifier rules naming tables are built with
	Rules() naming.Rules

	// Emit renders every declaration of in.Graph in order
	Emit(in *Input) (*Output, error)

	// RenderFile assembles a complete source file from an Output
	RenderFile(out *Output) string
}

// Options are the target-independent switches passed through from configuration.
type Options struct {
	// Constructors enables per-variant convenience constructors.
	Constructors bool
	// TypeMappings replaces named types by target type expressions.
	TypeMappings map[string]string
	// Module names the emitted file; it appears in the generated header.
	Module string
}

// Input is everything a backend reads. None of it may be modified.
type Input struct {
	Graph      *ir.Graph
	Shapes     *classify.Shapes
	Promotions promote.Promotions
	Names      *naming.Table
	Options    Options
}

// Declaration kinds reported on Output.
const (
	KindStruct   = "struct"
	KindPromoted = "promoted" // struct synthesized from an anonymous variant
	KindAlias    = "alias"
	KindEnum     = "enum"    // pure enumeration
	KindTags     = "tags"    // discriminant enumeration of a tagged union
	KindVariant  = "variant" // per-variant payload container
	KindUnion    = "union"   // tagged union wrapper
)

// Declaration is one rendered top-level item.
type Declaration struct {
	Name string
	// Source is the declaration of the input graph this was rendered from.
	// Promoted structs report their originating enum.
	Source string
	Kind   string
	Code   string
}

// Output is the ordered rendering of one graph for one target.
type Output struct {
	Language     string
	Module       string
	Declarations []Declaration
	Imports      *Imports
	// Preamble holds lines emitted after imports and before declarations.
	Preamble []string
}

// NewOutput creates an empty output for language.
func NewOutput(language string) *Output {
	return &Output{Language: language, Imports: NewImports()}
}

// Banner is the first line of every generated file.
func (o *Output) Banner() string {
	if o.Module == "" {
		return "Generated by typeforge. Do not edit."
	}
	return fmt.Sprintf("Generated by typeforge for module %s. Do not edit.", o.Module)
}

// Add appends a declaration.
func (o *Output) Add(name, source, kind, code string) {
	o.Declarations = append(o.Declarations, Declaration{Name: name, Source: source, Kind: kind, Code: code})
}

// Names returns declaration names in order.
func (o *Output) Names() []string {
	names := make([]string, len(o.Declarations))
	for i, d := range o.Declarations {
		names[i] = d.Name
	}
	return names
}

// Group is the run of declarations rendered from one source declaration.
type Group struct {
	Source       string
	Declarations []Declaration
}

// Groups partitions declarations by source, in first-appearance order.
func (o *Output) Groups() []Group {
	var groups []Group
	at := make(map[string]int)
	for _, d := range o.Declarations {
		i, ok := at[d.Source]
		if !ok {
			i = len(groups)
			at[d.Source] = i
			groups = append(groups, Group{Source: d.Source})
		}
		groups[i].Declarations = append(groups[i].Declarations, d)
	}
	return groups
}

// SourceOf returns the input declaration a graph declaration was rendered from.
func (in *Input) SourceOf(d ir.Decl) string {
	if s, ok := d.(*ir.Struct); ok && s.Origin != nil {
		return s.Origin.Enum
	}
	return d.Info().Name
}

// StructKind returns the declaration kind a struct is reported with.
func (in *Input) StructKind(name string) string {
	if in.IsPromoted(name) {
		return KindPromoted
	}
	return KindStruct
}

// IsPromoted reports whether name is a struct synthesized from an anonymous variant.
func (in *Input) IsPromoted(name string) bool {
	for _, p := range in.Promotions {
		if p.Struct == name {
			return true
		}
	}
	return false
}

// Shape returns the classification of enum e.
func (in *Input) Shape(e *ir.Enum) (*classify.Shape, error) {
	if in.Shapes != nil {
		if s, ok := in.Shapes.Get(e.Name); ok {
			return s, nil
		}
	}
	return classify.Classify(e)
}

// Field returns the naming resolution of a field, failing loudly when the
// table was built from a different graph.
func (in *Input) Field(owner, field string) (naming.Resolution, error) {
	r, ok := in.Names.Field(owner, field)
	if !ok {
		return naming.Resolution{}, errors.Located(errors.ErrInvalidGraph, owner, field, "field missing from naming table")
	}
	return r, nil
}

// Member returns the naming resolution of an enum member.
func (in *Input) Member(enum, variant string) (naming.Resolution, error) {
	r, ok := in.Names.Member(enum, variant)
	if !ok {
		return naming.Resolution{}, errors.Located(errors.ErrInvalidGraph, enum, variant, "variant missing from naming table")
	}
	return r, nil
}

// Mapped returns the configured replacement for a named type.
func (in *Input) Mapped(name string) (string, bool) {
	m, ok := in.Options.TypeMappings[name]
	return m, ok
}
