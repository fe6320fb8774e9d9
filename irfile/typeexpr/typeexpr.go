// Package typeexpr parses the textual type expressions used in IR documents.
//
// The grammar is the one ir.TypeRef.String prints, so every reference
// round-trips:
//
//	string
//	list<optional<i64>>
//	map<string, Page<User>>
//	chrono.DateTime
//
// list, map and optional are the built-in containers. Primitive names with
// no arguments become primitives; anything else is a named reference.
// Qualifiers are dropped: chrono.DateTime refers to DateTime and
// std.string to the string primitive.
package typeexpr

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/ir"
)

// expr is the parse tree of one type expression.
type expr struct {
	Pos  lexer.Position
	Name string  `parser:"@Ident"`
	Args []*expr `parser:"( \"<\" @@ ( \",\" @@ )* \">\" )?"`
}

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Identifiers may be qualified: chrono.DateTime
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*`},
	{Name: "Punct", Pattern: `[<>,]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var exprParser = participle.MustBuild[expr](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
)

// Parse reads one type expression.
func Parse(s string) (ir.TypeRef, error) {
	tree, err := exprParser.ParseString("", s)
	if err != nil {
		return ir.TypeRef{}, errors.Wrapf(err, "type expression %q", s)
	}
	t, err := tree.toRef()
	if err != nil {
		return ir.TypeRef{}, errors.Wrapf(err, "type expression %q", s)
	}
	return t, nil
}

// MustParse is Parse for expressions known to be valid.
func MustParse(s string) ir.TypeRef {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (e *expr) arity(n int) error {
	if len(e.Args) != n {
		return errors.Newf("%s: %s takes %d type argument(s), got %d", e.Pos, e.Name, n, len(e.Args))
	}
	return nil
}

func (e *expr) toRef() (ir.TypeRef, error) {
	args := make([]ir.TypeRef, len(e.Args))
	for i, a := range e.Args {
		t, err := a.toRef()
		if err != nil {
			return ir.TypeRef{}, err
		}
		args[i] = t
	}

	name := e.Name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}

	switch name {
	case "list":
		if err := e.arity(1); err != nil {
			return ir.TypeRef{}, err
		}
		return ir.List(args[0]), nil
	case "optional":
		if err := e.arity(1); err != nil {
			return ir.TypeRef{}, err
		}
		return ir.Optional(args[0]), nil
	case "map":
		if err := e.arity(2); err != nil {
			return ir.TypeRef{}, err
		}
		return ir.Map(args[0], args[1]), nil
	}

	if k, ok := ir.ParsePrimitive(name); ok {
		if len(args) > 0 {
			return ir.TypeRef{}, errors.Newf("%s: primitive %s takes no type arguments", e.Pos, name)
		}
		return ir.Primitive(k), nil
	}
	return ir.Named(name, args...), nil
}
