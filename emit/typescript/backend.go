// Package typescript renders TypeScript type declarations.
//
// Properties are keyed by their wire names, so no runtime mapping is needed
// between the JSON on the wire and the declared types.
package typescript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/teranos/typeforge/classify"
	"github.com/teranos/typeforge/emit"
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/ir"
	"github.com/teranos/typeforge/naming"
)

const indent = "  "

var bareKey = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Backend implements emit.Backend for TypeScript
type Backend struct{}

// New creates a TypeScript backend
func New() *Backend {
	return &Backend{}
}

// Language returns "typescript"
func (b *Backend) Language() string { return "typescript" }

// FileExtension returns "ts"
func (b *Backend) FileExtension() string { return "ts" }

// Rules returns the TypeScript identifier rules
func (b *Backend) Rules() naming.Rules { return naming.TypeScriptRules }

type renderer struct {
	in  *emit.Input
	out *emit.Output
}

// Emit renders every declaration of in.Graph in order
func (b *Backend) Emit(in *emit.Input) (*emit.Output, error) {
	r := &renderer{in: in, out: emit.NewOutput(b.Language())}
	r.out.Module = in.Options.Module

	for _, d := range in.Graph.Decls() {
		var err error
		switch d := d.(type) {
		case *ir.Struct:
			err = r.writeInterface(d)
		case *ir.Enum:
			err = r.writeEnum(d)
		case *ir.Alias:
			err = r.writeAlias(d)
		}
		if err != nil {
			return nil, err
		}
	}
	return r.out, nil
}

// RenderFile assembles the module: header comment and declarations
func (b *Backend) RenderFile(out *emit.Output) string {
	var sb strings.Builder
	sb.WriteString("// " + out.Banner() + "\n")
	for _, d := range out.Declarations {
		sb.WriteString("\n")
		sb.WriteString(d.Code)
		sb.WriteString("\n")
	}
	return sb.String()
}

// propertyKey quotes wire names that are not bare identifiers.
func propertyKey(wire string) string {
	if bareKey.MatchString(wire) {
		return wire
	}
	return strconv.Quote(wire)
}

func generics(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "<" + strings.Join(params, ", ") + ">"
}

func primitiveType(k ir.PrimitiveKind) string {
	switch {
	case k == ir.String || k == ir.Char:
		return "string"
	case k == ir.Bool:
		return "boolean"
	case k == ir.Unit:
		return "null"
	}
	return "number"
}

func (r *renderer) formatType(t ir.TypeRef, params []string, decl, member string) (string, error) {
	switch t.Kind {
	case ir.RefPrimitive:
		return primitiveType(t.Primitive), nil
	case ir.RefList:
		elem, err := r.formatType(*t.Elem, params, decl, member)
		if err != nil {
			return "", err
		}
		if strings.Contains(elem, " ") {
			elem = "(" + elem + ")"
		}
		return elem + "[]", nil
	case ir.RefOptional:
		elem, err := r.formatType(*t.Elem, params, decl, member)
		if err != nil {
			return "", err
		}
		return elem + " | null", nil
	case ir.RefMap:
		if t.Key.IsTypeVar(params) {
			return "", errors.Located(errors.ErrUnsupportedShape, decl, member,
				"map key cannot be the type variable %s", t.Key.Name)
		}
		key, err := r.formatType(*t.Key, params, decl, member)
		if err != nil {
			return "", err
		}
		val, err := r.formatType(*t.Value, params, decl, member)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Record<%s, %s>", key, val), nil
	case ir.RefNamed:
		if mapped, ok := r.in.Mapped(t.Name); ok {
			return mapped, nil
		}
		switch t.Name {
		case "DateTime", "Url":
			return "string", nil
		}
		if len(t.Args) == 0 {
			return t.Name, nil
		}
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			s, err := r.formatType(a, params, decl, member)
			if err != nil {
				return "", err
			}
			args[i] = s
		}
		return fmt.Sprintf("%s<%s>", t.Name, strings.Join(args, ", ")), nil
	}
	return "", errors.Located(errors.ErrUnsupportedShape, decl, member, "no rendering for %s reference", t.Kind)
}

func writeDoc(sb *strings.Builder, lines []string, pad string) {
	if len(lines) == 0 {
		return
	}
	sb.WriteString(pad + "/**\n")
	for _, l := range lines {
		sb.WriteString(strings.TrimRight(pad+" * "+l, " ") + "\n")
	}
	sb.WriteString(pad + " */\n")
}

// property renders "key: T" or "key?: T".
type property struct {
	key      string
	ident    string // parameter name in constructors
	typ      string
	optional bool
	doc      []string
}

func (p property) String() string {
	if p.optional {
		return fmt.Sprintf("%s?: %s", p.key, p.typ)
	}
	return fmt.Sprintf("%s: %s", p.key, p.typ)
}

func (r *renderer) properties(owner string, fields []ir.Field, params []string) ([]property, error) {
	props := make([]property, 0, len(fields))
	for _, f := range fields {
		res, err := r.in.Field(owner, f.Name)
		if err != nil {
			return nil, err
		}
		typ, err := r.formatType(f.Type, params, owner, f.Name)
		if err != nil {
			return nil, err
		}
		props = append(props, property{
			key:      propertyKey(res.WireName(r.in.Names.Rules())),
			ident:    res.Identifier,
			typ:      typ,
			optional: f.Optional,
			doc:      f.Doc,
		})
	}
	return props, nil
}

func (r *renderer) writeInterface(s *ir.Struct) error {
	props, err := r.properties(s.Name, s.Fields, s.Generics)
	if err != nil {
		return err
	}

	var sb strings.Builder
	writeDoc(&sb, s.Doc, "")
	if len(props) == 0 {
		sb.WriteString(fmt.Sprintf("export interface %s%s {}", s.Name, generics(s.Generics)))
	} else {
		sb.WriteString(fmt.Sprintf("export interface %s%s {\n", s.Name, generics(s.Generics)))
		for _, p := range props {
			writeDoc(&sb, p.doc, indent)
			sb.WriteString(indent + p.String() + ";\n")
		}
		sb.WriteString("}")
	}
	r.out.Add(s.Name, r.in.SourceOf(s), r.in.StructKind(s.Name), sb.String())
	return nil
}

func (r *renderer) writeAlias(a *ir.Alias) error {
	typ, err := r.formatType(a.Target, a.Generics, a.Name, "")
	if err != nil {
		return err
	}
	var sb strings.Builder
	writeDoc(&sb, a.Doc, "")
	sb.WriteString(fmt.Sprintf("export type %s%s = %s;", a.Name, generics(a.Generics), typ))
	r.out.Add(a.Name, a.Name, emit.KindAlias, sb.String())
	return nil
}

func (r *renderer) writeEnum(e *ir.Enum) error {
	shape, err := r.in.Shape(e)
	if err != nil {
		return err
	}
	if len(shape.Variants) == 0 {
		return errors.Located(errors.ErrUnsupportedShape, e.Name, "", "enum has no emitted variants")
	}
	if shape.Kind == classify.PureEnumeration {
		values := make([]string, len(shape.Variants))
		for i, v := range shape.Variants {
			values[i] = strconv.Quote(v.Discriminant)
		}
		var sb strings.Builder
		writeDoc(&sb, e.Doc, "")
		sb.WriteString(fmt.Sprintf("export type %s = %s;", e.Name, strings.Join(values, " | ")))
		r.out.Add(e.Name, e.Name, emit.KindEnum, sb.String())
		return nil
	}
	return r.writeTaggedUnion(e, shape)
}

type member struct {
	v        classify.VariantShape
	tagValue string // TagsEnum.Member
	payload  string
}

func (r *renderer) writeTaggedUnion(e *ir.Enum, shape *classify.Shape) error {
	tagsName := e.Name + "Types"
	if _, taken := r.in.Graph.Lookup(tagsName); taken {
		return errors.Located(errors.ErrUnsupportedShape, e.Name, "", "discriminant enum %s collides with a declaration", tagsName)
	}

	var tags strings.Builder
	tags.WriteString(fmt.Sprintf("export enum %s {\n", tagsName))
	members := make([]member, 0, len(shape.Variants))
	for _, v := range shape.Variants {
		res, err := r.in.Member(e.Name, v.Name)
		if err != nil {
			return err
		}
		tags.WriteString(fmt.Sprintf("%s%s = %s,\n", indent, res.Identifier, strconv.Quote(v.Discriminant)))
		m := member{v: v, tagValue: tagsName + "." + res.Identifier}
		switch v.Payload {
		case classify.PayloadNone:
		case classify.PayloadAnonymous:
			return errors.Located(errors.ErrUnsupportedShape, e.Name, v.Name, "anonymous payload was not promoted")
		default:
			typ, err := r.formatType(*v.Type, e.Generics, e.Name, v.Name)
			if err != nil {
				return err
			}
			m.payload = typ
		}
		members = append(members, m)
	}
	tags.WriteString("}")
	r.out.Add(tagsName, e.Name, emit.KindTags, tags.String())

	shared, err := r.properties(e.Name, e.SharedFields, e.Generics)
	if err != nil {
		return err
	}
	rules := r.in.Names.Rules()
	tag := r.in.Names.TagField(e.Name)
	content := r.in.Names.ContentField(e.Name)
	tagKey := propertyKey(tag.WireName(rules))
	contentKey := propertyKey(content.WireName(rules))

	var sb strings.Builder
	writeDoc(&sb, e.Doc, "")
	sb.WriteString(fmt.Sprintf("export type %s%s =\n", e.Name, generics(e.Generics)))
	for i, m := range members {
		parts := []string{fmt.Sprintf("%s: %s", tagKey, m.tagValue)}
		if m.payload == "" {
			parts = append(parts, contentKey+"?: null")
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", contentKey, m.payload))
		}
		for _, p := range shared {
			parts = append(parts, p.String())
		}
		sb.WriteString(fmt.Sprintf("%s| { %s }", indent, strings.Join(parts, "; ")))
		if i == len(members)-1 {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}

	if r.in.Options.Constructors {
		for _, m := range members {
			ctor, err := r.constructor(e, tagKey, contentKey, content, shared, m)
			if err != nil {
				return err
			}
			sb.WriteString("\n")
			sb.WriteString(ctor)
		}
	}

	r.out.Add(e.Name, e.Name, emit.KindUnion, strings.TrimRight(sb.String(), "\n"))
	return nil
}

func (r *renderer) constructor(e *ir.Enum, tagKey, contentKey string, content naming.Resolution, shared []property, m member) (string, error) {
	fn, err := r.in.Names.Ident(e.Name, m.v.Constructor, naming.Camel)
	if err != nil {
		return "", err
	}

	var params, optional []string
	fields := []string{fmt.Sprintf("%s: %s", tagKey, m.tagValue)}
	if m.payload != "" {
		params = append(params, fmt.Sprintf("%s: %s", content.Identifier, m.payload))
		fields = append(fields, fmt.Sprintf("%s: %s", contentKey, content.Identifier))
	}
	// optional parameters must follow required ones
	for _, p := range shared {
		if p.optional {
			optional = append(optional, fmt.Sprintf("%s?: %s", p.ident, p.typ))
		} else {
			params = append(params, fmt.Sprintf("%s: %s", p.ident, p.typ))
		}
		fields = append(fields, fmt.Sprintf("%s: %s", p.key, p.ident))
	}
	params = append(params, optional...)

	typ := e.Name + generics(e.Generics)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("export function %s%s(%s): %s {\n", fn, generics(e.Generics), strings.Join(params, ", "), typ))
	sb.WriteString(fmt.Sprintf("%sreturn { %s };\n", indent, strings.Join(fields, ", ")))
	sb.WriteString("}\n")
	return sb.String(), nil
}
