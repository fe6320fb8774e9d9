// Package rust renders serde-annotated Rust types.
//
// Tagged unions use serde's adjacent tagging, so the wire shape matches the
// Python and TypeScript renderings of the same enum: {tag: ..., content: ...}.
package rust

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/teranos/typeforge/classify"
	"github.com/teranos/typeforge/emit"
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/ir"
	"github.com/teranos/typeforge/naming"
)

const indent = "    "

const (
	deriveData = "#[derive(Serialize, Deserialize, Debug, Clone, PartialEq)]"
	deriveTags = "#[derive(Serialize, Deserialize, Debug, Clone, Copy, PartialEq, Eq, Hash)]"
)

// Backend implements emit.Backend for Rust
type Backend struct{}

// New creates a Rust backend
func New() *Backend {
	return &Backend{}
}

// Language returns "rust"
func (b *Backend) Language() string { return "rust" }

// FileExtension returns "rs"
func (b *Backend) FileExtension() string { return "rs" }

// Rules returns the Rust identifier rules
func (b *Backend) Rules() naming.Rules { return naming.RustRules }

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
			err = r.writeStruct(d)
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

// RenderFile assembles the module: header comment, use lines, declarations
func (b *Backend) RenderFile(out *emit.Output) string {
	var sb strings.Builder
	sb.WriteString("// " + out.Banner() + "\n")

	if !out.Imports.Empty() {
		var lines []string
		for _, mod := range out.Imports.Modules() {
			names := out.Imports.Names(mod)
			if len(names) == 1 {
				lines = append(lines, fmt.Sprintf("use %s::%s;", mod, names[0]))
			} else {
				lines = append(lines, fmt.Sprintf("use %s::{%s};", mod, strings.Join(names, ", ")))
			}
		}
		sort.Strings(lines)
		sb.WriteString("\n")
		sb.WriteString(strings.Join(lines, "\n"))
		sb.WriteString("\n")
	}

	for _, d := range out.Declarations {
		sb.WriteString("\n")
		sb.WriteString(d.Code)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *renderer) imp(module, name string) {
	r.out.Imports.Add(module, name)
}

func (r *renderer) serde() {
	r.imp("serde", "Deserialize")
	r.imp("serde", "Serialize")
}

func primitiveType(k ir.PrimitiveKind) string {
	switch k {
	case ir.String:
		return "String"
	case ir.Unit:
		return "()"
	}
	// the remaining canonical names are Rust's own
	return string(k)
}

func (r *renderer) formatType(t ir.TypeRef, decl, member string) (string, error) {
	switch t.Kind {
	case ir.RefPrimitive:
		return primitiveType(t.Primitive), nil
	case ir.RefList:
		elem, err := r.formatType(*t.Elem, decl, member)
		if err != nil {
			return "", err
		}
		return "Vec<" + elem + ">", nil
	case ir.RefOptional:
		elem, err := r.formatType(*t.Elem, decl, member)
		if err != nil {
			return "", err
		}
		return "Option<" + elem + ">", nil
	case ir.RefMap:
		key, err := r.formatType(*t.Key, decl, member)
		if err != nil {
			return "", err
		}
		val, err := r.formatType(*t.Value, decl, member)
		if err != nil {
			return "", err
		}
		r.imp("std::collections", "HashMap")
		return fmt.Sprintf("HashMap<%s, %s>", key, val), nil
	case ir.RefNamed:
		if mapped, ok := r.in.Mapped(t.Name); ok {
			return mapped, nil
		}
		base := t.Name
		switch t.Name {
		case "DateTime":
			r.imp("chrono", "DateTime")
			r.imp("chrono", "Utc")
			base = "DateTime<Utc>"
		case "Url":
			r.imp("url", "Url")
		}
		if len(t.Args) == 0 {
			return base, nil
		}
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			s, err := r.formatType(a, decl, member)
			if err != nil {
				return "", err
			}
			args[i] = s
		}
		return fmt.Sprintf("%s<%s>", base, strings.Join(args, ", ")), nil
	}
	return "", errors.Located(errors.ErrUnsupportedShape, decl, member, "no rendering for %s reference", t.Kind)
}

func generics(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "<" + strings.Join(params, ", ") + ">"
}

func writeDoc(sb *strings.Builder, lines []string, pad string) {
	for _, l := range lines {
		if l == "" {
			sb.WriteString(pad + "///\n")
			continue
		}
		sb.WriteString(pad + "/// " + l + "\n")
	}
}

func rename(sb *strings.Builder, res naming.Resolution, pad string) {
	if res.Alias != "" {
		sb.WriteString(fmt.Sprintf("%s#[serde(rename = %s)]\n", pad, strconv.Quote(res.Alias)))
	}
}

func (r *renderer) writeStruct(s *ir.Struct) error {
	r.serde()

	var sb strings.Builder
	writeDoc(&sb, s.Doc, "")
	sb.WriteString(deriveData + "\n")
	if len(s.Fields) == 0 {
		sb.WriteString(fmt.Sprintf("pub struct %s%s {}", s.Name, generics(s.Generics)))
		r.out.Add(s.Name, r.in.SourceOf(s), r.in.StructKind(s.Name), sb.String())
		return nil
	}

	sb.WriteString(fmt.Sprintf("pub struct %s%s {\n", s.Name, generics(s.Generics)))
	for _, f := range s.Fields {
		res, err := r.in.Field(s.Name, f.Name)
		if err != nil {
			return err
		}
		typ, err := r.formatType(f.Type, s.Name, f.Name)
		if err != nil {
			return err
		}
		writeDoc(&sb, f.Doc, indent)
		rename(&sb, res, indent)
		if f.Optional {
			sb.WriteString(indent + "#[serde(default, skip_serializing_if = \"Option::is_none\")]\n")
			typ = "Option<" + typ + ">"
		}
		sb.WriteString(fmt.Sprintf("%spub %s: %s,\n", indent, res.Identifier, typ))
	}
	sb.WriteString("}")

	r.out.Add(s.Name, r.in.SourceOf(s), r.in.StructKind(s.Name), sb.String())
	return nil
}

func (r *renderer) writeAlias(a *ir.Alias) error {
	typ, err := r.formatType(a.Target, a.Name, "")
	if err != nil {
		return err
	}
	var sb strings.Builder
	writeDoc(&sb, a.Doc, "")
	sb.WriteString(fmt.Sprintf("pub type %s%s = %s;", a.Name, generics(a.Generics), typ))
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
	r.serde()
	if shape.Kind == classify.PureEnumeration {
		code, err := r.unitEnum(e.Name, e.Doc, e.Name, shape, true)
		if err != nil {
			return err
		}
		r.out.Add(e.Name, e.Name, emit.KindEnum, code)
		return nil
	}
	return r.writeTaggedUnion(e, shape)
}

// unitEnum renders a field-less enum whose variants serialize to their discriminants.
func (r *renderer) unitEnum(name string, doc []string, enum string, shape *classify.Shape, variantDocs bool) (string, error) {
	var sb strings.Builder
	writeDoc(&sb, doc, "")
	sb.WriteString(deriveTags + "\n")
	sb.WriteString(fmt.Sprintf("pub enum %s {\n", name))
	for _, v := range shape.Variants {
		res, err := r.in.Member(enum, v.Name)
		if err != nil {
			return "", err
		}
		if variantDocs {
			writeDoc(&sb, v.Doc, indent)
		}
		rename(&sb, res, indent)
		sb.WriteString(indent + res.Identifier + ",\n")
	}
	sb.WriteString("}")
	return sb.String(), nil
}

func (r *renderer) writeTaggedUnion(e *ir.Enum, shape *classify.Shape) error {
	if len(e.SharedFields) > 0 {
		return errors.Located(errors.ErrUnsupportedShape, e.Name, e.SharedFields[0].Name,
			"adjacently tagged enums cannot carry shared fields")
	}

	tagsName := e.Name + "Types"
	if _, taken := r.in.Graph.Lookup(tagsName); taken {
		return errors.Located(errors.ErrUnsupportedShape, e.Name, "", "discriminant enum %s collides with a declaration", tagsName)
	}
	tags, err := r.unitEnum(tagsName, nil, e.Name, shape, false)
	if err != nil {
		return err
	}
	r.out.Add(tagsName, e.Name, emit.KindTags, tags)

	type arm struct {
		ident   string
		payload string
		v       classify.VariantShape
	}
	arms := make([]arm, 0, len(shape.Variants))

	var sb strings.Builder
	writeDoc(&sb, e.Doc, "")
	sb.WriteString(deriveData + "\n")
	sb.WriteString(fmt.Sprintf("#[serde(tag = %s, content = %s)]\n", strconv.Quote(e.Tag()), strconv.Quote(e.Content())))
	sb.WriteString(fmt.Sprintf("pub enum %s%s {\n", e.Name, generics(e.Generics)))
	for _, v := range shape.Variants {
		res, err := r.in.Member(e.Name, v.Name)
		if err != nil {
			return err
		}
		a := arm{ident: res.Identifier, v: v}
		writeDoc(&sb, v.Doc, indent)
		rename(&sb, res, indent)
		switch v.Payload {
		case classify.PayloadNone:
			sb.WriteString(indent + res.Identifier + ",\n")
		case classify.PayloadAnonymous:
			return errors.Located(errors.ErrUnsupportedShape, e.Name, v.Name, "anonymous payload was not promoted")
		default:
			typ, err := r.formatType(*v.Type, e.Name, v.Name)
			if err != nil {
				return err
			}
			a.payload = typ
			sb.WriteString(fmt.Sprintf("%s%s(%s),\n", indent, res.Identifier, typ))
		}
		arms = append(arms, a)
	}
	sb.WriteString("}\n\n")

	sb.WriteString(fmt.Sprintf("impl%s %s%s {\n", generics(e.Generics), e.Name, generics(e.Generics)))
	sb.WriteString(fmt.Sprintf("%spub fn kind(&self) -> %s {\n", indent, tagsName))
	sb.WriteString(indent + indent + "match self {\n")
	for _, a := range arms {
		pattern := "Self::" + a.ident
		if a.payload != "" {
			pattern += "(_)"
		}
		sb.WriteString(fmt.Sprintf("%s%s => %s::%s,\n", strings.Repeat(indent, 3), pattern, tagsName, a.ident))
	}
	sb.WriteString(indent + indent + "}\n")
	sb.WriteString(indent + "}\n")

	if r.in.Options.Constructors {
		content := r.in.Names.ContentField(e.Name)
		for _, a := range arms {
			fn, err := r.in.Names.Ident(e.Name, a.v.Constructor, naming.Snake)
			if err != nil {
				return err
			}
			sb.WriteString("\n")
			if a.payload == "" {
				sb.WriteString(fmt.Sprintf("%spub fn %s() -> Self {\n", indent, fn))
				sb.WriteString(fmt.Sprintf("%s%sSelf::%s\n", indent, indent, a.ident))
			} else {
				sb.WriteString(fmt.Sprintf("%spub fn %s(%s: %s) -> Self {\n", indent, fn, content.Identifier, a.payload))
				sb.WriteString(fmt.Sprintf("%s%sSelf::%s(%s)\n", indent, indent, a.ident, content.Identifier))
			}
			sb.WriteString(indent + "}\n")
		}
	}
	sb.WriteString("}")

	r.out.Add(e.Name, e.Name, emit.KindUnion, sb.String())
	return nil
}
