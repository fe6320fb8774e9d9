// Package python renders pydantic v2 models.
//
// Structs become BaseModel classes, pure enumerations become Literal
// aliases and tagged unions become a {Enum}Types str-Enum, one container
// class per variant and a wrapper model holding the tag and the content.
package python

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
	"github.com/teranos/typeforge/promote"
)

const indent = "    "

// Backend implements emit.Backend for Python
type Backend struct{}

// New creates a Python backend
func New() *Backend {
	return &Backend{}
}

// Language returns "python"
func (b *Backend) Language() string { return "python" }

// FileExtension returns "py"
func (b *Backend) FileExtension() string { return "py" }

// Rules returns the Python identifier rules
func (b *Backend) Rules() naming.Rules { return naming.PythonRules }

// renderer holds the per-Emit state; a Backend itself is stateless and safe
// to share between goroutines.
type renderer struct {
	in       *emit.Input
	out      *emit.Output
	typeVars map[string]bool
	// classes maps synthesized class names to what they were rendered for
	classes map[string]string
}

// Emit renders every declaration of in.Graph in order
func (b *Backend) Emit(in *emit.Input) (*emit.Output, error) {
	r := &renderer{
		in:       in,
		out:      emit.NewOutput(b.Language()),
		typeVars: make(map[string]bool),
		classes:  make(map[string]string),
	}
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

	vars := make([]string, 0, len(r.typeVars))
	for v := range r.typeVars {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	for _, v := range vars {
		r.out.Preamble = append(r.out.Preamble, fmt.Sprintf("%s = TypeVar(%s)", v, strconv.Quote(v)))
	}
	return r.out, nil
}

// RenderFile assembles the module: header docstring, imports, type variables, declarations
func (b *Backend) RenderFile(out *emit.Output) string {
	var sb strings.Builder
	sb.WriteString("\"\"\"\n " + out.Banner() + "\n\"\"\"\n")
	sb.WriteString("from __future__ import annotations\n")

	if !out.Imports.Empty() {
		var lines []string
		for _, mod := range out.Imports.Modules() {
			lines = append(lines, fmt.Sprintf("from %s import %s", mod, strings.Join(out.Imports.Names(mod), ", ")))
		}
		sort.Strings(lines)
		sb.WriteString("\n")
		sb.WriteString(strings.Join(lines, "\n"))
		sb.WriteString("\n")
	}
	if len(out.Preamble) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(out.Preamble, "\n"))
		sb.WriteString("\n")
	}

	for _, d := range out.Declarations {
		sb.WriteString("\n\n")
		sb.WriteString(d.Code)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *renderer) imp(module, name string) {
	r.out.Imports.Add(module, name)
}

// claim reserves a synthesized class name. A name is taken when the graph
// declares it or an earlier synthesized class already uses it.
func (r *renderer) claim(name, role, decl, member string) error {
	if _, taken := r.in.Graph.Lookup(name); taken {
		return errors.Located(errors.ErrUnsupportedShape, decl, member, "%s class %s collides with a declaration", role, name)
	}
	if prior, taken := r.classes[name]; taken {
		return errors.Located(errors.ErrUnsupportedShape, decl, member, "%s class %s collides with the %s", role, name, prior)
	}
	owner := decl
	if member != "" {
		owner += "." + member
	}
	r.classes[name] = fmt.Sprintf("%s class of %s", role, owner)
	return nil
}

func (r *renderer) addTypeVars(params []string) {
	for _, p := range params {
		r.typeVars[p] = true
	}
	if len(params) > 0 {
		r.imp("typing", "TypeVar")
	}
}

// bases returns the class bases, adding Generic[...] for type parameters.
func (r *renderer) bases(params []string) string {
	r.imp("pydantic", "BaseModel")
	if len(params) == 0 {
		return "BaseModel"
	}
	r.addTypeVars(params)
	r.imp("typing", "Generic")
	return fmt.Sprintf("BaseModel, Generic[%s]", strings.Join(params, ", "))
}

func primitiveType(k ir.PrimitiveKind) string {
	switch {
	case k == ir.String || k == ir.Char:
		return "str"
	case k == ir.Bool:
		return "bool"
	case k == ir.Unit:
		return "None"
	case k.IsFloat():
		return "float"
	default:
		return "int"
	}
}

// formatType renders t. Optionality at field level is added by the caller.
func (r *renderer) formatType(t ir.TypeRef, params []string, decl, member string) (string, error) {
	switch t.Kind {
	case ir.RefPrimitive:
		return primitiveType(t.Primitive), nil
	case ir.RefList:
		elem, err := r.formatType(*t.Elem, params, decl, member)
		if err != nil {
			return "", err
		}
		r.imp("typing", "List")
		return "List[" + elem + "]", nil
	case ir.RefOptional:
		elem, err := r.formatType(*t.Elem, params, decl, member)
		if err != nil {
			return "", err
		}
		r.imp("typing", "Optional")
		return "Optional[" + elem + "]", nil
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
		r.imp("typing", "Dict")
		return fmt.Sprintf("Dict[%s, %s]", key, val), nil
	case ir.RefNamed:
		return r.formatNamed(t, params, decl, member)
	}
	return "", errors.Located(errors.ErrUnsupportedShape, decl, member, "no rendering for %s reference", t.Kind)
}

func (r *renderer) formatNamed(t ir.TypeRef, params []string, decl, member string) (string, error) {
	if mapped, ok := r.in.Mapped(t.Name); ok {
		return mapped, nil
	}
	base := t.Name
	switch t.Name {
	case "DateTime":
		r.imp("datetime", "datetime")
		base = "datetime"
	case "Url":
		r.imp("pydantic.networks", "AnyUrl")
		base = "AnyUrl"
	}
	if len(t.Args) == 0 {
		return base, nil
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		s, err := r.formatType(a, params, decl, member)
		if err != nil {
			return "", err
		}
		args[i] = s
	}
	return fmt.Sprintf("%s[%s]", base, strings.Join(args, ", ")), nil
}

// attribute renders one annotated class attribute.
func (r *renderer) attribute(res naming.Resolution, typ string, optional bool) string {
	if optional {
		r.imp("typing", "Optional")
		typ = "Optional[" + typ + "]"
	}
	if res.Alias != "" {
		r.imp("typing", "Annotated")
		r.imp("pydantic", "Field")
		typ = fmt.Sprintf("Annotated[%s, Field(alias=%s)]", typ, strconv.Quote(res.Alias))
	}
	line := indent + res.Identifier + ": " + typ
	if optional {
		line += " = None"
	}
	return line
}

func writeDocstring(sb *strings.Builder, lines []string, level int) {
	if len(lines) == 0 {
		return
	}
	pad := strings.Repeat(indent, level)
	sb.WriteString(pad + "\"\"\"\n")
	for _, l := range lines {
		sb.WriteString(pad + l + "\n")
	}
	sb.WriteString(pad + "\"\"\"\n")
}

func writeComments(sb *strings.Builder, lines []string) {
	for _, l := range lines {
		sb.WriteString("# " + l + "\n")
	}
}

type attr struct {
	line string
	doc  []string
}

// fieldAttrs renders fields stored in the naming table under owner.
func (r *renderer) fieldAttrs(owner, decl string, fields []ir.Field, params []string) ([]attr, bool, error) {
	attrs := make([]attr, 0, len(fields))
	aliased := false
	for _, f := range fields {
		res, err := r.in.Field(owner, f.Name)
		if err != nil {
			return nil, false, err
		}
		typ, err := r.formatType(f.Type, params, decl, f.Name)
		if err != nil {
			return nil, false, err
		}
		if res.Alias != "" {
			aliased = true
		}
		attrs = append(attrs, attr{line: r.attribute(res, typ, f.Optional), doc: f.Doc})
	}
	return attrs, aliased, nil
}

func writeAttrs(sb *strings.Builder, attrs []attr) {
	for _, a := range attrs {
		sb.WriteString(a.line + "\n")
		writeDocstring(sb, a.doc, 1)
	}
}

func (r *renderer) writeStruct(s *ir.Struct) error {
	attrs, aliased, err := r.fieldAttrs(s.Name, s.Name, s.Fields, s.Generics)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("class %s(%s):\n", s.Name, r.bases(s.Generics)))
	writeDocstring(&sb, s.Doc, 1)
	if aliased {
		r.imp("pydantic", "ConfigDict")
		sb.WriteString(indent + "model_config = ConfigDict(populate_by_name=True)\n\n")
	}
	writeAttrs(&sb, attrs)
	if len(attrs) == 0 {
		sb.WriteString(indent + "pass\n")
	}

	r.out.Add(s.Name, r.in.SourceOf(s), r.in.StructKind(s.Name), strings.TrimRight(sb.String(), "\n"))
	return nil
}

func (r *renderer) writeAlias(a *ir.Alias) error {
	r.addTypeVars(a.Generics)
	typ, err := r.formatType(a.Target, a.Generics, a.Name, "")
	if err != nil {
		return err
	}
	var sb strings.Builder
	writeComments(&sb, a.Doc)
	sb.WriteString(fmt.Sprintf("%s = %s", a.Name, typ))
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
		return r.writeLiteral(e, shape)
	}
	return r.writeTaggedUnion(e, shape)
}

func (r *renderer) writeLiteral(e *ir.Enum, shape *classify.Shape) error {
	r.imp("typing", "Literal")
	values := make([]string, len(shape.Variants))
	for i, v := range shape.Variants {
		values[i] = strconv.Quote(v.Discriminant)
	}
	var sb strings.Builder
	writeComments(&sb, e.Doc)
	sb.WriteString(fmt.Sprintf("%s = Literal[%s]", e.Name, strings.Join(values, ", ")))
	r.out.Add(e.Name, e.Name, emit.KindEnum, sb.String())
	return nil
}

// member is one alternative of the wrapper's content union.
type member struct {
	variant   classify.VariantShape
	className string // container or promoted struct
	typeExpr  string // how the union and constructors reference it
	payload   string // rendered payload type; empty for unit and promoted variants
	promoted  bool
}

func (r *renderer) writeTaggedUnion(e *ir.Enum, shape *classify.Shape) error {
	r.imp("enum", "Enum")
	r.imp("typing", "Union")
	r.imp("pydantic", "ConfigDict")
	r.addTypeVars(e.Generics)

	tagsName := e.Name + "Types"
	if err := r.claim(tagsName, "discriminant", e.Name, ""); err != nil {
		return err
	}

	// (a) discriminant enumeration
	var tags strings.Builder
	tags.WriteString(fmt.Sprintf("class %s(str, Enum):\n", tagsName))
	for _, v := range shape.Variants {
		res, err := r.in.Member(e.Name, v.Name)
		if err != nil {
			return err
		}
		tags.WriteString(fmt.Sprintf("%s%s = %s\n", indent, res.Identifier, strconv.Quote(v.Discriminant)))
	}
	r.out.Add(tagsName, e.Name, emit.KindTags, strings.TrimRight(tags.String(), "\n"))

	// (b) one payload container per variant
	content := r.in.Names.ContentField(e.Name)
	members := make([]member, 0, len(shape.Variants))
	for _, v := range shape.Variants {
		m, err := r.writeContainer(e, v, content)
		if err != nil {
			return err
		}
		members = append(members, m)
	}

	// (c) the wrapper
	tag := r.in.Names.TagField(e.Name)
	shared, sharedAliased, err := r.fieldAttrs(e.Name, e.Name, e.SharedFields, e.Generics)
	if err != nil {
		return err
	}

	union := make([]string, 0, len(members)+1)
	for _, m := range members {
		union = append(union, m.typeExpr)
	}
	if shape.HasUnit() {
		union = append(union, "None")
	}

	config := "use_enum_values=True"
	if tag.Alias != "" || content.Alias != "" || sharedAliased {
		config = "populate_by_name=True, use_enum_values=True"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("class %s(%s):\n", e.Name, r.bases(e.Generics)))
	writeDocstring(&sb, e.Doc, 1)
	sb.WriteString(fmt.Sprintf("%smodel_config = ConfigDict(%s)\n", indent, config))
	sb.WriteString(r.attribute(tag, tagsName, false) + "\n")
	sb.WriteString(r.attribute(content, fmt.Sprintf("Union[%s]", strings.Join(union, ", ")), false) + "\n")
	writeAttrs(&sb, shared)

	if r.in.Options.Constructors {
		for _, m := range members {
			ctor, err := r.constructor(e, tagsName, tag, content, m)
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

func (r *renderer) writeContainer(e *ir.Enum, v classify.VariantShape, content naming.Resolution) (member, error) {
	m := member{variant: v}

	switch v.Payload {
	case classify.PayloadAnonymous:
		return m, errors.Located(errors.ErrUnsupportedShape, e.Name, v.Name, "anonymous payload was not promoted")
	case classify.PayloadNamed:
		if p, ok := r.in.Promotions.Lookup(e.Name, v.Name); ok && p.Struct == v.Type.Name {
			typ, err := r.formatType(*v.Type, e.Generics, e.Name, v.Name)
			if err != nil {
				return m, err
			}
			m.className, m.typeExpr, m.promoted = p.Struct, typ, true
			return m, nil
		}
	}

	name := promote.StructName(e.Name, v.Name)
	if err := r.claim(name, "container", e.Name, v.Name); err != nil {
		return m, err
	}
	m.className = name
	m.typeExpr = name
	if len(v.Generics) > 0 {
		m.typeExpr = fmt.Sprintf("%s[%s]", name, strings.Join(v.Generics, ", "))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("class %s(%s):\n", name, r.bases(v.Generics)))
	writeDocstring(&sb, v.Doc, 1)
	if content.Alias != "" {
		sb.WriteString(indent + "model_config = ConfigDict(populate_by_name=True)\n\n")
	}
	if v.Payload == classify.PayloadNone {
		sb.WriteString(r.attribute(content, "None", false) + " = None\n")
	} else {
		typ, err := r.formatType(*v.Type, e.Generics, e.Name, v.Name)
		if err != nil {
			return m, err
		}
		m.payload = typ
		sb.WriteString(r.attribute(content, typ, false) + "\n")
	}

	r.out.Add(name, e.Name, emit.KindVariant, strings.TrimRight(sb.String(), "\n"))
	return m, nil
}

func (r *renderer) constructor(e *ir.Enum, tagsName string, tag, content naming.Resolution, m member) (string, error) {
	v := m.variant
	fn, err := r.in.Names.Ident(e.Name, v.Constructor, naming.Snake)
	if err != nil {
		return "", err
	}
	tagMember, err := r.in.Member(e.Name, v.Name)
	if err != nil {
		return "", err
	}

	params := []string{"cls"}
	value := "None"
	switch {
	case v.Payload == classify.PayloadNone:
	case m.promoted:
		params = append(params, fmt.Sprintf("%s: %s", content.Identifier, m.typeExpr))
		value = content.Identifier
	default:
		params = append(params, fmt.Sprintf("%s: %s", content.Identifier, m.payload))
		value = fmt.Sprintf("%s(%s=%s)", m.typeExpr, content.Identifier, content.Identifier)
	}

	args := []string{
		fmt.Sprintf("%s=%s.%s", tag.Identifier, tagsName, tagMember.Identifier),
		fmt.Sprintf("%s=%s", content.Identifier, value),
	}
	// parameters with defaults must follow those without
	var defaulted []string
	for _, f := range e.SharedFields {
		res, err := r.in.Field(e.Name, f.Name)
		if err != nil {
			return "", err
		}
		typ, err := r.formatType(f.Type, e.Generics, e.Name, f.Name)
		if err != nil {
			return "", err
		}
		if f.Optional {
			r.imp("typing", "Optional")
			defaulted = append(defaulted, fmt.Sprintf("%s: Optional[%s] = None", res.Identifier, typ))
		} else {
			params = append(params, fmt.Sprintf("%s: %s", res.Identifier, typ))
		}
		args = append(args, fmt.Sprintf("%s=%s", res.Identifier, res.Identifier))
	}
	params = append(params, defaulted...)

	var sb strings.Builder
	sb.WriteString(indent + "@classmethod\n")
	sb.WriteString(fmt.Sprintf("%sdef %s(%s) -> %s:\n", indent, fn, strings.Join(params, ", "), e.Name))
	sb.WriteString(fmt.Sprintf("%s%sreturn cls(%s)\n", indent, indent, strings.Join(args, ", ")))
	return sb.String(), nil
}
