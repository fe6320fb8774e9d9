// Package goast builds a type graph from Go source.
//
// Exported structs become structs, with json tags supplying wire names and
// omitempty or pointer types marking optional fields. A defined string type
// with a group of typed string constants becomes a unit enum whose
// discriminants are the constant values. Other defined types and type
// aliases become aliases. Declarations keep their source order; compilation
// later moves each one after the types it references.
package goast

import (
	"context"
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/ir"
	"github.com/teranos/typeforge/irfile/typeexpr"
	"github.com/teranos/typeforge/logger"
)

// Options tune the conversion.
type Options struct {
	// Dir is the directory package patterns are resolved in.
	Dir string
	// Exclude lists type names that are never converted.
	Exclude []string
	Logger  *zap.SugaredLogger
}

var basicTypes = map[string]ir.PrimitiveKind{
	"string":  ir.String,
	"bool":    ir.Bool,
	"int":     ir.I64,
	"int8":    ir.I8,
	"int16":   ir.I16,
	"int32":   ir.I32,
	"rune":    ir.I32,
	"int64":   ir.I64,
	"uint":    ir.U64,
	"uint8":   ir.U8,
	"byte":    ir.U8,
	"uint16":  ir.U16,
	"uint32":  ir.U32,
	"uint64":  ir.U64,
	"uintptr": ir.USize,
	"float32": ir.F32,
	"float64": ir.F64,
}

// qualifiedTypes maps well-known standard library types.
var qualifiedTypes = map[string]ir.TypeRef{
	"time.Time":     ir.Named("DateTime"),
	"time.Duration": ir.Primitive(ir.I64),
	"url.URL":       ir.Named("Url"),
}

// Load parses the packages matching patterns and converts their exported types.
func Load(ctx context.Context, patterns []string, opts Options) (*ir.Graph, error) {
	log := opts.Logger
	if log == nil {
		log = logger.ComponentLogger("frontend.goast")
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Mode:    packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load packages %s", strings.Join(patterns, " "))
	}
	if len(pkgs) == 0 {
		return nil, errors.Newf("no packages found for %s", strings.Join(patterns, " "))
	}

	var files []*ast.File
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, errors.Newf("package %s: %v", pkg.PkgPath, pkg.Errors[0])
		}
		log.Debugw("Loaded package",
			logger.FieldPhase, logger.PhaseLoad,
			logger.FieldInput, pkg.PkgPath,
			logger.FieldCount, len(pkg.Syntax))
		files = append(files, pkg.Syntax...)
	}
	return Convert(files, opts)
}

// Convert builds a graph from parsed files, in file order.
func Convert(files []*ast.File, opts Options) (*ir.Graph, error) {
	c := &converter{
		exclude: make(map[string]bool, len(opts.Exclude)),
		consts:  make(map[string][]enumConst),
	}
	for _, name := range opts.Exclude {
		c.exclude[name] = true
	}

	// First pass: typed string constants, which may follow their type.
	for _, f := range files {
		for _, decl := range f.Decls {
			if gd, ok := decl.(*ast.GenDecl); ok && gd.Tok == token.CONST {
				c.collectConsts(gd)
			}
		}
	}

	// Second pass: type declarations in order.
	var decls []ir.Decl
	for _, f := range files {
		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				if !ts.Name.IsExported() || c.exclude[ts.Name.Name] {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				d, err := c.convertTypeSpec(ts, docLines(doc))
				if err != nil {
					return nil, err
				}
				if d != nil {
					decls = append(decls, d)
				}
			}
		}
	}
	return ir.New(decls...)
}

type enumConst struct {
	name  string
	value string
	doc   []string
}

type converter struct {
	exclude map[string]bool
	consts  map[string][]enumConst
}

// collectConsts records string constants grouped by their declared type.
func (c *converter) collectConsts(gd *ast.GenDecl) {
	for _, spec := range gd.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		ident, ok := vs.Type.(*ast.Ident)
		if !ok {
			continue
		}
		current := ident.Name
		for i, value := range vs.Values {
			lit, ok := value.(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING || i >= len(vs.Names) {
				continue
			}
			s, err := strconv.Unquote(lit.Value)
			if err != nil {
				continue
			}
			c.consts[current] = append(c.consts[current], enumConst{
				name:  vs.Names[i].Name,
				value: s,
				doc:   docLines(vs.Doc),
			})
		}
	}
}

func (c *converter) convertTypeSpec(ts *ast.TypeSpec, doc []string) (ir.Decl, error) {
	name := ts.Name.Name
	info := ir.DeclInfo{Name: name, Doc: doc, Generics: typeParams(ts.TypeParams)}

	if st, ok := ts.Type.(*ast.StructType); ok && !ts.Assign.IsValid() {
		fields, err := c.convertFields(name, st, info.Generics)
		if err != nil {
			return nil, err
		}
		return &ir.Struct{DeclInfo: info, Fields: fields}, nil
	}

	if ident, ok := ts.Type.(*ast.Ident); ok && ident.Name == "string" && !ts.Assign.IsValid() {
		if consts := c.consts[name]; len(consts) > 0 {
			e := &ir.Enum{DeclInfo: info}
			for _, k := range consts {
				e.Variants = append(e.Variants, ir.Variant{
					Name:    variantName(name, k.name),
					Rename:  k.value,
					Doc:     k.doc,
					Payload: ir.UnitPayload(),
				})
			}
			return e, nil
		}
	}

	target, err := c.convertType(ts.Type, info.Generics, name, "")
	if err != nil {
		return nil, err
	}
	return &ir.Alias{DeclInfo: info, Target: target}, nil
}

// variantName strips the type name prefix Go constants conventionally carry:
// StatusActive of type Status becomes Active.
func variantName(typeName, constName string) string {
	if rest := strings.TrimPrefix(constName, typeName); rest != constName && rest != "" && ast.IsExported(rest) {
		return rest
	}
	return constName
}

func (c *converter) convertFields(owner string, st *ast.StructType, params []string) ([]ir.Field, error) {
	var fields []ir.Field
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			// embedded fields are not flattened
			continue
		}
		tags := parseFieldTags(field.Tag)
		if tags.Skip {
			continue
		}
		for _, fieldName := range field.Names {
			if !fieldName.IsExported() {
				continue
			}

			var (
				t   ir.TypeRef
				err error
			)
			if tags.Type != "" {
				t, err = typeexpr.Parse(tags.Type)
				if err != nil {
					return nil, errors.Located(errors.ErrInvalidGraph, owner, fieldName.Name, "%v", err)
				}
			} else {
				t, err = c.convertType(field.Type, params, owner, fieldName.Name)
				if err != nil {
					return nil, err
				}
			}

			f := ir.Field{
				Name:     fieldName.Name,
				Type:     t,
				Optional: tags.Omitempty || tags.Optional,
				Doc:      docLines(field.Doc),
			}
			if tags.JSONName != "" && tags.JSONName != fieldName.Name {
				f.Rename = tags.JSONName
			}
			fields = append(fields, f)
		}
	}
	return fields, nil
}

func (c *converter) convertType(expr ast.Expr, params []string, decl, member string) (ir.TypeRef, error) {
	unsupported := func(what string) (ir.TypeRef, error) {
		return ir.TypeRef{}, errors.WithHintf(
			errors.Located(errors.ErrUnsupportedShape, decl, member, "%s has no IR equivalent", what),
			"add a `%s:\"<type>\"` tag or `%s:\"-\"` to the field", TagName, TagName)
	}

	switch t := expr.(type) {
	case *ast.Ident:
		if k, ok := basicTypes[t.Name]; ok {
			return ir.Primitive(k), nil
		}
		if t.Name == "any" {
			return unsupported("any")
		}
		return ir.Named(t.Name), nil

	case *ast.SelectorExpr:
		pkg, ok := t.X.(*ast.Ident)
		if !ok {
			return unsupported("qualified type")
		}
		if ref, ok := qualifiedTypes[pkg.Name+"."+t.Sel.Name]; ok {
			return ref.Clone(), nil
		}
		return ir.Named(t.Sel.Name), nil

	case *ast.StarExpr:
		inner, err := c.convertType(t.X, params, decl, member)
		if err != nil {
			return ir.TypeRef{}, err
		}
		return ir.Optional(inner), nil

	case *ast.ArrayType:
		elem, err := c.convertType(t.Elt, params, decl, member)
		if err != nil {
			return ir.TypeRef{}, err
		}
		return ir.List(elem), nil

	case *ast.MapType:
		key, err := c.convertType(t.Key, params, decl, member)
		if err != nil {
			return ir.TypeRef{}, err
		}
		val, err := c.convertType(t.Value, params, decl, member)
		if err != nil {
			return ir.TypeRef{}, err
		}
		return ir.Map(key, val), nil

	case *ast.IndexExpr:
		return c.convertGeneric(t.X, []ast.Expr{t.Index}, params, decl, member)

	case *ast.IndexListExpr:
		return c.convertGeneric(t.X, t.Indices, params, decl, member)

	case *ast.InterfaceType:
		return unsupported("interface type")
	case *ast.FuncType:
		return unsupported("func type")
	case *ast.ChanType:
		return unsupported("channel type")
	case *ast.StructType:
		return unsupported("inline struct")
	}
	return unsupported("type expression")
}

func (c *converter) convertGeneric(base ast.Expr, indices []ast.Expr, params []string, decl, member string) (ir.TypeRef, error) {
	ref, err := c.convertType(base, params, decl, member)
	if err != nil {
		return ir.TypeRef{}, err
	}
	if ref.Kind != ir.RefNamed {
		return ir.TypeRef{}, errors.Located(errors.ErrUnsupportedShape, decl, member, "cannot instantiate %s", ref)
	}
	for _, idx := range indices {
		arg, err := c.convertType(idx, params, decl, member)
		if err != nil {
			return ir.TypeRef{}, err
		}
		ref.Args = append(ref.Args, arg)
	}
	return ref, nil
}

func typeParams(list *ast.FieldList) []string {
	if list == nil {
		return nil
	}
	var names []string
	for _, f := range list.List {
		for _, n := range f.Names {
			names = append(names, n.Name)
		}
	}
	return names
}

func docLines(cg *ast.CommentGroup) []string {
	if cg == nil {
		return nil
	}
	text := strings.TrimRight(cg.Text(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
