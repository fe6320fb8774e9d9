// Package irfile reads and writes IR documents: the serialized form of a
// type graph that frontends produce and the compiler consumes.
//
// A document carries a semantic version and an ordered list of
// declarations. Types are written as expressions (see typeexpr), e.g.
//
//	version: "1.0.0"
//	decls:
//	  - kind: struct
//	    name: User
//	    fields:
//	      - {name: user_id, rename: userId, type: string}
//	      - {name: email, type: optional<string>}
//	  - kind: enum
//	    name: Event
//	    variants:
//	      - name: Created
//	        fields: [{name: user, type: User}]
//	      - {name: Renamed, type: string}
//	      - {name: Closed}
package irfile

import (
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/ir"
	"github.com/teranos/typeforge/irfile/typeexpr"
)

// Declaration kinds as written in documents.
const (
	KindStruct = "struct"
	KindEnum   = "enum"
	KindAlias  = "alias"
)

// Document is the serialized type graph.
type Document struct {
	Version string `json:"version" yaml:"version" toml:"version"`
	Decls   []Decl `json:"decls" yaml:"decls" toml:"decls"`
}

// Decl is one declaration. Which fields apply depends on Kind.
type Decl struct {
	Kind     string   `json:"kind" yaml:"kind" toml:"kind"`
	Name     string   `json:"name" yaml:"name" toml:"name"`
	Doc      []string `json:"doc,omitempty" yaml:"doc,omitempty" toml:"doc,omitempty"`
	Generics []string `json:"generics,omitempty" yaml:"generics,omitempty" toml:"generics,omitempty"`
	// Fields are struct fields, or the shared fields of an enum.
	Fields   []Field   `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
	Variants []Variant `json:"variants,omitempty" yaml:"variants,omitempty" toml:"variants,omitempty"`
	Tag      string    `json:"tag,omitempty" yaml:"tag,omitempty" toml:"tag,omitempty"`
	Content  string    `json:"content,omitempty" yaml:"content,omitempty" toml:"content,omitempty"`
	// Target is the aliased type expression.
	Target string `json:"target,omitempty" yaml:"target,omitempty" toml:"target,omitempty"`
}

// Field is a named, typed member.
type Field struct {
	Name     string   `json:"name" yaml:"name" toml:"name"`
	Rename   string   `json:"rename,omitempty" yaml:"rename,omitempty" toml:"rename,omitempty"`
	Type     string   `json:"type" yaml:"type" toml:"type"`
	Optional bool     `json:"optional,omitempty" yaml:"optional,omitempty" toml:"optional,omitempty"`
	Doc      []string `json:"doc,omitempty" yaml:"doc,omitempty" toml:"doc,omitempty"`
}

// Variant is an enum alternative. Type makes it a typed variant, Fields an
// anonymous struct variant; with neither it is a unit variant.
type Variant struct {
	Name   string   `json:"name" yaml:"name" toml:"name"`
	Rename string   `json:"rename,omitempty" yaml:"rename,omitempty" toml:"rename,omitempty"`
	Skip   bool     `json:"skip,omitempty" yaml:"skip,omitempty" toml:"skip,omitempty"`
	Doc    []string `json:"doc,omitempty" yaml:"doc,omitempty" toml:"doc,omitempty"`
	Type   string   `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Fields []Field  `json:"fields,omitempty" yaml:"fields,omitempty" toml:"fields,omitempty"`
}

// Graph checks the document version and builds the type graph.
func (d *Document) Graph() (*ir.Graph, error) {
	if err := CheckVersion(d.Version); err != nil {
		return nil, err
	}

	decls := make([]ir.Decl, 0, len(d.Decls))
	for _, dd := range d.Decls {
		decl, err := dd.toIR()
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	g, err := ir.New(decls...)
	if err != nil {
		return nil, err
	}
	if _, err := ir.Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (d Decl) toIR() (ir.Decl, error) {
	if d.Name == "" {
		return nil, errors.Located(errors.ErrInvalidGraph, "", "", "%s declaration without a name", d.Kind)
	}
	info := ir.DeclInfo{Name: d.Name, Doc: d.Doc, Generics: d.Generics}

	switch d.Kind {
	case KindStruct:
		fields, err := convertFields(d.Name, d.Fields)
		if err != nil {
			return nil, err
		}
		return &ir.Struct{DeclInfo: info, Fields: fields}, nil

	case KindEnum:
		shared, err := convertFields(d.Name, d.Fields)
		if err != nil {
			return nil, err
		}
		e := &ir.Enum{DeclInfo: info, SharedFields: shared, TagKey: d.Tag, ContentKey: d.Content}
		for _, v := range d.Variants {
			iv, err := v.toIR(d.Name)
			if err != nil {
				return nil, err
			}
			e.Variants = append(e.Variants, iv)
		}
		return e, nil

	case KindAlias:
		if d.Target == "" {
			return nil, errors.Located(errors.ErrInvalidGraph, d.Name, "", "alias without a target")
		}
		target, err := parseType(d.Name, "", d.Target)
		if err != nil {
			return nil, err
		}
		return &ir.Alias{DeclInfo: info, Target: target}, nil
	}
	return nil, errors.Located(errors.ErrInvalidGraph, d.Name, "", "unknown declaration kind %q", d.Kind)
}

func (v Variant) toIR(enum string) (ir.Variant, error) {
	iv := ir.Variant{Name: v.Name, Rename: v.Rename, Skip: v.Skip, Doc: v.Doc}
	switch {
	case v.Type != "" && len(v.Fields) > 0:
		return iv, errors.Located(errors.ErrInvalidGraph, enum, v.Name, "variant has both a type and fields")
	case v.Type != "":
		t, err := parseType(enum, v.Name, v.Type)
		if err != nil {
			return iv, err
		}
		iv.Payload = ir.TypedPayload(t)
	case len(v.Fields) > 0:
		fields, err := convertFields(enum, v.Fields)
		if err != nil {
			return iv, err
		}
		iv.Payload = ir.AnonymousPayload(fields...)
	default:
		iv.Payload = ir.UnitPayload()
	}
	return iv, nil
}

func convertFields(decl string, fields []Field) ([]ir.Field, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]ir.Field, len(fields))
	for i, f := range fields {
		if f.Type == "" {
			return nil, errors.Located(errors.ErrInvalidGraph, decl, f.Name, "field without a type")
		}
		t, err := parseType(decl, f.Name, f.Type)
		if err != nil {
			return nil, err
		}
		out[i] = ir.Field{Name: f.Name, Rename: f.Rename, Type: t, Optional: f.Optional, Doc: f.Doc}
	}
	return out, nil
}

func parseType(decl, member, expr string) (ir.TypeRef, error) {
	t, err := typeexpr.Parse(expr)
	if err != nil {
		return ir.TypeRef{}, errors.Located(errors.ErrInvalidGraph, decl, member, "%v", err)
	}
	return t, nil
}

// FromGraph serializes g at the current document version.
func FromGraph(g *ir.Graph) *Document {
	doc := &Document{Version: CurrentVersion}
	for _, d := range g.Decls() {
		info := d.Info()
		dd := Decl{Name: info.Name, Doc: info.Doc, Generics: info.Generics}
		switch d := d.(type) {
		case *ir.Struct:
			dd.Kind = KindStruct
			dd.Fields = fromFields(d.Fields)
		case *ir.Enum:
			dd.Kind = KindEnum
			dd.Fields = fromFields(d.SharedFields)
			dd.Tag, dd.Content = d.TagKey, d.ContentKey
			for _, v := range d.Variants {
				dv := Variant{Name: v.Name, Rename: v.Rename, Skip: v.Skip, Doc: v.Doc}
				switch v.Payload.Kind {
				case ir.PayloadTyped:
					dv.Type = v.Payload.Type.String()
				case ir.PayloadAnonymous:
					dv.Fields = fromFields(v.Payload.Fields)
				}
				dd.Variants = append(dd.Variants, dv)
			}
		case *ir.Alias:
			dd.Kind = KindAlias
			dd.Target = d.Target.String()
		}
		doc.Decls = append(doc.Decls, dd)
	}
	return doc
}

func fromFields(fields []ir.Field) []Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = Field{Name: f.Name, Rename: f.Rename, Type: f.Type.String(), Optional: f.Optional, Doc: f.Doc}
	}
	return out
}
