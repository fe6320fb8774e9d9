package ir

import (
	"sort"

	"github.com/teranos/typeforge/errors"
)

// Validate checks structural well-formedness and returns the names of
// external types: Named references that resolve neither to a declaration nor
// to a generic parameter in scope. Backends map those through their type
// mappings or emit them verbatim.
func Validate(g *Graph) ([]string, error) {
	external := make(map[string]bool)

	checkRef := func(decl, member string, params []string, t TypeRef) error {
		var err error
		t.Walk(func(r TypeRef) {
			if err != nil {
				return
			}
			switch r.Kind {
			case RefNamed:
				if r.Name == "" {
					err = errors.Located(errors.ErrInvalidGraph, decl, member, "reference with empty name")
					return
				}
				if r.IsTypeVar(params) {
					return
				}
				if _, ok := g.Lookup(r.Name); !ok {
					external[r.Name] = true
				}
			case RefPrimitive:
				if _, ok := ParsePrimitive(string(r.Primitive)); !ok {
					err = errors.Located(errors.ErrInvalidGraph, decl, member, "unknown primitive %q", r.Primitive)
				}
			}
		})
		return err
	}

	checkFields := func(decl string, params []string, fields []Field) error {
		seen := make(map[string]bool, len(fields))
		for _, f := range fields {
			if f.Name == "" {
				return errors.Located(errors.ErrInvalidGraph, decl, "", "field with empty name")
			}
			if seen[f.Name] {
				return errors.Located(errors.ErrInvalidGraph, decl, f.Name, "duplicate field")
			}
			seen[f.Name] = true
			if err := checkRef(decl, f.Name, params, f.Type); err != nil {
				return err
			}
		}
		return nil
	}

	for _, d := range g.decls {
		info := d.Info()
		if err := checkGenerics(info); err != nil {
			return nil, err
		}
		switch d := d.(type) {
		case *Struct:
			if err := checkFields(info.Name, info.Generics, d.Fields); err != nil {
				return nil, err
			}
		case *Enum:
			if err := checkFields(info.Name, info.Generics, d.SharedFields); err != nil {
				return nil, err
			}
			seen := make(map[string]bool, len(d.Variants))
			for _, v := range d.Variants {
				if v.Name == "" {
					return nil, errors.Located(errors.ErrInvalidGraph, info.Name, "", "variant with empty name")
				}
				if seen[v.Name] {
					return nil, errors.Located(errors.ErrInvalidGraph, info.Name, v.Name, "duplicate variant")
				}
				seen[v.Name] = true
				switch v.Payload.Kind {
				case PayloadTyped:
					if v.Payload.Type == nil {
						return nil, errors.Located(errors.ErrInvalidGraph, info.Name, v.Name, "typed payload without a type")
					}
					if err := checkRef(info.Name, v.Name, info.Generics, *v.Payload.Type); err != nil {
						return nil, err
					}
				case PayloadAnonymous:
					if err := checkFields(info.Name, info.Generics, v.Payload.Fields); err != nil {
						return nil, err
					}
				}
			}
		case *Alias:
			if err := checkRef(info.Name, "", info.Generics, d.Target); err != nil {
				return nil, err
			}
		}
	}

	names := make([]string, 0, len(external))
	for name := range external {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func checkGenerics(info *DeclInfo) error {
	seen := make(map[string]bool, len(info.Generics))
	for _, p := range info.Generics {
		if p == "" {
			return errors.Located(errors.ErrInvalidGraph, info.Name, "", "empty generic parameter")
		}
		if seen[p] {
			return errors.Located(errors.ErrInvalidGraph, info.Name, p, "duplicate generic parameter")
		}
		seen[p] = true
	}
	return nil
}
