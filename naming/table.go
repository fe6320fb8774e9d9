package naming

import (
	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/ir"
)

// Options tune ResolveGraph beyond the target's built-in rules.
type Options struct {
	// Fields overrides Rules.Fields when set.
	Fields Convention
	Source Source
}

type memberKey struct {
	decl   string
	member string
}

// Table holds every identifier decision for one target, made once up front
// so emitters never apply naming logic themselves.
type Table struct {
	rules   Rules
	fields  map[memberKey]Resolution
	members map[memberKey]Resolution
	keys    map[memberKey]Resolution
}

// Rules returns the rules the table was built with.
func (t *Table) Rules() Rules { return t.rules }

// Field returns the resolution of a struct field, an enum shared field or
// a field of an anonymous variant payload (keyed by "Enum.Variant").
func (t *Table) Field(decl, field string) (Resolution, bool) {
	r, ok := t.fields[memberKey{decl, field}]
	return r, ok
}

// Member returns the enum member constant for a variant.
func (t *Table) Member(enum, variant string) (Resolution, bool) {
	r, ok := t.members[memberKey{enum, variant}]
	return r, ok
}

// TagField and ContentField return the resolved wrapper field names of a tagged enum.
func (t *Table) TagField(enum string) Resolution { return t.keys[memberKey{enum, "tag"}] }

func (t *Table) ContentField(enum string) Resolution { return t.keys[memberKey{enum, "content"}] }

// Ident legalizes a derived identifier (constructor, parameter) under the table's rules.
func (t *Table) Ident(owner, s string, conv Convention) (string, error) {
	out, err := Legalize(Convert(s, conv), t.rules)
	if err != nil {
		return "", errors.Located(errors.ErrIllegalIdentifier, owner, s, "cannot form identifier")
	}
	return out, nil
}

// PayloadOwner is the key anonymous payload fields are stored under.
func PayloadOwner(enum, variant string) string {
	return enum + "." + variant
}

// ResolveGraph resolves every field, enum member and tag/content key in g.
// Two members of one declaration resolving to the same identifier is an
// ErrIllegalIdentifier.
func ResolveGraph(g *ir.Graph, rules Rules, opts Options) (*Table, error) {
	conv := rules.Fields
	if opts.Fields != "" {
		conv = opts.Fields
	}
	t := &Table{
		rules:   rules,
		fields:  make(map[memberKey]Resolution),
		members: make(map[memberKey]Resolution),
		keys:    make(map[memberKey]Resolution),
	}

	resolveFields := func(owner, location string, fields []ir.Field) error {
		used := make(map[string]string, len(fields))
		for _, f := range fields {
			res, err := Resolve(f.Name, Context{
				Convention: conv,
				Rename:     f.Rename,
				Rules:      rules,
				Source:     opts.Source,
				Owner:      location,
			})
			if err != nil {
				return err
			}
			if prev, dup := used[res.Identifier]; dup {
				return errors.Located(errors.ErrIllegalIdentifier, location, f.Name,
					"identifier %s already used by field %s", res.Identifier, prev)
			}
			used[res.Identifier] = f.Name
			t.fields[memberKey{owner, f.Name}] = res
		}
		return nil
	}

	for _, d := range g.Decls() {
		switch d := d.(type) {
		case *ir.Struct:
			if err := resolveFields(d.Name, d.Name, d.Fields); err != nil {
				return nil, err
			}
		case *ir.Enum:
			if err := resolveFields(d.Name, d.Name, d.SharedFields); err != nil {
				return nil, err
			}
			used := make(map[string]string, len(d.Variants))
			for _, v := range d.Variants {
				if v.Skip {
					continue
				}
				if v.Payload.Kind == ir.PayloadAnonymous {
					if err := resolveFields(PayloadOwner(d.Name, v.Name), d.Name, v.Payload.Fields); err != nil {
						return nil, err
					}
				}
				res, err := Resolve(v.Name, Context{
					Convention: rules.Members,
					Rename:     v.Rename,
					Rules:      rules,
					Owner:      d.Name,
				})
				if err != nil {
					return nil, err
				}
				if prev, dup := used[res.Identifier]; dup {
					return nil, errors.Located(errors.ErrIllegalIdentifier, d.Name, v.Name,
						"member %s already used by variant %s", res.Identifier, prev)
				}
				used[res.Identifier] = v.Name
				t.members[memberKey{d.Name, v.Name}] = res
			}
			for _, k := range [][2]string{{"tag", d.Tag()}, {"content", d.Content()}} {
				res, err := Resolve(k[1], Context{Convention: conv, Rules: rules, Owner: d.Name})
				if err != nil {
					return nil, err
				}
				t.keys[memberKey{d.Name, k[0]}] = res
			}
		}
	}
	return t, nil
}
