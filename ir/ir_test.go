package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/typeforge/errors"
)

func shapeGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := New(
		&Struct{DeclInfo: DeclInfo{Name: "Point"}, Fields: []Field{
			{Name: "x", Type: Primitive(F64)},
			{Name: "y", Type: Primitive(F64)},
		}},
		&Enum{DeclInfo: DeclInfo{Name: "Shape"}, Variants: []Variant{
			{Name: "Dot", Payload: TypedPayload(Named("Point"))},
			{Name: "Circle", Payload: AnonymousPayload(Field{Name: "radius", Type: Primitive(F64)})},
			{Name: "Empty", Payload: UnitPayload()},
		}},
	)
	require.NoError(t, err)
	return g
}

func TestTypeRefString(t *testing.T) {
	tests := []struct {
		name string
		ref  TypeRef
		want string
	}{
		{"primitive", Primitive(String), "string"},
		{"list", List(Primitive(I32)), "list<i32>"},
		{"map of list", Map(Primitive(String), List(Primitive(String))), "map<string, list<string>>"},
		{"optional", Optional(Named("Foo")), "optional<Foo>"},
		{"generic", Named("Page", Named("T"), Primitive(Bool)), "Page<T, bool>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.String())
		})
	}
}

func TestTypeRefCloneIsDeep(t *testing.T) {
	orig := Map(Primitive(String), List(Named("T")))
	c := orig.Clone()
	c.Value.Elem.Name = "U"

	assert.Equal(t, "map<string, list<T>>", orig.String())
	assert.Equal(t, "map<string, list<U>>", c.String())
	assert.False(t, orig.Equal(c))
	assert.True(t, orig.Equal(orig.Clone()))
}

func TestTypeRefUses(t *testing.T) {
	ref := Map(Named("K"), List(Named("Wrapper", Named("V"), Named("K"))))
	assert.Equal(t, []string{"K", "V"}, ref.Uses([]string{"K", "X", "V"}))
	assert.Nil(t, ref.Uses(nil))
	assert.True(t, Named("T").IsTypeVar([]string{"T"}))
	assert.False(t, Named("T", Primitive(I8)).IsTypeVar([]string{"T"}))
}

func TestGraph_NewRejectsDuplicates(t *testing.T) {
	_, err := New(
		&Struct{DeclInfo: DeclInfo{Name: "A"}},
		&Alias{DeclInfo: DeclInfo{Name: "A"}, Target: Primitive(String)},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidGraph))

	loc, ok := errors.LocationOf(err)
	require.True(t, ok)
	assert.Equal(t, "A", loc.Decl)
}

func TestGraph_InsertBefore(t *testing.T) {
	g := shapeGraph(t)

	synth := &Struct{DeclInfo: DeclInfo{Name: "ShapeCircle"}}
	require.NoError(t, g.InsertBefore("Shape", synth))

	var names []string
	for _, d := range g.Decls() {
		names = append(names, d.Info().Name)
	}
	assert.Equal(t, []string{"Point", "ShapeCircle", "Shape"}, names)
	assert.Equal(t, 1, g.Index("ShapeCircle"))
	assert.Equal(t, 2, g.Index("Shape"))
	assert.Equal(t, -1, g.Index("Missing"))

	err := g.InsertBefore("Missing", &Struct{DeclInfo: DeclInfo{Name: "X"}})
	assert.True(t, errors.Is(err, errors.ErrInvalidGraph))

	err = g.InsertBefore("Shape", &Struct{DeclInfo: DeclInfo{Name: "Point"}})
	assert.True(t, errors.Is(err, errors.ErrInvalidGraph))
}

func TestGraph_Freeze(t *testing.T) {
	g := shapeGraph(t)
	g.Freeze()
	assert.True(t, g.Frozen())

	err := g.Append(&Struct{DeclInfo: DeclInfo{Name: "Late"}})
	assert.True(t, errors.Is(err, errors.ErrInvalidGraph))

	c := g.Clone()
	assert.False(t, c.Frozen())
	assert.NoError(t, c.Append(&Struct{DeclInfo: DeclInfo{Name: "Late"}}))
	assert.Equal(t, 2, g.Len())
}

func TestGraph_CloneIsDeep(t *testing.T) {
	g := shapeGraph(t)
	c := g.Clone()

	if diff := cmp.Diff(g.Decls(), c.Decls()); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	d, _ := c.Lookup("Shape")
	e := d.(*Enum)
	e.Variants[1].Payload.Fields[0].Name = "r"
	e.Variants[0].Payload.Type.Name = "Other"

	orig, _ := g.Lookup("Shape")
	assert.Equal(t, "radius", orig.(*Enum).Variants[1].Payload.Fields[0].Name)
	assert.Equal(t, "Point", orig.(*Enum).Variants[0].Payload.Type.Name)
}

func TestEnumDefaults(t *testing.T) {
	e := &Enum{DeclInfo: DeclInfo{Name: "E"}}
	assert.Equal(t, "type", e.Tag())
	assert.Equal(t, "content", e.Content())

	e.TagKey, e.ContentKey = "kind", "data"
	assert.Equal(t, "kind", e.Tag())
	assert.Equal(t, "data", e.Content())
}

func TestWireNames(t *testing.T) {
	assert.Equal(t, "and", Field{Name: "and"}.WireName())
	assert.Equal(t, "another-list", Field{Name: "another_list", Rename: "another-list"}.WireName())
	assert.Equal(t, "kebabCase", Variant{Name: "KebabCase", Rename: "kebabCase"}.WireName())
}

func TestNormalize(t *testing.T) {
	g := MustNew(
		&Struct{DeclInfo: DeclInfo{Name: "S"}, Fields: []Field{
			{Name: "a", Type: Optional(Optional(Primitive(String)))},
			{Name: "b", Type: Optional(Map(Primitive(String), List(Primitive(String))))},
			{Name: "c", Type: List(Optional(Primitive(I32)))},
			{Name: "d", Type: Map(Primitive(String), Optional(Optional(Primitive(Bool))))},
			{Name: "e", Type: Primitive(Bool), Optional: true},
		}},
		&Alias{DeclInfo: DeclInfo{Name: "A"}, Target: Optional(Optional(Named("S")))},
	)

	n := Normalize(g)

	d, _ := n.Lookup("S")
	fields := d.(*Struct).Fields
	tests := []struct {
		name     string
		optional bool
		want     string
	}{
		{"a", true, "string"},
		{"b", true, "map<string, list<string>>"},
		{"c", false, "list<optional<i32>>"},
		{"d", false, "map<string, optional<bool>>"},
		{"e", true, "bool"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.optional, fields[i].Optional)
			assert.Equal(t, tt.want, fields[i].Type.String())
			assert.False(t, HasNestedOptional(fields[i].Type))
		})
	}

	a, _ := n.Lookup("A")
	assert.Equal(t, "optional<S>", a.(*Alias).Target.String())

	// input untouched
	orig, _ := g.Lookup("S")
	assert.Equal(t, "optional<optional<string>>", orig.(*Struct).Fields[0].Type.String())
}

func TestValidate(t *testing.T) {
	g := MustNew(
		&Struct{DeclInfo: DeclInfo{Name: "Page", Generics: []string{"T"}}, Fields: []Field{
			{Name: "items", Type: List(Named("T"))},
			{Name: "at", Type: Named("DateTime")},
			{Name: "next", Type: Named("Url"), Optional: true},
		}},
		&Alias{DeclInfo: DeclInfo{Name: "Pages"}, Target: List(Named("Page", Named("DateTime")))},
	)

	external, err := Validate(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"DateTime", "Url"}, external)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		decl   Decl
		member string
	}{
		{
			name:   "duplicate field",
			decl:   &Struct{DeclInfo: DeclInfo{Name: "S"}, Fields: []Field{{Name: "a", Type: Primitive(I8)}, {Name: "a", Type: Primitive(I8)}}},
			member: "a",
		},
		{
			name:   "duplicate variant",
			decl:   &Enum{DeclInfo: DeclInfo{Name: "E"}, Variants: []Variant{{Name: "A"}, {Name: "A"}}},
			member: "A",
		},
		{
			name:   "empty reference",
			decl:   &Alias{DeclInfo: DeclInfo{Name: "A"}, Target: List(Named(""))},
			member: "",
		},
		{
			name:   "typed payload without type",
			decl:   &Enum{DeclInfo: DeclInfo{Name: "E"}, Variants: []Variant{{Name: "V", Payload: Payload{Kind: PayloadTyped}}}},
			member: "V",
		},
		{
			name:   "duplicate generic",
			decl:   &Struct{DeclInfo: DeclInfo{Name: "S", Generics: []string{"T", "T"}}},
			member: "T",
		},
		{
			name:   "unknown primitive",
			decl:   &Struct{DeclInfo: DeclInfo{Name: "S"}, Fields: []Field{{Name: "a", Type: Primitive("i128")}}},
			member: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(MustNew(tt.decl))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidGraph))
			loc, ok := errors.LocationOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.decl.Info().Name, loc.Decl)
			assert.Equal(t, tt.member, loc.Member)
		})
	}
}

func declOrder(g *Graph) []string {
	var names []string
	for _, d := range g.Decls() {
		names = append(names, d.Info().Name)
	}
	return names
}

func TestReferences(t *testing.T) {
	e := &Enum{
		DeclInfo:     DeclInfo{Name: "Msg", Generics: []string{"T"}},
		SharedFields: []Field{{Name: "id", Type: Named("ID")}},
		Variants: []Variant{
			{Name: "Data", Payload: TypedPayload(Named("Page", Named("T"), Named("User")))},
			{Name: "Inline", Payload: AnonymousPayload(Field{Name: "m", Type: Map(Primitive(String), Named("Tag"))})},
			{Name: "Hidden", Skip: true, Payload: TypedPayload(Named("Secret"))},
			{Name: "Self", Payload: TypedPayload(List(Named("Msg", Named("T"))))},
		},
	}
	assert.Equal(t, []string{"ID", "Page", "User", "Tag"}, References(e))
}

func TestSort(t *testing.T) {
	tests := []struct {
		name  string
		decls []Decl
		want  []string
	}{
		{
			name: "already ordered",
			decls: []Decl{
				&Alias{DeclInfo: DeclInfo{Name: "ID"}, Target: Primitive(String)},
				&Struct{DeclInfo: DeclInfo{Name: "A"}},
				&Alias{DeclInfo: DeclInfo{Name: "IDs"}, Target: List(Named("ID"))},
			},
			want: []string{"ID", "A", "IDs"},
		},
		{
			name: "alias before its target",
			decls: []Decl{
				&Alias{DeclInfo: DeclInfo{Name: "IDs"}, Target: List(Named("ID"))},
				&Alias{DeclInfo: DeclInfo{Name: "ID"}, Target: Primitive(String)},
			},
			want: []string{"ID", "IDs"},
		},
		{
			name: "independent declarations keep input order",
			decls: []Decl{
				&Struct{DeclInfo: DeclInfo{Name: "B"}},
				&Struct{DeclInfo: DeclInfo{Name: "User"}, Fields: []Field{{Name: "tags", Type: Named("Tags")}}},
				&Struct{DeclInfo: DeclInfo{Name: "A"}},
				&Alias{DeclInfo: DeclInfo{Name: "Tags"}, Target: List(Primitive(String))},
			},
			want: []string{"B", "A", "Tags", "User"},
		},
		{
			name: "enum after anonymous payload references",
			decls: []Decl{
				&Enum{DeclInfo: DeclInfo{Name: "Event"}, Variants: []Variant{
					{Name: "Created", Payload: AnonymousPayload(Field{Name: "user", Type: Named("User")})},
				}},
				&Struct{DeclInfo: DeclInfo{Name: "User"}},
			},
			want: []string{"User", "Event"},
		},
		{
			name: "cycle broken at its earliest member",
			decls: []Decl{
				&Struct{DeclInfo: DeclInfo{Name: "Root"}, Fields: []Field{{Name: "a", Type: Named("A")}}},
				&Struct{DeclInfo: DeclInfo{Name: "A"}, Fields: []Field{{Name: "b", Type: Optional(Named("B"))}}},
				&Struct{DeclInfo: DeclInfo{Name: "B"}, Fields: []Field{{Name: "a", Type: Optional(Named("A"))}}},
			},
			want: []string{"A", "Root", "B"},
		},
		{
			name: "external names ignored",
			decls: []Decl{
				&Struct{DeclInfo: DeclInfo{Name: "User"}, Fields: []Field{{Name: "at", Type: Named("DateTime")}}},
			},
			want: []string{"User"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.decls...)
			require.NoError(t, err)
			sorted := Sort(g)
			assert.Equal(t, tt.want, declOrder(sorted))
			assert.False(t, sorted.Frozen())
			for i, name := range tt.want {
				assert.Equal(t, i, sorted.Index(name))
			}
		})
	}
}
