package promote

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/ir"
)

func renameGraph() *ir.Graph {
	return ir.MustNew(
		&ir.Struct{DeclInfo: ir.DeclInfo{Name: "Before"}},
		&ir.Enum{
			DeclInfo: ir.DeclInfo{Name: "AnonymousStructWithRename"},
			Variants: []ir.Variant{
				{Name: "List", Rename: "list", Payload: ir.AnonymousPayload(
					ir.Field{Name: "list", Type: ir.List(ir.Primitive(ir.String))},
				)},
				{Name: "LongFieldNames", Rename: "longFieldNames", Payload: ir.AnonymousPayload(
					ir.Field{Name: "some_long_field_name", Type: ir.Primitive(ir.String)},
					ir.Field{Name: "and", Type: ir.Primitive(ir.Bool)},
					ir.Field{Name: "but_one_more", Type: ir.List(ir.Primitive(ir.String))},
				)},
				{Name: "Plain", Payload: ir.TypedPayload(ir.Primitive(ir.I32))},
			},
		},
		&ir.Struct{DeclInfo: ir.DeclInfo{Name: "After"}},
	)
}

func declNames(g *ir.Graph) []string {
	var names []string
	for _, d := range g.Decls() {
		names = append(names, d.Info().Name)
	}
	return names
}

func TestPromote(t *testing.T) {
	in := renameGraph()
	res, err := Promote(in)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Before",
		"AnonymousStructWithRenameList",
		"AnonymousStructWithRenameLongFieldNames",
		"AnonymousStructWithRename",
		"After",
	}, declNames(res.Graph))
	assert.True(t, res.Graph.Frozen())

	d, ok := res.Graph.Lookup("AnonymousStructWithRenameLongFieldNames")
	require.True(t, ok)
	s := d.(*ir.Struct)
	assert.Equal(t, []string{"Generated type representing the anonymous struct variant `LongFieldNames` of the `AnonymousStructWithRename` enum"}, s.Doc)
	assert.Equal(t, &ir.Origin{Enum: "AnonymousStructWithRename", Variant: "LongFieldNames"}, s.Origin)
	require.Len(t, s.Fields, 3)
	assert.Equal(t, "and", s.Fields[1].Name)

	d, _ = res.Graph.Lookup("AnonymousStructWithRename")
	e := d.(*ir.Enum)
	assert.Equal(t, ir.PayloadTyped, e.Variants[1].Payload.Kind)
	assert.Equal(t, "AnonymousStructWithRenameLongFieldNames", e.Variants[1].Payload.Type.String())
	assert.Equal(t, "longFieldNames", e.Variants[1].Rename, "renames are untouched")
	assert.Equal(t, "i32", e.Variants[2].Payload.Type.String())

	p, ok := res.Promotions.Lookup("AnonymousStructWithRename", "List")
	require.True(t, ok)
	assert.Equal(t, "AnonymousStructWithRenameList", p.Struct)
	_, ok = res.Promotions.Lookup("AnonymousStructWithRename", "Plain")
	assert.False(t, ok)

	// the input graph is untouched
	assert.Equal(t, 3, in.Len())
	orig, _ := in.Lookup("AnonymousStructWithRename")
	assert.Equal(t, ir.PayloadAnonymous, orig.(*ir.Enum).Variants[0].Payload.Kind)
}

func TestPromote_Deterministic(t *testing.T) {
	first, err := Promote(renameGraph())
	require.NoError(t, err)
	second, err := Promote(renameGraph())
	require.NoError(t, err)

	if diff := cmp.Diff(first.Graph.Decls(), second.Graph.Decls()); diff != "" {
		t.Fatalf("promotion is not deterministic (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Promotions, second.Promotions)
}

func TestPromote_Generics(t *testing.T) {
	g := ir.MustNew(&ir.Enum{
		DeclInfo: ir.DeclInfo{Name: "Envelope", Generics: []string{"A", "B", "C"}},
		Variants: []ir.Variant{
			{Name: "Pair", Payload: ir.AnonymousPayload(
				ir.Field{Name: "second", Type: ir.Named("C")},
				ir.Field{Name: "first", Type: ir.List(ir.Named("A"))},
			)},
			{Name: "Bare", Payload: ir.AnonymousPayload(ir.Field{Name: "n", Type: ir.Primitive(ir.U8)})},
		},
	})

	res, err := Promote(g)
	require.NoError(t, err)

	d, _ := res.Graph.Lookup("EnvelopePair")
	assert.Equal(t, []string{"A", "C"}, d.Info().Generics)

	d, _ = res.Graph.Lookup("Envelope")
	assert.Equal(t, "EnvelopePair<A, C>", d.(*ir.Enum).Variants[0].Payload.Type.String())
	assert.Equal(t, "EnvelopeBare", d.(*ir.Enum).Variants[1].Payload.Type.String())
}

func TestPromote_NameCollision(t *testing.T) {
	g := ir.MustNew(
		&ir.Struct{DeclInfo: ir.DeclInfo{Name: "ShapeCircle"}},
		&ir.Enum{DeclInfo: ir.DeclInfo{Name: "Shape"}, Variants: []ir.Variant{
			{Name: "Circle", Payload: ir.AnonymousPayload(ir.Field{Name: "r", Type: ir.Primitive(ir.F64)})},
		}},
	)

	_, err := Promote(g)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPromotionNameCollision))
	loc, ok := errors.LocationOf(err)
	require.True(t, ok)
	assert.Equal(t, "Shape.Circle", loc.String())
}

func TestPromote_NothingToDo(t *testing.T) {
	g := ir.MustNew(&ir.Enum{DeclInfo: ir.DeclInfo{Name: "E"}, Variants: []ir.Variant{{Name: "A"}}})
	res, err := Promote(g)
	require.NoError(t, err)
	assert.Empty(t, res.Promotions)
	assert.Equal(t, []string{"E"}, declNames(res.Graph))
}

func TestPromote_SkippedVariantKeepsPayload(t *testing.T) {
	g := ir.MustNew(&ir.Enum{DeclInfo: ir.DeclInfo{Name: "Event"}, Variants: []ir.Variant{
		{Name: "Keep", Payload: ir.TypedPayload(ir.Primitive(ir.I32))},
		{Name: "Drop", Skip: true, Payload: ir.AnonymousPayload(ir.Field{Name: "secret", Type: ir.Primitive(ir.String)})},
	}})

	res, err := Promote(g)
	require.NoError(t, err)
	assert.Empty(t, res.Promotions)
	assert.Equal(t, []string{"Event"}, declNames(res.Graph))

	d, _ := res.Graph.Lookup("Event")
	drop, ok := d.(*ir.Enum).Variant("Drop")
	require.True(t, ok)
	assert.Equal(t, ir.PayloadAnonymous, drop.Payload.Kind)
}
