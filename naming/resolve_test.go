package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/typeforge/errors"
	"github.com/teranos/typeforge/ir"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		ident     string
		ctx       Context
		wantIdent string
		wantAlias string
	}{
		{
			name:      "already conventional",
			ident:     "some_long_field_name",
			ctx:       Context{Convention: Snake, Rules: PythonRules},
			wantIdent: "some_long_field_name",
		},
		{
			name:      "reserved word gets suffix and alias",
			ident:     "and",
			ctx:       Context{Convention: Snake, Rules: PythonRules},
			wantIdent: "and_",
			wantAlias: "and",
		},
		{
			name:      "camel source in snake target",
			ident:     "camelCaseStringField",
			ctx:       Context{Convention: Snake, Rules: PythonRules},
			wantIdent: "camel_case_string_field",
			wantAlias: "camelCaseStringField",
		},
		{
			name:      "hyphenated rename keeps identifier",
			ident:     "another_list",
			ctx:       Context{Convention: Snake, Rename: "another-list", Rules: PythonRules},
			wantIdent: "another_list",
			wantAlias: "another-list",
		},
		{
			name:      "hyphenated source name",
			ident:     "some-field",
			ctx:       Context{Convention: Camel, Rules: TypeScriptRules},
			wantIdent: "someField",
			wantAlias: "some-field",
		},
		{
			name:      "identifier from rename",
			ident:     "extra_special_field_1",
			ctx:       Context{Convention: Snake, Rename: "extraSpecialFieldOne", Rules: PythonRules, Source: FromRename},
			wantIdent: "extra_special_field_one",
			wantAlias: "extraSpecialFieldOne",
		},
		{
			name:      "identifier from source keeps source shape",
			ident:     "extra_special_field_1",
			ctx:       Context{Convention: Snake, Rename: "extraSpecialFieldOne", Rules: PythonRules},
			wantIdent: "extra_special_field_1",
			wantAlias: "extraSpecialFieldOne",
		},
		{
			name:      "rust raw identifier needs no alias",
			ident:     "type",
			ctx:       Context{Convention: Snake, Rules: RustRules},
			wantIdent: "r#type",
		},
		{
			name:      "rust self cannot be raw",
			ident:     "self",
			ctx:       Context{Convention: Snake, Rules: RustRules},
			wantIdent: "self_",
			wantAlias: "self",
		},
		{
			name:      "punctuation in original convention",
			ident:     "content-type",
			ctx:       Context{Convention: Original, Rules: TypeScriptRules},
			wantIdent: "content_type",
			wantAlias: "content-type",
		},
		{
			name:      "leading digit",
			ident:     "3d",
			ctx:       Context{Convention: Original, Rules: PythonRules},
			wantIdent: "_3d",
			wantAlias: "3d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.ident, tt.ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIdent, got.Identifier)
			assert.Equal(t, tt.wantAlias, got.Alias)

			wire := tt.ident
			if tt.ctx.Rename != "" {
				wire = tt.ctx.Rename
			}
			assert.Equal(t, wire, got.WireName(tt.ctx.Rules), "wire name must survive legalization")
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	for _, ident := range []string{"and", "camelCaseStringField", "another-list", "HTTPSConnection"} {
		ctx := Context{Convention: Snake, Rules: PythonRules}
		first, err := Resolve(ident, ctx)
		require.NoError(t, err)

		second, err := Resolve(first.Identifier, ctx)
		require.NoError(t, err)
		assert.Equal(t, first.Identifier, second.Identifier)
		assert.Empty(t, second.Alias, "re-resolving %q must be a no-op", first.Identifier)
	}
}

func TestResolve_IllegalIdentifier(t *testing.T) {
	_, err := Resolve("---", Context{Convention: Snake, Rules: PythonRules, Owner: "Weird"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrIllegalIdentifier))

	loc, ok := errors.LocationOf(err)
	require.True(t, ok)
	assert.Equal(t, "Weird", loc.Decl)
	assert.Equal(t, "---", loc.Member)
}

func TestParseSource(t *testing.T) {
	s, err := ParseSource("rename")
	require.NoError(t, err)
	assert.Equal(t, FromRename, s)

	s, err = ParseSource("")
	require.NoError(t, err)
	assert.Equal(t, FromIdentifier, s)

	_, err = ParseSource("guess")
	assert.Error(t, err)
}

func TestResolveGraph(t *testing.T) {
	g := ir.MustNew(
		&ir.Struct{DeclInfo: ir.DeclInfo{Name: "PersonTwo"}, Fields: []ir.Field{
			{Name: "name", Type: ir.Primitive(ir.String)},
			{Name: "extra_special_field_1", Type: ir.Primitive(ir.I32), Rename: "extraSpecialFieldOne"},
		}},
		&ir.Enum{DeclInfo: ir.DeclInfo{Name: "Status"}, Variants: []ir.Variant{
			{Name: "LongFieldNames", Rename: "longFieldNames"},
			{Name: "Hidden", Skip: true},
		}},
	)

	table, err := ResolveGraph(g, PythonRules, Options{})
	require.NoError(t, err)

	res, ok := table.Field("PersonTwo", "extra_special_field_1")
	require.True(t, ok)
	assert.Equal(t, Resolution{Identifier: "extra_special_field_1", Alias: "extraSpecialFieldOne"}, res)

	res, ok = table.Field("PersonTwo", "name")
	require.True(t, ok)
	assert.Empty(t, res.Alias)

	member, ok := table.Member("Status", "LongFieldNames")
	require.True(t, ok)
	assert.Equal(t, "LONG_FIELD_NAMES", member.Identifier)

	_, ok = table.Member("Status", "Hidden")
	assert.False(t, ok, "skipped variants get no member")

	assert.Equal(t, "type", table.TagField("Status").Identifier)
	assert.Equal(t, "content", table.ContentField("Status").Identifier)
}

func TestResolveGraph_FieldOverride(t *testing.T) {
	g := ir.MustNew(&ir.Struct{DeclInfo: ir.DeclInfo{Name: "S"}, Fields: []ir.Field{
		{Name: "user_id", Type: ir.Primitive(ir.String)},
	}})

	table, err := ResolveGraph(g, TypeScriptRules, Options{Fields: Camel})
	require.NoError(t, err)
	res, _ := table.Field("S", "user_id")
	assert.Equal(t, Resolution{Identifier: "userId", Alias: "user_id"}, res)
}

func TestResolveGraph_Collision(t *testing.T) {
	g := ir.MustNew(&ir.Struct{DeclInfo: ir.DeclInfo{Name: "S"}, Fields: []ir.Field{
		{Name: "fooBar", Type: ir.Primitive(ir.String)},
		{Name: "foo_bar", Type: ir.Primitive(ir.String)},
	}})

	_, err := ResolveGraph(g, PythonRules, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrIllegalIdentifier))
	loc, _ := errors.LocationOf(err)
	assert.Equal(t, "S.foo_bar", loc.String())
}

func TestTableIdent(t *testing.T) {
	table, err := ResolveGraph(ir.MustNew(), RustRules, Options{})
	require.NoError(t, err)

	id, err := table.Ident("Shape", "new_shape_circle", Snake)
	require.NoError(t, err)
	assert.Equal(t, "new_shape_circle", id)

	_, err = table.Ident("Shape", "!!", Snake)
	assert.True(t, errors.Is(err, errors.ErrIllegalIdentifier))
}
