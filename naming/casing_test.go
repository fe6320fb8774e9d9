package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"HTTPSConnection", []string{"https", "connection"}},
		{"camelCaseStringField", []string{"camel", "case", "string", "field"}},
		{"another-list", []string{"another", "list"}},
		{"extra_special_field_1", []string{"extra", "special", "field", "1"}},
		{"LongFieldNames", []string{"long", "field", "names"}},
		{"hasAUnit", []string{"has", "a", "unit"}},
		{"user.id", []string{"user", "id"}},
		{"ID", []string{"id"}},
		{"---", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.input))
		})
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		input string
		conv  Convention
		want  string
	}{
		{"HTTPSConnection", Snake, "https_connection"},
		{"someLongFieldName", Snake, "some_long_field_name"},
		{"another-list", Snake, "another_list"},
		{"another-list", Camel, "anotherList"},
		{"another-list", Pascal, "AnotherList"},
		{"SomethingElse", ScreamingSnake, "SOMETHING_ELSE"},
		{"longFieldNames", ScreamingSnake, "LONG_FIELD_NAMES"},
		{"some_field", Kebab, "some-field"},
		{"keep-Me", Original, "keep-Me"},
	}

	for _, tt := range tests {
		t.Run(string(tt.conv)+"/"+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Convert(tt.input, tt.conv))
		})
	}
}

func TestConvertIsIdempotent(t *testing.T) {
	inputs := []string{"HTTPSConnection", "camelCaseStringField", "another-list", "v2Api", "A", "x1Y2", "Has_Mixed-Separators.here"}
	conventions := []Convention{Original, Snake, Camel, Pascal, ScreamingSnake, Kebab}

	for _, conv := range conventions {
		for _, in := range inputs {
			once := Convert(in, conv)
			assert.Equal(t, once, Convert(once, conv), "%s(%q)", conv, in)
		}
	}
}

func TestCaseHelpers(t *testing.T) {
	assert.Equal(t, "https_connection", ToSnakeCase("HTTPSConnection"))
	assert.Equal(t, "UserProfile", ToPascalCase("user_profile"))
	assert.Equal(t, "userProfile", ToCamelCase("user-profile"))
	assert.Equal(t, "HAS_A_UNIT", ToScreamingSnake("HasAUnit"))
	assert.Equal(t, "Circle", UpperFirst("circle"))
	assert.Equal(t, "", UpperFirst(""))
}

func TestParseConvention(t *testing.T) {
	tests := []struct {
		input string
		want  Convention
	}{
		{"snake", Snake},
		{"camelCase", Camel},
		{"PascalCase", Pascal},
		{"SCREAMING_SNAKE_CASE", ScreamingSnake},
		{"kebab-case", Kebab},
		{"", Original},
	}
	for _, tt := range tests {
		got, err := ParseConvention(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseConvention("train-case")
	assert.Error(t, err)
}
