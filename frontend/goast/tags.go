package goast

import (
	"go/ast"
	"reflect"
	"strconv"
	"strings"
)

// TagName is the struct tag read alongside json.
const TagName = "typeforge"

// fieldTags contains parsed struct tag information for one field
type fieldTags struct {
	JSONName  string // field name from json tag
	Omitempty bool   // has omitempty option
	Type      string // type expression override from the typeforge tag
	Optional  bool   // force optional with typeforge:",optional"
	Skip      bool   // json:"-" or typeforge:"-"
}

// parseFieldTags extracts json and typeforge tags from a struct field tag
//
// Supported tags:
//   - json:"name,omitempty" - wire name and optionality
//   - typeforge:"list<string>" - override the inferred type expression
//   - typeforge:"-" - leave the field out
//   - typeforge:",optional" - force optional
//
// Example:
//
//	Payload json.RawMessage `json:"payload" typeforge:"map<string, string>"`
func parseFieldTags(tag *ast.BasicLit) fieldTags {
	info := fieldTags{}
	if tag == nil {
		return info
	}

	raw, err := strconv.Unquote(tag.Value)
	if err != nil {
		return info
	}
	st := reflect.StructTag(raw)

	if jsonTag := st.Get("json"); jsonTag != "" {
		parts := strings.Split(jsonTag, ",")
		if parts[0] == "-" && len(parts) == 1 {
			info.Skip = true
			return info
		}
		info.JSONName = parts[0]
		for _, part := range parts[1:] {
			if part == "omitempty" || part == "omitzero" {
				info.Omitempty = true
			}
		}
	}

	if tfTag, ok := st.Lookup(TagName); ok {
		if tfTag == "-" {
			info.Skip = true
			return info
		}
		// the type expression may itself contain commas: map<K, V>,optional
		if i := strings.LastIndex(tfTag, ","); i >= 0 && strings.TrimSpace(tfTag[i+1:]) == "optional" {
			info.Optional = true
			tfTag = tfTag[:i]
		}
		info.Type = strings.TrimSpace(tfTag)
	}

	return info
}
