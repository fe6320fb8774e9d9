package naming

import "strings"

// Escape says how a reserved word is turned into a usable identifier.
type Escape int

const (
	// EscapeSuffix appends an underscore: class -> class_
	EscapeSuffix Escape = iota
	// EscapeRawPrefix uses a raw identifier: type -> r#type
	EscapeRawPrefix
)

// Rules are the identifier-legality rules of one target language.
type Rules struct {
	Target   string
	Fields   Convention // field identifiers
	Members  Convention // enum member constants
	Reserved map[string]bool
	Escape   Escape
	// NoRaw lists reserved words that cannot be written as raw identifiers
	// and fall back to the suffix form.
	NoRaw map[string]bool
}

// IsReserved reports whether s is a reserved word of the target.
func (r Rules) IsReserved(s string) bool {
	return r.Reserved[s]
}

func (r Rules) escape(s string) string {
	if r.Escape == EscapeRawPrefix && !r.NoRaw[s] {
		return "r#" + s
	}
	return s + "_"
}

// WireForm is the name a serializer derives from an emitted identifier
// when no explicit alias is attached. Raw identifiers lose their prefix.
func (r Rules) WireForm(ident string) string {
	if r.Escape == EscapeRawPrefix {
		return strings.TrimPrefix(ident, "r#")
	}
	return ident
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// pythonKeywords are reserved words in Python that need special handling.
// Soft keywords (match, case, type) are legal attribute names and are left alone.
var pythonKeywords = wordSet(
	"False", "None", "True", "and", "as", "assert", "async", "await", "break", "class",
	"continue", "def", "del", "elif", "else", "except", "finally", "for", "from", "global",
	"if", "import", "in", "is", "lambda", "nonlocal", "not", "or", "pass", "raise",
	"return", "try", "while", "with", "yield",
)

// rustKeywords are strict and reserved keywords of Rust 2021
var rustKeywords = wordSet(
	"as", "break", "const", "continue", "crate", "else", "enum", "extern", "false", "fn",
	"for", "if", "impl", "in", "let", "loop", "match", "mod", "move", "mut", "pub", "ref",
	"return", "self", "Self", "static", "struct", "super", "trait", "true", "type", "unsafe",
	"use", "where", "while", "async", "await", "dyn", "abstract", "become", "box", "do",
	"final", "macro", "override", "priv", "typeof", "unsized", "virtual", "yield", "try",
)

// typescriptKeywords are reserved words that cannot name a binding
var typescriptKeywords = wordSet(
	"break", "case", "catch", "class", "const", "continue", "debugger", "default", "delete",
	"do", "else", "enum", "export", "extends", "false", "finally", "for", "function", "if",
	"import", "in", "instanceof", "new", "null", "return", "super", "switch", "this",
	"throw", "true", "try", "typeof", "var", "void", "while", "with", "implements",
	"interface", "let", "package", "private", "protected", "public", "static", "yield",
)

// PythonRules: snake_case attributes, SCREAMING_SNAKE enum members, keyword_ suffix.
var PythonRules = Rules{
	Target:   "python",
	Fields:   Snake,
	Members:  ScreamingSnake,
	Reserved: pythonKeywords,
	Escape:   EscapeSuffix,
}

// RustRules: snake_case fields, PascalCase variants, r#keyword raw identifiers.
var RustRules = Rules{
	Target:   "rust",
	Fields:   Snake,
	Members:  Pascal,
	Reserved: rustKeywords,
	Escape:   EscapeRawPrefix,
	NoRaw:    wordSet("crate", "self", "Self", "super"),
}

// TypeScriptRules: properties keep their wire names, enum members are PascalCase.
var TypeScriptRules = Rules{
	Target:   "typescript",
	Fields:   Original,
	Members:  Pascal,
	Reserved: typescriptKeywords,
	Escape:   EscapeSuffix,
}

// RulesFor returns the built-in rules for a target language.
func RulesFor(target string) (Rules, bool) {
	switch target {
	case "python":
		return PythonRules, true
	case "rust":
		return RustRules, true
	case "typescript":
		return TypeScriptRules, true
	}
	return Rules{}, false
}
