package naming

import (
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/teranos/typeforge/errors"
)

// Convention is an identifier casing style.
type Convention string

const (
	Original       Convention = "original"
	Snake          Convention = "snake"
	Camel          Convention = "camel"
	Pascal         Convention = "pascal"
	ScreamingSnake Convention = "screaming_snake"
	Kebab          Convention = "kebab"
)

var conventionAliases = map[string]Convention{
	"original":             Original,
	"":                     Original,
	"snake":                Snake,
	"snake_case":           Snake,
	"camel":                Camel,
	"camelcase":            Camel,
	"pascal":               Pascal,
	"pascalcase":           Pascal,
	"screaming_snake":      ScreamingSnake,
	"screaming_snake_case": ScreamingSnake,
	"upper":                ScreamingSnake,
	"kebab":                Kebab,
	"kebab-case":           Kebab,
}

// ParseConvention accepts a convention name, case-insensitively, including
// the serde-style spellings ("camelCase", "SCREAMING_SNAKE_CASE", ...).
func ParseConvention(s string) (Convention, error) {
	if c, ok := conventionAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return "", errors.Newf("unknown naming convention %q", s)
}

// Split breaks an identifier into lower-cased words.
//
// Words are separated by underscores, hyphens, dots, spaces and any other
// character that is neither a letter nor a digit, and by case changes. An
// upper-case run is kept together as one acronym word unless its last letter
// starts a new lower-case word: "HTTPSConnection" -> [https connection].
func Split(s string) []string {
	var words []string
	for _, segment := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words = append(words, splitCase(segment)...)
	}
	return words
}

func splitCase(s string) []string {
	var words []string
	var current strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevUpper := unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !prevUpper || nextLower {
				words = append(words, strings.ToLower(current.String()))
				current.Reset()
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		words = append(words, strings.ToLower(current.String()))
	}
	return words
}

type cacheKey struct {
	s    string
	conv Convention
}

var converted = mustCache(4096)

func mustCache(size int) *lru.Cache[cacheKey, string] {
	c, err := lru.New[cacheKey, string](size)
	if err != nil {
		panic(err)
	}
	return c
}

// Convert reshapes s into conv. Conversion is idempotent:
// Convert(Convert(s, c), c) == Convert(s, c).
func Convert(s string, conv Convention) string {
	if conv == Original || conv == "" {
		return s
	}
	key := cacheKey{s: s, conv: conv}
	if out, ok := converted.Get(key); ok {
		return out
	}
	out := convert(s, conv)
	converted.Add(key, out)
	return out
}

func convert(s string, conv Convention) string {
	words := Split(s)
	switch conv {
	case Snake:
		return strings.Join(words, "_")
	case ScreamingSnake:
		return strings.ToUpper(strings.Join(words, "_"))
	case Kebab:
		return strings.Join(words, "-")
	case Pascal:
		return joinCapitalized(words, 0)
	case Camel:
		return joinCapitalized(words, 1)
	}
	return s
}

func joinCapitalized(words []string, skip int) string {
	var sb strings.Builder
	for i, w := range words {
		if i < skip {
			sb.WriteString(w)
			continue
		}
		sb.WriteString(UpperFirst(w))
	}
	return sb.String()
}

// UpperFirst upper-cases the first rune of s.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ToSnakeCase converts PascalCase, camelCase or kebab-case to snake_case.
// Handles acronyms properly (e.g., "HTTPSConnection" -> "https_connection")
func ToSnakeCase(s string) string { return Convert(s, Snake) }

// ToPascalCase converts snake_case or kebab-case to PascalCase
func ToPascalCase(s string) string { return Convert(s, Pascal) }

// ToCamelCase converts snake_case or kebab-case to camelCase
func ToCamelCase(s string) string { return Convert(s, Camel) }

// ToScreamingSnake converts any casing to SCREAMING_SNAKE_CASE
func ToScreamingSnake(s string) string { return Convert(s, ScreamingSnake) }
