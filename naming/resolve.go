package naming

import (
	"strings"
	"unicode"

	"github.com/teranos/typeforge/errors"
)

// Source selects what the emitted identifier is derived from.
type Source int

const (
	// FromIdentifier derives it from the source identifier; the rename only feeds the alias.
	FromIdentifier Source = iota
	// FromRename derives it from the rename string when one is present.
	FromRename
)

// ParseSource accepts "identifier" or "rename".
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "identifier":
		return FromIdentifier, nil
	case "rename":
		return FromRename, nil
	}
	return 0, errors.Newf("unknown identifier source %q", s)
}

// Context carries what Resolve needs beyond the identifier itself.
type Context struct {
	Convention Convention
	Rename     string
	Rules      Rules
	Source     Source
	// Owner is the declaration the identifier belongs to, for error locations.
	Owner string
}

// Resolution is the outcome of resolving one identifier.
type Resolution struct {
	// Identifier is legal in the target and follows its convention.
	Identifier string
	// Alias is the exact wire name, set only when it differs from what a
	// serializer would derive from Identifier.
	Alias string
}

// WireName returns the serialized name.
func (r Resolution) WireName(rules Rules) string {
	if r.Alias != "" {
		return r.Alias
	}
	return rules.WireForm(r.Identifier)
}

// Resolve maps a source identifier to a target identifier and, when the
// two differ on the wire, the alias that keeps serialization unchanged.
//
// Characters that cannot appear in an identifier become underscores, a
// leading digit gets an underscore prefix and reserved words are escaped.
// The alias is always the unmodified rename, or the source identifier when
// there is none.
func Resolve(identifier string, ctx Context) (Resolution, error) {
	wire := identifier
	if ctx.Rename != "" {
		wire = ctx.Rename
	}

	base := identifier
	if ctx.Source == FromRename && ctx.Rename != "" {
		base = ctx.Rename
	}

	ident, err := Legalize(Convert(base, ctx.Convention), ctx.Rules)
	if err != nil {
		return Resolution{}, errors.Located(errors.ErrIllegalIdentifier, ctx.Owner, identifier,
			"%q has no letters or digits", base)
	}

	res := Resolution{Identifier: ident}
	if ctx.Rules.WireForm(ident) != wire {
		res.Alias = wire
	}
	return res, nil
}

var errNothingLegal = errors.New("nothing legal left")

// Legalize rewrites s into a legal identifier for rules.
func Legalize(s string, rules Rules) (string, error) {
	var sb strings.Builder
	meaningful := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			meaningful = true
			sb.WriteRune(r)
		case r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if !meaningful {
		return "", errNothingLegal
	}

	out := sb.String()
	if unicode.IsDigit([]rune(out)[0]) {
		out = "_" + out
	}
	if rules.IsReserved(out) {
		out = rules.escape(out)
	}
	return out, nil
}
