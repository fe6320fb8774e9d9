// Package errors provides error handling for typeforge.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// On top of that it defines the compiler's error kinds. Every failure raised
// while resolving, classifying, promoting or emitting a declaration wraps one
// of the sentinels below and carries the location (declaration plus
// field/variant) it was detected at:
//
//	err := errors.Located(errors.ErrDiscriminantCollision, "Shape", "Circle",
//	    "wire tag %q already used by variant %s", tag, other)
//
//	if errors.Is(err, errors.ErrDiscriminantCollision) {
//	    loc, _ := errors.LocationOf(err)
//	    // loc.Decl == "Shape", loc.Member == "Circle"
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
	Join           = crdb.Join
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Error kinds raised by the compiler core.
// Use these with errors.Is() for type-safe error checking.
var (
	// ErrIllegalIdentifier indicates an identifier cannot be made legal for a target convention
	ErrIllegalIdentifier = New("illegal identifier")

	// ErrDiscriminantCollision indicates two non-skipped variants share a wire tag
	ErrDiscriminantCollision = New("discriminant collision")

	// ErrPromotionNameCollision indicates a synthesized variant struct name is already taken
	ErrPromotionNameCollision = New("promotion name collision")

	// ErrUnsupportedShape indicates a backend has no rendering rule for a construct
	ErrUnsupportedShape = New("unsupported shape")

	// ErrInvalidGraph indicates the type graph handed to the core is malformed
	ErrInvalidGraph = New("invalid type graph")

	// ErrUnsupportedVersion indicates an IR document version outside the supported range
	ErrUnsupportedVersion = New("unsupported IR document version")
)

// Location identifies where in the type graph an error was detected.
type Location struct {
	Decl   string // owning declaration
	Member string // field or variant name, empty for declaration-level errors
}

// String renders the location as Decl or Decl.Member.
func (l Location) String() string {
	if l.Member == "" {
		return l.Decl
	}
	return l.Decl + "." + l.Member
}

// LocatedError ties an error kind to a position in the type graph.
type LocatedError struct {
	Kind     error
	Location Location
	Msg      string
}

func (e *LocatedError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", e.Location, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Location, e.Kind, e.Msg)
}

// Unwrap exposes the kind so errors.Is(err, ErrXxx) matches.
func (e *LocatedError) Unwrap() error { return e.Kind }

// Located creates an error of the given kind at decl/member with a stack trace attached.
func Located(kind error, decl, member, format string, args ...interface{}) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return WithStack(&LocatedError{
		Kind:     kind,
		Location: Location{Decl: decl, Member: member},
		Msg:      msg,
	})
}

// LocationOf returns the innermost location recorded on err, if any.
func LocationOf(err error) (Location, bool) {
	var located *LocatedError
	if As(err, &located) {
		return located.Location, true
	}
	return Location{}, false
}

// KindOf reports which compiler error kind err wraps, or nil when it wraps none.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrIllegalIdentifier,
		ErrDiscriminantCollision,
		ErrPromotionNameCollision,
		ErrUnsupportedShape,
		ErrInvalidGraph,
		ErrUnsupportedVersion,
	} {
		if Is(err, kind) {
			return kind
		}
	}
	return nil
}
