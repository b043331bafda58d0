package term

import (
	"fmt"
	"strings"
)

// ErrorKind classifies the typing failures the algebra can report.
type ErrorKind int

const (
	ComposeMismatch    ErrorKind = iota // argument type differs from the parameter type, or head is not composable
	ReplaceMismatch                     // replacement term type differs from the replaced variable type
	ProjectionMismatch                  // codomain depends on the parameter
	CastMismatch                        // no cast path between a type and the requested target
	DomainMismatch                      // domain requested on a term without functional type
	UnprojectMismatch                   // an unprojection step could not be completed
)

func (k ErrorKind) String() string {
	switch k {
	case ComposeMismatch:
		return "compose mismatch"
	case ReplaceMismatch:
		return "replace mismatch"
	case ProjectionMismatch:
		return "projection mismatch"
	case CastMismatch:
		return "cast mismatch"
	case DomainMismatch:
		return "domain mismatch"
	case UnprojectMismatch:
		return "unproject mismatch"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is the single error type returned by term operations.
// Terms holds the offending operands in the order the operation received them.
type Error struct {
	Kind  ErrorKind
	Terms []Term
	Cause error
}

// Sentinels for errors.Is. They compare by kind only.
var (
	ErrComposeMismatch    = &Error{Kind: ComposeMismatch}
	ErrReplaceMismatch    = &Error{Kind: ReplaceMismatch}
	ErrProjectionMismatch = &Error{Kind: ProjectionMismatch}
	ErrCastMismatch       = &Error{Kind: CastMismatch}
	ErrDomainMismatch     = &Error{Kind: DomainMismatch}
	ErrUnprojectMismatch  = &Error{Kind: UnprojectMismatch}
)

func newError(kind ErrorKind, cause error, terms ...Term) *Error {
	return &Error{Kind: kind, Terms: terms, Cause: cause}
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	for i, t := range e.Terms {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString(", ")
		}
		if t == nil {
			sb.WriteString("<nil>")
		} else {
			sb.WriteString(t.String())
		}
	}
	if e.Cause != nil {
		sb.WriteString(" (")
		sb.WriteString(e.Cause.Error())
		sb.WriteString(")")
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports kind equality, so errors.Is(err, ErrCastMismatch) matches any cast failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
