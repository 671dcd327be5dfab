// Package calc defines the error taxonomy shared by the numeric packages
// and the basic arithmetic operations exposed as tools.
package calc

import "errors"

// Kind classifies a calculator failure.
// A Kind is itself an error so that errors.Is(err, KindDivisionByZero)
// matches any *Error of that kind anywhere in a wrapping chain.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidExpression
	KindDivisionByZero
	KindNonNumeric
	KindInsufficientInput
	KindInvalidArgument
	KindIntegration
	KindDifferentiation
	KindNonConvergence
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindInvalidExpression: "invalid expression",
	KindDivisionByZero:    "division by zero",
	KindNonNumeric:        "non-numeric result",
	KindInsufficientInput: "insufficient input",
	KindInvalidArgument:   "invalid argument",
	KindIntegration:       "integration failure",
	KindDifferentiation:   "differentiation failure",
	KindNonConvergence:    "differentiation non-convergence",
}

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Error implements the error interface for Kind.
func (k Kind) Error() string {
	return k.String()
}

// Error is a classified calculator failure.
type Error struct {
	Kind Kind
	// Op names the operation that failed (e.g. "evaluate", "mean", "integrate").
	Op  string
	Msg string
	Err error
}

// New creates an Error without a cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap creates an Error carrying cause. The cause message is appended to msg.
func Wrap(kind Kind, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Kind of this error.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the kind of the outermost *Error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}
