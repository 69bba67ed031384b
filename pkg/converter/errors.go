package converter

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a fatal conversion failure
type ErrorKind int

const (
	UnsupportedFormat ErrorKind = iota + 1
	CapacityExceeded
	MalformedInput
)

// Sentinels matched by BankError.Is
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrMalformedInput    = errors.New("malformed input")
)

func (k ErrorKind) String() string {
	switch k {
	case UnsupportedFormat:
		return "UnsupportedFormat"
	case CapacityExceeded:
		return "CapacityExceeded"
	case MalformedInput:
		return "MalformedInput"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case UnsupportedFormat:
		return ErrUnsupportedFormat
	case CapacityExceeded:
		return ErrCapacityExceeded
	case MalformedInput:
		return ErrMalformedInput
	}
	return nil
}

// BankError is the single error a failed conversion returns. Context says
// what was being built when it failed.
type BankError struct {
	Kind    ErrorKind
	Context string
	Err     error
}

func (e *BankError) Error() string {
	if e.Err != nil {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Context
}

func (e *BankError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of e's kind
func (e *BankError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func bankErrorf(kind ErrorKind, format string, args ...any) *BankError {
	return &BankError{Kind: kind, Context: fmt.Sprintf(format, args...)}
}
