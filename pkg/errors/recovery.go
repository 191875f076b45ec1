package errors

import (
	"fmt"
	"runtime/debug"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// PanicError carries a panic recovered at a public API boundary.
//
// gonum signals shape violations (mat.ErrShape), non-positive-definite
// factorizations and bad distribution parameters by panicking. Fit and
// Predict recover these so callers only ever see error returns.
type PanicError struct {
	Operation  string
	PanicValue interface{}
	StackTrace string
}

// NewPanicError captures the current goroutine stack alongside the value.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		Operation:  operation,
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
	}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap exposes the panic value when it is an error, so
// errors.Is(err, mat.ErrShape) works on a recovered gonum panic.
func (e *PanicError) Unwrap() error {
	err, _ := e.PanicValue.(error)
	return err
}

// String is Error plus the captured stack.
func (e *PanicError) String() string {
	return e.Error() + "\nStack trace:\n" + e.StackTrace
}

func (e *PanicError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "PanicError").
		Str("operation", e.Operation).
		Str("panic_value", fmt.Sprint(e.PanicValue))
}

// Recover turns a panic in the deferring function into *err.
//
//	func (r *Regression) Fit() (beta []float64, err error) {
//		defer errors.Recover(&err, "Regression.Fit")
//		...
//	}
//
// An error already stored in *err is kept and annotated with the panic.
func Recover(err *error, operation string) {
	r := recover()
	if r == nil {
		return
	}
	if *err == nil {
		*err = NewPanicError(operation, r)
		return
	}
	*err = errors.Wrapf(*err, "panic in %s: %v", operation, r)
}

// SafeExecute runs fn, converting a panic into a PanicError.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
