// Package errors は olsinfer の型付きエラーと警告を定義する。
//
// 契約違反（未学習での呼び出し、次元の不一致、特異な XᵀX、定義できない統計量）は
// 型付きエラーとして返し、IEEE 演算として定義はされるが役に立たない結果は Warn で通知する。
// 生成されるエラーにはすべて cockroachdb/errors のスタックトレースが付く。
package errors

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

var (
	// ErrEmptyData は行が1つもない入力を表す。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は XᵀX が正定値でないことを表す。
	ErrSingularMatrix = New("singular matrix")
)

// NotFittedError は Fit 前に推論系のメソッドが呼ばれたことを表す。
type NotFittedError struct {
	ModelName string
	Method    string
}

func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("olsinfer: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "NotFittedError").
		Str("model_name", e.ModelName).
		Str("method", e.Method)
}

// DimensionError は行数または列数の不一致。Axis は 0 が行、1 が列。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

func (e *DimensionError) Error() string {
	if e.Axis == 1 {
		return fmt.Sprintf("olsinfer: %s: X has %d columns, but model expects %d", e.Op, e.Got, e.Expected)
	}
	return fmt.Sprintf("olsinfer: %s: dimension mismatch on axis 0 (rows). Expected %d, got %d", e.Op, e.Expected, e.Got)
}

func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "rows"
	if e.Axis == 1 {
		axisName = "columns"
	}
	event.Str("type", "DimensionError").
		Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName)
}

// ValidationError は設定値や引数が許容範囲外であることを表す。
// alpha、コーデック名、ログレベル、プロットの種類などで使う。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("olsinfer: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "ValidationError").
		Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value)
}

// DegenerateInputError は入力の性質上その統計量が定義できないことを表す。
// 目的変数が定数のときの R² が典型で、0 や 1 を返して誤魔化さない。
type DegenerateInputError struct {
	Op       string
	Quantity string
	Reason   string
}

func NewDegenerateInputError(op, quantity, reason string) error {
	return errors.WithStack(&DegenerateInputError{Op: op, Quantity: quantity, Reason: reason})
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("olsinfer: %s: %s is undefined: %s", e.Op, e.Quantity, e.Reason)
}

func (e *DegenerateInputError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "DegenerateInputError").
		Str("operation", e.Op).
		Str("quantity", e.Quantity).
		Str("reason", e.Reason)
}

// ValueError は空のベクトルや解釈できない値など、引数そのものの不正。
type ValueError struct {
	Op      string
	Message string
}

func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("olsinfer: %s: %s", e.Op, e.Message)
}

// ModelError は推定処理の失敗。Err に ErrSingularMatrix などの原因を持つ。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NewSingularMatrixError は reason を Kind に持ち ErrSingularMatrix を包んだ ModelError を返す。
func NewSingularMatrixError(op, reason string) error {
	return NewModelError(op, reason, ErrSingularMatrix)
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("olsinfer: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("olsinfer: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

func (e *ModelError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "ModelError").
		Str("operation", e.Op).
		Str("kind", e.Kind)
}

// NumericalInstabilityError は入力や係数に非有限値が現れたことを表す。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
}

func NewNumericalInstabilityError(operation string, values []float64) error {
	return errors.WithStack(&NumericalInstabilityError{Operation: operation, Values: values})
}

// Error は先頭5個までの値を表示する。
func (e *NumericalInstabilityError) Error() string {
	shown := e.Values
	more := ""
	if len(shown) > 5 {
		shown, more = shown[:5], ", ..."
	}
	parts := make([]string, len(shown))
	for i, v := range shown {
		parts[i] = fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("olsinfer: numerical instability detected in %s. Values: [%s%s]",
		e.Operation, strings.Join(parts, ", "), more)
}

func (e *NumericalInstabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("type", "NumericalInstabilityError").
		Str("operation", e.Operation).
		Floats64("values", e.Values)
}

// cockroachdb/errors の薄い再エクスポート。呼び出し側は標準 errors を import しない。

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }

func Wrap(err error, message string) error { return errors.Wrap(err, message) }

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

func New(message string) error { return errors.New(message) }

func WithStack(err error) error { return errors.WithStack(err) }
