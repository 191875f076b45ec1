package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/rs/zerolog"
)

// 警告の配送先。pkg/log の SetupLogger が zerolog 側の関数を登録するまでは
// 標準の log パッケージに書き出す。pkg/log がこのパッケージを import するため、
// 逆向きは関数値で受け取る。
var (
	warnMu      sync.Mutex
	warnHandler = func(w error) { log.Printf("olsinfer-Warning: %v\n", w) }
	zerologWarn func(w error)
)

// SetWarningHandler は警告の受け取り先を差し替える。
// テストでは警告を収集し、t.Cleanup で元に戻す使い方をする。
//
//	errors.SetWarningHandler(func(w error) { got = append(got, w) })
func SetWarningHandler(handler func(w error)) {
	warnMu.Lock()
	defer warnMu.Unlock()
	warnHandler = handler
}

// SetZerologWarnFunc は構造化ログへの転送関数を登録する。nil で解除。
// 登録中は SetWarningHandler のハンドラより優先される。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warnMu.Lock()
	defer warnMu.Unlock()
	zerologWarn = warnFunc
}

// Warn は致命的でない数値上の問題を通知する。ハンドラはロック中に呼ばれるので
// ハンドラ内から Warn を呼んではならない。
func Warn(w error) {
	warnMu.Lock()
	defer warnMu.Unlock()

	switch {
	case zerologWarn != nil:
		zerologWarn(w)
	case warnHandler != nil:
		warnHandler(w)
	}
}

// NumericDegeneracyWarning は推論量が NaN や ±Inf になったことを表す。
// 標準誤差ゼロでの t 値や、残差自由度ゼロでの分散推定などが該当する。
type NumericDegeneracyWarning struct {
	Op       string
	Quantity string
	Reason   string
}

func NewNumericDegeneracyWarning(op, quantity, reason string) *NumericDegeneracyWarning {
	return &NumericDegeneracyWarning{Op: op, Quantity: quantity, Reason: reason}
}

func (w *NumericDegeneracyWarning) Error() string {
	return fmt.Sprintf("%s: %s is not finite: %s", w.Op, w.Quantity, w.Reason)
}

func (w *NumericDegeneracyWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", "NumericDegeneracyWarning").
		Str("operation", w.Op).
		Str("quantity", w.Quantity).
		Str("reason", w.Reason)
}
