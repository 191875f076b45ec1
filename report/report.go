// Package report は linear.Summary を人が読める表として書き出す
//
// 数値は shopspring/decimal で指定の桁数に丸める。NaN と ±Inf はそのまま表示する。
package report

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/YuminosukeSato/olsinfer/linear"
	"github.com/YuminosukeSato/olsinfer/pkg/errors"
)

// DefaultPrecision は小数点以下の桁数の既定値
const DefaultPrecision = 4

// InterceptName は切片の係数に付ける名前
const InterceptName = "(intercept)"

type config struct {
	precision int32
	title     string
}

// Option は Write の出力を設定する
type Option func(*config)

// WithPrecision は小数点以下の桁数を設定する。負の値は無視する
func WithPrecision(places int) Option {
	return func(c *config) {
		if places >= 0 {
			c.precision = int32(places)
		}
	}
}

// WithTitle は表の見出しを設定する
func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

// CoefficientNames は特徴量の列名から係数の名前を作る
//
// interceptAdded が true の場合は先頭に InterceptName を付ける。
func CoefficientNames(features []string, interceptAdded bool) []string {
	if !interceptAdded {
		return append([]string(nil), features...)
	}
	return append([]string{InterceptName}, features...)
}

// Write は係数表とモデルの統計量を w に書き出す
//
// names は係数と同じ順序・同じ数でなければならない。nil の場合は b0, b1, ... を使う。
func Write(w io.Writer, s *linear.Summary, names []string, opts ...Option) error {
	if s == nil {
		return errors.NewValueError("report.Write", "nil summary")
	}
	cfg := config{precision: DefaultPrecision, title: "OLS regression"}
	for _, opt := range opts {
		opt(&cfg)
	}

	if names == nil {
		names = make([]string, len(s.Coefficients))
		for i := range names {
			names[i] = fmt.Sprintf("b%d", i)
		}
	}
	if len(names) != len(s.Coefficients) {
		return errors.NewDimensionError("report.Write", len(s.Coefficients), len(names), 0)
	}

	num := func(v float64) string { return formatFloat(v, cfg.precision) }
	level := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(s.Alpha)).Shift(2)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tn=%d\td=%d\tdf=%d\tintercept=%t\n",
		cfg.title, s.Samples, s.Params, s.ANOVA.DFResidual, s.FitIntercept)
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "term\testimate\tstd.err\tt\tp\t%s%% lower\t%s%% upper\n", level, level)
	for i, c := range s.Coefficients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			names[i], num(c.Estimate), num(c.StandardError), num(c.T), num(c.P),
			num(c.Lower), num(c.Upper))
	}
	fmt.Fprintln(tw)

	r2, adj := num(s.RSquared), num(s.AdjustedRSquared)
	if s.RSquaredErr != nil {
		r2, adj = "undefined", "undefined"
	}
	rows := [][2]string{
		{"R²", r2},
		{"adjusted R²", adj},
		{"sample variance", num(s.SampleVariance)},
		{"residual std. dev.", num(s.StandardDeviation)},
		{"RMSE", num(s.RMSE)},
		{"MAE", num(s.MAE)},
		{fmt.Sprintf("F(%d, %d)", s.ANOVA.DFRegression, s.ANOVA.DFResidual), num(s.ANOVA.F)},
		{"p(F)", num(s.ANOVA.P)},
		{"rank", fmt.Sprintf("%d", s.Rank)},
		{"condition number", num(s.ConditionNumber)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "source\tdf\tSS\tMS")
	fmt.Fprintf(tw, "regression\t%d\t%s\t%s\n", s.ANOVA.DFRegression, num(s.ANOVA.SSR), num(s.ANOVA.MSR))
	fmt.Fprintf(tw, "residual\t%d\t%s\t%s\n", s.ANOVA.DFResidual, num(s.ANOVA.SSE), num(s.ANOVA.MSE))
	fmt.Fprintf(tw, "total\t%d\t%s\t\n", s.ANOVA.DFTotal, num(s.ANOVA.SST))

	return errors.Wrap(tw.Flush(), "report: write")
}

// formatFloat は v を小数点以下 places 桁に丸めた文字列を返す
func formatFloat(v float64, places int32) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}
