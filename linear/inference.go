package linear

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/olsinfer/pkg/errors"
)

// RegressionSignificance は回帰全体の有意性を検定する F 統計量と p 値を返す
//
// df_reg = d − 1, df_err = n − d として F = (SSR/df_reg)/(SSE/df_err)。
// df_reg は切片の有無にかかわらず常に d − 1 を使う。切片なしのモデルでは
// 慣例（df_reg = d）と異なる点に注意。
// 自由度が正でない場合や F が NaN の場合、p は NaN。F = +Inf の場合 p = 0。
func (r *Regression) RegressionSignificance() (F, p float64, err error) {
	s, err := r.sumsOfSquares("RegressionSignificance")
	if err != nil {
		return math.NaN(), math.NaN(), err
	}
	F, p = r.fTest(s)
	return F, p, nil
}

func (r *Regression) fTest(s sums) (F, p float64) {
	dfReg := float64(r.d - 1)
	dfErr := float64(r.DegreesOfFreedom())

	F = (s.ssr / dfReg) / (s.sse / dfErr)
	return F, fSurvival(F, dfReg, dfErr)
}

// fSurvival は F 分布の上側確率 P(X ≥ f) を返す
func fSurvival(f, d1, d2 float64) float64 {
	switch {
	case d1 <= 0 || d2 <= 0 || math.IsNaN(f):
		return math.NaN()
	case math.IsInf(f, 1):
		return 0
	case f <= 0:
		return 1
	}
	return distuv.F{D1: d1, D2: d2}.Survival(f)
}

// CovBeta は係数の分散共分散行列 SampleVariance·(XᵀX)⁻¹ を返す
func (r *Regression) CovBeta() (*mat.SymDense, error) {
	fit, err := r.state.Require(modelName, "CovBeta")
	if err != nil {
		return nil, err
	}
	return r.covBeta(fit, r.sampleVariance(r.sumsFor(fit))), nil
}

// covBeta は σ² を受け取る。σ² の計算は自由度ゼロの警告を伴うため、呼び出しごとに一度だけ行う
func (r *Regression) covBeta(fit *fitResult, variance float64) *mat.SymDense {
	var cov mat.SymDense
	cov.ScaleSym(variance, fit.xtxInv)
	return &cov
}

// StandardErrors は係数の標準誤差 sqrt(diag(CovBeta)) を返す
func (r *Regression) StandardErrors() ([]float64, error) {
	fit, err := r.state.Require(modelName, "StandardErrors")
	if err != nil {
		return nil, err
	}
	return r.standardErrors(fit, r.sampleVariance(r.sumsFor(fit))), nil
}

func (r *Regression) standardErrors(fit *fitResult, variance float64) []float64 {
	cov := r.covBeta(fit, variance)
	se := make([]float64, r.d)
	for i := range se {
		se[i] = math.Sqrt(cov.At(i, i))
	}
	return se
}

// TValues は係数ごとの t 値 β/SE を返す
//
// 標準誤差がゼロの係数は NaN とし、NumericDegeneracyWarning を通知する。
func (r *Regression) TValues() ([]float64, error) {
	fit, err := r.state.Require(modelName, "TValues")
	if err != nil {
		return nil, err
	}
	return tValues(fit.beta.RawVector().Data, r.standardErrors(fit, r.sampleVariance(r.sumsFor(fit)))), nil
}

func tValues(beta, se []float64) []float64 {
	t := make([]float64, len(beta))
	for i := range beta {
		if se[i] == 0 {
			errors.Warn(errors.NewNumericDegeneracyWarning("Regression.TValues",
				fmt.Sprintf("t-value[%d]", i), "standard error is zero"))
			t[i] = math.NaN()
			continue
		}
		t[i] = beta[i] / se[i]
	}
	return t
}

// PValues は係数ごとの両側 p 値 2·P(T ≥ |t|) を返す（自由度 n − d の t 分布）
//
// t が NaN の係数、または自由度が正でない場合は NaN。
func (r *Regression) PValues() ([]float64, error) {
	t, err := r.TValues()
	if err != nil {
		return nil, err
	}
	return pValues(t, float64(r.DegreesOfFreedom())), nil
}

func pValues(t []float64, df float64) []float64 {
	p := make([]float64, len(t))
	for i, v := range t {
		p[i] = tTwoSided(v, df)
	}
	return p
}

// tTwoSided は t 分布の両側確率 2·P(T ≥ |t|) を返す
func tTwoSided(t, df float64) float64 {
	switch {
	case df <= 0 || math.IsNaN(t):
		return math.NaN()
	case math.IsInf(t, 0):
		return 0
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

// ConfidenceIntervals は係数の 100(1 − alpha)% 信頼区間 β ± t_crit·SE を返す
//
// t_crit は自由度 n − d の t 分布の 1 − alpha/2 分位点。alpha が (0, 1) の範囲外の場合は
// ValidationError を返す。自由度が正でない場合、区間の端点は NaN。
func (r *Regression) ConfidenceIntervals(alpha float64) (lower, upper []float64, err error) {
	if !(alpha > 0 && alpha < 1) {
		return nil, nil, errors.NewValidationError("alpha", "must lie in the open interval (0, 1)", alpha)
	}
	fit, err := r.state.Require(modelName, "ConfidenceIntervals")
	if err != nil {
		return nil, nil, err
	}
	se := r.standardErrors(fit, r.sampleVariance(r.sumsFor(fit)))
	lower, upper = confidenceIntervals(fit.beta.RawVector().Data, se, alpha, float64(r.DegreesOfFreedom()))
	return lower, upper, nil
}

func confidenceIntervals(beta, se []float64, alpha, df float64) (lower, upper []float64) {
	tCrit := math.NaN()
	if df > 0 {
		tCrit = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(1 - alpha/2)
	}

	lower = make([]float64, len(beta))
	upper = make([]float64, len(beta))
	for i := range beta {
		margin := tCrit * se[i]
		lower[i] = beta[i] - margin
		upper[i] = beta[i] + margin
	}
	return lower, upper
}
