package linear

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/olsinfer/metrics"
	"github.com/YuminosukeSato/olsinfer/pkg/errors"
	"github.com/YuminosukeSato/olsinfer/pkg/log"
)

// ANOVA は回帰の分散分析表
type ANOVA struct {
	DFRegression int
	DFResidual   int
	DFTotal      int

	SSR float64
	SSE float64
	SST float64

	MSR float64 // SSR / DFRegression
	MSE float64 // SSE / DFResidual

	F float64
	P float64
}

// Coefficient は1つの係数に関する推論結果
type Coefficient struct {
	Estimate      float64
	StandardError float64
	T             float64
	P             float64
	Lower         float64
	Upper         float64
}

// Summary は学習済みモデルのすべての統計量をまとめたもの
//
// 目的変数の分散がゼロの場合、RSquared と AdjustedRSquared は NaN になり
// RSquaredErr に DegenerateInputError が入る。
type Summary struct {
	Samples      int
	Params       int
	FitIntercept bool
	Alpha        float64

	Coefficients []Coefficient

	SampleVariance    float64
	StandardDeviation float64
	RMSE              float64
	MAE               float64

	RSquared         float64
	AdjustedRSquared float64
	RSquaredErr      error

	ANOVA ANOVA

	Rank            int
	ConditionNumber float64
}

// Summary は信頼水準 1 − alpha で全統計量を計算し、Summary として返す
//
// すべての値は同じ学習済み状態から計算される。
func (r *Regression) Summary(alpha float64) (*Summary, error) {
	if !(alpha > 0 && alpha < 1) {
		return nil, errors.NewValidationError("alpha", "must lie in the open interval (0, 1)", alpha)
	}
	fit, err := r.state.Require(modelName, "Summary")
	if err != nil {
		return nil, err
	}
	start := time.Now()

	s := r.sumsFor(fit)
	df := r.DegreesOfFreedom()
	beta := fit.beta.RawVector().Data
	variance := r.sampleVariance(s)
	se := r.standardErrors(fit, variance)
	t := tValues(beta, se)
	p := pValues(t, float64(df))
	lower, upper := confidenceIntervals(beta, se, alpha, float64(df))

	coefs := make([]Coefficient, r.d)
	for i := range coefs {
		coefs[i] = Coefficient{
			Estimate:      beta[i],
			StandardError: se[i],
			T:             t[i],
			P:             p[i],
			Lower:         lower[i],
			Upper:         upper[i],
		}
	}

	var fitted mat.VecDense
	fitted.MulVec(r.x, fit.beta)
	mae, err := metrics.MAE(r.y, &fitted)
	if err != nil {
		return nil, err
	}

	r2, r2Err := rSquared(s)
	adj := math.NaN()
	if r2Err == nil {
		adj, _ = r.adjustedRSquared(s)
	}

	F, pF := r.fTest(s)
	out := &Summary{
		Samples:           r.n,
		Params:            r.d,
		FitIntercept:      r.fitIntercept,
		Alpha:             alpha,
		Coefficients:      coefs,
		SampleVariance:    variance,
		StandardDeviation: math.Sqrt(variance),
		RMSE:              math.Sqrt(s.sse / float64(r.n)),
		MAE:               mae,
		RSquared:          r2,
		AdjustedRSquared:  adj,
		RSquaredErr:       r2Err,
		ANOVA: ANOVA{
			DFRegression: r.d - 1,
			DFResidual:   df,
			DFTotal:      r.n - 1,
			SSR:          s.ssr,
			SSE:          s.sse,
			SST:          s.sst,
			MSR:          s.ssr / float64(r.d-1),
			MSE:          s.sse / float64(df),
			F:            F,
			P:            pF,
		},
		Rank:            fit.rank,
		ConditionNumber: fit.cond,
	}

	r.logger.Debug("Summary computed",
		log.OperationKey, log.OperationSummary,
		log.PhaseKey, log.PhaseReporting,
		log.FStatKey, F,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out, nil
}
