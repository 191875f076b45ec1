package linear

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/olsinfer/pkg/errors"
)

// sums は学習済みモデルの平方和をまとめたもの
type sums struct {
	sse float64 // 残差平方和 Σ(y − ŷ)²
	ssr float64 // 回帰平方和 Σ(ŷ − ȳ)²
	sst float64 // 全平方和 Σ(y − ȳ)²
}

// sumsOfSquares は学習済み状態から SSE, SSR, SST を計算する
func (r *Regression) sumsOfSquares(method string) (sums, error) {
	fit, err := r.state.Require(modelName, method)
	if err != nil {
		return sums{}, err
	}
	return r.sumsFor(fit), nil
}

func (r *Regression) sumsFor(fit *fitResult) sums {
	var fitted mat.VecDense
	fitted.MulVec(r.x, fit.beta)

	y := r.y.RawVector().Data
	yHat := fitted.RawVector().Data
	yMean := stat.Mean(y, nil)

	var s sums
	for i, v := range y {
		res := v - yHat[i]
		s.sse += res * res
		dr := yHat[i] - yMean
		s.ssr += dr * dr
		dt := v - yMean
		s.sst += dt * dt
	}
	return s
}

// SSE は残差平方和 Σ(y − ŷ)² を返す
func (r *Regression) SSE() (float64, error) {
	s, err := r.sumsOfSquares("SSE")
	return s.sse, err
}

// SSR は回帰平方和 Σ(ŷ − ȳ)² を返す
func (r *Regression) SSR() (float64, error) {
	s, err := r.sumsOfSquares("SSR")
	return s.ssr, err
}

// SST は全平方和 Σ(y − ȳ)² を返す。切片付きのモデルでは SST ≈ SSR + SSE
func (r *Regression) SST() (float64, error) {
	s, err := r.sumsOfSquares("SST")
	return s.sst, err
}

// DegreesOfFreedom は残差の自由度 n − d を返す
func (r *Regression) DegreesOfFreedom() int {
	return r.n - r.d
}

// SampleVariance は誤差分散の不偏推定量 SSE/(n − d) を返す
//
// n == d の場合はゼロ除算となり ±Inf または NaN を返す（値は補正しない）。
// その場合は NumericDegeneracyWarning を通知する。
func (r *Regression) SampleVariance() (float64, error) {
	s, err := r.sumsOfSquares("SampleVariance")
	if err != nil {
		return math.NaN(), err
	}
	return r.sampleVariance(s), nil
}

func (r *Regression) sampleVariance(s sums) float64 {
	df := r.DegreesOfFreedom()
	if df <= 0 {
		errors.Warn(errors.NewNumericDegeneracyWarning("Regression.SampleVariance",
			"sample variance", "no residual degrees of freedom (n == d)"))
	}
	return s.sse / float64(df)
}

// StandardDeviation は残差標準偏差 sqrt(SampleVariance) を返す
func (r *Regression) StandardDeviation() (float64, error) {
	v, err := r.SampleVariance()
	if err != nil {
		return math.NaN(), err
	}
	return math.Sqrt(v), nil
}

// RMSE は sqrt(SSE/n) を返す。n で正規化する点で StandardDeviation と異なる
func (r *Regression) RMSE() (float64, error) {
	res, err := r.Residuals()
	if err != nil {
		return math.NaN(), err
	}
	data := res.RawVector().Data
	return math.Sqrt(floats.Dot(data, data) / float64(len(data))), nil
}

// RSquared は決定係数 1 − SSE/SST を返す
//
// SST がちょうどゼロ（目的変数の分散がゼロ）の場合、R² は定義されないため
// DegenerateInputError を返す。
func (r *Regression) RSquared() (float64, error) {
	s, err := r.sumsOfSquares("RSquared")
	if err != nil {
		return math.NaN(), err
	}
	return rSquared(s)
}

func rSquared(s sums) (float64, error) {
	if s.sst == 0 {
		return math.NaN(), errors.NewDegenerateInputError("Regression.RSquared", "R²",
			"total sum of squares is zero (target has no variance)")
	}
	return 1 - s.sse/s.sst, nil
}

// AdjustedRSquared は自由度調整済み決定係数 1 − (1 − R²)(n − 1)/(n − d) を返す
func (r *Regression) AdjustedRSquared() (float64, error) {
	s, err := r.sumsOfSquares("AdjustedRSquared")
	if err != nil {
		return math.NaN(), err
	}
	return r.adjustedRSquared(s)
}

func (r *Regression) adjustedRSquared(s sums) (float64, error) {
	r2, err := rSquared(s)
	if err != nil {
		return math.NaN(), err
	}
	return 1 - (1-r2)*float64(r.n-1)/float64(r.DegreesOfFreedom()), nil
}
