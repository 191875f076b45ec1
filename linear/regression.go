// Package linear は通常最小二乗法（OLS）による線形回帰と、その統計的推論を提供する
//
// Regression は構築時に計画行列 X と目的変数 y を保持し、Fit で最小二乗問題を解く。
// 係数の標準誤差、t検定、F検定、信頼区間、決定係数、特徴量の相関行列は
// すべて学習済み状態から導出される。
package linear

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/olsinfer/core/model"
	"github.com/YuminosukeSato/olsinfer/core/parallel"
	"github.com/YuminosukeSato/olsinfer/metrics"
	"github.com/YuminosukeSato/olsinfer/pkg/errors"
	"github.com/YuminosukeSato/olsinfer/pkg/log"
)

const modelName = "Regression"

var _ model.Regressor = (*Regression)(nil)

// Regression は通常最小二乗法による線形回帰モデル
//
// X と y は構築時にコピーされ、以後変更されない。学習済み状態（係数と
// (XᵀX)⁻¹ の組）は Fit のたびに丸ごと置き換えられるため、Fit と他のメソッドを
// 並行に呼び出しても、読み手は古い組か新しい組のどちらか一方だけを観測する。
type Regression struct {
	x *mat.Dense    // n×d 計画行列（切片列を含む）
	y *mat.VecDense // 長さ n の目的変数
	n int
	d int

	fitIntercept   bool
	interceptAdded bool // 構築時に 1 の列を先頭に追加したか
	interceptTol   float64

	logger log.Logger
	state  model.FitState[fitResult]
}

// fitResult は Fit が生成する学習済み状態。生成後は変更しない
type fitResult struct {
	beta     *mat.VecDense // 係数（切片がある場合は index 0）
	xtxInv   *mat.SymDense // (XᵀX)⁻¹
	rank     int
	singular []float64 // X の特異値（降順）
	cond     float64   // XᵀX の条件数
}

// NewRegression は新しい線形回帰モデルを作成する
//
// X は n×d の行列。1次元の系列は n×1 の行列（*mat.VecDense など）として渡す。
// 切片を学習する設定で、X の先頭列がすべて 1（許容誤差内）でなければ 1 の列を先頭に追加する。
// 階数や n ≥ d の検証は Fit まで行わない。
func NewRegression(X mat.Matrix, y mat.Vector, opts ...Option) (*Regression, error) {
	const op = "NewRegression"

	if X == nil {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	n, c := X.Dims()
	if n == 0 || c == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if y == nil {
		return nil, errors.NewDimensionError(op, n, 0, 0)
	}
	if y.Len() != n {
		return nil, errors.NewDimensionError(op, n, y.Len(), 0)
	}

	r := &Regression{
		n:            n,
		fitIntercept: true,
		interceptTol: DefaultInterceptTolerance,
		logger:       log.GetLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(log.ModelNameKey, modelName, log.ComponentKey, "linear")

	if r.fitIntercept && !hasOnesColumn(X, r.interceptTol) {
		r.x = withInterceptColumn(X)
		r.interceptAdded = true
	} else {
		r.x = mat.DenseCopyOf(X)
	}
	_, r.d = r.x.Dims()

	r.y = mat.NewVecDense(n, nil)
	r.y.CopyVec(y)

	return r, nil
}

// NewRegressionFromSlices は行スライスから線形回帰モデルを作成する
//
// x[i] は i 番目のサンプルの特徴量。すべての行は同じ長さでなければならない。
func NewRegressionFromSlices(x [][]float64, y []float64, opts ...Option) (*Regression, error) {
	const op = "NewRegressionFromSlices"

	n := len(x)
	if n == 0 || len(x[0]) == 0 {
		return nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if len(y) != n {
		return nil, errors.NewDimensionError(op, n, len(y), 0)
	}

	c := len(x[0])
	data := make([]float64, 0, n*c)
	for _, row := range x {
		if len(row) != c {
			return nil, errors.NewDimensionError(op, c, len(row), 1)
		}
		data = append(data, row...)
	}

	return NewRegression(mat.NewDense(n, c, data), mat.NewVecDense(n, y), opts...)
}

// NewSimpleRegression は1つの特徴量の系列から線形回帰モデルを作成する
func NewSimpleRegression(x, y []float64, opts ...Option) (*Regression, error) {
	if len(x) == 0 {
		return nil, errors.NewModelError("NewSimpleRegression", "empty data", errors.ErrEmptyData)
	}
	if len(y) != len(x) {
		return nil, errors.NewDimensionError("NewSimpleRegression", len(x), len(y), 0)
	}
	return NewRegression(mat.NewVecDense(len(x), x), mat.NewVecDense(len(y), y), opts...)
}

// hasOnesColumn は X の先頭列がすべて 1（許容誤差内）かどうかを返す
func hasOnesColumn(X mat.Matrix, tol float64) bool {
	n, _ := X.Dims()
	for i := 0; i < n; i++ {
		if !scalar.EqualWithinAbs(X.At(i, 0), 1, tol) {
			return false
		}
	}
	return true
}

// withInterceptColumn は X の先頭に 1 の列を追加した新しい行列を返す
func withInterceptColumn(X mat.Matrix) *mat.Dense {
	n, c := X.Dims()
	out := mat.NewDense(n, c+1, nil)

	parallel.ParallelizeWithThreshold(n, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			out.Set(i, 0, 1.0) // 切片項
			for j := 0; j < c; j++ {
				out.Set(i, j+1, X.At(i, j))
			}
		}
	})

	return out
}

// Fit はモデルを学習させ、係数を返す
//
// X の QR 分解 X = QR から最小二乗解 β を求め、推論用の (XᵀX)⁻¹ = R⁻¹R⁻ᵀ を
// 同じ三角因子から作る。XᵀX を陽に作らないので、条件数が cond(X)² に悪化しない。
// ErrSingularMatrix を返すのは d > n の場合と、X の数値階数が d 未満の場合だけ。
// 失敗した場合、以前の学習済み状態はそのまま残る。
func (r *Regression) Fit() (beta []float64, err error) {
	const op = "Regression.Fit"
	defer errors.Recover(&err, op)

	start := time.Now()
	r.logger.Debug("Fit started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, r.n,
		log.ParamsKey, r.d,
		log.InterceptKey, r.fitIntercept,
	)

	if err := errors.CheckNumericalStability("design matrix", r.x.RawMatrix().Data); err != nil {
		return nil, err
	}
	if err := errors.CheckNumericalStability("target", r.y.RawVector().Data); err != nil {
		return nil, err
	}

	if r.d > r.n {
		return nil, errors.NewSingularMatrixError(op,
			fmt.Sprintf("%d parameters exceed %d samples", r.d, r.n))
	}

	// 特異値分解で数値階数を確認する
	var svd mat.SVD
	if ok := svd.Factorize(r.x, mat.SVDNone); !ok {
		return nil, errors.NewSingularMatrixError(op, "SVD factorization failed")
	}
	singular := svd.Values(nil)
	rcond := float64(max(r.n, r.d)) * machineEpsilon
	rank := svd.Rank(rcond)
	if rank < r.d {
		return nil, errors.NewSingularMatrixError(op,
			fmt.Sprintf("X has rank %d but %d parameters", rank, r.d))
	}
	// cond(XᵀX) = (σmax/σmin)²
	ratio := singular[0] / singular[r.d-1]
	cond := ratio * ratio

	var qr mat.QR
	qr.Factorize(r.x)

	b := mat.NewVecDense(r.d, nil)
	if err := advisory(qr.SolveVecTo(b, false, r.y)); err != nil {
		return nil, errors.NewSingularMatrixError(op, err.Error())
	}

	// R の上側 d×d ブロック
	var rFull mat.Dense
	qr.RTo(&rFull)
	R := mat.NewTriDense(r.d, mat.Upper, nil)
	for i := 0; i < r.d; i++ {
		for j := i; j < r.d; j++ {
			R.SetTri(i, j, rFull.At(i, j))
		}
	}
	var rInv mat.TriDense
	if err := advisory(rInv.InverseTri(R)); err != nil {
		return nil, errors.NewSingularMatrixError(op, err.Error())
	}
	inv := mat.NewSymDense(r.d, nil)
	inv.SymOuterK(1, &rInv)

	if cond > mat.ConditionTolerance {
		r.logger.Warn("Design matrix is ill-conditioned",
			log.OperationKey, log.OperationFit,
			log.ConditionKey, cond,
			log.RankKey, rank,
		)
	}

	coef := make([]float64, r.d)
	copy(coef, b.RawVector().Data)
	if err := errors.CheckNumericalStability("coefficients", coef); err != nil {
		return nil, err
	}

	res := &fitResult{
		beta:     b,
		xtxInv:   inv,
		rank:     rank,
		singular: singular,
		cond:     cond,
	}
	r.state.Store(res)

	r.logger.Info("Fit completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, r.n,
		log.ParamsKey, r.d,
		log.RankKey, rank,
		log.ConditionKey, res.cond,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return coef, nil
}

// advisory は gonum が返す有限の条件数エラーを読み捨てる。
// 階数は SVD で確認済みなので、無限大の条件数だけを失敗として扱う。
func advisory(err error) error {
	var c mat.Condition
	if errors.As(err, &c) && !math.IsInf(float64(c), 1) {
		return nil
	}
	return err
}

// machineEpsilon は float64 の丸め単位の2倍（numpy の finfo(float64).eps）
const machineEpsilon = 2.220446049250313e-16

// Predict は入力データに対する予測を行う
//
// X が nil の場合は学習データの予測値 X·β を返す。それ以外の場合、切片を学習する設定では
// 1 の列を無条件に先頭へ追加し、列数が係数の数と一致しなければ DimensionError を返す。
func (r *Regression) Predict(X mat.Matrix) (_ *mat.VecDense, err error) {
	defer errors.Recover(&err, "Regression.Predict")

	fit, err := r.state.Require(modelName, "Predict")
	if err != nil {
		return nil, err
	}

	if X == nil {
		var out mat.VecDense
		out.MulVec(r.x, fit.beta)
		return &out, nil
	}

	rows, cols := X.Dims()
	width := cols
	if r.fitIntercept {
		width++
	}
	if width != fit.beta.Len() {
		return nil, errors.NewDimensionError("Regression.Predict", fit.beta.Len(), width, 1)
	}
	if rows == 0 {
		return nil, errors.NewValueError("Regression.Predict", "X has no rows")
	}

	beta := fit.beta.RawVector().Data
	out := mat.NewVecDense(rows, nil)
	parallel.ParallelizeWithThreshold(rows, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			var pred float64
			j0 := 0
			if r.fitIntercept {
				pred = beta[0]
				j0 = 1
			}
			for j := 0; j < cols; j++ {
				pred += X.At(i, j) * beta[j+j0]
			}
			out.SetVec(i, pred)
		}
	})

	return out, nil
}

// FittedValues は学習データの予測値 X·β を返す（Predict(nil) と同じ）
func (r *Regression) FittedValues() (*mat.VecDense, error) {
	return r.Predict(nil)
}

// Residuals は残差 y − X·β を返す
func (r *Regression) Residuals() (*mat.VecDense, error) {
	fitted, err := r.Predict(nil)
	if err != nil {
		return nil, err
	}
	var res mat.VecDense
	res.SubVec(r.y, fitted)
	return &res, nil
}

// Score は与えられたデータに対する決定係数（R²）を計算する
func (r *Regression) Score(X mat.Matrix, y mat.Vector) (float64, error) {
	yPred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	if y == nil || y.Len() != yPred.Len() {
		got := 0
		if y != nil {
			got = y.Len()
		}
		return 0, errors.NewDimensionError("Regression.Score", yPred.Len(), got, 0)
	}

	score, err := metrics.R2Score(y, yPred)
	if err != nil {
		return 0, err
	}
	r.logger.Debug("Score computed",
		log.OperationKey, log.OperationScore,
		log.PredsKey, yPred.Len(),
		log.R2ScoreKey, score,
	)
	return score, nil
}

// Coefficients は学習された係数のコピーを返す（切片がある場合は index 0）
func (r *Regression) Coefficients() ([]float64, error) {
	fit, err := r.state.Require(modelName, "Coefficients")
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, fit.beta), nil
}

// IsFitted はモデルが学習済みかどうかを返す
func (r *Regression) IsFitted() bool {
	return r.state.IsFitted()
}

// NumSamples はサンプル数 n を返す
func (r *Regression) NumSamples() int { return r.n }

// NumParams は切片列を含むパラメータ数 d を返す
func (r *Regression) NumParams() int { return r.d }

// FitIntercept は切片を学習する設定かどうかを返す
func (r *Regression) FitIntercept() bool { return r.fitIntercept }

// InterceptAdded は構築時に 1 の列を追加したかどうかを返す
func (r *Regression) InterceptAdded() bool { return r.interceptAdded }

// DesignMatrix は計画行列のコピーを返す
func (r *Regression) DesignMatrix() *mat.Dense {
	return mat.DenseCopyOf(r.x)
}

// Target は目的変数のコピーを返す
func (r *Regression) Target() *mat.VecDense {
	return mat.VecDenseCopyOf(r.y)
}

// Rank は学習時に求めた X の数値階数を返す
func (r *Regression) Rank() (int, error) {
	fit, err := r.state.Require(modelName, "Rank")
	if err != nil {
		return 0, err
	}
	return fit.rank, nil
}

// SingularValues は X の特異値を降順で返す
func (r *Regression) SingularValues() ([]float64, error) {
	fit, err := r.state.Require(modelName, "SingularValues")
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), fit.singular...), nil
}

// ConditionNumber は XᵀX の条件数を返す
func (r *Regression) ConditionNumber() (float64, error) {
	fit, err := r.state.Require(modelName, "ConditionNumber")
	if err != nil {
		return math.NaN(), err
	}
	return fit.cond, nil
}
