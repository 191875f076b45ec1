package linear

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/olsinfer/pkg/errors"
	"github.com/YuminosukeSato/olsinfer/pkg/log"
)

// twoFeatureData は2つの特徴量と決定的なノイズを持つデータを返す
// y = 1 + 2·x1 − 0.5·x2 + noise
func twoFeatureData() (*mat.Dense, *mat.VecDense) {
	x1 := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	x2 := []float64{2, 1, 4, 3, 6, 5, 8, 7, 10, 9}
	noise := []float64{0.1, -0.2, 0.05, 0.3, -0.1, 0.0, -0.25, 0.15, 0.2, -0.05}

	X := mat.NewDense(len(x1), 2, nil)
	y := mat.NewVecDense(len(x1), nil)
	for i := range x1 {
		X.Set(i, 0, x1[i])
		X.Set(i, 1, x2[i])
		y.SetVec(i, 1+2*x1[i]-0.5*x2[i]+noise[i])
	}
	return X, y
}

func fittedTwoFeature(t *testing.T, opts ...Option) *Regression {
	t.Helper()
	X, y := twoFeatureData()
	reg, err := NewRegression(X, y, opts...)
	require.NoError(t, err)
	_, err = reg.Fit()
	require.NoError(t, err)
	return reg
}

func TestRegression_PerfectLine(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}

	reg, err := NewSimpleRegression(x, y)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.NumParams())

	beta, err := reg.Fit()
	require.NoError(t, err)
	require.Len(t, beta, 2)
	assert.InDelta(t, 0.0, beta[0], 1e-9)
	assert.InDelta(t, 2.0, beta[1], 1e-9)

	r2, err := reg.RSquared()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r2, 1e-9)

	sse, err := reg.SSE()
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sse, 1e-12)
}

func TestNewRegression_Intercept(t *testing.T) {
	t.Run("ones column is added", func(t *testing.T) {
		X := mat.NewDense(3, 1, []float64{1, 2, 3})
		reg, err := NewRegression(X, mat.NewVecDense(3, []float64{1, 2, 3}))
		require.NoError(t, err)
		assert.Equal(t, 2, reg.NumParams())
		assert.True(t, reg.InterceptAdded())
		assert.Equal(t, 1.0, reg.DesignMatrix().At(2, 0))
	})

	t.Run("existing ones column is reused", func(t *testing.T) {
		X := mat.NewDense(3, 2, []float64{
			1, 1,
			1 + 1e-9, 2,
			1, 3,
		})
		reg, err := NewRegression(X, mat.NewVecDense(3, []float64{1, 2, 3}))
		require.NoError(t, err)
		assert.Equal(t, 2, reg.NumParams())
		assert.False(t, reg.InterceptAdded())
	})

	t.Run("no intercept", func(t *testing.T) {
		X := mat.NewDense(3, 1, []float64{1, 2, 3})
		reg, err := NewRegression(X, mat.NewVecDense(3, []float64{1, 2, 3}), WithFitIntercept(false))
		require.NoError(t, err)
		assert.Equal(t, 1, reg.NumParams())
		assert.False(t, reg.FitIntercept())
	})

	t.Run("custom tolerance", func(t *testing.T) {
		X := mat.NewDense(2, 2, []float64{
			1.001, 1,
			0.999, 2,
		})
		reg, err := NewRegression(X, mat.NewVecDense(2, []float64{1, 2}), WithInterceptTolerance(0.01))
		require.NoError(t, err)
		assert.False(t, reg.InterceptAdded())
	})
}

func TestNewRegression_CopiesInput(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewVecDense(3, []float64{2, 4, 6})

	reg, err := NewRegression(X, y, WithFitIntercept(false))
	require.NoError(t, err)

	X.Set(0, 0, 100)
	y.SetVec(0, 100)

	assert.Equal(t, 1.0, reg.DesignMatrix().At(0, 0))
	assert.Equal(t, 2.0, reg.Target().AtVec(0))
}

func TestNewRegression_Errors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := NewRegression(&mat.Dense{}, mat.NewVecDense(1, nil))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrEmptyData))

		_, err = NewRegressionFromSlices(nil, nil)
		assert.True(t, errors.Is(err, errors.ErrEmptyData))
	})

	t.Run("target length mismatch", func(t *testing.T) {
		_, err := NewRegression(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewVecDense(2, []float64{1, 2}))

		var dimErr *errors.DimensionError
		require.True(t, errors.As(err, &dimErr))
		assert.Equal(t, 3, dimErr.Expected)
		assert.Equal(t, 2, dimErr.Got)
	})

	t.Run("ragged rows", func(t *testing.T) {
		_, err := NewRegressionFromSlices([][]float64{{1, 2}, {3}}, []float64{1, 2})

		var dimErr *errors.DimensionError
		require.True(t, errors.As(err, &dimErr))
		assert.Equal(t, 1, dimErr.Axis)
	})
}

func TestRegression_FitSingular(t *testing.T) {
	tests := []struct {
		name string
		x    [][]float64
		y    []float64
		opts []Option
	}{
		{
			name: "duplicate columns with intercept",
			x:    [][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}},
			y:    []float64{1, 2, 3, 5},
		},
		{
			name: "more parameters than samples",
			x:    [][]float64{{1, 2, 3}, {4, 5, 7}},
			y:    []float64{1, 2},
		},
		{
			name: "all-zero column without intercept",
			x:    [][]float64{{0, 1}, {0, 2}, {0, 3}},
			y:    []float64{1, 2, 3},
			opts: []Option{WithFitIntercept(false)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegressionFromSlices(tt.x, tt.y, tt.opts...)
			require.NoError(t, err)

			_, err = reg.Fit()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrSingularMatrix), "got %v", err)
			assert.False(t, reg.IsFitted())
		})
	}
}

func TestRegression_FitIllConditionedFullRank(t *testing.T) {
	t.Run("quartic polynomial", func(t *testing.T) {
		// 列 x, x², x³, x⁴ (x = 1..100)。cond(X) ≈ 1.8e8 で cond(XᵀX) は 1e16 を超える
		want := []float64{5, 2, -0.3, 0.004, 1e-5}
		rows := make([][]float64, 100)
		y := make([]float64, 100)
		for i := range rows {
			x := float64(i + 1)
			rows[i] = []float64{x, x * x, x * x * x, x * x * x * x}
			y[i] = want[0]
			for j, v := range rows[i] {
				y[i] += want[j+1] * v
			}
		}

		logger, _ := log.NewTestLogger(log.LevelWarn)
		reg, err := NewRegressionFromSlices(rows, y, WithLogger(logger))
		require.NoError(t, err)

		beta, err := reg.Fit()
		require.NoError(t, err)
		assert.InEpsilonSlice(t, want, beta, 1e-6)

		rank, err := reg.Rank()
		require.NoError(t, err)
		assert.Equal(t, 5, rank)

		cond, err := reg.ConditionNumber()
		require.NoError(t, err)
		assert.Greater(t, cond, mat.ConditionTolerance)
		assert.True(t, logger.ContainsMessage("Design matrix is ill-conditioned"))

		se, err := reg.StandardErrors()
		require.NoError(t, err)
		for _, v := range se {
			assert.False(t, math.IsNaN(v))
		}
	})

	t.Run("large offset simple regression", func(t *testing.T) {
		x := make([]float64, 51)
		y := make([]float64, 51)
		for i := range x {
			x[i] = 1e6 + float64(i)
			y[i] = 3 + 0.5*x[i]
		}

		reg, err := NewSimpleRegression(x, y)
		require.NoError(t, err)

		beta, err := reg.Fit()
		require.NoError(t, err)
		assert.InDelta(t, 3, beta[0], 1e-2)
		assert.InDelta(t, 0.5, beta[1], 1e-8)
	})
}

func TestRegression_FailedFitKeepsPreviousState(t *testing.T) {
	reg := fittedTwoFeature(t)
	before, err := reg.Coefficients()
	require.NoError(t, err)

	// A failing refit must not disturb the stored state.
	reg.y.SetVec(0, math.NaN())
	_, err = reg.Fit()
	require.Error(t, err)

	var numErr *errors.NumericalInstabilityError
	assert.True(t, errors.As(err, &numErr))

	after, err := reg.Coefficients()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRegression_NotFitted(t *testing.T) {
	X, y := twoFeatureData()
	reg, err := NewRegression(X, y)
	require.NoError(t, err)

	calls := map[string]func() error{
		"Predict":   func() error { _, err := reg.Predict(nil); return err },
		"Residuals": func() error { _, err := reg.Residuals(); return err },
		"SSE":       func() error { _, err := reg.SSE(); return err },
		"RSquared":  func() error { _, err := reg.RSquared(); return err },
		"CovBeta":   func() error { _, err := reg.CovBeta(); return err },
		"PValues":   func() error { _, err := reg.PValues(); return err },
		"Pearson":   func() error { _, err := reg.PearsonMatrix(); return err },
		"Summary":   func() error { _, err := reg.Summary(0.05); return err },
		"Snapshot":  func() error { _, err := reg.Snapshot(); return err },
		"FTest": func() error {
			_, _, err := reg.RegressionSignificance()
			return err
		},
		"CI": func() error {
			_, _, err := reg.ConfidenceIntervals(0.05)
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			var nf *errors.NotFittedError
			assert.True(t, errors.As(err, &nf), "expected NotFittedError, got %v", err)
		})
	}
}

func TestRegression_Predict(t *testing.T) {
	reg := fittedTwoFeature(t)
	X, _ := twoFeatureData()

	t.Run("nil reproduces X·beta", func(t *testing.T) {
		beta, err := reg.Coefficients()
		require.NoError(t, err)

		got, err := reg.Predict(nil)
		require.NoError(t, err)

		var want mat.VecDense
		want.MulVec(reg.DesignMatrix(), mat.NewVecDense(len(beta), beta))
		assert.True(t, mat.EqualApprox(got, &want, 1e-12))
	})

	t.Run("raw training X matches fitted values", func(t *testing.T) {
		fitted, err := reg.FittedValues()
		require.NoError(t, err)

		got, err := reg.Predict(X)
		require.NoError(t, err)
		assert.True(t, mat.EqualApprox(got, fitted, 1e-10))
	})

	t.Run("column count mismatch", func(t *testing.T) {
		_, err := reg.Predict(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "X has 4 columns, but model expects 3")

		var dimErr *errors.DimensionError
		require.True(t, errors.As(err, &dimErr))
		assert.Equal(t, 3, dimErr.Expected)
		assert.Equal(t, 4, dimErr.Got)
	})

	t.Run("typed nil matrix is an error", func(t *testing.T) {
		var X *mat.Dense
		got, err := reg.Predict(X)
		assert.Nil(t, got)

		var panicErr *errors.PanicError
		require.True(t, errors.As(err, &panicErr), "got %v", err)
		assert.Equal(t, "Regression.Predict", panicErr.Operation)
	})

	t.Run("large input runs in parallel chunks", func(t *testing.T) {
		rows := 2500
		big := mat.NewDense(rows, 2, nil)
		for i := 0; i < rows; i++ {
			big.Set(i, 0, float64(i%10+1))
			big.Set(i, 1, float64((i+3)%10+1))
		}
		got, err := reg.Predict(big)
		require.NoError(t, err)

		beta, _ := reg.Coefficients()
		for _, i := range []int{0, 999, 1000, 2499} {
			want := beta[0] + beta[1]*big.At(i, 0) + beta[2]*big.At(i, 1)
			assert.InDelta(t, want, got.AtVec(i), 1e-12)
		}
	})
}

func TestRegression_Residuals(t *testing.T) {
	reg := fittedTwoFeature(t)

	res, err := reg.Residuals()
	require.NoError(t, err)

	// 切片付きモデルでは残差の和はゼロ
	assert.InDelta(t, 0.0, floats.Sum(res.RawVector().Data), 1e-10)

	sse, err := reg.SSE()
	require.NoError(t, err)
	assert.InDelta(t, sse, mat.Dot(res, res), 1e-12)
}

func TestRegression_Score(t *testing.T) {
	reg := fittedTwoFeature(t)
	X, y := twoFeatureData()

	score, err := reg.Score(X, y)
	require.NoError(t, err)

	r2, err := reg.RSquared()
	require.NoError(t, err)
	assert.InDelta(t, r2, score, 1e-10)

	_, err = reg.Score(X, mat.NewVecDense(3, []float64{1, 2, 3}))
	assert.Error(t, err)
}

func TestRegression_Diagnostics(t *testing.T) {
	reg := fittedTwoFeature(t)

	rank, err := reg.Rank()
	require.NoError(t, err)
	assert.Equal(t, 3, rank)

	sv, err := reg.SingularValues()
	require.NoError(t, err)
	require.Len(t, sv, 3)
	assert.GreaterOrEqual(t, sv[0], sv[1])
	assert.GreaterOrEqual(t, sv[1], sv[2])

	cond, err := reg.ConditionNumber()
	require.NoError(t, err)
	assert.Greater(t, cond, 1.0)
}

func TestRegression_FitLogs(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	fittedTwoFeature(t, WithLogger(logger))

	assert.True(t, logger.ContainsMessage("Fit started"))
	assert.True(t, logger.ContainsMessage("Fit completed"))
	assert.True(t, logger.ContainsField(log.RankKey, 3.0))
	assert.True(t, logger.ContainsField(log.ModelNameKey, "Regression"))
	assert.True(t, logger.ContainsField(log.SamplesKey, 10.0))
}

func TestRegression_ConcurrentFitAndRead(t *testing.T) {
	reg := fittedTwoFeature(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, err := reg.Fit()
				assert.NoError(t, err)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, err := reg.Summary(0.05)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}
