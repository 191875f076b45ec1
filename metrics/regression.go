// Package metrics は回帰モデルの評価指標を提供する
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/olsinfer/pkg/errors"
)

// residuals は yTrue - yPred を計算する。長さの検証も行う
func residuals(op string, yTrue, yPred mat.Vector) ([]float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError(op, "empty vector")
	}

	if yPred.Len() != n {
		return nil, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}

	res := make([]float64, n)
	for i := range res {
		res[i] = yTrue.AtVec(i) - yPred.AtVec(i)
	}
	return res, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred mat.Vector) (float64, error) {
	res, err := residuals("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for _, r := range res {
		sum += r * r
	}

	return sum / float64(len(res)), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred mat.Vector) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred mat.Vector) (float64, error) {
	res, err := residuals("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MAE = (1/n) * Σ|yTrue - yPred|
	var sum float64
	for _, r := range res {
		sum += math.Abs(r)
	}

	return sum / float64(len(res)), nil
}

// R2Score は決定係数（R²）を計算する
//
// yTrue の分散がゼロの場合、R² は定義されないため DegenerateInputError を返す。
func R2Score(yTrue, yPred mat.Vector) (float64, error) {
	res, err := residuals("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	y := make([]float64, yTrue.Len())
	for i := range y {
		y[i] = yTrue.AtVec(i)
	}
	yMean := stat.Mean(y, nil)

	// 全変動（TSS）と残差変動（RSS）
	var tss, rss float64
	for i, v := range y {
		tss += (v - yMean) * (v - yMean)
		rss += res[i] * res[i]
	}

	if tss == 0 {
		return 0, errors.NewDegenerateInputError("R2Score", "R²", "total sum of squares is zero (no variance in yTrue)")
	}

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}
