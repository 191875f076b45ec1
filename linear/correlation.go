package linear

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/olsinfer/pkg/errors"
)

// PearsonMatrix は特徴量の列どうしのピアソン相関係数行列を返す
//
// 切片を学習する設定では先頭の切片列を除いた d' = d − 1 列、そうでなければ d 列が対象。
// 戻り値は d'×d' の対称行列で、対角成分はちょうど 1。分散がゼロの列を含む場合、
// その列の非対角成分は NaN になる。
//
// 相関は X だけで決まり係数には依存しないが、他の推論メソッドと同様に
// 学習済みでなければ NotFittedError を返す。特徴量の列がない場合は ValueError を返す。
func (r *Regression) PearsonMatrix() (*mat.SymDense, error) {
	if _, err := r.state.Require(modelName, "PearsonMatrix"); err != nil {
		return nil, err
	}

	start := 0
	if r.fitIntercept {
		start = 1
	}
	if r.d-start == 0 {
		return nil, errors.NewValueError("Regression.PearsonMatrix", "model has no feature columns")
	}

	features := r.x.Slice(0, r.n, start, r.d)
	corr := mat.NewSymDense(r.d-start, nil)
	stat.CorrelationMatrix(corr, features, nil)
	return corr, nil
}
