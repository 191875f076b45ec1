package linear

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/olsinfer/pkg/errors"
	"github.com/YuminosukeSato/olsinfer/pkg/log"
)

// Snapshot は学習済みモデルを保存するための値
//
// 推論に必要な計画行列と目的変数も含む。model.SaveSnapshot で書き出し、
// Restore で Regression に戻す。
type Snapshot struct {
	Rows int
	Cols int
	X    []float64 // 行優先の n×d 計画行列（切片列を含む）
	Y    []float64

	FitIntercept   bool
	InterceptAdded bool
	InterceptTol   float64

	Beta       []float64
	XtXInverse []float64 // 行優先の d×d 行列
	Rank       int
	Singular   []float64
	Cond       float64
}

// Snapshot は学習済みモデルの Snapshot を返す
func (r *Regression) Snapshot() (*Snapshot, error) {
	fit, err := r.state.Require(modelName, "Snapshot")
	if err != nil {
		return nil, err
	}

	inv := make([]float64, 0, r.d*r.d)
	for i := 0; i < r.d; i++ {
		for j := 0; j < r.d; j++ {
			inv = append(inv, fit.xtxInv.At(i, j))
		}
	}

	snap := &Snapshot{
		Rows:           r.n,
		Cols:           r.d,
		X:              append([]float64(nil), r.x.RawMatrix().Data...),
		Y:              append([]float64(nil), r.y.RawVector().Data...),
		FitIntercept:   r.fitIntercept,
		InterceptAdded: r.interceptAdded,
		InterceptTol:   r.interceptTol,
		Beta:           mat.Col(nil, 0, fit.beta),
		XtXInverse:     inv,
		Rank:           fit.rank,
		Singular:       append([]float64(nil), fit.singular...),
		Cond:           fit.cond,
	}

	r.logger.Debug("Snapshot taken",
		log.OperationKey, log.OperationSnapshot,
		log.SamplesKey, r.n,
		log.ParamsKey, r.d,
	)
	return snap, nil
}

// Restore は Snapshot から学習済みの Regression を復元する
//
// 計画行列はそのまま使われ、切片列の検出や追加は再度行わない。
// opts のうち WithFitIntercept と WithInterceptTolerance は無視される。
func Restore(s *Snapshot, opts ...Option) (*Regression, error) {
	const op = "linear.Restore"

	if s == nil || s.Rows == 0 || s.Cols == 0 {
		return nil, errors.NewModelError(op, "empty snapshot", errors.ErrEmptyData)
	}
	checks := []struct {
		what      string
		got, want int
	}{
		{"X", len(s.X), s.Rows * s.Cols},
		{"Y", len(s.Y), s.Rows},
		{"Beta", len(s.Beta), s.Cols},
		{"XtXInverse", len(s.XtXInverse), s.Cols * s.Cols},
	}
	for _, c := range checks {
		if c.got != c.want {
			return nil, errors.NewValueError(op,
				fmt.Sprintf("snapshot field %s has %d values, expected %d", c.what, c.got, c.want))
		}
	}

	r := &Regression{
		x:              mat.NewDense(s.Rows, s.Cols, append([]float64(nil), s.X...)),
		y:              mat.NewVecDense(s.Rows, append([]float64(nil), s.Y...)),
		n:              s.Rows,
		d:              s.Cols,
		fitIntercept:   s.FitIntercept,
		interceptAdded: s.InterceptAdded,
		interceptTol:   s.InterceptTol,
		logger:         log.GetLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	// 学習結果を決める設定は常にスナップショットの値を使う
	r.fitIntercept = s.FitIntercept
	r.interceptTol = s.InterceptTol
	r.logger = r.logger.With(log.ModelNameKey, modelName, log.ComponentKey, "linear")

	inv := mat.NewSymDense(s.Cols, nil)
	for i := 0; i < s.Cols; i++ {
		for j := i; j < s.Cols; j++ {
			inv.SetSym(i, j, s.XtXInverse[i*s.Cols+j])
		}
	}

	r.state.Store(&fitResult{
		beta:     mat.NewVecDense(s.Cols, append([]float64(nil), s.Beta...)),
		xtxInv:   inv,
		rank:     s.Rank,
		singular: append([]float64(nil), s.Singular...),
		cond:     s.Cond,
	})

	r.logger.Debug("Model restored",
		log.OperationKey, log.OperationRestore,
		log.SamplesKey, r.n,
		log.ParamsKey, r.d,
	)
	return r, nil
}
