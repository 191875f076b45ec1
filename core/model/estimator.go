package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit は構築時に渡されたデータでモデルを学習させ、係数を返す
	Fit() ([]float64, error)
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う。nil は学習データを意味する
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// Scorer は評価可能なモデルのインターフェース
type Scorer interface {
	// Score はモデルの決定係数（R²）を計算する
	Score(X mat.Matrix, y mat.Vector) (float64, error)
}

// Regressor は学習・予測・評価をまとめたインターフェース
type Regressor interface {
	Fitter
	Predictor
	Scorer
}
