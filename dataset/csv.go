// Package dataset は回帰の入力となる表形式データを読み込む
//
// CSV の先頭行はヘッダーとして扱い、目的変数の列を名前で指定する。
// 残りの列はすべて特徴量になる。欠損値の補完は行わない。
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/olsinfer/pkg/errors"
	"github.com/YuminosukeSato/olsinfer/pkg/log"
)

// Frame は読み込んだデータ
type Frame struct {
	Features []string      // 特徴量の列名（X の列順）
	Target   string        // 目的変数の列名
	X        *mat.Dense    // n×k の特徴量行列
	Y        *mat.VecDense // 長さ n の目的変数
}

// Rows はサンプル数を返す
func (f *Frame) Rows() int {
	n, _ := f.X.Dims()
	return n
}

// ReadCSV は CSV を読み込み Frame を返す
//
// 値は decimal.NewFromString で解釈してから float64 に変換する。空のセルや
// 数値として解釈できないセルは、行番号と列名を含む ValueError になる。
func ReadCSV(r io.Reader, target string) (*Frame, error) {
	const op = "dataset.ReadCSV"

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewValueError(op, "missing header row")
	}
	if err != nil {
		return nil, errors.Wrap(err, "dataset: read header")
	}
	header = append([]string(nil), header...)

	targetIdx := -1
	features := make([]string, 0, len(header)-1)
	for i, name := range header {
		name = strings.TrimSpace(name)
		header[i] = name
		if name == target {
			if targetIdx >= 0 {
				return nil, errors.NewValidationError("target", "column name is not unique", target)
			}
			targetIdx = i
			continue
		}
		features = append(features, name)
	}
	if targetIdx < 0 {
		return nil, errors.NewValidationError("target", "column not found in header", target)
	}
	if len(features) == 0 {
		return nil, errors.NewValueError(op, "no feature columns besides the target")
	}

	var xs, ys []float64
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "dataset: read line %d", line+1)
		}
		line++

		for i, cell := range record {
			v, err := parseCell(cell)
			if err != nil {
				return nil, errors.NewValueError(op,
					fmt.Sprintf("line %d, column %q: %v", line, header[i], err))
			}
			if i == targetIdx {
				ys = append(ys, v)
			} else {
				xs = append(xs, v)
			}
		}
	}

	n := len(ys)
	if n == 0 {
		return nil, errors.NewModelError(op, "no data rows", errors.ErrEmptyData)
	}

	frame := &Frame{
		Features: features,
		Target:   target,
		X:        mat.NewDense(n, len(features), xs),
		Y:        mat.NewVecDense(n, ys),
	}
	log.GetLogger().Debug("CSV loaded",
		log.ComponentKey, "dataset",
		log.SamplesKey, n,
		log.FeaturesKey, len(features),
	)
	return frame, nil
}

func parseCell(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, errors.New("empty value")
	}
	d, err := decimal.NewFromString(cell)
	if err != nil {
		return 0, err
	}
	v, _ := d.Float64()
	return v, nil
}

// LoadCSV はファイルを開いて ReadCSV を呼ぶ
func LoadCSV(path, target string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	frame, err := ReadCSV(f, target)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: %s", path)
	}
	return frame, nil
}
