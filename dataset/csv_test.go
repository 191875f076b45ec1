package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/olsinfer/pkg/errors"
)

func TestReadCSV(t *testing.T) {
	in := "height, weight, age\n" +
		"1.70, 65.5, 30\n" +
		"1.82, 80.25, 41\n" +
		"1.65, 58, 25\n"

	f, err := ReadCSV(strings.NewReader(in), "weight")
	require.NoError(t, err)

	assert.Equal(t, []string{"height", "age"}, f.Features)
	assert.Equal(t, "weight", f.Target)
	assert.Equal(t, 3, f.Rows())

	r, c := f.X.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 1.82, f.X.At(1, 0))
	assert.Equal(t, 41.0, f.X.At(1, 1))
	assert.Equal(t, 80.25, f.Y.AtVec(1))
	assert.Equal(t, 58.0, f.Y.AtVec(2))
}

func TestReadCSV_Scientific(t *testing.T) {
	f, err := ReadCSV(strings.NewReader("x,y\n1e-3,-2.5E2\n"), "y")
	require.NoError(t, err)
	assert.InDelta(t, 0.001, f.X.At(0, 0), 1e-15)
	assert.Equal(t, -250.0, f.Y.AtVec(0))
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		target  string
		check   func(t *testing.T, err error)
		message string
	}{
		{
			name:   "empty input",
			in:     "",
			target: "y",
			check: func(t *testing.T, err error) {
				var vErr *errors.ValueError
				assert.True(t, errors.As(err, &vErr))
			},
			message: "missing header row",
		},
		{
			name:   "unknown target",
			in:     "x,y\n1,2\n",
			target: "z",
			check: func(t *testing.T, err error) {
				var vErr *errors.ValidationError
				assert.True(t, errors.As(err, &vErr))
			},
		},
		{
			name:   "duplicate target",
			in:     "y,x,y\n1,2,3\n",
			target: "y",
			check: func(t *testing.T, err error) {
				var vErr *errors.ValidationError
				assert.True(t, errors.As(err, &vErr))
			},
		},
		{
			name:    "target only",
			in:      "y\n1\n2\n",
			target:  "y",
			message: "no feature columns",
		},
		{
			name:   "header only",
			in:     "x,y\n",
			target: "y",
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, errors.ErrEmptyData))
			},
		},
		{
			name:    "empty cell",
			in:      "x,y\n1,2\n,3\n",
			target:  "y",
			message: `line 3, column "x": empty value`,
		},
		{
			name:    "not a number",
			in:      "x,y\n1,abc\n",
			target:  "y",
			message: `line 2, column "y"`,
		},
		{
			name:   "ragged row",
			in:     "x,y\n1,2\n3\n",
			target: "y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.in), tt.target)
			require.Error(t, err)
			if tt.check != nil {
				tt.check(t, err)
			}
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n1,2\n2,4\n"), 0o600))

	f, err := LoadCSV(path, "y")
	require.NoError(t, err)
	assert.Equal(t, 2, f.Rows())

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), "y")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
