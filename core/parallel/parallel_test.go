package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelize_CoversEveryItemOnce(t *testing.T) {
	for _, items := range []int{1, 7, 1000, 4099} {
		hits := make([]int32, items)
		Parallelize(items, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			require.Equal(t, int32(1), h, "item %d of %d", i, items)
		}
	}
}

func TestParallelize_Empty(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) { called = true })
	ParallelizeWithThreshold(0, DefaultThreshold, func(start, end int) { called = true })
	assert.False(t, called)
}

func TestParallelizeWithThreshold_Sequential(t *testing.T) {
	var calls int32
	ParallelizeWithThreshold(10, DefaultThreshold, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, int32(1), calls)
}

func TestParallelize_PropagatesPanic(t *testing.T) {
	assert.PanicsWithValue(t, "row failure", func() {
		Parallelize(100, func(start, end int) {
			if start == 0 {
				panic("row failure")
			}
		})
	})
}

func BenchmarkParallelize(b *testing.B) {
	data := make([]float64, 100000)
	for i := 0; i < b.N; i++ {
		ParallelizeWithThreshold(len(data), DefaultThreshold, func(start, end int) {
			for j := start; j < end; j++ {
				data[j] = float64(j) * 0.5
			}
		})
	}
}
