// Package parallel provides row-chunked parallel loops for matrix assembly
// and prediction.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultThreshold is the row count below which loops run sequentially.
const DefaultThreshold = 1000

// Parallelize splits rows [0, items) into at most runtime.NumCPU() contiguous
// chunks and calls fn(start, end) for each chunk on its own goroutine. It
// returns once every chunk is done. The first worker panic is re-raised on the
// calling goroutine, where errors.Recover in Fit or Predict can catch it.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	var (
		wg        sync.WaitGroup
		panicOnce sync.Once
		panicVal  any
	)

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { panicVal = r })
				}
			}()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()

	if panicVal != nil {
		panic(panicVal)
	}
}

// ParallelizeWithThreshold calls fn(0, items) directly when items <= threshold.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if items <= threshold {
		fn(0, items)
		return
	}

	Parallelize(items, fn)
}
