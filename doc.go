// Package olsinfer provides ordinary least squares regression with full
// statistical inference for Go.
//
// A Regression holds its design matrix and target from construction. Fit
// solves the least squares problem through a QR factorization of X, and
// every inference quantity is derived from the fitted coefficients and
// (XᵀX)⁻¹ = R⁻¹R⁻ᵀ: standard errors, t and p values, confidence intervals, the F test
// of overall significance, R² and adjusted R², and the Pearson correlation
// matrix of the feature columns.
//
// # Installation
//
//	go get github.com/YuminosukeSato/olsinfer
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/olsinfer/linear"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
//	    y := mat.NewVecDense(5, []float64{2.1, 3.9, 6.2, 7.8, 10.1})
//
//	    // An intercept column of ones is prepended automatically
//	    reg, err := linear.NewRegression(X, y)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if _, err := reg.Fit(); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    summary, err := reg.Summary(0.05)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for i, c := range summary.Coefficients {
//	        fmt.Printf("b%d = %.3f (p = %.4f)\n", i, c.Estimate, c.P)
//	    }
//	}
//
// # Packages
//
//   - linear: the Regression model, inference and snapshots
//   - metrics: MSE, RMSE, MAE and R² over gonum vectors
//   - dataset: CSV loading into a design matrix and target
//   - report: tabular text rendering of a fitted Summary
//   - diagplot: residual, histogram and ogive plots (PNG/SVG)
//   - core/model: estimator interfaces, fitted-state holder, snapshot format
//   - core/parallel: row-chunked parallel loops
//   - pkg/errors: typed errors, warnings and panic recovery
//   - pkg/log: structured logging on zerolog
//   - pkg/compress: snapshot codecs (zstd, s2, lz4)
//
// The olsreport command in cmd/olsreport wires these together: it reads a
// CSV, fits the model, prints the report and can save a plot or a snapshot.
//
// # Errors and Warnings
//
// Contract violations are returned as typed errors (NotFittedError,
// DimensionError, ValidationError, DegenerateInputError, and ModelError
// wrapping ErrSingularMatrix or ErrEmptyData). Results that are numerically
// degenerate but defined by IEEE arithmetic, such as a variance estimate with
// zero residual degrees of freedom, are returned as NaN or ±Inf and reported
// through errors.Warn.
//
// # Concurrency
//
// Fit replaces the fitted state atomically. Readers running alongside Fit
// observe either the old coefficients and inverse or the new pair, never a
// mix of the two.
package olsinfer
