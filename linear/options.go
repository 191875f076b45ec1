package linear

import "github.com/YuminosukeSato/olsinfer/pkg/log"

// DefaultInterceptTolerance is the absolute tolerance used to decide whether
// the first column of X is already an intercept column of ones.
const DefaultInterceptTolerance = 1e-8 + 1e-5

// Option is a function that configures Regression
type Option func(*Regression)

// WithFitIntercept sets whether to fit an intercept term
func WithFitIntercept(fit bool) Option {
	return func(r *Regression) {
		r.fitIntercept = fit
	}
}

// WithInterceptTolerance sets the tolerance for detecting an existing ones column
func WithInterceptTolerance(tol float64) Option {
	return func(r *Regression) {
		if tol >= 0 {
			r.interceptTol = tol
		}
	}
}

// WithLogger sets the logger used for fit diagnostics
func WithLogger(l log.Logger) Option {
	return func(r *Regression) {
		if l != nil {
			r.logger = l
		}
	}
}
