// Command olsreport fits an ordinary least squares regression to a CSV file
// and prints coefficient inference and model statistics.
//
// Usage:
//
//	olsreport -data data.csv -target y [-alpha 0.05] [-precision 4]
//	          [-plot residuals.png -plot-kind residuals|hist|ogive]
//	          [-snapshot model.ols -codec zstd]
//	olsreport -restore model.ols
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/olsinfer/core/model"
	"github.com/YuminosukeSato/olsinfer/dataset"
	"github.com/YuminosukeSato/olsinfer/diagplot"
	"github.com/YuminosukeSato/olsinfer/linear"
	"github.com/YuminosukeSato/olsinfer/pkg/compress"
	"github.com/YuminosukeSato/olsinfer/pkg/errors"
	"github.com/YuminosukeSato/olsinfer/pkg/log"
	"github.com/YuminosukeSato/olsinfer/report"
)

type options struct {
	data        string
	target      string
	noIntercept bool
	alpha       float64
	precision   int
	plot        string
	plotKind    string
	snapshot    string
	codec       string
	restore     string
	logLevel    string
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.GetLogger().Error("olsreport failed", err,
			log.ErrorCodeKey, errorCode(err),
			log.ErrorTypeKey, errorType(err),
		)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("olsreport", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.data, "data", "", "Path to the input CSV file (header row required)")
	fs.StringVar(&o.target, "target", "", "Name of the target column")
	fs.BoolVar(&o.noIntercept, "no-intercept", false, "Fit without an intercept column")
	fs.Float64Var(&o.alpha, "alpha", 0.05, "Significance level for confidence intervals (0-1)")
	fs.IntVar(&o.precision, "precision", report.DefaultPrecision, "Decimal places in the report")
	fs.StringVar(&o.plot, "plot", "", "Write a diagnostic plot to this path (.png or .svg)")
	fs.StringVar(&o.plotKind, "plot-kind", string(diagplot.KindResiduals), "Plot kind (residuals|hist|ogive)")
	fs.StringVar(&o.snapshot, "snapshot", "", "Save the fitted model to this path")
	fs.StringVar(&o.codec, "codec", compress.TypeZstd.String(), "Snapshot compression (none|zstd|s2|lz4)")
	fs.StringVar(&o.restore, "restore", "", "Load a fitted model snapshot instead of fitting -data")
	fs.StringVar(&o.logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.restore == "" && (o.data == "" || o.target == "") {
		fs.Usage()
		return nil, errors.NewValidationError("data", "-data and -target are required unless -restore is given", o.data)
	}
	return o, nil
}

func run(args []string, stdout io.Writer) error {
	o, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	if err := log.SetupLogger(o.logLevel); err != nil {
		return err
	}
	logger := log.GetLogger().With(log.ComponentKey, "olsreport")

	reg, names, err := buildModel(o, logger)
	if err != nil {
		return err
	}

	summary, err := reg.Summary(o.alpha)
	if err != nil {
		return err
	}
	if err := report.Write(stdout, summary, names,
		report.WithPrecision(o.precision),
		report.WithTitle(title(o)),
	); err != nil {
		return err
	}

	if o.plot != "" {
		if err := writePlot(o, reg); err != nil {
			return err
		}
		logger.Info("Plot saved", log.PathKey, o.plot)
	}

	if o.snapshot != "" {
		codec, err := compress.ParseType(o.codec)
		if err != nil {
			return err
		}
		snap, err := reg.Snapshot()
		if err != nil {
			return err
		}
		if err := model.SaveSnapshotFile(o.snapshot, snap, codec); err != nil {
			return err
		}
		logger.Info("Snapshot saved",
			log.PathKey, o.snapshot,
			log.CodecKey, codec.String(),
		)
	}
	return nil
}

// buildModel fits a model from -data or restores one from -restore.
func buildModel(o *options, logger log.Logger) (*linear.Regression, []string, error) {
	if o.restore != "" {
		var snap linear.Snapshot
		if err := model.LoadSnapshotFile(o.restore, &snap); err != nil {
			return nil, nil, err
		}
		reg, err := linear.Restore(&snap, linear.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Snapshot restored", log.PathKey, o.restore)
		return reg, nil, nil
	}

	frame, err := dataset.LoadCSV(o.data, o.target)
	if err != nil {
		return nil, nil, err
	}
	reg, err := linear.NewRegression(frame.X, frame.Y,
		linear.WithFitIntercept(!o.noIntercept),
		linear.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	if _, err := reg.Fit(); err != nil {
		return nil, nil, err
	}
	return reg, report.CoefficientNames(frame.Features, reg.InterceptAdded()), nil
}

func writePlot(o *options, reg *linear.Regression) (err error) {
	kind, err := diagplot.ParseKind(o.plotKind)
	if err != nil {
		return err
	}
	format := "png"
	if strings.EqualFold(filepath.Ext(o.plot), ".svg") {
		format = "svg"
	}

	f, err := os.Create(o.plot)
	if err != nil {
		return errors.Wrapf(err, "olsreport: create %s", o.plot)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return diagplot.Render(f, reg, kind, diagplot.WithFormat(format))
}

func title(o *options) string {
	if o.restore != "" {
		return fmt.Sprintf("OLS regression (%s)", filepath.Base(o.restore))
	}
	return fmt.Sprintf("OLS regression of %s (%s)", o.target, filepath.Base(o.data))
}

// errorCode maps a failure to one of the standard log error codes.
func errorCode(err error) string {
	var (
		dimErr *errors.DimensionError
		nfErr  *errors.NotFittedError
		degErr *errors.DegenerateInputError
	)
	switch {
	case errors.Is(err, errors.ErrSingularMatrix):
		return log.ErrorSingularMatrix
	case errors.Is(err, errors.ErrEmptyData):
		return log.ErrorEmptyData
	case errors.As(err, &dimErr):
		return log.ErrorDimensionMismatch
	case errors.As(err, &nfErr):
		return log.ErrorNotFitted
	case errors.As(err, &degErr):
		return log.ErrorDegenerateInput
	}
	return log.ErrorInvalidInput
}

// errorType names the olsinfer error type found in err's chain.
func errorType(err error) string {
	var (
		dimErr   *errors.DimensionError
		nfErr    *errors.NotFittedError
		degErr   *errors.DegenerateInputError
		valErr   *errors.ValidationError
		valueErr *errors.ValueError
		modelErr *errors.ModelError
		instErr  *errors.NumericalInstabilityError
		panicErr *errors.PanicError
	)
	switch {
	case errors.As(err, &dimErr):
		return "DimensionError"
	case errors.As(err, &nfErr):
		return "NotFittedError"
	case errors.As(err, &degErr):
		return "DegenerateInputError"
	case errors.As(err, &valErr):
		return "ValidationError"
	case errors.As(err, &valueErr):
		return "ValueError"
	case errors.As(err, &modelErr):
		return "ModelError"
	case errors.As(err, &instErr):
		return "NumericalInstabilityError"
	case errors.As(err, &panicErr):
		return "PanicError"
	}
	return "error"
}
