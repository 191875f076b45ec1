// Package diagplot draws diagnostic plots for a fitted regression.
//
// Plots are rendered with gonum.org/v1/plot and written to an io.Writer in
// PNG or SVG form. Non-finite values are dropped before plotting.
package diagplot

import (
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/olsinfer/linear"
	"github.com/YuminosukeSato/olsinfer/pkg/errors"
	"github.com/YuminosukeSato/olsinfer/pkg/log"
)

// Kind selects a diagnostic plot.
type Kind string

const (
	KindResiduals Kind = "residuals" // residuals against fitted values
	KindHistogram Kind = "hist"      // histogram of residuals
	KindOgive     Kind = "ogive"     // cumulative relative frequency of residuals
)

// ParseKind converts a plot name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindResiduals, KindHistogram, KindOgive:
		return k, nil
	}
	return "", errors.NewValidationError("plot-kind", "must be one of residuals, hist, ogive", s)
}

// Default canvas and binning.
const (
	DefaultBins   = 40
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 7 * vg.Inch
)

type config struct {
	width, height vg.Length
	bins          int
	title         string
	format        string
}

// Option configures a plot.
type Option func(*config)

// WithSize sets the canvas size.
func WithSize(width, height vg.Length) Option {
	return func(c *config) {
		if width > 0 && height > 0 {
			c.width, c.height = width, height
		}
	}
}

// WithBins sets the number of histogram bins. Values below 1 are ignored.
func WithBins(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.bins = n
		}
	}
}

// WithTitle sets the plot title.
func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

// WithFormat sets the image format, "png" (default) or "svg".
func WithFormat(format string) Option {
	return func(c *config) {
		c.format = strings.ToLower(format)
	}
}

func newConfig(opts []Option) (config, error) {
	c := config{
		width:  DefaultWidth,
		height: DefaultHeight,
		bins:   DefaultBins,
		format: "png",
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.format != "png" && c.format != "svg" {
		return c, errors.NewValidationError("format", "must be png or svg", c.format)
	}
	return c, nil
}

// Render draws the plot of the given kind for a fitted model.
func Render(w io.Writer, reg *linear.Regression, kind Kind, opts ...Option) error {
	fitted, err := reg.FittedValues()
	if err != nil {
		return err
	}
	res, err := reg.Residuals()
	if err != nil {
		return err
	}
	f, r := fitted.RawVector().Data, res.RawVector().Data

	switch kind {
	case KindResiduals:
		return ResidualsVsFitted(w, f, r, opts...)
	case KindHistogram:
		return Histogram(w, r, opts...)
	case KindOgive:
		return Ogive(w, r, opts...)
	}
	return errors.NewValidationError("plot-kind", "must be one of residuals, hist, ogive", string(kind))
}

// ResidualsVsFitted draws a scatter plot of residuals against fitted values
// with a reference line at zero.
func ResidualsVsFitted(w io.Writer, fitted, residuals []float64, opts ...Option) error {
	const op = "diagplot.ResidualsVsFitted"

	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}
	if len(fitted) != len(residuals) {
		return errors.NewDimensionError(op, len(fitted), len(residuals), 0)
	}

	pts := make(plotter.XYs, 0, len(fitted))
	for i := range fitted {
		if errors.IsFinite(fitted[i]) && errors.IsFinite(residuals[i]) {
			pts = append(pts, plotter.XY{X: fitted[i], Y: residuals[i]})
		}
	}
	if len(pts) == 0 {
		return errors.NewValueError(op, "no finite points to plot")
	}

	p := newPlot(cfg, "Residuals vs fitted", "fitted", "residual")
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "diagplot: scatter")
	}

	xmin, xmax, _, _ := plotter.XYRange(pts)
	zero, err := plotter.NewLine(plotter.XYs{{X: xmin, Y: 0}, {X: xmax, Y: 0}})
	if err != nil {
		return errors.Wrap(err, "diagplot: zero line")
	}
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(scatter, zero)
	return save(w, p, cfg, op, len(pts))
}

// Histogram draws a histogram of values.
func Histogram(w io.Writer, values []float64, opts ...Option) error {
	const op = "diagplot.Histogram"

	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}
	vals := finiteValues(values)
	if len(vals) == 0 {
		return errors.NewValueError(op, "no finite values to plot")
	}

	h, err := plotter.NewHist(vals, cfg.bins)
	if err != nil {
		return errors.Wrap(err, "diagplot: histogram")
	}

	p := newPlot(cfg, "Residual histogram", "residual", "count")
	p.Add(h)
	return save(w, p, cfg, op, len(vals))
}

// Ogive draws the cumulative relative frequency of values at the upper
// edge of each histogram bin. The y axis spans [0, 1].
func Ogive(w io.Writer, values []float64, opts ...Option) error {
	const op = "diagplot.Ogive"

	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}
	vals := finiteValues(values)
	if len(vals) == 0 {
		return errors.NewValueError(op, "no finite values to plot")
	}

	pts, err := ogivePoints(vals, cfg.bins)
	if err != nil {
		return err
	}

	line, scatter, err := plotter.NewLinePoints(pts)
	if err != nil {
		return errors.Wrap(err, "diagplot: ogive")
	}

	p := newPlot(cfg, "Residual ogive", "residual", "cumulative relative frequency")
	p.Y.Min, p.Y.Max = 0, 1
	p.Add(line, scatter)
	return save(w, p, cfg, op, len(vals))
}

// ogivePoints bins vals and returns (upper edge, cumulative share) per bin.
func ogivePoints(vals plotter.Values, bins int) (plotter.XYs, error) {
	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return nil, errors.Wrap(err, "diagplot: ogive bins")
	}

	var total float64
	for _, b := range h.Bins {
		total += b.Weight
	}

	pts := make(plotter.XYs, len(h.Bins))
	var cum float64
	for i, b := range h.Bins {
		cum += b.Weight
		pts[i] = plotter.XY{X: b.Max, Y: cum / total}
	}
	return pts, nil
}

func newPlot(cfg config, title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	if cfg.title != "" {
		p.Title.Text = cfg.title
	}
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

func save(w io.Writer, p *plot.Plot, cfg config, op string, points int) error {
	wt, err := p.WriterTo(cfg.width, cfg.height, cfg.format)
	if err != nil {
		return errors.Wrap(err, "diagplot: render")
	}
	n, err := wt.WriteTo(w)
	if err != nil {
		return errors.Wrapf(err, "diagplot: write %s", cfg.format)
	}

	log.GetLogger().Debug("Plot written",
		log.ComponentKey, "diagplot",
		log.OperationKey, op,
		log.PredsKey, points,
		log.DataSizeKey, n,
	)
	return nil
}

func finiteValues(values []float64) plotter.Values {
	out := make(plotter.Values, 0, len(values))
	for _, v := range values {
		if errors.IsFinite(v) {
			out = append(out, v)
		}
	}
	return out
}
