// Package render draws forecast charts and prints screening tables.
package render

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"divcli/pkg/contracts/domain"
)

// ErrNoSeries is returned when a chart has nothing to draw.
var ErrNoSeries = errors.New("chart has no series")

// Chart is a set of cumulative-gain curves sharing one time axis.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Series []domain.Series
}

// Renderer draws a chart to w.
type Renderer interface {
	Render(w io.Writer, chart Chart) error
}

// Config holds display settings. Width and Height are pixels; Headroom is
// the fraction of the largest gain added above it on the y axis.
type Config struct {
	Width    int
	Height   int
	Headroom float64
}

// DefaultConfig matches the size of the charts produced by the CLI.
func DefaultConfig() Config {
	return Config{Width: 1280, Height: 960, Headroom: 0.2}
}

// PNGRenderer renders charts as PNG images.
type PNGRenderer struct {
	cfg    Config
	logger *slog.Logger
}

var _ Renderer = (*PNGRenderer)(nil)

// NewPNGRenderer creates a renderer. Zero sizes fall back to DefaultConfig.
func NewPNGRenderer(cfg Config, logger *slog.Logger) *PNGRenderer {
	def := DefaultConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.Headroom < 0 {
		cfg.Headroom = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PNGRenderer{cfg: cfg, logger: logger.With("component", "png_renderer")}
}

// pixels converts a pixel count to a length at the default image DPI.
func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / 96
}

// YRange returns the y-axis bounds used for series: zero to the largest
// gain plus headroom.
func YRange(series []domain.Series, headroom float64) (lo, hi float64) {
	for _, s := range series {
		if g := s.MaxGain(); g > hi {
			hi = g
		}
	}
	if hi <= 0 {
		return 0, 1
	}
	return 0, hi * (1 + headroom)
}

// Plot builds the gonum plot for chart.
func (r *PNGRenderer) Plot(chart Chart) (*plot.Plot, error) {
	if len(chart.Series) == 0 {
		return nil, ErrNoSeries
	}

	p := plot.New()
	p.Title.Text = chart.Title
	p.X.Label.Text = chart.XLabel
	p.Y.Label.Text = chart.YLabel
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	for i, s := range chart.Series {
		if len(s.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			xys[j].X = float64(pt.Day)
			xys[j].Y = pt.CumulativeGain
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)

		label := s.Caption
		if label == "" {
			label = s.Name
		}
		p.Legend.Add(label, line)
	}

	p.Y.Min, p.Y.Max = YRange(chart.Series, r.cfg.Headroom)
	return p, nil
}

// Render writes chart to w as a PNG image.
func (r *PNGRenderer) Render(w io.Writer, chart Chart) error {
	p, err := r.Plot(chart)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(pixels(r.cfg.Width), pixels(r.cfg.Height), "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

// RenderFile writes chart to path, creating parent directories.
func (r *PNGRenderer) RenderFile(path string, chart Chart) (err error) {
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		return fmt.Errorf("unsupported chart file %q: want .png", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if err := r.Render(f, chart); err != nil {
		return err
	}
	r.logger.Info("Chart rendered",
		slog.String("path", path),
		slog.Int("series", len(chart.Series)))
	return nil
}
