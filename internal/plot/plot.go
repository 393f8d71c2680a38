// Package plot renders activity time series as JPEG line charts.
package plot

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sweatstack/sweatstack-mcp/pkg/frame"
)

const (
	// MIMEType is the content type of rendered plots.
	MIMEType = "image/jpeg"

	width  = 8 * vg.Inch
	height = 6 * vg.Inch
)

// ErrNoValues is returned when a column holds no numeric values to plot.
var ErrNoValues = errors.New("no numeric values to plot")

// Options describes the chart around a single series.
type Options struct {
	Title  string
	YLabel string
}

// ElapsedMinutes returns the series of (minutes since first sample, value)
// points of a column. Rows with a missing or non-numeric value are skipped.
func ElapsedMinutes(data *frame.Frame, column string) (plotter.XYs, error) {
	if !data.Has(column) {
		return nil, fmt.Errorf("column %q not found", column)
	}

	index := data.Index()
	if len(index) == 0 {
		return nil, ErrNoValues
	}

	first := index[0]
	for _, ts := range index[1:] {
		if ts.Before(first) {
			first = ts
		}
	}

	points := make(plotter.XYs, 0, len(index))
	for row, ts := range index {
		v, ok := data.Float(column, row)
		if !ok {
			continue
		}
		points = append(points, plotter.XY{
			X: ts.Sub(first).Minutes(),
			Y: v,
		})
	}
	if len(points) == 0 {
		return nil, ErrNoValues
	}
	return points, nil
}

// Render draws column against elapsed minutes as a black line and encodes
// the chart as JPEG.
func Render(data *frame.Frame, column string, opts Options) ([]byte, error) {
	points, err := ElapsedMinutes(data, column)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "time [minutes]"
	p.Y.Label.Text = opts.YLabel
	if p.Y.Label.Text == "" {
		p.Y.Label.Text = column
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, fmt.Errorf("failed to build line for %s: %w", column, err)
	}
	line.Color = color.Black
	p.Add(line)

	wt, err := p.WriterTo(width, height, "jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create JPEG canvas: %w", err)
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode plot: %w", err)
	}
	return buf.Bytes(), nil
}
