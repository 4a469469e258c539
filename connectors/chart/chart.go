// Package chart renders monthly PCP series to PNG with go-chart.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"pcp-stats/domain/format"
	"pcp-stats/domain/pcp"
)

// ErrNothingToDraw is returned when a chart has no defined point.
var ErrNothingToDraw = errors.New("chart has no data points")

var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
}

// Renderer draws charts at a fixed size.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer returns a renderer, falling back to 1024x512 for non-positive sizes.
func NewRenderer(width, height int) Renderer {
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 512
	}
	return Renderer{Width: width, Height: height}
}

// PNG renders c and returns the encoded image.
func (r Renderer) PNG(c pcp.Chart) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render writes c as PNG to w. The rolling mean is dashed and the peak is annotated.
func (r Renderer) Render(w io.Writer, c pcp.Chart) error {
	var series []gochart.Series
	var xs []time.Time
	var ys []float64

	add := func(s pcp.Series, style gochart.Style) {
		ts := toTimeSeries(s)
		if len(ts.XValues) == 0 {
			return
		}
		ts.Style = style
		series = append(series, ts)
		xs = append(xs, ts.XValues...)
		ys = append(ys, ts.YValues...)
	}
	for i, s := range c.Series {
		col := palette[i%len(palette)]
		add(s, gochart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 3})
	}
	if len(series) == 0 {
		return fmt.Errorf("%s: %w", c.Name, ErrNothingToDraw)
	}
	if c.Rolling != nil {
		add(*c.Rolling, gochart.Style{StrokeColor: drawing.ColorFromHex("555555"), StrokeWidth: 1.5, StrokeDashArray: []float64{5, 4}})
	}
	if c.Peak != nil {
		series = append(series, gochart.AnnotationSeries{
			Annotations: []gochart.Value2{{
				XValue: gochart.TimeToFloat64(c.Peak.Month),
				YValue: c.Peak.Value,
				Label:  peakLabel(c, *c.Peak),
			}},
		})
	}

	ch := gochart.Chart{
		Title:      c.Title,
		Width:      r.Width,
		Height:     r.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:           "Mês",
			ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01"),
			Range:          xRange(xs),
		},
		YAxis: gochart.YAxis{
			Name:  c.YLabel,
			Range: yRange(ys),
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(gochart.PNG, w)
}

func toTimeSeries(s pcp.Series) gochart.TimeSeries {
	ts := gochart.TimeSeries{Name: s.Name}
	for _, p := range s.Points {
		if math.IsNaN(p.Value) {
			continue
		}
		ts.XValues = append(ts.XValues, p.Month)
		ts.YValues = append(ts.YValues, p.Value)
	}
	return ts
}

// xRange widens a single-month chart so the axis has a non-zero span.
func xRange(xs []time.Time) gochart.Range {
	if len(xs) == 0 {
		return nil
	}
	first, last := xs[0], xs[0]
	for _, x := range xs {
		if x.Before(first) {
			first = x
		}
		if x.After(last) {
			last = x
		}
	}
	if !first.Equal(last) {
		return nil
	}
	return &gochart.ContinuousRange{
		Min: gochart.TimeToFloat64(first.AddDate(0, 0, -15)),
		Max: gochart.TimeToFloat64(last.AddDate(0, 0, 15)),
	}
}

// yRange widens a flat series; go-chart refuses zero-height ranges.
func yRange(ys []float64) gochart.Range {
	if len(ys) == 0 {
		return nil
	}
	lo, hi := ys[0], ys[0]
	for _, y := range ys {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	if lo != hi {
		return nil
	}
	pad := math.Abs(lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func peakLabel(c pcp.Chart, p pcp.Point) string {
	month := p.Month.Format("2006-01")
	switch c.YLabel {
	case "R$":
		return fmt.Sprintf("Pico %s: %s", month, format.BRL(p.Value, 0))
	case "%":
		return fmt.Sprintf("Pico %s: %s", month, format.Pct(p.Value, 1))
	}
	return fmt.Sprintf("Pico %s: %.2f", month, p.Value)
}
