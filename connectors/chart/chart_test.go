package chart

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcp-stats/domain/pcp"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func series(values ...float64) pcp.Series {
	s := pcp.Series{Name: "Perda (R$)"}
	for i, v := range values {
		s.Points = append(s.Points, pcp.Point{Month: time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC), Value: v})
	}
	return s
}

func TestRenderPNG(t *testing.T) {
	tests := []struct {
		name  string
		chart pcp.Chart
	}{
		{"with trend", pcp.Chart{Name: "loss", Title: "Perda", YLabel: "R$", Series: []pcp.Series{series(1000, 3000, math.NaN(), 2000)}}.WithTrend(3)},
		{"single month", pcp.Chart{Name: "one", Title: "Um mês", YLabel: "%", Series: []pcp.Series{series(12)}}.WithTrend(3)},
		{"flat", pcp.Chart{Name: "flat", Title: "Constante", YLabel: "Dias", Series: []pcp.Series{series(0, 0, 0)}}},
	}
	r := NewRenderer(640, 320)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := r.PNG(tt.chart)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(b, pngSignature))
		})
	}
}

func TestRenderNothingToDraw(t *testing.T) {
	_, err := NewRenderer(0, 0).PNG(pcp.Chart{Name: "empty", Series: []pcp.Series{series(math.NaN())}})
	assert.ErrorIs(t, err, ErrNothingToDraw)

	_, err = NewRenderer(0, 0).PNG(pcp.Chart{Name: "none"})
	assert.ErrorIs(t, err, ErrNothingToDraw)
}

func TestNewRendererDefaults(t *testing.T) {
	assert.Equal(t, Renderer{Width: 1024, Height: 512}, NewRenderer(0, -1))
	assert.Equal(t, Renderer{Width: 800, Height: 400}, NewRenderer(800, 400))
}

func TestPeakLabel(t *testing.T) {
	p := pcp.Point{Month: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), Value: 1234567}
	assert.Equal(t, "Pico 2024-03: R$ 1.234.567", peakLabel(pcp.Chart{YLabel: "R$"}, p))
	assert.Equal(t, "Pico 2024-03: 12.5%", peakLabel(pcp.Chart{YLabel: "%"}, pcp.Point{Month: p.Month, Value: 12.5}))
	assert.Equal(t, "Pico 2024-03: 4.20", peakLabel(pcp.Chart{YLabel: "Dias"}, pcp.Point{Month: p.Month, Value: 4.2}))
}
