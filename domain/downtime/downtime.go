package downtime

import (
	"math"
	"sort"
	"time"

	"pcp-stats/domain/pcp"

	lo "github.com/samber/lo"
)

// Column names of the downtime events table.
const (
	ColDate     = "data"
	ColStopCode = "codigo_parada"
	ColMinutes  = "minutos"
	ColCell     = "celula"
)

var RequiredColumns = []string{ColDate, ColStopCode, ColMinutes, ColCell}

// TopN is the size of the stop-code ranking.
const TopN = 10

// Event is one recorded line stop.
type Event struct {
	Date     time.Time `json:"data"`
	StopCode string    `json:"codigo_parada"`
	Minutes  float64   `json:"minutos"`
	Cell     string    `json:"celula"`
}

// CodeMinutes is total stop time of a code.
type CodeMinutes struct {
	StopCode string  `json:"codigo_parada"`
	Minutes  float64 `json:"minutos"`
}

// MonthMinutes is total stop time of a month.
type MonthMinutes struct {
	Month   time.Time `json:"mes"`
	Minutes float64   `json:"minutos"`
}

// CellCodeMinutes is total stop time of a code within a cell.
type CellCodeMinutes struct {
	Cell     string  `json:"celula"`
	StopCode string  `json:"codigo_parada"`
	Minutes  float64 `json:"minutos"`
}

// Summary holds the three downtime aggregations of a window.
type Summary struct {
	Events  int               `json:"events"`
	TopCode []CodeMinutes     `json:"top_codes"`
	Monthly []MonthMinutes    `json:"monthly"`
	Detail  []CellCodeMinutes `json:"detail"`
}

// Filter keeps the events whose day lies inside w. The time of day is ignored.
func Filter(events []Event, w pcp.PeriodWindow) []Event {
	return lo.Filter(events, func(e Event, _ int) bool {
		y, m, d := e.Date.Date()
		return w.Contains(time.Date(y, m, d, 0, 0, 0, 0, e.Date.Location()))
	})
}

// Summarize filters events to w and aggregates them.
func Summarize(events []Event, w pcp.PeriodWindow) Summary {
	in := Filter(events, w)
	return Summary{
		Events:  len(in),
		TopCode: TopCodes(in, TopN),
		Monthly: Monthly(in),
		Detail:  ByCellAndCode(in),
	}
}

// TopCodes ranks stop codes by total minutes, descending, keeping at most n.
func TopCodes(events []Event, n int) []CodeMinutes {
	byCode := lo.GroupBy(events, func(e Event) string { return e.StopCode })
	out := make([]CodeMinutes, 0, len(byCode))
	for code, es := range byCode {
		out = append(out, CodeMinutes{StopCode: code, Minutes: totalMinutes(es)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].StopCode < out[j].StopCode
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Monthly buckets events to the first day of their month.
func Monthly(events []Event) []MonthMinutes {
	byMonth := lo.GroupBy(events, func(e Event) time.Time { return firstOfMonth(e.Date) })
	out := make([]MonthMinutes, 0, len(byMonth))
	for m, es := range byMonth {
		out = append(out, MonthMinutes{Month: m, Minutes: totalMinutes(es)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

type cellCode struct{ cell, code string }

// ByCellAndCode totals minutes per (cell, code), cell ascending then minutes descending.
func ByCellAndCode(events []Event) []CellCodeMinutes {
	groups := lo.GroupBy(events, func(e Event) cellCode { return cellCode{e.Cell, e.StopCode} })
	out := make([]CellCodeMinutes, 0, len(groups))
	for k, es := range groups {
		out = append(out, CellCodeMinutes{Cell: k.cell, StopCode: k.code, Minutes: totalMinutes(es)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cell != out[j].Cell {
			return out[i].Cell < out[j].Cell
		}
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].StopCode < out[j].StopCode
	})
	return out
}

// Chart draws the monthly minutes series.
func (s Summary) Chart() pcp.Chart {
	return pcp.Chart{
		Name:   "downtime",
		Title:  "Paradas — minutos por mês",
		YLabel: "Minutos de parada",
		Series: []pcp.Series{{
			Name: "Minutos",
			Points: lo.Map(s.Monthly, func(m MonthMinutes, _ int) pcp.Point {
				return pcp.Point{Month: m.Month, Value: m.Minutes}
			}),
		}},
	}
}

func totalMinutes(es []Event) float64 {
	return lo.SumBy(es, func(e Event) float64 {
		if math.IsNaN(e.Minutes) {
			return 0
		}
		return e.Minutes
	})
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
