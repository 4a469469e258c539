package pcp

import (
	"fmt"
	"strings"
	"time"
)

// Preset selects how the current window is derived.
type Preset int

const (
	Custom Preset = iota
	Last6Months
	Last12Months
)

func (p Preset) String() string {
	switch p {
	case Last6Months:
		return "last_6_months"
	case Last12Months:
		return "last_12_months"
	default:
		return "custom"
	}
}

// months is the calendar lookback of a preset; zero for Custom.
func (p Preset) months() int {
	switch p {
	case Last6Months:
		return 6
	case Last12Months:
		return 12
	}
	return 0
}

// ParsePreset accepts the textual forms produced by Preset.String. Empty means Custom.
func ParsePreset(s string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "custom":
		return Custom, nil
	case "last_6_months", "6m":
		return Last6Months, nil
	case "last_12_months", "12m":
		return Last12Months, nil
	}
	return Custom, fmt.Errorf("%w: %q", ErrUnknownPreset, s)
}

// PeriodWindow is an inclusive date range.
type PeriodWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies within [Start, End].
func (w PeriodWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days is the inclusive day count of the window.
func (w PeriodWindow) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

func (w PeriodWindow) String() string {
	return w.Start.Format(DateLayout) + ".." + w.End.Format(DateLayout)
}

// Previous returns the window of identical day count ending the day before w starts.
func (w PeriodWindow) Previous() PeriodWindow {
	prevEnd := w.Start.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(w.Days() - 1))
	return PeriodWindow{Start: prevStart, End: prevEnd}
}

// DateLayout is the day format used for windows and exported months.
const DateLayout = "2006-01-02"

// Selection is the user's period choice. Start and End are only read for Custom, where a zero
// value stands for the first or last month of the dataset.
type Selection struct {
	Preset Preset
	Start  time.Time
	End    time.Time
}

// Periods pairs the current window with its comparison window.
type Periods struct {
	Current  PeriodWindow `json:"current"`
	Previous PeriodWindow `json:"previous"`
}

// Resolve derives the current and previous windows for sel against ds.
func Resolve(ds Dataset, sel Selection) (Periods, error) {
	var cur PeriodWindow
	if n := sel.Preset.months(); n > 0 {
		_, last, ok := ds.Bounds()
		if !ok {
			return Periods{}, ErrEmptyDataset
		}
		end := truncateDay(last)
		cur = PeriodWindow{Start: subtractMonths(end, n), End: end}
	} else {
		start, end := sel.Start, sel.End
		if first, last, ok := ds.Bounds(); ok {
			if start.IsZero() {
				start = first
			}
			if end.IsZero() {
				end = last
			}
		} else if start.IsZero() || end.IsZero() {
			return Periods{}, ErrEmptyDataset
		}
		cur = PeriodWindow{Start: truncateDay(start), End: truncateDay(end)}
		if cur.Start.After(cur.End) {
			return Periods{}, fmt.Errorf("%w: %s", ErrInvalidWindow, cur)
		}
	}
	return Periods{Current: cur, Previous: cur.Previous()}, nil
}

// subtractMonths moves t back n calendar months, clamping the day to the target month's end.
func subtractMonths(t time.Time, n int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()-time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
