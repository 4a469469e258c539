package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pcp-stats/domain/downtime"
	"pcp-stats/domain/pcp"
)

// dateLayouts are tried in order when parsing month and event dates.
var dateLayouts = []string{
	pcp.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01",
	"02/01/2006",
}

// ReadBaseFile loads the monthly base table from path.
func ReadBaseFile(path string) (pcp.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return pcp.Dataset{}, err
	}
	defer f.Close()
	ds, err := ReadBase(f)
	if err != nil {
		return pcp.Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// ReadBase parses the monthly base table. A missing required column or an unparseable month
// aborts the load.
func ReadBase(r io.Reader) (pcp.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return pcp.Dataset{}, fmt.Errorf("%w %s", pcp.ErrMissingColumn, pcp.ColMonth)
		}
		return pcp.Dataset{}, err
	}
	idx := indexMap(head)
	if err := requireColumns(idx, pcp.RequiredColumns); err != nil {
		return pcp.Dataset{}, err
	}
	caps := pcp.Capabilities{
		Cell:        has(idx, pcp.ColCell),
		Family:      has(idx, pcp.ColFamily),
		TotalLossM3: has(idx, pcp.ColTotalLossM3),
		PrematureM3: has(idx, pcp.ColPrematureM3),
	}

	var records []pcp.MonthlyRecord
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return pcp.Dataset{}, err
		}
		if blank(rec) {
			continue
		}
		month, err := parseDate(field(rec, idx, pcp.ColMonth))
		if err != nil {
			return pcp.Dataset{}, fmt.Errorf("line %d: %w: %q", line, pcp.ErrMalformedMonth, field(rec, idx, pcp.ColMonth))
		}
		row := pcp.MonthlyRecord{Month: month, Cell: field(rec, idx, pcp.ColCell), Family: field(rec, idx, pcp.ColFamily)}
		for _, nf := range []struct {
			col string
			dst *float64
		}{
			{pcp.ColLeadTime, &row.LeadTime},
			{pcp.ColEffectiveness, &row.Effectiveness},
			{pcp.ColPrematureLoss, &row.PrematureLoss},
			{pcp.ColPrematurePct, &row.PrematurePct},
			{pcp.ColTotalLossM3, &row.TotalLossM3},
			{pcp.ColPrematureM3, &row.PrematureM3},
		} {
			v, err := parseNumber(field(rec, idx, nf.col))
			if err != nil {
				return pcp.Dataset{}, fmt.Errorf("line %d column %s: %w", line, nf.col, err)
			}
			*nf.dst = v
		}
		records = append(records, row)
	}
	return pcp.NewDataset(records, caps), nil
}

// ReadDowntimeFile loads the downtime events table from path.
func ReadDowntimeFile(path string) ([]downtime.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	events, err := ReadDowntime(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

// ReadDowntime parses the downtime events table (data, codigo_parada, minutos, celula).
func ReadDowntime(r io.Reader) ([]downtime.Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w %s", pcp.ErrMissingColumn, downtime.ColDate)
		}
		return nil, err
	}
	idx := indexMap(head)
	if err := requireColumns(idx, downtime.RequiredColumns); err != nil {
		return nil, err
	}
	var events []downtime.Event
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, err
		}
		if blank(rec) {
			continue
		}
		at, err := parseDate(field(rec, idx, downtime.ColDate))
		if err != nil {
			return nil, fmt.Errorf("line %d: malformed date %q", line, field(rec, idx, downtime.ColDate))
		}
		minutes, err := parseNumber(field(rec, idx, downtime.ColMinutes))
		if err != nil {
			return nil, fmt.Errorf("line %d column %s: %w", line, downtime.ColMinutes, err)
		}
		events = append(events, downtime.Event{
			Date:     at,
			StopCode: field(rec, idx, downtime.ColStopCode),
			Minutes:  minutes,
			Cell:     field(rec, idx, downtime.ColCell),
		})
	}
	return events, nil
}

func indexMap(headers []string) map[string]int {
	m := map[string]int{}
	for i, h := range headers {
		h = strings.TrimPrefix(h, "\ufeff")
		m[strings.TrimSpace(h)] = i
	}
	return m
}

func requireColumns(idx map[string]int, required []string) error {
	for _, col := range required {
		if !has(idx, col) {
			return fmt.Errorf("%w %s", pcp.ErrMissingColumn, col)
		}
	}
	return nil
}

func has(idx map[string]int, col string) bool {
	_, ok := idx[col]
	return ok
}

// field returns the trimmed cell of col, or "" when the column or cell is absent.
func field(rec []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseNumber reads a numeric cell; empty and NaN cells are NaN.
func parseNumber(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "", "nan", "na", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// LoadDir reads the base table and, when present, the downtime table from dir.
// events is nil when the downtime file does not exist.
func LoadDir(dir, base, downtimeName string) (pcp.Dataset, []downtime.Event, error) {
	ds, err := ReadBaseFile(filepath.Join(dir, base))
	if err != nil {
		return pcp.Dataset{}, nil, err
	}
	if downtimeName == "" {
		return ds, nil, nil
	}
	events, err := ReadDowntimeFile(filepath.Join(dir, downtimeName))
	if errors.Is(err, os.ErrNotExist) {
		return ds, nil, nil
	}
	if err != nil {
		return pcp.Dataset{}, nil, err
	}
	return ds, events, nil
}
