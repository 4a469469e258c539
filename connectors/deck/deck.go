// Package deck writes the PCP report deck as an xlsx workbook: a title sheet, a KPI summary
// sheet and one sheet per rendered chart.
package deck

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"pcp-stats/domain/format"
	"pcp-stats/domain/pcp"
)

const (
	titleSheet = "Capa"
	kpiSheet   = "KPIs"
)

// Slide is a rendered chart.
type Slide struct {
	Name  string
	Title string
	PNG   []byte
}

// Line is an extra labelled value on the KPI sheet.
type Line struct {
	Label string
	Value string
}

// Deck is everything the workbook shows.
type Deck struct {
	Title     string
	Subtitle  string
	Generated time.Time
	Periods   pcp.Periods
	Cards     []format.Card
	Lines     []Line
	Slides    []Slide
}

// Build assembles the workbook. The caller owns the returned file and must Close it.
func Build(d Deck) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", titleSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeTitle(f, d); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeKPIs(f, d); err != nil {
		f.Close()
		return nil, err
	}
	for i, s := range d.Slides {
		if err := writeSlide(f, i+1, s); err != nil {
			f.Close()
			return nil, fmt.Errorf("slide %s: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the workbook and streams it to w.
func Write(w io.Writer, d Deck) error {
	f, err := Build(d)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func writeTitle(f *excelize.File, d Deck) error {
	big, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 24}})
	if err != nil {
		return err
	}
	cells := [][2]any{
		{"A1", d.Title},
		{"A3", d.Subtitle},
		{"A5", "Período: " + d.Periods.Current.String()},
		{"A6", "Período anterior: " + d.Periods.Previous.String()},
		{"A8", "Gerado em " + d.Generated.Format("2006-01-02 15:04")},
	}
	for _, c := range cells {
		if err := f.SetCellValue(titleSheet, c[0].(string), c[1]); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(titleSheet, "A1", "A1", big); err != nil {
		return err
	}
	return f.SetColWidth(titleSheet, "A", "A", 80)
}

func writeKPIs(f *excelize.File, d Deck) error {
	if _, err := f.NewSheet(kpiSheet); err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	rows := [][]any{{"Indicador", "Valor", "Δ vs. período anterior"}}
	for _, c := range d.Cards {
		delta := ""
		if c.Delta != nil {
			delta = *c.Delta
		}
		rows = append(rows, []any{c.Label, c.Value, delta})
	}
	for _, l := range d.Lines {
		rows = append(rows, []any{l.Label, l.Value, ""})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(kpiSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(kpiSheet, 1, 1, header); err != nil {
		return err
	}
	if err := f.SetColWidth(kpiSheet, "A", "A", 45); err != nil {
		return err
	}
	return f.SetColWidth(kpiSheet, "B", "C", 25)
}

func writeSlide(f *excelize.File, n int, s Slide) error {
	sheet := fmt.Sprintf("%02d %s", n, s.Name)
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "A1", s.Title); err != nil {
		return err
	}
	return f.AddPictureFromBytes(sheet, "A3", &excelize.Picture{
		Extension: ".png",
		File:      s.PNG,
		Format:    &excelize.GraphicOptions{AltText: s.Title},
	})
}
