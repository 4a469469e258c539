package deck

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pcp-stats/domain/format"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestWrite(t *testing.T) {
	pic := tinyPNG(t)
	delta := "+0.50"
	d := Deck{
		Title:     "PCP",
		Subtitle:  "Resumo",
		Generated: time.Date(2024, time.July, 1, 9, 30, 0, 0, time.UTC),
		Cards: []format.Card{
			{Label: "Lead time médio (dias)", Value: "3.50", Delta: &delta},
			{Label: "Efetividade média", Value: "1.20x"},
		},
		Lines: []Line{{Label: "Meta mensal (R$)", Value: "R$ 50.000"}},
		Slides: []Slide{
			{Name: "lead_time", Title: "Lead time", PNG: pic},
			{Name: "a_very_long_chart_name_that_overflows", Title: "Longo", PNG: pic},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, d))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 4)
	assert.Equal(t, []string{"Capa", "KPIs", "01 lead_time"}, sheets[:3])
	assert.LessOrEqual(t, len(sheets[3]), 31)

	title, err := f.GetCellValue("Capa", "A1")
	require.NoError(t, err)
	assert.Equal(t, "PCP", title)

	rows, err := f.GetRows("KPIs")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Lead time médio (dias)", "3.50", "+0.50"}, rows[1])
	assert.Equal(t, "R$ 50.000", rows[3][1])

	pics, err := f.GetPictures("01 lead_time", "A3")
	require.NoError(t, err)
	assert.Len(t, pics, 1)
}
