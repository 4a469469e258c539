package pcp

import (
	"math"
	"time"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// rec builds a record with the given loss and pct; other numeric fields are set to 1.
func rec(t time.Time, loss, pct float64) MonthlyRecord {
	return MonthlyRecord{
		Month:         t,
		LeadTime:      1,
		Effectiveness: 1,
		PrematureLoss: loss,
		PrematurePct:  pct,
		TotalLossM3:   math.NaN(),
		PrematureM3:   math.NaN(),
	}
}

// monthly returns one record per month of year y, from January to the given month.
func monthly(y int, through time.Month, loss float64) []MonthlyRecord {
	var out []MonthlyRecord
	for m := time.January; m <= through; m++ {
		out = append(out, rec(month(y, m), loss, 10))
	}
	return out
}
