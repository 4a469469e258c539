package pcp

import (
	"fmt"
	"sort"
	"strings"
	"time"

	lo "github.com/samber/lo"
)

// Axis is the optional column used to split records into subgroups.
type Axis string

const (
	AxisCell   Axis = ColCell
	AxisFamily Axis = ColFamily
)

// ParseAxis maps a column name to an Axis.
func ParseAxis(s string) (Axis, error) {
	switch Axis(strings.ToLower(strings.TrimSpace(s))) {
	case AxisCell:
		return AxisCell, nil
	case AxisFamily:
		return AxisFamily, nil
	}
	return "", fmt.Errorf("%w: %q", ErrAxisUnavailable, s)
}

func (a Axis) key(r MonthlyRecord) string {
	if a == AxisFamily {
		return strings.TrimSpace(r.Family)
	}
	return strings.TrimSpace(r.Cell)
}

func (a Axis) available(c Capabilities) bool {
	switch a {
	case AxisCell:
		return c.Cell
	case AxisFamily:
		return c.Family
	}
	return false
}

// SubgroupTargets maps a subgroup key to its monthly loss target. Missing keys mean zero.
type SubgroupTargets map[string]float64

func (t SubgroupTargets) For(key string) float64 { return t[key] }

// SubgroupRow is the summed loss of one subgroup in one month.
type SubgroupRow struct {
	Key    string    `json:"key"`
	Month  time.Time `json:"month"`
	Loss   float64   `json:"perda_prem_R"`
	Target float64   `json:"meta"`
	Gap    float64   `json:"gap"`
}

// SubgroupRank is a subgroup's totals over the whole window.
type SubgroupRank struct {
	Key    string  `json:"key"`
	Loss   float64 `json:"perda_prem_R"`
	Target float64 `json:"meta"`
	Gap    float64 `json:"gap"`
}

// SubgroupReport holds the (subgroup, month) table and the ranking by total gap.
type SubgroupReport struct {
	Axis    Axis           `json:"axis"`
	Rows    []SubgroupRow  `json:"rows"`
	Ranking []SubgroupRank `json:"ranking"`
}

type subgroupMonth struct {
	key   string
	month time.Time
}

// EvaluateSubgroups sums loss per (subgroup, month), joins targets and ranks subgroups by
// total gap, largest overage first. Records with an empty key are ignored.
func EvaluateSubgroups(ds Dataset, records []MonthlyRecord, axis Axis, targets SubgroupTargets) (SubgroupReport, error) {
	if !axis.available(ds.Capabilities()) {
		return SubgroupReport{Axis: axis}, fmt.Errorf("%w: %s", ErrAxisUnavailable, axis)
	}
	keyed := lo.Filter(records, func(r MonthlyRecord, _ int) bool { return axis.key(r) != "" })
	groups := lo.GroupBy(keyed, func(r MonthlyRecord) subgroupMonth {
		return subgroupMonth{key: axis.key(r), month: r.Month}
	})

	rows := make([]SubgroupRow, 0, len(groups))
	for g, rs := range groups {
		loss := sum(lo.Map(rs, func(r MonthlyRecord, _ int) float64 { return r.PrematureLoss }))
		target := targets.For(g.key)
		rows = append(rows, SubgroupRow{Key: g.key, Month: g.month, Loss: loss, Target: target, Gap: loss - target})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Key != rows[j].Key {
			return rows[i].Key < rows[j].Key
		}
		return rows[i].Month.Before(rows[j].Month)
	})

	byKey := lo.GroupBy(rows, func(r SubgroupRow) string { return r.Key })
	ranking := make([]SubgroupRank, 0, len(byKey))
	for k, rs := range byKey {
		ranking = append(ranking, SubgroupRank{
			Key:    k,
			Loss:   lo.SumBy(rs, func(r SubgroupRow) float64 { return r.Loss }),
			Target: lo.SumBy(rs, func(r SubgroupRow) float64 { return r.Target }),
			Gap:    lo.SumBy(rs, func(r SubgroupRow) float64 { return r.Gap }),
		})
	}
	return SubgroupReport{Axis: axis, Rows: rows, Ranking: RankByGap(ranking)}, nil
}

// RankByGap orders subgroups by gap descending, ties by key.
func RankByGap(ranks []SubgroupRank) []SubgroupRank {
	out := make([]SubgroupRank, len(ranks))
	copy(out, ranks)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Gap != out[j].Gap {
			return out[i].Gap > out[j].Gap
		}
		return out[i].Key < out[j].Key
	})
	return out
}
