package pcp

import "errors"

// Query gathers every user input of one recomputation.
type Query struct {
	Selection       Selection
	MonthlyTarget   float64
	Compliance      float64
	BreakevenTarget float64
	Axis            Axis
	SubgroupTargets SubgroupTargets
	RollingWindow   int
}

// Report is the full set of panels for one window.
type Report struct {
	Query      Query
	Records    []MonthlyRecord
	Overview   Overview
	Target     TargetReport
	Simulation Simulation
	Breakeven  Breakeven
	Subgroups  *SubgroupReport
	Quality    []QualityCheck
	Charts     []Chart
}

// Analyze resolves the period and computes every panel. It returns ErrEmptyWindow, with the
// periods filled in, when the current window has no records.
func Analyze(ds Dataset, q Query) (Report, error) {
	periods, err := Resolve(ds, q.Selection)
	if err != nil {
		return Report{Query: q}, err
	}
	rep := Report{Query: q, Records: ds.Window(periods.Current)}
	rep.Overview, err = BuildOverview(ds, periods)
	if err != nil {
		return rep, err
	}
	rep.Target = EvaluateTarget(rep.Records, q.MonthlyTarget)
	if rep.Simulation, err = Simulate(rep.Records, q.Compliance); err != nil {
		return rep, err
	}
	if rep.Breakeven, err = ComputeBreakeven(rep.Records, q.BreakevenTarget); err != nil {
		return rep, err
	}
	if q.Axis != "" {
		sg, err := EvaluateSubgroups(ds, rep.Records, q.Axis, q.SubgroupTargets)
		switch {
		case err == nil:
			rep.Subgroups = &sg
		case !errors.Is(err, ErrAxisUnavailable):
			return rep, err
		}
	}
	rep.Quality = CheckQuality(ds.Capabilities(), rep.Records)
	rep.Charts = BuildCharts(ChartInput{
		Records:       rep.Records,
		Target:        rep.Target,
		Simulation:    rep.Simulation,
		Subgroups:     rep.Subgroups,
		RollingWindow: q.RollingWindow,
	})
	return rep, nil
}
