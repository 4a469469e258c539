package web

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"pcp-stats/connectors/config"
	ccsv "pcp-stats/connectors/csv"
	"pcp-stats/connectors/deck"
	"pcp-stats/connectors/report"
	"pcp-stats/domain/downtime"
	"pcp-stats/domain/format"
	"pcp-stats/domain/pcp"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var calculatedName = regexp.MustCompile(`^[a-z0-9_]+$`)

// query builds the computation inputs from the request, falling back to the configuration.
func (s *Server) query(c echo.Context) (pcp.Query, error) {
	sel, err := config.ParseSelection(
		param(c, "preset", s.cfg.Period.Preset),
		param(c, "start", s.cfg.Period.Start),
		param(c, "end", s.cfg.Period.End),
	)
	if err != nil {
		return pcp.Query{}, badRequest("%v", err)
	}
	q, err := s.cfg.Query(sel)
	if err != nil {
		return q, err
	}
	if q.MonthlyTarget, err = floatParam(c, "target", q.MonthlyTarget); err != nil {
		return q, err
	}
	if q.Compliance, err = floatParam(c, "compliance", q.Compliance); err != nil {
		return q, err
	}
	if q.BreakevenTarget, err = floatParam(c, "breakeven", q.BreakevenTarget); err != nil {
		return q, err
	}
	if v := c.QueryParam("rolling"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, badRequest("rolling must be a positive integer, got %q", v)
		}
		q.RollingWindow = n
	}
	if v := c.QueryParam("axis"); v != "" {
		if q.Axis, err = pcp.ParseAxis(v); err != nil {
			return q, err
		}
	}
	return q, nil
}

func param(c echo.Context, name, def string) string {
	if v := c.QueryParam(name); v != "" {
		return v
	}
	return def
}

func floatParam(c echo.Context, name string, def float64) (float64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, badRequest("%s must be a number, got %q", name, v)
	}
	return f, nil
}

// analyze runs the full computation for the request against the current snapshot.
func (s *Server) analyze(c echo.Context) (pcp.Report, *snapshot, error) {
	snap := s.current()
	q, err := s.query(c)
	if err != nil {
		return pcp.Report{}, snap, err
	}
	rep, err := pcp.Analyze(snap.ds, q)
	return rep, snap, err
}

func summarize(snap *snapshot, w pcp.PeriodWindow) *downtime.Summary {
	if snap.events == nil {
		return nil
	}
	sum := downtime.Summarize(snap.events, w)
	return &sum
}

func (s *Server) period(c echo.Context) error {
	snap := s.current()
	q, err := s.query(c)
	if err != nil {
		return fail(c, err)
	}
	periods, err := pcp.Resolve(snap.ds, q.Selection)
	if err != nil {
		return fail(c, err)
	}
	first, last, _ := snap.ds.Bounds()
	return c.JSON(http.StatusOK, map[string]any{
		"preset":       q.Selection.Preset.String(),
		"current":      periods.Current,
		"previous":     periods.Previous,
		"first_month":  first,
		"last_month":   last,
		"records":      len(snap.ds.Window(periods.Current)),
		"capabilities": snap.ds.Capabilities(),
	})
}

func (s *Server) overview(c echo.Context) error {
	rep, _, err := s.analyze(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, struct {
		pcp.Overview
		Cards []format.Card `json:"cards"`
	}{rep.Overview, format.Cards(rep.Overview)})
}

func (s *Server) records(c echo.Context) error {
	rep, _, err := s.analyze(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rep.Records)
}

func (s *Server) recordsCSV(c echo.Context) error {
	rep, snap, err := s.analyze(c)
	if err != nil {
		return fail(c, err)
	}
	var buf bytes.Buffer
	if err := ccsv.WriteRecords(&buf, snap.ds.Capabilities(), rep.Records); err != nil {
		return fail(c, err)
	}
	return attachment(c, ccsv.FilteredFile, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) lossVsTarget(c echo.Context) error {
	rep, _, err := s.analyze(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rep.Target)
}

// simulation reads target as the breakeven target unless breakeven is given.
func (s *Server) simulation(c echo.Context) error {
	rep, _, err := s.analyze(c)
	if err != nil {
		return fail(c, err)
	}
	if c.QueryParam("breakeven") == "" && c.QueryParam("target") != "" {
		rep.Breakeven, err = pcp.ComputeBreakeven(rep.Records, rep.Query.MonthlyTarget)
		if err != nil {
			return fail(c, err)
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"simulation": rep.Simulation,
		"breakeven":  rep.Breakeven,
	})
}

type subgroupRequest struct {
	Axis    string             `json:"axis"`
	Targets map[string]float64 `json:"targets"`
}

// subgroups serves GET (configured targets) and POST (targets edited by the client).
func (s *Server) subgroups(c echo.Context) error {
	snap := s.current()
	q, err := s.query(c)
	if err != nil {
		return fail(c, err)
	}
	if c.Request().Method == http.MethodPost {
		var body subgroupRequest
		if err := c.Bind(&body); err != nil {
			return fail(c, badRequest("%v", err))
		}
		if body.Axis != "" {
			if q.Axis, err = pcp.ParseAxis(body.Axis); err != nil {
				return fail(c, err)
			}
		}
		if body.Targets != nil {
			q.SubgroupTargets = body.Targets
		}
	}
	if q.Axis == "" {
		return fail(c, badRequest("axis is required"))
	}
	rep, err := pcp.Analyze(snap.ds, q)
	if err != nil {
		return fail(c, err)
	}
	if rep.Subgroups == nil {
		return fail(c, fmt.Errorf("%w: %s", pcp.ErrAxisUnavailable, q.Axis))
	}
	return c.JSON(http.StatusOK, rep.Subgroups)
}

func (s *Server) quality(c echo.Context) error {
	rep, _, err := s.analyze(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rep.Quality)
}

func (s *Server) getDowntime(c echo.Context) error {
	snap := s.current()
	if snap.events == nil {
		return fail(c, fmt.Errorf("%s: %w", s.cfg.Data.Downtime, os.ErrNotExist))
	}
	return s.respondDowntime(c, snap.ds, snap.events)
}

func (s *Server) uploadDowntime(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, badRequest("multipart field \"file\" is required"))
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()
	events, err := ccsv.ReadDowntime(f)
	if err != nil {
		return fail(c, badRequest("%s: %v", fh.Filename, err))
	}
	slog.Info("web.downtime.uploaded", "file", fh.Filename, "events", len(events))
	return s.respondDowntime(c, s.current().ds, events)
}

// respondDowntime aggregates events over the requested window. format=csv returns the
// cell x code table as a download.
func (s *Server) respondDowntime(c echo.Context, ds pcp.Dataset, events []downtime.Event) error {
	q, err := s.query(c)
	if err != nil {
		return fail(c, err)
	}
	periods, err := pcp.Resolve(ds, q.Selection)
	if err != nil {
		return fail(c, err)
	}
	sum := downtime.Summarize(events, periods.Current)
	if c.QueryParam("format") == "csv" {
		var buf bytes.Buffer
		if err := ccsv.WriteDowntimeDetail(&buf, sum.Detail); err != nil {
			return fail(c, err)
		}
		return attachment(c, ccsv.DowntimeAggFile, "text/csv; charset=utf-8", buf.Bytes())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"period":  periods.Current,
		"summary": sum,
		"chart":   sum.Chart(),
	})
}

func (s *Server) uploadBase(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, badRequest("multipart field \"file\" is required"))
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()
	ds, err := ccsv.ReadBase(f)
	if err != nil {
		slog.Warn("web.base.rejected", "file", fh.Filename, "error", err)
		return fail(c, fmt.Errorf("%s: %w", fh.Filename, err))
	}
	s.replaceBase(ds)
	first, last, _ := ds.Bounds()
	slog.Info("web.base.replaced", "file", fh.Filename, "records", ds.Len())
	return c.JSON(http.StatusOK, map[string]any{
		"records":      ds.Len(),
		"first_month":  first,
		"last_month":   last,
		"capabilities": ds.Capabilities(),
	})
}

func (s *Server) chartPNG(c echo.Context) error {
	rep, snap, err := s.analyze(c)
	if err != nil {
		return fail(c, err)
	}
	name := c.Param("name")
	ch, ok := report.FindChart(report.Charts(rep, summarize(snap, rep.Overview.Periods.Current)), name)
	if !ok {
		return fail(c, fmt.Errorf("chart %q: %w", name, os.ErrNotExist))
	}
	png, err := s.renderer.PNG(ch)
	if err != nil {
		return fail(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (s *Server) exportDeck(c echo.Context) error {
	rep, snap, err := s.analyze(c)
	if err != nil {
		return fail(c, err)
	}
	d, err := report.Deck(rep, summarize(snap, rep.Overview.Periods.Current), s.renderer, time.Now())
	if err != nil {
		return fail(c, err)
	}
	var buf bytes.Buffer
	if err := deck.Write(&buf, d); err != nil {
		return fail(c, err)
	}
	return attachment(c, "pcp_report.xlsx", xlsxContentType, buf.Bytes())
}

// calculated serves the CSV files written by the calculate command as JSON.
func (s *Server) calculated(c echo.Context) error {
	name := c.Param("name")
	if !calculatedName.MatchString(name) {
		return fail(c, badRequest("invalid file name %q", name))
	}
	path := filepath.Join(s.dataDir, name+".csv")
	rows, err := readCSV(path)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func attachment(c echo.Context, filename, contentType string, body []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, body)
}
