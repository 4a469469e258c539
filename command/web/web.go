package web

import (
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/labstack/echo/v4"

	"pcp-stats/connectors/chart"
	"pcp-stats/connectors/config"
	ccsv "pcp-stats/connectors/csv"
	"pcp-stats/domain/downtime"
	"pcp-stats/domain/pcp"
)

// snapshot is the loaded data. It is never mutated; uploads install a new one.
type snapshot struct {
	ds     pcp.Dataset
	events []downtime.Event
}

// Server holds the current snapshot and the configuration used for defaults.
type Server struct {
	cfg      *config.Config
	dataDir  string
	renderer chart.Renderer
	state    atomic.Pointer[snapshot]
}

// NewServer returns a server over ds and events. events may be nil.
func NewServer(cfg *config.Config, dataDir string, ds pcp.Dataset, events []downtime.Event) *Server {
	s := &Server{
		cfg:      cfg,
		dataDir:  dataDir,
		renderer: chart.NewRenderer(cfg.Charts.Width, cfg.Charts.Height),
	}
	s.state.Store(&snapshot{ds: ds, events: events})
	return s
}

func (s *Server) current() *snapshot { return s.state.Load() }

// replaceBase swaps the dataset while keeping the downtime events.
func (s *Server) replaceBase(ds pcp.Dataset) {
	for {
		old := s.state.Load()
		if s.state.CompareAndSwap(old, &snapshot{ds: ds, events: old.events}) {
			return
		}
	}
}

// Run starts the Echo web server exposing the PCP analytics as JSON, CSV, PNG and xlsx, plus
// an optional SPA dashboard.
//
// Usage:
//
//	pcp-stats web [-addr :8080] [-data ./data] [-ui ./ui/dist]
//
// Analytics endpoints accept preset, start and end query parameters:
//
//	GET  /api/period              -> resolved current and previous windows
//	GET  /api/overview            -> KPI cards with deltas
//	GET  /api/records[.csv]       -> filtered base table
//	GET  /api/loss_vs_target      -> ?target=
//	GET  /api/simulation          -> ?compliance=&target=
//	GET  /api/subgroups           -> ?axis= (POST with editable targets in the body)
//	GET  /api/quality             -> NaN/negative/zero counts
//	GET  /api/downtime            -> downtime aggregates of <data>/paradas.csv
//	POST /api/base                -> replace the base table (multipart "file")
//	POST /api/downtime            -> aggregate an uploaded downtime table (?format=csv)
//	GET  /api/charts/:name        -> chart PNG
//	GET  /api/export/deck         -> report deck (xlsx)
//	GET  /api/calculated/:name    -> <data>/<name>.csv written by calculate (404 if missing)
//
// When -ui points to a built Vite app (index.html exists), static files are served at / and
// unknown routes fall back to index.html for SPA routing.
func Run(args []string) error {
	cfg, err := config.LoadOrDefault(config.Path())
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Web.Addr, "http listen address (host:port)")
	dataDir := fs.String("data", cfg.Data.Dir, "directory containing CSV files")
	uiDir := fs.String("ui", cfg.Web.UI, "directory containing built UI (Vite dist)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ds, events, err := ccsv.LoadDir(*dataDir, cfg.Data.Base, cfg.Data.Downtime)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Start empty; POST /api/base installs a table.
		slog.Warn("web.base.missing", "path", filepath.Join(*dataDir, cfg.Data.Base))
	case err != nil:
		return err
	default:
		slog.Info("web.base.loaded", "records", ds.Len(), "downtime_events", len(events))
	}

	e := echo.New()
	e.HideBanner = true
	NewServer(cfg, *dataDir, ds, events).Register(e)
	serveUI(e, *uiDir)

	slog.Info("web.start", "addr", *addr)
	return e.Start(*addr)
}

// Register mounts the API routes on e.
func (s *Server) Register(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/period", s.period)
	api.GET("/overview", s.overview)
	api.GET("/records", s.records)
	api.GET("/records.csv", s.recordsCSV)
	api.GET("/loss_vs_target", s.lossVsTarget)
	api.GET("/simulation", s.simulation)
	api.GET("/subgroups", s.subgroups)
	api.POST("/subgroups", s.subgroups)
	api.GET("/quality", s.quality)
	api.GET("/downtime", s.getDowntime)
	api.POST("/downtime", s.uploadDowntime)
	api.POST("/base", s.uploadBase)
	api.GET("/charts/:name", s.chartPNG)
	api.GET("/export/deck", s.exportDeck)
	api.GET("/calculated/:name", s.calculated)
}

func serveUI(e *echo.Echo, uiDir string) {
	indexPath := filepath.Join(uiDir, "index.html")
	fi, err := os.Stat(indexPath)
	if err != nil || fi.IsDir() {
		return
	}
	e.Static("/", uiDir)
	e.GET("/", func(c echo.Context) error { return c.File(indexPath) })

	// Fallback to index.html for non-API 404s (SPA routing) while keeping static assets working
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if he, ok := err.(*echo.HTTPError); ok && he.Code == http.StatusNotFound {
			if !strings.HasPrefix(c.Request().URL.Path, "/api") {
				_ = c.File(indexPath)
				return
			}
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}
