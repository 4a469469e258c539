package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pcp-stats/domain/pcp"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "./config.yml"

// Config represents the structure of config.yml used by the tool.
type Config struct {
	Data struct {
		Dir      string `yaml:"dir"`
		Base     string `yaml:"base"`
		Downtime string `yaml:"downtime"`
	} `yaml:"data"`
	Period struct {
		Preset string `yaml:"preset"`
		Start  string `yaml:"start"`
		End    string `yaml:"end"`
	} `yaml:"period"`
	Targets struct {
		MonthlyLoss     float64            `yaml:"monthly_loss"`
		Breakeven       float64            `yaml:"breakeven"`
		Compliance      float64            `yaml:"compliance"`
		SubgroupAxis    string             `yaml:"subgroup_axis"`
		SubgroupTargets map[string]float64 `yaml:"subgroups"`
	} `yaml:"targets"`
	Charts struct {
		RollingWindow int `yaml:"rolling_window"`
		Width         int `yaml:"width"`
		Height        int `yaml:"height"`
	} `yaml:"charts"`
	Web struct {
		Addr string `yaml:"addr"`
		UI   string `yaml:"ui"`
	} `yaml:"web"`
	Sources struct {
		S3       S3Source       `yaml:"s3"`
		Postgres PostgresSource `yaml:"postgres"`
	} `yaml:"sources"`
}

// S3Source locates the base table in an S3 bucket.
type S3Source struct {
	Region  string `yaml:"region"`
	Profile string `yaml:"profile"`
	Bucket  string `yaml:"bucket"`
	Key     string `yaml:"key"`
}

// PostgresSource locates the base table in a PostgreSQL database. URL may be left empty and
// provided through PCP_DATABASE_URL.
type PostgresSource struct {
	URL   string `yaml:"url"`
	Table string `yaml:"table"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.Data.Dir = "./data"
	c.Data.Base = "pcp_data.csv"
	c.Data.Downtime = "paradas.csv"
	c.Period.Preset = pcp.Last12Months.String()
	c.Targets.MonthlyLoss = 50000
	c.Targets.Breakeven = 50000
	c.Targets.Compliance = 50
	c.Targets.SubgroupAxis = pcp.ColCell
	c.Charts.RollingWindow = pcp.DefaultRollingWindow
	c.Charts.Width = 1024
	c.Charts.Height = 512
	c.Web.Addr = ":8080"
	c.Web.UI = "./ui/dist"
	c.Sources.Postgres.Table = "pcp_monthly"
	return c
}

// Path resolves the config file location from CONFIG_PATH.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// LoadEnv reads a .env file into the process environment when one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("config.env.error", "error", err)
	}
}

// Load parses the YAML configuration file at path on top of the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	slog.Info(fmt.Sprintf("Loaded config: %s", path))
	return c, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("config.default", "path", path)
		return Default(), nil
	}
	return c, err
}

// Selection converts the period section into a pcp.Selection.
func (c *Config) Selection() (pcp.Selection, error) {
	return ParseSelection(c.Period.Preset, c.Period.Start, c.Period.End)
}

// ParseSelection builds a selection from textual preset and dates. Dates are only read for
// the custom preset; an empty date falls back to the dataset bounds.
func ParseSelection(preset, start, end string) (pcp.Selection, error) {
	p, err := pcp.ParsePreset(preset)
	if err != nil {
		return pcp.Selection{}, err
	}
	sel := pcp.Selection{Preset: p}
	if p != pcp.Custom {
		return sel, nil
	}
	if start != "" {
		if sel.Start, err = time.Parse(pcp.DateLayout, start); err != nil {
			return sel, fmt.Errorf("invalid start date %q: %w", start, err)
		}
	}
	if end != "" {
		if sel.End, err = time.Parse(pcp.DateLayout, end); err != nil {
			return sel, fmt.Errorf("invalid end date %q: %w", end, err)
		}
	}
	return sel, nil
}

// Query assembles the computation inputs from the configured targets. An empty subgroup axis
// disables the subgroup panel; any other unknown value is an error.
func (c *Config) Query(sel pcp.Selection) (pcp.Query, error) {
	var axis pcp.Axis
	if strings.TrimSpace(c.Targets.SubgroupAxis) != "" {
		var err error
		if axis, err = pcp.ParseAxis(c.Targets.SubgroupAxis); err != nil {
			return pcp.Query{}, fmt.Errorf("targets.subgroup_axis: %w", err)
		}
	}
	return pcp.Query{
		Selection:       sel,
		MonthlyTarget:   c.Targets.MonthlyLoss,
		Compliance:      c.Targets.Compliance,
		BreakevenTarget: c.Targets.Breakeven,
		Axis:            axis,
		SubgroupTargets: pcp.SubgroupTargets(c.Targets.SubgroupTargets),
		RollingWindow:   c.Charts.RollingWindow,
	}, nil
}
