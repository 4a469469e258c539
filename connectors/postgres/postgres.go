package postgres

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pcp-stats/domain/pcp"
)

// Columns selected from the monthly table, in scan order.
var selectColumns = []string{
	pcp.ColMonth,
	pcp.ColLeadTime,
	pcp.ColEffectiveness,
	pcp.ColPrematureLoss,
	pcp.ColPrematurePct,
	pcp.ColCell,
	pcp.ColFamily,
}

// Querier is the subset of pgxpool.Pool used by the source.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Source reads the monthly base table from PostgreSQL.
type Source struct {
	db    Querier
	table string
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// NewSource reads from table through db.
func NewSource(db Querier, table string) *Source {
	return &Source{db: db, table: table}
}

// SelectQuery builds the month-ordered select, optionally bounded by since (inclusive).
func SelectQuery(table string, since *time.Time) (string, []any, error) {
	q := squirrel.Select(quoteAll(selectColumns)...).
		From(table).
		OrderBy(quote(pcp.ColMonth)).
		PlaceholderFormat(squirrel.Dollar)
	if since != nil {
		q = q.Where(squirrel.GtOrEq{quote(pcp.ColMonth): *since})
	}
	return q.ToSql()
}

// Load reads every row since the given month (all rows when nil). celula and familia may be NULL;
// the capability flags report them as present since the table always carries them.
func (s *Source) Load(ctx context.Context, since *time.Time) (pcp.Dataset, error) {
	query, args, err := SelectQuery(s.table, since)
	if err != nil {
		return pcp.Dataset{}, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return pcp.Dataset{}, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	var records []pcp.MonthlyRecord
	for rows.Next() {
		var (
			r                    pcp.MonthlyRecord
			lead, eff, loss, pct *float64
			cell, family         *string
		)
		if err := rows.Scan(&r.Month, &lead, &eff, &loss, &pct, &cell, &family); err != nil {
			return pcp.Dataset{}, fmt.Errorf("scan %s: %w", s.table, err)
		}
		r.LeadTime, r.Effectiveness, r.PrematureLoss, r.PrematurePct = orNaN(lead), orNaN(eff), orNaN(loss), orNaN(pct)
		r.TotalLossM3, r.PrematureM3 = math.NaN(), math.NaN()
		r.Cell, r.Family = orEmpty(cell), orEmpty(family)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return pcp.Dataset{}, err
	}
	return pcp.NewDataset(records, pcp.Capabilities{Cell: true, Family: true}), nil
}

func quote(col string) string { return `"` + col + `"` }

func quoteAll(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = quote(c)
	}
	return out
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
