// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

// Package analytics keeps a DuckDB log of served histories and answers the
// trending and summary queries behind /api/v1/trending.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	"github.com/google/uuid"

	"github.com/tomtom215/dishatlas/internal/logging"
	"github.com/tomtom215/dishatlas/internal/metrics"
	"github.com/tomtom215/dishatlas/internal/models"
)

// Extension autoloading is disabled so startup never reaches the network.
const connParams = "?autoinstall_known_extensions=false&autoload_known_extensions=false"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS searches (
		id          VARCHAR PRIMARY KEY,
		dish        VARCHAR NOT NULL,
		dish_key    VARCHAR NOT NULL,
		source      VARCHAR NOT NULL,
		stops       INTEGER NOT NULL,
		distance_km INTEGER NOT NULL,
		span_years  INTEGER,
		searched_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_searches_dish_key ON searches (dish_key)`,
	`CREATE INDEX IF NOT EXISTS idx_searches_searched_at ON searches (searched_at)`,
}

// SearchRecord is one served history.
type SearchRecord struct {
	Dish       string
	Source     string
	Stops      int
	DistanceKm int

	// SpanYears is nil when the timeline did not parse.
	SpanYears  *int
	SearchedAt time.Time
}

// Recorder writes and queries the search log.
type Recorder struct {
	conn *sql.DB
}

// Open opens the DuckDB file at path, or an in-memory database when path is
// empty, and creates the schema.
func Open(ctx context.Context, path string) (*Recorder, error) {
	dsn := ":memory:" + connParams
	if path != "" {
		dsn = path + connParams
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open analytics database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			closeQuietly(conn)
			return nil, fmt.Errorf("failed to create analytics schema: %w", err)
		}
	}

	logging.Debug().Str("path", path).Msg("analytics database ready")
	return &Recorder{conn: conn}, nil
}

// Close closes the database.
func (r *Recorder) Close() error {
	return r.conn.Close()
}

// Ping checks the connection.
func (r *Recorder) Ping(ctx context.Context) error {
	return r.conn.PingContext(ctx)
}

// RecordSearch appends rec to the log. A zero SearchedAt means now.
func (r *Recorder) RecordSearch(ctx context.Context, rec SearchRecord) error {
	key := models.DishKey(rec.Dish)
	if key == "" {
		return fmt.Errorf("record search: empty dish name")
	}
	at := rec.SearchedAt
	if at.IsZero() {
		at = time.Now()
	}

	var span sql.NullInt64
	if rec.SpanYears != nil {
		span = sql.NullInt64{Int64: int64(*rec.SpanYears), Valid: true}
	}

	start := time.Now()
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO searches (id, dish, dish_key, source, stops, distance_km, span_years, searched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), models.NormalizeDishName(rec.Dish), key, rec.Source,
		rec.Stops, rec.DistanceKm, span, at.UTC(),
	)
	metrics.RecordStoreOperation("duckdb", "record_search", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

// TopDishes returns the most searched dishes. A positive window restricts the
// count to searches newer than now minus window. Dishes are grouped
// case-insensitively and reported under their most recent spelling.
func (r *Recorder) TopDishes(ctx context.Context, limit int, window time.Duration) ([]models.TrendingDish, error) {
	if limit <= 0 {
		limit = 10
	}
	since := time.Time{}
	if window > 0 {
		since = time.Now().Add(-window).UTC()
	}

	start := time.Now()
	rows, err := r.conn.QueryContext(ctx, `
		SELECT arg_max(dish, searched_at) AS dish,
		       COUNT(*) AS searches,
		       MAX(searched_at) AS last_searched
		FROM searches
		WHERE searched_at >= ?
		GROUP BY dish_key
		ORDER BY searches DESC, last_searched DESC
		LIMIT ?`, since, limit)
	if err != nil {
		metrics.RecordStoreOperation("duckdb", "top_dishes", time.Since(start), err)
		return nil, fmt.Errorf("query top dishes: %w", err)
	}
	defer closeQuietly(rows)

	out := []models.TrendingDish{}
	for rows.Next() {
		var d models.TrendingDish
		if err := rows.Scan(&d.Dish, &d.Searches, &d.LastSearched); err != nil {
			return nil, fmt.Errorf("scan top dish: %w", err)
		}
		out = append(out, d)
	}
	err = rows.Err()
	metrics.RecordStoreOperation("duckdb", "top_dishes", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("iterate top dishes: %w", err)
	}
	return out, nil
}

// Summary aggregates the whole log.
func (r *Recorder) Summary(ctx context.Context) (models.SearchSummary, error) {
	var s models.SearchSummary
	start := time.Now()
	err := r.conn.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT dish_key),
		       COALESCE(AVG(distance_km), 0),
		       COALESCE(AVG(stops), 0)
		FROM searches`).Scan(&s.TotalSearches, &s.DistinctDishes, &s.AvgDistanceKm, &s.AvgStops)
	metrics.RecordStoreOperation("duckdb", "summary", time.Since(start), err)
	if err != nil {
		return s, fmt.Errorf("query search summary: %w", err)
	}
	return s, nil
}

func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
