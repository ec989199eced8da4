package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresDashboardRepository serves the aggregate count queries behind the
// dashboard statistics endpoint.
type PostgresDashboardRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresDashboardRepository creates a new PostgresDashboardRepository
// with the given database connection.
func NewPostgresDashboardRepository(db *sql.DB) *PostgresDashboardRepository {
	return &PostgresDashboardRepository{DB: db}
}

// CountAccounts returns the total number of accounts.
func (r *PostgresDashboardRepository) CountAccounts(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM account`)
}

// CountAstrologyReadings returns the total number of astrology readings.
func (r *PostgresDashboardRepository) CountAstrologyReadings(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM userastrologyresults`)
}

// CountNumerologyReadings returns the total number of numerology readings.
func (r *PostgresDashboardRepository) CountNumerologyReadings(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM usernumerologyresults`)
}

// CountRecentReadings returns the number of readings of either kind
// recorded in the last 7 days.
func (r *PostgresDashboardRepository) CountRecentReadings(ctx context.Context) (int64, error) {
	return r.count(ctx, `
		SELECT COUNT(*) FROM (
			SELECT created_at FROM userastrologyresults WHERE created_at >= now() - INTERVAL '7 days'
			UNION ALL
			SELECT date FROM usernumerologyresults WHERE date >= now() - INTERVAL '7 days'
		) recent
	`)
}

func (r *PostgresDashboardRepository) count(ctx context.Context, query string) (int64, error) {
	var n int64
	if err := r.DB.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
