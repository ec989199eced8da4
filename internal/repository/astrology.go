package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tdnguyen/astroserve/internal/models"
)

// astrologyReadingColumns is the column list shared by every reading query.
const astrologyReadingColumns = `resultid, phonenumber, date, ascendant, chiron, jupiter, mars, mercury, moon, neptune, pluto, saturn, sun, venus, created_at`

// PostgresAstrologyRepository implements astrology systems and reading
// persistence against a PostgreSQL database.
type PostgresAstrologyRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAstrologyRepository creates a new PostgresAstrologyRepository
// with the given database connection.
func NewPostgresAstrologyRepository(db *sql.DB) *PostgresAstrologyRepository {
	return &PostgresAstrologyRepository{DB: db}
}

// Systems returns all astrology systems ordered by id. The order is load
// bearing: meaning fan-out responses are positional.
func (r *PostgresAstrologyRepository) Systems(ctx context.Context) ([]models.System, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, description FROM astrology ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list astrology systems: %w", err)
	}
	defer rows.Close()

	var systems []models.System
	for rows.Next() {
		var s models.System
		if err := rows.Scan(&s.ID, &s.Name, &s.Description); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		systems = append(systems, s)
	}
	return systems, rows.Err()
}

// CreateSystem inserts a new astrology system and returns its id.
func (r *PostgresAstrologyRepository) CreateSystem(ctx context.Context, name, description string) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO astrology (name, description) VALUES ($1, $2) RETURNING id
	`, name, description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create astrology system: %w", err)
	}
	return id, nil
}

// UpdateSystem replaces the name and description of a system.
func (r *PostgresAstrologyRepository) UpdateSystem(ctx context.Context, id int64, name, description string) error {
	_, err := r.DB.ExecContext(
		ctx,
		`UPDATE astrology SET name = $1, description = $2 WHERE id = $3`,
		name, description, id,
	)
	return err
}

// DeleteSystem removes a system by id.
func (r *PostgresAstrologyRepository) DeleteSystem(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM astrology WHERE id = $1`, id)
	return err
}

// InsertReading persists an astrology reading. A fresh UUID is generated
// and written back into reading.ID.
func (r *PostgresAstrologyRepository) InsertReading(ctx context.Context, reading *models.AstrologyReading) error {
	reading.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO userastrologyresults
		(resultid, phonenumber, date, ascendant, chiron, jupiter, mars, mercury, moon, neptune, pluto, saturn, sun, venus)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, reading.ID, reading.PhoneNumber, reading.Date, reading.Ascendant, reading.Chiron,
		reading.Jupiter, reading.Mars, reading.Mercury, reading.Moon, reading.Neptune,
		reading.Pluto, reading.Saturn, reading.Sun, reading.Venus)
	if err != nil {
		return fmt.Errorf("insert astrology reading: %w", err)
	}
	return nil
}

// Readings returns all astrology readings, newest first.
func (r *PostgresAstrologyRepository) Readings(ctx context.Context) ([]models.AstrologyReading, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+astrologyReadingColumns+` FROM userastrologyresults ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list astrology readings: %w", err)
	}
	defer rows.Close()
	return scanAstrologyReadings(rows)
}

// ReadingsByPhone returns the astrology readings recorded for a phone
// number, newest first.
func (r *PostgresAstrologyRepository) ReadingsByPhone(ctx context.Context, phone string) ([]models.AstrologyReading, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+astrologyReadingColumns+` FROM userastrologyresults WHERE phonenumber = $1 ORDER BY created_at DESC
	`, phone)
	if err != nil {
		return nil, fmt.Errorf("list astrology readings by phone: %w", err)
	}
	defer rows.Close()
	return scanAstrologyReadings(rows)
}

// ReadingByID fetches a single astrology reading.
// Returns sql.ErrNoRows when no reading matches.
func (r *PostgresAstrologyRepository) ReadingByID(ctx context.Context, id string) (*models.AstrologyReading, error) {
	var reading models.AstrologyReading
	err := r.DB.QueryRowContext(ctx, `
		SELECT `+astrologyReadingColumns+` FROM userastrologyresults WHERE resultid = $1
	`, id).Scan(
		&reading.ID, &reading.PhoneNumber, &reading.Date, &reading.Ascendant, &reading.Chiron,
		&reading.Jupiter, &reading.Mars, &reading.Mercury, &reading.Moon, &reading.Neptune,
		&reading.Pluto, &reading.Saturn, &reading.Sun, &reading.Venus, &reading.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

// DeleteReading removes an astrology reading by id. Returns the number of
// rows deleted.
func (r *PostgresAstrologyRepository) DeleteReading(ctx context.Context, id string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM userastrologyresults WHERE resultid = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// scanAstrologyReadings drains a result set of full reading rows.
func scanAstrologyReadings(rows *sql.Rows) ([]models.AstrologyReading, error) {
	var readings []models.AstrologyReading
	for rows.Next() {
		var reading models.AstrologyReading
		if err := rows.Scan(
			&reading.ID, &reading.PhoneNumber, &reading.Date, &reading.Ascendant, &reading.Chiron,
			&reading.Jupiter, &reading.Mars, &reading.Mercury, &reading.Moon, &reading.Neptune,
			&reading.Pluto, &reading.Saturn, &reading.Sun, &reading.Venus, &reading.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}
