package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/tdnguyen/astroserve/internal/models"
)

// numerologyReadingColumns is the column list shared by every reading query.
const numerologyReadingColumns = `resultid, phonenumber, lifepath_number, destiny_number, soulurge_number, personality_number, naturalability_number, maturity_number, attitude_number, challenge_number_1, challenge_number_2, challenge_number_3, challenge_number_4, date`

// PostgresNumerologyRepository implements numerology systems and reading
// persistence against a PostgreSQL database.
type PostgresNumerologyRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresNumerologyRepository creates a new PostgresNumerologyRepository
// with the given database connection.
func NewPostgresNumerologyRepository(db *sql.DB) *PostgresNumerologyRepository {
	return &PostgresNumerologyRepository{DB: db}
}

// Systems returns all numerology systems ordered by id. The order is load
// bearing: meaning fan-out responses are positional.
func (r *PostgresNumerologyRepository) Systems(ctx context.Context) ([]models.System, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, description FROM numerology ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list numerology systems: %w", err)
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

// CreateSystem inserts a new numerology system and returns its id.
func (r *PostgresNumerologyRepository) CreateSystem(ctx context.Context, name, description string) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO numerology (name, description) VALUES ($1, $2) RETURNING id
	`, name, description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create numerology system: %w", err)
	}
	return id, nil
}

// UpdateSystem replaces the name and description of a system.
func (r *PostgresNumerologyRepository) UpdateSystem(ctx context.Context, id int64, name, description string) error {
	_, err := r.DB.ExecContext(
		ctx,
		`UPDATE numerology SET name = $1, description = $2 WHERE id = $3`,
		name, description, id,
	)
	return err
}

// DeleteSystem removes a system by id.
func (r *PostgresNumerologyRepository) DeleteSystem(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM numerology WHERE id = $1`, id)
	return err
}

// InsertReading persists a numerology reading. A fresh UUID is generated
// and written back into reading.ID. reading.PhoneNumber may be nil when
// the calculation is anonymous or the phone is not a registered account.
func (r *PostgresNumerologyRepository) InsertReading(ctx context.Context, reading *models.NumerologyReading) error {
	reading.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO usernumerologyresults
		(resultid, phonenumber, lifepath_number, destiny_number, soulurge_number, personality_number,
		 naturalability_number, maturity_number, attitude_number,
		 challenge_number_1, challenge_number_2, challenge_number_3, challenge_number_4)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, reading.ID, reading.PhoneNumber, reading.LifePathNumber, reading.DestinyNumber,
		reading.SoulUrgeNumber, reading.PersonalityNumber, reading.NaturalAbilityNum,
		reading.MaturityNumber, reading.AttitudeNumber,
		reading.ChallengeNumber1, reading.ChallengeNumber2, reading.ChallengeNumber3, reading.ChallengeNumber4)
	if err != nil {
		return fmt.Errorf("insert numerology reading: %w", err)
	}
	return nil
}

// Readings returns all numerology readings, newest first.
func (r *PostgresNumerologyRepository) Readings(ctx context.Context) ([]models.NumerologyReading, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+numerologyReadingColumns+` FROM usernumerologyresults ORDER BY date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list numerology readings: %w", err)
	}
	defer rows.Close()
	return scanNumerologyReadings(rows)
}

// ReadingsByPhone returns a page of numerology readings recorded for a
// phone number, newest first.
func (r *PostgresNumerologyRepository) ReadingsByPhone(ctx context.Context, phone string, limit, offset int) ([]models.NumerologyReading, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+numerologyReadingColumns+` FROM usernumerologyresults
		WHERE phonenumber = $1 ORDER BY date DESC LIMIT $2 OFFSET $3
	`, phone, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list numerology readings by phone: %w", err)
	}
	defer rows.Close()
	return scanNumerologyReadings(rows)
}

// ReadingByID fetches a single numerology reading.
// Returns sql.ErrNoRows when no reading matches.
func (r *PostgresNumerologyRepository) ReadingByID(ctx context.Context, id string) (*models.NumerologyReading, error) {
	var reading models.NumerologyReading
	err := r.DB.QueryRowContext(ctx, `
		SELECT `+numerologyReadingColumns+` FROM usernumerologyresults WHERE resultid = $1
	`, id).Scan(
		&reading.ID, &reading.PhoneNumber, &reading.LifePathNumber, &reading.DestinyNumber,
		&reading.SoulUrgeNumber, &reading.PersonalityNumber, &reading.NaturalAbilityNum,
		&reading.MaturityNumber, &reading.AttitudeNumber,
		&reading.ChallengeNumber1, &reading.ChallengeNumber2, &reading.ChallengeNumber3,
		&reading.ChallengeNumber4, &reading.Date,
	)
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

// DeleteReading removes a numerology reading by id. Returns the number of
// rows deleted.
func (r *PostgresNumerologyRepository) DeleteReading(ctx context.Context, id string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM usernumerologyresults WHERE resultid = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// scanNumerologyReadings drains a result set of full reading rows.
func scanNumerologyReadings(rows *sql.Rows) ([]models.NumerologyReading, error) {
	var readings []models.NumerologyReading
	for rows.Next() {
		var reading models.NumerologyReading
		if err := rows.Scan(
			&reading.ID, &reading.PhoneNumber, &reading.LifePathNumber, &reading.DestinyNumber,
			&reading.SoulUrgeNumber, &reading.PersonalityNumber, &reading.NaturalAbilityNum,
			&reading.MaturityNumber, &reading.AttitudeNumber,
			&reading.ChallengeNumber1, &reading.ChallengeNumber2, &reading.ChallengeNumber3,
			&reading.ChallengeNumber4, &reading.Date,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}
