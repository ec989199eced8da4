package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tdnguyen/astroserve/internal/models"
)

// ErrUnknownSystem is returned when a system or table name is not part of
// the closed allow-list. Category names are only ever mapped through these
// tables; user input is never interpolated into SQL text.
var ErrUnknownSystem = errors.New("unknown system")

// zodiacTables is the closed set of per-planet meaning tables keyed by
// system name (lower-cased).
var zodiacTables = map[string]string{
	"sun":       "sun",
	"moon":      "moon",
	"mercury":   "mercury",
	"venus":     "venus",
	"mars":      "mars",
	"jupiter":   "jupiter",
	"saturn":    "saturn",
	"neptune":   "neptune",
	"pluto":     "pluto",
	"chiron":    "chiron",
	"ascendant": "ascendant",
}

// numberTables is the closed set of per-category numerology meaning tables.
var numberTables = map[string]string{
	"lifepath_number":       "lifepath_number",
	"destiny_number":        "destiny_number",
	"soulurge_number":       "soulurge_number",
	"personality_number":    "personality_number",
	"naturalability_number": "naturalability_number",
	"maturity_number":       "maturity_number",
	"attitude_number":       "attitude_number",
	"challenge_number":      "challenge_number",
}

// PostgresMeaningRepository reads and upserts meaning entries in the
// category-specific tables.
type PostgresMeaningRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresMeaningRepository creates a new PostgresMeaningRepository with
// the given database connection.
func NewPostgresMeaningRepository(db *sql.DB) *PostgresMeaningRepository {
	return &PostgresMeaningRepository{DB: db}
}

// ZodiacMeaning fetches the description for a zodiac sign from the meaning
// table of the named astrology system.
//
//	system: astrology system name, validated against the allow-list
//	sign:   zodiac sign key
//
// Returns ErrUnknownSystem for names outside the allow-list and
// sql.ErrNoRows when no entry exists for the sign.
func (r *PostgresMeaningRepository) ZodiacMeaning(ctx context.Context, system, sign string) (string, error) {
	table, ok := zodiacTables[system]
	if !ok {
		return "", ErrUnknownSystem
	}

	var description string
	query := fmt.Sprintf(`SELECT description FROM %s WHERE zodiacsign = $1 LIMIT 1`, table)
	err := r.DB.QueryRowContext(ctx, query, sign).Scan(&description)
	if err != nil {
		return "", err
	}
	return description, nil
}

// UpsertZodiacMeaning inserts or replaces the description for a zodiac sign
// in the meaning table of the named astrology system.
func (r *PostgresMeaningRepository) UpsertZodiacMeaning(ctx context.Context, system, sign, description string) error {
	table, ok := zodiacTables[system]
	if !ok {
		return ErrUnknownSystem
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (zodiacsign, description) VALUES ($1, $2)
		ON CONFLICT (zodiacsign) DO UPDATE SET description = EXCLUDED.description
	`, table)
	if _, err := r.DB.ExecContext(ctx, query, sign, description); err != nil {
		return fmt.Errorf("upsert %s meaning: %w", system, err)
	}
	return nil
}

// NumberMeaning fetches the title and description for a numeric value from
// the meaning table of the named numerology system.
//
// Returns ErrUnknownSystem for names outside the allow-list and
// sql.ErrNoRows when no entry exists for the number.
func (r *PostgresMeaningRepository) NumberMeaning(ctx context.Context, system string, number int) (models.Meaning, error) {
	table, ok := numberTables[system]
	if !ok {
		return models.Meaning{}, ErrUnknownSystem
	}

	var m models.Meaning
	query := fmt.Sprintf(`SELECT title, description FROM %s WHERE number = $1 LIMIT 1`, table)
	err := r.DB.QueryRowContext(ctx, query, number).Scan(&m.Title, &m.Description)
	if err != nil {
		return models.Meaning{}, err
	}
	return m, nil
}

// UpsertNumberMeaning inserts or replaces the description for a numeric
// value in the meaning table of the named numerology system.
func (r *PostgresMeaningRepository) UpsertNumberMeaning(ctx context.Context, system string, number int, description string) error {
	table, ok := numberTables[system]
	if !ok {
		return ErrUnknownSystem
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (number, description) VALUES ($1, $2)
		ON CONFLICT (number) DO UPDATE SET description = EXCLUDED.description
	`, table)
	if _, err := r.DB.ExecContext(ctx, query, number, description); err != nil {
		return fmt.Errorf("upsert %s meaning: %w", system, err)
	}
	return nil
}

// DeleteNumberMeaning removes the entry for a numeric value from the
// meaning table of the named numerology system. Returns the number of rows
// deleted.
func (r *PostgresMeaningRepository) DeleteNumberMeaning(ctx context.Context, system string, number int) (int64, error) {
	table, ok := numberTables[system]
	if !ok {
		return 0, ErrUnknownSystem
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE number = $1`, table)
	res, err := r.DB.ExecContext(ctx, query, number)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
