// Package repository provides persistence implementations for the account,
// reading, and meaning stores using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/tdnguyen/astroserve/internal/models"
)

// ErrDuplicatePhone reports a uniqueness violation on the account phone
// column. The UNIQUE constraint is the real guarantee; application-level
// existence checks are only there for friendly error messages.
var ErrDuplicatePhone = fmt.Errorf("duplicate phone")

// PostgresAccountRepository implements account persistence against a
// PostgreSQL database.
type PostgresAccountRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository with
// the given database connection.
func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{DB: db}
}

// Exists checks whether an account with the specified phone exists.
//
//	ctx:   context for cancellation and deadlines
//	phone: phone number to look up
//
// Returns true if the account exists, false otherwise.
func (r *PostgresAccountRepository) Exists(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM account WHERE phone = $1)`,
		phone,
	).Scan(&exists)
	return exists, err
}

// Create inserts a new account. The insert is conditional on the phone
// uniqueness constraint: a concurrent signup with the same phone makes
// exactly one of the inserts win. Returns ErrDuplicatePhone when the row
// was not inserted. On success the generated id is written back into a.
func (r *PostgresAccountRepository) Create(ctx context.Context, a *models.Account) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO account (phone, fullname, email, password, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (phone) DO NOTHING
		RETURNING idaccount
	`, a.Phone, a.Fullname, a.Email, a.PasswordHash, a.Role).Scan(&a.ID)
	if err == sql.ErrNoRows {
		return ErrDuplicatePhone
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// GetByPhone fetches a single account by phone number.
// Returns sql.ErrNoRows when no account matches.
func (r *PostgresAccountRepository) GetByPhone(ctx context.Context, phone string) (*models.Account, error) {
	var a models.Account
	err := r.DB.QueryRowContext(ctx, `
		SELECT idaccount, phone, fullname, email, password, role FROM account WHERE phone = $1
	`, phone).Scan(&a.ID, &a.Phone, &a.Fullname, &a.Email, &a.PasswordHash, &a.Role)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID fetches a single account by identifier.
// Returns sql.ErrNoRows when no account matches.
func (r *PostgresAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	var a models.Account
	err := r.DB.QueryRowContext(ctx, `
		SELECT idaccount, phone, fullname, email, password, role FROM account WHERE idaccount = $1
	`, id).Scan(&a.ID, &a.Phone, &a.Fullname, &a.Email, &a.PasswordHash, &a.Role)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns all accounts ordered by identifier. Password hashes are
// included in the model but never serialized by the transport layer.
func (r *PostgresAccountRepository) List(ctx context.Context) ([]models.Account, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT idaccount, phone, fullname, email, role FROM account ORDER BY idaccount
	`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Phone, &a.Fullname, &a.Email, &a.Role); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdatePasswordByID replaces the stored password hash for the account id.
func (r *PostgresAccountRepository) UpdatePasswordByID(ctx context.Context, id int64, hash string) error {
	_, err := r.DB.ExecContext(
		ctx,
		`UPDATE account SET password = $1 WHERE idaccount = $2`,
		hash, id,
	)
	return err
}

// UpdatePasswordByPhone replaces the stored password hash for the account
// with the given phone. Returns the number of rows updated, so callers can
// distinguish a missing account from a successful reset.
func (r *PostgresAccountRepository) UpdatePasswordByPhone(ctx context.Context, phone, hash string) (int64, error) {
	res, err := r.DB.ExecContext(
		ctx,
		`UPDATE account SET password = $1 WHERE phone = $2`,
		hash, phone,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Update replaces the profile fields of an account. Returns the number of
// rows updated (0 when the account does not exist). A phone collision with
// another account surfaces as ErrDuplicatePhone.
func (r *PostgresAccountRepository) Update(ctx context.Context, a *models.Account) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE account SET phone = $1, fullname = $2, email = $3, role = $4 WHERE idaccount = $5
	`, a.Phone, a.Fullname, a.Email, a.Role, a.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return 0, ErrDuplicatePhone
		}
		return 0, fmt.Errorf("update account: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes an account by identifier. Returns the number of rows
// deleted.
func (r *PostgresAccountRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM account WHERE idaccount = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
