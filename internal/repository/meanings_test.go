package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupMeaningMock(t *testing.T) (*PostgresMeaningRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresMeaningRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestZodiacMeaning_Found(t *testing.T) {
	repo, mock, cleanup := setupMeaningMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT description FROM sun WHERE zodiacsign = $1 LIMIT 1`)).
		WithArgs("aries").
		WillReturnRows(sqlmock.NewRows([]string{"description"}).AddRow("bold and direct"))

	desc, err := repo.ZodiacMeaning(context.Background(), "sun", "aries")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc != "bold and direct" {
		t.Errorf("unexpected description %q", desc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestZodiacMeaning_UnknownSystem(t *testing.T) {
	repo, _, cleanup := setupMeaningMock(t)
	defer cleanup()

	// Allow-list rejection happens before any SQL is built.
	_, err := repo.ZodiacMeaning(context.Background(), "account; DROP TABLE account", "aries")
	if !errors.Is(err, ErrUnknownSystem) {
		t.Fatalf("expected ErrUnknownSystem, got %v", err)
	}
}

func TestZodiacMeaning_Missing(t *testing.T) {
	repo, mock, cleanup := setupMeaningMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT description FROM moon WHERE zodiacsign = $1 LIMIT 1`)).
		WithArgs("taurus").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ZodiacMeaning(context.Background(), "moon", "taurus")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUpsertZodiacMeaning(t *testing.T) {
	repo, mock, cleanup := setupMeaningMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO venus (zodiacsign, description) VALUES ($1, $2)`)).
		WithArgs("libra", "graceful").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpsertZodiacMeaning(context.Background(), "venus", "libra", "graceful"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestNumberMeaning_Found(t *testing.T) {
	repo, mock, cleanup := setupMeaningMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT title, description FROM lifepath_number WHERE number = $1 LIMIT 1`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"title", "description"}).AddRow("The Seeker", "analytical"))

	m, err := repo.NumberMeaning(context.Background(), "lifepath_number", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Title != "The Seeker" || m.Description != "analytical" {
		t.Errorf("unexpected meaning: %+v", m)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDeleteNumberMeaning_UnknownTable(t *testing.T) {
	repo, _, cleanup := setupMeaningMock(t)
	defer cleanup()

	_, err := repo.DeleteNumberMeaning(context.Background(), "sun", 3)
	if !errors.Is(err, ErrUnknownSystem) {
		t.Fatalf("expected ErrUnknownSystem, got %v", err)
	}
}

func TestDeleteNumberMeaning_Success(t *testing.T) {
	repo, mock, cleanup := setupMeaningMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM challenge_number WHERE number = $1`)).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.DeleteNumberMeaning(context.Background(), "challenge_number", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if affected != 1 {
		t.Errorf("expected 1 row affected, got %d", affected)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
