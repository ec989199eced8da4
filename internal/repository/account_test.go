package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/tdnguyen/astroserve/internal/models"
)

func setupAccountMock(t *testing.T) (*PostgresAccountRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresAccountRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestAccountExists_True(t *testing.T) {
	repo, mock, cleanup := setupAccountMock(t)
	defer cleanup()

	phone := "0900000000"
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM account WHERE phone = $1)`)).
		WithArgs(phone).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), phone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Errorf("expected account to exist, got false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAccountCreate_Success(t *testing.T) {
	repo, mock, cleanup := setupAccountMock(t)
	defer cleanup()

	a := &models.Account{Phone: "0900000000", Fullname: "Alice", PasswordHash: "hash", Role: "user"}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO account (phone, fullname, email, password, role)`)).
		WithArgs(a.Phone, a.Fullname, nil, a.PasswordHash, a.Role).
		WillReturnRows(sqlmock.NewRows([]string{"idaccount"}).AddRow(7))

	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID != 7 {
		t.Errorf("expected generated id 7, got %d", a.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAccountCreate_DuplicatePhone(t *testing.T) {
	repo, mock, cleanup := setupAccountMock(t)
	defer cleanup()

	// ON CONFLICT DO NOTHING returns no rows when the phone is taken.
	a := &models.Account{Phone: "0900000000", Fullname: "Alice", PasswordHash: "hash", Role: "user"}
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO account (phone, fullname, email, password, role)`)).
		WithArgs(a.Phone, a.Fullname, nil, a.PasswordHash, a.Role).
		WillReturnRows(sqlmock.NewRows([]string{"idaccount"}))

	err := repo.Create(context.Background(), a)
	if !errors.Is(err, ErrDuplicatePhone) {
		t.Fatalf("expected ErrDuplicatePhone, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAccountGetByPhone_Success(t *testing.T) {
	repo, mock, cleanup := setupAccountMock(t)
	defer cleanup()

	phone := "0900000000"
	rows := sqlmock.NewRows([]string{"idaccount", "phone", "fullname", "email", "password", "role"}).
		AddRow(3, phone, "Alice", nil, "hash", "user")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT idaccount, phone, fullname, email, password, role FROM account WHERE phone = $1`)).
		WithArgs(phone).
		WillReturnRows(rows)

	a, err := repo.GetByPhone(context.Background(), phone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID != 3 || a.Phone != phone || a.Fullname != "Alice" {
		t.Errorf("unexpected account: %+v", a)
	}
	if a.Email != nil {
		t.Errorf("expected nil email, got %v", *a.Email)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAccountUpdatePasswordByPhone_Missing(t *testing.T) {
	repo, mock, cleanup := setupAccountMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE account SET password = $1 WHERE phone = $2`)).
		WithArgs("newhash", "0911111111").
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.UpdatePasswordByPhone(context.Background(), "0911111111", "newhash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if affected != 0 {
		t.Errorf("expected 0 rows affected, got %d", affected)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestAccountDelete(t *testing.T) {
	repo, mock, cleanup := setupAccountMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM account WHERE idaccount = $1`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Delete(context.Background(), 5)
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
