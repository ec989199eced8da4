package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tdnguyen/astroserve/internal/models"
	"github.com/tdnguyen/astroserve/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost balances hashing speed against brute-force resistance.
const bcryptCost = 10

// minPasswordLen applies to password changes and resets.
const minPasswordLen = 8

// AccountRepository defines the persistence operations required by the
// authentication service.
type AccountRepository interface {
	// Exists returns true if an account with the given phone exists.
	Exists(ctx context.Context, phone string) (bool, error)
	// Create inserts a new account; repository.ErrDuplicatePhone reports
	// a phone collision.
	Create(ctx context.Context, a *models.Account) error
	// GetByPhone fetches an account by phone; sql.ErrNoRows when absent.
	GetByPhone(ctx context.Context, phone string) (*models.Account, error)
	// GetByID fetches an account by id; sql.ErrNoRows when absent.
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	// UpdatePasswordByID replaces the stored hash for the account id.
	UpdatePasswordByID(ctx context.Context, id int64, hash string) error
	// UpdatePasswordByPhone replaces the stored hash for the phone and
	// returns the number of rows updated.
	UpdatePasswordByPhone(ctx context.Context, phone, hash string) (int64, error)
}

// TokenIssuer signs session tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(accountID int64, phone, role string) (string, error)
}

// AuthService implements signup, login, and password management.
type AuthService struct {
	repo      AccountRepository
	tokens    TokenIssuer
	resetCode string
	log       *zap.Logger
}

// NewAuthService constructs an AuthService. resetCode is the out-of-band
// verification code accepted by ResetPassword.
func NewAuthService(repo AccountRepository, tokens TokenIssuer, resetCode string, log *zap.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, resetCode: resetCode, log: log}
}

// SignupRequest carries the signup input fields.
type SignupRequest struct {
	Phone           string `json:"phone"`
	Fullname        string `json:"fullname"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Signup validates the request, hashes the password, and stores the
// account. The flow is strictly sequential: existence check, hash, insert.
// The existence check only produces the friendly conflict message; the
// atomic conditional insert is what actually guards against a concurrent
// signup with the same phone.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) error {
	if req.Phone == "" || req.Fullname == "" || req.Password == "" || req.ConfirmPassword == "" {
		return validationError("Phone, fullname, password, and confirm password are required.")
	}
	if req.Password != req.ConfirmPassword {
		return validationError("Passwords do not match.")
	}

	exists, err := s.repo.Exists(ctx, req.Phone)
	if err != nil {
		return fmt.Errorf("check phone: %w", err)
	}
	if exists {
		return conflictError("A user with this phone already exists.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		Phone:        req.Phone,
		Fullname:     req.Fullname,
		PasswordHash: string(hash),
		Role:         "user",
	}
	if req.Email != "" {
		account.Email = &req.Email
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			return conflictError("A user with this phone already exists.")
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// Login verifies the credentials and issues a session token. Unknown phone
// and wrong password return the identical error, so callers cannot probe
// for account existence.
func (s *AuthService) Login(ctx context.Context, phone, password string) (token, role string, err error) {
	if phone == "" || password == "" {
		return "", "", validationError("Phone and password are required.")
	}

	account, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", authError("Invalid credentials")
		}
		return "", "", fmt.Errorf("lookup account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", "", authError("Invalid credentials")
	}

	token, err = s.tokens.Issue(account.ID, account.Phone, account.Role)
	if err != nil {
		return "", "", fmt.Errorf("issue token: %w", err)
	}
	return token, account.Role, nil
}

// Profile fetches the account behind an authenticated principal.
func (s *AuthService) Profile(ctx context.Context, accountID int64) (*models.Account, error) {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundError("User not found.")
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	return account, nil
}

// ChangePassword verifies the current password and replaces the stored
// hash with a hash of the new one.
func (s *AuthService) ChangePassword(ctx context.Context, accountID int64, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return validationError("Current password and new password are required.")
	}
	if len(newPassword) < minPasswordLen {
		return validationError("New password must be at least 8 characters.")
	}

	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFoundError("User not found.")
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)); err != nil {
		return authError("Current password is incorrect.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordByID(ctx, accountID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// ResetPassword replaces the stored hash after the out-of-band verification
// code matches. The static code is a stand-in for a real OTP flow.
func (s *AuthService) ResetPassword(ctx context.Context, phone, code, newPassword string) error {
	if phone == "" || code == "" || newPassword == "" {
		return validationError("All fields are required.")
	}
	if len(newPassword) < minPasswordLen {
		return validationError("New password must be at least 8 characters.")
	}
	if code != s.resetCode {
		return authError("Invalid verification code.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	affected, err := s.repo.UpdatePasswordByPhone(ctx, phone, string(hash))
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if affected == 0 {
		return notFoundError("User not found.")
	}
	return nil
}
