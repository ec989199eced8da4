package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/tdnguyen/astroserve/internal/models"
	"github.com/tdnguyen/astroserve/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines the account persistence operations required by the
// user management service.
type UserRepository interface {
	List(ctx context.Context) ([]models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByPhone(ctx context.Context, phone string) (*models.Account, error)
	Create(ctx context.Context, a *models.Account) error
	Update(ctx context.Context, a *models.Account) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// StatsRepository serves the aggregate counts behind dashboard statistics.
type StatsRepository interface {
	CountAccounts(ctx context.Context) (int64, error)
	CountAstrologyReadings(ctx context.Context) (int64, error)
	CountNumerologyReadings(ctx context.Context) (int64, error)
	CountRecentReadings(ctx context.Context) (int64, error)
}

// UsersService implements the user management and statistics surface of
// the dashboard.
type UsersService struct {
	repo  UserRepository
	stats StatsRepository
	log   *zap.Logger
}

// NewUsersService constructs a UsersService.
func NewUsersService(repo UserRepository, stats StatsRepository, log *zap.Logger) *UsersService {
	return &UsersService{repo: repo, stats: stats, log: log}
}

// List returns all accounts.
func (s *UsersService) List(ctx context.Context) ([]models.Account, error) {
	return s.repo.List(ctx)
}

// Get fetches a single account by id.
func (s *UsersService) Get(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundError("User not found")
		}
		return nil, err
	}
	return account, nil
}

// GetByPhone fetches a single account by phone number.
func (s *UsersService) GetByPhone(ctx context.Context, phone string) (*models.Account, error) {
	account, err := s.repo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundError("User not found")
		}
		return nil, err
	}
	return account, nil
}

// CreateRequest carries the admin account-creation input.
type CreateRequest struct {
	Phone    string `json:"phone"`
	Fullname string `json:"fullname"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Create inserts an account on behalf of an administrator. The password is
// hashed the same way signup hashes it; plaintext never reaches the store.
func (s *UsersService) Create(ctx context.Context, req CreateRequest) (int64, error) {
	if req.Phone == "" || req.Fullname == "" || req.Password == "" {
		return 0, validationError("Phone, fullname, and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		Phone:        req.Phone,
		Fullname:     req.Fullname,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if account.Role == "" {
		account.Role = "user"
	}
	if req.Email != "" {
		account.Email = &req.Email
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			return 0, conflictError("Phone number already exists")
		}
		return 0, err
	}
	return account.ID, nil
}

// UpdateRequest carries the admin account-update input.
type UpdateRequest struct {
	Phone    string `json:"phone"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Update replaces the profile fields of an account.
func (s *UsersService) Update(ctx context.Context, id int64, req UpdateRequest) error {
	account := &models.Account{
		ID:       id,
		Phone:    req.Phone,
		Fullname: req.Fullname,
		Role:     req.Role,
	}
	if account.Role == "" {
		account.Role = "user"
	}
	if req.Email != "" {
		account.Email = &req.Email
	}

	affected, err := s.repo.Update(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			return conflictError("Phone number already exists")
		}
		return err
	}
	if affected == 0 {
		return notFoundError("User not found")
	}
	return nil
}

// Delete removes an account by id.
func (s *UsersService) Delete(ctx context.Context, id int64) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFoundError("User not found")
	}
	return nil
}

// Statistics gathers the dashboard counters. The four aggregate queries
// run concurrently and the whole batch fails if any one of them fails.
func (s *UsersService) Statistics(ctx context.Context) (*models.Statistics, error) {
	var (
		stats models.Statistics
		errs  [4]error
		wg    sync.WaitGroup
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		stats.TotalUsers, errs[0] = s.stats.CountAccounts(ctx)
	}()
	go func() {
		defer wg.Done()
		stats.TotalAstrologyReadings, errs[1] = s.stats.CountAstrologyReadings(ctx)
	}()
	go func() {
		defer wg.Done()
		stats.TotalNumerologyReadings, errs[2] = s.stats.CountNumerologyReadings(ctx)
	}()
	go func() {
		defer wg.Done()
		stats.RecentReadings, errs[3] = s.stats.CountRecentReadings(ctx)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("statistics: %w", err)
		}
	}

	stats.TotalReadings = stats.TotalAstrologyReadings + stats.TotalNumerologyReadings
	return &stats, nil
}
