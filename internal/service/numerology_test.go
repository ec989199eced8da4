package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/tdnguyen/astroserve/internal/models"
	"github.com/tdnguyen/astroserve/internal/repository"
	"go.uber.org/zap"
)

type mockNumerologyRepo struct {
	SystemsFunc         func(ctx context.Context) ([]models.System, error)
	CreateSystemFunc    func(ctx context.Context, name, description string) (int64, error)
	UpdateSystemFunc    func(ctx context.Context, id int64, name, description string) error
	DeleteSystemFunc    func(ctx context.Context, id int64) error
	InsertReadingFunc   func(ctx context.Context, reading *models.NumerologyReading) error
	ReadingsFunc        func(ctx context.Context) ([]models.NumerologyReading, error)
	ReadingsByPhoneFunc func(ctx context.Context, phone string, limit, offset int) ([]models.NumerologyReading, error)
	ReadingByIDFunc     func(ctx context.Context, id string) (*models.NumerologyReading, error)
	DeleteReadingFunc   func(ctx context.Context, id string) (int64, error)
}

func (m *mockNumerologyRepo) Systems(ctx context.Context) ([]models.System, error) {
	return m.SystemsFunc(ctx)
}
func (m *mockNumerologyRepo) CreateSystem(ctx context.Context, name, description string) (int64, error) {
	return m.CreateSystemFunc(ctx, name, description)
}
func (m *mockNumerologyRepo) UpdateSystem(ctx context.Context, id int64, name, description string) error {
	return m.UpdateSystemFunc(ctx, id, name, description)
}
func (m *mockNumerologyRepo) DeleteSystem(ctx context.Context, id int64) error {
	return m.DeleteSystemFunc(ctx, id)
}
func (m *mockNumerologyRepo) InsertReading(ctx context.Context, reading *models.NumerologyReading) error {
	return m.InsertReadingFunc(ctx, reading)
}
func (m *mockNumerologyRepo) Readings(ctx context.Context) ([]models.NumerologyReading, error) {
	return m.ReadingsFunc(ctx)
}
func (m *mockNumerologyRepo) ReadingsByPhone(ctx context.Context, phone string, limit, offset int) ([]models.NumerologyReading, error) {
	return m.ReadingsByPhoneFunc(ctx, phone, limit, offset)
}
func (m *mockNumerologyRepo) ReadingByID(ctx context.Context, id string) (*models.NumerologyReading, error) {
	return m.ReadingByIDFunc(ctx, id)
}
func (m *mockNumerologyRepo) DeleteReading(ctx context.Context, id string) (int64, error) {
	return m.DeleteReadingFunc(ctx, id)
}

type mockNumberMeanings struct {
	NumberMeaningFunc       func(ctx context.Context, system string, number int) (models.Meaning, error)
	UpsertNumberMeaningFunc func(ctx context.Context, system string, number int, description string) error
	DeleteNumberMeaningFunc func(ctx context.Context, system string, number int) (int64, error)
}

func (m *mockNumberMeanings) NumberMeaning(ctx context.Context, system string, number int) (models.Meaning, error) {
	return m.NumberMeaningFunc(ctx, system, number)
}
func (m *mockNumberMeanings) UpsertNumberMeaning(ctx context.Context, system string, number int, description string) error {
	return m.UpsertNumberMeaningFunc(ctx, system, number, description)
}
func (m *mockNumberMeanings) DeleteNumberMeaning(ctx context.Context, system string, number int) (int64, error) {
	return m.DeleteNumberMeaningFunc(ctx, system, number)
}

type mockAccountChecker struct {
	ExistsFunc func(ctx context.Context, phone string) (bool, error)
}

func (m *mockAccountChecker) Exists(ctx context.Context, phone string) (bool, error) {
	return m.ExistsFunc(ctx, phone)
}

func calcRequest() CalculateRequest {
	return CalculateRequest{
		FullName:    "Nguyen Van A",
		Date:        "1990-05-17",
		PhoneNumber: "0900000000",
		Numbers: &CalculateNumbers{
			LifePathNumber:       5,
			DestinyNumber:        3,
			SoulUrgeNumber:       7,
			PersonalityNumber:    2,
			NaturalAbilityNumber: 4,
			MaturityNumber:       8,
			AttitudeNumber:       6,
			Challenge1:           1,
			Challenge2:           2,
			Challenge3:           3,
			Challenge4:           4,
		},
	}
}

func newNumerologyService(repo *mockNumerologyRepo, meanings *mockNumberMeanings, accounts *mockAccountChecker) *NumerologyService {
	return NewNumerologyService(repo, meanings, accounts, zap.NewNop())
}

func TestCalculate_MissingFields(t *testing.T) {
	svc := newNumerologyService(&mockNumerologyRepo{}, &mockNumberMeanings{}, &mockAccountChecker{})

	_, err := svc.Calculate(context.Background(), CalculateRequest{FullName: "A", Date: "1990-05-17"})
	if kindOf(t, err) != KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCalculate_EnrichesAllCategories(t *testing.T) {
	var mu sync.Mutex
	seen := map[string][]int{}
	meanings := &mockNumberMeanings{
		NumberMeaningFunc: func(ctx context.Context, system string, number int) (models.Meaning, error) {
			mu.Lock()
			seen[system] = append(seen[system], number)
			mu.Unlock()
			return models.Meaning{
				Title:       system + "-title-" + strconv.Itoa(number),
				Description: system + "-desc-" + strconv.Itoa(number),
			}, nil
		},
	}
	repo := &mockNumerologyRepo{
		InsertReadingFunc: func(ctx context.Context, reading *models.NumerologyReading) error {
			reading.ID = "saved-uuid"
			return nil
		},
	}
	accounts := &mockAccountChecker{
		ExistsFunc: func(ctx context.Context, phone string) (bool, error) { return true, nil },
	}
	svc := newNumerologyService(repo, meanings, accounts)

	result, err := svc.Calculate(context.Background(), calcRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.LifePathTitle != "lifepath_number-title-5" {
		t.Errorf("life path title %q", result.LifePathTitle)
	}
	if result.MaturityDescription != "maturity_number-desc-8" {
		t.Errorf("maturity description %q", result.MaturityDescription)
	}
	if result.Challenges.Challenge3Title != "challenge_number-title-3" {
		t.Errorf("challenge3 title %q", result.Challenges.Challenge3Title)
	}
	if result.SavedResultID != "saved-uuid" {
		t.Errorf("saved result id %q", result.SavedResultID)
	}
	if result.SaveWarning != "" {
		t.Errorf("unexpected save warning %q", result.SaveWarning)
	}
	if got := len(seen["challenge_number"]); got != 4 {
		t.Errorf("expected 4 challenge lookups, got %d", got)
	}
}

func TestCalculate_LookupFailureDegradesToEmpty(t *testing.T) {
	meanings := &mockNumberMeanings{
		NumberMeaningFunc: func(ctx context.Context, system string, number int) (models.Meaning, error) {
			if system == "destiny_number" {
				return models.Meaning{}, errors.New("timeout")
			}
			return models.Meaning{Title: "t", Description: "d"}, nil
		},
	}
	repo := &mockNumerologyRepo{
		InsertReadingFunc: func(ctx context.Context, reading *models.NumerologyReading) error { return nil },
	}
	accounts := &mockAccountChecker{
		ExistsFunc: func(ctx context.Context, phone string) (bool, error) { return false, nil },
	}
	svc := newNumerologyService(repo, meanings, accounts)

	result, err := svc.Calculate(context.Background(), calcRequest())
	if err != nil {
		t.Fatalf("a degraded lookup must not fail the call: %v", err)
	}
	if result.DestinyTitle != "" || result.DestinyDescription != "" {
		t.Errorf("failed category must be empty, got %q / %q", result.DestinyTitle, result.DestinyDescription)
	}
	if result.LifePathTitle != "t" {
		t.Errorf("healthy category lost: %q", result.LifePathTitle)
	}
}

func TestCalculate_SaveFailureBecomesWarning(t *testing.T) {
	meanings := &mockNumberMeanings{
		NumberMeaningFunc: func(ctx context.Context, system string, number int) (models.Meaning, error) {
			return models.Meaning{}, sql.ErrNoRows
		},
	}
	repo := &mockNumerologyRepo{
		InsertReadingFunc: func(ctx context.Context, reading *models.NumerologyReading) error {
			return errors.New("disk full")
		},
	}
	accounts := &mockAccountChecker{
		ExistsFunc: func(ctx context.Context, phone string) (bool, error) { return false, nil },
	}
	svc := newNumerologyService(repo, meanings, accounts)

	result, err := svc.Calculate(context.Background(), calcRequest())
	if err != nil {
		t.Fatalf("a failed save must not fail the call: %v", err)
	}
	if result.SaveWarning == "" {
		t.Error("expected a save warning")
	}
	if result.SavedResultID != "" {
		t.Errorf("unexpected saved result id %q", result.SavedResultID)
	}
}

func TestCalculate_PhoneLinkedOnlyWhenRegistered(t *testing.T) {
	tests := []struct {
		name     string
		exists   bool
		checkErr error
		wantLink bool
	}{
		{name: "registered phone links", exists: true, wantLink: true},
		{name: "unregistered phone saved without link", exists: false, wantLink: false},
		{name: "check failure saved without link", checkErr: errors.New("down"), wantLink: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var saved *models.NumerologyReading
			repo := &mockNumerologyRepo{
				InsertReadingFunc: func(ctx context.Context, reading *models.NumerologyReading) error {
					saved = reading
					return nil
				},
			}
			meanings := &mockNumberMeanings{
				NumberMeaningFunc: func(ctx context.Context, system string, number int) (models.Meaning, error) {
					return models.Meaning{}, sql.ErrNoRows
				},
			}
			accounts := &mockAccountChecker{
				ExistsFunc: func(ctx context.Context, phone string) (bool, error) {
					return tt.exists, tt.checkErr
				},
			}
			svc := newNumerologyService(repo, meanings, accounts)

			if _, err := svc.Calculate(context.Background(), calcRequest()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if saved == nil {
				t.Fatal("reading was not saved")
			}
			if tt.wantLink {
				if saved.PhoneNumber == nil || *saved.PhoneNumber != "0900000000" {
					t.Errorf("expected linked phone, got %v", saved.PhoneNumber)
				}
			} else if saved.PhoneNumber != nil {
				t.Errorf("expected nil phone, got %q", *saved.PhoneNumber)
			}
		})
	}
}

func TestNumerologyMeanings_FanOutOrderAndDegradation(t *testing.T) {
	repo := &mockNumerologyRepo{
		SystemsFunc: func(ctx context.Context) ([]models.System, error) {
			return []models.System{
				{ID: 1, Name: "pythagorean"},
				{ID: 2, Name: "chaldean"},
				{ID: 3, Name: "kabbalah"},
			}, nil
		},
	}
	meanings := &mockNumberMeanings{
		NumberMeaningFunc: func(ctx context.Context, system string, number int) (models.Meaning, error) {
			if system == "chaldean" {
				return models.Meaning{}, sql.ErrNoRows
			}
			return models.Meaning{Description: system + " says " + strconv.Itoa(number)}, nil
		},
	}
	svc := newNumerologyService(repo, meanings, &mockAccountChecker{})

	got, err := svc.Meanings(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"pythagorean says 7", "", "kabbalah says 7"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: want %q, got %q", i, want[i], got[i])
		}
	}
}

func TestDeleteMeaning(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		err      error
		wantKind Kind
	}{
		{name: "unknown table", err: repository.ErrUnknownSystem, wantKind: KindValidation},
		{name: "missing row", affected: 0, wantKind: KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meanings := &mockNumberMeanings{
				DeleteNumberMeaningFunc: func(ctx context.Context, system string, number int) (int64, error) {
					return tt.affected, tt.err
				},
			}
			svc := newNumerologyService(&mockNumerologyRepo{}, meanings, &mockAccountChecker{})

			err := svc.DeleteMeaning(context.Background(), "lifepath_number", 5)
			if kindOf(t, err) != tt.wantKind {
				t.Errorf("want kind %v, got %v", tt.wantKind, err)
			}
		})
	}
}

func TestResult_NotFound(t *testing.T) {
	repo := &mockNumerologyRepo{
		ReadingByIDFunc: func(ctx context.Context, id string) (*models.NumerologyReading, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := newNumerologyService(repo, &mockNumberMeanings{}, &mockAccountChecker{})

	_, err := svc.Result(context.Background(), "missing")
	if kindOf(t, err) != KindNotFound {
		t.Errorf("expected not-found error, got %v", err)
	}
}
