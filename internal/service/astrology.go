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
)

// AstrologyRepository defines the persistence operations required by the
// astrology service.
type AstrologyRepository interface {
	Systems(ctx context.Context) ([]models.System, error)
	CreateSystem(ctx context.Context, name, description string) (int64, error)
	UpdateSystem(ctx context.Context, id int64, name, description string) error
	DeleteSystem(ctx context.Context, id int64) error
	InsertReading(ctx context.Context, reading *models.AstrologyReading) error
	Readings(ctx context.Context) ([]models.AstrologyReading, error)
	ReadingsByPhone(ctx context.Context, phone string) ([]models.AstrologyReading, error)
	ReadingByID(ctx context.Context, id string) (*models.AstrologyReading, error)
	DeleteReading(ctx context.Context, id string) (int64, error)
}

// ZodiacMeaningRepository reads and upserts zodiac meaning entries.
type ZodiacMeaningRepository interface {
	ZodiacMeaning(ctx context.Context, system, sign string) (string, error)
	UpsertZodiacMeaning(ctx context.Context, system, sign, description string) error
}

// AstrologyService implements astrology systems, readings, and meaning
// enrichment.
type AstrologyService struct {
	repo     AstrologyRepository
	meanings ZodiacMeaningRepository
	log      *zap.Logger
}

// NewAstrologyService constructs an AstrologyService.
func NewAstrologyService(repo AstrologyRepository, meanings ZodiacMeaningRepository, log *zap.Logger) *AstrologyService {
	return &AstrologyService{repo: repo, meanings: meanings, log: log}
}

// Systems lists all astrology systems ordered by id.
func (s *AstrologyService) Systems(ctx context.Context) ([]models.System, error) {
	return s.repo.Systems(ctx)
}

// AddSystem creates a new astrology system and returns its id.
func (s *AstrologyService) AddSystem(ctx context.Context, name, description string) (int64, error) {
	if name == "" || description == "" {
		return 0, validationError("Name and description are required.")
	}
	return s.repo.CreateSystem(ctx, name, description)
}

// UpdateSystem replaces the metadata of a system. Legacy in-place update
// kept for the management dashboard.
func (s *AstrologyService) UpdateSystem(ctx context.Context, id int64, name, description string) error {
	return s.repo.UpdateSystem(ctx, id, name, description)
}

// DeleteSystem removes a system by id.
func (s *AstrologyService) DeleteSystem(ctx context.Context, id int64) error {
	return s.repo.DeleteSystem(ctx, id)
}

// SaveReading persists an astrology reading snapshot and fills in its
// generated identifier.
func (s *AstrologyService) SaveReading(ctx context.Context, reading *models.AstrologyReading) error {
	if err := s.repo.InsertReading(ctx, reading); err != nil {
		return err
	}
	s.log.Info("astrology reading saved", zap.String("id", reading.ID))
	return nil
}

// Readings lists all astrology readings, newest first.
func (s *AstrologyService) Readings(ctx context.Context) ([]models.AstrologyReading, error) {
	return s.repo.Readings(ctx)
}

// ReadingsByPhone lists the readings recorded for a phone number.
func (s *AstrologyService) ReadingsByPhone(ctx context.Context, phone string) ([]models.AstrologyReading, error) {
	return s.repo.ReadingsByPhone(ctx, phone)
}

// Reading fetches a single reading by identifier.
func (s *AstrologyService) Reading(ctx context.Context, id string) (*models.AstrologyReading, error) {
	reading, err := s.repo.ReadingByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundError("Astrology reading not found")
		}
		return nil, err
	}
	return reading, nil
}

// DeleteReading removes a reading by identifier.
func (s *AstrologyService) DeleteReading(ctx context.Context, id string) error {
	affected, err := s.repo.DeleteReading(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFoundError("User result not found.")
	}
	return nil
}

// Interpretation fetches the description of a zodiac sign for a single
// planet. The planet name is validated against the closed allow-list.
func (s *AstrologyService) Interpretation(ctx context.Context, planet, zodiac string) (string, error) {
	description, err := s.meanings.ZodiacMeaning(ctx, planet, zodiac)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownSystem) {
			return "", validationError("Invalid planet name")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return "", notFoundError("No interpretation found")
		}
		return "", fmt.Errorf("fetch interpretation: %w", err)
	}
	return description, nil
}

// Meanings fans out one lookup per astrology system for the given zodiac
// sign and returns the descriptions ordered by system id. Individual
// failures degrade to an empty string; only the system listing itself can
// fail the whole call.
func (s *AstrologyService) Meanings(ctx context.Context, zodiac string) ([]string, error) {
	systems, err := s.repo.Systems(ctx)
	if err != nil {
		return nil, err
	}

	// One goroutine per system, each writing its own slot.
	meanings := make([]string, len(systems))
	var wg sync.WaitGroup
	for i, system := range systems {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			description, err := s.meanings.ZodiacMeaning(ctx, name, zodiac)
			if err != nil {
				if !errors.Is(err, sql.ErrNoRows) {
					s.log.Warn("meaning lookup failed",
						zap.String("system", name), zap.String("zodiac", zodiac), zap.Error(err))
				}
				return
			}
			meanings[i] = description
		}(i, system.Name)
	}
	wg.Wait()

	return meanings, nil
}

// SaveMeanings upserts one meaning per astrology system for the given
// zodiac sign, pairing systems and meanings positionally. Individual
// failures are counted, not fatal. Returns (updated, total).
func (s *AstrologyService) SaveMeanings(ctx context.Context, zodiac string, meanings []string) (int, int, error) {
	systems, err := s.repo.Systems(ctx)
	if err != nil {
		return 0, 0, err
	}

	updated := 0
	for i, system := range systems {
		meaning := ""
		if i < len(meanings) {
			meaning = meanings[i]
		}
		if err := s.meanings.UpsertZodiacMeaning(ctx, system.Name, zodiac, meaning); err != nil {
			s.log.Warn("meaning upsert failed",
				zap.String("system", system.Name), zap.String("zodiac", zodiac), zap.Error(err))
			continue
		}
		updated++
	}
	return updated, len(systems), nil
}
