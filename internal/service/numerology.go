package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/tdnguyen/astroserve/internal/models"
	"github.com/tdnguyen/astroserve/internal/repository"
	"go.uber.org/zap"
)

// NumerologyRepository defines the persistence operations required by the
// numerology service.
type NumerologyRepository interface {
	Systems(ctx context.Context) ([]models.System, error)
	CreateSystem(ctx context.Context, name, description string) (int64, error)
	UpdateSystem(ctx context.Context, id int64, name, description string) error
	DeleteSystem(ctx context.Context, id int64) error
	InsertReading(ctx context.Context, reading *models.NumerologyReading) error
	Readings(ctx context.Context) ([]models.NumerologyReading, error)
	ReadingsByPhone(ctx context.Context, phone string, limit, offset int) ([]models.NumerologyReading, error)
	ReadingByID(ctx context.Context, id string) (*models.NumerologyReading, error)
	DeleteReading(ctx context.Context, id string) (int64, error)
}

// NumberMeaningRepository reads, upserts, and deletes numeric meaning
// entries.
type NumberMeaningRepository interface {
	NumberMeaning(ctx context.Context, system string, number int) (models.Meaning, error)
	UpsertNumberMeaning(ctx context.Context, system string, number int, description string) error
	DeleteNumberMeaning(ctx context.Context, system string, number int) (int64, error)
}

// AccountChecker reports whether a phone number belongs to a registered
// account. Used for the soft phone linkage on saved calculations.
type AccountChecker interface {
	Exists(ctx context.Context, phone string) (bool, error)
}

// NumerologyService implements numerology calculations, history, and
// meaning management.
type NumerologyService struct {
	repo     NumerologyRepository
	meanings NumberMeaningRepository
	accounts AccountChecker
	log      *zap.Logger
}

// NewNumerologyService constructs a NumerologyService.
func NewNumerologyService(repo NumerologyRepository, meanings NumberMeaningRepository, accounts AccountChecker, log *zap.Logger) *NumerologyService {
	return &NumerologyService{repo: repo, meanings: meanings, accounts: accounts, log: log}
}

// CalculateNumbers carries the pre-computed numbers of a calculation.
type CalculateNumbers struct {
	LifePathNumber       int `json:"lifePathNumber"`
	DestinyNumber        int `json:"destinyNumber"`
	SoulUrgeNumber       int `json:"soulUrgeNumber"`
	PersonalityNumber    int `json:"personalityNumber"`
	NaturalAbilityNumber int `json:"naturalAbilityNumber"`
	MaturityNumber       int `json:"maturityNumber"`
	AttitudeNumber       int `json:"attitudeNumber"`
	Challenge1           int `json:"challenge1"`
	Challenge2           int `json:"challenge2"`
	Challenge3           int `json:"challenge3"`
	Challenge4           int `json:"challenge4"`
}

// CalculateRequest is the input of a numerology calculation.
type CalculateRequest struct {
	FullName    string            `json:"fullName"`
	Date        string            `json:"date"`
	PhoneNumber string            `json:"phoneNumber"`
	Numbers     *CalculateNumbers `json:"numbers"`
}

// ChallengeMeanings is the enriched challenge block of a calculation
// result.
type ChallengeMeanings struct {
	Challenge1            int    `json:"challenge1"`
	Challenge1Title       string `json:"challenge1Title"`
	Challenge1Description string `json:"challenge1Description"`
	Challenge2            int    `json:"challenge2"`
	Challenge2Title       string `json:"challenge2Title"`
	Challenge2Description string `json:"challenge2Description"`
	Challenge3            int    `json:"challenge3"`
	Challenge3Title       string `json:"challenge3Title"`
	Challenge3Description string `json:"challenge3Description"`
	Challenge4            int    `json:"challenge4"`
	Challenge4Title       string `json:"challenge4Title"`
	Challenge4Description string `json:"challenge4Description"`
}

// CalculateResult is the enriched output of a numerology calculation.
type CalculateResult struct {
	FullName    string `json:"fullName"`
	Date        string `json:"date"`
	PhoneNumber string `json:"phoneNumber,omitempty"`

	LifePathNumber      int    `json:"lifePathNumber"`
	LifePathTitle       string `json:"lifePathTitle"`
	LifePathDescription string `json:"lifePathDescription"`

	DestinyNumber      int    `json:"destinyNumber"`
	DestinyTitle       string `json:"destinyTitle"`
	DestinyDescription string `json:"destinyDescription"`

	SoulUrgeNumber      int    `json:"soulUrgeNumber"`
	SoulUrgeTitle       string `json:"soulUrgeTitle"`
	SoulUrgeDescription string `json:"soulUrgeDescription"`

	PersonalityNumber      int    `json:"personalityNumber"`
	PersonalityTitle       string `json:"personalityTitle"`
	PersonalityDescription string `json:"personalityDescription"`

	NaturalAbilityNumber      int    `json:"naturalAbilityNumber"`
	NaturalAbilityTitle       string `json:"naturalAbilityTitle"`
	NaturalAbilityDescription string `json:"naturalAbilityDescription"`

	MaturityNumber      int    `json:"maturityNumber"`
	MaturityTitle       string `json:"maturityTitle"`
	MaturityDescription string `json:"maturityDescription"`

	AttitudeNumber      int    `json:"attitudeNumber"`
	AttitudeTitle       string `json:"attitudeTitle"`
	AttitudeDescription string `json:"attitudeDescription"`

	Challenges ChallengeMeanings `json:"challenges"`

	SavedResultID string `json:"savedResultId,omitempty"`
	SaveWarning   string `json:"saveWarning,omitempty"`
}

// meaningLookup pairs a meaning table with the number to resolve and the
// result slot index.
type meaningLookup struct {
	system string
	number int
}

// Calculate enriches pre-computed numerology numbers with meanings from
// the per-category tables and persists the result. Meaning lookups fan out
// concurrently and individual failures degrade to empty values. A failed
// save degrades to a warning on the result instead of failing the call.
func (s *NumerologyService) Calculate(ctx context.Context, req CalculateRequest) (*CalculateResult, error) {
	if req.FullName == "" || req.Date == "" || req.Numbers == nil {
		return nil, validationError("Missing required fields.")
	}
	n := req.Numbers

	lookups := []meaningLookup{
		{"lifepath_number", n.LifePathNumber},
		{"destiny_number", n.DestinyNumber},
		{"soulurge_number", n.SoulUrgeNumber},
		{"personality_number", n.PersonalityNumber},
		{"naturalability_number", n.NaturalAbilityNumber},
		{"maturity_number", n.MaturityNumber},
		{"attitude_number", n.AttitudeNumber},
		{"challenge_number", n.Challenge1},
		{"challenge_number", n.Challenge2},
		{"challenge_number", n.Challenge3},
		{"challenge_number", n.Challenge4},
	}

	meanings := make([]models.Meaning, len(lookups))
	var wg sync.WaitGroup
	for i, lookup := range lookups {
		wg.Add(1)
		go func(i int, lookup meaningLookup) {
			defer wg.Done()
			m, err := s.meanings.NumberMeaning(ctx, lookup.system, lookup.number)
			if err != nil {
				if !errors.Is(err, sql.ErrNoRows) {
					s.log.Warn("number meaning lookup failed",
						zap.String("system", lookup.system), zap.Int("number", lookup.number), zap.Error(err))
				}
				return
			}
			meanings[i] = m
		}(i, lookup)
	}
	wg.Wait()

	result := &CalculateResult{
		FullName:    req.FullName,
		Date:        req.Date,
		PhoneNumber: req.PhoneNumber,

		LifePathNumber: n.LifePathNumber, LifePathTitle: meanings[0].Title, LifePathDescription: meanings[0].Description,
		DestinyNumber: n.DestinyNumber, DestinyTitle: meanings[1].Title, DestinyDescription: meanings[1].Description,
		SoulUrgeNumber: n.SoulUrgeNumber, SoulUrgeTitle: meanings[2].Title, SoulUrgeDescription: meanings[2].Description,
		PersonalityNumber: n.PersonalityNumber, PersonalityTitle: meanings[3].Title, PersonalityDescription: meanings[3].Description,
		NaturalAbilityNumber: n.NaturalAbilityNumber, NaturalAbilityTitle: meanings[4].Title, NaturalAbilityDescription: meanings[4].Description,
		MaturityNumber: n.MaturityNumber, MaturityTitle: meanings[5].Title, MaturityDescription: meanings[5].Description,
		AttitudeNumber: n.AttitudeNumber, AttitudeTitle: meanings[6].Title, AttitudeDescription: meanings[6].Description,

		Challenges: ChallengeMeanings{
			Challenge1: n.Challenge1, Challenge1Title: meanings[7].Title, Challenge1Description: meanings[7].Description,
			Challenge2: n.Challenge2, Challenge2Title: meanings[8].Title, Challenge2Description: meanings[8].Description,
			Challenge3: n.Challenge3, Challenge3Title: meanings[9].Title, Challenge3Description: meanings[9].Description,
			Challenge4: n.Challenge4, Challenge4Title: meanings[10].Title, Challenge4Description: meanings[10].Description,
		},
	}

	reading := &models.NumerologyReading{
		PhoneNumber:       s.linkablePhone(ctx, req.PhoneNumber),
		LifePathNumber:    n.LifePathNumber,
		DestinyNumber:     n.DestinyNumber,
		SoulUrgeNumber:    n.SoulUrgeNumber,
		PersonalityNumber: n.PersonalityNumber,
		NaturalAbilityNum: n.NaturalAbilityNumber,
		MaturityNumber:    n.MaturityNumber,
		AttitudeNumber:    n.AttitudeNumber,
		ChallengeNumber1:  n.Challenge1,
		ChallengeNumber2:  n.Challenge2,
		ChallengeNumber3:  n.Challenge3,
		ChallengeNumber4:  n.Challenge4,
	}
	if err := s.repo.InsertReading(ctx, reading); err != nil {
		s.log.Error("failed to save numerology result", zap.Error(err))
		result.SaveWarning = "Result calculated successfully but could not be saved to history"
	} else {
		result.SavedResultID = reading.ID
	}

	return result, nil
}

// linkablePhone returns the phone as a soft link when it belongs to a
// registered account, nil otherwise. Existence-check failures also drop
// the link; an unlinked reading is preferable to a lost one.
func (s *NumerologyService) linkablePhone(ctx context.Context, phone string) *string {
	if phone == "" {
		return nil
	}
	exists, err := s.accounts.Exists(ctx, phone)
	if err != nil {
		s.log.Warn("phone existence check failed, saving without phone", zap.Error(err))
		return nil
	}
	if !exists {
		s.log.Info("phone not registered, saving without phone", zap.String("phone", phone))
		return nil
	}
	return &phone
}

// History returns a page of calculations recorded for a phone number.
func (s *NumerologyService) History(ctx context.Context, phone string, limit, offset int) ([]models.NumerologyReading, error) {
	return s.repo.ReadingsByPhone(ctx, phone, limit, offset)
}

// Readings lists all numerology readings, newest first.
func (s *NumerologyService) Readings(ctx context.Context) ([]models.NumerologyReading, error) {
	return s.repo.Readings(ctx)
}

// Result fetches a single calculation by identifier.
func (s *NumerologyService) Result(ctx context.Context, id string) (*models.NumerologyReading, error) {
	reading, err := s.repo.ReadingByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundError("Result not found.")
		}
		return nil, err
	}
	return reading, nil
}

// DeleteResult removes a calculation by identifier.
func (s *NumerologyService) DeleteResult(ctx context.Context, id string) error {
	affected, err := s.repo.DeleteReading(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFoundError("Result not found.")
	}
	return nil
}

// Systems lists all numerology systems ordered by id.
func (s *NumerologyService) Systems(ctx context.Context) ([]models.System, error) {
	return s.repo.Systems(ctx)
}

// AddSystem creates a new numerology system and returns its id.
func (s *NumerologyService) AddSystem(ctx context.Context, name, description string) (int64, error) {
	if name == "" || description == "" {
		return 0, validationError("Name and description are required.")
	}
	return s.repo.CreateSystem(ctx, name, description)
}

// UpdateSystem replaces the metadata of a system.
func (s *NumerologyService) UpdateSystem(ctx context.Context, id int64, name, description string) error {
	return s.repo.UpdateSystem(ctx, id, name, description)
}

// DeleteSystem removes a system by id.
func (s *NumerologyService) DeleteSystem(ctx context.Context, id int64) error {
	return s.repo.DeleteSystem(ctx, id)
}

// Meanings fans out one description lookup per numerology system for the
// given number, ordered by system id, degrading individual failures to
// empty strings.
func (s *NumerologyService) Meanings(ctx context.Context, number int) ([]string, error) {
	systems, err := s.repo.Systems(ctx)
	if err != nil {
		return nil, err
	}

	meanings := make([]string, len(systems))
	var wg sync.WaitGroup
	for i, system := range systems {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			m, err := s.meanings.NumberMeaning(ctx, name, number)
			if err != nil {
				if !errors.Is(err, sql.ErrNoRows) {
					s.log.Warn("meaning lookup failed",
						zap.String("system", name), zap.Int("number", number), zap.Error(err))
				}
				return
			}
			meanings[i] = m.Description
		}(i, system.Name)
	}
	wg.Wait()

	return meanings, nil
}

// SaveMeanings upserts one description per numerology system for the
// given number, pairing systems and meanings positionally. Returns
// (updated, total).
func (s *NumerologyService) SaveMeanings(ctx context.Context, number int, meanings []string) (int, int, error) {
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
		if err := s.meanings.UpsertNumberMeaning(ctx, system.Name, number, meaning); err != nil {
			s.log.Warn("meaning upsert failed",
				zap.String("system", system.Name), zap.Int("number", number), zap.Error(err))
			continue
		}
		updated++
	}
	return updated, len(systems), nil
}

// DeleteMeaning removes the meaning entry for a number from the named
// table. The table name is validated against the closed allow-list.
func (s *NumerologyService) DeleteMeaning(ctx context.Context, table string, number int) error {
	affected, err := s.meanings.DeleteNumberMeaning(ctx, table, number)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownSystem) {
			return validationError("Invalid table name.")
		}
		return err
	}
	if affected == 0 {
		return notFoundError("Meaning not found.")
	}
	return nil
}
