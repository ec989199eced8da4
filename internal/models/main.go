// Package models defines the core data structures for accounts, readings,
// divinatory systems, and meanings.
package models

import "time"

// Account represents a registered user account keyed by phone number.
type Account struct {
	// ID is the unique identifier for the account.
	ID int64 `json:"idaccount"`
	// Phone is the phone number; it uniquely identifies an account.
	Phone string `json:"phone"`
	// Fullname is the display name of the account holder.
	Fullname string `json:"fullname"`
	// Email is optional and may be nil.
	Email *string `json:"email"`
	// PasswordHash is the bcrypt hash of the account password.
	// It is never serialized in responses.
	PasswordHash string `json:"-"`
	// Role is the account role, "user" by default.
	Role string `json:"role,omitempty"`
}

// Principal is the authenticated identity derived from a verified
// session token.
type Principal struct {
	// AccountID is the account identifier embedded in the token.
	AccountID int64
	// Phone is the phone number embedded in the token.
	Phone string
	// Role is the role embedded in the token.
	Role string
}

// System identifies a divinatory system (e.g. "sun" or "lifepath_number")
// whose meanings live in a category-specific table.
type System struct {
	// ID orders systems in fan-out responses.
	ID int64 `json:"id"`
	// Name is the system name; it selects the meaning table via a
	// closed allow-list, never by direct interpolation.
	Name string `json:"name"`
	// Description is free-form system metadata.
	Description string `json:"description,omitempty"`
}

// Meaning is a (title, description) pair associated with a zodiac sign
// or numeric value in a category-specific table.
type Meaning struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AstrologyReading is a persisted snapshot of per-planet zodiac placements.
// JSON field names follow the dashboard API contract.
type AstrologyReading struct {
	ID          string    `json:"ResultID"`
	PhoneNumber string    `json:"PhoneNumber"`
	Date        string    `json:"date"`
	Ascendant   string    `json:"ascendant"`
	Chiron      string    `json:"chiron"`
	Jupiter     string    `json:"jupiter"`
	Mars        string    `json:"mars"`
	Mercury     string    `json:"mercury"`
	Moon        string    `json:"moon"`
	Neptune     string    `json:"neptune"`
	Pluto       string    `json:"pluto"`
	Saturn      string    `json:"saturn"`
	Sun         string    `json:"sun"`
	Venus       string    `json:"venus"`
	CreatedAt   time.Time `json:"created_at"`
}

// NumerologyReading is a persisted snapshot of per-category numerology
// numbers. PhoneNumber is a soft link: nil when the calculation was
// anonymous or the phone was not a registered account.
type NumerologyReading struct {
	ID                string    `json:"ResultID"`
	PhoneNumber       *string   `json:"PhoneNumber"`
	LifePathNumber    int       `json:"lifepath_number"`
	DestinyNumber     int       `json:"destiny_number"`
	SoulUrgeNumber    int       `json:"soulurge_number"`
	PersonalityNumber int       `json:"personality_number"`
	NaturalAbilityNum int       `json:"naturalability_number"`
	MaturityNumber    int       `json:"maturity_number"`
	AttitudeNumber    int       `json:"attitude_number"`
	ChallengeNumber1  int       `json:"challenge_number_1"`
	ChallengeNumber2  int       `json:"challenge_number_2"`
	ChallengeNumber3  int       `json:"challenge_number_3"`
	ChallengeNumber4  int       `json:"challenge_number_4"`
	Date              time.Time `json:"date"`
}

// Statistics aggregates dashboard counters across accounts and readings.
type Statistics struct {
	TotalUsers              int64 `json:"totalUsers"`
	TotalAstrologyReadings  int64 `json:"totalAstrologyReadings"`
	TotalNumerologyReadings int64 `json:"totalNumerologyReadings"`
	TotalReadings           int64 `json:"totalReadings"`
	// RecentReadings counts readings of either kind from the last 7 days.
	RecentReadings int64 `json:"recentReadings"`
}
