package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tdnguyen/astroserve/internal/models"
	"github.com/tdnguyen/astroserve/internal/service"
	"go.uber.org/zap"
)

// AstrologyServicer defines the astrology operations required by the
// HTTP handlers.
type AstrologyServicer interface {
	Systems(ctx context.Context) ([]models.System, error)
	AddSystem(ctx context.Context, name, description string) (int64, error)
	UpdateSystem(ctx context.Context, id int64, name, description string) error
	DeleteSystem(ctx context.Context, id int64) error
	SaveReading(ctx context.Context, reading *models.AstrologyReading) error
	Readings(ctx context.Context) ([]models.AstrologyReading, error)
	ReadingsByPhone(ctx context.Context, phone string) ([]models.AstrologyReading, error)
	Reading(ctx context.Context, id string) (*models.AstrologyReading, error)
	DeleteReading(ctx context.Context, id string) error
	Interpretation(ctx context.Context, planet, zodiac string) (string, error)
	Meanings(ctx context.Context, zodiac string) ([]string, error)
	SaveMeanings(ctx context.Context, zodiac string, meanings []string) (updated, total int, err error)
}

// AstrologyHandler handles astrology systems, readings, and meanings
// endpoints.
type AstrologyHandler struct {
	Service AstrologyServicer
	Log     *zap.Logger
}

// NewAstrologyHandler constructs an AstrologyHandler.
func NewAstrologyHandler(svc AstrologyServicer, log *zap.Logger) *AstrologyHandler {
	return &AstrologyHandler{Service: svc, Log: log}
}

// Systems handles GET /api/astrology/system.
func (h *AstrologyHandler) Systems(w http.ResponseWriter, r *http.Request) {
	systems, err := h.Service.Systems(r.Context())
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve data.")
		return
	}
	writeJSON(w, http.StatusOK, systems)
}

// systemRequest is the JSON payload for system create/update.
type systemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AddSystem handles POST /api/astrology.
func (h *AstrologyHandler) AddSystem(w http.ResponseWriter, r *http.Request) {
	var req systemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	id, err := h.Service.AddSystem(r.Context(), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to add new astrology system.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Astrology system added successfully",
		"id":      id,
	})
}

// UpdateSystem handles PUT /api/astrology/{id}.
func (h *AstrologyHandler) UpdateSystem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid system id.")
		return
	}

	var req systemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.Service.UpdateSystem(r.Context(), id, req.Name, req.Description); err != nil {
		writeServiceError(w, h.Log, err, "Failed to update system.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "System updated successfully"})
}

// DeleteSystem handles DELETE /api/astrology/{id}.
func (h *AstrologyHandler) DeleteSystem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid system id.")
		return
	}

	if err := h.Service.DeleteSystem(r.Context(), id); err != nil {
		writeServiceError(w, h.Log, err, "Failed to delete system.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "System deleted successfully"})
}

// saveResultsRequest is the JSON payload for saving a reading.
type saveResultsRequest struct {
	PhoneNumber string `json:"PhoneNumber"`
	Date        string `json:"date"`
	Ascendant   string `json:"ascendant"`
	Chiron      string `json:"chiron"`
	Jupiter     string `json:"jupiter"`
	Mars        string `json:"mars"`
	Mercury     string `json:"mercury"`
	Moon        string `json:"moon"`
	Neptune     string `json:"neptune"`
	Pluto       string `json:"pluto"`
	Saturn      string `json:"saturn"`
	Sun         string `json:"sun"`
	Venus       string `json:"venus"`
}

// SaveResults handles POST /api/astrology/save-results.
func (h *AstrologyHandler) SaveResults(w http.ResponseWriter, r *http.Request) {
	var req saveResultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if req.Date == "" || req.Sun == "" || req.Moon == "" || req.Ascendant == "" || req.PhoneNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    "Missing required fields",
			"required": []string{"date", "sun", "moon", "ascendant", "PhoneNumber"},
		})
		return
	}

	reading := &models.AstrologyReading{
		PhoneNumber: req.PhoneNumber,
		Date:        req.Date,
		Ascendant:   req.Ascendant,
		Chiron:      req.Chiron,
		Jupiter:     req.Jupiter,
		Mars:        req.Mars,
		Mercury:     req.Mercury,
		Moon:        req.Moon,
		Neptune:     req.Neptune,
		Pluto:       req.Pluto,
		Saturn:      req.Saturn,
		Sun:         req.Sun,
		Venus:       req.Venus,
	}

	if err := h.Service.SaveReading(r.Context(), reading); err != nil {
		writeServiceError(w, h.Log, err, "Failed to save astrology results")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User astrology results saved successfully",
		"id":      reading.ID,
		"data":    req,
	})
}

// UserResults handles GET /api/astrology/user-results.
func (h *AstrologyHandler) UserResults(w http.ResponseWriter, r *http.Request) {
	readings, err := h.Service.Readings(r.Context())
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve user results.")
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

// UserResultsByPhone handles GET /api/astrology/user-results/{phone}.
// An empty result set is a 404, matching the dashboard's expectation.
func (h *AstrologyHandler) UserResultsByPhone(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	readings, err := h.Service.ReadingsByPhone(r.Context(), phone)
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve user results.")
		return
	}
	if len(readings) == 0 {
		writeError(w, http.StatusNotFound, "No results found for this phone number")
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

// DeleteUserResult handles DELETE /api/astrology/user-results/{id}.
func (h *AstrologyHandler) DeleteUserResult(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteReading(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.Log, err, "Failed to delete user result.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User result deleted successfully"})
}

// Readings handles GET /api/astrology/readings.
func (h *AstrologyHandler) Readings(w http.ResponseWriter, r *http.Request) {
	readings, err := h.Service.Readings(r.Context())
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve astrology readings.")
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

// ReadingByID handles GET /api/astrology/readings/{id}.
func (h *AstrologyHandler) ReadingByID(w http.ResponseWriter, r *http.Request) {
	reading, err := h.Service.Reading(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve astrology reading.")
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// ReadingsByPhone handles GET /api/astrology/readings/phone/{phone}.
func (h *AstrologyHandler) ReadingsByPhone(w http.ResponseWriter, r *http.Request) {
	readings, err := h.Service.ReadingsByPhone(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve astrology readings.")
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

// Interpretation handles GET /api/astrology/{planet}/{zodiac}. When no
// row matches, a fallback description is returned alongside the error so
// the client can render something.
func (h *AstrologyHandler) Interpretation(w http.ResponseWriter, r *http.Request) {
	planet := chi.URLParam(r, "planet")
	zodiac := chi.URLParam(r, "zodiac")

	description, err := h.Service.Interpretation(r.Context(), planet, zodiac)
	if err != nil {
		var se *service.Error
		if errors.As(err, &se) && se.Kind == service.KindNotFound {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error":       se.Message,
				"description": fmt.Sprintf("Không tìm thấy giải thích cho %s trong %s", planet, zodiac),
			})
			return
		}
		writeServiceError(w, h.Log, err, "Failed to retrieve interpretation.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"planet":      planet,
		"zodiac":      zodiac,
		"description": description,
	})
}

// Meanings handles GET /api/astrology/meanings/{zodiac}.
func (h *AstrologyHandler) Meanings(w http.ResponseWriter, r *http.Request) {
	zodiac := chi.URLParam(r, "zodiac")

	meanings, err := h.Service.Meanings(r.Context(), zodiac)
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve meanings.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"zodiac":   zodiac,
		"meanings": meanings,
	})
}

// saveMeaningsRequest is the JSON payload for saving zodiac meanings.
type saveMeaningsRequest struct {
	Meanings []string `json:"meanings"`
}

// SaveMeanings handles POST /api/astrology/meanings/{zodiac}.
func (h *AstrologyHandler) SaveMeanings(w http.ResponseWriter, r *http.Request) {
	zodiac := chi.URLParam(r, "zodiac")

	var req saveMeaningsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	updated, total, err := h.Service.SaveMeanings(r.Context(), zodiac, req.Meanings)
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to save meanings.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Successfully updated %d/%d meanings for %s", updated, total, zodiac),
		"zodiac":  zodiac,
		"updated": updated,
	})
}
