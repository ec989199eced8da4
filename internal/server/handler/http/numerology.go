package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tdnguyen/astroserve/internal/models"
	"github.com/tdnguyen/astroserve/internal/service"
	"go.uber.org/zap"
)

// defaultHistoryLimit pages numerology history when the client omits the
// limit parameter.
const defaultHistoryLimit = 10

// NumerologyServicer defines the numerology operations required by the
// HTTP handlers.
type NumerologyServicer interface {
	Calculate(ctx context.Context, req service.CalculateRequest) (*service.CalculateResult, error)
	History(ctx context.Context, phone string, limit, offset int) ([]models.NumerologyReading, error)
	Readings(ctx context.Context) ([]models.NumerologyReading, error)
	Result(ctx context.Context, id string) (*models.NumerologyReading, error)
	DeleteResult(ctx context.Context, id string) error
	Systems(ctx context.Context) ([]models.System, error)
	AddSystem(ctx context.Context, name, description string) (int64, error)
	UpdateSystem(ctx context.Context, id int64, name, description string) error
	DeleteSystem(ctx context.Context, id int64) error
	Meanings(ctx context.Context, number int) ([]string, error)
	SaveMeanings(ctx context.Context, number int, meanings []string) (updated, total int, err error)
	DeleteMeaning(ctx context.Context, table string, number int) error
}

// NumerologyHandler handles numerology calculations, history, systems,
// and meanings endpoints.
type NumerologyHandler struct {
	Service NumerologyServicer
	Log     *zap.Logger
}

// NewNumerologyHandler constructs a NumerologyHandler.
func NewNumerologyHandler(svc NumerologyServicer, log *zap.Logger) *NumerologyHandler {
	return &NumerologyHandler{Service: svc, Log: log}
}

// Calculate handles POST /api/numerology/calculate.
func (h *NumerologyHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req service.CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	result, err := h.Service.Calculate(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to calculate numerology.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// challengeGroup mirrors the grouped challenge shape the dashboard
// renders.
type challengeGroup struct {
	Challenge1 int `json:"challenge1"`
	Challenge2 int `json:"challenge2"`
	Challenge3 int `json:"challenge3"`
	Challenge4 int `json:"challenge4"`
}

// historyEntry is a reading augmented with the grouped challenge numbers.
type historyEntry struct {
	models.NumerologyReading
	ChallengeNumbers challengeGroup `json:"challenge_numbers"`
}

func groupChallenges(reading models.NumerologyReading) historyEntry {
	return historyEntry{
		NumerologyReading: reading,
		ChallengeNumbers: challengeGroup{
			Challenge1: reading.ChallengeNumber1,
			Challenge2: reading.ChallengeNumber2,
			Challenge3: reading.ChallengeNumber3,
			Challenge4: reading.ChallengeNumber4,
		},
	}
}

// History handles GET /api/numerology/history/{phoneNumber}.
func (h *NumerologyHandler) History(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phoneNumber")

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}

	readings, err := h.Service.History(r.Context(), phone, limit, offset)
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve history.")
		return
	}

	entries := make([]historyEntry, 0, len(readings))
	for _, reading := range readings {
		entries = append(entries, groupChallenges(reading))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    entries,
		"total":   len(entries),
	})
}

// Result handles GET /api/numerology/result/{id}.
func (h *NumerologyHandler) Result(w http.ResponseWriter, r *http.Request) {
	reading, err := h.Service.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve result.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    groupChallenges(*reading),
	})
}

// DeleteResult handles DELETE /api/numerology/result/{id}.
func (h *NumerologyHandler) DeleteResult(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteResult(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.Log, err, "Failed to delete result.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Result deleted successfully",
	})
}

// Systems handles GET /api/numerology/system.
func (h *NumerologyHandler) Systems(w http.ResponseWriter, r *http.Request) {
	systems, err := h.Service.Systems(r.Context())
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve data.")
		return
	}
	writeJSON(w, http.StatusOK, systems)
}

// AddSystem handles POST /api/numerology.
func (h *NumerologyHandler) AddSystem(w http.ResponseWriter, r *http.Request) {
	var req systemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	id, err := h.Service.AddSystem(r.Context(), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to add new numerology system.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Numerology system added successfully",
		"id":      id,
	})
}

// UpdateSystem handles PUT /api/numerology/{id}.
func (h *NumerologyHandler) UpdateSystem(w http.ResponseWriter, r *http.Request) {
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

// DeleteSystem handles DELETE /api/numerology/{id}.
func (h *NumerologyHandler) DeleteSystem(w http.ResponseWriter, r *http.Request) {
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

// Meanings handles GET /api/numerology/meanings/{number}.
func (h *NumerologyHandler) Meanings(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid number.")
		return
	}

	meanings, err := h.Service.Meanings(r.Context(), number)
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve meanings.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"number":   number,
		"meanings": meanings,
	})
}

// SaveMeanings handles POST /api/numerology/meanings/{number}.
func (h *NumerologyHandler) SaveMeanings(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid number.")
		return
	}

	var req saveMeaningsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	updated, total, err := h.Service.SaveMeanings(r.Context(), number, req.Meanings)
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to save meanings.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Successfully updated %d/%d meanings for %d", updated, total, number),
		"number":  number,
		"updated": updated,
	})
}

// DeleteMeaning handles DELETE /api/numerology/meanings/{table}/{number}.
func (h *NumerologyHandler) DeleteMeaning(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid number.")
		return
	}

	if err := h.Service.DeleteMeaning(r.Context(), chi.URLParam(r, "table"), number); err != nil {
		writeServiceError(w, h.Log, err, "Failed to delete meaning.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Meaning deleted successfully"})
}

// NumerologyReadings handles GET /api/numerology/readings.
func (h *NumerologyHandler) NumerologyReadings(w http.ResponseWriter, r *http.Request) {
	readings, err := h.Service.Readings(r.Context())
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve numerology readings.")
		return
	}
	writeJSON(w, http.StatusOK, readings)
}
