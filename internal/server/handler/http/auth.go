package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tdnguyen/astroserve/internal/middleware"
	"github.com/tdnguyen/astroserve/internal/models"
	"github.com/tdnguyen/astroserve/internal/service"
	"go.uber.org/zap"
)

// tokenLifetimeSeconds matches the embedded token expiry so the cookie
// and the token die together.
const tokenLifetimeSeconds = 3600

// AuthServicer defines the authentication operations required by the
// HTTP handlers.
type AuthServicer interface {
	Signup(ctx context.Context, req service.SignupRequest) error
	// Login returns the signed token and the account role.
	Login(ctx context.Context, phone, password string) (token, role string, err error)
	Profile(ctx context.Context, accountID int64) (*models.Account, error)
	ChangePassword(ctx context.Context, accountID int64, currentPassword, newPassword string) error
	ResetPassword(ctx context.Context, phone, code, newPassword string) error
}

// AuthHandler handles signup, login, profile, and password endpoints.
type AuthHandler struct {
	Service AuthServicer
	// SecureCookies sets the Secure flag on the session cookie;
	// enabled in production.
	SecureCookies bool
	Log           *zap.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(svc AuthServicer, secureCookies bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Service: svc, SecureCookies: secureCookies, Log: log}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.Service.Signup(r.Context(), req); err != nil {
		// A duplicate phone is reported as a plain 400 here; the admin
		// creation endpoint is the one that answers 409.
		var se *service.Error
		if errors.As(err, &se) && se.Kind == service.KindConflict {
			writeError(w, http.StatusBadRequest, se.Message)
			return
		}
		writeServiceError(w, h.Log, err, "Database error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
}

// loginRequest is the JSON payload for login.
type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login. On success the token is delivered
// both as the access_token cookie and in the response body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	token, role, err := h.Service.Login(r.Context(), req.Phone, req.Password)
	if err != nil {
		writeServiceError(w, h.Log, err, "Database error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		MaxAge:   tokenLifetimeSeconds,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Login successful",
		"token":    token,
		"userRole": role,
	})
}

// Profile handles GET /api/auth/profile. Requires CookieAuth.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	account, err := h.Service.Profile(r.Context(), principal.AccountID)
	if err != nil {
		writeServiceError(w, h.Log, err, "Database error.")
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// changePasswordRequest is the JSON payload for password change.
type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles PUT /api/auth/change-password. Requires
// CookieAuth.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.Service.ChangePassword(r.Context(), principal.AccountID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, h.Log, err, "Database error updating password.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully."})
}

// resetPasswordRequest is the JSON payload for password reset.
type resetPasswordRequest struct {
	Phone       string `json:"phone"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.Service.ResetPassword(r.Context(), req.Phone, req.Code, req.NewPassword); err != nil {
		writeServiceError(w, h.Log, err, "Database error updating password.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully."})
}
