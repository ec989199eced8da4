package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tdnguyen/astroserve/internal/token"
)

// dummyHandler records whether it was called and the principal it saw.
type dummyHandler struct {
	called    bool
	accountID int64
	role      string
}

func (d *dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.called = true
	if p := GetPrincipalFromContext(r.Context()); p != nil {
		d.accountID = p.AccountID
		d.role = p.Role
	}
	w.WriteHeader(http.StatusOK)
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return body["error"]
}

func TestCookieAuth_MissingCookie(t *testing.T) {
	manager := token.NewManager("test-secret", time.Hour)
	dummy := &dummyHandler{}
	h := CookieAuth(manager)(dummy)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/profile", nil)
	h.ServeHTTP(rec, req)

	if dummy.called {
		t.Error("next handler must not run without a cookie")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if got := errorBody(t, rec); got != "Not authenticated." {
		t.Errorf("unexpected error message %q", got)
	}
}

func TestCookieAuth_InvalidToken(t *testing.T) {
	manager := token.NewManager("test-secret", time.Hour)
	dummy := &dummyHandler{}
	h := CookieAuth(manager)(dummy)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/profile", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "not-a-token"})
	h.ServeHTTP(rec, req)

	if dummy.called {
		t.Error("next handler must not run with an invalid token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if got := errorBody(t, rec); got != "Invalid token." {
		t.Errorf("unexpected error message %q", got)
	}
}

func TestCookieAuth_ExpiredToken(t *testing.T) {
	expired := token.NewManager("test-secret", -time.Minute)
	raw, err := expired.Issue(7, "0900000000", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager := token.NewManager("test-secret", time.Hour)
	dummy := &dummyHandler{}
	h := CookieAuth(manager)(dummy)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/profile", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: raw})
	h.ServeHTTP(rec, req)

	if dummy.called {
		t.Error("next handler must not run with an expired token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestCookieAuth_ValidToken(t *testing.T) {
	manager := token.NewManager("test-secret", time.Hour)
	raw, err := manager.Issue(7, "0900000000", "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	dummy := &dummyHandler{}
	h := CookieAuth(manager)(dummy)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/profile", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: raw})
	h.ServeHTTP(rec, req)

	if !dummy.called {
		t.Fatal("expected next handler to run")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if dummy.accountID != 7 || dummy.role != "admin" {
		t.Errorf("principal not propagated: id=%d role=%q", dummy.accountID, dummy.role)
	}
}

func TestGetPrincipalFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if p := GetPrincipalFromContext(req.Context()); p != nil {
		t.Errorf("expected nil principal, got %+v", p)
	}
}
