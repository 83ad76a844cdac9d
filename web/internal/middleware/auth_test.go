package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/web/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SigningString()
	if err != nil {
		t.Fatal(err)
	}
	return tokenString + ".fake_signature"
}

// signedInRequest builds a request for target carrying token in the session
// cookie.
func signedInRequest(t *testing.T, m *session.Manager, target, token string) *http.Request {
	t.Helper()

	seed := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := m.SetToken(seed, rec, token); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// recordBackend serves the session record lookup for any email.
func recordBackend(t *testing.T, role api.Role, status api.UserStatus) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/users/email/") {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"user": api.User{
				ID:     "u1",
				Email:  "a@example.com",
				Role:   role,
				Status: status,
			},
		})
	}))
}

func TestRequire_NoTokenRedirectsToLogin(t *testing.T) {
	m := session.NewManager([]byte("0123456789abcdef0123456789abcdef"))
	mw := NewAuthMiddleware(m, "http://unused", testLogger())

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a credential")
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/my-orders", nil)
	rec := httptest.NewRecorder()
	mw.Require()(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	loc := rec.Header().Get("Location")
	if loc != "/login?next=%2Fdashboard%2Fmy-orders" {
		t.Errorf("Location = %q, want login redirect with original path", loc)
	}
}

func TestRequire_ExpiredTokenDenied(t *testing.T) {
	m := session.NewManager([]byte("0123456789abcdef0123456789abcdef"))
	mw := NewAuthMiddleware(m, "http://unused", testLogger())

	tok := makeToken(t, jwt.MapClaims{
		"user_id": "u1",
		"email":   "a@example.com",
		"exp":     float64(time.Now().Add(-time.Hour).Unix()),
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with an expired credential")
	})

	req := signedInRequest(t, m, "/dashboard", tok)
	rec := httptest.NewRecorder()
	mw.Require()(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if !strings.HasPrefix(rec.Header().Get("Location"), "/login?next=") {
		t.Errorf("Location = %q, want login redirect", rec.Header().Get("Location"))
	}
}

func TestRequire_AllowedSetsViewer(t *testing.T) {
	backend := recordBackend(t, api.RoleUser, api.StatusActive)
	defer backend.Close()

	m := session.NewManager([]byte("0123456789abcdef0123456789abcdef"))
	mw := NewAuthMiddleware(m, backend.URL, testLogger())

	tok := makeToken(t, jwt.MapClaims{
		"user_id": "u1",
		"email":   "a@example.com",
		"name":    "Alice",
		"exp":     float64(time.Now().Add(time.Hour).Unix()),
	})

	var viewer *Viewer
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, _ = ViewerFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := signedInRequest(t, m, "/dashboard", tok)
	rec := httptest.NewRecorder()
	mw.Require()(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if viewer == nil || viewer.Identity == nil {
		t.Fatal("viewer missing from request context")
	}
	if viewer.Identity.Email != "a@example.com" {
		t.Errorf("viewer email = %q", viewer.Identity.Email)
	}
	if viewer.Record == nil {
		t.Fatal("record not resolved for an authenticated route")
	}
	if viewer.Role() != api.RoleUser {
		t.Errorf("effective role = %q, want user", viewer.Role())
	}
}

// The record resolves on every authenticated route, not only role-gated ones:
// handlers need the backend role and account standing even when the route
// admits any role.
func TestRequire_NoRoleRouteResolvesRecord(t *testing.T) {
	backend := recordBackend(t, api.RoleChef, api.StatusFraud)
	defer backend.Close()

	m := session.NewManager([]byte("0123456789abcdef0123456789abcdef"))
	mw := NewAuthMiddleware(m, backend.URL, testLogger())

	tok := makeToken(t, jwt.MapClaims{
		"user_id": "u1",
		"email":   "a@example.com",
		"exp":     float64(time.Now().Add(time.Hour).Unix()),
	})

	var viewer *Viewer
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, _ = ViewerFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := signedInRequest(t, m, "/order/m1", tok)
	rec := httptest.NewRecorder()
	mw.Require()(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if viewer == nil || viewer.Record == nil {
		t.Fatal("record not resolved on a route with no required roles")
	}
	if viewer.Record.Status != api.StatusFraud {
		t.Errorf("record status = %q, want %q", viewer.Record.Status, api.StatusFraud)
	}
	if viewer.Role() != api.RoleChef {
		t.Errorf("effective role = %q, want chef", viewer.Role())
	}
}

func TestRequire_WrongRoleRedirectsToDashboard(t *testing.T) {
	backend := recordBackend(t, api.RoleUser, api.StatusActive)
	defer backend.Close()

	m := session.NewManager([]byte("0123456789abcdef0123456789abcdef"))
	mw := NewAuthMiddleware(m, backend.URL, testLogger())

	tok := makeToken(t, jwt.MapClaims{
		"user_id": "u1",
		"email":   "a@example.com",
		"exp":     float64(time.Now().Add(time.Hour).Unix()),
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for an excluded role")
	})

	req := signedInRequest(t, m, "/dashboard/manage-users", tok)
	rec := httptest.NewRecorder()
	mw.Require(api.RoleAdmin)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}
}

func TestRequire_MatchingRolePasses(t *testing.T) {
	backend := recordBackend(t, api.RoleChef, api.StatusActive)
	defer backend.Close()

	m := session.NewManager([]byte("0123456789abcdef0123456789abcdef"))
	mw := NewAuthMiddleware(m, backend.URL, testLogger())

	tok := makeToken(t, jwt.MapClaims{
		"user_id": "u1",
		"email":   "a@example.com",
		"exp":     float64(time.Now().Add(time.Hour).Unix()),
	})

	var viewer *Viewer
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, _ = ViewerFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := signedInRequest(t, m, "/dashboard/my-meals", tok)
	rec := httptest.NewRecorder()
	mw.Require(api.RoleChef)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if viewer == nil || viewer.Record == nil {
		t.Fatal("viewer record missing")
	}
	if viewer.Role() != api.RoleChef {
		t.Errorf("effective role = %q, want chef", viewer.Role())
	}
}

func TestRequire_RecordFetchFailureDefaultsToUser(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	defer backend.Close()

	m := session.NewManager([]byte("0123456789abcdef0123456789abcdef"))
	mw := NewAuthMiddleware(m, backend.URL, testLogger())

	tok := makeToken(t, jwt.MapClaims{
		"user_id": "u1",
		"email":   "a@example.com",
		"exp":     float64(time.Now().Add(time.Hour).Unix()),
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run when the degraded role is excluded")
	})

	req := signedInRequest(t, m, "/dashboard/manage-users", tok)
	rec := httptest.NewRecorder()
	mw.Require(api.RoleAdmin)(next).ServeHTTP(rec, req)

	// Effective role degrades to user, which the admin route excludes.
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", loc)
	}
}
