package handlers

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
	"github.com/gorilla/mux"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/internal/identity"
	"github.com/localchefbazaar/bazaar/web/internal/middleware"
	"github.com/localchefbazaar/bazaar/web/internal/render"
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

func signedInRequest(t *testing.T, m *session.Manager, req *http.Request, token string) *http.Request {
	t.Helper()

	seed := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := m.SetToken(seed, rec, token); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// A fraud-status account is refused at the order form, before any order
// request reaches the backend.
func TestPlaceOrder_FraudAccountBlocked(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/users/email/"):
			json.NewEncoder(w).Encode(map[string]any{
				"user": api.User{
					ID:     "u1",
					Email:  "a@example.com",
					Role:   api.RoleUser,
					Status: api.StatusFraud,
				},
			})
		case r.URL.Path == "/orders" && r.Method == http.MethodPost:
			t.Error("order submission must not reach the backend for a blocked account")
			http.Error(w, `{"message":"forbidden"}`, http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer backend.Close()

	templates, err := render.LoadTemplates("../../templates")
	if err != nil {
		t.Fatalf("Failed to load templates: %v", err)
	}

	sessionMgr := session.NewManager([]byte("0123456789abcdef0123456789abcdef"))
	idp := identity.NewClient("http://unused", "test-key", identity.WithLogger(testLogger()))
	h := New(backend.URL, idp, sessionMgr, templates, testLogger())
	authMw := middleware.NewAuthMiddleware(sessionMgr, backend.URL, testLogger())

	router := mux.NewRouter()
	router.Handle("/order/{id}",
		authMw.Require()(http.HandlerFunc(h.PlaceOrder))).Methods("POST")

	tok := makeToken(t, jwt.MapClaims{
		"user_id": "u1",
		"email":   "a@example.com",
		"exp":     float64(time.Now().Add(time.Hour).Unix()),
	})

	form := strings.NewReader("quantity=2&address=12 Baker Street Apt 3")
	req := httptest.NewRequest(http.MethodPost, "/order/m1", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = signedInRequest(t, sessionMgr, req, tok)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if !strings.Contains(rec.Body.String(), "restricted") {
		t.Error("response does not tell the user the account is restricted")
	}
}
