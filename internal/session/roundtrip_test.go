package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/internal/identity"
)

// The full credential-expiry round trip: a stored token, a backend 401, the
// purge, and the very next guarded evaluation reading DENIED.
func TestExpiredCredentialRoundTrip(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"jwt expired"}`))
	}))
	defer backend.Close()

	provider := newFakeProvider()
	tokens := NewMemoryStore()
	client := api.NewClient(backend.URL, tokens, api.WithLogger(testLogger()))
	store := New(provider, tokens, client, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.Run(ctx)

	tokens.Save("stale-token")
	provider.emit(&identity.Identity{UID: "u", Email: "a@example.com", IDToken: "stale-token"})
	waitSettled(t, store, func(s Snapshot) bool { return s.Identity != nil })

	// Any backend call through the adapter trips the 401 interceptor. The
	// record fetch above already did, but make it explicit.
	if _, err := client.UserOrders(ctx); !api.IsUnauthorized(err) {
		t.Fatalf("err = %v, want 401", err)
	}

	if tok, _ := tokens.Load(); tok != "" {
		t.Fatalf("token = %q, want purged", tok)
	}

	if got := store.Check(); got != DecisionDenied {
		t.Errorf("guard after purge = %v, want denied", got)
	}
}
