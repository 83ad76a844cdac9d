package session

import (
	"testing"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/internal/identity"
)

func signedIn(email string) *identity.Identity {
	return &identity.Identity{UID: "u-" + email, Email: email, IDToken: "tok"}
}

func TestEvaluate_LoadingAlwaysWins(t *testing.T) {
	// While unresolved, identity/record/token values are irrelevant.
	snaps := []Snapshot{
		{},
		{Identity: signedIn("a@example.com")},
		{Identity: signedIn("a@example.com"), Record: &api.User{Role: api.RoleAdmin}},
	}
	for _, snap := range snaps {
		got := Evaluate(GuardInput{Snapshot: snap, Token: "tok", AllowedRoles: []api.Role{api.RoleAdmin}})
		if got != DecisionLoading {
			t.Errorf("unresolved snapshot %+v: decision = %v, want loading", snap, got)
		}
	}
}

func TestEvaluate_Policy(t *testing.T) {
	chefRecord := &api.User{Email: "chef@example.com", Role: api.RoleChef, Status: api.StatusActive}

	tests := []struct {
		name    string
		snap    Snapshot
		token   string
		allowed []api.Role
		want    Decision
	}{
		{
			name:  "no token denies",
			snap:  Snapshot{Resolved: true, Identity: signedIn("a@example.com")},
			token: "",
			want:  DecisionDenied,
		},
		{
			name:  "no identity denies even with token",
			snap:  Snapshot{Resolved: true},
			token: "tok",
			want:  DecisionDenied,
		},
		{
			name:  "authenticated, no role set required",
			snap:  Snapshot{Resolved: true, Identity: signedIn("a@example.com")},
			token: "tok",
			want:  DecisionAllowed,
		},
		{
			name:    "chef on chef route",
			snap:    Snapshot{Resolved: true, Identity: signedIn("chef@example.com"), Record: chefRecord},
			token:   "tok",
			allowed: []api.Role{api.RoleChef},
			want:    DecisionAllowed,
		},
		{
			name:    "chef on admin route",
			snap:    Snapshot{Resolved: true, Identity: signedIn("chef@example.com"), Record: chefRecord},
			token:   "tok",
			allowed: []api.Role{api.RoleAdmin},
			want:    DecisionForbidden,
		},
		{
			name:    "unresolved record defaults to user, denied elevation",
			snap:    Snapshot{Resolved: true, Identity: signedIn("a@example.com")},
			token:   "tok",
			allowed: []api.Role{api.RoleChef, api.RoleAdmin},
			want:    DecisionForbidden,
		},
		{
			name:    "unresolved record defaults to user, allowed on user route",
			snap:    Snapshot{Resolved: true, Identity: signedIn("a@example.com")},
			token:   "tok",
			allowed: []api.Role{api.RoleUser},
			want:    DecisionAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(GuardInput{Snapshot: tt.snap, Token: tt.token, AllowedRoles: tt.allowed})
			if got != tt.want {
				t.Errorf("decision = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheck_DeniedInvalidatesCachedState(t *testing.T) {
	dir := &fakeDirectory{records: map[string]*api.User{}}
	store, provider, tokens, stop := newTestStore(t, dir)
	defer stop()

	tokens.Save("tok")
	provider.emit(signedIn("a@example.com"))
	waitSettled(t, store, func(s Snapshot) bool { return s.Identity != nil })

	// The credential vanishes out from under the cached identity.
	tokens.Clear()

	if got := store.Check(); got != DecisionDenied {
		t.Fatalf("decision = %v, want denied", got)
	}

	snap := store.Snapshot()
	if snap.Identity != nil || snap.Record != nil {
		t.Errorf("cached state survived denial: %+v", snap)
	}
}

func TestDecisionString(t *testing.T) {
	cases := map[Decision]string{
		DecisionLoading:   "loading",
		DecisionDenied:    "denied",
		DecisionForbidden: "forbidden",
		DecisionAllowed:   "allowed",
	}
	for d, want := range cases {
		if d.String() != want {
			t.Errorf("%d.String() = %q, want %q", d, d.String(), want)
		}
	}
}
