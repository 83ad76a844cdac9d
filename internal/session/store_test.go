package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/internal/identity"
)

// fakeProvider drives auth-state transitions by hand.
type fakeProvider struct {
	mu       sync.Mutex
	events   chan identity.Event
	current  *identity.Identity
	signOuts int
	updates  []identity.Profile
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{events: make(chan identity.Event, 16)}
}

func (f *fakeProvider) emit(id *identity.Identity) {
	f.mu.Lock()
	f.current = id
	f.mu.Unlock()
	f.events <- identity.Event{Identity: id}
}

func (f *fakeProvider) SignUp(ctx context.Context, email, password string) (*identity.Identity, error) {
	id := &identity.Identity{UID: "u-" + email, Email: email, IDToken: "tok-" + email}
	f.emit(id)
	return id, nil
}

func (f *fakeProvider) SignIn(ctx context.Context, email, password string) (*identity.Identity, error) {
	if password == "wrong" {
		return nil, &identity.AuthError{Code: "INVALID_PASSWORD", Message: "Incorrect password. Please try again."}
	}
	id := &identity.Identity{UID: "u-" + email, Email: email, IDToken: "tok-" + email}
	f.emit(id)
	return id, nil
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signOuts++
	wasSignedIn := f.current != nil
	f.current = nil
	f.mu.Unlock()
	if wasSignedIn {
		f.events <- identity.Event{Identity: nil}
	}
	return nil
}

func (f *fakeProvider) UpdateProfile(ctx context.Context, patch identity.Profile) (*identity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return nil, identity.ErrNotAuthenticated
	}
	f.updates = append(f.updates, patch)
	return f.current, nil
}

func (f *fakeProvider) Events() <-chan identity.Event { return f.events }

// fakeDirectory serves session records by email, optionally failing.
type fakeDirectory struct {
	mu      sync.Mutex
	records map[string]*api.User
	err     error
}

func (d *fakeDirectory) UserByEmail(ctx context.Context, email string) (*api.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	rec, ok := d.records[email]
	if !ok {
		return nil, &api.Error{StatusCode: 404, Message: "user not found"}
	}
	return rec, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, dir *fakeDirectory) (*Store, *fakeProvider, *MemoryStore, func()) {
	t.Helper()
	provider := newFakeProvider()
	tokens := NewMemoryStore()
	store := New(provider, tokens, dir, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx)
		close(done)
	}()

	return store, provider, tokens, func() {
		cancel()
		<-done
	}
}

// waitSettled polls until the store reports a resolved snapshot matching ok.
func waitSettled(t *testing.T, store *Store, ok func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := store.Snapshot()
		if snap.Resolved && ok(snap) {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("store never settled as expected; last snapshot: %+v", store.Snapshot())
	return Snapshot{}
}

func TestStore_RecordNeverPresentWithoutIdentity(t *testing.T) {
	dir := &fakeDirectory{records: map[string]*api.User{
		"chef@example.com": {Email: "chef@example.com", Role: api.RoleChef, Status: api.StatusActive},
	}}
	store, provider, tokens, stop := newTestStore(t, dir)
	defer stop()

	tokens.Save("tok-chef@example.com")

	transitions := []*identity.Identity{
		{UID: "u1", Email: "chef@example.com", IDToken: "t1"},
		nil,
		{UID: "u1", Email: "chef@example.com", IDToken: "t2"},
		nil,
	}

	for _, id := range transitions {
		provider.emit(id)
		want := id
		snap := waitSettled(t, store, func(s Snapshot) bool {
			if want == nil {
				return s.Identity == nil
			}
			return s.Identity != nil && s.Identity.IDToken == want.IDToken
		})

		if snap.Identity == nil && snap.Record != nil {
			t.Fatalf("record present while identity absent: %+v", snap)
		}
	}
}

func TestStore_OrderedTransitions(t *testing.T) {
	dir := &fakeDirectory{records: map[string]*api.User{
		"a@example.com": {Email: "a@example.com", Role: api.RoleUser},
		"b@example.com": {Email: "b@example.com", Role: api.RoleChef},
	}}
	store, provider, tokens, stop := newTestStore(t, dir)
	defer stop()
	tokens.Save("tok")

	// Rapid sign-out-then-sign-in: the final settled state must belong to the
	// last identity, with its record, never a's record under b's identity.
	provider.emit(&identity.Identity{UID: "a", Email: "a@example.com", IDToken: "ta"})
	provider.emit(nil)
	provider.emit(&identity.Identity{UID: "b", Email: "b@example.com", IDToken: "tb"})

	snap := waitSettled(t, store, func(s Snapshot) bool {
		return s.Identity != nil && s.Identity.UID == "b" && s.Record != nil
	})

	if snap.Record.Email != "b@example.com" {
		t.Errorf("record attributed to wrong identity: %+v", snap.Record)
	}
	if got := snap.EffectiveRole(); got != api.RoleChef {
		t.Errorf("effective role = %q, want chef", got)
	}
}

func TestStore_FetchFailureDegradesToNoRole(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("connection refused")}
	store, provider, tokens, stop := newTestStore(t, dir)
	defer stop()
	tokens.Save("tok")

	provider.emit(&identity.Identity{UID: "u", Email: "x@example.com", IDToken: "t"})

	snap := waitSettled(t, store, func(s Snapshot) bool { return s.Identity != nil })
	if snap.Record != nil {
		t.Fatalf("record should be absent after fetch failure, got %+v", snap.Record)
	}
	if got := snap.EffectiveRole(); got != api.RoleUser {
		t.Errorf("effective role = %q, want user default", got)
	}

	// An admin-gated route must be forbidden, not allowed and not a crash.
	if got := store.Check(api.RoleAdmin); got != DecisionForbidden {
		t.Errorf("guard = %v, want forbidden", got)
	}
}

func TestStore_FetchSessionRecordWithoutCredential(t *testing.T) {
	dir := &fakeDirectory{records: map[string]*api.User{
		"x@example.com": {Email: "x@example.com", Role: api.RoleUser},
	}}
	store, provider, tokens, stop := newTestStore(t, dir)
	defer stop()

	tokens.Save("tok")
	provider.emit(&identity.Identity{UID: "u", Email: "x@example.com", IDToken: "t"})
	waitSettled(t, store, func(s Snapshot) bool { return s.Record != nil })

	// Credential vanishes; a record refresh is the expected-unauthenticated
	// path: record cleared, no error surfaced.
	tokens.Clear()
	store.FetchSessionRecord(context.Background(), "x@example.com")

	if snap := store.Snapshot(); snap.Record != nil {
		t.Errorf("record should be cleared when no credential is stored, got %+v", snap.Record)
	}
}

func TestStore_SignOutIdempotent(t *testing.T) {
	dir := &fakeDirectory{records: map[string]*api.User{}}
	store, provider, tokens, stop := newTestStore(t, dir)
	defer stop()

	tokens.Save("tok")
	provider.emit(&identity.Identity{UID: "u", Email: "x@example.com", IDToken: "t"})
	waitSettled(t, store, func(s Snapshot) bool { return s.Identity != nil })

	ctx := context.Background()
	if err := store.SignOut(ctx); err != nil {
		t.Fatalf("first sign-out: %v", err)
	}
	waitSettled(t, store, func(s Snapshot) bool { return s.Identity == nil })

	if err := store.SignOut(ctx); err != nil {
		t.Fatalf("second sign-out: %v", err)
	}

	snap := store.Snapshot()
	if snap.Identity != nil || snap.Record != nil {
		t.Errorf("state after double sign-out: %+v", snap)
	}
	if tok, _ := tokens.Load(); tok != "" {
		t.Errorf("credential still present after sign-out: %q", tok)
	}
}

func TestStore_UpdateProfileRequiresIdentity(t *testing.T) {
	dir := &fakeDirectory{records: map[string]*api.User{}}
	store, provider, _, stop := newTestStore(t, dir)
	defer stop()

	provider.emit(nil)
	waitSettled(t, store, func(s Snapshot) bool { return true })

	err := store.UpdateProfile(context.Background(), identity.Profile{DisplayName: "X"})
	if !errors.Is(err, identity.ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestStore_SubscribeObservesTransitions(t *testing.T) {
	dir := &fakeDirectory{records: map[string]*api.User{}}
	store, provider, _, stop := newTestStore(t, dir)
	defer stop()

	ch, cancel := store.Subscribe()
	defer cancel()

	provider.emit(&identity.Identity{UID: "u", Email: "x@example.com", IDToken: "t"})

	select {
	case snap := <-ch:
		if !snap.Resolved {
			t.Errorf("observed snapshot not resolved: %+v", snap)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot observed")
	}
}
