// Package session is the single source of truth for "who is the current user
// and what can they do": the provider identity, the backend user record, the
// durable bearer credential, and the route-guard decision built on top.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/internal/identity"
)

// UserDirectory is the slice of the backend API the store needs: session
// record lookup by email.
type UserDirectory interface {
	UserByEmail(ctx context.Context, email string) (*api.User, error)
}

// Snapshot is one settled view of the session. Record is never non-nil while
// Identity is nil.
type Snapshot struct {
	Identity *identity.Identity
	Record   *api.User
	// Resolved is false until the initial auth-state determination (identity
	// plus record, or their failure paths) has completed. Consumers must not
	// make redirect decisions while unresolved.
	Resolved bool
}

// EffectiveRole is the role authorization decisions use. An unresolved or
// absent record defaults to RoleUser so an unknown role is never treated as
// elevated.
func (s Snapshot) EffectiveRole() api.Role {
	if s.Record == nil {
		return api.RoleUser
	}
	return api.ParseRole(string(s.Record.Role))
}

// Store owns the session lifecycle. All writes to the snapshot happen on the
// Run goroutine or under mu from the operation methods; auth-state events are
// processed strictly in arrival order, one at a time, so a rapid
// sign-out-then-sign-in can never attribute a record to the wrong identity.
type Store struct {
	provider identity.Provider
	tokens   api.TokenStore
	users    UserDirectory
	log      *slog.Logger

	mu      sync.Mutex
	cur     Snapshot
	subs    map[int]chan Snapshot
	nextSub int
}

// New creates a session store. Call Run to attach the provider subscription.
func New(provider identity.Provider, tokens api.TokenStore, users UserDirectory, log *slog.Logger) *Store {
	return &Store{
		provider: provider,
		tokens:   tokens,
		users:    users,
		log:      log.With(slog.String("component", "session")),
		subs:     make(map[int]chan Snapshot),
	}
}

// Run consumes the provider's auth-state stream until ctx is done. It is the
// store's single subscription for the process lifetime; each transition fully
// settles (identity, record, resolved flag, broadcast) before the next is
// read.
func (s *Store) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.provider.Events():
			if !ok {
				return
			}
			s.applyTransition(ctx, ev.Identity)
		}
	}
}

func (s *Store) applyTransition(ctx context.Context, id *identity.Identity) {
	var record *api.User
	if id != nil && id.Email != "" {
		record = s.lookupRecord(ctx, id.Email)
	}

	s.mu.Lock()
	s.cur = Snapshot{Identity: id, Record: record, Resolved: true}
	snap := s.cur
	s.mu.Unlock()

	s.log.Debug("auth state settled",
		slog.Bool("authenticated", id != nil),
		slog.Bool("record", record != nil))
	s.broadcast(snap)
}

// lookupRecord implements the non-fatal record fetch: no credential or a
// failed fetch yields an absent record, never an error. Pages degrade to "no
// role" instead of crashing.
func (s *Store) lookupRecord(ctx context.Context, email string) *api.User {
	token, err := s.tokens.Load()
	if err != nil || token == "" {
		return nil
	}
	record, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		s.log.Warn("session record fetch failed",
			slog.String("email", email),
			slog.String("error", err.Error()))
		return nil
	}
	return record
}

// Snapshot returns the current settled view.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Subscribe registers an observer of session snapshots. The returned cancel
// func must be called to release the subscription. Slow observers miss
// intermediate snapshots rather than blocking the store.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Store) broadcast(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Replace the stale pending snapshot with the latest.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// SignUp creates an identity via the provider. Loading goes unresolved for
// the duration; the auth-state event re-resolves it.
func (s *Store) SignUp(ctx context.Context, email, password string) (*identity.Identity, error) {
	s.markUnresolved()
	id, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		s.markResolved()
		return nil, err
	}
	return id, nil
}

// SignIn resolves an identity via the provider. On success the caller
// persists the bearer credential (PersistCredential) before the record fetch
// can succeed.
func (s *Store) SignIn(ctx context.Context, email, password string) (*identity.Identity, error) {
	s.markUnresolved()
	id, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.markResolved()
		return nil, err
	}
	return id, nil
}

// PersistCredential stores the bearer token from a fresh sign-in.
func (s *Store) PersistCredential(token string) error {
	return s.tokens.Save(token)
}

// SignOut purges the bearer credential, clears the record, and delegates to
// the provider. Safe to call when already signed out.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.tokens.Clear(); err != nil {
		s.log.Error("failed to clear credential on sign-out", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.cur.Record = nil
	s.mu.Unlock()

	return s.provider.SignOut(ctx)
}

// UpdateProfile forwards display-name/photo updates to the provider for the
// current identity.
func (s *Store) UpdateProfile(ctx context.Context, patch identity.Profile) error {
	s.mu.Lock()
	signedIn := s.cur.Identity != nil
	s.mu.Unlock()
	if !signedIn {
		return identity.ErrNotAuthenticated
	}
	_, err := s.provider.UpdateProfile(ctx, patch)
	return err
}

// FetchSessionRecord refreshes the backend user record for email. The
// no-credential path and fetch failures clear the record and return nil; an
// unauthenticated session is an expected state, not an error.
func (s *Store) FetchSessionRecord(ctx context.Context, email string) {
	record := s.lookupRecord(ctx, email)

	s.mu.Lock()
	if s.cur.Identity == nil {
		// Identity went away while the fetch was in flight; a record must
		// never be present without one.
		record = nil
	}
	s.cur.Record = record
	snap := s.cur
	s.mu.Unlock()

	s.broadcast(snap)
}

// Invalidate clears the cached identity and record. The route guard calls
// this on DENIED: if the credential vanished, the cached identity is not to
// be trusted even if still present.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.cur.Identity = nil
	s.cur.Record = nil
	snap := s.cur
	s.mu.Unlock()
	s.broadcast(snap)
}

func (s *Store) markUnresolved() {
	s.mu.Lock()
	s.cur.Resolved = false
	s.mu.Unlock()
}

func (s *Store) markResolved() {
	s.mu.Lock()
	s.cur.Resolved = true
	snap := s.cur
	s.mu.Unlock()
	s.broadcast(snap)
}
