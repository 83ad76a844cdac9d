package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	// Absent file means signed out, not an error.
	tok, err := store.Load()
	if err != nil || tok != "" {
		t.Fatalf("Load on absent file = %q, %v", tok, err)
	}

	creds := &Credentials{
		AccessToken: "tok1",
		Email:       "a@example.com",
		DisplayName: "A",
		ExpiresAt:   time.Now().Add(time.Hour).UTC(),
	}
	if err := store.SaveCredentials(creds); err != nil {
		t.Fatal(err)
	}

	tok, err = store.Load()
	if err != nil || tok != "tok1" {
		t.Fatalf("Load = %q, %v", tok, err)
	}

	loaded, err := store.LoadCredentials()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Email != "a@example.com" || loaded.IsExpired() {
		t.Errorf("loaded = %+v", loaded)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("credentials file mode = %o, want 600", perm)
	}
}

func TestFileStore_SavePreservesIdentityFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, _ := NewFileStore(path)

	store.SaveCredentials(&Credentials{AccessToken: "old", Email: "a@example.com"})
	if err := store.Save("new"); err != nil {
		t.Fatal(err)
	}

	creds, _ := store.LoadCredentials()
	if creds.AccessToken != "new" || creds.Email != "a@example.com" {
		t.Errorf("creds = %+v", creds)
	}
}

func TestFileStore_ClearIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, _ := NewFileStore(path)

	store.Save("tok")
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	// Clearing again must succeed.
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if tok, _ := store.Load(); tok != "" {
		t.Errorf("token survived clear: %q", tok)
	}
}

func TestCredentials_IsExpired(t *testing.T) {
	c := &Credentials{}
	if c.IsExpired() {
		t.Error("zero expiry should never read as expired")
	}
	c.ExpiresAt = time.Now().Add(-time.Minute)
	if !c.IsExpired() {
		t.Error("past expiry should read as expired")
	}
}
