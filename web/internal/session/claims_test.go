package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func makeToken(claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	// ParseUnverified never checks signatures, so a fake one keeps the
	// three-part JWT structure intact.
	tokenString, _ := token.SigningString()
	return tokenString + ".fake_signature"
}

func TestParseIdentity_ValidToken(t *testing.T) {
	tok := makeToken(jwt.MapClaims{
		"user_id": "uid1",
		"email":   "chef@example.com",
		"name":    "Chef A",
		"picture": "https://img.example.com/a.png",
		"exp":     float64(time.Now().Add(time.Hour).Unix()),
	})

	id, err := ParseIdentity(tok)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id.UID != "uid1" || id.Email != "chef@example.com" || id.DisplayName != "Chef A" {
		t.Errorf("identity = %+v", id)
	}
	if id.IDToken != tok {
		t.Error("identity should carry the raw token")
	}
}

func TestParseIdentity_SubFallback(t *testing.T) {
	tok := makeToken(jwt.MapClaims{
		"sub":   "uid2",
		"email": "a@example.com",
		"exp":   float64(time.Now().Add(time.Hour).Unix()),
	})

	id, err := ParseIdentity(tok)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id.UID != "uid2" {
		t.Errorf("UID = %q, want uid2", id.UID)
	}
}

func TestParseIdentity_Expired(t *testing.T) {
	tok := makeToken(jwt.MapClaims{
		"user_id": "uid1",
		"exp":     float64(time.Now().Add(-time.Hour).Unix()),
	})

	if _, err := ParseIdentity(tok); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestParseIdentity_MissingSubject(t *testing.T) {
	tok := makeToken(jwt.MapClaims{
		"email": "a@example.com",
		"exp":   float64(time.Now().Add(time.Hour).Unix()),
	})

	if _, err := ParseIdentity(tok); !errors.Is(err, ErrMissingSubject) {
		t.Errorf("err = %v, want ErrMissingSubject", err)
	}
}

func TestParseIdentity_Garbage(t *testing.T) {
	if _, err := ParseIdentity(""); !errors.Is(err, ErrNoToken) {
		t.Errorf("empty: err = %v, want ErrNoToken", err)
	}
	if _, err := ParseIdentity("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: err = %v, want ErrInvalidToken", err)
	}
}
