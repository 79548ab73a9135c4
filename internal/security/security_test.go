package security

import (
	"errors"
	"testing"
	"time"
)

func TestSessionCookieRoundTrip(t *testing.T) {
	sid := NewSessionID()
	signed, err := SignSessionCookie("secret", sid, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := ParseSessionCookie(signed, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SessionID != sid {
		t.Fatalf("expected %s, got %s", sid, claims.SessionID)
	}
}

func TestSessionCookieRejectsTampering(t *testing.T) {
	signed, err := SignSessionCookie("secret", NewSessionID(), time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseSessionCookie(signed, "other"); !errors.Is(err, ErrInvalidSessionCookie) {
		t.Fatalf("expected invalid cookie for wrong secret, got %v", err)
	}
	if _, err := ParseSessionCookie("garbage", "secret"); !errors.Is(err, ErrInvalidSessionCookie) {
		t.Fatalf("expected invalid cookie for garbage, got %v", err)
	}

	expired, err := SignSessionCookie("secret", NewSessionID(), -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseSessionCookie(expired, "secret"); err == nil {
		t.Fatal("expected expired cookie to be rejected")
	}
}

func TestStorageKeyIsStableAndOpaque(t *testing.T) {
	sid := NewSessionID()
	if StorageKey(sid) != StorageKey(sid) {
		t.Fatal("storage key must be deterministic")
	}
	if StorageKey(sid) == sid || len(StorageKey(sid)) != 64 {
		t.Fatalf("unexpected storage key %q", StorageKey(sid))
	}
	if StorageKey(sid) == StorageKey(NewSessionID()) {
		t.Fatal("distinct sessions share a key")
	}
}

func TestCSRF(t *testing.T) {
	token := CSRFToken("k", "sid-1")
	if !ValidCSRF("k", "sid-1", token) {
		t.Fatal("expected token to validate")
	}
	if ValidCSRF("k", "sid-2", token) {
		t.Fatal("token must be bound to its session")
	}
	if ValidCSRF("k", "", "") {
		t.Fatal("empty token must not validate")
	}
}
