package token

import (
	"errors"
	"testing"
	"time"
)

func newTestManager(t *testing.T, accessTTL, refreshTTL time.Duration) *Manager {
	t.Helper()

	m, err := NewManager(Config{
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		Issuer:        "taskcore-test",
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	m := newTestManager(t, 15*time.Minute, 7*24*time.Hour)

	access, err := m.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	claims, err := m.Verify(access, KindAccess)
	if err != nil {
		t.Fatalf("Verify access: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("UserID = %q, want user-1", claims.UserID)
	}

	refresh, err := m.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := m.Verify(refresh, KindRefresh); err != nil {
		t.Fatalf("Verify refresh: %v", err)
	}
}

func TestKindsAreNotInterchangeable(t *testing.T) {
	m := newTestManager(t, 15*time.Minute, 7*24*time.Hour)

	refresh, err := m.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	if _, err := m.Verify(refresh, KindAccess); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("refresh verified as access: err = %v, want ErrSignatureInvalid", err)
	}

	access, err := m.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := m.Verify(access, KindRefresh); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("access verified as refresh: err = %v, want ErrSignatureInvalid", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := newTestManager(t, time.Millisecond, time.Millisecond)

	access, err := m.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := m.Verify(access, KindAccess); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	m := newTestManager(t, 15*time.Minute, 7*24*time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.Verify(tok, KindAccess); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Verify(%q): err = %v, want ErrMalformed", tok, err)
		}
	}
}

func TestDecodeIgnoresExpiryAndSignature(t *testing.T) {
	m := newTestManager(t, time.Millisecond, time.Millisecond)

	refresh, err := m.IssueRefresh("user-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	claims, err := m.Decode(refresh)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("UserID = %q, want user-1", claims.UserID)
	}
}

func TestNewManagerRejectsSharedSecret(t *testing.T) {
	_, err := NewManager(Config{
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		AccessSecret:  []byte("same"),
		RefreshSecret: []byte("same"),
	})
	if err == nil {
		t.Fatal("expected error for shared access/refresh secret")
	}
}
