package session

import (
	"context"
	"errors"
	"testing"
)

type memSource struct {
	tokens map[string][]string
	err    error
	writes int
}

func newMemSource() *memSource {
	return &memSource{tokens: map[string][]string{}}
}

func (s *memSource) RefreshTokens(_ context.Context, userID string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]string, len(s.tokens[userID]))
	copy(out, s.tokens[userID])
	return out, nil
}

func (s *memSource) SetRefreshTokens(_ context.Context, userID string, tokens []string) error {
	if s.err != nil {
		return s.err
	}
	s.writes++
	s.tokens[userID] = tokens
	return nil
}

func TestRegisterAppendsWithoutDedup(t *testing.T) {
	src := newMemSource()
	reg := NewRegistry(src, 0)
	ctx := context.Background()

	for _, tok := range []string{"a", "b", "a"} {
		if err := reg.Register(ctx, "u1", tok); err != nil {
			t.Fatalf("Register(%q): %v", tok, err)
		}
	}

	got := src.tokens["u1"]
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "a" {
		t.Fatalf("tokens = %v, want [a b a]", got)
	}
}

func TestRegisterCapKeepsNewest(t *testing.T) {
	src := newMemSource()
	reg := NewRegistry(src, 2)
	ctx := context.Background()

	for _, tok := range []string{"a", "b", "c"} {
		if err := reg.Register(ctx, "u1", tok); err != nil {
			t.Fatalf("Register(%q): %v", tok, err)
		}
	}

	got := src.tokens["u1"]
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("tokens = %v, want [b c]", got)
	}
}

func TestIsActive(t *testing.T) {
	src := newMemSource()
	src.tokens["u1"] = []string{"a", "b"}
	reg := NewRegistry(src, 0)
	ctx := context.Background()

	ok, err := reg.IsActive(ctx, "u1", "b")
	if err != nil || !ok {
		t.Fatalf("IsActive(b) = %v, %v, want true", ok, err)
	}
	ok, err = reg.IsActive(ctx, "u1", "z")
	if err != nil || ok {
		t.Fatalf("IsActive(z) = %v, %v, want false", ok, err)
	}
	ok, err = reg.IsActive(ctx, "unknown", "a")
	if err != nil || ok {
		t.Fatalf("IsActive(unknown user) = %v, %v, want false", ok, err)
	}
}

func TestRevokeRemovesFirstMatchOnly(t *testing.T) {
	src := newMemSource()
	src.tokens["u1"] = []string{"a", "b", "a"}
	reg := NewRegistry(src, 0)
	ctx := context.Background()

	if err := reg.Revoke(ctx, "u1", "a"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	got := src.tokens["u1"]
	if len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Fatalf("tokens = %v, want [b a]", got)
	}
}

func TestRevokeAbsentIsNoOp(t *testing.T) {
	src := newMemSource()
	src.tokens["u1"] = []string{"a"}
	reg := NewRegistry(src, 0)

	if err := reg.Revoke(context.Background(), "u1", "z"); err != nil {
		t.Fatalf("Revoke absent: %v", err)
	}
	if src.writes != 0 {
		t.Fatalf("writes = %d, want 0", src.writes)
	}
}

func TestSourceErrorsPropagate(t *testing.T) {
	src := newMemSource()
	src.err = errors.New("store down")
	reg := NewRegistry(src, 0)
	ctx := context.Background()

	if err := reg.Register(ctx, "u1", "a"); err == nil {
		t.Fatal("Register: expected error")
	}
	if _, err := reg.IsActive(ctx, "u1", "a"); err == nil {
		t.Fatal("IsActive: expected error")
	}
	if err := reg.Revoke(ctx, "u1", "a"); err == nil {
		t.Fatal("Revoke: expected error")
	}
}
