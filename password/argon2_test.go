package password

import (
	"strings"
	"testing"
)

func newTestHasher(t *testing.T) *Argon2 {
	t.Helper()

	h, err := NewArgon2(Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	h := newTestHasher(t)

	encoded, err := h.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", encoded)
	}

	ok, err := h.Verify("correct horse battery", encoded)
	if err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v, want true", ok, err)
	}

	ok, err = h.Verify("wrong password", encoded)
	if err != nil || ok {
		t.Fatalf("Verify(wrong) = %v, %v, want false", ok, err)
	}
}

func TestHashesAreSalted(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password are identical, salt missing")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	h := newTestHasher(t)

	for _, bad := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=8192,t=1,p=1$short$short",
		"$bcrypt$v=19$m=8192,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA==$AAAAAAAAAAAAAAAAAAAAAA==",
	} {
		if _, err := h.Verify("x", bad); err == nil {
			t.Fatalf("Verify(%q): expected error", bad)
		}
	}
}

func TestNewArgon2EnforcesFloors(t *testing.T) {
	_, err := NewArgon2(Config{Memory: 1, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	if err == nil {
		t.Fatal("expected error for weak memory parameter")
	}
}
