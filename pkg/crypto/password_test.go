package crypto

import (
	"bytes"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if bytes.Equal(hash, []byte("pw")) {
		t.Fatalf("hash looks like plaintext: %q", hash)
	}
	if err := ComparePassword(hash, "pw"); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch for wrong password")
	}
}

func TestHashPasswordSalts(t *testing.T) {
	a, err := HashPassword("pw", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := HashPassword("pw", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("expected distinct salted hashes")
	}
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("pw", 0)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cost, err := bcrypt.Cost(hash)
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", cost)
	}
}
