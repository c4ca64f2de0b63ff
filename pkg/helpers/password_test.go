package helpers

import "testing"

func TestHashPassword_RandomSalt(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("same plaintext should yield distinct hashes")
	}
	if h1 == "secret1" {
		t.Fatal("hash must not equal plaintext")
	}
}

func TestCompareHashAndPassword(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !CompareHashAndPassword(h, "secret1") {
		t.Fatal("verify with correct password failed")
	}
	if CompareHashAndPassword(h, "secret2") {
		t.Fatal("verify with wrong password succeeded")
	}
	if CompareHashAndPassword("not-a-hash", "secret1") {
		t.Fatal("verify against malformed hash succeeded")
	}
}
