package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordProducesFreshSalt(t *testing.T) {
	first, err := HashPassword("secret-pw", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("secret-pw", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if first == second {
		t.Fatalf("expected different digests for the same plaintext, got %q twice", first)
	}
	if !VerifyPassword("secret-pw", first) || !VerifyPassword("secret-pw", second) {
		t.Fatal("digest did not verify against its own plaintext")
	}
}

func TestVerifyPasswordRejectsWrongPassword(t *testing.T) {
	digest, err := HashPassword("right-pw", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if VerifyPassword("wrong-pw", digest) {
		t.Fatal("expected verification to fail for a different plaintext")
	}
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	// 不正な形式のダイジェストでもpanicやerrorにはならず false になること
	for _, digest := range []string{"", "not-a-digest", "$2a$broken"} {
		if VerifyPassword("any", digest) {
			t.Fatalf("expected false for malformed digest %q", digest)
		}
	}
}
