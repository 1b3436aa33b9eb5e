package service

import (
	"errors"
	"testing"

	"github.com/Raymond9734/customer-directory-api/internal/models"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher()

	hash, err := hasher.Hash("password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "password" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := hasher.Compare(hash, "password"); err != nil {
		t.Errorf("Compare() with correct password error = %v", err)
	}

	err = hasher.Compare(hash, "wrong")
	if !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("Compare() with wrong password error = %v, want ErrInvalidCredentials", err)
	}
}

func TestBcryptHasher_SaltedHashesDiffer(t *testing.T) {
	hasher := NewBcryptHasher()

	first, err := hasher.Hash("password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := hasher.Hash("password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if first == second {
		t.Error("hashes of the same password should differ by salt")
	}
}
