package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrCredentialMismatch is returned when a supplied secret does not match the
// stored one.
var ErrCredentialMismatch = errors.New("credential mismatch")

// CredentialVerifier isolates secret storage and comparison. The historical
// contract stores and compares the secret in plaintext; the bcrypt mode is the
// hardened alternative behind the same interface.
type CredentialVerifier interface {
	// Hash prepares a secret for storage.
	Hash(plain string) (string, error)
	// Compare checks a supplied secret against the stored form.
	Compare(stored, plain string) error
}

// NewCredentialVerifier selects the verifier for the configured mode.
func NewCredentialVerifier(mode string, bcryptCost int) (CredentialVerifier, error) {
	switch mode {
	case "", "plaintext":
		return PlaintextVerifier{}, nil
	case "bcrypt":
		return BcryptVerifier{Cost: bcryptCost}, nil
	default:
		return nil, fmt.Errorf("unknown password mode %q", mode)
	}
}

// PlaintextVerifier stores secrets as-is and compares by equality.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Hash(plain string) (string, error) {
	return plain, nil
}

func (PlaintextVerifier) Compare(stored, plain string) error {
	if stored != plain {
		return ErrCredentialMismatch
	}
	return nil
}

// BcryptVerifier stores bcrypt hashes.
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), v.Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (v BcryptVerifier) Compare(stored, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)); err != nil {
		return ErrCredentialMismatch
	}
	return nil
}
