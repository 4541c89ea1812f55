package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaintextVerifier(t *testing.T) {
	v := PlaintextVerifier{}

	stored, err := v.Hash("secret")
	require.NoError(t, err)
	assert.Equal(t, "secret", stored)

	assert.NoError(t, v.Compare("secret", "secret"))
	assert.ErrorIs(t, v.Compare("secret", "wrong"), ErrCredentialMismatch)
}

func TestBcryptVerifier(t *testing.T) {
	v := BcryptVerifier{Cost: 4}

	stored, err := v.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored)

	assert.NoError(t, v.Compare(stored, "secret"))
	assert.ErrorIs(t, v.Compare(stored, "wrong"), ErrCredentialMismatch)
}

func TestNewCredentialVerifier(t *testing.T) {
	v, err := NewCredentialVerifier("", 10)
	require.NoError(t, err)
	assert.IsType(t, PlaintextVerifier{}, v)

	v, err = NewCredentialVerifier("bcrypt", 10)
	require.NoError(t, err)
	assert.IsType(t, BcryptVerifier{}, v)

	_, err = NewCredentialVerifier("rot13", 10)
	assert.Error(t, err)
}
