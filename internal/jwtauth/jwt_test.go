package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dErrors "rwa-ledger/pkg/domain-errors"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewService("test-signing-key", "rwa-ledger")

	token, err := svc.GenerateToken("addr-issuer", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "addr-issuer", claims.Address)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	token, err := NewService("key-one", "rwa-ledger").GenerateToken("addr-issuer", time.Hour)
	require.NoError(t, err)

	_, err = NewService("key-two", "rwa-ledger").ValidateToken(token)
	require.Error(t, err)
	require.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewService("test-signing-key", "rwa-ledger")

	token, err := svc.GenerateToken("addr-issuer", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	require.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewService("test-signing-key", "rwa-ledger")

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.ValidateToken(token)
		require.Error(t, err, "token %q", token)
		require.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
	}
}
