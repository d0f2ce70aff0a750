// Package jwtauth issues and validates the access tokens callers present to
// the gateway. The token binds a bearer to an on-ledger address; every role
// check downstream is an equality test against that address.
package jwtauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"rwa-ledger/internal/platform/middleware"
	dErrors "rwa-ledger/pkg/domain-errors"
)

// Claims are the JWT claims for gateway access tokens.
type Claims struct {
	Address string `json:"addr"`
	jwt.RegisteredClaims
}

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
}

func NewService(signingKey, issuer string) *Service {
	return &Service{signingKey: []byte(signingKey), issuer: issuer}
}

// GenerateToken mints a token for the given ledger address. The server has
// no issuing endpoint; operators mint tokens out of band with the shared
// signing key, so this doubles as the reference implementation for external
// issuers.
func (s *Service) GenerateToken(address string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.New(dErrors.CodeInternal, "sign token: "+err.Error())
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning the caller claims the
// middleware needs.
func (s *Service) ValidateToken(tokenString string) (*middleware.CallerClaims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
	}
	if claims.Address == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token carries no address")
	}
	return &middleware.CallerClaims{Address: claims.Address}, nil
}
