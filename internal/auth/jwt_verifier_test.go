package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thecrew/internal/domain"
	"thecrew/internal/domain/models"
)

func testVerifier(t *testing.T) (*JWKSVerifier, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	set := map[string]any{"keys": []map[string]string{{
		"kty": "RSA",
		"kid": "test-key",
		"alg": "RS256",
		"use": "sig",
		"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
	}}}
	raw, err := json.Marshal(set)
	require.NoError(t, err)

	jwks, err := keyfunc.NewJWKSetJSON(raw)
	require.NoError(t, err)

	return newJWKSVerifier(jwks, slog.New(slog.NewTextHandler(io.Discard, nil))), key
}

func signExternal(t *testing.T, key *rsa.PrivateKey, claims *models.ExternalClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key"
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func TestJWKSVerifierAcceptsValidToken(t *testing.T) {
	v, key := testVerifier(t)

	token := signExternal(t, key, &models.ExternalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "idp-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "bob@example.com",
		Role:  "authenticated",
	})

	claims, err := v.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", claims.Email)
}

func TestJWKSVerifierRejections(t *testing.T) {
	v, key := testVerifier(t)
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		claims *models.ExternalClaims
	}{
		{"anonymous role", &models.ExternalClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "s", ExpiresAt: future}, Email: "a@b.c", Role: "anon"}},
		{"missing email", &models.ExternalClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "s", ExpiresAt: future}}},
		{"expired", &models.ExternalClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "s", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}, Email: "a@b.c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyToken(signExternal(t, key, tt.claims))
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
