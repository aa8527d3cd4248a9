package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worthwatch.me/watchlists/internal/exceptions"
)

const (
	testIssuer   = "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_TEST"
	testClientId = "client-abc"
	testKid      = "key-1"
)

type signingPool struct {
	key    *rsa.PrivateKey
	server *httptest.Server
	hits   int
}

func newSigningPool(t *testing.T) *signingPool {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pool := &signingPool{key: key}
	pool.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pool.hits++
		document := map[string]interface{}{
			"keys": []map[string]string{{
				"kid": testKid,
				"kty": "RSA",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(document))
	}))
	t.Cleanup(pool.server.Close)
	return pool
}

func (sp *signingPool) sign(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKid
	signed, err := token.SignedString(sp.key)
	require.NoError(t, err)
	return signed
}

func (sp *signingPool) verifier(now time.Time) *Verifier {
	return &Verifier{
		Issuer:   testIssuer,
		ClientId: testClientId,
		Keys: &KeyCache{
			URL: sp.server.URL,
			Now: func() time.Time { return now },
		},
		Now: func() time.Time { return now },
	}
}

func poolClaims(now time.Time) cognitoClaims {
	return cognitoClaims{
		Email:    "nick@example.com",
		Username: "nick",
		TokenUse: "id",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testClientId},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestVerifyAcceptsValidToken(t *testing.T) {
	pool := newSigningPool(t)
	now := time.Now()
	signed := pool.sign(t, poolClaims(now))

	identity, err := pool.verifier(now).Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", identity.UserId)
	assert.Equal(t, "nick@example.com", identity.Email)
	assert.Equal(t, "nick", identity.Username)
}

func TestVerifyAcceptsAccessTokenClientId(t *testing.T) {
	pool := newSigningPool(t)
	now := time.Now()
	claims := poolClaims(now)
	claims.Audience = nil
	claims.ClientId = testClientId
	claims.TokenUse = "access"
	signed := pool.sign(t, claims)

	identity, err := pool.verifier(now).Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, testClientId, identity.ClientId)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	pool := newSigningPool(t)
	now := time.Now()
	signed := pool.sign(t, poolClaims(now))

	_, err := pool.verifier(now.Add(2 * time.Hour)).Verify(context.Background(), signed)
	requireUnauthorized(t, err)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	pool := newSigningPool(t)
	now := time.Now()
	claims := poolClaims(now)
	claims.Issuer = "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_OTHER"
	signed := pool.sign(t, claims)

	_, err := pool.verifier(now).Verify(context.Background(), signed)
	requireUnauthorized(t, err)
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	pool := newSigningPool(t)
	now := time.Now()
	claims := poolClaims(now)
	claims.Audience = jwt.ClaimStrings{"some-other-client"}
	signed := pool.sign(t, claims)

	_, err := pool.verifier(now).Verify(context.Background(), signed)
	requireUnauthorized(t, err)
}

func TestVerifyRejectsWhenClientIdUnconfigured(t *testing.T) {
	pool := newSigningPool(t)
	now := time.Now()
	signed := pool.sign(t, poolClaims(now))

	verifier := pool.verifier(now)
	verifier.ClientId = ""
	_, err := verifier.Verify(context.Background(), signed)
	requireUnauthorized(t, err)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	pool := newSigningPool(t)
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, poolClaims(now))
	token.Header["kid"] = testKid
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = pool.verifier(now).Verify(context.Background(), signed)
	requireUnauthorized(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	pool := newSigningPool(t)
	_, err := pool.verifier(time.Now()).Verify(context.Background(), "not.a.token")
	requireUnauthorized(t, err)
}

func TestKeyCacheServesFromCacheWithinTTL(t *testing.T) {
	pool := newSigningPool(t)
	now := time.Now()
	cache := &KeyCache{
		URL: pool.server.URL,
		Now: func() time.Time { return now },
	}

	_, err := cache.Key(context.Background(), testKid)
	require.NoError(t, err)
	_, err = cache.Key(context.Background(), testKid)
	require.NoError(t, err)
	assert.Equal(t, 1, pool.hits)

	now = now.Add(DefaultKeyTTL + time.Second)
	_, err = cache.Key(context.Background(), testKid)
	require.NoError(t, err)
	assert.Equal(t, 2, pool.hits)
}

func TestKeyCacheRefreshesOnUnknownKid(t *testing.T) {
	pool := newSigningPool(t)
	cache := &KeyCache{URL: pool.server.URL}

	_, err := cache.Key(context.Background(), testKid)
	require.NoError(t, err)
	_, err = cache.Key(context.Background(), "rotated-away")
	require.Error(t, err)
	assert.Equal(t, 2, pool.hits)
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	token, err = BearerToken("bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	_, err = BearerToken("")
	requireUnauthorized(t, err)

	_, err = BearerToken("Basic abc123")
	requireUnauthorized(t, err)

	_, err = BearerToken("Bearer")
	requireUnauthorized(t, err)
}

func requireUnauthorized(t *testing.T, err error) {
	t.Helper()
	var unauthorized *exceptions.UnauthorizedError
	require.ErrorAs(t, err, &unauthorized)
	assert.Equal(t, 401, unauthorized.ToServiceError().StatusCode)
}
