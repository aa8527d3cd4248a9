// Package auth verifies bearer tokens minted by a Cognito user pool and
// decides which routes require one.
package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// DefaultKeyTTL is how long a fetched key set stays fresh. Pool signing keys
// rotate rarely; an unknown kid forces a refresh regardless of age.
const DefaultKeyTTL = 10 * time.Minute

type jwk struct {
	KeyId    string `json:"kid"`
	KeyType  string `json:"kty"`
	Use      string `json:"use"`
	Modulus  string `json:"n"`
	Exponent string `json:"e"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

// KeyCache lazily fetches the pool's JWKS document and serves parsed RSA
// public keys by kid. Safe for concurrent use.
type KeyCache struct {
	URL        string
	TTL        time.Duration
	HTTPClient *http.Client
	Now        func() time.Time

	mutex     sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewKeyCache(jwksUrl string) *KeyCache {
	return &KeyCache{
		URL: jwksUrl,
	}
}

func (kc *KeyCache) now() time.Time {
	if kc.Now != nil {
		return kc.Now()
	}
	return time.Now()
}

func (kc *KeyCache) ttl() time.Duration {
	if kc.TTL > 0 {
		return kc.TTL
	}
	return DefaultKeyTTL
}

func (kc *KeyCache) client() *http.Client {
	if kc.HTTPClient != nil {
		return kc.HTTPClient
	}
	return http.DefaultClient
}

// Key returns the public key for kid, refreshing the cached set when it is
// stale or the kid is unseen.
func (kc *KeyCache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	kc.mutex.Lock()
	defer kc.mutex.Unlock()
	fresh := kc.keys != nil && kc.now().Sub(kc.fetchedAt) < kc.ttl()
	if fresh {
		if key, ok := kc.keys[kid]; ok {
			return key, nil
		}
	}
	if err := kc.refreshLocked(ctx); err != nil {
		return nil, err
	}
	key, ok := kc.keys[kid]
	if !ok {
		return nil, fmt.Errorf("no signing key with kid %q", kid)
	}
	return key, nil
}

func (kc *KeyCache) refreshLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, kc.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create key set request: %w", err)
	}
	resp, err := kc.client().Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch key set: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("key set endpoint returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read key set: %w", err)
	}
	var set jwkSet
	if err := json.Unmarshal(body, &set); err != nil {
		return fmt.Errorf("failed to parse key set: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, key := range set.Keys {
		if key.KeyType != "RSA" {
			continue
		}
		public, err := parseRSAKey(key)
		if err != nil {
			return fmt.Errorf("failed to parse key %q: %w", key.KeyId, err)
		}
		keys[key.KeyId] = public
	}
	kc.keys = keys
	kc.fetchedAt = kc.now()
	return nil
}

func parseRSAKey(key jwk) (*rsa.PublicKey, error) {
	modulus, err := base64.RawURLEncoding.DecodeString(key.Modulus)
	if err != nil {
		return nil, err
	}
	exponent, err := base64.RawURLEncoding.DecodeString(key.Exponent)
	if err != nil {
		return nil, err
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(modulus),
		E: int(new(big.Int).SetBytes(exponent).Int64()),
	}, nil
}
