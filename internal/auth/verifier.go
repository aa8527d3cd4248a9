package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"worthwatch.me/watchlists/internal/exceptions"
)

// Identity is the caller's resolved principal, extracted from a verified
// token and carried through the request context.
type Identity struct {
	UserId   string
	Email    string
	Username string
	ClientId string
}

type cognitoClaims struct {
	Email    string `json:"email"`
	Username string `json:"cognito:username"`
	ClientId string `json:"client_id"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// Verifier checks bearer tokens against the pool's signing keys. Tokens must
// be RS256, unexpired, from the configured issuer, and addressed to the
// configured client either through aud (id tokens) or client_id (access
// tokens).
type Verifier struct {
	Issuer   string
	ClientId string
	Keys     *KeyCache
	Now      func() time.Time
}

func NewVerifier(region string, userPoolId string, clientId string) *Verifier {
	issuer := fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolId)
	return &Verifier{
		Issuer:   issuer,
		ClientId: clientId,
		Keys:     NewKeyCache(issuer + "/.well-known/jwks.json"),
	}
}

func (v *Verifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, errors.New("token header is missing kid")
		}
		return v.Keys.Key(ctx, kid)
	}
}

func (v *Verifier) options() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.Issuer),
		jwt.WithExpirationRequired(),
	}
	if v.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(v.Now))
	}
	return opts
}

// Verify parses and validates the raw token, returning the caller identity.
// Every failure reduces to an Unauthorized error; the underlying cause is
// retained for logging only.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (Identity, error) {
	claims := &cognitoClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, v.keyFunc(ctx), v.options()...)
	if err != nil {
		return Identity{}, exceptions.TokenVerificationFailed(err)
	}
	if err := v.checkAudience(claims); err != nil {
		return Identity{}, exceptions.TokenVerificationFailed(err)
	}
	if claims.Subject == "" {
		return Identity{}, exceptions.TokenVerificationFailed(errors.New("token has no subject"))
	}
	return Identity{
		UserId:   claims.Subject,
		Email:    claims.Email,
		Username: claims.Username,
		ClientId: claims.ClientId,
	}, nil
}

func (v *Verifier) checkAudience(claims *cognitoClaims) error {
	// An unset client id is a deployment mistake, not a wildcard.
	if v.ClientId == "" {
		return errors.New("verifier has no client id configured")
	}
	for _, audience := range claims.Audience {
		if audience == v.ClientId {
			return nil
		}
	}
	if claims.ClientId == v.ClientId {
		return nil
	}
	return fmt.Errorf("token was not issued for client %s", v.ClientId)
}

// BearerToken extracts the raw token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", exceptions.MissingToken()
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", exceptions.InvalidHeaderFormat()
	}
	return token, nil
}
