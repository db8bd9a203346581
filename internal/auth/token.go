package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sorjordet/sorjordet/pkg/jwt"
)

// Issuer is the fixed issuer claim. Tokens carrying any other value are
// rejected identically to tokens with a bad signature.
const Issuer = "jwtauth/sorjordet.no"

// legacyExpiry is the fixed far-future Unix timestamp the original deployment
// put in every token. Only used behind the NonExpiringTokens compatibility
// flag; see Config.
const legacyExpiry int64 = 10000000000

// Claims is the signed token payload.
type Claims struct {
	jwt.StandardClaims
}

// TokenIssuer mints signed bearer tokens for authenticated subjects.
type TokenIssuer struct {
	svc         *jwt.Service
	ttl         time.Duration
	nonExpiring bool
}

// NewTokenIssuer builds a TokenIssuer signing with the shared secret store.
func NewTokenIssuer(secrets *Secrets, cfg Config) (*TokenIssuer, error) {
	svc, err := jwt.New(secrets.signingKey)
	if err != nil {
		return nil, err
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &TokenIssuer{
		svc:         svc,
		ttl:         ttl,
		nonExpiring: cfg.NonExpiringTokens,
	}, nil
}

// Issue creates a signed token for the subject.
func (t *TokenIssuer) Issue(subject string) (string, error) {
	now := time.Now()

	expiresAt := now.Add(t.ttl).Unix()
	if t.nonExpiring {
		expiresAt = legacyExpiry
	}

	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    Issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: expiresAt,
		},
	}

	token, err := t.svc.Generate(claims)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}
	return token, nil
}
