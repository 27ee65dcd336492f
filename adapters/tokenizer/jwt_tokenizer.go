package tokenizer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/seedvault/core"
)

// SessionTTL is the validity window of every issued session token
const SessionTTL = 24 * time.Hour

// DevelopmentSecret signs tokens when no secret is configured outside
// production. Anyone can forge tokens signed with it.
const DevelopmentSecret = "seedvault-development-secret-do-not-use"

// JWTTokenizer issues and verifies HS256 session tokens
type JWTTokenizer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customizes a JWTTokenizer
type Option func(*JWTTokenizer)

// WithClock replaces the time source used for iat, exp and validation
func WithClock(now func() time.Time) Option {
	return func(j *JWTTokenizer) { j.now = now }
}

// WithTTL overrides SessionTTL
func WithTTL(ttl time.Duration) Option {
	return func(j *JWTTokenizer) { j.ttl = ttl }
}

// NewJWTTokenizer creates a tokenizer signing with secret. An empty secret is
// fatal in production and replaced by DevelopmentSecret elsewhere.
func NewJWTTokenizer(secret string, production bool, opts ...Option) (*JWTTokenizer, error) {
	if secret == "" {
		if production {
			return nil, core.ErrMissingSecret
		}
		secret = DevelopmentSecret
	}

	j := &JWTTokenizer{
		secret: []byte(secret),
		ttl:    SessionTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// UsesDevelopmentSecret reports whether the insecure fallback key is active
func (j *JWTTokenizer) UsesDevelopmentSecret() bool {
	return string(j.secret) == DevelopmentSecret
}

// Issue signs a session token for the identity
func (j *JWTTokenizer) Issue(identity core.Identity) (string, error) {
	if identity.UserID == "" || identity.NullifierHash == "" || !identity.Level.Valid() {
		return "", core.ErrInvalidClaims
	}

	now := j.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		UserID:            identity.UserID,
		NullifierHash:     identity.NullifierHash,
		VerificationLevel: string(identity.Level),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// Verify parses a session token. Every failure collapses into ok == false so
// callers cannot tell why a token was refused.
func (j *JWTTokenizer) Verify(tokenStr string) (core.Session, bool) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !token.Valid {
		return core.Session{}, false
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return core.Session{}, false
	}

	level := core.VerificationLevel(claims.VerificationLevel)
	if claims.UserID == "" || claims.NullifierHash == "" || !level.Valid() {
		return core.Session{}, false
	}

	session := core.Session{
		Identity: core.Identity{
			UserID:        claims.UserID,
			NullifierHash: claims.NullifierHash,
			Level:         level,
		},
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}

	return session, true
}
