package core

import "errors"

var (
	ErrInvalidClaims      = errors.New("invalid claims")
	ErrMissingSecret      = errors.New("signing secret is required in production")
	ErrInvalidNonce       = errors.New("invalid or expired nonce")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrInvalidMessage     = errors.New("invalid siwe message")
	ErrVerificationFailed = errors.New("identity proof verification failed")
	ErrUpstream           = errors.New("upstream service unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
)
