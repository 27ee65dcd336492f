package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the verified identity
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID            string `json:"userId"`
	NullifierHash     string `json:"nullifierHash"`
	VerificationLevel string `json:"verificationLevel"`
}
