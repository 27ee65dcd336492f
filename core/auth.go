package core

import "time"

// VerificationLevel is the World ID credential strength behind an identity
type VerificationLevel string

const (
	VerificationOrb    VerificationLevel = "orb"
	VerificationDevice VerificationLevel = "device"
)

// Valid reports whether the level is one the service recognizes
func (l VerificationLevel) Valid() bool {
	return l == VerificationOrb || l == VerificationDevice
}

// Identity is the verified caller carried inside a session token
type Identity struct {
	UserID        string            // Opaque user identifier
	NullifierHash string            // Proof-derived pseudonymous hash, used as the rate limit key
	Level         VerificationLevel // Verification tier of the proof
}

// Session is an identity plus the validity window of the token that carries it
type Session struct {
	Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// User is the directory record for a verified human
type User struct {
	ID            string
	NullifierHash string
	Level         VerificationLevel
	WalletAddress string
	CreatedAt     time.Time
}

// Proof is a World ID zero-knowledge proof as submitted by the mini-app
type Proof struct {
	Proof         string
	MerkleRoot    string
	NullifierHash string
	Level         VerificationLevel
	Action        string
	Signal        string
}

// WalletMessage holds the fields of a SIWE message the service relies on
type WalletMessage struct {
	Domain         string
	Address        string
	Statement      string
	URI            string
	Version        string
	ChainID        int64
	Nonce          string
	IssuedAt       time.Time
	ExpirationTime time.Time // Zero when the message carries no expiry
	NotBefore      time.Time // Zero when the message is valid immediately
}
