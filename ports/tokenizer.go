package ports

import "github.com/layer-3/seedvault/core"

// Tokenizer converts between identities and session tokens
type Tokenizer interface {
	// Issue signs a session token for the identity
	Issue(identity core.Identity) (string, error)

	// Verify returns the identity carried by a token. ok is false for any
	// token that is malformed, foreign, expired or missing claims.
	Verify(token string) (session core.Session, ok bool)
}
