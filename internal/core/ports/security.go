package ports

import "time"

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. A malformed hash never matches.
	Verify(plaintext, hash string) bool
}

// TokenClaims is the verified content of an access token.
type TokenClaims struct {
	SubjectID    string
	SubjectEmail string
	ExpiresAt    time.Time
}

// TokenCodec issues and verifies signed access tokens.
type TokenCodec interface {
	Issue(subjectID, subjectEmail string, ttl time.Duration) (string, error)
	Verify(token string) (*TokenClaims, error)
}
