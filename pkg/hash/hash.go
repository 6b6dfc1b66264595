package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// IteratedSHA256 applies SHA256 iteratively n times to produce a derived hash.
// Values of n below 1 are treated as 1.
func IteratedSHA256(input string, iterations int) string {
	if iterations < 1 {
		iterations = 1
	}
	data := []byte(input)
	for range iterations {
		h := sha256.Sum256(data)
		data = h[:]
	}
	return hex.EncodeToString(data)
}

// IdentityHasher turns a raw network identity into an opaque voter token.
// Raw identities must never be stored; only tokens go into vote sets.
type IdentityHasher struct {
	salt       string
	iterations int
}

// NewIdentityHasher returns a hasher. With an empty salt and one iteration
// the token is the plain SHA256 hex digest of the identity.
func NewIdentityHasher(salt string, iterations int) *IdentityHasher {
	if iterations < 1 {
		iterations = 1
	}
	return &IdentityHasher{salt: salt, iterations: iterations}
}

// Token returns the voter token for rawIdentity.
func (h *IdentityHasher) Token(rawIdentity string) string {
	return IteratedSHA256(h.salt+rawIdentity, h.iterations)
}
