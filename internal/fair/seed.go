package fair

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// ServerSeedBytes is the entropy of a server seed (256 bits).
const ServerSeedBytes = 32

// ErrEntropyUnavailable means the secure random source failed. Callers
// must surface it; there is no weaker fallback.
var ErrEntropyUnavailable = errors.New("entropy unavailable")

// GenerateServerSeed returns a fresh hex-encoded server seed drawn from
// crypto/rand.
func GenerateServerSeed() (string, error) {
	buf := make([]byte, ServerSeedBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	return hex.EncodeToString(buf), nil
}

// HashServerSeed returns the SHA-256 commitment published to the client
// before the seed is revealed.
func HashServerSeed(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}
