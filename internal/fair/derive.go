package fair

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidGameParameters rejects out-of-range game settings before
// any derivation happens, so displayed odds always match computed odds.
var ErrInvalidGameParameters = errors.New("invalid game parameters")

// Game identifiers mixed into the derivation message so the same seed
// pair never maps onto two games' outcome spaces.
const (
	gameDice  = "dice"
	gameCrash = "crash"
	gameMines = "mines"
)

// Each derived float consumes 13 hex chars (52 bits) of digest, the
// widest slice that fits a float64 mantissa exactly.
const floatHexChars = 13

// floatSource yields a deterministic stream of floats in [0, 1) for a
// (serverSeed, clientSeed, gameType, nonce) tuple. The first digest is
// HMAC-SHA256 keyed by the server seed over "clientSeed:gameType:nonce";
// once its 52-bit windows are exhausted the message gains a ":round"
// suffix and is hashed again.
type floatSource struct {
	serverSeed string
	message    string
	round      int
	digest     string
	offset     int
}

func newFloatSource(serverSeed, clientSeed, gameType string, nonce int64) *floatSource {
	s := &floatSource{
		serverSeed: serverSeed,
		message:    fmt.Sprintf("%s:%s:%d", clientSeed, gameType, nonce),
	}
	s.rehash()
	return s
}

func (s *floatSource) rehash() {
	msg := s.message
	if s.round > 0 {
		msg = fmt.Sprintf("%s:%d", s.message, s.round)
	}

	h := hmac.New(sha256.New, []byte(s.serverSeed))
	h.Write([]byte(msg))
	s.digest = hex.EncodeToString(h.Sum(nil))
	s.offset = 0
}

func (s *floatSource) next() float64 {
	if s.offset+floatHexChars > len(s.digest) {
		s.round++
		s.rehash()
	}

	chunk := s.digest[s.offset : s.offset+floatHexChars]
	s.offset += floatHexChars

	n, err := strconv.ParseUint(chunk, 16, 64)
	if err != nil {
		// digest is hex by construction
		panic(fmt.Sprintf("fair: bad digest chunk %q: %v", chunk, err))
	}

	return float64(n) / math.Pow(2, 52)
}

// Unit returns the canonical pseudo-random value in [0, 1) for the
// tuple. Same inputs always produce the same output.
func Unit(serverSeed, clientSeed, gameType string, nonce int64) float64 {
	return newFloatSource(serverSeed, clientSeed, gameType, nonce).next()
}
