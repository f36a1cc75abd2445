package id

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Generator creates opaque identifiers: job run ids and session tokens.
type Generator interface {
	NewID() (string, error)
	NewToken() (string, error)
}

type RandomGenerator struct {
	tokenBytes int
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{tokenBytes: 32}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf, err := g.read(16)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NewToken returns a URL safe bearer token.
func (g *RandomGenerator) NewToken() (string, error) {
	buf, err := g.read(g.tokenBytes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (g *RandomGenerator) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return buf, nil
}
