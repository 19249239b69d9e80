package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// TokenBytes is the amount of entropy in a bearer token.
const TokenBytes = 32

// TokenGenerator mints opaque bearer tokens.
type TokenGenerator interface {
	Generate() (string, error)
}

type randomTokenGenerator struct {
	source io.Reader
}

// NewRandomTokenGenerator reads from crypto/rand and hex-encodes the result.
func NewRandomTokenGenerator() TokenGenerator {
	return &randomTokenGenerator{source: rand.Reader}
}

func (g *randomTokenGenerator) Generate() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := io.ReadFull(g.source, buf); err != nil {
		return "", fmt.Errorf("could not read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
