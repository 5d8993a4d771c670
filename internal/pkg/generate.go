package pkg

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateNewSessionID returns a fresh player session identifier.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// GenerateGameID returns a short shareable game code.
func GenerateGameID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
