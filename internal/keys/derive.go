package keys

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDF info strings separating the two secrets derived per credential.
const (
	infoAPIKey      = "api-key"
	infoIngestToken = "ingest-token"
)

// Derived secret lengths in bytes before hex encoding.
const (
	apiKeyBytes      = 32
	ingestTokenBytes = 24
	seedBytes        = 32
)

// NewSeed returns a fresh random derivation seed.
func NewSeed() ([]byte, error) {
	seed := make([]byte, seedBytes)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("failed to generate seed: %w", err)
	}
	return seed, nil
}

// deriveSecret expands a stored seed into the plaintext secret.
// Issuance and reveal both go through this one function, so a revealed
// value always matches what was handed out.
func deriveSecret(seed []byte, serverSalt, info string, n int) (string, error) {
	r := hkdf.New(sha256.New, seed, []byte(serverSalt), []byte(info))
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return "", fmt.Errorf("failed to derive secret: %w", err)
	}
	return hex.EncodeToString(out), nil
}

// DeriveAPIKey derives the dashboard-facing API secret from its seed.
func DeriveAPIKey(seed []byte, serverSalt string) (string, error) {
	return deriveSecret(seed, serverSalt, infoAPIKey, apiKeyBytes)
}

// DeriveIngestToken derives the detector-facing ingest token from its seed.
func DeriveIngestToken(seed []byte, serverSalt string) (string, error) {
	return deriveSecret(seed, serverSalt, infoIngestToken, ingestTokenBytes)
}

// HashSecret computes the stored verification hash: hex(SHA-256(secret || salt)).
func HashSecret(secret, serverSalt string) string {
	sum := sha256.Sum256([]byte(secret + serverSalt))
	return hex.EncodeToString(sum[:])
}

// HashEqual compares two verification hashes in constant time.
func HashEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
