package random

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// Alphanumeric is the alphabet used for opaque session identifiers
const Alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Random provides identifier generation that can be mocked for testing
type Random interface {
	// UUID returns a new random (v4) UUID string
	UUID() string

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// UUID returns a random UUID
func (r *CryptoRandom) UUID() string {
	return uuid.NewString()
}

// String generates a random string of the given length from the given alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	max := big.NewInt(int64(len(alphabet)))
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		result[i] = alphabet[n.Int64()]
	}
	return string(result)
}
