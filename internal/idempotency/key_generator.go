package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateKey hashes the provided parts into a deterministic fixed-length key.
// Telegram update identifiers vary in shape, so keys are normalized through
// SHA-256 before they reach Redis.
func GenerateKey(parts ...interface{}) string {
	h := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(h, "%v:", part)
	}

	return hex.EncodeToString(h.Sum(nil))
}
