package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ContentHash fingerprints analysis input for result caching.
func ContentHash(inputType, value string) string {
	sum := sha256.Sum256([]byte(inputType + "\x00" + value))
	return hex.EncodeToString(sum[:])
}

func ResultKey(contentHash string) string {
	return fmt.Sprintf("result:%s", contentHash)
}

func RateLimitKey(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}
