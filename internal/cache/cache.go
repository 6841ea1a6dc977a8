package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Cache stores semantic split results keyed by SplitKey
type Cache interface {
	Get(key string) ([]string, bool)
	Set(key string, blocks []string, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// SplitKey identifies one split request. The paragraph is hashed so keys stay
// short; provider, model and word budget are kept readable.
func SplitKey(provider, model string, maxWords int, paragraph string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(paragraph)))
	return strings.Join([]string{
		"notechunk", "v1", provider, model, strconv.Itoa(maxWords), hex.EncodeToString(hash[:]),
	}, ":")
}

func clone(blocks []string) []string {
	return append([]string(nil), blocks...)
}
