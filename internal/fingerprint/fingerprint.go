// Package fingerprint derives stable identifiers from chunk text.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Length is the number of hex characters in a fingerprint
const Length = 16

// Of returns the first 16 hex characters of the SHA-256 digest of text's UTF-8 bytes.
// Downstream systems join on this value, so it must never depend on anything but text.
func Of(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:Length]
}
