package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey returns a stable hex digest of a login so logs never carry the raw value.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
