// Package checksum derives content fingerprints used as ETags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Fields digests an ordered list of strings. Each field is length-prefixed so
// ("ab", "c") and ("a", "bc") never collide.
func Fields(fields ...string) string {
	h := sha256.New()
	var prefix [8]byte
	for _, f := range fields {
		n := uint64(len(f))
		for i := range prefix {
			prefix[i] = byte(n >> (8 * i))
		}
		h.Write(prefix[:])
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}
