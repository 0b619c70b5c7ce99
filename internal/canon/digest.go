package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainReport separates report digests from any other hash of the same
// bytes.
const DomainReport = "pinvec/report/v1"

// Digest returns hex(SHA-256(domain || 0x00 || data)).
func Digest(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DigestOf canonicalizes v and digests it under domain.
func DigestOf(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return Digest(domain, data), nil
}
