package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Digest identifies a serialised payload by content.
type Digest string

// DigestOf hashes payload with SHA-256 and keeps the first 128 bits.
func DigestOf(payload []byte) Digest {
	sum := sha256.Sum256(payload)
	return Digest(hex.EncodeToString(sum[:16]))
}

// ETag renders the digest as a strong entity tag.
func (d Digest) ETag() string {
	return `"` + string(d) + `"`
}

// MatchesAny reports whether an If-None-Match header names this digest.
// Weak tags compare equal to their strong form and "*" matches anything.
func (d Digest) MatchesAny(header string) bool {
	if d == "" {
		return false
	}
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" {
			return true
		}
		if strings.TrimPrefix(tag, "W/") == d.ETag() {
			return true
		}
	}
	return false
}
