package idgen

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateSecureID returns an opaque public identifier of the form
// "<prefix>_<suffix>" where the suffix is length random characters
// drawn from [0-9a-z] using crypto/rand.
func GenerateSecureID(prefix string, length int) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("idgen: prefix must not be empty")
	}
	suffix, err := GenerateToken(length)
	if err != nil {
		return "", err
	}
	return prefix + "_" + suffix, nil
}

// GenerateToken returns an unprefixed random token of length characters
// drawn from [0-9a-z]. Used for share link tokens.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("idgen: length must be positive, got %d", length)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("idgen: read random bytes: %w", err)
	}

	var b strings.Builder
	b.Grow(length)
	for _, v := range buf {
		b.WriteByte(idAlphabet[int(v)%len(idAlphabet)])
	}
	return b.String(), nil
}

// ValidateIDFormat reports whether id is a well-formed identifier with
// the expected prefix and a non-empty [0-9a-z] suffix.
func ValidateIDFormat(id, expectedPrefix string) bool {
	want := expectedPrefix + "_"
	if !strings.HasPrefix(id, want) {
		return false
	}

	suffix := id[len(want):]
	if suffix == "" {
		return false
	}

	for _, char := range suffix {
		if (char < 'a' || char > 'z') && (char < '0' || char > '9') {
			return false
		}
	}
	return true
}
