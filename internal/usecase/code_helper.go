package usecase

import (
	"crypto/rand"
	"io"
	"strings"
)

// generateActivationCode creates a secure, random, and human-readable
// activation code. Format: XXXX-XXXX-XXXX-XXXX
func generateActivationCode() (string, error) {
	// A character set that avoids ambiguous characters like O/0, I/1, l.
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLength = 16

	buffer := make([]byte, codeLength)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}

	for i := 0; i < codeLength; i++ {
		buffer[i] = chars[int(buffer[i])%len(chars)]
	}

	var b strings.Builder
	for i := 0; i < codeLength; i += 4 {
		if i > 0 {
			b.WriteByte('-')
		}
		b.Write(buffer[i : i+4])
	}
	return b.String(), nil
}

// normalizeCode uppercases a user-entered code and strips spaces so that
// pasted codes with stray whitespace still match.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
