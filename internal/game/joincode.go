package game

import (
	"crypto/rand"
	"strings"
)

// NewJoinCode draws a code from JoinCodeSymbols. The alphabet has 32
// symbols so the byte modulo is unbiased.
func NewJoinCode() (string, error) {
	buf := make([]byte, JoinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = JoinCodeSymbols[int(buf[i])%len(JoinCodeSymbols)]
	}
	return string(buf), nil
}

// NormalizeJoinCode upper-cases and trims user input.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidJoinCode reports whether code could have been issued by NewJoinCode.
func ValidJoinCode(code string) bool {
	if len(code) != JoinCodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(JoinCodeSymbols, r) {
			return false
		}
	}
	return true
}
