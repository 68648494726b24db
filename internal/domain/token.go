package domain

import (
	"crypto/rand"
	"math/big"
)

const (
	base62Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// TokenLength is the random suffix length of generated credentials.
	TokenLength = 32

	// Credential prefixes. The prefix makes a leaked value identifiable in
	// logs without revealing which kiosk it belongs to.
	KioskTokenPrefix    = "fg_kiosk_"
	SigningSecretPrefix = "fg_sign_"
)

// GenerateToken creates a new credential with the given prefix and a
// cryptographically random base62 suffix.
func GenerateToken(prefix string) (string, error) {
	suffix, err := generateSecureRandomString(TokenLength)
	if err != nil {
		return "", err
	}
	return prefix + suffix, nil
}

func generateSecureRandomString(length int) (string, error) {
	result := make([]byte, length)
	base62Len := big.NewInt(int64(len(base62Chars)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, base62Len)
		if err != nil {
			return "", err
		}
		result[i] = base62Chars[num.Int64()]
	}

	return string(result), nil
}
