package hrapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign(t *testing.T) {
	signature := Sign("kiosk-secret", []byte(`{"lat":20.59,"lng":78.96}`))
	assert.Contains(t, signature, "sha256=")
	assert.True(t, VerifySignature("kiosk-secret", []byte(`{"lat":20.59,"lng":78.96}`), signature))
}

func TestVerifySignature(t *testing.T) {
	secret := "kiosk-secret"
	payload := []byte(`{"lat":20.59,"lng":78.96}`)
	valid := Sign(secret, payload)

	tests := []struct {
		name      string
		secret    string
		payload   []byte
		signature string
		expected  bool
	}{
		{
			name:      "valid signature",
			secret:    secret,
			payload:   payload,
			signature: valid,
			expected:  true,
		},
		{
			name:      "wrong secret",
			secret:    "other-secret",
			payload:   payload,
			signature: valid,
			expected:  false,
		},
		{
			name:      "tampered payload",
			secret:    secret,
			payload:   []byte(`{"lat":0,"lng":0}`),
			signature: valid,
			expected:  false,
		},
		{
			name:      "malformed signature",
			secret:    secret,
			payload:   payload,
			signature: "sha256=not-hex",
			expected:  false,
		},
		{
			name:      "empty signature",
			secret:    secret,
			payload:   payload,
			signature: "",
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, VerifySignature(tt.secret, tt.payload, tt.signature))
		})
	}
}
