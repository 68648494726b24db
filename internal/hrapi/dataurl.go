package hrapi

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeDataURL decodes a base64 data URL ("data:image/jpeg;base64,...")
// into raw bytes. Bare base64 without the data: prefix is also accepted
// since older backend versions served enrollment images that way.
func DecodeDataURL(s string) ([]byte, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx < 0 {
			return nil, fmt.Errorf("data url missing comma separator")
		}
		meta := s[len("data:"):idx]
		if !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("data url is not base64 encoded")
		}
		payload = s[idx+1:]
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64 payload: %w", err)
	}
	return decoded, nil
}
