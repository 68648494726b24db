package insight

import "errors"

var (
	ErrDaemonUnavailable = errors.New("inference daemon unavailable")
	ErrInvalidResponse   = errors.New("invalid response from inference daemon")
)
