// Package camera owns the capture device for the duration of one
// verification session. The device is an exclusive resource: Stop must run
// on every exit path so no handle leaks across attempts.
package camera

import (
	"context"
)

// Controller is the capture contract the verification session drives.
type Controller interface {
	// Start acquires exclusive access to the video device. Fails with
	// domain.ErrCameraUnavailable when no device exists or access is
	// denied.
	Start(ctx context.Context) error

	// CaptureFrame samples the current video frame into a still JPEG.
	CaptureFrame(ctx context.Context) ([]byte, error)

	// Stop releases the device. Idempotent.
	Stop() error
}
