package camera

import (
	"context"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/veridesk/facegate/internal/domain"
)

// Device is the gocv-backed Controller for a physical webcam.
type Device struct {
	// deviceID is whatever gocv.OpenVideoCapture accepts: an index ("0"),
	// a /dev/video path, or a capture URL.
	deviceID string

	// maxEdge bounds the longer side of captured frames; 0 disables
	// downscaling.
	maxEdge int

	mu  sync.Mutex
	cap *gocv.VideoCapture
}

// NewDevice creates a controller for the given capture device.
func NewDevice(deviceID string, maxEdge int) *Device {
	return &Device{
		deviceID: deviceID,
		maxEdge:  maxEdge,
	}
}

// Start opens the device. A second Start without a Stop is an error so a
// session cannot silently share the camera.
func (d *Device) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cap != nil {
		return domain.ErrCameraUnavailable.WithError(fmt.Errorf("device %s already open", d.deviceID))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cap, err := gocv.OpenVideoCapture(d.deviceID)
	if err != nil {
		return domain.ErrCameraUnavailable.WithError(err)
	}
	if !cap.IsOpened() {
		_ = cap.Close()
		return domain.ErrCameraUnavailable.WithError(fmt.Errorf("device %s did not open", d.deviceID))
	}

	d.cap = cap
	return nil
}

// CaptureFrame reads one frame and encodes it as JPEG, downscaled to the
// configured max edge.
func (d *Device) CaptureFrame(ctx context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cap == nil {
		return nil, domain.ErrCameraUnavailable.WithError(fmt.Errorf("device %s not started", d.deviceID))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat := gocv.NewMat()
	defer func() {
		_ = mat.Close()
	}()

	if ok := d.cap.Read(&mat); !ok || mat.Empty() {
		return nil, domain.ErrCameraUnavailable.WithError(fmt.Errorf("device %s returned no frame", d.deviceID))
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	jpeg := make([]byte, len(buf.GetBytes()))
	copy(jpeg, buf.GetBytes())

	if d.maxEdge > 0 {
		scaled, err := Downscale(jpeg, d.maxEdge)
		if err != nil {
			return nil, fmt.Errorf("downscale frame: %w", err)
		}
		jpeg = scaled
	}
	return jpeg, nil
}

// Stop releases the device. Safe to call repeatedly.
func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cap == nil {
		return nil
	}
	err := d.cap.Close()
	d.cap = nil
	if err != nil {
		return fmt.Errorf("close device %s: %w", d.deviceID, err)
	}
	return nil
}

// Ensure Device implements Controller
var _ Controller = (*Device)(nil)
