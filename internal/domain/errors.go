package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Invalid or missing kiosk token",
		StatusCode: 401,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrCameraUnavailable = &AppError{
		Code:       "CAMERA_UNAVAILABLE",
		Message:    "Camera permission denied or no capture device present",
		StatusCode: 503,
	}

	ErrModelLoad = &AppError{
		Code:       "MODEL_LOAD_ERROR",
		Message:    "Face models could not be loaded from primary or fallback source",
		StatusCode: 503,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: 422,
	}

	ErrNoReferenceData = &AppError{
		Code:       "NO_REFERENCE_DATA",
		Message:    "No enrolled reference descriptors available",
		StatusCode: 422,
	}

	ErrNoEnrollment = &AppError{
		Code:       "NO_ENROLLMENT",
		Message:    "No face images enrolled for this employee, contact an administrator",
		StatusCode: 422,
	}

	ErrGeofenceViolation = &AppError{
		Code:       "GEOFENCE_VIOLATION",
		Message:    "Current position is outside the configured work geofence",
		StatusCode: 403,
	}

	ErrNetwork = &AppError{
		Code:       "NETWORK_ERROR",
		Message:    "Backend request failed",
		StatusCode: 502,
	}

	ErrSessionActive = &AppError{
		Code:       "SESSION_ACTIVE",
		Message:    "A verification session is already in progress",
		StatusCode: 409,
	}

	ErrNoSession = &AppError{
		Code:       "NO_SESSION",
		Message:    "No verification session is in progress",
		StatusCode: 404,
	}

	ErrInvalidState = &AppError{
		Code:       "INVALID_STATE",
		Message:    "Operation is not valid in the current session state",
		StatusCode: 409,
	}

	ErrAttemptsExhausted = &AppError{
		Code:       "ATTEMPTS_EXHAUSTED",
		Message:    "Too many failed match attempts, use the manual request fallback",
		StatusCode: 429,
	}

	ErrNotVerified = &AppError{
		Code:       "NOT_VERIFIED",
		Message:    "Attendance can only be submitted after a successful verification",
		StatusCode: 409,
	}
)
