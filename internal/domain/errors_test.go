package domain

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			appErr:   ErrNoFaceDetected,
			expected: "No face detected in the image",
		},
		{
			name: "error with wrapped error",
			appErr: &AppError{
				Code:       "TEST_ERROR",
				Message:    "Test message",
				StatusCode: 500,
				Err:        errors.New("underlying error"),
			},
			expected: "Test message: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	appErr := &AppError{
		Code:       "TEST",
		Message:    "test",
		StatusCode: 500,
		Err:        underlying,
	}

	if got := appErr.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}

	// Test with nil error
	appErrNoWrap := ErrNoFaceDetected
	if got := appErrNoWrap.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestAppError_WithError(t *testing.T) {
	underlying := errors.New("camera open failed")
	newErr := ErrCameraUnavailable.WithError(underlying)

	if newErr.Code != ErrCameraUnavailable.Code {
		t.Errorf("Code = %v, want %v", newErr.Code, ErrCameraUnavailable.Code)
	}

	if newErr.StatusCode != ErrCameraUnavailable.StatusCode {
		t.Errorf("StatusCode = %v, want %v", newErr.StatusCode, ErrCameraUnavailable.StatusCode)
	}

	if newErr.Err != underlying {
		t.Errorf("Err = %v, want %v", newErr.Err, underlying)
	}

	// Check errors.Is still works
	if !errors.Is(newErr, underlying) {
		t.Errorf("errors.Is should return true for wrapped error")
	}
}

func TestErrorsAs(t *testing.T) {
	err := ErrNoEnrollment.WithError(errors.New("zero images returned"))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Errorf("errors.As should match AppError")
	}

	if appErr.Code != "NO_ENROLLMENT" {
		t.Errorf("Code = %v, want NO_ENROLLMENT", appErr.Code)
	}
}
