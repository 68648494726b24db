package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmployeeProfile is the employee record as served by the HR backend, including
// the work-site geofence used to gate attendance actions.
type EmployeeProfile struct {
	EmployeeID     string  `json:"emp_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email,omitempty"`
	Department     string  `json:"department,omitempty"`
	WorkLat        float64 `json:"work_lat"`
	WorkLng        float64 `json:"work_lng"`
	GeofenceRadius float64 `json:"geofence_radius"`
	StdCheckIn     string  `json:"std_check_in,omitempty"`
	StdCheckOut    string  `json:"std_check_out,omitempty"`
}

// AttendanceKind distinguishes the two submittable attendance events.
type AttendanceKind string

const (
	CheckIn  AttendanceKind = "check_in"
	CheckOut AttendanceKind = "check_out"
)

// Valid reports whether k is one of the known attendance kinds.
func (k AttendanceKind) Valid() bool {
	return k == CheckIn || k == CheckOut
}

// AttendanceRecord mirrors the backend's per-day attendance row.
type AttendanceRecord struct {
	EmployeeID   string     `json:"emp_id"`
	Date         string     `json:"date"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	Status       string     `json:"status"`
}

// AttendanceRequest is the manual-exception fallback submitted when automated
// verification fails: reviewed by an administrator, never auto-approved.
type AttendanceRequest struct {
	ID       uuid.UUID      `json:"id,omitempty"`
	Kind     AttendanceKind `json:"type"`
	Reason   string         `json:"reason"`
	Lat      *float64       `json:"lat,omitempty"`
	Lng      *float64       `json:"lng,omitempty"`
	Snapshot []byte         `json:"snapshot,omitempty"`
	Status   string         `json:"status,omitempty"`
}

// LeaveRecord mirrors the backend's leave-request row. The agent never mutates
// these; they appear in profile lookups only.
type LeaveRecord struct {
	EmployeeID string    `json:"emp_id"`
	Type       string    `json:"leave_type"`
	From       time.Time `json:"from_date"`
	To         time.Time `json:"to_date"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
}
