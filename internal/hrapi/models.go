package hrapi

// ServerTimeResponse from GET /attendance/time. The kiosk displays server
// time so the client clock is never trusted.
type ServerTimeResponse struct {
	ISOTime string `json:"iso_time"`
}

// EmployeeInfo from GET /attendance/me/info: the geofence configuration and
// shift bounds for the authenticated employee.
type EmployeeInfo struct {
	Name           string  `json:"name"`
	WorkLat        float64 `json:"work_lat"`
	WorkLng        float64 `json:"work_lng"`
	GeofenceRadius float64 `json:"geofence_radius"`
	StdCheckIn     string  `json:"std_check_in"`
	StdCheckOut    string  `json:"std_check_out"`
}

// EnrollmentImages from GET /attendance/me/images: the enrolled reference
// photos as base64 data URLs, held in memory only.
type EnrollmentImages struct {
	Images       []string `json:"images"`
	EmployeeName string   `json:"employee_name"`
	Count        int      `json:"count"`
}

// MatchFaceRequest for POST /attendance/match-face (remote strategy).
type MatchFaceRequest struct {
	Image string `json:"image"` // base64
}

// BlinkDetection is the server-side liveness verdict for one frame.
type BlinkDetection struct {
	IsBlinking bool `json:"is_blinking"`
}

// MatchFaceResponse from POST /attendance/match-face.
type MatchFaceResponse struct {
	Matched        bool            `json:"matched"`
	Confidence     float64         `json:"confidence"`
	Reason         string          `json:"reason,omitempty"`
	BlinkDetection *BlinkDetection `json:"blink_detection,omitempty"`
}

// CheckPayload for POST /attendance/check-in and /attendance/check-out.
type CheckPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RequestPayload for POST /attendance/request, the manual-exception
// fallback reviewed by an administrator.
type RequestPayload struct {
	Type     string   `json:"type"` // "check_in" or "check_out"
	Reason   string   `json:"reason"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	Snapshot string   `json:"snapshot,omitempty"` // base64, optional
}

// MessageResponse is the generic backend acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the backend's 4xx detail envelope.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
