package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// SessionResponse represents a verification session
type SessionResponse struct {
	ID    string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Kind  string `json:"kind" example:"check_in"`
	State string `json:"state" example:"camera_ready"`
	Error string `json:"error,omitempty" example:"ATTEMPTS_EXHAUSTED"`
}

// CheckpointResponse represents one capture attempt's outcome
type CheckpointResponse struct {
	State          string  `json:"state" example:"liveness_waiting"`
	FaceFound      bool    `json:"face_found" example:"true"`
	TotalFaces     int     `json:"total_faces" example:"1"`
	BlinkConfirmed bool    `json:"blink_confirmed" example:"false"`
	Matched        bool    `json:"matched,omitempty" example:"true"`
	Confidence     float64 `json:"confidence,omitempty" example:"93.5"`
}

// BeginSessionRequest starts a verification session
type BeginSessionRequest struct {
	Kind string `json:"kind" example:"check_in"`
}

// ManualRequest files the manual exception fallback
type ManualRequest struct {
	Kind   string  `json:"kind" example:"check_in"`
	Reason string  `json:"reason" example:"camera not working"`
	Lat    float64 `json:"lat,omitempty" example:"20.5937"`
	Lng    float64 `json:"lng,omitempty" example:"78.9629"`
}

// ProfileResponse is the employee's geofence configuration
type ProfileResponse struct {
	Name           string  `json:"name" example:"Asha Rao"`
	WorkLat        float64 `json:"work_lat" example:"20.5937"`
	WorkLng        float64 `json:"work_lng" example:"78.9629"`
	GeofenceRadius float64 `json:"geofence_radius" example:"100"`
}

// StatusResponse is the agent status summary
type StatusResponse struct {
	Strategy   string `json:"strategy" example:"local"`
	ServerTime string `json:"server_time,omitempty" example:"2026-03-10T09:30:00Z"`
}

// HealthResponse is the liveness/readiness probe body
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"GEOFENCE_VIOLATION"`
	Message string `json:"message" example:"Position is outside the work-site geofence"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Facegate Attendance Agent API",
		Version:     "v0.1.0",
		Description: "Local API of the biometric attendance kiosk agent: geofence-gated verification sessions with liveness and face matching",
		Host:        "localhost:8790",
		Path:        "/v1",
	})

	sessionErrors := []response.Response{
		response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing kiosk token"}, "401", "Unauthorized"),
		response.New(ErrorResponse{Code: "NO_SESSION", Message: "No session with this ID"}, "404", "Not Found"),
		response.New(ErrorResponse{Code: "INVALID_STATE", Message: "Operation not allowed in the current state"}, "409", "Conflict"),
		response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
	}

	endpoints := []*endpoint.EndPoint{
		// GET /v1/status - Agent status
		endpoint.New(
			endpoint.GET,
			"/status",
			endpoint.WithTags("Status"),
			endpoint.WithSummary("Agent status"),
			endpoint.WithDescription("Returns the verification strategy, geofence evaluation, trusted server time, active session and pipeline metrics"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StatusResponse{}, "200", "Status"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing kiosk token"}, "401", "Unauthorized"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/profile - Employee profile
		endpoint.New(
			endpoint.GET,
			"/profile",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Employee profile"),
			endpoint.WithDescription("Fetches the employee's geofence configuration and shift bounds from the HR backend"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ProfileResponse{}, "200", "Profile"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing kiosk token"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "NETWORK_ERROR", Message: "HR backend unreachable"}, "502", "Bad Gateway"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/sessions - Begin verification session
		endpoint.New(
			endpoint.POST,
			"/sessions",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Begin a verification session"),
			endpoint.WithDescription("Creates the single active session and opens the geofence gate. Only one session may be active at a time."),
			endpoint.WithBody(BeginSessionRequest{}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "201", "Session created"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing kiosk token"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "SESSION_ACTIVE", Message: "Another session is already active"}, "409", "Conflict"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /v1/sessions/{id} - Session state
		endpoint.New(
			endpoint.GET,
			"/sessions/{id}",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Session state"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithRequired()),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "200", "Session"),
			}),
			endpoint.WithErrors(sessionErrors),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/sessions/{id}/start - Open camera
		endpoint.New(
			endpoint.POST,
			"/sessions/{id}/start",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Open the camera"),
			endpoint.WithDescription("Opens the camera and loads reference material. Rejected without side effects while the geofence gate is closed."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithRequired()),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "200", "Camera ready"),
			}),
			endpoint.WithErrors(append([]response.Response{
				response.New(ErrorResponse{Code: "GEOFENCE_VIOLATION", Message: "Position is outside the work-site geofence"}, "403", "Forbidden"),
				response.New(ErrorResponse{Code: "CAMERA_UNAVAILABLE", Message: "Camera could not be opened"}, "503", "Service Unavailable"),
			}, sessionErrors...)),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/sessions/{id}/capture - One verification attempt
		endpoint.New(
			endpoint.POST,
			"/sessions/{id}/capture",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Run one verification attempt"),
			endpoint.WithDescription("Captures a frame and checks liveness; identity is only decided after a blink has been confirmed"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithRequired()),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CheckpointResponse{}, "200", "Checkpoint"),
			}),
			endpoint.WithErrors(append([]response.Response{
				response.New(ErrorResponse{Code: "ATTEMPTS_EXHAUSTED", Message: "Too many failed match attempts"}, "429", "Too Many Requests"),
			}, sessionErrors...)),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/sessions/{id}/submit - File attendance
		endpoint.New(
			endpoint.POST,
			"/sessions/{id}/submit",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Submit the attendance event"),
			endpoint.WithDescription("Re-evaluates the geofence with the freshest position and files the check-in or check-out"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithRequired()),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "200", "Submitted"),
			}),
			endpoint.WithErrors(append([]response.Response{
				response.New(ErrorResponse{Code: "NOT_VERIFIED", Message: "Verification has not succeeded"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "GEOFENCE_VIOLATION", Message: "Position moved outside the geofence"}, "403", "Forbidden"),
			}, sessionErrors...)),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// DELETE /v1/sessions/{id} - Cancel session
		endpoint.New(
			endpoint.DELETE,
			"/sessions/{id}",
			endpoint.WithTags("Sessions"),
			endpoint.WithSummary("Cancel the session"),
			endpoint.WithDescription("Releases the camera, purges reference material and discards any in-flight result"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithRequired()),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionResponse{}, "200", "Cancelled"),
			}),
			endpoint.WithErrors(sessionErrors),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /v1/requests - Manual exception fallback
		endpoint.New(
			endpoint.POST,
			"/requests",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("File a manual attendance request"),
			endpoint.WithDescription("Submits the manual exception fallback for administrator review when automated verification cannot complete"),
			endpoint.WithBody(ManualRequest{}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(struct {
					Message string `json:"message" example:"request submitted for review"`
				}{}, "202", "Accepted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing kiosk token"}, "401", "Unauthorized"),
				response.New(ErrorResponse{Code: "NETWORK_ERROR", Message: "HR backend unreachable"}, "502", "Bad Gateway"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
