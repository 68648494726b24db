package insight

// RepresentRequest for POST /represent
type RepresentRequest struct {
	Img       string `json:"img"`       // base64 encoded image
	Model     string `json:"model"`     // "facenet", "arcface", etc
	Detector  string `json:"detector"`  // "retinaface", "scrfd", etc
	Landmarks bool   `json:"landmarks"` // include eye outlines per face
}

// RepresentResponse from POST /represent
type RepresentResponse struct {
	Results []RepresentResult `json:"results"`
}

type RepresentResult struct {
	Embedding  []float64  `json:"embedding"`
	Confidence float64    `json:"confidence"`
	FacialArea FacialArea `json:"facial_area"`
	Landmarks  *FaceMesh  `json:"landmarks,omitempty"`
}

type FacialArea struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// FaceMesh carries the 6-point eye outlines used for blink detection.
type FaceMesh struct {
	LeftEye  [][2]float64 `json:"left_eye"`
	RightEye [][2]float64 `json:"right_eye"`
}

// StatusResponse from GET /status, used to confirm the daemon has its
// models resident before the first extraction.
type StatusResponse struct {
	Ready    bool   `json:"ready"`
	Model    string `json:"model"`
	Detector string `json:"detector"`
}
