package insight

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridesk/facegate/internal/domain"
	"github.com/veridesk/facegate/internal/face"
)

func newDaemon(t *testing.T, represent RepresentResponse) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(StatusResponse{Ready: true, Model: "facenet"})
	})
	mux.HandleFunc("/represent", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(represent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.RetryCount = 0
	cfg.Timeout = 2 * time.Second
	return cfg
}

func TestExtractor_ImplementsInterface(t *testing.T) {
	var _ face.Extractor = (*Extractor)(nil)
}

func TestExtractor_Extract(t *testing.T) {
	srv := newDaemon(t, RepresentResponse{
		Results: []RepresentResult{
			{
				Embedding:  []float64{0.1, 0.2, 0.3},
				Confidence: 0.97,
				FacialArea: FacialArea{X: 10, Y: 20, W: 100, H: 120},
				Landmarks: &FaceMesh{
					LeftEye:  [][2]float64{{0, 0}, {1, 1}, {2, 1}, {3, 0}, {2, -1}, {1, -1}},
					RightEye: [][2]float64{{5, 0}, {6, 1}, {7, 1}, {8, 0}, {7, -1}, {6, -1}},
				},
			},
		},
	})

	e := NewExtractor(testConfig(srv.URL))
	det, err := e.Extract(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)

	assert.Equal(t, face.Descriptor{0.1, 0.2, 0.3}, det.Descriptor)
	assert.Equal(t, 0.97, det.Confidence)
	assert.Equal(t, 1, det.TotalFaces)
	assert.Equal(t, 100.0, det.Box.Width)
	assert.Len(t, det.Landmarks.LeftEye, 6)
	assert.Equal(t, face.Point{X: 5, Y: 0}, det.Landmarks.RightEye[0])
}

func TestExtractor_NoFace(t *testing.T) {
	srv := newDaemon(t, RepresentResponse{})

	e := NewExtractor(testConfig(srv.URL))
	_, err := e.Extract(context.Background(), []byte("jpeg-bytes"))
	assert.True(t, errors.Is(err, domain.ErrNoFaceDetected))
}

func TestExtractor_MultiFacePicksHighestConfidence(t *testing.T) {
	srv := newDaemon(t, RepresentResponse{
		Results: []RepresentResult{
			{Embedding: []float64{1}, Confidence: 0.55},
			{Embedding: []float64{2}, Confidence: 0.93},
			{Embedding: []float64{3}, Confidence: 0.70},
		},
	})

	e := NewExtractor(testConfig(srv.URL))
	det, err := e.Extract(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)

	assert.Equal(t, face.Descriptor{2}, det.Descriptor)
	assert.Equal(t, 3, det.TotalFaces)
}

func TestExtractor_LoadModelsMemoized(t *testing.T) {
	var probes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		probes.Add(1)
		_ = json.NewEncoder(w).Encode(StatusResponse{Ready: true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := NewExtractor(testConfig(srv.URL))
	for i := 0; i < 5; i++ {
		require.NoError(t, e.LoadModels(context.Background()))
	}
	assert.Equal(t, int32(1), probes.Load())
}

func TestExtractor_LoadModelsFallback(t *testing.T) {
	fallback := newDaemon(t, RepresentResponse{})

	cfg := testConfig("http://127.0.0.1:1") // nothing listens here
	cfg.FallbackURL = fallback.URL
	cfg.Timeout = time.Second

	e := NewExtractor(cfg)
	require.NoError(t, e.LoadModels(context.Background()))
}

func TestExtractor_LoadModelsBothSourcesDown(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.FallbackURL = "http://127.0.0.1:2"
	cfg.Timeout = time.Second

	e := NewExtractor(cfg)
	err := e.LoadModels(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrModelLoad))
}

func TestExtractor_LoadModelsRetriesAfterDaemonRecovers(t *testing.T) {
	var probes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		if probes.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(StatusResponse{Ready: true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := NewExtractor(testConfig(srv.URL))

	err := e.LoadModels(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrModelLoad))

	// The daemon is back; a retry must re-probe instead of replaying the
	// cached failure.
	require.NoError(t, e.LoadModels(context.Background()))
	assert.Equal(t, int32(2), probes.Load())

	// And success stays memoized.
	require.NoError(t, e.LoadModels(context.Background()))
	assert.Equal(t, int32(2), probes.Load())
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Second, calculateBackoff(0))
	assert.Equal(t, time.Second, calculateBackoff(1))
	assert.Equal(t, 2*time.Second, calculateBackoff(2))
	assert.Equal(t, 4*time.Second, calculateBackoff(3))
	assert.Equal(t, 8*time.Second, calculateBackoff(4))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, isClientError(errors.New("daemon returned status 422: bad image")))
	assert.False(t, isClientError(errors.New("daemon returned status 500: boom")))
	assert.False(t, isClientError(nil))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(StatusResponse{Ready: true})
	})
	mux.HandleFunc("/represent", func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(RepresentResponse{
			Results: []RepresentResult{{Embedding: []float64{1}, Confidence: 1}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RetryCount = 2

	e := NewExtractor(cfg)
	det, err := e.Extract(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, face.Descriptor{1}, det.Descriptor)
	assert.Equal(t, int32(2), hits.Load())
}
