package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/veridesk/facegate/internal/domain"
	"github.com/veridesk/facegate/internal/face"
	"github.com/veridesk/facegate/internal/hrapi"
	"github.com/veridesk/facegate/internal/liveness"
)

// referenceSource is the slice of the backend client the local strategy
// needs, split out for tests.
type referenceSource interface {
	MyImages(ctx context.Context) (*hrapi.EnrollmentImages, error)
}

// LocalStrategy runs the whole pipeline on the agent: descriptor extraction
// through the inference daemon, blink detection from eye landmarks, and
// matching against descriptors computed from the enrollment photos. Nothing
// biometric leaves the process.
type LocalStrategy struct {
	extractor face.Extractor
	matcher   *face.Matcher
	source    referenceSource
	blink     *liveness.BlinkDetector
	refs      *face.ReferenceSet
	logger    *slog.Logger
}

// NewLocalStrategy creates a local strategy with fresh per-session state.
func NewLocalStrategy(extractor face.Extractor, matcher *face.Matcher, source referenceSource, blinkThreshold float64, logger *slog.Logger) *LocalStrategy {
	return &LocalStrategy{
		extractor: extractor,
		matcher:   matcher,
		source:    source,
		blink:     liveness.NewBlinkDetector(blinkThreshold),
		logger:    logger,
	}
}

func (s *LocalStrategy) Name() string { return StrategyLocal }

// Prepare loads the extractor models, fetches the enrollment photos and
// converts them to descriptors held only in the session's reference set.
func (s *LocalStrategy) Prepare(ctx context.Context) error {
	if err := s.extractor.LoadModels(ctx); err != nil {
		return err
	}

	images, err := s.source.MyImages(ctx)
	if err != nil {
		return err
	}

	refs := face.NewReferenceSet(images.EmployeeName)
	for i, dataURL := range images.Images {
		raw, err := hrapi.DecodeDataURL(dataURL)
		if err != nil {
			s.logger.Warn("skipping undecodable enrollment image",
				slog.Int("index", i), slog.String("error", err.Error()))
			continue
		}
		detection, err := s.extractor.Extract(ctx, raw)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			s.logger.Warn("skipping enrollment image without usable face",
				slog.Int("index", i), slog.String("error", err.Error()))
			continue
		}
		refs.Add(detection.Descriptor)
	}

	if refs.Len() == 0 {
		return domain.ErrNoReferenceData.WithError(
			fmt.Errorf("no usable descriptors from %d enrollment images", len(images.Images)))
	}

	s.refs = refs
	return nil
}

func (s *LocalStrategy) Check(ctx context.Context, frame []byte) (*Checkpoint, error) {
	detection, err := s.extractor.Extract(ctx, frame)
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) && appErr.Code == domain.ErrNoFaceDetected.Code {
			return &Checkpoint{FaceFound: false, BlinkConfirmed: s.blink.Confirmed()}, nil
		}
		return nil, err
	}

	if len(detection.Landmarks.LeftEye) > 0 && len(detection.Landmarks.RightEye) > 0 {
		s.blink.Update(
			toLivenessPoints(detection.Landmarks.LeftEye),
			toLivenessPoints(detection.Landmarks.RightEye),
		)
	}

	checkpoint := &Checkpoint{
		FaceFound:      true,
		TotalFaces:     detection.TotalFaces,
		BlinkConfirmed: s.blink.Confirmed(),
	}

	// Identity is only decided on frames at or after blink confirmation.
	if checkpoint.BlinkConfirmed {
		match, err := s.matcher.Match(detection.Descriptor, s.refs)
		if err != nil {
			return nil, err
		}
		checkpoint.Match = match
	}

	return checkpoint, nil
}

// Teardown zeroes the reference descriptors.
func (s *LocalStrategy) Teardown() {
	if s.refs != nil {
		s.refs.Purge()
	}
	s.blink.Reset()
}

func toLivenessPoints(points []face.Point) []liveness.Point {
	out := make([]liveness.Point, len(points))
	for i, p := range points {
		out[i] = liveness.Point{X: p.X, Y: p.Y}
	}
	return out
}
