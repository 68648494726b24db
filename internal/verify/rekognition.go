package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/veridesk/facegate/internal/domain"
	"github.com/veridesk/facegate/internal/face"
	"github.com/veridesk/facegate/internal/hrapi"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100

	// defaultSimilarityThreshold is the CompareFaces similarity (0-100)
	// required to accept a match.
	defaultSimilarityThreshold = 90.0

	errCodeInvalidParameter = "InvalidParameterException"
)

// rekognitionAPI is the subset of the AWS Rekognition client used by the
// strategy, defined as an interface for testing.
type rekognitionAPI interface {
	CompareFaces(ctx context.Context, params *rekognition.CompareFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.CompareFacesOutput, error)
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// RekognitionStrategy checks frames against the enrollment photos with the
// stateless CompareFaces and DetectFaces APIs. No collection is created and
// no face is ever indexed, so nothing biometric persists in the cloud.
// Liveness uses the EyesOpen attribute: the session must observe open eyes
// followed by closed eyes, same transition rule as the local detector.
type RekognitionStrategy struct {
	api                 rekognitionAPI
	source              referenceSource
	similarityThreshold float64
	logger              *slog.Logger

	references [][]byte
	owner      string
	seenOpen   bool
	confirmed  bool
}

// RekognitionOption configures a RekognitionStrategy.
type RekognitionOption func(*RekognitionStrategy)

// WithSimilarityThreshold overrides the accept threshold (0-100).
func WithSimilarityThreshold(threshold float64) RekognitionOption {
	return func(s *RekognitionStrategy) {
		s.similarityThreshold = threshold
	}
}

// WithRekognitionAPI substitutes the AWS client, used by tests.
func WithRekognitionAPI(api rekognitionAPI) RekognitionOption {
	return func(s *RekognitionStrategy) {
		s.api = api
	}
}

// NewRekognitionStrategy creates a strategy using the AWS default credential
// chain in the given region.
func NewRekognitionStrategy(ctx context.Context, region string, source referenceSource, logger *slog.Logger, opts ...RekognitionOption) (*RekognitionStrategy, error) {
	s := &RekognitionStrategy{
		source:              source,
		similarityThreshold: defaultSimilarityThreshold,
		logger:              logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.api == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		s.api = rekognition.NewFromConfig(awsCfg)
	}

	return s, nil
}

func (s *RekognitionStrategy) Name() string { return StrategyRekognition }

// Prepare fetches the enrollment photos. They stay in memory as raw bytes
// and are zeroed on Teardown.
func (s *RekognitionStrategy) Prepare(ctx context.Context) error {
	images, err := s.source.MyImages(ctx)
	if err != nil {
		return err
	}

	references := make([][]byte, 0, len(images.Images))
	for i, dataURL := range images.Images {
		raw, err := hrapi.DecodeDataURL(dataURL)
		if err != nil {
			s.logger.Warn("skipping undecodable enrollment image",
				slog.Int("index", i), slog.String("error", err.Error()))
			continue
		}
		if err := validateImage(raw); err != nil {
			s.logger.Warn("skipping out-of-bounds enrollment image",
				slog.Int("index", i), slog.String("error", err.Error()))
			continue
		}
		references = append(references, raw)
	}

	if len(references) == 0 {
		return domain.ErrNoReferenceData.WithError(
			fmt.Errorf("no usable reference photos from %d enrollment images", len(images.Images)))
	}

	s.references = references
	s.owner = images.EmployeeName
	return nil
}

func (s *RekognitionStrategy) Check(ctx context.Context, frame []byte) (*Checkpoint, error) {
	if err := validateImage(frame); err != nil {
		return nil, domain.ErrBadRequest.WithError(err)
	}

	detectOut, err := s.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: frame},
		Attributes: []types.Attribute{types.AttributeEyesOpen},
	})
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	if len(detectOut.FaceDetails) == 0 {
		return &Checkpoint{FaceFound: false, BlinkConfirmed: s.confirmed}, nil
	}

	best := bestFaceDetail(detectOut.FaceDetails)
	if best.EyesOpen != nil && best.EyesOpen.Value != nil {
		if *best.EyesOpen.Value {
			s.seenOpen = true
		} else if s.seenOpen {
			s.confirmed = true
		}
	}

	checkpoint := &Checkpoint{
		FaceFound:      true,
		TotalFaces:     len(detectOut.FaceDetails),
		BlinkConfirmed: s.confirmed,
	}

	if checkpoint.BlinkConfirmed {
		match, err := s.compareAgainstReferences(ctx, frame)
		if err != nil {
			return nil, err
		}
		checkpoint.Match = match
	}

	return checkpoint, nil
}

// compareAgainstReferences runs CompareFaces against every enrollment photo
// and keeps the best similarity.
func (s *RekognitionStrategy) compareAgainstReferences(ctx context.Context, frame []byte) (*face.MatchResult, error) {
	bestSimilarity := 0.0

	for _, reference := range s.references {
		out, err := s.api.CompareFaces(ctx, &rekognition.CompareFacesInput{
			SourceImage:         &types.Image{Bytes: reference},
			TargetImage:         &types.Image{Bytes: frame},
			SimilarityThreshold: aws.Float32(0),
		})
		if err != nil {
			if isNoFaceError(err) {
				continue
			}
			return nil, fmt.Errorf("compare faces: %w", err)
		}
		for _, match := range out.FaceMatches {
			if match.Similarity != nil && float64(*match.Similarity) > bestSimilarity {
				bestSimilarity = float64(*match.Similarity)
			}
		}
	}

	result := &face.MatchResult{
		IsMatch:    bestSimilarity >= s.similarityThreshold,
		Confidence: bestSimilarity,
	}
	if result.IsMatch {
		result.Label = s.owner
	} else {
		result.Label = face.UnknownLabel
	}
	return result, nil
}

// Teardown zeroes the reference photos and drops the liveness latch.
func (s *RekognitionStrategy) Teardown() {
	for _, reference := range s.references {
		for i := range reference {
			reference[i] = 0
		}
	}
	s.references = nil
	s.seenOpen = false
	s.confirmed = false
}

// bestFaceDetail returns the detail with the highest confidence.
func bestFaceDetail(details []types.FaceDetail) types.FaceDetail {
	best := details[0]
	for _, detail := range details[1:] {
		if detail.Confidence != nil && (best.Confidence == nil || *detail.Confidence > *best.Confidence) {
			best = detail
		}
	}
	return best
}

// validateImage checks image bounds before an AWS call.
func validateImage(image []byte) error {
	if len(image) < minImageSize {
		return fmt.Errorf("image too small (%d bytes, minimum %d)", len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("image too large (%d bytes, maximum %d)", len(image), maxImageSize)
	}
	return nil
}

// isNoFaceError reports whether an AWS error means no face in the image.
func isNoFaceError(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == errCodeInvalidParameter
}
