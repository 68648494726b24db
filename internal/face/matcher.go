package face

import (
	"math"

	"github.com/veridesk/facegate/internal/domain"
)

// DefaultThreshold is the maximum Euclidean distance for a positive match on
// a normalized embedding space. Tunable per deployment: lower is stricter.
const DefaultThreshold = 0.6

// UnknownLabel is reported when no reference descriptor is close enough.
const UnknownLabel = "unknown"

// MatchResult is the outcome of comparing one live descriptor against a
// reference set. Produced once per attempt and not retained beyond it.
type MatchResult struct {
	IsMatch    bool    `json:"is_match"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
	Distance   float64 `json:"distance"`
}

// EuclideanDistance returns the L2 distance between two descriptors, or +Inf
// when the dimensions disagree so a mismatched vector can never win a
// minimum-distance comparison.
func EuclideanDistance(a, b Descriptor) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Matcher decides whether a live descriptor belongs to the enrolled
// employee.
type Matcher struct {
	Threshold float64
}

// NewMatcher creates a matcher; threshold <= 0 selects DefaultThreshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{Threshold: threshold}
}

// Match takes the minimum distance between live and every reference
// descriptor. An empty or purged set returns domain.ErrNoReferenceData:
// a missing reference set must never be reported as an ordinary negative.
func (m *Matcher) Match(live Descriptor, refs *ReferenceSet) (*MatchResult, error) {
	if refs == nil || refs.Len() == 0 {
		return nil, domain.ErrNoReferenceData
	}

	minDist := math.Inf(1)
	for _, ref := range refs.descriptors {
		if d := EuclideanDistance(live, ref); d < minDist {
			minDist = d
		}
	}

	if math.IsInf(minDist, 1) {
		// Every reference had a mismatched dimension.
		return nil, domain.ErrNoReferenceData
	}

	result := &MatchResult{Distance: minDist}
	if minDist <= m.Threshold {
		result.IsMatch = true
		result.Label = refs.Owner()
		result.Confidence = clamp((1-minDist)*100, 0, 100)
	} else {
		result.Label = UnknownLabel
	}
	return result, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
