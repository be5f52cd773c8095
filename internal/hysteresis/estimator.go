package hysteresis

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/coastalobs/gliderqc/internal/geom"
	"github.com/coastalobs/gliderqc/internal/qartod"
	"github.com/coastalobs/gliderqc/pkg/config"
)

// MinPressureRange is the smallest pressure excursion (dbar) over which
// hysteresis is meaningful. Shallower pairs (hovering at the surface or
// bottom) are left Unknown.
const MinPressureRange = 5.0

// Series pairs a profile's pressure trace with its upstream-masked
// measurement series, index-aligned to the profile's time axis.
type Series struct {
	Pressure []float64
	Value    []float64
}

// Outcome is the result class of an area estimate.
type Outcome int

const (
	// OutcomeUnknown: the pair spans too little pressure range to test.
	OutcomeUnknown Outcome = iota
	// OutcomeGood: the data range is below the test threshold, so there is
	// no measurable hysteresis (typical of well-mixed water).
	OutcomeGood
	// OutcomeClassify: a normalized area was computed and must be judged
	// against the suspect/fail thresholds.
	OutcomeClassify
)

// Estimate is the output of the hysteresis area estimator.
type Estimate struct {
	Outcome        Outcome
	NormalizedArea float64
	DataRange      float64
}

// EstimateArea measures the hysteresis between an orientation-confirmed
// down/up profile pair. The combined traces, in down-then-up order, form a
// closed polygon in pressure/measurement space; its enclosed area (with
// self-intersections resolved) normalized by the pressure range is the
// severity metric. Ties on every cutoff favor the lower-severity outcome.
func EstimateArea(down, up Series, testThreshold float64) Estimate {
	// Traversal order defines the polygon: down cast first, then up cast.
	points := appendRows(nil, down)
	points = appendRows(points, up)
	if len(points) < 3 {
		return Estimate{Outcome: OutcomeUnknown}
	}

	pressures := make([]float64, len(points))
	values := make([]float64, len(points))
	for i, pt := range points {
		p := pt.X
		if p < 0 {
			// Negative pressure reads clamp to the surface.
			p = 0
		}
		pressures[i] = p
		values[i] = pt.Y
	}

	pressureRange := floats.Max(pressures) - floats.Min(pressures)
	if pressureRange <= MinPressureRange {
		return Estimate{Outcome: OutcomeUnknown}
	}

	dataRange := floats.Max(values) - floats.Min(values)
	if dataRange <= testThreshold {
		return Estimate{Outcome: OutcomeGood, DataRange: dataRange}
	}

	area := geom.EnclosedArea(points)
	return Estimate{
		Outcome:        OutcomeClassify,
		NormalizedArea: area / pressureRange,
		DataRange:      dataRange,
	}
}

// appendRows appends the (pressure, measurement) rows of a series, dropping
// rows where either value is missing.
func appendRows(dst []geom.Point, s Series) []geom.Point {
	n := len(s.Pressure)
	if len(s.Value) < n {
		n = len(s.Value)
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(s.Pressure[i]) || math.IsNaN(s.Value[i]) {
			continue
		}
		dst = append(dst, geom.Point{X: s.Pressure[i], Y: s.Value[i]})
	}
	return dst
}

// Classify judges a computed estimate against the configured thresholds.
// Comparisons are strict, so a pair sitting exactly on a cutoff takes the
// lower-severity flag.
func Classify(normalizedArea, dataRange float64, th config.Thresholds) float64 {
	switch {
	case normalizedArea > dataRange*th.FailThreshold:
		return qartod.Fail
	case normalizedArea > dataRange*th.SuspectThreshold:
		return qartod.Suspect
	default:
		return qartod.Good
	}
}
