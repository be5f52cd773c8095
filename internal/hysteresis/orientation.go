// Package hysteresis implements the CTD hysteresis QC test: pairing adjacent
// down/up glider profiles and flagging pairs whose traces enclose too much
// area, a symptom of CTD pump or plumbing lag.
package hysteresis

// Orientation is the cast direction of a profile, judged by pressure trend.
type Orientation int

const (
	// OrientationUnknown means the trace has too few valid samples to judge.
	OrientationUnknown Orientation = iota
	// Down is a descending cast.
	Down
	// Up is an ascending cast.
	Up
)

// ClassifyOrientation determines cast direction from a pressure trace
// restricted to its valid (non-NaN) indices: Down when the first valid
// pressure is below the last, Up otherwise. Fewer than two valid samples
// cannot be classified.
func ClassifyOrientation(pressure []float64, validIdx []int) Orientation {
	if len(validIdx) < 2 {
		return OrientationUnknown
	}
	first := pressure[validIdx[0]]
	last := pressure[validIdx[len(validIdx)-1]]
	if first < last {
		return Down
	}
	return Up
}
