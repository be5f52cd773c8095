// Package qartod carries the QARTOD quality-flag domain and the flag-array
// plumbing shared by the glider QC tests.
package qartod

import (
	"fmt"
	"math"
	"strings"

	"github.com/coastalobs/gliderqc/internal/dataset"
)

// QARTOD quality flag values. Flag arrays are stored as float64 series so they
// ride on the same dataset container as the measurements they annotate.
const (
	Good    float64 = 1
	Unknown float64 = 2
	Suspect float64 = 3
	Fail    float64 = 4
	Missing float64 = 9
)

// InitFlags builds the initial flag array for one variable of a profile: every
// flag starts Unknown, samples where the variable is NaN are flagged Missing.
// It also returns the indices of valid (non-NaN) samples for the variable and
// for pressure. An empty dataIdx means the test cannot run on this profile.
func InitFlags(ds *dataset.Dataset, varname string) (dataIdx, pressureIdx []int, flags []float64, err error) {
	v, ok := ds.Var(varname)
	if !ok {
		return nil, nil, nil, fmt.Errorf("variable %s not present", varname)
	}

	flags = make([]float64, len(v.Values))
	for i, val := range v.Values {
		if math.IsNaN(val) {
			flags[i] = Missing
		} else {
			flags[i] = Unknown
			dataIdx = append(dataIdx, i)
		}
	}

	if p, ok := ds.Var("pressure"); ok {
		for i, val := range p.Values {
			if !math.IsNaN(val) {
				pressureIdx = append(pressureIdx, i)
			}
		}
	}

	return dataIdx, pressureIdx, flags, nil
}

// ApplyUpstream returns a copy of the variable's series with samples already
// flagged Suspect or Fail by any upstream QARTOD test set to NaN. Every flag
// variable whose name contains "<varname>_qartod" participates; a sample
// masked by any of them is masked in the result.
func ApplyUpstream(ds *dataset.Dataset, varname string) []float64 {
	v, ok := ds.Var(varname)
	if !ok {
		return nil
	}

	masked := make([]float64, len(v.Values))
	copy(masked, v.Values)

	needle := varname + "_qartod"
	for name, fv := range ds.Variables {
		if !strings.Contains(name, needle) {
			continue
		}
		for i, flag := range fv.Values {
			if i >= len(masked) {
				break
			}
			if flag == Suspect || flag == Fail {
				masked[i] = math.NaN()
			}
		}
	}

	return masked
}

// CountValid returns the number of non-NaN samples in a series.
func CountValid(values []float64) int {
	n := 0
	for _, v := range values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Attrs builds the attribute map for a hysteresis-test flag variable. The
// thresholds string, when non-empty, records the configuration the flags were
// derived under.
func Attrs(test, sensor, thresholds string) map[string]interface{} {
	longName := fmt.Sprintf("%s Hysteresis Test Quality Flag", capitalize(sensor))
	if strings.Contains(test, "ctd") {
		longName = "CTD Hysteresis Test Quality Flag"
	}

	attrs := map[string]interface{}{
		"comment": fmt.Sprintf("Test for %s lag, determined by comparing the area between "+
			"profile pairs normalized to pressure range against the data range multiplied "+
			"by thresholds found in flag_configurations.", sensor),
		"standard_name": test + "_quality_flag",
		"long_name":     longName,
		"flag_values":   []int8{1, 2, 3, 4, 9},
		"flag_meanings": "GOOD UNKNOWN SUSPECT FAIL MISSING",
		"valid_min":     int8(1),
		"valid_max":     int8(9),
		"qc_target":     sensor,
	}

	if thresholds != "" {
		attrs["flag_configurations"] = thresholds
	}

	return attrs
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
