package qartod

import (
	"math"
	"testing"

	"github.com/coastalobs/gliderqc/internal/dataset"
)

func nan() float64 { return math.NaN() }

func testProfile() *dataset.Dataset {
	return &dataset.Dataset{
		Time: []float64{0, 60, 120, 180, 240},
		Variables: map[string]*dataset.Variable{
			"pressure":     {Values: []float64{0, 5, nan(), 15, 20}},
			"conductivity": {Values: []float64{3.1, nan(), 3.3, 3.4, nan()}},
		},
	}
}

func TestInitFlags(t *testing.T) {
	ds := testProfile()

	dataIdx, pressureIdx, flags, err := InitFlags(ds, "conductivity")
	if err != nil {
		t.Fatalf("InitFlags: %v", err)
	}

	wantFlags := []float64{Unknown, Missing, Unknown, Unknown, Missing}
	if len(flags) != ds.Len() {
		t.Fatalf("flag array length = %d, want %d", len(flags), ds.Len())
	}
	for i, f := range flags {
		if f != wantFlags[i] {
			t.Errorf("flags[%d] = %v, want %v", i, f, wantFlags[i])
		}
	}

	wantData := []int{0, 2, 3}
	if len(dataIdx) != len(wantData) {
		t.Fatalf("dataIdx = %v, want %v", dataIdx, wantData)
	}
	for i := range wantData {
		if dataIdx[i] != wantData[i] {
			t.Errorf("dataIdx[%d] = %d, want %d", i, dataIdx[i], wantData[i])
		}
	}

	wantPressure := []int{0, 1, 3, 4}
	if len(pressureIdx) != len(wantPressure) {
		t.Fatalf("pressureIdx = %v, want %v", pressureIdx, wantPressure)
	}
	for i := range wantPressure {
		if pressureIdx[i] != wantPressure[i] {
			t.Errorf("pressureIdx[%d] = %d, want %d", i, pressureIdx[i], wantPressure[i])
		}
	}
}

func TestInitFlagsMissingVariable(t *testing.T) {
	ds := testProfile()
	if _, _, _, err := InitFlags(ds, "temperature"); err == nil {
		t.Fatal("expected error for absent variable")
	}
}

func TestApplyUpstream(t *testing.T) {
	ds := &dataset.Dataset{
		Time: []float64{0, 60, 120, 180},
		Variables: map[string]*dataset.Variable{
			"conductivity": {Values: []float64{3.1, 3.2, 3.3, 3.4}},
			// Two upstream tests for the same sensor: masks are unioned.
			"conductivity_qartod_gross_range": {Values: []float64{Good, Suspect, Good, Good}},
			"conductivity_qartod_spike":       {Values: []float64{Good, Good, Fail, Good}},
			// A different sensor's flags must not participate.
			"temperature_qartod_spike": {Values: []float64{Fail, Fail, Fail, Fail}},
		},
	}

	masked := ApplyUpstream(ds, "conductivity")

	if !math.IsNaN(masked[1]) || !math.IsNaN(masked[2]) {
		t.Errorf("flagged samples not masked: %v", masked)
	}
	if masked[0] != 3.1 || masked[3] != 3.4 {
		t.Errorf("clean samples altered: %v", masked)
	}

	// The dataset itself must be untouched.
	if v, _ := ds.Var("conductivity"); v.Values[1] != 3.2 {
		t.Error("ApplyUpstream mutated the source variable")
	}
}

func TestAttrs(t *testing.T) {
	attrs := Attrs("conductivity_hysteresis_test", "conductivity", "test_threshold: 0.1")

	if attrs["qc_target"] != "conductivity" {
		t.Errorf("qc_target = %v", attrs["qc_target"])
	}
	if attrs["standard_name"] != "conductivity_hysteresis_test_quality_flag" {
		t.Errorf("standard_name = %v", attrs["standard_name"])
	}
	if attrs["long_name"] != "Conductivity Hysteresis Test Quality Flag" {
		t.Errorf("long_name = %v", attrs["long_name"])
	}
	if attrs["flag_configurations"] != "test_threshold: 0.1" {
		t.Errorf("flag_configurations = %v", attrs["flag_configurations"])
	}
	if attrs["valid_min"] != int8(1) || attrs["valid_max"] != int8(9) {
		t.Errorf("valid range = %v..%v", attrs["valid_min"], attrs["valid_max"])
	}

	noThresholds := Attrs("ctd_hysteresis_test", "conductivity", "")
	if _, ok := noThresholds["flag_configurations"]; ok {
		t.Error("flag_configurations present without thresholds")
	}
	if noThresholds["long_name"] != "CTD Hysteresis Test Quality Flag" {
		t.Errorf("long_name = %v", noThresholds["long_name"])
	}
}
