// Package config loads per-deployment QC test configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid indicates missing or unusable QC configuration. A deployment run
// of a test that hits this skips to the next deployment with non-zero status.
var ErrInvalid = errors.New("invalid QC configuration")

// Thresholds are the cutoffs for one sensor's hysteresis test. TestThreshold
// is the minimum data range worth testing; the suspect and fail thresholds
// scale the data range into normalized-area cutoffs.
type Thresholds struct {
	TestThreshold    float64
	SuspectThreshold float64
	FailThreshold    float64
}

// String renders the thresholds for recording in flag-variable attributes.
func (t Thresholds) String() string {
	return fmt.Sprintf("test_threshold: %g, suspect_threshold: %g, fail_threshold: %g",
		t.TestThreshold, t.SuspectThreshold, t.FailThreshold)
}

// Data is the loaded hysteresis-test configuration, keyed by sensor variable
// name. Immutable for the duration of a run.
type Data struct {
	Sensors map[string]Thresholds
}

// SensorThresholds returns the thresholds configured for a sensor.
func (d *Data) SensorThresholds(sensor string) (Thresholds, error) {
	th, ok := d.Sensors[sensor]
	if !ok {
		return Thresholds{}, fmt.Errorf("%w: no %s_hysteresis_test entry", ErrInvalid, sensor)
	}
	return th, nil
}

// Provider loads hysteresis-test configuration from some backing store.
type Provider interface {
	LoadConfig() (*Data, error)
}

// sensorFromKey strips the test suffix from a configuration key, returning
// the sensor variable name and whether the key belongs to this test.
func sensorFromKey(key string) (string, bool) {
	const suffix = "_hysteresis_test"
	if !strings.HasSuffix(key, suffix) {
		return "", false
	}
	return strings.TrimSuffix(key, suffix), true
}
