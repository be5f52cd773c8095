// Package dataset implements the on-disk profile dataset container shared by
// the glider QC tools: a time axis plus named measurement variables with
// attributes, serialized as msgpack, one file per profile.
package dataset

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Ext is the filename extension for profile dataset files.
const Ext = ".mpk"

// Variable is one per-sample series of a profile. Missing samples are NaN.
type Variable struct {
	Values []float64              `msgpack:"values"`
	Attrs  map[string]interface{} `msgpack:"attrs,omitempty"`
}

// Dataset is one glider profile: a monotone time axis (seconds since the Unix
// epoch, UTC) and the variables sampled along it.
type Dataset struct {
	Time      []float64              `msgpack:"time"`
	Variables map[string]*Variable   `msgpack:"variables"`
	Attrs     map[string]interface{} `msgpack:"attrs,omitempty"`
}

// Open reads and validates a profile dataset file.
func Open(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ds Dataset
	if err := msgpack.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	for name, v := range ds.Variables {
		if len(v.Values) != len(ds.Time) {
			return nil, fmt.Errorf("%s: variable %s has %d values, time axis has %d",
				path, name, len(v.Values), len(ds.Time))
		}
	}

	return &ds, nil
}

// Save writes the dataset back to path.
func (d *Dataset) Save(path string) error {
	raw, err := msgpack.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return os.WriteFile(path, raw, 0o644)
}

// Len returns the sample count of the profile.
func (d *Dataset) Len() int {
	return len(d.Time)
}

// Var returns the named variable if present.
func (d *Dataset) Var(name string) (*Variable, bool) {
	v, ok := d.Variables[name]
	return v, ok
}

// SetVariable adds or replaces a variable. The series must match the time axis.
func (d *Dataset) SetVariable(name string, values []float64, attrs map[string]interface{}) error {
	if len(values) != len(d.Time) {
		return fmt.Errorf("variable %s has %d values, time axis has %d", name, len(values), len(d.Time))
	}
	if d.Variables == nil {
		d.Variables = make(map[string]*Variable)
	}
	d.Variables[name] = &Variable{Values: values, Attrs: attrs}
	return nil
}

// StartTime returns the first timestamp of the profile, or the zero time for
// an empty profile.
func (d *Dataset) StartTime() time.Time {
	if len(d.Time) == 0 {
		return time.Time{}
	}
	return fromEpoch(d.Time[0])
}

// EndTime returns the last timestamp of the profile, or the zero time for an
// empty profile.
func (d *Dataset) EndTime() time.Time {
	if len(d.Time) == 0 {
		return time.Time{}
	}
	return fromEpoch(d.Time[len(d.Time)-1])
}

func fromEpoch(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
}

// Epoch converts a timestamp to the dataset time-axis representation.
func Epoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
