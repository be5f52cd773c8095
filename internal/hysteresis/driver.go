package hysteresis

import (
	"time"

	"go.uber.org/zap"

	"github.com/coastalobs/gliderqc/internal/dataset"
	"github.com/coastalobs/gliderqc/internal/qartod"
	"github.com/coastalobs/gliderqc/pkg/config"
)

// TestVariables are the sensors the hysteresis test runs against.
var TestVariables = []string{"conductivity", "temperature"}

// TestSuffix names the persisted flag variable: <sensor>_hysteresis_test.
const TestSuffix = "_hysteresis_test"

// MaxPairGap is the largest gap between the end of a down cast and the start
// of the following up cast that still counts as one paired yo.
const MaxPairGap = 5 * time.Minute

// SensorSummary counts per-sensor outcomes across one run.
type SensorSummary struct {
	FailedProfiles  int
	SuspectProfiles int
	UnknownProfiles int
}

// RunSummary holds the per-sensor counters for one deployment run.
type RunSummary map[string]*SensorSummary

// Driver walks a deployment's ordered profile file list, pairing adjacent
// down/up casts and persisting a hysteresis flag variable into each file.
// Files are consumed strictly in order: a file paired as the second member of
// a yo is skipped as a future primary, while files that fail to read are
// skipped without being consumed so the walk always makes progress.
type Driver struct {
	cfg    *config.Data
	logger *zap.SugaredLogger

	summary RunSummary
	status  int
}

// NewDriver returns a driver for one deployment run.
func NewDriver(cfg *config.Data, logger *zap.SugaredLogger) *Driver {
	return &Driver{cfg: cfg, logger: logger}
}

// Run processes the file list to completion and returns the per-sensor
// summary and the run status (non-zero when any file could not be read, a
// required variable was missing, or configuration was invalid).
func (d *Driver) Run(files []string) (RunSummary, int) {
	d.summary = make(RunSummary, len(TestVariables))
	d.status = 0

	// Missing or invalid thresholds are fatal for the whole deployment run.
	thresholds := make(map[string]config.Thresholds, len(TestVariables))
	for _, sensor := range TestVariables {
		th, err := d.cfg.SensorThresholds(sensor)
		if err != nil {
			d.logger.Errorf("configuration error: %v", err)
			return d.summary, 1
		}
		thresholds[sensor] = th
		d.summary[sensor] = &SensorSummary{}
	}

	skipNext := false
	for i := 0; i < len(files); i++ {
		if skipNext {
			skipNext = false
			continue
		}

		ds, err := dataset.Open(files[i])
		if err != nil {
			d.logger.Errorf("error reading file %s (%v)", files[i], err)
			d.status = 1
			continue
		}

		consumed := false
		for _, sensor := range TestVariables {
			if d.processSensor(ds, files, i, sensor, thresholds[sensor]) {
				consumed = true
			}
		}
		if consumed {
			skipNext = true
		}
	}

	return d.summary, d.status
}

// processSensor runs one sensor's pairing attempt with files[i] as primary.
// It reports whether files[i+1] was consumed as the second member of a pair.
func (d *Driver) processSensor(ds *dataset.Dataset, files []string, i int, sensor string, th config.Thresholds) bool {
	qcVar := sensor + TestSuffix
	attrs := qartod.Attrs(qcVar, sensor, th.String())
	sum := d.summary[sensor]

	if _, ok := ds.Var(sensor); !ok {
		d.logger.Errorf("%s not found in file %s", sensor, files[i])
		d.status = 1
		return false
	}

	dataIdx, pressureIdx, flags, err := qartod.InitFlags(ds, sensor)
	if err != nil {
		d.logger.Errorf("%s: %v", files[i], err)
		d.status = 1
		return false
	}
	if len(dataIdx) == 0 {
		// Present but entirely missing: the test cannot run, but the flag
		// variable is still persisted rather than silently omitted.
		d.logger.Errorf("%s data not found in file %s", sensor, files[i])
		d.status = 1
		d.persist(ds, files[i], qcVar, flags, attrs)
		sum.UnknownProfiles++
		return false
	}

	pvar, ok := ds.Var("pressure")
	if !ok || ClassifyOrientation(pvar.Values, pressureIdx) != Down {
		// Up casts and degenerate pressure traces cannot lead a pair.
		d.persist(ds, files[i], qcVar, flags, attrs)
		sum.UnknownProfiles++
		return false
	}

	if i+1 >= len(files) {
		// Terminal file, no pair possible.
		d.persist(ds, files[i], qcVar, flags, attrs)
		sum.UnknownProfiles++
		return false
	}

	ds2, err := dataset.Open(files[i+1])
	if err != nil {
		// The second file stays unconsumed and retries as a fresh primary.
		d.logger.Errorf("error reading file %s (%v)", files[i+1], err)
		d.status = 1
		d.persist(ds, files[i], qcVar, flags, attrs)
		sum.UnknownProfiles++
		return false
	}

	if _, ok := ds2.Var(sensor); !ok {
		d.logger.Errorf("%s not found in file %s", sensor, files[i+1])
		d.status = 1
		d.persist(ds, files[i], qcVar, flags, attrs)
		sum.UnknownProfiles++
		return false
	}

	dataIdx2, pressureIdx2, flags2, err := qartod.InitFlags(ds2, sensor)
	if err != nil {
		d.logger.Errorf("%s: %v", files[i+1], err)
		d.status = 1
		d.persist(ds, files[i], qcVar, flags, attrs)
		sum.UnknownProfiles++
		return false
	}

	pvar2, ok := ds2.Var("pressure")
	if !ok || ClassifyOrientation(pvar2.Values, pressureIdx2) != Up {
		// Second profile is also a down cast (or unclassifiable): no pair,
		// and it becomes the primary of the next iteration.
		d.persist(ds, files[i], qcVar, flags, attrs)
		sum.UnknownProfiles++
		return false
	}

	if ds2.StartTime().Sub(ds.EndTime()) >= MaxPairGap {
		// Too far apart in time to be the same yo. Both profiles stay
		// Unknown and the second is consumed.
		d.persist(ds, files[i], qcVar, flags, attrs)
		d.persist(ds2, files[i+1], qcVar, flags2, attrs)
		sum.UnknownProfiles += 2
		return true
	}

	// True pair: mask upstream-flagged samples before measuring geometry.
	masked := qartod.ApplyUpstream(ds, sensor)
	masked2 := qartod.ApplyUpstream(ds2, sensor)
	if qartod.CountValid(masked) == 0 || qartod.CountValid(masked2) == 0 {
		// Nothing left after upstream QC on one side; leave both Unknown.
		d.persist(ds, files[i], qcVar, flags, attrs)
		d.persist(ds2, files[i+1], qcVar, flags2, attrs)
		sum.UnknownProfiles += 2
		return true
	}

	est := EstimateArea(
		Series{Pressure: pvar.Values, Value: masked},
		Series{Pressure: pvar2.Values, Value: masked2},
		th.TestThreshold,
	)

	switch est.Outcome {
	case OutcomeClassify:
		flag := Classify(est.NormalizedArea, est.DataRange, th)
		setAt(flags, dataIdx, flag)
		setAt(flags2, dataIdx2, flag)
		switch flag {
		case qartod.Fail:
			sum.FailedProfiles += 2
		case qartod.Suspect:
			sum.SuspectProfiles += 2
		}
	case OutcomeGood:
		setAt(flags, dataIdx, qartod.Good)
		setAt(flags2, dataIdx2, qartod.Good)
	case OutcomeUnknown:
		sum.UnknownProfiles += 2
	}

	d.persist(ds, files[i], qcVar, flags, attrs)
	d.persist(ds2, files[i+1], qcVar, flags2, attrs)
	return true
}

func (d *Driver) persist(ds *dataset.Dataset, path, qcVar string, flags []float64, attrs map[string]interface{}) {
	if err := ds.SetVariable(qcVar, flags, attrs); err != nil {
		d.logger.Errorf("error adding %s to %s: %v", qcVar, path, err)
		d.status = 1
		return
	}
	if err := ds.Save(path); err != nil {
		d.logger.Errorf("error writing file %s (%v)", path, err)
		d.status = 1
	}
}

func setAt(flags []float64, idx []int, flag float64) {
	for _, i := range idx {
		flags[i] = flag
	}
}
