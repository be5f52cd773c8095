// Package scivars checks profile files for CTD science variables. Files
// without pressure, or without both conductivity and temperature, are renamed
// aside so downstream QC never sees them; Teledyne fill readings (conductivity
// and temperature both exactly zero) are scrubbed to missing.
package scivars

import (
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/coastalobs/gliderqc/internal/dataset"
)

// NoSciSuffix is appended to the names of files lacking CTD science variables.
const NoSciSuffix = ".nosci"

// Summary counts the outcomes of one check run.
type Summary struct {
	TotalFiles     int
	NoScienceFiles int
	ZerosRemoved   int
}

// Checker runs the science-variable check over a deployment's profile files.
// instrumentVars maps an instrument identity to its variable names, keyed by
// canonical quantity (conductivity, temperature, ...), as loaded from
// ctd_variables.yml.
type Checker struct {
	instrumentVars map[string]map[string]string
	logger         *zap.SugaredLogger
	status         int
}

// NewChecker returns a checker for one deployment run.
func NewChecker(instrumentVars map[string]map[string]string, logger *zap.SugaredLogger) *Checker {
	return &Checker{instrumentVars: instrumentVars, logger: logger}
}

// Run processes every file in order and returns the summary and run status.
func (c *Checker) Run(files []string) (Summary, int) {
	sum := Summary{TotalFiles: len(files)}
	c.status = 0

	for _, f := range files {
		ds, err := dataset.Open(f)
		if err != nil {
			c.logger.Errorf("error reading file %s (%v)", f, err)
			c.status = 1
			continue
		}

		if _, _, ok := ds.ResolveAlias("pressure"); !ok {
			c.setAside(f, "pressure not found")
			sum.NoScienceFiles++
			continue
		}

		_, _, condOK := ds.ResolveAlias("conductivity")
		_, _, tempOK := ds.ResolveAlias("temperature")
		if !condOK && !tempOK {
			c.setAside(f, "temperature and/or conductivity not found")
			sum.NoScienceFiles++
			continue
		}

		if c.scrubFillValues(ds) {
			if err := ds.Save(f); err != nil {
				c.logger.Errorf("error writing file %s (%v)", f, err)
				c.status = 1
				continue
			}
			sum.ZerosRemoved++
		}
	}

	return sum, c.status
}

func (c *Checker) setAside(f, reason string) {
	if err := os.Rename(f, f+NoSciSuffix); err != nil {
		c.logger.Errorf("error renaming file %s (%v)", f, err)
		c.status = 1
		return
	}
	c.logger.Infof("%s in file: %s", reason, f)
}

// scrubFillValues sets every variable of an instrument to missing at indices
// where its conductivity and temperature are both exactly zero, the fill
// pattern Teledyne CTDs emit when the pump is off. Reports whether the
// dataset was modified.
func (c *Checker) scrubFillValues(ds *dataset.Dataset) bool {
	modified := false
	for _, vars := range c.instrumentVars {
		cond, ok := ds.Var(vars["conductivity"])
		if !ok {
			continue
		}
		temp, ok := ds.Var(vars["temperature"])
		if !ok {
			continue
		}

		var fillIdx []int
		for i, cv := range cond.Values {
			if cv == 0 && i < len(temp.Values) && temp.Values[i] == 0 {
				fillIdx = append(fillIdx, i)
			}
		}
		if len(fillIdx) == 0 {
			continue
		}

		for _, name := range vars {
			v, ok := ds.Var(name)
			if !ok {
				continue
			}
			for _, i := range fillIdx {
				v.Values[i] = math.NaN()
			}
			modified = true
		}
	}
	return modified
}
