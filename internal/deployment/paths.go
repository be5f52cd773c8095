// Package deployment resolves glider deployment names to their on-disk data
// locations. Deployments are named <glider>-YYYYmmddTHHMM and live under a
// year directory beneath the deployments root.
package deployment

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// Environment variables pointing at the glider data home.
const (
	EnvDataHome     = "GLIDER_DATA_HOME"
	EnvDataHomeTest = "GLIDER_DATA_HOME_TEST"
)

var nameRe = regexp.MustCompile(`^(.+)-(\d{8}T\d{4})$`)

// RootDirs returns the glider data home and the deployments root beneath it.
// With test set, the test data home environment variable is consulted instead.
func RootDirs(test bool) (dataHome, deploymentsRoot string, err error) {
	envvar := EnvDataHome
	if test {
		envvar = EnvDataHomeTest
	}

	dataHome = os.Getenv(envvar)
	if dataHome == "" {
		return "", "", fmt.Errorf("%s not set", envvar)
	}
	if fi, err := os.Stat(dataHome); err != nil || !fi.IsDir() {
		return "", "", fmt.Errorf("invalid %s: %s", envvar, dataHome)
	}

	deploymentsRoot = filepath.Join(dataHome, "deployments")
	if fi, err := os.Stat(deploymentsRoot); err != nil || !fi.IsDir() {
		return "", "", fmt.Errorf("invalid deployments root: %s", deploymentsRoot)
	}

	return dataHome, deploymentsRoot, nil
}

// Paths are the resolved locations for one deployment.
type Paths struct {
	// Name is the canonical deployment name (glider-YYYYmmddTHHMM).
	Name string
	// Location is the deployment's root directory.
	Location string
	// QCQueue is the directory of profile files awaiting QC.
	QCQueue string
	// ProcLogs is the directory for per-deployment processing logs.
	ProcLogs string
	// QCConfigDir is the deployment-local QC configuration directory.
	QCConfigDir string
}

// Resolve parses a deployment name and locates its data directories under the
// deployments root for the given dataset type, CDM data type, and mode.
func Resolve(name, deploymentsRoot, datasetType, cdmDataType, mode string) (*Paths, error) {
	m := nameRe.FindStringSubmatch(name)
	if m == nil {
		return nil, fmt.Errorf("cannot pull glider name from %s", name)
	}
	glider := m[1]

	trajectoryDT, err := time.Parse("20060102T1504", m[2])
	if err != nil {
		return nil, fmt.Errorf("error parsing trajectory date %s: %w", m[2], err)
	}

	trajectory := fmt.Sprintf("%s-%s", glider, trajectoryDT.Format("20060102T1504"))
	location := filepath.Join(deploymentsRoot, fmt.Sprintf("%d", trajectoryDT.Year()), trajectory)
	if fi, err := os.Stat(location); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("deployment location does not exist: %s", location)
	}

	dataPath := filepath.Join(location, "data", "out", "profiles",
		fmt.Sprintf("%s-%s", datasetType, cdmDataType), mode)
	if fi, err := os.Stat(dataPath); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%s data directory not found: %s", trajectory, dataPath)
	}

	return &Paths{
		Name:        trajectory,
		Location:    location,
		QCQueue:     filepath.Join(dataPath, "qc_queue"),
		ProcLogs:    filepath.Join(location, "proc-logs"),
		QCConfigDir: filepath.Join(location, "config", "qc"),
	}, nil
}

// LogFileName builds the per-deployment log file name for one tool run.
func LogFileName(tool, datasetType, cdmDataType, mode string) string {
	return fmt.Sprintf("%s_%s-%s-%s.log", tool, datasetType, cdmDataType, mode)
}
