// Command check-science-vars validates that glider profile files carry CTD
// science variables, setting aside files that don't and scrubbing known
// instrument fill readings from those that do.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/coastalobs/gliderqc/internal/dataset"
	"github.com/coastalobs/gliderqc/internal/deployment"
	"github.com/coastalobs/gliderqc/internal/log"
	"github.com/coastalobs/gliderqc/internal/scivars"
	"github.com/coastalobs/gliderqc/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	mode := flag.String("mode", "rt", "Deployment dataset status: rt or delayed")
	level := flag.String("level", "sci", "Dataset type: sci or ngdac")
	cdmDataType := flag.String("cdm-data-type", "profile", "CDM data type")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	test := flag.Bool("test", false, "Use "+deployment.EnvDataHomeTest+" as the data home")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("check-science-vars %s\n", version)
		os.Exit(0)
	}

	deployments := flag.Args()
	if len(deployments) == 0 {
		fmt.Fprintln(os.Stderr, "usage: check-science-vars [flags] deployment ...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	os.Exit(run(deployments, *level, *cdmDataType, *mode, *debug, *test))
}

func run(deployments []string, level, cdmDataType, mode string, debug, test bool) int {
	status := 0

	dataHome, deploymentsRoot, err := deployment.RootDirs(test)
	if err != nil {
		log.Errorf("%v", err)
		return 1
	}

	varsFile := filepath.Join(dataHome, "qc", "config", "ctd_variables.yml")
	instrumentVars, err := config.LoadVariableMap(varsFile)
	if err != nil {
		log.Errorf("Invalid CTD variable name config file %s: %v", varsFile, err)
		return 1
	}

	for _, name := range deployments {
		paths, err := deployment.Resolve(name, deploymentsRoot, level, cdmDataType, mode)
		if err != nil {
			log.Errorf("%s: %v", name, err)
			continue
		}
		if fi, err := os.Stat(paths.ProcLogs); err != nil || !fi.IsDir() {
			log.Errorf("%s deployment proc-logs directory not found", paths.Name)
			continue
		}

		logFile := filepath.Join(paths.ProcLogs,
			deployment.LogFileName("check_science_variables", level, cdmDataType, mode))
		logger := log.NewDeploymentLogger(logFile, debug)

		logger.Infof("Checking for science variables: %s", paths.QCQueue)

		files, _ := filepath.Glob(filepath.Join(paths.QCQueue, "*"+dataset.Ext))
		if len(files) == 0 {
			logger.Errorf("0 files found to check: %s", paths.QCQueue)
			status = 1
			continue
		}

		summary, runStatus := scivars.NewChecker(instrumentVars, logger).Run(files)
		if runStatus != 0 {
			status = 1
		}

		logger.Infof("Found %d files without CTD science variables (of %d total files)",
			summary.NoScienceFiles, summary.TotalFiles)
		logger.Infof("Removed 0.00 values (Teledyne fill values) for CTD variables in %d files (of %d total files)",
			summary.ZerosRemoved, summary.TotalFiles)
	}

	return status
}
