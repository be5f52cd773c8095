// Command hysteresis-qc runs the CTD hysteresis test over one or more glider
// deployments, flagging paired down/up profiles whose sensor traces show lag.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/coastalobs/gliderqc/internal/dataset"
	"github.com/coastalobs/gliderqc/internal/deployment"
	"github.com/coastalobs/gliderqc/internal/hysteresis"
	"github.com/coastalobs/gliderqc/internal/log"
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
		fmt.Printf("hysteresis-qc %s\n", version)
		os.Exit(0)
	}

	deployments := flag.Args()
	if len(deployments) == 0 {
		fmt.Fprintln(os.Stderr, "usage: hysteresis-qc [flags] deployment ...")
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

	defaultQCConfig := filepath.Join(dataHome, "qc", "config")
	if !isDir(defaultQCConfig) {
		log.Warnf("Invalid QC config root: %s", defaultQCConfig)
		return 1
	}

	for _, name := range deployments {
		paths, err := deployment.Resolve(name, deploymentsRoot, level, cdmDataType, mode)
		if err != nil {
			log.Errorf("%s: %v", name, err)
			continue
		}
		if !isDir(paths.ProcLogs) {
			log.Errorf("%s deployment proc-logs directory not found", paths.Name)
			continue
		}

		logFile := filepath.Join(paths.ProcLogs,
			deployment.LogFileName("ctd_hysteresis_test", level, cdmDataType, mode))
		logger := log.NewDeploymentLogger(logFile, debug)

		logger.Infof("Checking for CTD sensor lag: %s", paths.QCQueue)

		cfgFile := filepath.Join(paths.QCConfigDir, "ctd_hysteresis.yml")
		if !isFile(cfgFile) {
			logger.Warnf("Deployment config file not specified: %s. Using default config.", cfgFile)
			cfgFile = filepath.Join(defaultQCConfig, "ctd_hysteresis.yml")
			if !isFile(cfgFile) {
				logger.Errorf("Invalid default config file: %s", cfgFile)
				status = 1
				continue
			}
		}
		logger.Infof("Using config file: %s", cfgFile)

		cfg, err := config.NewYAMLProvider(cfgFile).LoadConfig()
		if err != nil {
			logger.Errorf("Error loading config file %s: %v", cfgFile, err)
			status = 1
			continue
		}

		files, _ := filepath.Glob(filepath.Join(paths.QCQueue, "*"+dataset.Ext))
		if len(files) == 0 {
			logger.Errorf("0 files found to QC: %s", paths.QCQueue)
			status = 1
			continue
		}

		summary, runStatus := hysteresis.NewDriver(cfg, logger).Run(files)
		if runStatus != 0 {
			status = 1
		}

		for _, sensor := range hysteresis.TestVariables {
			s, ok := summary[sensor]
			if !ok {
				continue
			}
			logger.Infof("%s: %d unknown profiles found (of %d total profiles)", sensor, s.UnknownProfiles, len(files))
			logger.Infof("%s: %d suspect profiles found (of %d total profiles)", sensor, s.SuspectProfiles, len(files))
			logger.Infof("%s: %d failed profiles found (of %d total profiles)", sensor, s.FailedProfiles, len(files))
		}
	}

	return status
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
