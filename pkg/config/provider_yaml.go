package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements Provider for YAML configuration files.
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider.
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads and validates the hysteresis-test configuration. Keys not
// ending in _hysteresis_test are ignored so the file can carry configuration
// for other QC tests alongside.
func (y *YAMLProvider) LoadConfig() (*Data, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig map[string]struct {
		TestThreshold    *float64 `yaml:"test_threshold"`
		SuspectThreshold *float64 `yaml:"suspect_threshold"`
		FailThreshold    *float64 `yaml:"fail_threshold"`
	}
	if err := yaml.Unmarshal(cfgFile, &yamlConfig); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, y.filename, err)
	}

	config := &Data{Sensors: make(map[string]Thresholds)}
	for key, entry := range yamlConfig {
		sensor, ok := sensorFromKey(key)
		if !ok {
			continue
		}
		if entry.TestThreshold == nil || entry.SuspectThreshold == nil || entry.FailThreshold == nil {
			return nil, fmt.Errorf("%w: %s: %s is missing a threshold", ErrInvalid, y.filename, key)
		}
		th := Thresholds{
			TestThreshold:    *entry.TestThreshold,
			SuspectThreshold: *entry.SuspectThreshold,
			FailThreshold:    *entry.FailThreshold,
		}
		if th.TestThreshold <= 0 || th.SuspectThreshold <= 0 || th.FailThreshold <= 0 {
			return nil, fmt.Errorf("%w: %s: %s thresholds must be positive", ErrInvalid, y.filename, key)
		}
		if th.FailThreshold < th.SuspectThreshold {
			return nil, fmt.Errorf("%w: %s: %s fail_threshold below suspect_threshold", ErrInvalid, y.filename, key)
		}
		config.Sensors[sensor] = th
	}

	if len(config.Sensors) == 0 {
		return nil, fmt.Errorf("%w: %s: no hysteresis test entries", ErrInvalid, y.filename)
	}

	return config, nil
}

// LoadVariableMap loads an instrument-to-variable-name map (for example
// ctd_variables.yml), used by the science-variable check to address every
// variable belonging to one physical instrument.
func LoadVariableMap(filename string) (map[string]map[string]string, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var m map[string]map[string]string
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, filename, err)
	}
	return m, nil
}
