package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents collector configuration file.
type Config struct {
	API       APIConfig       `yaml:"api"`
	SNMP      SNMPConfig      `yaml:"snmp"`
	Files     FilesConfig     `yaml:"files"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// APIConfig describes the systeminfo endpoint exposed by every appliance.
type APIConfig struct {
	Port         int    `yaml:"port" validate:"min=1,max=65535"`
	EndpointPath string `yaml:"endpoint_path" validate:"required,startswith=/"`
	SerialField  string `yaml:"serial_field" validate:"required"`
	TimeoutMS    int    `yaml:"timeout_ms" validate:"min=1"`
	// Appliances typically present self-signed certificates, so certificate
	// verification is off by default. Set to false to require a trusted chain.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// SNMPConfig enables the SNMP serial fallback for appliances whose REST API
// is unreachable.
type SNMPConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Community string `yaml:"community"`
	Port      int    `yaml:"port" validate:"min=0,max=65535"`
	TimeoutMS int    `yaml:"timeout_ms" validate:"min=0"`
}

// FilesConfig holds the fixed input/output paths.
type FilesConfig struct {
	Targets     string `yaml:"targets" validate:"required"`
	Credentials string `yaml:"credentials" validate:"required"`
	Results     string `yaml:"results" validate:"required"`
	// Summary may be empty to skip writing the run summary.
	Summary string `yaml:"summary"`
}

// SchedulerConfig configures periodic re-collection in watch mode.
type SchedulerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Tick    string `yaml:"tick"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

var validate = validator.New()

// DefaultConfig returns the zero-configuration behavior: fixed-path inputs in
// the working directory, the vendor systeminfo endpoint on 443.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Port:               443,
			EndpointPath:       "/api/v1/systeminfo/?format=json",
			SerialField:        "sn",
			TimeoutMS:          5000,
			InsecureSkipVerify: true,
		},
		SNMP: SNMPConfig{
			Port:      161,
			TimeoutMS: 2000,
		},
		Files: FilesConfig{
			Targets:     "ip_list.csv",
			Credentials: "password.txt",
			Results:     "results.csv",
			Summary:     "summary.json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads YAML configuration. A missing file falls back to defaults so the
// collector runs without any configuration at all.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints after unmarshalling.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			e := fieldErrs[0]
			return fmt.Errorf("invalid config: %s fails %q", e.Namespace(), e.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.SNMP.Enabled && c.SNMP.Community == "" {
		return errors.New("invalid config: snmp enabled without a community")
	}
	return nil
}
