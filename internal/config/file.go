package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config with string durations. Pointers mark values
// for which zero or false is meaningful.
type FileConfig struct {
	Host                 string `toml:"host" yaml:"host"`
	Port                 int    `toml:"port" yaml:"port"`
	Org                  string `toml:"org" yaml:"org"`
	Bucket               string `toml:"bucket" yaml:"bucket"`
	Token                string `toml:"token" yaml:"token"`
	AwaitResponse        *bool  `toml:"await_response" yaml:"await_response"`
	DialTimeout          string `toml:"dial_timeout" yaml:"dial_timeout"`
	ResponseTimeout      string `toml:"response_timeout" yaml:"response_timeout"`
	ExitOnResolveFailure *bool  `toml:"exit_on_resolve_failure" yaml:"exit_on_resolve_failure"`
	Gzip                 *bool  `toml:"gzip" yaml:"gzip"`
	SteadySizeBytes      int    `toml:"steady_size_bytes" yaml:"steady_size_bytes"`
	SteadyInterval       string `toml:"steady_interval" yaml:"steady_interval"`
	FirstFloatPrecision  *int   `toml:"first_float_precision" yaml:"first_float_precision"`
	FloatPrecision       *int   `toml:"float_precision" yaml:"float_precision"`
	LogLevel             string `toml:"log_level" yaml:"log_level"`
	Topic                string `toml:"topic" yaml:"topic"`
	NodeName             string `toml:"node_name" yaml:"node_name"`
	Namespace            string `toml:"namespace" yaml:"namespace"`
}

// LoadFileConfig reads a config file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = toml.Unmarshal(b, &fc)
	}
	if err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.influxship/config.toml, or "" without a
// home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".influxship", "config.toml")
	}
	return ""
}

// ApplyFileConfig copies file values into cfg, skipping changed flags.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", fc.Host, &cfg.Host)
	s.setInt("port", fc.Port, &cfg.Port)
	s.setString("org", fc.Org, &cfg.Org)
	s.setString("bucket", fc.Bucket, &cfg.Bucket)
	s.setString("token", fc.Token, &cfg.Token)
	s.setBool("await-response", fc.AwaitResponse, &cfg.AwaitResponse)

	if err := s.setDuration("dial-timeout", fc.DialTimeout, &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("response-timeout", fc.ResponseTimeout, &cfg.ResponseTimeout); err != nil {
		return err
	}
	if err := s.setDuration("steady-interval", fc.SteadyInterval, &cfg.SteadyInterval); err != nil {
		return err
	}

	s.setBool("exit-on-resolve-failure", fc.ExitOnResolveFailure, &cfg.ExitOnResolveFailure)
	s.setBool("gzip", fc.Gzip, &cfg.Gzip)
	s.setInt("steady-size-bytes", fc.SteadySizeBytes, &cfg.SteadySizeBytes)
	s.setIntPtr("first-float-precision", fc.FirstFloatPrecision, &cfg.FirstFloatPrecision)
	s.setIntPtr("float-precision", fc.FloatPrecision, &cfg.FloatPrecision)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("topic", fc.Topic, &cfg.Topic)
	s.setString("node-name", fc.NodeName, &cfg.NodeName)
	s.setString("namespace", fc.Namespace, &cfg.Namespace)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
