package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bft-labs/influxship/pkg/batch"
	"github.com/bft-labs/influxship/pkg/lineproto"
	"github.com/bft-labs/influxship/pkg/measuring"
)

// Config holds CLI configuration for influxship.
type Config struct {
	Host   string
	Port   int
	Org    string
	Bucket string
	Token  string

	AwaitResponse   bool
	DialTimeout     time.Duration
	ResponseTimeout time.Duration

	// ExitOnResolveFailure makes the CLI exit when the host cannot be
	// resolved instead of reporting the error and retrying.
	ExitOnResolveFailure bool

	Gzip bool

	SteadySizeBytes int
	SteadyInterval  time.Duration

	FirstFloatPrecision int
	FloatPrecision      int

	LogLevel string

	Topic     string
	NodeName  string
	Namespace string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Host:                "127.0.0.1",
		Port:                8086,
		DialTimeout:         5 * time.Second,
		SteadySizeBytes:     batch.Steady.Size,
		SteadyInterval:      batch.Steady.Interval,
		FirstFloatPrecision: lineproto.DefaultFirstFloatPrecision,
		FloatPrecision:      lineproto.DefaultFloatPrecision,
		LogLevel:            "info",
		NodeName:            "influxship",
		Namespace:           "/",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Org == "" {
		return fmt.Errorf("org is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if c.DialTimeout < 0 || c.ResponseTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.SteadySizeBytes < 0 || c.SteadyInterval < 0 {
		return fmt.Errorf("steady thresholds must not be negative")
	}
	if c.FirstFloatPrecision < 0 || c.FloatPrecision < 0 {
		return fmt.Errorf("float precision must not be negative")
	}
	return nil
}

// Steady returns the steady-state upload thresholds.
func (c Config) Steady() batch.Thresholds {
	return batch.Thresholds{Size: c.SteadySizeBytes, Interval: c.SteadyInterval}
}

// Measuring converts the CLI configuration into a writer configuration.
func (c Config) Measuring() measuring.Config {
	return measuring.Config{
		Host:                c.Host,
		Port:                c.Port,
		Org:                 c.Org,
		Bucket:              c.Bucket,
		Token:               c.Token,
		AwaitResponse:       c.AwaitResponse,
		DialTimeout:         c.DialTimeout,
		ResponseTimeout:     c.ResponseTimeout,
		Gzip:                c.Gzip,
		Steady:              c.Steady(),
		FirstFloatPrecision: c.FirstFloatPrecision,
		FloatPrecision:      c.FloatPrecision,
		HostInfo: measuring.HostInfo{
			Topic:     c.Topic,
			NodeName:  c.NodeName,
			Namespace: c.Namespace,
		},
	}
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.Token != "" {
		c.Token = "*****"
	}
	return c
}

// configSetter applies values unless the corresponding flag was set on the
// command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets an int value that may legitimately be zero.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses an environment value; zero is accepted.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString accepts anything strconv.ParseBool does.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}
