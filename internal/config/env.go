package config

import (
	"errors"
	"os"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "INFLUXSHIP_"

// ApplyEnvConfig applies INFLUXSHIP_* environment variables, skipping
// changed flags. All parse errors are returned together.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setString("host", env("HOST"), &cfg.Host)
	s.setString("org", env("ORG"), &cfg.Org)
	s.setString("bucket", env("BUCKET"), &cfg.Bucket)
	s.setString("token", env("TOKEN"), &cfg.Token)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)
	s.setString("topic", env("TOPIC"), &cfg.Topic)
	s.setString("node-name", env("NODE_NAME"), &cfg.NodeName)
	s.setString("namespace", env("NAMESPACE"), &cfg.Namespace)

	return errors.Join(
		s.setIntFromString("port", env("PORT"), &cfg.Port),
		s.setBoolFromString("await-response", env("AWAIT_RESPONSE"), &cfg.AwaitResponse),
		s.setDuration("dial-timeout", env("DIAL_TIMEOUT"), &cfg.DialTimeout),
		s.setDuration("response-timeout", env("RESPONSE_TIMEOUT"), &cfg.ResponseTimeout),
		s.setBoolFromString("exit-on-resolve-failure", env("EXIT_ON_RESOLVE_FAILURE"), &cfg.ExitOnResolveFailure),
		s.setBoolFromString("gzip", env("GZIP"), &cfg.Gzip),
		s.setIntFromString("steady-size-bytes", env("STEADY_SIZE_BYTES"), &cfg.SteadySizeBytes),
		s.setDuration("steady-interval", env("STEADY_INTERVAL"), &cfg.SteadyInterval),
		s.setIntFromString("first-float-precision", env("FIRST_FLOAT_PRECISION"), &cfg.FirstFloatPrecision),
		s.setIntFromString("float-precision", env("FLOAT_PRECISION"), &cfg.FloatPrecision),
	)
}
