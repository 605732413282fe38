package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/influxship/internal/config"
	"github.com/bft-labs/influxship/pkg/influx"
	"github.com/bft-labs/influxship/pkg/log"
)

const helpDescription = `
Ship timing measurements to InfluxDB over a raw HTTP/1.1 connection.

Lines are encoded in line protocol and batched: the first line is sent at
once, later lines once 64000 bytes or 15s have accumulated. Configure via
file ($HOME/.influxship/config.toml), INFLUXSHIP_* environment, or flags.
`

var exampleUsage = strings.TrimSpace(`
  influxship jitter --org lab --bucket telemetry --token <token> --period 10ms
  influxship query --org lab 'from(bucket:"telemetry") |> range(start: -1m)'
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the configuration shared by all subcommands.
type cli struct {
	cfg     config.Config
	cfgPath string

	// base is the configuration before the file and environment were
	// applied; the threshold watcher layers reloads over it.
	base    config.Config
	changed map[string]bool
	used    string

	logger *log.ZerologAdapter
}

// load layers file and environment over the flags and validates.
func (c *cli) load(cmd *cobra.Command) error {
	c.changed = map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { c.changed[f.Name] = true })

	c.base = c.cfg
	used, err := config.Load(&c.cfg, c.cfgPath, c.changed)
	if err != nil {
		return err
	}
	c.used = used

	c.logger = log.NewZerologAdapter(c.cfg.LogLevel)
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	zl := c.logger.Logger()
	zl.Info().Str("file", c.used).Interface("config", c.cfg.Redacted()).Msg("configuration")
	return nil
}

func newRootCommand(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "influxship",
		Short:         "Ship timing measurements to InfluxDB",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load(cmd)
		},
	}

	cfg := &c.cfg
	f := root.PersistentFlags()
	f.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.influxship/config.toml)")
	f.StringVar(&cfg.Host, "host", cfg.Host, "database host name or address")
	f.IntVar(&cfg.Port, "port", cfg.Port, "database port")
	f.StringVar(&cfg.Org, "org", cfg.Org, "organization")
	f.StringVar(&cfg.Bucket, "bucket", cfg.Bucket, "bucket")
	f.StringVar(&cfg.Token, "token", cfg.Token, "API token")
	f.BoolVar(&cfg.AwaitResponse, "await-response", cfg.AwaitResponse, "wait for the server response on every flush")
	f.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "connect timeout")
	f.DurationVar(&cfg.ResponseTimeout, "response-timeout", cfg.ResponseTimeout, "response read timeout (0 waits forever)")
	f.BoolVar(&cfg.ExitOnResolveFailure, "exit-on-resolve-failure", cfg.ExitOnResolveFailure, "exit when the host cannot be resolved instead of retrying")
	f.BoolVar(&cfg.Gzip, "gzip", cfg.Gzip, "gzip request bodies")
	f.IntVar(&cfg.SteadySizeBytes, "steady-size-bytes", cfg.SteadySizeBytes, "flush once the batch exceeds this many bytes")
	f.DurationVar(&cfg.SteadyInterval, "steady-interval", cfg.SteadyInterval, "flush once this much time has passed since the last flush")
	f.IntVar(&cfg.FirstFloatPrecision, "first-float-precision", cfg.FirstFloatPrecision, "decimal places of the first float field of a line")
	f.IntVar(&cfg.FloatPrecision, "float-precision", cfg.FloatPrecision, "decimal places of later float fields")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	f.StringVar(&cfg.Topic, "topic", cfg.Topic, "topic tag of latency lines")
	f.StringVar(&cfg.NodeName, "node-name", cfg.NodeName, "node name")
	f.StringVar(&cfg.Namespace, "namespace", cfg.Namespace, "node namespace")

	root.AddCommand(newJitterCommand(c), newQueryCommand(c))
	return root
}

func main() {
	c := &cli{cfg: config.DefaultConfig()}
	root := newRootCommand(c)

	if err := root.Execute(); err != nil {
		logger := c.logger
		if logger == nil {
			logger = log.NewZerologAdapter("info")
		}
		zl := logger.Logger()
		if errors.Is(err, influx.ErrResolve) && c.cfg.ExitOnResolveFailure {
			zl.Error().Err(err).Int("code", influx.ReturnCode(err)).Msg("cannot resolve database host, exiting")
		} else {
			zl.Error().Err(err).Int("code", influx.ReturnCode(err)).Msg("influxship")
		}
		os.Exit(1)
	}
}
