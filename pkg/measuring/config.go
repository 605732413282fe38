package measuring

import (
	"fmt"
	"time"

	"github.com/bft-labs/influxship/pkg/batch"
	"github.com/bft-labs/influxship/pkg/lineproto"
)

// Config configures a Writer.
type Config struct {
	Host   string
	Port   int
	Org    string
	Bucket string
	Token  string

	// AwaitResponse makes every flush wait for the server response. When
	// false, flushes return once the request is written and only the
	// shutdown flush waits.
	AwaitResponse bool

	DialTimeout time.Duration
	// ResponseTimeout bounds response reads. Zero blocks until the server
	// answers.
	ResponseTimeout time.Duration

	Gzip bool

	// Steady are the upload thresholds used after the first flush.
	Steady batch.Thresholds

	FirstFloatPrecision int
	FloatPrecision      int

	HostInfo HostInfo

	// MaxPendingBytes bounds the buffer while the writer is disconnected.
	// Once reached, further records are dropped until Reconnect. Zero
	// selects DefaultMaxPendingBytes.
	MaxPendingBytes int
}

// DefaultMaxPendingBytes is the pending buffer bound of a disconnected
// writer when Config.MaxPendingBytes is zero.
const DefaultMaxPendingBytes = 4 << 20

// DefaultConfig returns the configuration of a local database in
// fire-and-forget mode.
func DefaultConfig() Config {
	return Config{
		Host:                "127.0.0.1",
		Port:                8086,
		DialTimeout:         5 * time.Second,
		Steady:              batch.Steady,
		FirstFloatPrecision: lineproto.DefaultFirstFloatPrecision,
		FloatPrecision:      lineproto.DefaultFloatPrecision,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.DialTimeout < 0 || c.ResponseTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	if c.Steady.Size < 0 || c.Steady.Interval < 0 {
		return fmt.Errorf("%w: steady thresholds must not be negative", ErrInvalidConfig)
	}
	if c.FirstFloatPrecision < 0 || c.FloatPrecision < 0 {
		return fmt.Errorf("%w: float precision must not be negative", ErrInvalidConfig)
	}
	if c.MaxPendingBytes < 0 {
		return fmt.Errorf("%w: max pending bytes must not be negative", ErrInvalidConfig)
	}
	return nil
}
