package measuring

import (
	"context"
	"time"

	"github.com/bft-labs/influxship/pkg/influx"
	"github.com/bft-labs/influxship/pkg/log"
)

// Uploader is the transport a Writer flushes through. *influx.Client
// satisfies it.
type Uploader interface {
	Write(lines []byte) error
	WriteAndWait(lines []byte) error
	Query(flux string) ([]byte, error)
	Close() error
}

// Dialer opens an Uploader for a resolved endpoint.
type Dialer func(ctx context.Context, ep *influx.ServerEndpoint) (Uploader, error)

// Option configures optional behavior of a Writer.
type Option func(*options)

type options struct {
	logger   log.Logger
	handler  EventHandler
	dialer   Dialer
	resolver influx.Resolver
	now      func() time.Time
}

func defaultOptions() options {
	return options{
		logger:  log.NoopLogger{},
		handler: BaseEventHandler{},
		now:     time.Now,
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = log.OrNoop(logger)
	}
}

// WithEventHandler receives flush outcomes. Handlers run with the writer
// locked and must not call back into it.
func WithEventHandler(h EventHandler) Option {
	return func(o *options) {
		if h != nil {
			o.handler = h
		}
	}
}

// WithDialer replaces the TCP transport.
func WithDialer(d Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithResolver replaces net.DefaultResolver for the endpoint host.
func WithResolver(r influx.Resolver) Option {
	return func(o *options) {
		o.resolver = r
	}
}

// WithClock replaces time.Now for the upload heuristic.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
