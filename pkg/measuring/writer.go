package measuring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/bft-labs/influxship/pkg/batch"
	"github.com/bft-labs/influxship/pkg/influx"
	"github.com/bft-labs/influxship/pkg/lineproto"
	"github.com/bft-labs/influxship/pkg/log"
)

// Writer buffers measurement lines and ships them to the database in
// batches. All methods are safe for concurrent use.
type Writer struct {
	mu sync.Mutex

	cfg      Config
	ep       *influx.ServerEndpoint
	up       Uploader
	dial     Dialer
	builder  *lineproto.Builder
	policy   *batch.Policy
	registry Registry

	timestamp int64
	fullName  string

	broken     bool
	closed     bool
	maxPending int
	dropped    int

	logger  log.Logger
	handler EventHandler
	now     func() time.Time
}

// New resolves the endpoint, connects, and returns a writer in bootstrap
// mode: the first recorded line is flushed immediately, later lines are
// batched by cfg.Steady.
func New(ctx context.Context, cfg Config, opts ...Option) (*Writer, error) {
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ep, err := influx.Resolve(ctx, influx.EndpointConfig{
		Host:          cfg.Host,
		Port:          cfg.Port,
		Org:           cfg.Org,
		Bucket:        cfg.Bucket,
		Token:         cfg.Token,
		AwaitResponse: cfg.AwaitResponse,
		Resolver:      o.resolver,
	})
	if err != nil {
		return nil, err
	}

	w := &Writer{
		cfg:        cfg,
		ep:         ep,
		dial:       o.dialer,
		builder:    lineproto.NewBuilder(lineproto.WithFloatPrecision(cfg.FirstFloatPrecision, cfg.FloatPrecision)),
		policy:     batch.NewPolicy(cfg.Steady, batch.WithClock(o.now)),
		fullName:   cfg.HostInfo.FullName(),
		maxPending: cfg.MaxPendingBytes,
		logger:     o.logger,
		handler:    o.handler,
		now:        o.now,
	}
	if w.dial == nil {
		w.dial = w.dialTCP
	}
	if w.maxPending == 0 {
		w.maxPending = DefaultMaxPendingBytes
	}

	up, err := w.dial(ctx, ep)
	if err != nil {
		return nil, err
	}
	w.up = up

	w.logger.Info("connected",
		log.String("endpoint", ep.String()),
		log.Bool("await_response", ep.AwaitResponse()),
	)
	return w, nil
}

func (w *Writer) dialTCP(ctx context.Context, ep *influx.ServerEndpoint) (Uploader, error) {
	var opts []influx.ClientOption
	if w.cfg.Gzip {
		opts = append(opts, influx.WithGzip(gzip.BestSpeed))
	}
	if w.cfg.ResponseTimeout > 0 {
		opts = append(opts, influx.WithResponseTimeout(w.cfg.ResponseTimeout))
	}
	return influx.Open(ctx, ep, influx.DialOptions{Timeout: w.cfg.DialTimeout}, opts...)
}

// Endpoint returns the resolved endpoint.
func (w *Writer) Endpoint() *influx.ServerEndpoint { return w.ep }

// RegisterMeasurement registers a measurement name and returns its key.
// The columns are informational.
func (w *Writer) RegisterMeasurement(name string, columns []string) Key {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.registry.Register(name, columns)
}

// UseTimestamp sets the timestamp, in nanoseconds, written by the
// RecordLatency, RecordArrival and RecordActivationJitter helpers.
func (w *Writer) UseTimestamp(ts int64) {
	w.mu.Lock()
	w.timestamp = ts
	w.mu.Unlock()
}

// Record appends one line and flushes when the upload heuristic says so.
// A line that cannot be encoded is dropped without touching earlier lines.
// After a transport failure lines keep accumulating until Reconnect, up to
// Config.MaxPendingBytes; beyond that Record drops the line and returns
// ErrPendingLimit.
func (w *Writer) Record(key Key, tags []lineproto.Tag, fields []lineproto.Field, ts int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record(key, tags, fields, ts)
}

func (w *Writer) record(key Key, tags []lineproto.Tag, fields []lineproto.Field, ts int64) error {
	if w.closed {
		return ErrClosed
	}
	m, ok := w.registry.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMeasurement, key)
	}
	if w.broken && w.builder.Size() >= w.maxPending {
		w.dropped++
		if w.dropped == 1 {
			w.logger.Warn("pending buffer full while disconnected, dropping lines",
				log.Bytes("pending", w.builder.Size()),
				log.Bytes("limit", w.maxPending))
		}
		return fmt.Errorf("%w: %w", ErrDisconnected, ErrPendingLimit)
	}
	if err := w.builder.AppendLine(m.Name, tags, fields, ts); err != nil {
		return err
	}
	if !w.policy.ShouldUpload(w.builder) {
		return nil
	}
	return w.flush(false)
}

// RecordLatency writes the send and arrival time of a message.
func (w *Writer) RecordLatency(key Key, msg MessageVars, publisher lineproto.HexID, arrival int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record(key, w.hostTags(publisher), []lineproto.Field{
		lineproto.IntField("sent_time", msg.Timestamp),
		lineproto.IntField("arrive_time", arrival),
		lineproto.IntField("msg_id", msg.Identifier),
	}, w.timestamp)
}

// RecordArrival writes that a message arrived.
func (w *Writer) RecordArrival(key Key, msg MessageVars, publisher lineproto.HexID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record(key, w.hostTags(publisher), []lineproto.Field{
		lineproto.IntField("msg_id", msg.Identifier),
	}, w.timestamp)
}

// RecordActivationJitter writes the difference, in nanoseconds, between the
// actual and the expected activation of a timer.
func (w *Writer) RecordActivationJitter(key Key, jitter int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var tags []lineproto.Tag
	if w.fullName != "" {
		tags = append(tags, lineproto.StringTag("timer", w.fullName))
	}
	return w.record(key, tags, []lineproto.Field{
		lineproto.IntField("activation_jitter", jitter),
	}, w.timestamp)
}

// hostTags omits empty topic and node name tags, which line protocol
// cannot carry.
func (w *Writer) hostTags(publisher lineproto.HexID) []lineproto.Tag {
	tags := []lineproto.Tag{lineproto.HexTag("publisher", publisher)}
	if w.cfg.HostInfo.Topic != "" {
		tags = append(tags, lineproto.StringTag("topic", w.cfg.HostInfo.Topic))
	}
	if w.fullName != "" {
		tags = append(tags, lineproto.StringTag("node_full_name", w.fullName))
	}
	return tags
}

// flush sends the buffer. The heuristic counts the attempt as a flush even
// when it fails, so a failing server is not hammered on every record.
func (w *Writer) flush(await bool) error {
	n := w.builder.Size()
	if n == 0 {
		return nil
	}
	if w.broken {
		return ErrDisconnected
	}

	start := w.now()
	var err error
	if await || w.ep.AwaitResponse() {
		await = true
		err = w.up.WriteAndWait(w.builder.Bytes())
	} else {
		err = w.up.Write(w.builder.Bytes())
	}
	w.policy.AfterFlush()

	if err != nil {
		return w.flushFailed(n, err)
	}

	w.builder.Clear()
	elapsed := w.now().Sub(start)
	w.logger.Debug("flushed",
		log.Bytes("bytes", n),
		log.Bool("awaited", await),
		log.Duration("duration", elapsed),
	)
	w.handler.OnFlush(FlushEvent{Bytes: n, Awaited: await, Duration: elapsed})
	return nil
}

// flushFailed classifies a flush error. A rejected payload was delivered,
// so it is dropped. Any other failure leaves the stream in an unknown
// state: the lines stay buffered and the writer waits for Reconnect.
func (w *Writer) flushFailed(n int, err error) error {
	code := influx.ReturnCode(err)
	rejected := errors.Is(err, influx.ErrStatus)
	if rejected {
		w.builder.Clear()
	} else {
		w.broken = true
	}

	w.logger.Error("flush failed",
		log.Bytes("bytes", n),
		log.Code(code),
		log.Bool("disconnected", w.broken),
		log.Err(err),
	)
	w.handler.OnFlushError(FlushErrorEvent{Bytes: n, Code: code, Err: err, Disconnected: w.broken})

	if !rejected {
		return fmt.Errorf("flush %d bytes: %w: %w", n, ErrDisconnected, err)
	}
	return fmt.Errorf("flush %d bytes: %w", n, err)
}

// FlushAndWait sends any buffered lines and waits for the response, even in
// fire-and-forget mode.
func (w *Writer) FlushAndWait() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	return w.flush(true)
}

// Query runs a flux query over the writer's connection.
func (w *Writer) Query(flux string) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}
	if w.broken {
		return nil, ErrDisconnected
	}
	body, err := w.up.Query(flux)
	if err != nil && !errors.Is(err, influx.ErrStatus) {
		w.broken = true
	}
	return body, err
}

// SetSteadyThresholds changes the batching thresholds. They apply at once
// when the writer is past its first flush, otherwise after it.
func (w *Writer) SetSteadyThresholds(t batch.Thresholds) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.policy.SetSteady(t)
	w.logger.Info("steady thresholds updated",
		log.Int("size_bytes", t.Size),
		log.Duration("interval", t.Interval),
		log.Bool("active", w.policy.Upgraded()),
	)
}

// Thresholds returns the thresholds currently in effect.
func (w *Writer) Thresholds() batch.Thresholds {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.policy.Thresholds()
}

// Pending returns the number of buffered bytes.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.builder.Size()
}

// Reconnect replaces the connection. Buffered lines are kept and the
// heuristic restarts in bootstrap mode, so the next record flushes them on
// the fresh connection.
func (w *Writer) Reconnect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	if err := w.up.Close(); err != nil {
		w.logger.Debug("closing old connection", log.Err(err))
	}
	up, err := w.dial(ctx, w.ep)
	if err != nil {
		w.broken = true
		return err
	}
	w.up = up
	w.broken = false
	w.policy.Reset()
	w.logger.Info("reconnected",
		log.String("endpoint", w.ep.String()),
		log.Bytes("pending", w.builder.Size()),
		log.Int("dropped_lines", w.dropped))
	w.dropped = 0
	return nil
}

// Close flushes buffered lines, waits for the response, and closes the
// connection. The flush error, if any, is returned together with the
// close error.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	var flushErr error
	if n := w.builder.Size(); n > 0 {
		flushErr = w.flush(true)
		if flushErr != nil {
			w.logger.Warn("shutdown flush failed", log.Bytes("bytes", n), log.Code(influx.ReturnCode(flushErr)), log.Err(flushErr))
		} else {
			w.logger.Info("shutdown flush done", log.Bytes("bytes", n), log.Code(0))
		}
	}

	w.closed = true
	return errors.Join(flushErr, w.up.Close())
}
