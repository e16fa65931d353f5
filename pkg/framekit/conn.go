package framekit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/YuminosukeSato/framekit/internal/framing"
)

// ErrConnClosed is returned by operations on a closed Conn
var ErrConnClosed = errors.New("framekit: connection closed")

// ConnOptions configures a framed connection
type ConnOptions struct {
	// Profile is the wire format. Required.
	Profile *Profile
	// Registry supplies payload lengths for profiles without a length field,
	// and lets Send reject payloads that disagree with the schema.
	Registry *Registry
	// Lengths overrides Registry as the length lookup.
	Lengths        LengthFunc
	Codec          Codec
	ReadBufferSize int
	Logger         *Logger
	Metrics        *StreamMetrics
}

// Conn sends and receives frames over a net.Conn. Send and Receive may be
// called concurrently with each other; concurrent Sends are serialized, as
// are concurrent Receives.
type Conn struct {
	conn     net.Conn
	profile  *Profile
	registry *Registry
	codec    Codec
	framer   *framing.Framer
	logger   *Logger
	metrics  *StreamMetrics

	readMu  sync.Mutex
	writeMu sync.Mutex

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps an established connection
func NewConn(nc net.Conn, opts ConnOptions) (*Conn, error) {
	if opts.Profile == nil {
		return nil, fmt.Errorf("profile is required")
	}

	lookup := opts.Lengths
	if lookup == nil && opts.Registry != nil {
		lookup = opts.Registry.Length
	}
	if !opts.Profile.HasLength() && lookup == nil {
		return nil, fmt.Errorf("profile %s has no length field: a message registry is required", opts.Profile.Name())
	}

	codec := opts.Codec
	if codec == nil {
		codec = &JSONCodec{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = NopLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewStreamMetrics()
	}

	c := &Conn{
		conn:     nc,
		profile:  opts.Profile,
		registry: opts.Registry,
		codec:    codec,
		logger:   logger.WithProfile(opts.Profile.Name()).WithRemote(remoteString(nc)),
		metrics:  metrics,
	}
	c.framer = framing.NewFramerWithReadSize(
		countingConn{Conn: nc, m: metrics},
		opts.Profile,
		lookup,
		opts.ReadBufferSize,
		framing.WithRejectHandler(c.onReject),
	)

	metrics.ConnectionsTotal.Add(1)
	metrics.ConnectionsActive.Add(1)
	return c, nil
}

// Dial connects to address, retrying until ctx expires when ctx carries a
// deadline
func Dial(ctx context.Context, network, address string, opts ConnOptions) (*Conn, error) {
	var d net.Dialer
	for {
		nc, err := d.DialContext(ctx, network, address)
		if err == nil {
			c, err := NewConn(nc, opts)
			if err != nil {
				_ = nc.Close()
				return nil, err
			}
			return c, nil
		}

		if _, ok := ctx.Deadline(); !ok {
			return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
		}

		// Wait a bit before retrying
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Profile returns the wire profile of the connection
func (c *Conn) Profile() *Profile { return c.profile }

// Metrics returns the connection's metrics
func (c *Conn) Metrics() *StreamMetrics { return c.metrics }

// Logger returns the connection scoped logger
func (c *Conn) Logger() *Logger { return c.logger }

func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Send encodes and writes one frame
func (c *Conn) Send(ctx context.Context, h Header, payload []byte) error {
	if c.closed.Load() {
		return ErrConnClosed
	}
	if c.registry != nil && !c.profile.HasLength() {
		if err := c.registry.CheckPayload(h.MsgID, payload); err != nil {
			c.metrics.EncodeErrors.Add(1)
			return err
		}
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("failed to set deadline: %w", err)
		}
		defer func() { _ = c.conn.SetWriteDeadline(time.Time{}) }()
	}

	if _, err := c.framer.WriteMessage(h, payload); err != nil {
		if errors.Is(err, ErrPayloadTooLarge) {
			c.metrics.EncodeErrors.Add(1)
		}
		return err
	}
	c.metrics.FramesEncoded.Add(1)
	return nil
}

// SendValue marshals v with the connection codec and sends it
func (c *Conn) SendValue(ctx context.Context, h Header, v interface{}) error {
	payload, err := c.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return c.Send(ctx, h, payload)
}

// Receive blocks until a valid frame arrives, the stream ends or ctx is done.
// Garbage and corrupt frames are skipped and counted in the metrics. A partial
// frame survives a cancelled Receive and is completed by the next call.
func (c *Conn) Receive(ctx context.Context) (Result, error) {
	if c.closed.Load() {
		return Result{}, ErrConnClosed
	}

	c.readMu.Lock()
	defer c.readMu.Unlock()

	stop := c.watchRead(ctx)
	res, err := c.framer.ReadFrame()
	stop()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		if c.closed.Load() {
			return Result{}, ErrConnClosed
		}
		return Result{}, err
	}

	c.metrics.ObserveFrame()
	return res, nil
}

// Decode unmarshals the payload of res with the connection codec
func (c *Conn) Decode(res Result, v interface{}) error {
	return c.codec.Unmarshal(res.Payload, v)
}

// Serve reads frames and hands each to h until the peer closes the stream,
// ctx is done or a read fails
func (c *Conn) Serve(ctx context.Context, h Handler) error {
	ctx = WithSessionID(ctx)
	c.logger.DebugContext(ctx, "serving connection")

	for {
		res, err := c.Receive(ctx)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, ErrConnClosed):
				c.logger.DebugContext(ctx, "connection finished")
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			}
			c.logger.ErrorContext(ctx, "failed to read frame", "error", err)
			return err
		}
		h.HandleFrame(ctx, c, res)
	}
}

// Close closes the underlying connection
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.conn.Close()
		c.metrics.ConnectionsActive.Add(-1)
	})
	return c.closeErr
}

// watchRead interrupts the pending read once ctx is done. Only ctx.Done is
// watched, so ctx.Err is already set when the read fails. The returned func
// must be called once the read is over.
func (c *Conn) watchRead(ctx context.Context) func() {
	if ctx.Done() == nil {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		select {
		case <-ctx.Done():
			// Unblock the pending Read
			_ = c.conn.SetReadDeadline(time.Unix(1, 0))
		case <-done:
		}
	}()

	return func() {
		close(done)
		<-finished
		_ = c.conn.SetReadDeadline(time.Time{})
	}
}

func (c *Conn) onReject(reason error, dropped int) {
	c.metrics.ObserveReject(reason, dropped)
	if !errors.Is(reason, ErrInvalidStartBytes) {
		c.logger.Debug("frame rejected", "reason", reason, "dropped", dropped)
	}
}

type countingConn struct {
	net.Conn
	m *StreamMetrics
}

func (c countingConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	c.m.BytesIn.Add(uint64(n))
	return n, err
}

func (c countingConn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	c.m.BytesOut.Add(uint64(n))
	return n, err
}

func remoteString(nc net.Conn) string {
	if addr := nc.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
