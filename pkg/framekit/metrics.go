package framekit

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StreamMetrics tracks frame traffic for one or more connections. Counters are
// updated atomically and may be shared between connections.
type StreamMetrics struct {
	// Frame metrics
	FramesEncoded atomic.Uint64
	FramesDecoded atomic.Uint64
	EncodeErrors  atomic.Uint64

	// Byte metrics
	BytesIn        atomic.Uint64
	BytesOut       atomic.Uint64
	BytesDiscarded atomic.Uint64

	// Rejections, by reason
	StartByteMisses  atomic.Uint64
	UnknownLengths   atomic.Uint64
	ChecksumFailures atomic.Uint64

	// Connection metrics
	ConnectionsActive atomic.Int32
	ConnectionsTotal  atomic.Uint64

	lastFrame atomic.Int64 // unix nanos
}

// NewStreamMetrics creates a new metrics tracker
func NewStreamMetrics() *StreamMetrics {
	return &StreamMetrics{}
}

// ObserveReject records bytes a decoder dropped. Its signature matches
// framing.RejectFunc.
func (m *StreamMetrics) ObserveReject(reason error, dropped int) {
	m.BytesDiscarded.Add(uint64(dropped))
	switch {
	case errors.Is(reason, ErrChecksumMismatch):
		m.ChecksumFailures.Add(1)
	case errors.Is(reason, ErrUnknownMessageLength):
		m.UnknownLengths.Add(1)
	case errors.Is(reason, ErrInvalidStartBytes):
		m.StartByteMisses.Add(1)
	}
}

// ObserveFrame records a successfully decoded frame
func (m *StreamMetrics) ObserveFrame() {
	m.FramesDecoded.Add(1)
	m.lastFrame.Store(time.Now().UnixNano())
}

// LastFrame returns when the last valid frame was decoded, or the zero time.
// Transports use it for liveness policies.
func (m *StreamMetrics) LastFrame() time.Time {
	ns := m.lastFrame.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// GetMetricsSnapshot returns a snapshot of current metrics
func (m *StreamMetrics) GetMetricsSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		FramesEncoded:     m.FramesEncoded.Load(),
		FramesDecoded:     m.FramesDecoded.Load(),
		EncodeErrors:      m.EncodeErrors.Load(),
		BytesIn:           m.BytesIn.Load(),
		BytesOut:          m.BytesOut.Load(),
		BytesDiscarded:    m.BytesDiscarded.Load(),
		StartByteMisses:   m.StartByteMisses.Load(),
		UnknownLengths:    m.UnknownLengths.Load(),
		ChecksumFailures:  m.ChecksumFailures.Load(),
		ConnectionsActive: m.ConnectionsActive.Load(),
		ConnectionsTotal:  m.ConnectionsTotal.Load(),
		LastFrame:         m.LastFrame(),
		Timestamp:         time.Now(),
	}
}

// MetricsSnapshot represents a point-in-time metrics snapshot
type MetricsSnapshot struct {
	// Frames
	FramesEncoded uint64
	FramesDecoded uint64
	EncodeErrors  uint64

	// Bytes
	BytesIn        uint64
	BytesOut       uint64
	BytesDiscarded uint64

	// Rejections
	StartByteMisses  uint64
	UnknownLengths   uint64
	ChecksumFailures uint64

	// Connections
	ConnectionsActive int32
	ConnectionsTotal  uint64

	LastFrame time.Time
	Timestamp time.Time
}

// Collector exposes the metrics to prometheus under namespace
func (m *StreamMetrics) Collector(namespace string) prometheus.Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "stream", name), help, labels, nil)
	}
	return &streamCollector{
		m:           m,
		frames:      desc("frames_total", "Frames processed, by direction.", "direction"),
		bytes:       desc("bytes_total", "Wire bytes, by direction.", "direction"),
		discarded:   desc("discarded_bytes_total", "Bytes dropped while resynchronizing."),
		rejects:     desc("rejects_total", "Rejected frames or bytes, by reason.", "reason"),
		encodeError: desc("encode_errors_total", "Frames that could not be encoded."),
		active:      desc("connections_active", "Open framed connections."),
	}
}

type streamCollector struct {
	m           *StreamMetrics
	frames      *prometheus.Desc
	bytes       *prometheus.Desc
	discarded   *prometheus.Desc
	rejects     *prometheus.Desc
	encodeError *prometheus.Desc
	active      *prometheus.Desc
}

func (c *streamCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.frames
	ch <- c.bytes
	ch <- c.discarded
	ch <- c.rejects
	ch <- c.encodeError
	ch <- c.active
}

func (c *streamCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.m.GetMetricsSnapshot()
	counter := func(d *prometheus.Desc, v uint64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	counter(c.frames, s.FramesEncoded, "out")
	counter(c.frames, s.FramesDecoded, "in")
	counter(c.bytes, s.BytesOut, "out")
	counter(c.bytes, s.BytesIn, "in")
	counter(c.discarded, s.BytesDiscarded)
	counter(c.rejects, s.StartByteMisses, "start_bytes")
	counter(c.rejects, s.UnknownLengths, "unknown_length")
	counter(c.rejects, s.ChecksumFailures, "checksum")
	counter(c.encodeError, s.EncodeErrors)
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(s.ConnectionsActive))
}
