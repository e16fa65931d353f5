package framekit

import (
	"context"
	"sync"
)

// Handler reacts to a frame received on a connection
type Handler interface {
	HandleFrame(ctx context.Context, c *Conn, res Result)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, c *Conn, res Result)

func (f HandlerFunc) HandleFrame(ctx context.Context, c *Conn, res Result) {
	f(ctx, c, res)
}

// Mux routes frames to handlers keyed by Header.ID(), the package id and msg
// id combined. Profiles without a package id route on the msg id alone.
type Mux struct {
	mu       sync.RWMutex
	handlers map[uint16]Handler
	fallback Handler
	logger   *Logger
}

// NewMux creates an empty router. Frames without a handler are logged and
// dropped unless a default handler is set.
func NewMux(logger *Logger) *Mux {
	if logger == nil {
		logger = NopLogger()
	}
	return &Mux{
		handlers: make(map[uint16]Handler),
		logger:   logger,
	}
}

// Handle registers h for id, replacing any previous handler
func (m *Mux) Handle(id uint16, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[id] = h
}

// HandleFunc registers fn for id
func (m *Mux) HandleFunc(id uint16, fn func(ctx context.Context, c *Conn, res Result)) {
	m.Handle(id, HandlerFunc(fn))
}

// HandleDefault sets the handler for ids nothing else claims
func (m *Mux) HandleDefault(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = h
}

// HandleFrame dispatches res
func (m *Mux) HandleFrame(ctx context.Context, c *Conn, res Result) {
	id := res.Header.ID()

	m.mu.RLock()
	h, ok := m.handlers[id]
	if !ok {
		h = m.fallback
	}
	m.mu.RUnlock()

	if h == nil {
		m.logger.WarnContext(ctx, "no handler for frame", "id", id, "payload_len", res.PayloadLen())
		return
	}
	h.HandleFrame(ctx, c, res)
}
