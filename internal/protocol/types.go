package protocol

import (
	"fmt"
	"sort"
	"sync"
)

// MessageSpec describes one message type known to the schema layer
type MessageSpec struct {
	ID     uint8  `mapstructure:"id" json:"id"`
	Name   string `mapstructure:"name" json:"name"`
	Length int    `mapstructure:"length" json:"length"`
}

// Registry maps message ids to their fixed payload length. Profiles without a
// length field use it to find where a frame ends.
type Registry struct {
	mu     sync.RWMutex
	byID   map[uint8]MessageSpec
	byName map[string]uint8
}

// NewRegistry creates a registry holding specs
func NewRegistry(specs ...MessageSpec) (*Registry, error) {
	r := &Registry{
		byID:   make(map[uint8]MessageSpec),
		byName: make(map[string]uint8),
	}
	for _, spec := range specs {
		if err := r.Register(spec); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a message spec. Ids and non-empty names must be unique.
func (r *Registry) Register(spec MessageSpec) error {
	if spec.Length < 0 {
		return fmt.Errorf("message %d: negative length %d", spec.ID, spec.Length)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byID[spec.ID]; ok {
		return fmt.Errorf("message %d already registered as %q", spec.ID, prev.Name)
	}
	if spec.Name != "" {
		if id, ok := r.byName[spec.Name]; ok {
			return fmt.Errorf("message name %q already used by id %d", spec.Name, id)
		}
		r.byName[spec.Name] = spec.ID
	}
	r.byID[spec.ID] = spec
	return nil
}

// Length reports the payload length of msgID. It has the shape of
// framing.LengthFunc.
func (r *Registry) Length(msgID uint8) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.byID[msgID]
	if !ok {
		return 0, false
	}
	return spec.Length, true
}

// Lookup returns the MessageSpec for msgID
func (r *Registry) Lookup(msgID uint8) (MessageSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.byID[msgID]
	return spec, ok
}

// ByName returns the MessageSpec registered under name
func (r *Registry) ByName(name string) (MessageSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return MessageSpec{}, false
	}
	return r.byID[id], true
}

// Specs lists all registered specs ordered by id
func (r *Registry) Specs() []MessageSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]MessageSpec, 0, len(r.byID))
	for _, spec := range r.byID {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CheckPayload verifies that payload has the registered length for msgID.
// Senders on lengthless profiles call it before encoding, since a receiver
// cannot find the end of a frame whose size disagrees with the schema.
func (r *Registry) CheckPayload(msgID uint8, payload []byte) error {
	n, ok := r.Length(msgID)
	if !ok {
		return fmt.Errorf("message %d is not registered", msgID)
	}
	if len(payload) != n {
		return fmt.Errorf("message %d: payload is %d bytes, schema says %d", msgID, len(payload), n)
	}
	return nil
}
