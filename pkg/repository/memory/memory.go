// Package memory is an in-process memory engine implementing
// interfaces.MemoryGateway. It serves development runs and tests; nothing is
// persisted across restarts.
package memory

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/webmasterarbez/elaoms/pkg/domain/interfaces"
	"github.com/webmasterarbez/elaoms/pkg/domain/model"
)

// Memory keeps memories per owner
type Memory struct {
	mu      sync.RWMutex
	entries map[model.CallerID][]*entry
	seq     uint64

	unavailable atomic.Bool
	now         func() time.Time
}

var _ interfaces.MemoryGateway = &Memory{}

// Option is a functional option for Memory
type Option func(*Memory)

// WithClock replaces time.Now for stored timestamps
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.now = now
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		entries: make(map[model.CallerID][]*entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetUnavailable makes every subsequent call fail with
// interfaces.ErrUpstreamUnavailable until reset
func (m *Memory) SetUnavailable(v bool) {
	m.unavailable.Store(v)
}

// Memories returns a copy of everything stored for owner, oldest first
func (m *Memory) Memories(owner model.CallerID) []*model.MemoryWriteIntent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.MemoryWriteIntent, 0, len(m.entries[owner]))
	for _, e := range m.entries[owner] {
		result = append(result, e.intent())
	}
	return result
}

// Close is a no-op
func (m *Memory) Close() error {
	return nil
}
