// Package flush decides when the in-memory sampling buffer should be
// swapped out and written to disk, and hands the swapped-out buffer to a
// writer without blocking the dispatcher.
package flush

import (
	"sync/atomic"

	"github.com/kodflow/syswit/internal/domain/sample"
)

// Writer persists a buffer to disk as a fragment file. Implementations
// must not panic; write failures are logged and the samples in that
// buffer are lost, but the run continues.
type Writer interface {
	WriteFragment(counter int, buf *sample.Buffer) error
}

// ErrorFunc receives flush failures for logging.
type ErrorFunc func(counter int, err error)

// Manager tracks the flush counter and the configured byte limit, and
// performs fire-and-forget background writes.
type Manager struct {
	limit int64
	counter atomic.Int64
	writer Writer
	onError ErrorFunc
}

// New returns a Manager that flushes whenever Buffer.EstimatedSize exceeds
// limitBytes.
func New(writer Writer, limitBytes int64, onError ErrorFunc) *Manager {
	return &Manager{limit: limitBytes, writer: writer, onError: onError}
}

// ShouldFlush reports whether buf has grown past the configured limit.
func (m *Manager) ShouldFlush(buf *sample.Buffer) bool {
	if m.limit <= 0 {
		return false
	}
	return buf.EstimatedSize() > m.limit
}

// Flush writes buf to its own fragment file under a fresh, incrementing
// counter. It is intended to be called from its own goroutine by the
// caller so the dispatcher never blocks on disk I/O.
func (m *Manager) Flush(buf *sample.Buffer) {
	n := int(m.counter.Add(1))
	if err := m.writer.WriteFragment(n, buf); err != nil {
		if m.onError != nil {
			m.onError(n, err)
		}
	}
}

// NextCounter previews the counter value the next Flush call would use,
// without consuming it. Used by the run controller to flush the final
// buffer at shutdown with a deterministic name.
func (m *Manager) NextCounter() int {
	return int(m.counter.Load()) + 1
}
