package monitor

import "sync"

// CaptureBuffer accumulates shell output since the last command boundary.
// Append, Clear, and Snapshot are mutually exclusive so a reader never
// observes a half-appended or half-cleared state.
type CaptureBuffer struct {
	mu  sync.Mutex
	cur []byte
}

// Append adds shell output bytes to the current capture.
func (b *CaptureBuffer) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	b.mu.Lock()
	b.cur = append(b.cur, p...)
	b.mu.Unlock()
}

// Clear drops the capture at a command boundary. Everything appended
// afterwards belongs to the next command.
func (b *CaptureBuffer) Clear() {
	b.mu.Lock()
	b.cur = nil
	b.mu.Unlock()
}

// Snapshot returns a copy of the current capture. It does not clear, so
// repeated triggers before the next boundary re-analyze a growing buffer.
func (b *CaptureBuffer) Snapshot() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.cur) == 0 {
		return nil
	}
	out := make([]byte, len(b.cur))
	copy(out, b.cur)
	return out
}
