package monitor

import (
	"io"
	"sync"
)

// termWriter serializes writes to the real terminal. The output tap and the
// analysis dispatcher share it, so a rendered suggestion block is never torn
// mid-write by interleaved shell bytes.
type termWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newTermWriter(w io.Writer) *termWriter {
	return &termWriter{w: w}
}

func (t *termWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Write(p)
}

func (t *termWriter) WriteString(s string) {
	_, _ = t.Write([]byte(s))
}
