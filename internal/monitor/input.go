package monitor

import (
	"bytes"
	"io"
)

// TriggerKey is the reserved analysis key: Ctrl+G (BEL). It is stripped from
// the input stream so the shell never sees it.
const TriggerKey byte = 0x07

// interceptor scans keyboard input for the trigger key and command
// boundaries, forwarding everything else to the PTY master untouched.
type interceptor struct {
	buf      *CaptureBuffer
	triggers chan struct{}
	trigger  byte
}

func newInterceptor(buf *CaptureBuffer) *interceptor {
	return &interceptor{
		buf: buf,
		// Buffered so triggers queue while an analysis is in flight; the
		// dispatcher drains them in order.
		triggers: make(chan struct{}, 8),
		trigger:  TriggerKey,
	}
}

// scan processes one chunk of keyboard input and returns the bytes to
// forward to the shell. Trigger bytes are removed and emitted as trigger
// events; a carriage return or newline clears the capture buffer before
// the chunk is forwarded, so the buffer is empty by the time the shell
// echoes its next prompt.
func (ic *interceptor) scan(chunk []byte) []byte {
	if bytes.IndexByte(chunk, ic.trigger) >= 0 {
		n := bytes.Count(chunk, []byte{ic.trigger})
		for i := 0; i < n; i++ {
			select {
			case ic.triggers <- struct{}{}:
			default:
				// Queue full: coalesce into the pending backlog.
			}
		}
		chunk = bytes.ReplaceAll(chunk, []byte{ic.trigger}, nil)
	}
	if bytes.IndexByte(chunk, '\r') >= 0 || bytes.IndexByte(chunk, '\n') >= 0 {
		ic.buf.Clear()
	}
	return chunk
}

// run relays the keyboard to the PTY master until the input stream closes
// or the session ends. Keyboard reads block, so this owns its goroutine.
func (ic *interceptor) run(in io.Reader, master io.Writer) {
	buf := make([]byte, 1024)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			out := ic.scan(buf[:n])
			if len(out) > 0 {
				if _, werr := master.Write(out); werr != nil {
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}
