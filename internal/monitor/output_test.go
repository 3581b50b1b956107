package monitor

import (
	"bytes"
	"io"
	"testing"
	"time"
)

func TestOutputTap_MirrorsBytesInOrder(t *testing.T) {
	pr, pw := io.Pipe()
	out := &syncBuffer{}
	var buf CaptureBuffer
	done := make(chan struct{})

	go outputTap(pr, newTermWriter(out), &buf, done)

	payload := []byte("prompt$ ls\r\nls: invalid option -- 'z'\r\n\x1b[31mred\x1b[0m")
	for _, chunk := range [][]byte{payload[:7], payload[7:20], payload[20:]} {
		if _, err := pw.Write(chunk); err != nil {
			t.Fatal(err)
		}
	}
	_ = pw.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("tap did not finish on EOF")
	}

	if got := out.String(); got != string(payload) {
		t.Fatalf("terminal saw %q want %q", got, payload)
	}
	if snap := buf.Snapshot(); !bytes.Equal(snap, payload) {
		t.Fatalf("capture %q want %q", snap, payload)
	}
}

func TestOutputTap_SignalsShellExitOnReadError(t *testing.T) {
	pr, pw := io.Pipe()
	done := make(chan struct{})
	go outputTap(pr, newTermWriter(&syncBuffer{}), &CaptureBuffer{}, done)

	_ = pw.CloseWithError(io.ErrClosedPipe)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("tap did not treat read error as shell exit")
	}
}
