package monitor

import (
	"bytes"
	"io"
	"testing"
)

func TestScan_ForwardsOrdinaryBytesUnmodified(t *testing.T) {
	ic := newInterceptor(&CaptureBuffer{})
	in := []byte("ls -la\x1b[A\x03\x04")
	out := ic.scan(in)
	if !bytes.Equal(out, in) {
		t.Fatalf("out=%q want %q", out, in)
	}
	select {
	case <-ic.triggers:
		t.Fatalf("unexpected trigger")
	default:
	}
}

func TestScan_StripsTriggerAndEmitsEvent(t *testing.T) {
	ic := newInterceptor(&CaptureBuffer{})
	out := ic.scan([]byte{'a', TriggerKey, 'b'})
	if string(out) != "ab" {
		t.Fatalf("out=%q", out)
	}
	select {
	case <-ic.triggers:
	default:
		t.Fatalf("no trigger event emitted")
	}
}

func TestScan_TriggerOnlyChunkForwardsNothing(t *testing.T) {
	ic := newInterceptor(&CaptureBuffer{})
	out := ic.scan([]byte{TriggerKey})
	if len(out) != 0 {
		t.Fatalf("out=%q", out)
	}
	if len(ic.triggers) != 1 {
		t.Fatalf("triggers=%d", len(ic.triggers))
	}
}

func TestScan_BoundaryClearsBufferAndForwards(t *testing.T) {
	var buf CaptureBuffer
	buf.Append([]byte("old command output"))
	ic := newInterceptor(&buf)

	out := ic.scan([]byte("echo hi\r"))
	if string(out) != "echo hi\r" {
		t.Fatalf("out=%q", out)
	}
	if snap := buf.Snapshot(); snap != nil {
		t.Fatalf("buffer not cleared: %q", snap)
	}
}

func TestScan_NewlineAlsoCountsAsBoundary(t *testing.T) {
	var buf CaptureBuffer
	buf.Append([]byte("stale"))
	ic := newInterceptor(&buf)
	ic.scan([]byte("\n"))
	if snap := buf.Snapshot(); snap != nil {
		t.Fatalf("buffer not cleared: %q", snap)
	}
}

func TestScan_MultipleTriggersQueue(t *testing.T) {
	ic := newInterceptor(&CaptureBuffer{})
	ic.scan([]byte{TriggerKey, TriggerKey, TriggerKey})
	if len(ic.triggers) != 3 {
		t.Fatalf("triggers=%d", len(ic.triggers))
	}
}

func TestRun_RelaysToMaster(t *testing.T) {
	ic := newInterceptor(&CaptureBuffer{})
	var master bytes.Buffer
	in := io.MultiReader(
		bytes.NewReader([]byte("echo a")),
		bytes.NewReader([]byte{TriggerKey}),
		bytes.NewReader([]byte("\r")),
	)
	ic.run(in, &master)
	if got := master.String(); got != "echo a\r" {
		t.Fatalf("master saw %q", got)
	}
	if len(ic.triggers) != 1 {
		t.Fatalf("triggers=%d", len(ic.triggers))
	}
}
