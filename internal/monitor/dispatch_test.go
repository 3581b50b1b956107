package monitor

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/llm"
)

type fakeClient struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
	delay   time.Duration
}

func (f *fakeClient) Explain(ctx context.Context, transcript string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, transcript)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeClient) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func newTestDispatcher(buf *CaptureBuffer, client llm.Client) (*dispatcher, *syncBuffer) {
	out := &syncBuffer{}
	return &dispatcher{
		buf:        buf,
		client:     client,
		out:        newTermWriter(out),
		maxContext: 10000,
		width:      func() int { return 80 },
	}, out
}

func TestAnalyze_EmptyBufferIsSilentNoOp(t *testing.T) {
	client := &fakeClient{reply: "never"}
	d, out := newTestDispatcher(&CaptureBuffer{}, client)

	d.analyze(context.Background())

	if calls := client.calls(); len(calls) != 0 {
		t.Fatalf("client called with %v", calls)
	}
	if got := out.String(); got != "" {
		t.Fatalf("output written for empty capture: %q", got)
	}
}

func TestAnalyze_WhitespaceOnlyCaptureIsNoOp(t *testing.T) {
	var buf CaptureBuffer
	buf.Append([]byte(" \r\n \t"))
	client := &fakeClient{reply: "never"}
	d, _ := newTestDispatcher(&buf, client)

	d.analyze(context.Background())
	if len(client.calls()) != 0 {
		t.Fatalf("client called for whitespace capture")
	}
}

func TestAnalyze_PromptCarriesCapturedOutput(t *testing.T) {
	var buf CaptureBuffer
	buf.Append([]byte("ls: invalid option -- 'z'\n"))
	client := &fakeClient{reply: "Use ls without -z"}
	d, out := newTestDispatcher(&buf, client)

	d.analyze(context.Background())

	calls := client.calls()
	if len(calls) != 1 {
		t.Fatalf("calls=%d", len(calls))
	}
	if !strings.Contains(calls[0], "ls: invalid option -- 'z'") {
		t.Fatalf("prompt=%q", calls[0])
	}
	if !strings.Contains(out.String(), "Use ls without -z") {
		t.Fatalf("rendered output missing reply: %q", out.String())
	}
}

func TestAnalyze_TruncatesToContextTail(t *testing.T) {
	var buf CaptureBuffer
	buf.Append([]byte(strings.Repeat("x", 500) + "tail marker"))
	client := &fakeClient{reply: "ok"}
	d, _ := newTestDispatcher(&buf, client)
	d.maxContext = 100

	d.analyze(context.Background())

	calls := client.calls()
	if len(calls) != 1 {
		t.Fatalf("calls=%d", len(calls))
	}
	if len([]rune(calls[0])) != 100 {
		t.Fatalf("prompt length %d", len([]rune(calls[0])))
	}
	if !strings.HasSuffix(calls[0], "tail marker") {
		t.Fatalf("tail not kept: %q", calls[0])
	}
}

func TestAnalyze_ErrorRendersOneLineAndSessionContinues(t *testing.T) {
	var buf CaptureBuffer
	buf.Append([]byte("curl: (6) could not resolve host\n"))
	client := &fakeClient{err: &llm.Error{Kind: llm.NetworkFailure, Err: context.DeadlineExceeded}}
	d, out := newTestDispatcher(&buf, client)

	d.analyze(context.Background())

	if !strings.Contains(out.String(), "analysis failed: network failure") {
		t.Fatalf("out=%q", out.String())
	}

	// A retry after the failure still goes through.
	client.err = nil
	client.reply = "retry works"
	d.analyze(context.Background())
	if !strings.Contains(out.String(), "retry works") {
		t.Fatalf("retry missing: %q", out.String())
	}
}

func TestAnalyze_RepeatTriggersSeeGrowingBuffer(t *testing.T) {
	var buf CaptureBuffer
	client := &fakeClient{reply: "ok"}
	d, _ := newTestDispatcher(&buf, client)

	buf.Append([]byte("first part"))
	d.analyze(context.Background())
	buf.Append([]byte(" and more"))
	d.analyze(context.Background())

	calls := client.calls()
	if len(calls) != 2 {
		t.Fatalf("calls=%d", len(calls))
	}
	if !strings.HasPrefix(calls[1], calls[0]) {
		t.Fatalf("second prompt %q does not extend %q", calls[1], calls[0])
	}
}

func TestRun_QueuedTriggersProcessedInOrder(t *testing.T) {
	var buf CaptureBuffer
	buf.Append([]byte("some failing output"))
	client := &fakeClient{reply: "ok", delay: 10 * time.Millisecond}
	d, _ := newTestDispatcher(&buf, client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	triggers := make(chan struct{}, 8)
	triggers <- struct{}{}
	triggers <- struct{}{}
	triggers <- struct{}{}

	done := make(chan struct{})
	go func() {
		d.run(ctx, triggers)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(client.calls()) < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d analyses completed", len(client.calls()))
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestRun_CancelStopsDispatcher(t *testing.T) {
	d, _ := newTestDispatcher(&CaptureBuffer{}, &fakeClient{reply: "ok"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.run(ctx, make(chan struct{}))
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("dispatcher did not stop on cancel")
	}
}
