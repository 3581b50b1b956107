package monitor

import (
	"context"
	"strings"

	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/convlog"
	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/llm"
	"github.com/HuYW1007/Smart-Terminal-Monitor/internal/render"
)

// dispatcher turns trigger events into AI requests. It runs on its own
// goroutine and processes queued triggers strictly in order, so the relay
// stays responsive while a network call is outstanding and a second
// keypress is never silently dropped.
type dispatcher struct {
	buf        *CaptureBuffer
	client     llm.Client
	out        *termWriter
	log        *convlog.Logger
	maxContext int
	width      func() int

	logWarned bool
}

func (d *dispatcher) run(ctx context.Context, triggers <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-triggers:
			d.analyze(ctx)
		}
	}
}

// analyze snapshots the capture buffer and asks the provider for a
// diagnosis. An empty capture makes the trigger a no-op.
func (d *dispatcher) analyze(ctx context.Context) {
	transcript := strings.TrimSpace(toText(d.buf.Snapshot()))
	if transcript == "" {
		return
	}
	if d.maxContext > 0 {
		if r := []rune(transcript); len(r) > d.maxContext {
			// Keep the tail: the failure is usually at the end.
			transcript = string(r[len(r)-d.maxContext:])
		}
	}

	d.out.WriteString(render.Analyzing(len([]rune(transcript))))

	explanation, err := d.client.Explain(ctx, transcript)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		d.out.WriteString(render.ErrorLine("analysis failed: " + llm.KindOf(err).String()))
		return
	}

	d.out.WriteString(render.Markdown(explanation, d.width()))

	if d.log != nil {
		if lerr := d.log.Log(transcript, explanation); lerr != nil && !d.logWarned {
			d.logWarned = true
			d.out.WriteString(render.ErrorLine("transcript log: " + lerr.Error()))
		}
	}
}

// toText decodes captured bytes for the prompt, replacing invalid UTF-8
// rather than failing on binary shell output.
func toText(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
