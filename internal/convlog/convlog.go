// Package convlog writes AI conversation transcripts to per-day markdown
// files so users can revisit past diagnoses.
package convlog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	multiSpace = regexp.MustCompile(`\s+`)
)

// Logger appends context/explanation pairs to hourly transcript files under
// <baseDir>/YYYY-MM-DD/. Safe for use from a single dispatcher goroutine;
// the mutex guards against a future second writer.
type Logger struct {
	baseDir       string
	summaryLength int
	sessionID     string

	mu          sync.Mutex
	currentFile string
	currentHour string

	now func() time.Time
}

// New creates a Logger rooted at baseDir. summaryLength bounds the sanitized
// summary embedded in file names.
func New(baseDir string, summaryLength int) *Logger {
	if summaryLength <= 0 {
		summaryLength = 50
	}
	return &Logger{
		baseDir:       baseDir,
		summaryLength: summaryLength,
		sessionID:     uuid.NewString(),
		now:           time.Now,
	}
}

// SessionID identifies this monitor run in transcript headers.
func (l *Logger) SessionID() string { return l.sessionID }

// Log appends one exchange. A new file is started on the first write of
// each hour; subsequent writes in the same hour append to it.
func (l *Logger) Log(context, explanation string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	hour := now.Format("2006-01-02_15")

	if l.currentHour != hour {
		dir := filepath.Join(l.baseDir, now.Format("2006-01-02"))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		seq, err := nextSequence(dir, hour)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("%s_%02d_%s.md", hour, seq, l.summarize(context))
		l.currentFile = filepath.Join(dir, name)
		l.currentHour = hour

		header := fmt.Sprintf("<!-- session %s -->\n\n", l.sessionID)
		if err := os.WriteFile(l.currentFile, []byte(header), 0o644); err != nil {
			return fmt.Errorf("create log file: %w", err)
		}
	}

	f, err := os.OpenFile(l.currentFile, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", now.Format("15:04:05"))
	b.WriteString("### Context (Input)\n```\n")
	b.WriteString(context)
	b.WriteString("\n```\n\n")
	b.WriteString("### Explanation (AI Response)\n")
	b.WriteString(explanation)
	b.WriteString("\n\n---\n\n")

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// summarize strips punctuation, collapses whitespace, and truncates, giving
// a filesystem-safe slug for the file name.
func (l *Logger) summarize(text string) string {
	clean := nonWord.ReplaceAllString(text, "")
	clean = strings.TrimSpace(multiSpace.ReplaceAllString(clean, " "))
	if clean == "" {
		return "conversation"
	}
	runes := []rune(clean)
	if len(runes) > l.summaryLength {
		runes = runes[:l.summaryLength]
	}
	return string(runes)
}

// nextSequence scans existing files for the hour prefix and returns one past
// the highest sequence found.
func nextSequence(dir, hourPrefix string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, hourPrefix+"_*.md"))
	if err != nil {
		return 0, err
	}
	maxSeq := 0
	for _, m := range matches {
		rest := strings.TrimPrefix(filepath.Base(m), hourPrefix+"_")
		idx := strings.IndexByte(rest, '_')
		if idx < 0 {
			continue
		}
		seq, err := strconv.Atoi(rest[:idx])
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1, nil
}
