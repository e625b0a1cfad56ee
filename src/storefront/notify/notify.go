// Package notify delivers short user-visible messages.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Severity classifies a message.
type Severity string

const (
	Success Severity = "success"
	Info    Severity = "info"
	Error   Severity = "error"
)

// DefaultDuration is used when a caller has no preference.
const DefaultDuration = 5 * time.Second

// Notifier shows a message to the user for roughly the given duration.
type Notifier interface {
	Notify(text string, severity Severity, duration time.Duration)
}

// Discard drops every message.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(string, Severity, time.Duration) {}

// WriterNotifier prints messages to an io.Writer and mirrors them to the log.
type WriterNotifier struct {
	mu  sync.Mutex
	out io.Writer
	log logrus.FieldLogger
}

// NewWriterNotifier constructor
func NewWriterNotifier(out io.Writer, log logrus.FieldLogger) *WriterNotifier {
	return &WriterNotifier{out: out, log: log}
}

func (w *WriterNotifier) Notify(text string, severity Severity, duration time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.out != nil {
		fmt.Fprintf(w.out, "[%s] %s\n", severity, text)
	}
	if w.log != nil {
		w.log.WithFields(logrus.Fields{
			"severity_ui": string(severity),
			"duration_ms": duration.Milliseconds(),
		}).Debug(text)
	}
}

// Message is a notification held by a Feed until it expires.
type Message struct {
	Text       string    `json:"text"`
	Severity   Severity  `json:"severity"`
	DurationMs int64     `json:"duration_ms"`
	PostedAt   time.Time `json:"posted_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Feed keeps recent messages for clients that poll, dropping them once
// their display duration has passed.
type Feed struct {
	mu       sync.Mutex
	messages []Message
	limit    int
	now      func() time.Time
}

// NewFeed returns a Feed that retains at most limit messages.
func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = 20
	}
	return &Feed{limit: limit, now: time.Now}
}

func (f *Feed) Notify(text string, severity Severity, duration time.Duration) {
	if duration <= 0 {
		duration = DefaultDuration
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	f.messages = append(f.messages, Message{
		Text:       text,
		Severity:   severity,
		DurationMs: duration.Milliseconds(),
		PostedAt:   now,
		ExpiresAt:  now.Add(duration),
	})
	if len(f.messages) > f.limit {
		f.messages = f.messages[len(f.messages)-f.limit:]
	}
}

// Active returns the messages that have not yet expired, oldest first.
func (f *Feed) Active() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	kept := f.messages[:0]
	for _, m := range f.messages {
		if now.Before(m.ExpiresAt) {
			kept = append(kept, m)
		}
	}
	f.messages = kept

	out := make([]Message, len(kept))
	copy(out, kept)
	return out
}

// Fanout delivers each message to every notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(text string, severity Severity, duration time.Duration) {
	for _, n := range f {
		if n != nil {
			n.Notify(text, severity, duration)
		}
	}
}
