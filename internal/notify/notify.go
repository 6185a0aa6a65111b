// Package notify routes user-visible messages from commands to wherever the
// host wants them. Commands never print directly; everything goes through a
// Notifier so the sink can be swapped out in tests or mirrored elsewhere.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier delivers one notification to the user.
type Notifier interface {
	Notify(severity Severity, message string)
}

var (
	warningPrefix = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("warning:")
	errorPrefix   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("error:")
)

// TerminalNotifier writes notifications to the terminal: info payloads (such
// as the rendered report) go to stdout as-is, warnings and errors go to
// stderr with a colored prefix.
type TerminalNotifier struct {
	Out io.Writer
	Err io.Writer
}

// NewTerminalNotifier creates a TerminalNotifier bound to the process streams.
func NewTerminalNotifier() *TerminalNotifier {
	return &TerminalNotifier{Out: os.Stdout, Err: os.Stderr}
}

func (t *TerminalNotifier) Notify(severity Severity, message string) {
	switch severity {
	case SeverityWarning:
		fmt.Fprintln(t.Err, warningPrefix, message)
	case SeverityError:
		fmt.Fprintln(t.Err, errorPrefix, message)
	default:
		fmt.Fprintln(t.Out, message)
	}
}

// MultiNotifier fans one notification out to several sinks.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(severity Severity, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(severity, message)
		}
	}
}

// Notification is a recorded severity/message pair.
type Notification struct {
	Severity Severity
	Message  string
}

// Recorder captures notifications for tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Notification
}

func (r *Recorder) Notify(severity Severity, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Notification{Severity: severity, Message: message})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.entries))
	copy(out, r.entries)
	return out
}
