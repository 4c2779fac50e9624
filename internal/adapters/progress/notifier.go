package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

var (
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed)
	pendingColor = color.New(color.FgYellow)
	faintColor   = color.New(color.Faint)
)

// TerminalNotifier shows a spinner while an action is pending and a coloured
// line once it settles. Attempts are tracked by id so concurrent actions each
// get their own outcome line.
type TerminalNotifier struct {
	mu       sync.Mutex
	out      io.Writer
	animate  bool
	spinners map[string]*spinner.Spinner
}

// NewTerminalNotifier creates a notifier writing to stderr. Without animate
// the pending state is printed as a plain line.
func NewTerminalNotifier(animate bool) *TerminalNotifier {
	return &TerminalNotifier{
		out:      os.Stderr,
		animate:  animate,
		spinners: make(map[string]*spinner.Spinner),
	}
}

// NewTerminalNotifierWithWriter creates a non-animated notifier writing to w
func NewTerminalNotifierWithWriter(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: w, spinners: make(map[string]*spinner.Spinner)}
}

func (n *TerminalNotifier) Pending(ctx context.Context, note usecase.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	msg := fmt.Sprintf("%s %s", note.Message, faintColor.Sprintf("[%s]", shortID(note.AttemptID)))
	if !n.animate {
		pendingColor.Fprintf(n.out, "● %s\n", msg)
		return
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(n.out))
	s.Suffix = " " + msg
	s.Start()
	n.spinners[note.AttemptID] = s
}

func (n *TerminalNotifier) Success(ctx context.Context, note usecase.Notification) {
	n.settle(note.AttemptID)
	successColor.Fprintf(n.out, "✓ %s\n", note.Message)
	if note.TxHash != "" {
		faintColor.Fprintf(n.out, "  tx: %s\n", note.TxHash)
	}
}

func (n *TerminalNotifier) Failure(ctx context.Context, note usecase.Notification, err error) {
	n.settle(note.AttemptID)
	failureColor.Fprintf(n.out, "✗ %s: %v\n", note.Message, err)
	if note.TxHash != "" {
		faintColor.Fprintf(n.out, "  tx: %s\n", note.TxHash)
	}
}

func (n *TerminalNotifier) settle(attemptID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if s, ok := n.spinners[attemptID]; ok {
		s.Stop()
		delete(n.spinners, attemptID)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Ensure TerminalNotifier implements Notifier
var _ usecase.Notifier = (*TerminalNotifier)(nil)
