package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/gookit/color"
	"github.com/ruteri/registration-form/interfaces"
	"github.com/stretchr/testify/mock"
)

var iconStyles = map[interfaces.ToastIcon]struct {
	glyph string
	style color.Style
}{
	interfaces.ToastSuccess: {"✔", color.Style{color.FgGreen, color.OpBold}},
	interfaces.ToastError:   {"✖", color.Style{color.FgRed, color.OpBold}},
	interfaces.ToastInfo:    {"ℹ", color.Style{color.FgCyan}},
}

// TerminalNotifier prints toasts as a single coloured line. A scrolling
// terminal has nothing to dismiss, so Duration and ProgressBar only affect
// notifiers that can redraw.
type TerminalNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminalNotifier writes toasts to w, or to stdout when w is nil.
func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	if w == nil {
		w = os.Stdout
	}
	return &TerminalNotifier{w: w}
}

// Notify writes the toast and returns immediately.
func (n *TerminalNotifier) Notify(_ context.Context, toast interfaces.Toast) {
	icon, ok := iconStyles[toast.Icon]
	if !ok {
		icon = iconStyles[interfaces.ToastInfo]
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, icon.style.Sprint(icon.glyph+" "+toast.Title))
}

// LogNotifier records toasts as structured log entries. It is used where no
// interactive output exists, such as non-interactive CLI runs with JSON logs.
type LogNotifier struct {
	Log *slog.Logger
}

// Notify logs the toast at info level, or error level for error toasts.
func (n *LogNotifier) Notify(ctx context.Context, toast interfaces.Toast) {
	level := slog.LevelInfo
	if toast.Icon == interfaces.ToastError {
		level = slog.LevelError
	}
	n.Log.Log(ctx, level, toast.Title,
		"icon", string(toast.Icon),
		slog.Duration("duration", toast.Duration))
}

// Multi fans a toast out to several notifiers in order.
type Multi []interfaces.Notifier

// Notify forwards the toast to every notifier.
func (m Multi) Notify(ctx context.Context, toast interfaces.Toast) {
	for _, n := range m {
		n.Notify(ctx, toast)
	}
}

// MockNotifier implements a mock interfaces.Notifier for testing.
type MockNotifier struct {
	mock.Mock
}

// Notify records the call.
func (m *MockNotifier) Notify(ctx context.Context, toast interfaces.Toast) {
	m.Called(ctx, toast)
}
