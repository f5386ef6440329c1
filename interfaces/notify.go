package interfaces

import (
	"context"
	"time"
)

// ToastIcon selects the visual style of a toast.
type ToastIcon string

const (
	ToastSuccess ToastIcon = "success"
	ToastError   ToastIcon = "error"
	ToastInfo    ToastIcon = "info"
)

// Toast is a transient, non-blocking notification that dismisses itself
// after Duration.
type Toast struct {
	Title       string
	Icon        ToastIcon
	Position    string
	Duration    time.Duration
	ProgressBar bool
	// ShowConfirm asks the notifier to render a confirm button. Toasts that
	// auto-dismiss leave it false.
	ShowConfirm bool
}

// Notifier displays toasts. Notify must not block the caller for the
// lifetime of the toast.
type Notifier interface {
	Notify(ctx context.Context, toast Toast)
}
