package registration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ruteri/registration-form/api"
	"github.com/ruteri/registration-form/idcatalog"
	"github.com/ruteri/registration-form/interfaces"
	"go.uber.org/atomic"
)

// SuccessToast is shown once after every accepted submission.
var SuccessToast = interfaces.Toast{
	Title:       MsgSuccess,
	Icon:        interfaces.ToastSuccess,
	Position:    "top-end",
	Duration:    3000 * time.Millisecond,
	ProgressBar: true,
	ShowConfirm: false,
}

// Status is the terminal state of one Submit call.
type Status string

const (
	// StatusRejected means local validation failed and nothing was sent.
	StatusRejected Status = "rejected"
	// StatusSucceeded means the server answered 2xx and the form was reset.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the request failed and the form was kept.
	StatusFailed Status = "failed"
	// StatusBusy means another submission was still in flight; nothing
	// was validated or sent.
	StatusBusy Status = "busy"
)

// Outcome reports how a Submit call ended.
type Outcome struct {
	Status Status

	// Err is a *ValidationError for StatusRejected and a *SubmissionError for
	// StatusFailed.
	Err error

	// Message is the error message held by the controller after the attempt.
	Message string
}

// Config holds the collaborators of a Controller.
type Config struct {
	// Provider submits payloads. Required.
	Provider api.SignupProvider

	// Catalog defaults to idcatalog.Default().
	Catalog *idcatalog.Catalog

	// Convention selects the payload key naming. Defaults to api.SnakeCase.
	Convention api.Convention

	// Notifier receives the success toast. Optional.
	Notifier interfaces.Notifier

	// Log receives submission diagnostics. Optional.
	Log *slog.Logger
}

// Controller holds the state of one registration form and runs the
// validate-then-submit workflow.
//
// Submit never blocks on the network: it validates synchronously, starts the
// request in a goroutine and returns a channel that receives exactly one
// Outcome. At most one submission is in flight at a time.
type Controller struct {
	catalog    *idcatalog.Catalog
	provider   api.SignupProvider
	notifier   interfaces.Notifier
	convention api.Convention
	log        *slog.Logger

	mu           sync.Mutex
	state        interfaces.FormState
	errorMessage string

	inFlight atomic.Bool
}

var ErrNoProvider = errors.New("registration controller requires a signup provider")

// NewController creates a controller with an empty form.
func NewController(cfg *Config) (*Controller, error) {
	if cfg == nil || cfg.Provider == nil {
		return nil, ErrNoProvider
	}

	catalog := cfg.Catalog
	if catalog == nil {
		catalog = idcatalog.Default()
	}

	convention := cfg.Convention
	if convention == "" {
		convention = api.SnakeCase
	}
	if _, err := convention.Encode(interfaces.FormState{}); err != nil {
		return nil, err
	}

	log := cfg.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Controller{
		catalog:    catalog,
		provider:   cfg.Provider,
		notifier:   cfg.Notifier,
		convention: convention,
		log:        log,
	}, nil
}

// Catalog returns the ID type catalog the controller validates against.
func (c *Controller) Catalog() *idcatalog.Catalog {
	return c.catalog
}

// Convention returns the payload convention used for submissions.
func (c *Controller) Convention() api.Convention {
	return c.convention
}

// State returns a copy of the current form values.
func (c *Controller) State() interfaces.FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Set stores value into a single field.
func (c *Controller) Set(field interfaces.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Set(field, value)
}

// Update applies fn to the form state under the controller lock.
func (c *Controller) Update(fn func(state *interfaces.FormState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
}

// ErrorMessage returns the message of the last failed attempt, or an empty
// string.
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorMessage
}

// Submitting reports whether a submission is in flight.
func (c *Controller) Submitting() bool {
	return c.inFlight.Load()
}

// SelectedPattern returns the pattern of the selected ID type, or an empty
// string when none is selected.
func (c *Controller) SelectedPattern() string {
	t, _ := c.catalog.Lookup(c.State().SelectedID)
	return t.Pattern
}

// PlaceholderText returns the example ID number of the selected ID type, or
// "Select an ID first".
func (c *Controller) PlaceholderText() string {
	t, _ := c.catalog.Lookup(c.State().SelectedID)
	return t.Placeholder
}

// Submit validates the form and, if it passes, posts it once.
//
// The error message is cleared at the start of every attempt that is not
// rejected as busy. On success the form is reset and the success toast is
// shown; on failure the form is kept and the error message is set.
func (c *Controller) Submit(ctx context.Context) <-chan Outcome {
	out := make(chan Outcome, 1)

	if !c.inFlight.CompareAndSwap(false, true) {
		c.log.Debug("Submission already in progress, ignoring submit")
		out <- Outcome{Status: StatusBusy, Message: c.ErrorMessage()}
		close(out)
		return out
	}

	c.mu.Lock()
	c.errorMessage = ""
	state := c.state
	c.mu.Unlock()

	if err := Validate(c.catalog, state); err != nil {
		c.finish(out, Outcome{Status: StatusRejected, Err: err, Message: c.setError(err)})
		return out
	}

	payload, err := c.convention.Encode(state)
	if err != nil {
		subErr := &SubmissionError{Kind: Other, Cause: err}
		c.log.Error("Could not build registration payload", "err", err)
		c.finish(out, Outcome{Status: StatusFailed, Err: subErr, Message: c.setError(subErr)})
		return out
	}

	go c.send(ctx, payload, out)
	return out
}

func (c *Controller) send(ctx context.Context, payload any, out chan<- Outcome) {
	start := time.Now()
	err := c.provider.Signup(ctx, payload)
	if err != nil {
		subErr := ClassifySubmissionError(err)
		c.log.Error("Registration submission failed",
			"kind", string(subErr.Kind),
			"status", subErr.StatusCode,
			"err", err,
			slog.Duration("duration", time.Since(start)))
		c.finish(out, Outcome{Status: StatusFailed, Err: subErr, Message: c.setError(subErr)})
		return
	}

	c.mu.Lock()
	c.state = interfaces.FormState{}
	c.mu.Unlock()

	c.log.Info("Registration submitted",
		"convention", string(c.convention),
		slog.Duration("duration", time.Since(start)))

	if c.notifier != nil {
		c.notifier.Notify(ctx, SuccessToast)
	}
	c.finish(out, Outcome{Status: StatusSucceeded})
}

func (c *Controller) setError(err error) string {
	msg := err.Error()
	c.mu.Lock()
	c.errorMessage = msg
	c.mu.Unlock()
	return msg
}

// finish releases the in-flight flag before delivering the outcome so the
// receiver may submit again right away.
func (c *Controller) finish(out chan<- Outcome, outcome Outcome) {
	c.inFlight.Store(false)
	out <- outcome
	close(out)
}
