package formprompt

import (
	"context"
	"log/slog"

	"github.com/ruteri/registration-form/interfaces"
	"github.com/ruteri/registration-form/registration"
)

// Session walks a user through one registration in the terminal.
type Session struct {
	controller *registration.Controller
	driver     PromptDriver
	log        *slog.Logger
}

func NewSession(controller *registration.Controller, driver PromptDriver, log *slog.Logger) *Session {
	return &Session{
		controller: controller,
		driver:     driver,
		log:        log,
	}
}

// Run prompts for every field and submits the form until the submission
// succeeds or the user declines to retry. The form keeps its values between
// attempts, so each prompt defaults to the previous answer.
//
// It returns nil after a successful submission, the last outcome error when
// the user gives up, and ErrAborted or the context error when interrupted.
func (s *Session) Run(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		if err := s.fill(ctx); err != nil {
			return err
		}

		var outcome registration.Outcome
		select {
		case outcome = <-s.controller.Submit(ctx):
		case <-ctx.Done():
			return ctx.Err()
		}

		s.log.Debug("Submission finished",
			"attempt", attempt,
			"status", string(outcome.Status))

		switch outcome.Status {
		case registration.StatusSucceeded:
			return nil
		case registration.StatusBusy:
			// Only reachable if the controller is shared; try again.
			continue
		}

		if err := s.driver.Info(ctx, outcome.Message); err != nil {
			return err
		}

		retry, err := s.driver.ConfirmRetry(ctx)
		if err != nil {
			return err
		}
		if !retry {
			return outcome.Err
		}
	}
}

func (s *Session) fill(ctx context.Context) error {
	for _, field := range interfaces.Fields {
		var value string
		var err error
		if field == interfaces.FieldSelectedID {
			value, err = s.driver.ChooseIDType(ctx, s.controller.Catalog().All(), s.controller.State().SelectedID)
		} else {
			value, err = s.driver.AskField(ctx, s.fieldPrompt(field))
		}
		if err != nil {
			return err
		}
		if err := s.controller.Set(field, value); err != nil {
			return err
		}
	}
	return nil
}

// fieldPrompt describes field with its current value. The ID number prompt
// carries the example of the selected ID type, or a hint to select one.
func (s *Session) fieldPrompt(field interfaces.Field) FieldPrompt {
	p := FieldPrompt{
		Field:   field,
		Current: s.controller.State().Get(field),
	}
	if field == interfaces.FieldIDNumber {
		p.Help = s.controller.PlaceholderText()
		if s.controller.SelectedPattern() != "" {
			p.Example = p.Help
		}
	}
	return p
}
