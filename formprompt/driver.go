package formprompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/ruteri/registration-form/idcatalog"
	"github.com/ruteri/registration-form/interfaces"
)

// ErrAborted signals the user aborted input (e.g., Ctrl+C).
var ErrAborted = errors.New("formprompt: aborted")

// FieldPrompt asks for the value of one text field.
type FieldPrompt struct {
	Field interfaces.Field

	// Current is the value the form holds and the answer when the user
	// just presses enter.
	Current string

	// Example is shown next to the label, e.g. the sample number of the
	// selected ID type. Empty for most fields.
	Example string

	// Help is shown when the user asks for it.
	Help string
}

// Message is the prompt text: the field label, a required marker and the
// example, if any.
func (p FieldPrompt) Message() string {
	msg := p.Field.Label()
	if p.Field.Required() {
		msg += " *"
	}
	if p.Example != "" {
		msg = fmt.Sprintf("%s (%s)", msg, p.Example)
	}
	return msg
}

// PromptDriver asks the questions of a registration session. It is
// implemented on a real terminal by NewSurveyDriver and by fakes in tests.
type PromptDriver interface {
	// AskField returns the new value of a text field.
	AskField(ctx context.Context, p FieldPrompt) (string, error)

	// ChooseIDType returns the key of the chosen ID type. current is the key
	// held by the form and is preselected when it is in types.
	ChooseIDType(ctx context.Context, types []idcatalog.IDType, current string) (string, error)

	// ConfirmRetry reports whether the user wants to edit the form and
	// submit again after a failed attempt.
	ConfirmRetry(ctx context.Context) (bool, error)

	// Info shows a message, such as the reason an attempt failed.
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out io.Writer
}

// NewSurveyDriver returns a PromptDriver asking on the process terminal.
// Info messages go to out, or stdout when out is nil.
func NewSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

func (d *surveyDriver) AskField(ctx context.Context, p FieldPrompt) (string, error) {
	var answer string
	err := ask(ctx, &survey.Input{
		Message: p.Message(),
		Default: p.Current,
		Help:    p.Help,
	}, &answer)
	return answer, err
}

func (d *surveyDriver) ChooseIDType(ctx context.Context, types []idcatalog.IDType, current string) (string, error) {
	if len(types) == 0 {
		return "", errors.New("formprompt: no ID types to choose from")
	}

	labels := make([]string, len(types))
	prompt := &survey.Select{
		Message:  interfaces.FieldSelectedID.Label() + " *",
		Help:     "The ID number is checked against the format of the selected ID type",
		PageSize: len(types),
	}
	for i, t := range types {
		labels[i] = t.Label()
		if t.Key == current {
			prompt.Default = i
		}
	}
	prompt.Options = labels

	// survey writes the index of the chosen option into an int.
	var chosen int
	if err := ask(ctx, prompt, &chosen); err != nil {
		return "", err
	}
	if chosen < 0 || chosen >= len(types) {
		return "", fmt.Errorf("formprompt: ID type choice %d out of range", chosen)
	}
	return types[chosen].Key, nil
}

func (d *surveyDriver) ConfirmRetry(ctx context.Context) (bool, error) {
	retry := true
	err := ask(ctx, &survey.Confirm{
		Message: "Edit the form and try again?",
		Default: true,
	}, &retry)
	return retry, err
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

// ask runs one survey prompt unless ctx is already done. Ctrl+C at the
// prompt becomes ErrAborted.
func ask(ctx context.Context, prompt survey.Prompt, answer any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(prompt, answer)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
