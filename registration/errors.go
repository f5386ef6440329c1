package registration

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ruteri/registration-form/api"
)

// User-facing messages.
const (
	MsgMissingFields = "Please fill up all required fields."
	MsgUnknownIDType = "Please select a valid ID type."
	MsgServerDown    = "Server is down. Please try again later."
	MsgNotFound      = "API endpoint not found."
	MsgServerError   = "Internal server error."
	MsgSubmitFailed  = "Failed to submit data."
	MsgSuccess       = "Registration successful!"
)

// ValidationKind is the sub-kind of a ValidationError.
type ValidationKind string

const (
	MissingRequiredFields ValidationKind = "missing-required-fields"
	BadIDFormat           ValidationKind = "bad-id-format"
	UnknownIDType         ValidationKind = "unknown-id-type"
)

// ValidationError is a local, pre-network rejection. Error returns the
// message shown to the user.
type ValidationError struct {
	Kind ValidationKind

	// Missing lists the blank required fields for MissingRequiredFields.
	Missing []string

	// IDLabel and Placeholder describe the selected ID type for BadIDFormat.
	IDLabel     string
	Placeholder string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingRequiredFields:
		return MsgMissingFields
	case BadIDFormat:
		return fmt.Sprintf("Your %s must follow this format: %s", e.IDLabel, e.Placeholder)
	case UnknownIDType:
		return MsgUnknownIDType
	default:
		return string(e.Kind)
	}
}

// SubmissionKind is the sub-kind of a SubmissionError.
type SubmissionKind string

const (
	Unreachable SubmissionKind = "unreachable"
	NotFound    SubmissionKind = "not-found"
	ServerError SubmissionKind = "server-error"
	Other       SubmissionKind = "other"
)

// SubmissionError is a network or server side failure, classified from the
// provider error. Error returns the message shown to the user; Unwrap gives
// the underlying cause.
type SubmissionError struct {
	Kind       SubmissionKind
	StatusCode int
	Cause      error
}

func (e *SubmissionError) Error() string {
	switch e.Kind {
	case Unreachable:
		return MsgServerDown
	case NotFound:
		return MsgNotFound
	case ServerError:
		return MsgServerError
	default:
		return MsgSubmitFailed
	}
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}

// ClassifySubmissionError maps a SignupProvider error onto a SubmissionError.
// Errors that carry no status code mean no response was received.
func ClassifySubmissionError(err error) *SubmissionError {
	var statusErr *api.StatusError
	if !errors.As(err, &statusErr) {
		return &SubmissionError{Kind: Unreachable, Cause: err}
	}

	kind := Other
	switch statusErr.StatusCode {
	case http.StatusNotFound:
		kind = NotFound
	case http.StatusInternalServerError:
		kind = ServerError
	}
	return &SubmissionError{Kind: kind, StatusCode: statusErr.StatusCode, Cause: err}
}
