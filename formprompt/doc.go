// Package formprompt is the terminal front end of the registration form.
//
// A Session prompts for each field through a PromptDriver, submits through a
// registration.Controller and, when the submission is rejected or fails,
// shows the controller's error message and offers another pass with the
// previous answers as defaults. NewSurveyDriver drives a real terminal.
package formprompt
