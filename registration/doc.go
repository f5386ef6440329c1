// Package registration implements the registration form controller.
//
// A Controller owns one FormState. Submit checks that every required field
// is filled, that the selected ID type exists in the catalog and that the ID
// number matches its pattern. Only then is the form encoded in the configured
// key convention and posted through an api.SignupProvider. Failures are
// classified into the messages a user sees; success resets the form and
// shows a toast.
package registration
