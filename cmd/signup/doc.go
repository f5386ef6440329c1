// Package main (cmd/signup) is the command line registration form.
//
// Usage:
//
//	signup [global flags] interactive
//	signup [global flags] submit --set first_name=Juan --set last_name="Dela Cruz" ...
//	signup id-types
//
// Global flags:
//
//	--api-url     Signup API base URL (env SIGNUP_API_URL, default http://localhost:8080)
//	--convention  Payload key convention, snake or camel (env SIGNUP_CONVENTION)
//	--endpoint    Endpoint path override (env SIGNUP_ENDPOINT); snake posts to
//	              /api/v3/users and camel to /api/v3/users/signup by default
//	--log-json, --log-debug, --log-uid, --log-service
//
// Logs go to stderr so prompts and toasts on stdout stay readable.
package main
