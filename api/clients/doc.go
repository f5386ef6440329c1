/*
Package clients provides the client library used by the registration form to
talk to the signup API.

# Client Types

  - SignupClient - Posts one JSON registration payload per call
  - AccountClient - Logs in with account number and PIN, then reads the
    balance and posts cash-ins with the returned bearer token
  - MockSignupProvider - testify mock of api.SignupProvider

# Error Reporting

SignupClient.Signup distinguishes the two failure shapes the form reports on:

  - no response (connection refused, DNS failure, cancelled context): the
    transport error is returned wrapped
  - non-2xx response: *api.StatusError with the status code and a bounded
    copy of the response body

# Example Usage

	client := clients.NewSignupClient("http://localhost:8080", api.UsersPath)
	payload, _ := api.SnakeCase.Encode(state)
	if err := client.Signup(ctx, payload); err != nil {
	    var statusErr *api.StatusError
	    if errors.As(err, &statusErr) {
	        // server answered with statusErr.StatusCode
	    }
	}
*/
package clients
