// Package signuphandler implements the HTTP signup API that registration
// forms submit to.
//
// A registration is accepted in either payload convention (see
// api.DecodePayload) on both POST /api/v3/users and POST /api/v3/users/signup.
// It is validated with the same rules the form applies before submitting,
// and then stored as an interfaces.Account:
//
//	{
//	  "id": "6f1c...",
//	  "account_number": "191026-143005-001",
//	  "full_name": "Juan Santos Dela Cruz",
//	  "status": "Active",
//	  "balance": 0,
//	  "created_at": "2026-10-19T14:30:05Z"
//	}
//
// Account numbers are ddMMyy-HHmmss followed by the number of stored
// accounts plus one, zero padded to three digits. The initial PIN is stored
// but never returned.
//
// POST /api/v3/users/login checks an account number and PIN against the
// store and returns a bearer token from auth.TokenIssuer. Missing
// credentials are 400, an unknown account 404, a wrong PIN 401 and an
// account that is not Active 403. POST /api/v3/users/logout revokes the
// token in the Authorization header.
package signuphandler
