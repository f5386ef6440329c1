// Package transactionhandler serves the balance and cash-in endpoints.
//
// Both require "Authorization: Bearer <token>" with a token from
// POST /api/v3/users/login for the account number in the path. A missing or
// invalid token is 401 and a token for another account is 403. Cash-ins
// accept {"amount": 150} or {"amount": "150.50"}, must be positive, and are
// recorded on the account with a number of the form TXN-yyyyMMdd-HHmmss-SSS-NN.
package transactionhandler
