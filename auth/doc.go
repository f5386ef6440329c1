// Package auth issues the bearer tokens returned by login. Tokens are HS256
// JWTs whose subject is the account number; logout revokes them in memory.
package auth
