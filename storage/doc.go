// Package storage provides account stores for the signup API.
//
// Every store implements interfaces.AccountStore and keeps one JSON document
// per account, keyed by account number:
//
//   - MemoryStore for tests and throwaway servers
//   - FileStore for local deployments
//   - S3Store for S3-compatible object storage
//   - VaultStore for HashiCorp Vault KV v2, since accounts carry a PIN
//
// # Storage URI Format
//
// Stores are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - memory://
//   - file:///var/lib/signup/
//   - s3://ACCESS_KEY:SECRET_KEY@bucket-name/prefix/?region=us-west-2&endpoint=http://minio:9000
//   - vault://vault.example.com:8200/secret/signup?token=s.xxxx&tls=true
//
// # Layout
//
// Accounts live under an "accounts" directory or key prefix below the
// configured root: <root>/accounts/<account number>.json for file and S3,
// <mount>/data/<path>/accounts/<account number> for Vault.
//
// # Multi-Store Example
//
//	store, err := storage.NewAccountStore("file:///var/lib/signup,s3://bucket/signup?region=eu-west-1", logger)
//	if err != nil {
//	    log.Fatalf("Failed to create account store: %v", err)
//	}
//
// A MultiStore writes each account to every available store and reads from
// the first store that has it. Create refuses an account number that any
// available store already holds.
//
// # Updates
//
// Update replaces an existing account, e.g. after a cash-in. FileStore
// renames a temporary file over the old one and VaultStore writes with the
// version it read, failing with interfaces.ErrAccountConflict if another
// writer got there first. S3Store and MemoryStore overwrite.
package storage
