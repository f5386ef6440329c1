// Package interfaces defines the core types and interfaces shared by the
// registration form, the signup client and the signup API, separating
// interface definitions from implementations.
//
// # Form Types
//
// FormState: the values of one registration form-fill session.
//
// Field: names a form field, with its label and whether it is required.
//
// # Notification Interfaces
//
// Notifier: displays transient Toast notifications without blocking.
//
// # Storage Interfaces
//
// AccountStore: persists Account records created by the signup API and
// updated by cash-ins, across multiple backend types (memory, file, S3,
// Vault).
//
// StorageBackendLocation: parsed storage URI used to select a backend.
package interfaces
