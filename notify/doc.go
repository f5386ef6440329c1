// Package notify implements interfaces.Notifier for the terminal and for
// structured logs, plus a testify mock.
package notify
