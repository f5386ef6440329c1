// Package main (cmd/signup-server) serves the signup API.
//
// Usage:
//
//	signup-server --listen-addr 127.0.0.1:8080 --storage file:///var/lib/signup
//
// Flags:
//
//	--listen-addr    Address to listen on (env SIGNUP_SERVER_LISTEN_ADDR)
//	--storage        Account store URI(s), comma separated (env SIGNUP_SERVER_STORAGE)
//	--pprof          Enable /debug/pprof
//	--drain-seconds  Seconds to report not-ready before shutting down
//	--log-json, --log-debug, --log-uid, --log-service
package main
