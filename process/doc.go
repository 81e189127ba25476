// Package process decides what happens to the process when a fault escapes
// request handling.
//
// A Supervisor is armed once at startup. From then on:
//
//   - a panic in a supervised goroutine is logged and ends the process with
//     exit code 1 immediately;
//   - an error nobody awaited (a rejection) is logged; in production the
//     process exits with code 1 after a short grace period, elsewhere it
//     keeps running;
//   - SIGTERM and SIGINT are logged and end the process with exit code 0.
//
// Exactly one exit happens per process, whichever fault comes first.
package process
