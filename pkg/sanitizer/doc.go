// Package sanitizer normalizes free-text input before validation and storage.
//
// Every function is idempotent and never fails; bad input comes back empty
// rather than as an error, and validation decides what to do with it.
package sanitizer
