// Package sanitizer normalizes free-text input before validation and storage.
//
// Every function is idempotent and never fails: bad input collapses to the
// empty string (or is dropped from a slice) and the validator decides whether
// that is acceptable.
package sanitizer
