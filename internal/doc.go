// Package internal holds helpers shared across otpgate that must not leak
// into the public API surface.
package internal
