// Package termcap decides which inline image protocol the terminal speaks.
//
// Detect is a pure function over an override, an environment snapshot and
// an optional probe result. Detector wraps it for the live process and only
// touches /dev/tty when the override and environment are inconclusive.
package termcap
