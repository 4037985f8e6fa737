// Package goerror defines the structured error type returned by use cases and
// rendered by the HTTP router.
package goerror
