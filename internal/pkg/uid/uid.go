// Package uid generates string identifiers for correlation ids and message ids.
package uid

// StringID produces unique string identifiers.
type StringID interface {
	Generate() string
}
