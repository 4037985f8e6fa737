// Package validator checks use case inputs against struct tags.
//
// Failures are returned as V10ValidationError, a field to message map keyed
// by the field's JSON name so the HTTP layer can render it as is.
package validator
