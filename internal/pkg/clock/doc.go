// Package clock provides the time source used for expiry decisions.
//
// Code that compares deadlines should depend on Clocker rather than calling
// time.Now directly, so that tests can drive a Fake clock across an expiry
// boundary without sleeping.
package clock
