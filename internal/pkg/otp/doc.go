// Package otp generates short numeric one-time codes.
//
// Codes are drawn from crypto/rand with rejection sampling via rand.Int, so
// every value in [0, 10^digits) is equally likely and leading zeros are kept.
package otp
