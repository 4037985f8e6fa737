package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

const (
	// DefaultDigits is used when NewNumeric receives zero.
	DefaultDigits = 6

	minDigits = 4
	maxDigits = 10
)

// ErrInvalidDigits is returned for code lengths outside [4, 10].
var ErrInvalidDigits = errors.New("otp: digits must be between 4 and 10")

// Generator produces one-time codes.
type Generator interface {
	Generate() (string, error)
}

// Numeric produces fixed-length decimal codes.
type Numeric struct {
	digits int
	upper  *big.Int
	reader io.Reader
}

// NewNumeric returns a Numeric generator for codes of the given length.
func NewNumeric(digits int) (*Numeric, error) {
	if digits == 0 {
		digits = DefaultDigits
	}
	if digits < minDigits || digits > maxDigits {
		return nil, ErrInvalidDigits
	}

	return &Numeric{
		digits: digits,
		upper:  new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil),
		reader: rand.Reader,
	}, nil
}

// Digits returns the configured code length.
func (n *Numeric) Digits() int {
	return n.digits
}

// Generate returns a zero-padded code. An error means the entropy source failed.
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(n.reader, n.upper)
	if err != nil {
		return "", fmt.Errorf("otp: read entropy: %w", err)
	}

	return fmt.Sprintf("%0*d", n.digits, v.Int64()), nil
}
