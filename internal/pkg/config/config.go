package config

import (
	"io"
	"time"
)

// Config reads typed configuration values by dotted key.
//
// Missing keys yield the zero value unless a default was registered with
// WithDefaults.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetInt(key string) int
	GetFloat64(key string) float64
	GetString(key string) string

	// GetSecond reads an integer number of seconds.
	GetSecond(key string) time.Duration

	// GetArray reads a comma separated list. Blank elements are dropped.
	GetArray(key string) []string

	// GetMap reads "k:v,k:v" pairs.
	GetMap(key string) map[string]string
}
