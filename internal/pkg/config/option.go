package config

import "strings"

type options struct {
	defaults  map[string]any
	envPrefix string
	watch     bool
}

// Option customizes how a Viper config is built.
type Option func(*options)

// WithDefaults registers fallback values for keys the file leaves unset.
func WithDefaults(defaults map[string]any) Option {
	return func(o *options) {
		if o.defaults == nil {
			o.defaults = make(map[string]any, len(defaults))
		}
		for k, v := range defaults {
			o.defaults[k] = v
		}
	}
}

// WithEnvPrefix lets PREFIX_SECTION_KEY environment variables override file values.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = strings.ToUpper(strings.TrimSpace(prefix))
	}
}

// WithoutWatch disables reloading the file on change.
func WithoutWatch() Option {
	return func(o *options) {
		o.watch = false
	}
}
