package config

import (
	"bytes"
	"errors"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// ErrConfigType is returned when NewViperFromBytes is given no format.
var ErrConfigType = errors.New("config type is required")

// Viper is a Config backed by github.com/spf13/viper.
type Viper struct {
	v *viper.Viper
}

func build(opts []Option) (*viper.Viper, options) {
	o := options{watch: true}
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	for k, val := range o.defaults {
		v.SetDefault(k, val)
	}

	if o.envPrefix != "" {
		v.SetEnvPrefix(o.envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	return v, o
}

// NewViper loads configuration from pathFile. The format is inferred from the
// extension and the file is watched for changes unless WithoutWatch is given.
func NewViper(pathFile string, opts ...Option) (*Viper, error) {
	v, o := build(opts)

	filename := path.Base(pathFile)
	v.AddConfigPath(path.Dir(pathFile))
	v.SetConfigName(strings.TrimSuffix(filename, path.Ext(filename)))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	if o.watch {
		v.OnConfigChange(func(_ fsnotify.Event) {
			if err := v.ReadInConfig(); err != nil {
				slog.Error("config reload failed", "path", pathFile, "error", err)
				return
			}
			slog.Info("config reloaded", "path", pathFile)
		})
		v.WatchConfig()
	}

	return &Viper{v: v}, nil
}

// NewViperFromBytes loads configuration from memory. configType is a format
// viper understands, such as "yaml" or "json".
func NewViperFromBytes(configType string, data []byte, opts ...Option) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, ErrConfigType
	}

	v, _ := build(opts)
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func (vc *Viper) GetBool(key string) bool { return vc.v.GetBool(key) }

func (vc *Viper) GetInt(key string) int { return vc.v.GetInt(key) }

func (vc *Viper) GetFloat64(key string) float64 { return vc.v.GetFloat64(key) }

func (vc *Viper) GetString(key string) string { return vc.v.GetString(key) }

func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

func (vc *Viper) GetArray(key string) []string {
	return lo.FilterMap(strings.Split(vc.v.GetString(key), ","), func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
}

func (vc *Viper) GetMap(key string) map[string]string {
	m := make(map[string]string)
	for _, pair := range vc.GetArray(key) {
		if k, v, ok := strings.Cut(pair, ":"); ok {
			m[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return m
}

// Close implements io.Closer. Viper holds nothing to release.
func (vc *Viper) Close() error {
	return nil
}
