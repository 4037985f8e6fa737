package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/samber/lo"
	"github.com/shandysiswandi/phoneotp/internal/pkg/clock"
	"github.com/shandysiswandi/phoneotp/internal/pkg/config"
	"github.com/shandysiswandi/phoneotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/phoneotp/internal/pkg/instrument"
	"github.com/shandysiswandi/phoneotp/internal/pkg/messaging"
	"github.com/shandysiswandi/phoneotp/internal/pkg/router"
	"github.com/shandysiswandi/phoneotp/internal/pkg/uid"
	"github.com/shandysiswandi/phoneotp/internal/pkg/validator"
	"github.com/shandysiswandi/phoneotp/internal/verification"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const envPrefix = "PHONEOTP"

func defaults() map[string]any {
	return lo.Assign(map[string]any{
		"app.name":                                    "phoneotp",
		"app.server.http.address":                     ":8080",
		"app.server.http.read_timeout_seconds":        10,
		"app.server.http.read_header_timeout_seconds": 5,
		"app.server.http.write_timeout_seconds":       30,
		"app.server.http.idle_timeout_seconds":        60,
		"app.server.max_goroutine":                    0,
		"instrument.enabled":                          false,
		"instrument.service_name":                     "phoneotp",
		"instrument.log_level":                        "info",
		"instrument.log_mask_fields":                  "code,auth_token,authorization",
		"redis.url":                                   "redis://localhost:6379/0",
		"messaging.driver":                            messaging.DriverNone,
		"messaging.nats.max_reconnects":               60,
		"messaging.nats.reconnect_wait_seconds":       2,
		"messaging.kafka.batch_timeout_ms":            10,
	}, verification.Defaults())
}

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path, config.WithDefaults(defaults()), config.WithEnvPrefix(envPrefix))
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	if tz := cfg.GetString("app.tz"); tz != "" {
		//nolint:errcheck,gosec // ignore error
		os.Setenv("TZ", tz)
	}

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator
}

// initCache connects to redis only when a component is configured to use it.
func (a *App) initCache() {
	if !strings.EqualFold(a.config.GetString("modules.verification.store.driver"), verification.StoreDriverRedis) {
		return
	}

	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
}

func (a *App) initMessaging() {
	pub, err := messaging.NewFromDriver(context.Background(), a.config.GetString("messaging.driver"), messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr: a.config.GetString("messaging.nsq.producer_addr"),
			Config: func() *nsq.Config {
				cfg := nsq.NewConfig()
				if d := a.config.GetSecond("messaging.nsq.dial_timeout_seconds"); d > 0 {
					cfg.DialTimeout = d
				}
				if d := a.config.GetSecond("messaging.nsq.write_timeout_seconds"); d > 0 {
					cfg.WriteTimeout = d
				}
				return cfg
			}(),
		},
		Kafka: messaging.KafkaConfig{
			Brokers:      a.config.GetArray("messaging.kafka.brokers"),
			BatchTimeout: time.Duration(a.config.GetInt("messaging.kafka.batch_timeout_ms")) * time.Millisecond,
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("app.name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		PubSub: messaging.PubSubConfig{
			ProjectID:     a.config.GetString("messaging.pubsub.project_id"),
			ClientOptions: a.pubSubOptions(),
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "driver", a.config.GetString("messaging.driver"), "error", err)
		os.Exit(1)
	}

	a.messaging = pub
}

// pubSubOptions points the client at an emulator when an endpoint is set.
func (a *App) pubSubOptions() []option.ClientOption {
	endpoint := a.config.GetString("messaging.pubsub.endpoint")
	if endpoint == "" {
		return nil
	}

	return []option.ClientOption{
		option.WithEndpoint(endpoint),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}
}

func (a *App) healthChecks() map[string]router.HealthCheck {
	checks := map[string]router.HealthCheck{}
	if a.cacheConn != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.cacheConn.Ping(ctx).Err()
		}
	}
	return checks
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:       a.config,
		UUID:         a.uuid,
		Instrument:   a.ins,
		Name:         a.config.GetString("app.name"),
		HealthChecks: a.healthChecks(),
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}
				return a.cacheConn.Close()
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
	}
}
