package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/phoneotp/internal/pkg/clock"
	"github.com/shandysiswandi/phoneotp/internal/pkg/config"
	"github.com/shandysiswandi/phoneotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/phoneotp/internal/pkg/instrument"
	"github.com/shandysiswandi/phoneotp/internal/pkg/messaging"
	"github.com/shandysiswandi/phoneotp/internal/pkg/otp"
	"github.com/shandysiswandi/phoneotp/internal/pkg/router"
	"github.com/shandysiswandi/phoneotp/internal/pkg/uid"
	"github.com/shandysiswandi/phoneotp/internal/pkg/validator"
	"github.com/shandysiswandi/phoneotp/internal/verification/inbound"
	"github.com/shandysiswandi/phoneotp/internal/verification/janitor"
	"github.com/shandysiswandi/phoneotp/internal/verification/outbound/gateway"
	"github.com/shandysiswandi/phoneotp/internal/verification/outbound/mq"
	"github.com/shandysiswandi/phoneotp/internal/verification/outbound/store"
	"github.com/shandysiswandi/phoneotp/internal/verification/usecase"
)

const (
	StoreDriverMemory = "memory"
	StoreDriverRedis  = "redis"
)

// ErrRedisRequired is returned when the redis store is selected without a connection.
var ErrRedisRequired = errors.New("verification: redis store selected but no redis connection configured")

// Defaults returns the configuration defaults of this module.
func Defaults() map[string]any {
	return map[string]any{
		"modules.verification.ttl_seconds":             300,
		"modules.verification.max_attempts":            3,
		"modules.verification.code_length":             6,
		"modules.verification.sweep_interval_seconds":  60,
		"modules.verification.app_name":                "Share Dish",
		"modules.verification.store.driver":            StoreDriverMemory,
		"modules.verification.store.shards":            store.DefaultShards,
		"modules.verification.store.redis_prefix":      store.DefaultRedisPrefix,
		"modules.verification.gateway.driver":          gateway.DriverLog,
		"modules.verification.gateway.timeout_seconds": 10,
		"modules.verification.gateway.twilio.channel":  gateway.ChannelWhatsApp,
		"modules.verification.events.enabled":          false,
	}
}

type Dependency struct {
	// CacheConn is only needed by the redis store driver.
	CacheConn  *redis.Client
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

// Module is the running verification module. Its janitor is owned by the
// process lifecycle through Start and Stop.
type Module struct {
	janitor *janitor.Janitor
}

func New(dep Dependency) (*Module, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	st, err := newStore(dep)
	if err != nil {
		return nil, err
	}

	provider, err := gateway.NewProvider(
		dep.Config.GetString("modules.verification.gateway.driver"),
		gateway.TwilioConfig{
			AccountSID: dep.Config.GetString("modules.verification.gateway.twilio.account_sid"),
			AuthToken:  dep.Config.GetString("modules.verification.gateway.twilio.auth_token"),
			From:       dep.Config.GetString("modules.verification.gateway.twilio.from"),
			Channel:    dep.Config.GetString("modules.verification.gateway.twilio.channel"),
		},
		dep.UUID,
	)
	if err != nil {
		return nil, err
	}
	gw := gateway.NewAdapter(
		provider,
		gateway.NewClassifier(gateway.TwilioCodes),
		dep.Config.GetSecond("modules.verification.gateway.timeout_seconds"),
		dep.Instrument,
	)

	code, err := otp.NewNumeric(dep.Config.GetInt("modules.verification.code_length"))
	if err != nil {
		return nil, err
	}

	ucDep := usecase.Dependency{
		Store:      st,
		Gateway:    gw,
		Validator:  dep.Validator,
		Config:     dep.Config,
		Code:       code,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
		Goroutine:  dep.Goroutine,
	}
	if dep.Config.GetBool("modules.verification.events.enabled") {
		ucDep.RepoMessaging = mq.NewMessaging(dep.Messaging, dep.Instrument)
	}
	uc := usecase.New(ucDep)

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return &Module{
		janitor: janitor.New(st,
			janitor.WithClock(dep.Clock),
			janitor.WithInterval(dep.Config.GetSecond("modules.verification.sweep_interval_seconds")),
			janitor.WithInstrument(dep.Instrument),
		),
	}, nil
}

func newStore(dep Dependency) (usecase.Store, error) {
	driver := strings.ToLower(strings.TrimSpace(dep.Config.GetString("modules.verification.store.driver")))
	switch driver {
	case "", StoreDriverMemory:
		return store.NewMemory(dep.Config.GetInt("modules.verification.store.shards")), nil
	case StoreDriverRedis:
		if dep.CacheConn == nil {
			return nil, ErrRedisRequired
		}
		return store.NewRedis(dep.CacheConn, dep.Config.GetString("modules.verification.store.redis_prefix"), dep.Clock), nil
	default:
		return nil, fmt.Errorf("verification: unknown store driver %q", driver)
	}
}

// Start schedules the expired-entry sweep.
func (m *Module) Start() error {
	return m.janitor.Start()
}

// Stop halts the sweep schedule. The returned context is done once a running
// sweep has finished.
func (m *Module) Stop() context.Context {
	return m.janitor.Stop()
}
