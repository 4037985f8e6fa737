package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/phoneotp/internal/pkg/clock"
	"github.com/shandysiswandi/phoneotp/internal/pkg/config"
	"github.com/shandysiswandi/phoneotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/phoneotp/internal/pkg/instrument"
	"github.com/shandysiswandi/phoneotp/internal/pkg/otp"
	"github.com/shandysiswandi/phoneotp/internal/pkg/validator"
	"github.com/shandysiswandi/phoneotp/internal/verification/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTTL         = 5 * time.Minute
	defaultMaxAttempts = 3
	defaultAppName     = "Share Dish"
)

// PhoneVerifiedEvent is published after a code is accepted.
type PhoneVerifiedEvent struct {
	Phone      string
	VerifiedAt time.Time
}

// Store holds at most one entry per identifier. Implementations serialize
// every operation on one identifier.
type Store interface {
	Put(ctx context.Context, entry entity.Entry) error
	Get(ctx context.Context, identifier string) (*entity.Entry, error)
	Mutate(ctx context.Context, identifier string, fn entity.MutateFunc) error
	Delete(ctx context.Context, identifier string) error
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type gateway interface {
	Send(ctx context.Context, to, body string) (string, error)
}

type repoMessaging interface {
	PublishPhoneVerified(ctx context.Context, msg PhoneVerifiedEvent) error
}

type Usecase struct {
	store         Store
	gateway       gateway
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	code          otp.Generator
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	issueTotal  metric.Int64Counter
	verifyTotal metric.Int64Counter
}

type Dependency struct {
	Store         Store
	Gateway       gateway
	// RepoMessaging is optional; nil disables phone-verified events.
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	Code          otp.Generator
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	meter := dep.Instrument.Meter("verification.usecase")

	issueTotal, err := meter.Int64Counter("verification.issue.total", metric.WithDescription("Verification codes issued by result"))
	if err != nil {
		slog.Error("failed to create verification issue counter", "error", err)
	}
	verifyTotal, err := meter.Int64Counter("verification.verify.total", metric.WithDescription("Verification attempts by result"))
	if err != nil {
		slog.Error("failed to create verification verify counter", "error", err)
	}

	return &Usecase{
		store:         dep.Store,
		gateway:       dep.Gateway,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		code:          dep.Code,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
		issueTotal:    issueTotal,
		verifyTotal:   verifyTotal,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.usecase").Start(ctx, name)
}

func (s *Usecase) count(ctx context.Context, c metric.Int64Counter, result string) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (s *Usecase) ttl() time.Duration {
	if ttl := s.cfg.GetSecond("modules.verification.ttl_seconds"); ttl > 0 {
		return ttl
	}
	return defaultTTL
}

func (s *Usecase) maxAttempts() int {
	if n := s.cfg.GetInt("modules.verification.max_attempts"); n > 0 {
		return n
	}
	return defaultMaxAttempts
}

func (s *Usecase) appName() string {
	if name := strings.TrimSpace(s.cfg.GetString("modules.verification.app_name")); name != "" {
		return name
	}
	return defaultAppName
}

// normalize prepends "+" when missing. Issuance and verification must agree
// on it so both address the same store key.
func normalize(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + phone
}
