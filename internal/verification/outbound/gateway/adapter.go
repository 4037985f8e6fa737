package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/phoneotp/internal/pkg/instrument"
	"github.com/shandysiswandi/phoneotp/internal/verification/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultTimeout bounds a single delivery when none is configured.
const DefaultTimeout = 10 * time.Second

// Adapter bounds a Provider call by a deadline and classifies its failures.
type Adapter struct {
	provider   Provider
	classifier *Classifier
	timeout    time.Duration
	ins        instrument.Instrumentation
}

// NewAdapter wraps provider. A non-positive timeout means DefaultTimeout and
// a nil classifier means the Twilio code table.
func NewAdapter(provider Provider, classifier *Classifier, timeout time.Duration, ins instrument.Instrumentation) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if classifier == nil {
		classifier = NewClassifier(TwilioCodes)
	}
	if ins == nil {
		ins = instrument.NewNoop()
	}
	return &Adapter{provider: provider, classifier: classifier, timeout: timeout, ins: ins}
}

type result struct {
	id  string
	err error
}

// Send delivers body to to. It returns within the adapter timeout: when the
// deadline wins, the provider's late result is dropped into a buffered channel
// nobody reads and a timeout *entity.GatewayError is returned.
func (a *Adapter) Send(ctx context.Context, to, body string) (string, error) {
	ctx, span := a.ins.Tracer("verification.gateway").Start(ctx, "Send")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	out := make(chan result, 1)
	go func() {
		defer func() {
			if rvr := recover(); rvr != nil {
				slog.ErrorContext(ctx, "panic in delivery provider", "panic", rvr)
				out <- result{err: fmt.Errorf("gateway: provider panic: %v", rvr)}
			}
		}()

		id, err := a.provider.Send(ctx, to, body)
		out <- result{id: id, err: err}
	}()

	var res result
	select {
	case res = <-out:
	case <-ctx.Done():
		res.err = ctx.Err()
		if errors.Is(res.err, context.DeadlineExceeded) {
			res.err = &entity.GatewayError{Kind: entity.GatewayKindTimeout, Err: res.err}
		}
	}

	if res.err != nil {
		err := a.classifier.Classify(res.err)
		var gerr *entity.GatewayError
		if errors.As(err, &gerr) {
			span.SetAttributes(attribute.String("gateway.kind", gerr.Kind.String()))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.String("gateway.message_id", res.id))
	return res.id, nil
}
