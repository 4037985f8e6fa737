package gateway

import (
	"context"
	"fmt"
)

// Provider delivers one message and returns the provider's message id.
// Failures should be reported as *ProviderError when a native code exists.
type Provider interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// ProviderError carries a provider's native failure code.
type ProviderError struct {
	Code    int
	Status  int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d (http %d): %s", e.Code, e.Status, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }
