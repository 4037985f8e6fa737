package gateway

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/shandysiswandi/phoneotp/internal/verification/entity"
)

// TwilioCodes maps Twilio REST error codes to gateway kinds.
var TwilioCodes = map[int]entity.GatewayKind{
	21211: entity.GatewayKindInvalidRecipient, // invalid 'To' number
	21214: entity.GatewayKindInvalidRecipient, // 'To' number cannot be reached
	21614: entity.GatewayKindInvalidRecipient, // 'To' is not a mobile number
	63003: entity.GatewayKindInvalidRecipient, // channel could not find the destination
	21608: entity.GatewayKindChannelDisabled,
	21610: entity.GatewayKindPolicyViolation, // recipient unsubscribed
	63016: entity.GatewayKindPolicyViolation, // outside the allowed window
	20003: entity.GatewayKindAuth,
}

// Classifier turns provider and transport errors into *entity.GatewayError.
// Native codes are looked up first, then the error's structure, then its text.
type Classifier struct {
	codes map[int]entity.GatewayKind
}

// NewClassifier returns a Classifier using codes for ProviderError lookups.
func NewClassifier(codes map[int]entity.GatewayKind) *Classifier {
	return &Classifier{codes: codes}
}

// Classify returns nil for nil and leaves an existing *entity.GatewayError as is.
func (c *Classifier) Classify(err error) error {
	if err == nil {
		return nil
	}

	var gerr *entity.GatewayError
	if errors.As(err, &gerr) {
		return err
	}

	return &entity.GatewayError{Kind: c.kind(err), Err: err}
}

func (c *Classifier) kind(err error) entity.GatewayKind {
	var perr *ProviderError
	if errors.As(err, &perr) {
		if k, ok := c.codes[perr.Code]; ok {
			return k
		}
		if perr.Status == 401 {
			return entity.GatewayKindAuth
		}
	}

	var (
		netErr net.Error
		dnsErr *net.DNSError
		opErr  *net.OpError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return entity.GatewayKindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return entity.GatewayKindTimeout
	case errors.As(err, &dnsErr), errors.As(err, &opErr), errors.Is(err, syscall.ECONNREFUSED):
		return entity.GatewayKindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return entity.GatewayKindTimeout
	case strings.Contains(msg, "enotfound"), strings.Contains(msg, "econnrefused"),
		strings.Contains(msg, "no such host"), strings.Contains(msg, "connection refused"):
		return entity.GatewayKindNetwork
	case strings.Contains(msg, "authenticat"):
		return entity.GatewayKindAuth
	default:
		return entity.GatewayKindUnknown
	}
}
