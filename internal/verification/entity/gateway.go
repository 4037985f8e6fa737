package entity

import (
	"errors"
	"fmt"
)

// GatewayKind classifies why a delivery failed.
type GatewayKind int

const (
	GatewayKindUnknown GatewayKind = iota
	GatewayKindInvalidRecipient
	GatewayKindChannelDisabled
	GatewayKindPolicyViolation
	GatewayKindTimeout
	GatewayKindNetwork
	GatewayKindAuth
)

var (
	ErrGatewayUnknown          = errors.New("gateway: delivery failed")
	ErrGatewayInvalidRecipient = errors.New("gateway: invalid recipient")
	ErrGatewayChannelDisabled  = errors.New("gateway: recipient not reachable on channel")
	ErrGatewayPolicyViolation  = errors.New("gateway: message rejected by policy")
	ErrGatewayTimeout          = errors.New("gateway: deadline exceeded")
	ErrGatewayNetwork          = errors.New("gateway: network failure")
	ErrGatewayAuth             = errors.New("gateway: credentials rejected")
)

var gatewaySentinels = map[GatewayKind]error{
	GatewayKindUnknown:          ErrGatewayUnknown,
	GatewayKindInvalidRecipient: ErrGatewayInvalidRecipient,
	GatewayKindChannelDisabled:  ErrGatewayChannelDisabled,
	GatewayKindPolicyViolation:  ErrGatewayPolicyViolation,
	GatewayKindTimeout:          ErrGatewayTimeout,
	GatewayKindNetwork:          ErrGatewayNetwork,
	GatewayKindAuth:             ErrGatewayAuth,
}

func (k GatewayKind) String() string {
	switch k {
	case GatewayKindInvalidRecipient:
		return "invalid_recipient"
	case GatewayKindChannelDisabled:
		return "channel_disabled"
	case GatewayKindPolicyViolation:
		return "policy_violation"
	case GatewayKindTimeout:
		return "timeout"
	case GatewayKindNetwork:
		return "network"
	case GatewayKindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// CallerFault reports whether fixing the recipient could make a retry succeed.
func (k GatewayKind) CallerFault() bool {
	switch k {
	case GatewayKindInvalidRecipient, GatewayKindChannelDisabled, GatewayKindPolicyViolation:
		return true
	default:
		return false
	}
}

// GatewayError is a classified delivery failure.
//
// errors.Is matches both the kind sentinel (ErrGatewayTimeout, ...) and the
// wrapped provider error.
type GatewayError struct {
	Kind GatewayKind
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.sentinel(), e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *GatewayError) sentinel() error {
	if s, ok := gatewaySentinels[e.Kind]; ok {
		return s
	}
	return ErrGatewayUnknown
}
