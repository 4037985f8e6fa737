package gateway

import (
	"fmt"
	"strings"

	"github.com/shandysiswandi/phoneotp/internal/pkg/uid"
)

const (
	DriverLog    = "log"
	DriverTwilio = "twilio"
)

// NewProvider selects a Provider by driver name.
func NewProvider(driver string, twilioCfg TwilioConfig, ids uid.StringID) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverLog:
		return NewLogger(ids), nil
	case DriverTwilio:
		return NewTwilio(twilioCfg)
	default:
		return nil, fmt.Errorf("gateway: unknown driver %q", driver)
	}
}
