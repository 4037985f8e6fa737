package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

const (
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"

	whatsappPrefix = "whatsapp:"
)

// ErrTwilioConfig is returned when credentials or the sender are missing.
var ErrTwilioConfig = errors.New("gateway: twilio account_sid, auth_token and from are required")

// TwilioConfig configures the Twilio provider.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	// Channel is "whatsapp" (default) or "sms".
	Channel string
}

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Twilio sends messages through the Twilio Messages API.
type Twilio struct {
	api     messageCreator
	from    string
	channel string
}

// NewTwilio builds a Twilio provider from cfg.
func NewTwilio(cfg TwilioConfig) (*Twilio, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, ErrTwilioConfig
	}

	channel := strings.ToLower(strings.TrimSpace(cfg.Channel))
	if channel == "" {
		channel = ChannelWhatsApp
	}
	if channel != ChannelWhatsApp && channel != ChannelSMS {
		return nil, fmt.Errorf("gateway: unsupported twilio channel %q", cfg.Channel)
	}

	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &Twilio{api: rc.Api, from: cfg.From, channel: channel}, nil
}

func (t *Twilio) address(number string) string {
	if t.channel != ChannelWhatsApp || strings.HasPrefix(number, whatsappPrefix) {
		return number
	}
	return whatsappPrefix + number
}

// Send creates one message. The SDK call takes no context; the Adapter
// deadline bounds how long the caller waits for it.
func (t *Twilio) Send(_ context.Context, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(t.address(to))
	params.SetFrom(t.address(t.from))
	params.SetBody(body)

	msg, err := t.api.CreateMessage(params)
	if err != nil {
		var rest *twilioclient.TwilioRestError
		if errors.As(err, &rest) {
			return "", &ProviderError{Code: rest.Code, Status: rest.Status, Message: rest.Message, Err: err}
		}
		return "", fmt.Errorf("twilio: create message: %w", err)
	}

	if msg == nil || msg.Sid == nil {
		return "", &ProviderError{Message: "twilio response carried no message sid"}
	}
	return *msg.Sid, nil
}
