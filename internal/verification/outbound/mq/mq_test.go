package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/phoneotp/internal/pkg/instrument"
	"github.com/shandysiswandi/phoneotp/internal/pkg/messaging"
	"github.com/shandysiswandi/phoneotp/internal/shared/event"
	"github.com/shandysiswandi/phoneotp/internal/verification/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	destination string
	msg         messaging.OutgoingMessage
	err         error
}

func (p *capturePublisher) Publish(_ context.Context, destination string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	p.destination = destination
	p.msg = msg
	return messaging.PublishResult{Topic: destination}, p.err
}

func (p *capturePublisher) Close() error { return nil }

func TestMessaging_PublishPhoneVerified(t *testing.T) {
	// Arrange
	pub := &capturePublisher{}
	m := NewMessaging(pub, instrument.NewNoop())
	ctx := instrument.SetCorrelationID(context.Background(), "cid-1")
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Act
	err := m.PublishPhoneVerified(ctx, usecase.PhoneVerifiedEvent{Phone: "+1555", VerifiedAt: at})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, event.PhoneVerifiedDestination, pub.destination)
	assert.Equal(t, []byte("+1555"), pub.msg.Key)
	assert.Equal(t, []messaging.Header{{Key: "cID", Value: []byte("cid-1")}}, pub.msg.Headers)

	var got event.PhoneVerifiedMessage
	require.NoError(t, json.Unmarshal(pub.msg.Body, &got))
	assert.Equal(t, "+1555", got.Phone)
	assert.True(t, at.Equal(got.VerifiedAt))
	assert.JSONEq(t, `{"phone":"+1555","verified_at":"2024-03-01T12:00:00Z"}`, string(pub.msg.Body))
}

func TestMessaging_PublishPhoneVerified_Error(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}
	m := NewMessaging(pub, instrument.NewNoop())

	err := m.PublishPhoneVerified(context.Background(), usecase.PhoneVerifiedEvent{Phone: "+1555"})

	assert.EqualError(t, err, "broker down")
}
