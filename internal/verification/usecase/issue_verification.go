package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/phoneotp/internal/pkg/goerror"
	"github.com/shandysiswandi/phoneotp/internal/verification/entity"
)

type IssueVerificationInput struct {
	Phone string `validate:"required,notblank"`
}

type IssueVerificationOutput struct {
	MessageID string
	ExpiresAt time.Time
}

func messageBody(app, code string, ttl time.Duration) string {
	return fmt.Sprintf("Your %s verification code is: %s\n\nThis code will expire in %d minutes.",
		app, code, int(ttl/time.Minute))
}

// IssueVerification stores a fresh code for the phone, replacing any previous
// one, and delivers it. A failed delivery leaves the stored code in place.
func (s *Usecase) IssueVerification(ctx context.Context, in IssueVerificationInput) (*IssueVerificationOutput, error) {
	ctx, span := s.startSpan(ctx, "IssueVerification")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		s.count(ctx, s.issueTotal, "invalid")
		return nil, goerror.NewInvalidInput(err)
	}

	phone := normalize(in.Phone)

	code, err := s.code.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate verification code", "error", err)
		s.count(ctx, s.issueTotal, "error")
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	ttl := s.ttl()
	entry := entity.Entry{
		Identifier:  phone,
		Code:        code,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
		Attempts:    0,
		MaxAttempts: s.maxAttempts(),
	}

	if err := s.store.Put(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to store verification entry", "phone", phone, "error", err)
		s.count(ctx, s.issueTotal, "error")
		return nil, goerror.NewServer(err)
	}

	msgID, err := s.gateway.Send(context.WithoutCancel(ctx), phone, messageBody(s.appName(), code, ttl))
	if err != nil {
		slog.ErrorContext(ctx, "failed to deliver verification code", "phone", phone, "error", err)
		s.count(ctx, s.issueTotal, "gateway_error")
		return nil, gatewayError(err)
	}

	slog.InfoContext(ctx, "verification code sent", "phone", phone, "message_id", msgID)
	s.count(ctx, s.issueTotal, "sent")

	return &IssueVerificationOutput{MessageID: msgID, ExpiresAt: entry.ExpiresAt}, nil
}

func gatewayError(err error) error {
	var gerr *entity.GatewayError
	if !errors.As(err, &gerr) {
		return goerror.NewUpstream(err, "Failed to send verification code", goerror.CodeBadGateway)
	}

	switch {
	case gerr.Kind.CallerFault():
		return goerror.NewBusinessWrap(err, "Phone number cannot receive verification codes", goerror.CodeInvalidInput)
	case gerr.Kind == entity.GatewayKindTimeout:
		return goerror.NewUpstream(err, "Verification code delivery timed out", goerror.CodeGatewayTimeout)
	default:
		return goerror.NewUpstream(err, "Failed to send verification code", goerror.CodeBadGateway)
	}
}
