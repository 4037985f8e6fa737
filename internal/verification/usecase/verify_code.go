package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/phoneotp/internal/pkg/goerror"
	"github.com/shandysiswandi/phoneotp/internal/verification/entity"
)

type VerifyCodeInput struct {
	Phone string `validate:"required,notblank"`
	Code  string `validate:"required,notblank"`
}

// VerifyCode checks code against the entry stored for the phone. Success and
// exhaustion consume the entry; a plain mismatch counts one attempt.
func (s *Usecase) VerifyCode(ctx context.Context, in VerifyCodeInput) error {
	ctx, span := s.startSpan(ctx, "VerifyCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		s.count(ctx, s.verifyTotal, "invalid")
		return goerror.NewInvalidInput(err)
	}

	phone := normalize(in.Phone)
	now := s.clock.Now()

	err := s.store.Mutate(ctx, phone, func(cur *entity.Entry) (entity.Action, error) {
		if cur == nil {
			return entity.ActionKeep, entity.ErrNotFound
		}
		if cur.IsExpired(now) {
			return entity.ActionDelete, entity.ErrExpired
		}
		if subtle.ConstantTimeCompare([]byte(cur.Code), []byte(in.Code)) == 1 {
			return entity.ActionDelete, nil
		}

		cur.Attempts++
		if cur.Attempts >= cur.MaxAttempts {
			return entity.ActionDelete, entity.ErrExhausted
		}
		return entity.ActionSave, entity.ErrMismatch
	})

	switch {
	case err == nil:
	case errors.Is(err, entity.ErrNotFound):
		s.count(ctx, s.verifyTotal, "not_found")
		return goerror.NewBusinessWrap(err, "Verification not found or already used", goerror.CodeNotFound)
	case errors.Is(err, entity.ErrExpired):
		s.count(ctx, s.verifyTotal, "expired")
		return goerror.NewBusinessWrap(err, "Verification code has expired", goerror.CodeGone)
	case errors.Is(err, entity.ErrExhausted):
		slog.WarnContext(ctx, "verification attempts exhausted", "phone", phone)
		s.count(ctx, s.verifyTotal, "exhausted")
		return goerror.NewBusinessWrap(err, "Too many failed attempts, request a new code", goerror.CodeTooManyRequest)
	case errors.Is(err, entity.ErrMismatch):
		s.count(ctx, s.verifyTotal, "mismatch")
		return goerror.NewBusinessWrap(err, "Invalid verification code", goerror.CodeUnauthorized)
	default:
		slog.ErrorContext(ctx, "failed to verify code in store", "phone", phone, "error", err)
		s.count(ctx, s.verifyTotal, "error")
		return goerror.NewServer(err)
	}

	s.count(ctx, s.verifyTotal, "verified")
	s.publishVerified(ctx, PhoneVerifiedEvent{Phone: phone, VerifiedAt: now})

	return nil
}

func (s *Usecase) publishVerified(ctx context.Context, ev PhoneVerifiedEvent) {
	if s.repoMessaging == nil {
		return
	}

	s.goroutine.Go(context.WithoutCancel(ctx), "publish-phone-verified", func(ctx context.Context) error {
		if err := s.repoMessaging.PublishPhoneVerified(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "failed to publish phone verified", "phone", ev.Phone, "error", err)
			return err
		}
		return nil
	})
}
