package inbound

import (
	"context"

	"github.com/shandysiswandi/phoneotp/internal/pkg/router"
	"github.com/shandysiswandi/phoneotp/internal/verification/usecase"
)

type uc interface {
	IssueVerification(ctx context.Context, in usecase.IssueVerificationInput) (*usecase.IssueVerificationOutput, error)
	VerifyCode(ctx context.Context, in usecase.VerifyCodeInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/verification/send", end.SendCode)
	r.POST("/api/v1/verification/verify", end.VerifyCode)
}
