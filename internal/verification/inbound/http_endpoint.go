package inbound

import (
	"github.com/shandysiswandi/phoneotp/internal/pkg/router"
	"github.com/shandysiswandi/phoneotp/internal/verification/usecase"
)

// HTTPEndpoint exposes the phone verification workflow over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// SendCode issues a code for the phone and delivers it.
func (h *HTTPEndpoint) SendCode(r *router.Request) (any, error) {
	var req SendCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.IssueVerification(r.Context(), usecase.IssueVerificationInput{
		Phone: req.Phone,
	})
	if err != nil {
		return nil, err
	}

	return SendCodeResponse{
		MessageID: resp.MessageID,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// VerifyCode checks a submitted code.
func (h *HTTPEndpoint) VerifyCode(r *router.Request) (any, error) {
	var req VerifyCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.VerifyCode(r.Context(), usecase.VerifyCodeInput{
		Phone: req.Phone,
		Code:  req.Code,
	}); err != nil {
		return nil, err
	}

	return VerifyCodeResponse{Verified: true}, nil
}
