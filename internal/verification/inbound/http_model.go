package inbound

import "time"

type SendCodeRequest struct {
	Phone string `json:"phone"`
}

type SendCodeResponse struct {
	MessageID string    `json:"message_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (SendCodeResponse) Message() string {
	return "Verification code sent"
}

type VerifyCodeRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type VerifyCodeResponse struct {
	Verified bool `json:"verified"`
}

func (VerifyCodeResponse) Message() string {
	return "Code verified successfully"
}
