package event

import "time"

const PhoneVerifiedDestination string = "phone_verified"

type PhoneVerifiedMessage struct {
	Phone      string    `json:"phone"`
	VerifiedAt time.Time `json:"verified_at"`
}
