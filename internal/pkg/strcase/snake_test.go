package strcase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToLowerSnake(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"Phone":      "phone",
		"MessageID":  "message_id",
		"HTTPServer": "http_server",
		"ExpiresAt":  "expires_at",
		"code2Check": "code2_check",
	}

	for in, want := range tests {
		assert.Equal(t, want, ToLowerSnake(in), in)
	}
}
