package gateway

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/phoneotp/internal/pkg/uid"
)

// Logger is a development provider that writes messages to the log instead of
// sending them.
type Logger struct {
	ids uid.StringID
}

func NewLogger(ids uid.StringID) *Logger {
	return &Logger{ids: ids}
}

func (l *Logger) Send(ctx context.Context, to, body string) (string, error) {
	id := "log-" + l.ids.Generate()
	slog.InfoContext(ctx, "verification message not sent, log gateway in use", "to", to, "message_id", id, "body", body)
	return id, nil
}
