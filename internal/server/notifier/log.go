package notifier

import (
	"context"

	"github.com/bkkdisplay/confeditor/internal/logging"
)

// LogNotifier writes codes to the log instead of sending mail. Used when no
// SMTP relay is configured (local development).
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendCode(ctx context.Context, email, code string) error {
	n.logger.Info(ctx, "verification code issued", "email", email, "code", code)
	return nil
}
