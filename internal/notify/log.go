package notify

import (
	"context"

	"github.com/payetonkawa/catalog-service/internal/platform/logger"
)

// LogNotifier stands in for mail delivery when no SMTP host is configured.
// The token itself is never logged.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, accountID, _ string) error {
	logger.Warn("SMTP disabled: token issued but not delivered", "account_id", accountID)
	return nil
}
