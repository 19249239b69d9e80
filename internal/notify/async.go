package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/payetonkawa/catalog-service/internal/platform/logger"
	"github.com/payetonkawa/catalog-service/internal/platform/metrics"
)

// Notifier matches the consumer-side interface of the account service.
type Notifier interface {
	Notify(ctx context.Context, accountID, token string) error
}

// deliveryTimeout bounds one background delivery, retries included.
const deliveryTimeout = 2 * time.Minute

const maxBacklogPerWorker = 64

// AsyncNotifier hands deliveries to a bounded worker pool so that the request
// path never waits on SMTP. Notify fails only when the pool refuses the task.
type AsyncNotifier struct {
	next    Notifier
	pool    *ants.Pool
	metrics *metrics.Registry
}

func NewAsyncNotifier(next Notifier, workers int, m *metrics.Registry) (*AsyncNotifier, error) {
	// Submit blocks while every worker is busy and fails once the backlog is full.
	pool, err := ants.NewPool(workers, ants.WithMaxBlockingTasks(workers*maxBacklogPerWorker))
	if err != nil {
		return nil, fmt.Errorf("could not create notification pool: %w", err)
	}
	return &AsyncNotifier{next: next, pool: pool, metrics: m}, nil
}

func (n *AsyncNotifier) Notify(_ context.Context, accountID, token string) error {
	// The request context ends with the response; deliveries outlive it.
	err := n.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()

		if err := n.next.Notify(ctx, accountID, token); err != nil {
			logger.Error("AsyncNotifier: delivery failed", err, "account_id", accountID)
			n.metrics.RecordDelivery(metrics.ResultFailure)
			return
		}
		n.metrics.RecordDelivery(metrics.ResultSuccess)
	})
	if err != nil {
		n.metrics.RecordDelivery(metrics.ResultRejected)
		return fmt.Errorf("could not queue notification: %w", err)
	}
	return nil
}

// Close waits up to timeout for queued deliveries, then stops the pool.
func (n *AsyncNotifier) Close(timeout time.Duration) error {
	return n.pool.ReleaseTimeout(timeout)
}
