package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-portal/internal/config"
	"github.com/spec-kit/complaint-portal/internal/domain"
)

// NotificationWorker drains the Redis delivery queue and pushes each stored
// notification to the configured outbound channels. Delivery is best effort;
// the stored row is the source of truth the UI reads.
type NotificationWorker struct {
	redis  *redis.Client
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewNotificationWorker constructs the worker.
func NewNotificationWorker(client *redis.Client, cfg config.NotificationConfig, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{redis: client, cfg: cfg, logger: logger}
}

// Run blocks draining the queue until the context is cancelled.
func (w *NotificationWorker) Run(ctx context.Context) {
	if w.redis == nil || w.cfg.QueueKey == "" {
		w.logger.Info("notification worker disabled")
		return
	}
	w.logger.Info("notification worker started", zap.String("queue", w.cfg.QueueKey))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker stopped")
			return
		default:
		}

		result, err := w.redis.BRPop(ctx, 5*time.Second, w.cfg.QueueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Warn("queue read failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		// BRPop returns [key, value].
		if len(result) != 2 {
			continue
		}

		var notification domain.Notification
		if err := json.Unmarshal([]byte(result[1]), &notification); err != nil {
			w.logger.Error("discarding malformed queue entry", zap.Error(err))
			continue
		}
		w.dispatch(ctx, &notification)
	}
}

func (w *NotificationWorker) dispatch(ctx context.Context, n *domain.Notification) {
	w.sendEmail(ctx, n)
	w.sendWebhook(ctx, n)
}

// sendEmail is a delivery stub: the engine's contract ends at handing the
// payload to an outbound channel.
func (w *NotificationWorker) sendEmail(_ context.Context, n *domain.Notification) {
	w.logger.Info("email delivery",
		zap.String("from", w.cfg.EmailFrom),
		zap.String("user_id", n.UserID),
		zap.String("title", n.Title),
		zap.String("severity", string(n.Severity)),
	)
}

func (w *NotificationWorker) sendWebhook(_ context.Context, n *domain.Notification) {
	if w.cfg.WebhookURL == "" {
		return
	}
	w.logger.Info("webhook delivery",
		zap.String("url", w.cfg.WebhookURL),
		zap.String("user_id", n.UserID),
		zap.String("event_kind", n.EventKind),
	)
}
