package dispatch

import (
	"context"
	"strconv"
	"time"

	"order-notifier/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dispatcher рассылает сообщения параллельно и ждет все отправки.
// Ошибка одной отправки не отменяет остальные.
type Dispatcher struct {
	sender      Sender
	concurrency int
	sendTimeout time.Duration
	logger      *zap.Logger
}

// NewDispatcher создает диспетчер. concurrency <= 0 - без ограничения, sendTimeout <= 0 - без таймаута на отправку.
func NewDispatcher(sender Sender, concurrency int, sendTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		concurrency: concurrency,
		sendTimeout: sendTimeout,
		logger:      logger.Named("dispatcher"),
	}
}

// Dispatch returns one result per message, in message order.
func (d *Dispatcher) Dispatch(ctx context.Context, auth models.DispatchAuth, msgs []models.NotificationMessage) []models.DispatchResult {
	results := make([]models.DispatchResult, len(msgs))

	var g errgroup.Group
	if d.concurrency > 0 {
		g.SetLimit(d.concurrency)
	}
	for i, msg := range msgs {
		g.Go(func() error {
			sendCtx := ctx
			if d.sendTimeout > 0 {
				var cancel context.CancelFunc
				sendCtx, cancel = context.WithTimeout(ctx, d.sendTimeout)
				defer cancel()
			}

			start := time.Now()
			res := d.sender.Send(sendCtx, auth, msg)
			res.Token = msg.TargetToken
			sendDuration.WithLabelValues(d.sender.Name(), strconv.FormatBool(res.OK)).Observe(time.Since(start).Seconds())
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	d.logger.Debug("Dispatch finished", zap.Int("messages", len(msgs)), zap.String("sender", d.sender.Name()))
	return results
}
