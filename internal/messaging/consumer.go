package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"order-notifier/internal/models"
	"order-notifier/internal/pipeline"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// EventRouter выбирает вариант уведомления по самому событию и запускает пайплайн.
type EventRouter interface {
	Route(ctx context.Context, ev models.ChangeEvent) (pipeline.Outcome, error)
}

// Consumer читает события изменений заказов из очереди пулом воркеров.
type Consumer struct {
	conn        *amqp.Connection
	logger      *zap.Logger
	queueName   string
	concurrency int
	processor   *Processor
	stopChannel chan struct{}
	stopOnce    sync.Once
	cancelFunc  context.CancelFunc
	wg          sync.WaitGroup
}

func NewConsumer(conn *amqp.Connection, logger *zap.Logger, queueName string, concurrency int, processor *Processor) *Consumer {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Consumer{
		conn:        conn,
		logger:      logger.Named("consumer"),
		queueName:   queueName,
		concurrency: concurrency,
		processor:   processor,
		stopChannel: make(chan struct{}),
	}
}

// Start блокируется до вызова Stop или закрытия канала доставки.
func (c *Consumer) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelFunc = cancel
	defer cancel()

	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("не удалось открыть канал RabbitMQ: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("не удалось объявить очередь '%s': %w", c.queueName, err)
	}

	if err := ch.Qos(c.concurrency, 0, false); err != nil {
		return fmt.Errorf("не удалось установить QoS: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"order-notifier", // consumer tag
		false,            // auto-ack
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("не удалось зарегистрировать консьюмера: %w", err)
	}

	c.logger.Info("Consumer started", zap.String("queue", q.Name), zap.Int("concurrency", c.concurrency))

	done := make(chan struct{})
	c.wg.Add(c.concurrency)
	for i := 0; i < c.concurrency; i++ {
		go func(workerID int) {
			defer c.wg.Done()
			logger := c.logger.With(zap.Int("worker_id", workerID))
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-msgs:
					if !ok {
						logger.Info("Delivery channel closed, worker exiting")
						return
					}
					c.processor.ProcessMessage(ctx, d)
				}
			}
		}(i)
	}
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-c.stopChannel:
		c.logger.Info("Stop requested, waiting for workers")
		cancel()
		<-done
	case <-done:
		c.logger.Warn("All workers exited, delivery channel closed")
	}
	c.logger.Info("Consumer stopped")
	return nil
}

func (c *Consumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChannel) })
}

// Processor разбирает одно сообщение и прогоняет его через пайплайн.
type Processor struct {
	logger  *zap.Logger
	router  EventRouter
	timeout time.Duration
}

// NewProcessor создает обработчик. timeout ограничивает обработку одного сообщения.
func NewProcessor(logger *zap.Logger, router EventRouter, timeout time.Duration) *Processor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Processor{
		logger:  logger.Named("processor"),
		router:  router,
		timeout: timeout,
	}
}

// ProcessMessage acks successful and no-op events and nacks (without requeue) everything else.
func (p *Processor) ProcessMessage(ctx context.Context, d amqp.Delivery) {
	log := p.logger.With(zap.Uint64("delivery_tag", d.DeliveryTag), zap.String("message_id", d.MessageId))

	var ev models.ChangeEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		log.Error("Failed to decode change event", zap.Error(err), zap.ByteString("body", d.Body))
		p.nack(log, d)
		return
	}

	processCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.router.Route(processCtx, ev)
	if err != nil {
		log.Error("Change event processing failed",
			zap.Error(err),
			zap.String("kind", pipeline.ErrorKind(err)),
			zap.String("variant", string(out.Variant)),
		)
		p.nack(log, d)
		return
	}

	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("Ack failed", zap.Error(ackErr))
		return
	}
	log.Info("Change event processed",
		zap.String("variant", string(out.Variant)),
		zap.Bool("triggered", out.Triggered),
		zap.String("message", out.Message),
	)
}

func (p *Processor) nack(log *zap.Logger, d amqp.Delivery) {
	if err := d.Nack(false, false); err != nil {
		log.Error("Nack failed", zap.Error(err))
	}
}
