package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"order-notifier/internal/pipeline"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var _ pipeline.StaleTokenReporter = (*StaleTokenPublisher)(nil)

// StaleTokensMessage - сообщение в очередь очистки токенов.
type StaleTokensMessage struct {
	Tokens     []string  `json:"tokens"`
	Reason     string    `json:"reason"`
	ReportedAt time.Time `json:"reported_at"`
}

// ReasonUnregistered - FCM ответил, что токен больше не зарегистрирован.
const ReasonUnregistered = "unregistered"

// StaleTokenPublisher публикует устаревшие FCM токены в очередь очистки.
type StaleTokenPublisher struct {
	conn      *amqp.Connection
	logger    *zap.Logger
	queueName string
}

// NewStaleTokenPublisher создает publisher и проверяет очередь.
func NewStaleTokenPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (*StaleTokenPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection is nil")
	}
	p := &StaleTokenPublisher{
		conn:      conn,
		logger:    logger.Named("stale_token_publisher").With(zap.String("queue", queueName)),
		queueName: queueName,
	}
	if err := p.verifyQueue(); err != nil {
		return nil, fmt.Errorf("failed to verify queue %s on init: %w", queueName, err)
	}
	return p, nil
}

func (p *StaleTokenPublisher) verifyQueue() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", p.queueName, err)
	}
	return nil
}

// EncodeStaleTokens builds the queue payload for tokens.
func EncodeStaleTokens(tokens []string, now time.Time) ([]byte, error) {
	return json.Marshal(StaleTokensMessage{
		Tokens:     tokens,
		Reason:     ReasonUnregistered,
		ReportedAt: now.UTC(),
	})
}

// ReportStaleTokens публикует одно сообщение со всеми токенами.
func (p *StaleTokenPublisher) ReportStaleTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	now := time.Now()
	body, err := EncodeStaleTokens(tokens, now)
	if err != nil {
		return fmt.Errorf("failed to encode stale tokens: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx,
		"",          // default exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    now,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish stale tokens: %w", err)
	}

	prefixes := make([]string, 0, len(tokens))
	for _, t := range tokens {
		prefixes = append(prefixes, tokenPrefix(t))
	}
	p.logger.Info("Stale FCM tokens published", zap.Strings("token_prefixes", prefixes))
	return nil
}

// tokenPrefix возвращает начало токена для логирования.
func tokenPrefix(token string) string {
	const prefixLen = 10
	if len(token) < prefixLen {
		return token
	}
	return token[:prefixLen] + "..."
}
