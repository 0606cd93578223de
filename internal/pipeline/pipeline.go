// Package pipeline runs one order change event through
// trigger → recipients → composer → credential → dispatch → aggregation.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"order-notifier/internal/composer"
	"order-notifier/internal/dispatch"
	"order-notifier/internal/models"
	"order-notifier/internal/recipient"
	"order-notifier/internal/trigger"

	"go.uber.org/zap"
)

// RecipientResolver находит получателей уведомления.
type RecipientResolver interface {
	Resolve(ctx context.Context, audience recipient.Audience, order models.OrderRecord) ([]models.Recipient, error)
}

// CredentialSource загружает ключ сервис-аккаунта.
type CredentialSource interface {
	Load(ctx context.Context) (models.ServiceCredential, error)
}

// TokenProvider обменивает ключ на access token.
type TokenProvider interface {
	AccessToken(ctx context.Context, cred models.ServiceCredential) (models.AccessToken, error)
}

// MessageDispatcher отправляет сообщения и возвращает результат по каждому.
type MessageDispatcher interface {
	Dispatch(ctx context.Context, auth models.DispatchAuth, msgs []models.NotificationMessage) []models.DispatchResult
}

// StaleTokenReporter сообщает о токенах, которые FCM признал недействительными.
type StaleTokenReporter interface {
	ReportStaleTokens(ctx context.Context, tokens []string) error
}

// Outcome - итог обработки события.
type Outcome struct {
	Variant   trigger.Variant
	Triggered bool
	Message   string
	Sent      int
	// Response - тело ответа провайдера для одиночной отправки.
	Response json.RawMessage
}

// Pipeline - общий пайплайн для всех вариантов уведомлений.
type Pipeline struct {
	resolver   RecipientResolver
	creds      CredentialSource
	tokens     TokenProvider
	dispatcher MessageDispatcher
	reporter   StaleTokenReporter // Может быть nil
	variants   []Variant
	logger     *zap.Logger
}

// NewPipeline собирает пайплайн. reporter может быть nil.
func NewPipeline(
	resolver RecipientResolver,
	creds CredentialSource,
	tokens TokenProvider,
	dispatcher MessageDispatcher,
	reporter StaleTokenReporter,
	logger *zap.Logger,
) *Pipeline {
	if reporter == nil {
		logger.Warn("StaleTokenReporter не задан, устаревшие токены не будут передаваться на очистку")
	}
	return &Pipeline{
		resolver:   resolver,
		creds:      creds,
		tokens:     tokens,
		dispatcher: dispatcher,
		reporter:   reporter,
		variants:   Variants(),
		logger:     logger.Named("pipeline"),
	}
}

// Handle runs the event through a fixed variant.
// A status variant called without old_record fails with ErrMissingPriorState.
func (p *Pipeline) Handle(ctx context.Context, v Variant, ev models.ChangeEvent) (Outcome, error) {
	start := time.Now()
	fired, err := v.Rule.Evaluate(ev)
	if err != nil {
		return p.finish(v.Name(), start, Outcome{Variant: v.Name()}, err)
	}
	if !fired {
		return p.finish(v.Name(), start, Outcome{Variant: v.Name(), Message: v.NoopMessage}, nil)
	}
	out, err := p.run(ctx, v, *ev.Record)
	return p.finish(v.Name(), start, out, err)
}

// Route selects the variant from the event itself and runs it.
func (p *Pipeline) Route(ctx context.Context, ev models.ChangeEvent) (Outcome, error) {
	start := time.Now()
	rules := make([]trigger.Rule, 0, len(p.variants))
	for _, v := range p.variants {
		rules = append(rules, v.Rule)
	}

	rule, ok, err := trigger.Select(ev, rules...)
	if err != nil {
		return p.finish(routedVariant, start, Outcome{}, err)
	}
	if !ok {
		return p.finish(routedVariant, start, Outcome{Message: MessageNoNotification}, nil)
	}

	v, _ := Lookup(rule.Variant)
	out, err := p.run(ctx, v, *ev.Record)
	return p.finish(v.Name(), start, out, err)
}

func (p *Pipeline) run(ctx context.Context, v Variant, order models.OrderRecord) (Outcome, error) {
	log := p.logger.With(zap.String("variant", string(v.Name())), zap.String("order_id", order.ID.String()))
	out := Outcome{Variant: v.Name(), Triggered: true}

	if err := v.Template.Validate(order); err != nil {
		log.Warn("Order record is not usable for notification", zap.Error(err))
		return out, err
	}

	recipients, err := p.resolver.Resolve(ctx, v.Audience, order)
	if err != nil {
		return out, err
	}

	msgs, err := composer.Compose(v.Template, recipients, order)
	if err != nil {
		return out, err
	}
	if len(msgs) == 0 {
		return out, fmt.Errorf("%w: no recipient with a device token", models.ErrRecipientNotFound)
	}

	cred, err := p.creds.Load(ctx)
	if err != nil {
		log.Error("Service credential unavailable", zap.Error(err))
		return out, err
	}
	token, err := p.tokens.AccessToken(ctx, cred)
	if err != nil {
		return out, err
	}

	auth := models.DispatchAuth{ProjectID: cred.ProjectID, AccessToken: token}
	results := p.dispatcher.Dispatch(ctx, auth, msgs)
	for _, r := range results {
		notificationsSentTotal.WithLabelValues(string(v.Name()), resultLabel(r.OK)).Inc()
	}

	p.reportStale(ctx, log, results)

	broadcast := v.Audience.Broadcast()
	if err := dispatch.Aggregate(results, broadcast); err != nil {
		log.Error("Notification dispatch failed", zap.Error(err), zap.Int("messages", len(msgs)))
		return out, err
	}

	out.Message = v.SuccessMessage
	out.Sent = len(results)
	if !broadcast && len(results) == 1 && json.Valid([]byte(results[0].Body)) {
		out.Response = json.RawMessage(results[0].Body)
	}
	log.Info("Notifications sent", zap.Int("count", out.Sent))
	return out, nil
}

func (p *Pipeline) reportStale(ctx context.Context, log *zap.Logger, results []models.DispatchResult) {
	stale := dispatch.UnregisteredTokens(results)
	if len(stale) == 0 || p.reporter == nil {
		return
	}
	if err := p.reporter.ReportStaleTokens(ctx, stale); err != nil {
		log.Warn("Failed to report stale FCM tokens", zap.Error(err), zap.Int("count", len(stale)))
	}
}

func (p *Pipeline) finish(variant trigger.Variant, start time.Time, out Outcome, err error) (Outcome, error) {
	name := string(variant)
	pipelineDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		eventsTotal.WithLabelValues(name, "error").Inc()
		failuresTotal.WithLabelValues(name, ErrorKind(err)).Inc()
	case out.Triggered:
		eventsTotal.WithLabelValues(name, "sent").Inc()
	default:
		eventsTotal.WithLabelValues(name, "noop").Inc()
	}
	return out, err
}

func resultLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

// ErrorKind returns a stable label for the pipeline error kind.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, models.ErrMissingPriorState):
		return "missing_prior_state"
	case errors.Is(err, models.ErrAmbiguousTrigger):
		return "ambiguous_trigger"
	case errors.Is(err, models.ErrInvalidRecord):
		return "invalid_record"
	case errors.Is(err, models.ErrRecipientLookupFailed):
		return "recipient_lookup_failed"
	case errors.Is(err, models.ErrRecipientNotFound):
		return "recipient_not_found"
	case errors.Is(err, models.ErrCredentialUnavailable):
		return "credential_unavailable"
	case errors.Is(err, models.ErrCredentialExchangeFailed):
		return "credential_exchange_failed"
	case errors.Is(err, models.ErrNotificationSendFailed):
		return "send_failed"
	case errors.Is(err, models.ErrPartialOrTotalSendFailure):
		return "partial_send_failure"
	default:
		return "internal"
	}
}
