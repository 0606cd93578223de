package recipient

import (
	"context"
	"errors"
	"fmt"

	"order-notifier/internal/models"

	"go.uber.org/zap"
)

// RoleStaff - роль сотрудников, получающих уведомления о новых заказах.
const RoleStaff = "staff"

// Audience определяет, кому адресовано уведомление.
type Audience string

const (
	// AudienceStaff - широковещательная рассылка всем сотрудникам.
	AudienceStaff Audience = "staff"
	// AudienceCustomer - единственный получатель, автор заказа.
	AudienceCustomer Audience = "customer"
)

// Broadcast reports whether the audience may have many recipients.
func (a Audience) Broadcast() bool {
	return a == AudienceStaff
}

// UserStore - read-only доступ к таблице пользователей.
type UserStore interface {
	// ListTokensByRole возвращает токены всех пользователей с указанной ролью.
	ListTokensByRole(ctx context.Context, role string) ([]models.UserToken, error)
	// GetTokenByUserID возвращает токен пользователя или models.ErrUserNotFound.
	GetTokenByUserID(ctx context.Context, userID string) (models.UserToken, error)
}

// Resolver находит получателей для уведомления.
type Resolver struct {
	store  UserStore
	logger *zap.Logger
}

// NewResolver создает Resolver поверх хранилища пользователей.
func NewResolver(store UserStore, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger.Named("recipient_resolver"),
	}
}

// Resolve returns the recipients of audience for the given order.
func (r *Resolver) Resolve(ctx context.Context, audience Audience, order models.OrderRecord) ([]models.Recipient, error) {
	switch audience {
	case AudienceStaff:
		return r.resolveStaff(ctx)
	case AudienceCustomer:
		rcpt, err := r.resolveCustomer(ctx, order.UserID.String())
		if err != nil {
			return nil, err
		}
		return []models.Recipient{rcpt}, nil
	default:
		return nil, fmt.Errorf("unknown audience %q", audience)
	}
}

func (r *Resolver) resolveStaff(ctx context.Context) ([]models.Recipient, error) {
	rows, err := r.store.ListTokensByRole(ctx, RoleStaff)
	if err != nil {
		r.logger.Error("Failed to fetch staff FCM tokens", zap.Error(err))
		return nil, fmt.Errorf("%w: Failed to fetch staff FCM tokens: %v", models.ErrRecipientLookupFailed, err)
	}

	recipients := make([]models.Recipient, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if row.FCMToken == "" {
			skipped++
			continue
		}
		recipients = append(recipients, models.Recipient{UserID: row.UserID, DeviceToken: row.FCMToken})
	}
	if skipped > 0 {
		r.logger.Warn("Skipping staff members without FCM token", zap.Int("skipped", skipped), zap.Int("total", len(rows)))
	}

	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: No staff members found with valid FCM tokens", models.ErrRecipientNotFound)
	}

	r.logger.Debug("Staff recipients resolved", zap.Int("count", len(recipients)))
	return recipients, nil
}

func (r *Resolver) resolveCustomer(ctx context.Context, userID string) (models.Recipient, error) {
	log := r.logger.With(zap.String("user_id", userID))
	if userID == "" {
		return models.Recipient{}, fmt.Errorf("%w: order has no user_id", models.ErrRecipientNotFound)
	}

	row, err := r.store.GetTokenByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			log.Warn("Customer not found")
			return models.Recipient{}, fmt.Errorf("%w: Could not find user FCM token", models.ErrRecipientNotFound)
		}
		log.Error("Failed to fetch customer FCM token", zap.Error(err))
		return models.Recipient{}, fmt.Errorf("%w: %v", models.ErrRecipientLookupFailed, err)
	}
	if row.FCMToken == "" {
		log.Warn("Customer has no FCM token")
		return models.Recipient{}, fmt.Errorf("%w: Could not find user FCM token", models.ErrRecipientNotFound)
	}

	return models.Recipient{UserID: userID, DeviceToken: row.FCMToken}, nil
}
