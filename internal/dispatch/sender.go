package dispatch

import (
	"context"

	"order-notifier/internal/models"
)

// Sender отправляет одно сообщение одному устройству.
// Ошибки не возвращаются: любой исход описывается DispatchResult.
type Sender interface {
	Send(ctx context.Context, auth models.DispatchAuth, msg models.NotificationMessage) models.DispatchResult
	Name() string
}

// Имена бэкендов отправки (config FCM_SENDER).
const (
	SenderREST = "rest"
	SenderSDK  = "sdk"
	SenderStub = "stub"
)
