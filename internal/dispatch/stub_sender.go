package dispatch

import (
	"context"
	"encoding/json"
	"net/http"

	"order-notifier/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StubSender только логирует сообщения. Для локальной разработки без Firebase.
type StubSender struct {
	logger *zap.Logger
}

func NewStubSender(logger *zap.Logger) *StubSender {
	return &StubSender{logger: logger.Named("stub_fcm_sender")}
}

func (s *StubSender) Name() string { return SenderStub }

func (s *StubSender) Send(_ context.Context, auth models.DispatchAuth, msg models.NotificationMessage) models.DispatchResult {
	s.logger.Info("STUB: FCM send",
		zap.String("project_id", auth.ProjectID),
		zap.String("token", msg.TargetToken),
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.Any("data", msg.Data),
	)
	raw, _ := json.Marshal(map[string]string{
		"name": "projects/" + auth.ProjectID + "/messages/stub-" + uuid.NewString(),
	})
	return models.DispatchResult{Token: msg.TargetToken, OK: true, Status: http.StatusOK, Body: string(raw)}
}
