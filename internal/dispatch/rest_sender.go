package dispatch

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"order-notifier/internal/models"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	fcmv1 "google.golang.org/api/fcm/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultFCMEndpoint - базовый адрес FCM HTTP v1.
const DefaultFCMEndpoint = "https://fcm.googleapis.com/"

// RESTSender отправляет сообщения через FCM HTTP v1 (messages:send).
type RESTSender struct {
	endpoint string
	base     http.RoundTripper
	timeout  time.Duration
	logger   *zap.Logger
}

// NewRESTSender создает отправителя. Пустой endpoint означает боевой FCM, nil base - http.DefaultTransport.
func NewRESTSender(endpoint string, base http.RoundTripper, timeout time.Duration, logger *zap.Logger) *RESTSender {
	if endpoint == "" {
		endpoint = DefaultFCMEndpoint
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	if base == nil {
		base = http.DefaultTransport
	}
	return &RESTSender{
		endpoint: endpoint,
		base:     base,
		timeout:  timeout,
		logger:   logger.Named("fcm_rest_sender"),
	}
}

func (s *RESTSender) Name() string { return SenderREST }

func (s *RESTSender) Send(ctx context.Context, auth models.DispatchAuth, msg models.NotificationMessage) models.DispatchResult {
	result := models.DispatchResult{Token: msg.TargetToken}

	client := &http.Client{
		Timeout: s.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: auth.AccessToken.Value, TokenType: "Bearer"}),
			Base:   s.base,
		},
	}
	svc, err := fcmv1.NewService(ctx, option.WithHTTPClient(client), option.WithEndpoint(s.endpoint))
	if err != nil {
		s.logger.Error("Failed to create FCM service", zap.Error(err))
		result.Body = err.Error()
		return result
	}

	req := &fcmv1.SendMessageRequest{
		Message: &fcmv1.Message{
			Token: msg.TargetToken,
			Notification: &fcmv1.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
			Android: &fcmv1.AndroidConfig{
				Priority: "HIGH",
			},
		},
	}

	resp, err := svc.Projects.Messages.Send("projects/"+auth.ProjectID, req).Context(ctx).Do()
	if err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) {
			result.Status = gErr.Code
			result.Body = gErr.Body
			if result.Body == "" {
				result.Body = gErr.Message
			}
			result.Unregistered = isUnregistered(gErr.Code, gErr.Body)
		} else {
			result.Body = err.Error()
		}
		s.logger.Warn("FCM send failed",
			zap.Int("status", result.Status),
			zap.String("body", result.Body),
			zap.Bool("unregistered", result.Unregistered),
		)
		return result
	}

	result.OK = true
	result.Status = resp.HTTPStatusCode
	if result.Status == 0 {
		result.Status = http.StatusOK
	}
	if raw, err := resp.MarshalJSON(); err == nil {
		result.Body = string(raw)
	}
	s.logger.Debug("FCM message sent", zap.String("name", resp.Name))
	return result
}

// isUnregistered - токен устарел или удален с устройства, его стоит убрать из базы.
func isUnregistered(status int, body string) bool {
	if status == http.StatusNotFound {
		return true
	}
	return strings.Contains(body, "UNREGISTERED")
}
