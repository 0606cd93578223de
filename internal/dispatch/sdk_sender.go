package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"order-notifier/internal/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	fcm "firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// SDKSender отправляет сообщения через Firebase Admin SDK.
// Клиент пересоздается только при смене access token или проекта.
type SDKSender struct {
	base    http.RoundTripper
	timeout time.Duration
	logger  *zap.Logger

	mu        sync.Mutex
	clientKey string
	client    *fcm.Client
}

// NewSDKSender создает отправителя. nil base - http.DefaultTransport.
func NewSDKSender(base http.RoundTripper, timeout time.Duration, logger *zap.Logger) *SDKSender {
	if base == nil {
		base = http.DefaultTransport
	}
	return &SDKSender{
		base:    base,
		timeout: timeout,
		logger:  logger.Named("fcm_sdk_sender"),
	}
}

func (s *SDKSender) Name() string { return SenderSDK }

func (s *SDKSender) messagingClient(ctx context.Context, auth models.DispatchAuth) (*fcm.Client, error) {
	key := auth.ProjectID + "|" + auth.AccessToken.Value

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil && s.clientKey == key {
		return s.client, nil
	}

	hc := &http.Client{
		Timeout: s.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: auth.AccessToken.Value, TokenType: "Bearer"}),
			Base:   s.base,
		},
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: auth.ProjectID}, option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Firebase App: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения FCM Messaging client: %w", err)
	}
	s.client = client
	s.clientKey = key
	return client, nil
}

func (s *SDKSender) Send(ctx context.Context, auth models.DispatchAuth, msg models.NotificationMessage) models.DispatchResult {
	result := models.DispatchResult{Token: msg.TargetToken}

	client, err := s.messagingClient(ctx, auth)
	if err != nil {
		s.logger.Error("Failed to init Firebase messaging client", zap.Error(err))
		result.Body = err.Error()
		return result
	}

	name, err := client.Send(ctx, &fcm.Message{
		Token: msg.TargetToken,
		Notification: &fcm.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &fcm.AndroidConfig{
			Priority: "high",
		},
	})
	if err != nil {
		if resp := errorutils.HTTPResponse(err); resp != nil {
			result.Status = resp.StatusCode
		}
		result.Body = err.Error()
		result.Unregistered = fcm.IsUnregistered(err)
		s.logger.Warn("FCM send failed",
			zap.Int("status", result.Status),
			zap.Error(err),
			zap.Bool("unregistered", result.Unregistered),
		)
		return result
	}

	raw, _ := json.Marshal(map[string]string{"name": name})
	result.OK = true
	result.Status = http.StatusOK
	result.Body = string(raw)
	return result
}
