package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"order-notifier/internal/config"
	"order-notifier/internal/models"
	"order-notifier/internal/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noopProcessor struct{}

func (noopProcessor) Handle(_ context.Context, v pipeline.Variant, _ models.ChangeEvent) (pipeline.Outcome, error) {
	return pipeline.Outcome{Variant: v.Name(), Message: v.NoopMessage}, nil
}

func (noopProcessor) Route(context.Context, models.ChangeEvent) (pipeline.Outcome, error) {
	return pipeline.Outcome{Message: pipeline.MessageNoNotification}, nil
}

// ginprometheus регистрирует коллекторы глобально, поэтому роутер один на тест.
func TestNewRouter_RecordsRequestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newRouter(config.WebhookConfig{Secret: "webhook-secret-with-at-least-32-characters"}, noopProcessor{}, zap.NewNop())

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusUnauthorized, serve(http.MethodPost, "/functions/v1/new-order", `{"record":null}`).Code)
	require.Equal(t, http.StatusOK, serve(http.MethodGet, "/health", "").Code)

	rec := serve(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code, "metrics must stay outside webhook auth")
	raw, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	var webhookLine, healthLine string
	for _, line := range strings.Split(string(raw), "\n") {
		if !strings.HasPrefix(line, "gin_requests_total{") {
			continue
		}
		switch {
		case strings.Contains(line, `url="/functions/v1/new-order"`):
			webhookLine = line
		case strings.Contains(line, `url="/health"`):
			healthLine = line
		}
	}
	require.NotEmpty(t, webhookLine, "webhook requests are not counted")
	assert.Contains(t, webhookLine, `code="401"`)
	assert.NotEmpty(t, healthLine, "health requests are not counted")
}
