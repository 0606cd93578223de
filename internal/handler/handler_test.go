package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"order-notifier/internal/handler"
	"order-notifier/internal/models"
	"order-notifier/internal/pipeline"
	"order-notifier/internal/trigger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type processorMock struct {
	mock.Mock
}

func (m *processorMock) Handle(ctx context.Context, v pipeline.Variant, ev models.ChangeEvent) (pipeline.Outcome, error) {
	args := m.Called(ctx, v.Name(), ev)
	return args.Get(0).(pipeline.Outcome), args.Error(1)
}

func (m *processorMock) Route(ctx context.Context, ev models.ChangeEvent) (pipeline.Outcome, error) {
	args := m.Called(ctx, ev)
	return args.Get(0).(pipeline.Outcome), args.Error(1)
}

func newRouter(p handler.EventProcessor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.RegisterHealth(r)
	handler.NewNotificationHandler(p, zap.NewNop()).RegisterRoutes(r, nil)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const completionBody = `{"record":{"id":"o1","user_id":"u1","status":"completed","total_price":250},"old_record":{"id":"o1","user_id":"u1","status":"pending","total_price":250}}`

func TestNotificationHandler_Variants(t *testing.T) {
	cases := []struct {
		path    string
		variant trigger.Variant
	}{
		{"/functions/v1/new-order", trigger.VariantOrderCreated},
		{"/functions/v1/order-completion", trigger.VariantOrderCompleted},
		{"/functions/v1/order-cancelled", trigger.VariantOrderCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			p := &processorMock{}
			p.On("Handle", mock.Anything, tc.variant, mock.AnythingOfType("models.ChangeEvent")).
				Return(pipeline.Outcome{Variant: tc.variant, Message: "ok"}, nil).Once()

			rec := post(newRouter(p), tc.path, completionBody)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"message":"ok","variant":%q}`, tc.variant), rec.Body.String())
			p.AssertExpectations(t)
		})
	}
}

func TestNotificationHandler_SuccessIncludesProviderResponse(t *testing.T) {
	p := &processorMock{}
	p.On("Handle", mock.Anything, trigger.VariantOrderCompleted, mock.MatchedBy(func(ev models.ChangeEvent) bool {
		return ev.Record != nil && ev.Record.ID == "o1" && ev.Record.TotalPrice.String() == "250" &&
			ev.OldRecord != nil && ev.OldRecord.Status == models.OrderStatusPending
	})).Return(pipeline.Outcome{
		Variant:   trigger.VariantOrderCompleted,
		Triggered: true,
		Message:   pipeline.MessageCustomerNotified,
		Sent:      1,
		Response:  []byte(`{"name":"projects/p1/messages/1"}`),
	}, nil).Once()

	rec := post(newRouter(p), "/functions/v1/order-completion", completionBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"message":"Notification sent successfully",
		"variant":"order_completed",
		"sent":1,
		"response":{"name":"projects/p1/messages/1"}
	}`, rec.Body.String())
	p.AssertExpectations(t)
}

func TestNotificationHandler_InvalidBody(t *testing.T) {
	p := &processorMock{}

	rec := post(newRouter(p), "/events/orders", `{"record":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid change event payload")
	p.AssertNotCalled(t, "Route", mock.Anything, mock.Anything)
}

func TestNotificationHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"missing prior state", fmt.Errorf("order_completed: %w", models.ErrMissingPriorState), http.StatusBadRequest, ""},
		{"invalid payload", models.ErrInvalidPayload, http.StatusBadRequest, ""},
		{"invalid record", fmt.Errorf("%w: missing total_price", models.ErrInvalidRecord), http.StatusBadRequest, ""},
		{"ambiguous", models.ErrAmbiguousTrigger, http.StatusUnprocessableEntity, ""},
		{"not found", fmt.Errorf("%w: Could not find user FCM token", models.ErrRecipientNotFound), http.StatusNotFound, "Could not find user FCM token"},
		{"lookup failed", fmt.Errorf("%w: connection refused", models.ErrRecipientLookupFailed), http.StatusServiceUnavailable, ""},
		{"credential unavailable", models.ErrCredentialUnavailable, http.StatusBadGateway, ""},
		{"credential exchange", models.ErrCredentialExchangeFailed, http.StatusBadGateway, ""},
		{"send failed", &models.SendFailedError{Status: 404, Body: "UNREGISTERED"}, http.StatusBadGateway, "Failed to send notification: UNREGISTERED"},
		{"partial", &models.PartialSendFailureError{Failed: 2, Total: 5}, http.StatusBadGateway, "Failed to send some notifications: 2"},
		{"unknown", fmt.Errorf("boom at line 42"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &processorMock{}
			p.On("Route", mock.Anything, mock.Anything).Return(pipeline.Outcome{}, tc.err).Once()

			rec := post(newRouter(p), "/events/orders", completionBody)

			assert.Equal(t, tc.status, rec.Code)
			if tc.body != "" {
				assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.body), rec.Body.String())
			}
			assert.NotContains(t, rec.Body.String(), "goroutine")
		})
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&processorMock{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
