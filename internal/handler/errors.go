package handler

import (
	"errors"
	"net/http"

	"order-notifier/internal/middleware"
	"order-notifier/internal/models"
	"order-notifier/internal/pipeline"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor сопоставляет ошибку пайплайна HTTP статусу.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidPayload),
		errors.Is(err, models.ErrMissingPriorState),
		errors.Is(err, models.ErrInvalidRecord):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAmbiguousTrigger):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrRecipientNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrRecipientLookupFailed):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrCredentialUnavailable),
		errors.Is(err, models.ErrCredentialExchangeFailed),
		errors.Is(err, models.ErrNotificationSendFailed),
		errors.Is(err, models.ErrPartialOrTotalSendFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleError отдает {error} без внутренних деталей для неизвестных ошибок.
func (h *NotificationHandler) handleError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}

	fields := []zap.Field{
		zap.Error(err),
		zap.String("kind", pipeline.ErrorKind(err)),
		zap.Int("status", status),
		zap.String("request_id", middleware.RequestID(c)),
	}
	var partial *models.PartialSendFailureError
	if errors.As(err, &partial) {
		fields = append(fields, zap.Int("failed", partial.Failed), zap.Int("total", partial.Total))
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Notification pipeline failed", fields...)
	} else {
		h.logger.Warn("Notification pipeline rejected event", fields...)
	}

	c.JSON(status, models.ErrorResponse{Error: msg})
}
