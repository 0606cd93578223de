package handler

import (
	"context"
	"net/http"

	"order-notifier/internal/middleware"
	"order-notifier/internal/models"
	"order-notifier/internal/pipeline"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventProcessor - пайплайн уведомлений, как его видит HTTP слой.
type EventProcessor interface {
	Handle(ctx context.Context, v pipeline.Variant, ev models.ChangeEvent) (pipeline.Outcome, error)
	Route(ctx context.Context, ev models.ChangeEvent) (pipeline.Outcome, error)
}

// NotificationHandler принимает вебхуки изменений заказов.
type NotificationHandler struct {
	processor EventProcessor
	logger    *zap.Logger
}

func NewNotificationHandler(processor EventProcessor, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		processor: processor,
		logger:    logger.Named("notification_handler"),
	}
}

// RegisterRoutes регистрирует вебхуки. auth может быть nil (аутентификация выключена).
func (h *NotificationHandler) RegisterRoutes(router gin.IRouter, auth gin.HandlerFunc) {
	functions := router.Group("/functions/v1")
	events := router.Group("/events")
	if auth != nil {
		functions.Use(auth)
		events.Use(auth)
	}

	functions.POST("/new-order", h.variantHandler(pipeline.OrderCreated))
	functions.POST("/order-completion", h.variantHandler(pipeline.OrderCompleted))
	functions.POST("/order-cancelled", h.variantHandler(pipeline.OrderCancelled))

	events.POST("/orders", h.routeEvent)
}

// RegisterHealth добавляет GET /health.
func RegisterHealth(router gin.IRouter) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func (h *NotificationHandler) variantHandler(v pipeline.Variant) gin.HandlerFunc {
	return func(c *gin.Context) {
		ev, ok := h.bindEvent(c)
		if !ok {
			return
		}
		out, err := h.processor.Handle(c.Request.Context(), v, ev)
		h.respond(c, out, err)
	}
}

func (h *NotificationHandler) routeEvent(c *gin.Context) {
	ev, ok := h.bindEvent(c)
	if !ok {
		return
	}
	out, err := h.processor.Route(c.Request.Context(), ev)
	h.respond(c, out, err)
}

func (h *NotificationHandler) bindEvent(c *gin.Context) (models.ChangeEvent, bool) {
	var ev models.ChangeEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		h.logger.Warn("Invalid change event body",
			zap.Error(err),
			zap.String("request_id", middleware.RequestID(c)),
		)
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: models.ErrInvalidPayload.Error() + ": " + err.Error()})
		return ev, false
	}
	return ev, true
}

func (h *NotificationHandler) respond(c *gin.Context, out pipeline.Outcome, err error) {
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{
		Message:  out.Message,
		Variant:  string(out.Variant),
		Sent:     out.Sent,
		Response: out.Response,
	})
}
