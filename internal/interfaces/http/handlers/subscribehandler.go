package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guardino-io/guardino/internal/application/subscription/usecases"
	"github.com/guardino-io/guardino/internal/shared/errors"
	"github.com/guardino-io/guardino/internal/shared/logger"
)

type SubscribeHandler struct {
	aggregateUseCase *usecases.AggregateSubscriptionUseCase
	logger           logger.Interface
}

func NewSubscribeHandler(aggregateUC *usecases.AggregateSubscriptionUseCase, logger logger.Interface) *SubscribeHandler {
	return &SubscribeHandler{
		aggregateUseCase: aggregateUC,
		logger:           logger,
	}
}

// Fetch serves the merged subscription document. VPN clients expect a bare
// text/plain base64 body, so errors are plain text too, never the JSON
// envelope.
func (h *SubscribeHandler) Fetch(c *gin.Context) {
	cmd := usecases.AggregateSubscriptionCommand{
		Token:     c.Param("token"),
		UserAgent: c.GetHeader("User-Agent"),
	}

	result, err := h.aggregateUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		if errors.IsNotFoundError(err) {
			c.String(http.StatusNotFound, "subscription not found")
			return
		}
		h.logger.Errorw("failed to aggregate subscription", "error", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, result.Payload)
}
