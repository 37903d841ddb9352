package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/api/apierr"
	"gw-fund-subscriptions/internal/api/dto"
	"gw-fund-subscriptions/internal/service"
)

// SubscriptionHandler обработчик подписки на фонды
type SubscriptionHandler struct {
	service FundService
	logger  *logrus.Logger
}

// NewSubscriptionHandler создает новый обработчик подписки
func NewSubscriptionHandler(service FundService, logger *logrus.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
		logger:  logger,
	}
}

// Subscribe подписывает пользователя на фонд
// @Summary Subscribe to a fund
// @Description Creates the user on first contact, checks the balance against the fund minimum and opens a position
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body service.SubscribeRequest true "Subscription data"
// @Success 200 {object} dto.SubscribeResponse
// @Failure 400 {object} apierr.Body
// @Failure 404 {object} apierr.Body
// @Failure 409 {object} apierr.Body
// @Failure 500 {object} apierr.Body
// @Router /subscribe [post]
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req service.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debugf("Invalid subscribe body: %v", err)
		respondError(c, apierr.Invalid("Cuerpo de la solicitud inválido"), "subscribe", h.logger)
		return
	}

	result, err := h.service.Subscribe(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "subscribe", h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.Subscription(result))
}
