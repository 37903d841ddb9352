package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/api/dto"
)

// FundHandler обработчик каталога фондов
type FundHandler struct {
	service FundService
	logger  *logrus.Logger
}

// NewFundHandler создает новый обработчик каталога
func NewFundHandler(service FundService, logger *logrus.Logger) *FundHandler {
	return &FundHandler{
		service: service,
		logger:  logger,
	}
}

// ListFunds возвращает все фонды каталога
// @Summary List funds
// @Description Returns the full fund catalog
// @Tags fondos
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Failure 500 {object} apierr.Body
// @Router /fondos [get]
func (h *FundHandler) ListFunds(c *gin.Context) {
	funds, err := h.service.ListFunds(c.Request.Context())
	if err != nil {
		respondError(c, err, "list funds", h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.Funds(funds))
}
