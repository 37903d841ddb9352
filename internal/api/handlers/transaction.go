package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/api/apierr"
	"gw-fund-subscriptions/internal/api/dto"
	"gw-fund-subscriptions/internal/service"
)

// TransactionHandler обработчик журнала операций
type TransactionHandler struct {
	service FundService
	logger  *logrus.Logger
}

// NewTransactionHandler создает новый обработчик журнала
func NewTransactionHandler(service FundService, logger *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		logger:  logger,
	}
}

// RecordTransaction записывает операцию по позиции
// @Summary Record a transaction
// @Description Appends a ledger entry; deposits accumulate on the position, cancellations refund the balance
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body service.TransactionRequest true "Transaction data"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} apierr.Body
// @Failure 404 {object} apierr.Body
// @Failure 409 {object} apierr.Body
// @Failure 500 {object} apierr.Body
// @Router /transactions [post]
func (h *TransactionHandler) RecordTransaction(c *gin.Context) {
	var req service.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debugf("Invalid transaction body: %v", err)
		respondError(c, apierr.Invalid("Invalid request body"), "record transaction", h.logger)
		return
	}

	entry, err := h.service.RecordTransaction(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "record transaction", h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.Recorded(entry))
}

// ListTransactions возвращает журнал операций пользователя
// @Summary List user transactions
// @Tags transactions
// @Produce json
// @Param user query string true "User cedula"
// @Success 200 {array} dto.Transaction
// @Failure 400 {object} apierr.Body
// @Failure 500 {object} apierr.Body
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	entries, err := h.service.ListTransactions(c.Request.Context(), c.Query("user"))
	if err != nil {
		respondError(c, err, "list transactions", h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.Transactions(entries))
}
