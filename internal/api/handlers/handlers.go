package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/api/apierr"
	"gw-fund-subscriptions/internal/service"
	"gw-fund-subscriptions/internal/storages"
)

// FundService операции сервисного слоя, доступные обработчикам
type FundService interface {
	ListFunds(ctx context.Context) ([]storages.Fund, error)
	Subscribe(ctx context.Context, req *service.SubscribeRequest) (*service.SubscriptionResult, error)
	RecordTransaction(ctx context.Context, req *service.TransactionRequest) (*storages.Transaction, error)
	ListTransactions(ctx context.Context, user string) ([]storages.Transaction, error)
}

// respondError отправляет ответ об ошибке с безопасным сообщением
func respondError(c *gin.Context, err error, op string, logger *logrus.Logger) {
	status, body := apierr.Resolve(err, op, logger)
	c.JSON(status, body)
}
