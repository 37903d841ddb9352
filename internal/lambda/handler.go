// Package lambda адаптирует сервис подписок к событиям API Gateway proxy.
package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/api/apierr"
	"gw-fund-subscriptions/internal/api/dto"
	"gw-fund-subscriptions/internal/service"
	"gw-fund-subscriptions/internal/storages"
)

// FundService операции сервисного слоя, доступные Lambda функции
type FundService interface {
	ListFunds(ctx context.Context) ([]storages.Fund, error)
	Subscribe(ctx context.Context, req *service.SubscribeRequest) (*service.SubscriptionResult, error)
	RecordTransaction(ctx context.Context, req *service.TransactionRequest) (*storages.Transaction, error)
	ListTransactions(ctx context.Context, user string) ([]storages.Transaction, error)
}

// Handler обрабатывает события API Gateway
type Handler struct {
	service FundService
	logger  *logrus.Logger
}

// NewHandler создает новый Lambda обработчик
func NewHandler(service FundService, logger *logrus.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle маршрутизирует запрос по пути ресурса и HTTP методу
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	route := "/" + strings.Trim(routeOf(req), "/")

	h.logger.WithFields(logrus.Fields{
		"method":     req.HTTPMethod,
		"route":      route,
		"request_id": req.RequestContext.RequestID,
	}).Debug("Lambda request received")

	switch route {
	case "/fondos":
		if req.HTTPMethod == http.MethodGet {
			return h.listFunds(ctx)
		}
	case "/subscribe":
		if req.HTTPMethod == http.MethodPost {
			return h.subscribe(ctx, req)
		}
	case "/transactions":
		switch req.HTTPMethod {
		case http.MethodGet:
			return h.listTransactions(ctx, req)
		case http.MethodPost:
			return h.recordTransaction(ctx, req)
		}
	default:
		return respond(http.StatusNotFound, apierr.Body{Message: "Route not found"}), nil
	}

	return respond(http.StatusMethodNotAllowed, apierr.Body{Message: "Method not allowed"}), nil
}

// routeOf возвращает путь маршрута; для шаблонных ресурсов вроде /{proxy+} берется фактический путь
func routeOf(req events.APIGatewayProxyRequest) string {
	if req.Resource != "" && !strings.Contains(req.Resource, "{") {
		return req.Resource
	}
	if req.Path != "" {
		return req.Path
	}
	return req.Resource
}

func (h *Handler) listFunds(ctx context.Context) (events.APIGatewayProxyResponse, error) {
	funds, err := h.service.ListFunds(ctx)
	if err != nil {
		return h.failure(err, "list funds"), nil
	}
	return respond(http.StatusOK, dto.Funds(funds)), nil
}

func (h *Handler) subscribe(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var body service.SubscribeRequest
	if err := decodeBody(req, &body); err != nil {
		h.logger.Debugf("Invalid subscribe body: %v", err)
		return h.failure(apierr.Invalid("Cuerpo de la solicitud inválido"), "subscribe"), nil
	}

	result, err := h.service.Subscribe(ctx, &body)
	if err != nil {
		return h.failure(err, "subscribe"), nil
	}
	return respond(http.StatusOK, dto.Subscription(result)), nil
}

func (h *Handler) recordTransaction(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var body service.TransactionRequest
	if err := decodeBody(req, &body); err != nil {
		h.logger.Debugf("Invalid transaction body: %v", err)
		return h.failure(apierr.Invalid("Invalid request body"), "record transaction"), nil
	}

	entry, err := h.service.RecordTransaction(ctx, &body)
	if err != nil {
		return h.failure(err, "record transaction"), nil
	}
	return respond(http.StatusOK, dto.Recorded(entry)), nil
}

func (h *Handler) listTransactions(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	entries, err := h.service.ListTransactions(ctx, req.QueryStringParameters["user"])
	if err != nil {
		return h.failure(err, "list transactions"), nil
	}
	return respond(http.StatusOK, dto.Transactions(entries)), nil
}

func (h *Handler) failure(err error, op string) events.APIGatewayProxyResponse {
	status, body := apierr.Resolve(err, op, h.logger)
	return respond(status, body)
}

// decodeBody разбирает тело запроса; пустое тело считается пустым объектом
func decodeBody(req events.APIGatewayProxyRequest, v interface{}) error {
	raw := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return err
		}
		raw = string(decoded)
	}

	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), v)
}

func respond(status int, body interface{}) events.APIGatewayProxyResponse {
	data, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"message":"` + apierr.MessageInternal + `"}`)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(data),
	}
}
