// Package apierr сопоставляет ошибки сервисного слоя с HTTP ответами.
// Используется и gin обработчиками, и Lambda адаптером.
package apierr

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/service"
	"gw-fund-subscriptions/internal/storages"
)

// Сообщения, возвращаемые клиенту
const (
	MessageUserNotFound = "User not found"
	MessageFundNotFound = "Fondo no encontrado"
	MessageConflict     = "La operación fue modificada por otra solicitud, intente nuevamente"
	MessageInternal     = "Error interno del servidor"
)

// Body тело ответа об ошибке
type Body struct {
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

// Resolve возвращает HTTP статус и безопасное тело ответа для ошибки.
// Внутренние ошибки логируются и наружу не передаются.
func Resolve(err error, op string, logger *logrus.Logger) (int, Body) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, Body{Message: validationErr.Message, Missing: validationErr.Missing}
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, Body{Message: MessageUserNotFound}
	case errors.Is(err, service.ErrFundNotFound):
		return http.StatusNotFound, Body{Message: MessageFundNotFound}
	case errors.Is(err, storages.ErrConflict):
		logger.Warnf("%s: concurrent update conflict: %v", op, err)
		return http.StatusConflict, Body{Message: MessageConflict}
	default:
		logger.Errorf("%s failed: %v", op, err)
		return http.StatusInternalServerError, Body{Message: MessageInternal}
	}
}

// Invalid ошибка разбора тела запроса
func Invalid(message string) error {
	return &service.ValidationError{Message: message}
}
