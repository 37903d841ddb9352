package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader заголовок с идентификатором запроса
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID присваивает запросу идентификатор, сохраняя переданный клиентом
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID извлекает идентификатор запроса из контекста
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
