// Package dto описывает JSON представления ответов API.
//
// Денежные значения выводятся как json.Number с точным десятичным литералом
// из хранилища, без промежуточного float64.
package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gw-fund-subscriptions/internal/service"
	"gw-fund-subscriptions/internal/storages"
)

// Number представляет десятичное значение как JSON число
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// Fund плоский объект фонда: строковые атрибуты как строки, числовые как числа
func Fund(f *storages.Fund) map[string]interface{} {
	view := make(map[string]interface{}, len(f.Extra)+4)

	for key, value := range f.Extra {
		switch v := value.(type) {
		case decimal.Decimal:
			view[key] = Number(v)
		default:
			view[key] = v
		}
	}

	view["nombre"] = f.Nombre
	view["categoria"] = f.Categoria
	view["monto_minimo"] = Number(f.MontoMinimo)
	if f.Descripcion != "" {
		view["descripcion"] = f.Descripcion
	}

	return view
}

// Funds преобразует каталог фондов
func Funds(funds []storages.Fund) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(funds))
	for i := range funds {
		result = append(result, Fund(&funds[i]))
	}
	return result
}

// Transaction запись журнала в ответе GET /transactions
type Transaction struct {
	ID              string      `json:"id"`
	User            string      `json:"user"`
	Fondo           string      `json:"fondo"`
	TipoTransaccion string      `json:"tipo_transaccion"`
	Monto           json.Number `json:"monto"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Transactions преобразует записи журнала
func Transactions(entries []storages.Transaction) []Transaction {
	result := make([]Transaction, 0, len(entries))
	for _, e := range entries {
		result = append(result, Transaction{
			ID:              e.ID,
			User:            e.User,
			Fondo:           e.Fondo,
			TipoTransaccion: e.TipoTransaccion,
			Monto:           Number(e.Monto),
			CreatedAt:       e.CreatedAt,
		})
	}
	return result
}

// SubscribeResponse ответ POST /subscribe
type SubscribeResponse struct {
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id,omitempty"`
	Fondo         string `json:"fondo,omitempty"`
}

// Subscription преобразует результат подписки.
// При недостаточном балансе возвращается только сообщение.
func Subscription(r *service.SubscriptionResult) SubscribeResponse {
	if !r.Subscribed {
		return SubscribeResponse{Message: r.Message}
	}
	return SubscribeResponse{
		Message:       r.Message,
		TransactionID: r.TransactionID,
		Fondo:         r.Fondo,
	}
}

// TransactionResponse ответ POST /transactions
type TransactionResponse struct {
	Message       string      `json:"message"`
	TransactionID string      `json:"transaction_id"`
	Monto         json.Number `json:"monto"`
}

// Recorded преобразует записанную операцию
func Recorded(entry *storages.Transaction) TransactionResponse {
	return TransactionResponse{
		Message:       "Transaction successful",
		TransactionID: entry.ID,
		Monto:         Number(entry.Monto),
	}
}
