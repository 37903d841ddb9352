package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// amountScale число знаков после запятой, которое хранится для сумм
const amountScale = 2

func withinScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(amountScale))
}

// FundRef ссылка на фонд в запросе подписки
type FundRef struct {
	Nombre    string `json:"nombre"`
	Categoria string `json:"categoria"`
}

// SubscribeRequest запрос на подписку
type SubscribeRequest struct {
	Cedula   string           `json:"cedula"`
	Correo   string           `json:"correo"`
	Telefono string           `json:"telefono"`
	Saldo    *decimal.Decimal `json:"saldo"`
	Fondo    FundRef          `json:"fondo"`
}

// Validate проверяет обязательные поля
func (r *SubscribeRequest) Validate() error {
	r.Cedula = strings.TrimSpace(r.Cedula)
	r.Correo = strings.TrimSpace(r.Correo)

	var missing []string
	if r.Cedula == "" {
		missing = append(missing, "cedula")
	}
	if r.Correo == "" {
		missing = append(missing, "correo")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: "Faltan los siguientes atributos", Missing: missing}
	}

	r.Fondo.Nombre = strings.TrimSpace(r.Fondo.Nombre)
	r.Fondo.Categoria = strings.TrimSpace(r.Fondo.Categoria)
	if r.Fondo.Nombre == "" {
		missing = append(missing, "fondo.nombre")
	}
	if r.Fondo.Categoria == "" {
		missing = append(missing, "fondo.categoria")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: "Faltan los atributos del fondo", Missing: missing}
	}

	if r.Saldo != nil && r.Saldo.IsNegative() {
		return &ValidationError{Message: "El saldo no puede ser negativo"}
	}
	if r.Saldo != nil && !withinScale(*r.Saldo) {
		return &ValidationError{Message: "El saldo admite como maximo 2 decimales"}
	}

	return nil
}

// TransactionRequest запрос на операцию по позиции
type TransactionRequest struct {
	Cedula    string           `json:"cedula"`
	Fondo     string           `json:"fondo"`
	Operacion string           `json:"operacion"`
	Monto     *decimal.Decimal `json:"monto"`
}

// Validate проверяет обязательные поля и сумму
func (r *TransactionRequest) Validate() error {
	r.Cedula = strings.TrimSpace(r.Cedula)
	r.Fondo = strings.TrimSpace(r.Fondo)
	r.Operacion = strings.TrimSpace(r.Operacion)

	var missing []string
	if r.Cedula == "" {
		missing = append(missing, "cedula")
	}
	if r.Fondo == "" {
		missing = append(missing, "fondo")
	}
	if r.Operacion == "" {
		missing = append(missing, "operacion")
	}
	if r.Monto == nil {
		missing = append(missing, "monto")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: "Missing required fields", Missing: missing}
	}

	if !r.Monto.IsPositive() {
		return &ValidationError{Message: "monto must be a positive number"}
	}
	if !withinScale(*r.Monto) {
		return &ValidationError{Message: "monto must have at most 2 decimal places"}
	}

	return nil
}
