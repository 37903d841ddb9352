package service

import (
	"strings"

	"github.com/shopspring/decimal"
	"gw-fund-subscriptions/internal/storages"
)

// Position текущее состояние позиции пользователя в фонде
type Position struct {
	// Amount накопленная сумма последней записи APERTURA/DEPOSITO после последней CANCELACION
	Amount decimal.Decimal

	// Head ID последней записи журнала по паре (пользователь, фонд)
	Head string

	Open bool
}

// DerivePosition вычисляет позицию по записям журнала, упорядоченным по времени
func DerivePosition(entries []storages.Transaction) Position {
	var pos Position

	for i := range entries {
		e := &entries[i]
		pos.Head = e.ID

		switch {
		case e.IsKind(storages.TipoApertura), e.IsKind(storages.TipoDeposito):
			pos.Amount = e.Monto
			pos.Open = true
		case e.IsKind(storages.TipoCancelacion):
			pos.Amount = decimal.Zero
			pos.Open = false
		}
	}

	return pos
}

// CumulativeAmount сумма новой записи журнала для операции
func CumulativeAmount(operacion string, monto decimal.Decimal, pos Position) decimal.Decimal {
	if strings.EqualFold(operacion, storages.TipoDeposito) {
		return monto.Add(pos.Amount)
	}
	return monto
}

// metricKind ограничивает значения метки типа операции
func metricKind(operacion string) string {
	kind := strings.ToUpper(strings.TrimSpace(operacion))
	switch kind {
	case storages.TipoApertura, storages.TipoDeposito, storages.TipoCancelacion:
		return kind
	}
	return "OTRO"
}
