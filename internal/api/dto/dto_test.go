package dto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gw-fund-subscriptions/internal/service"
	"gw-fund-subscriptions/internal/storages"
)

func TestFundKeepsExactNumbers(t *testing.T) {
	fund := storages.Fund{
		Nombre:      "FPV_BTG_PACTUAL_RECAUDADORA",
		Categoria:   "FPV",
		MontoMinimo: decimal.RequireFromString("75000.50"),
	}
	fund.SetExtra("rentabilidad", decimal.RequireFromString("0.0725"))
	fund.SetExtra("gestor", "BTG Pactual")

	data, err := json.Marshal(Funds([]storages.Fund{fund}))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	body := string(data)
	for _, want := range []string{`"monto_minimo":75000.5`, `"rentabilidad":0.0725`, `"gestor":"BTG Pactual"`, `"nombre":"FPV_BTG_PACTUAL_RECAUDADORA"`} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %s in %s", want, body)
		}
	}
}

func TestSubscriptionInsufficientHasOnlyMessage(t *testing.T) {
	data, err := json.Marshal(Subscription(&service.SubscriptionResult{
		Fondo:   "DEUDAPRIVADA",
		Message: "No tiene saldo disponible para vincularse al fondo DEUDAPRIVADA",
	}))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if string(data) != `{"message":"No tiene saldo disponible para vincularse al fondo DEUDAPRIVADA"}` {
		t.Errorf("Unexpected body: %s", data)
	}
}

func TestRecordedAmountIsNumber(t *testing.T) {
	data, err := json.Marshal(Recorded(&storages.Transaction{ID: "tx", Monto: decimal.NewFromInt(520000)}))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if !strings.Contains(string(data), `"monto":520000`) {
		t.Errorf("Expected numeric monto, got %s", data)
	}
}
