package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gw-fund-subscriptions/internal/metrics"
	"gw-fund-subscriptions/internal/storages"
)

func newTestService(storage *MockStorage, publisher Publisher) *FundService {
	svc := NewFundService(storage, publisher, nil, 3, logrus.New())

	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("tx-%d", seq)
	}
	return svc
}

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func decimalFromString(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func subscribeRequest(cedula string, saldo int64, fondo string) *SubscribeRequest {
	return &SubscribeRequest{
		Cedula:   cedula,
		Correo:   cedula + "@example.com",
		Telefono: "3001234567",
		Saldo:    decimalPtr(saldo),
		Fondo:    FundRef{Nombre: fondo, Categoria: "FPV"},
	}
}

func TestListFunds(t *testing.T) {
	storage := NewMockStorage()
	storage.addFund("FPV_BTG_PACTUAL_RECAUDADORA", "FPV", 75000)
	storage.addFund("DEUDAPRIVADA", "FIC", 50000)

	funds, err := newTestService(storage, nil).ListFunds(context.Background())
	if err != nil {
		t.Fatalf("ListFunds failed: %v", err)
	}

	if len(funds) != 2 {
		t.Errorf("Expected 2 funds, got %d", len(funds))
	}
}

func TestListFundsStoreError(t *testing.T) {
	storage := NewMockStorage()
	storage.failListFunds = errStoreDown

	_, err := newTestService(storage, nil).ListFunds(context.Background())

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Expected StoreError, got %v", err)
	}
	if !errors.Is(err, errStoreDown) {
		t.Error("Expected StoreError to wrap the store failure")
	}
}

func TestSubscribeSufficientBalance(t *testing.T) {
	storage := NewMockStorage()
	storage.addFund("FPV_BTG_PACTUAL_DINAMICA", "FPV", 100000)
	publisher := &MockPublisher{}

	result, err := newTestService(storage, publisher).Subscribe(context.Background(),
		subscribeRequest("1020304050", 500000, "FPV_BTG_PACTUAL_DINAMICA"))
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if !result.Subscribed {
		t.Fatalf("Expected subscription, got %q", result.Message)
	}

	if len(storage.transactions) != 1 {
		t.Fatalf("Expected 1 ledger entry, got %d", len(storage.transactions))
	}

	entry := storage.transactions[0]
	if entry.TipoTransaccion != storages.TipoApertura {
		t.Errorf("Expected APERTURA, got %s", entry.TipoTransaccion)
	}
	if !entry.Monto.Equal(decimal.NewFromInt(500000)) {
		t.Errorf("Expected amount 500000, got %s", entry.Monto)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("Expected created_at on the ledger entry")
	}

	if len(publisher.events) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(publisher.events))
	}
	if publisher.events[0].TransactionID != result.TransactionID || result.TransactionID != entry.ID {
		t.Errorf("Notification must carry the ledger transaction ID")
	}
	if publisher.events[0].Fondo != "FPV_BTG_PACTUAL_DINAMICA" || publisher.events[0].User != "1020304050" {
		t.Errorf("Unexpected notification: %+v", publisher.events[0])
	}
	if !publisher.events[0].Monto.Equal(entry.Monto) {
		t.Errorf("Expected notification amount %s, got %s", entry.Monto, publisher.events[0].Monto)
	}
}

func TestSubscribeEventKeepsExactAmount(t *testing.T) {
	storage := NewMockStorage()
	storage.addFund("DEUDAPRIVADA", "FPV", 50000)
	publisher := &MockPublisher{}

	req := subscribeRequest("1020", 0, "DEUDAPRIVADA")
	req.Saldo = decimalFromString("9007199254740993.01")

	if _, err := newTestService(storage, publisher).Subscribe(context.Background(), req); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(publisher.events))
	}
	if got := publisher.events[0].Monto.String(); got != "9007199254740993.01" {
		t.Errorf("Expected exact amount 9007199254740993.01, got %s", got)
	}
}

func TestSubscribeInsufficientBalance(t *testing.T) {
	storage := NewMockStorage()
	storage.addFund("FPV_BTG_PACTUAL_DINAMICA", "FPV", 100000)
	publisher := &MockPublisher{}

	result, err := newTestService(storage, publisher).Subscribe(context.Background(),
		subscribeRequest("1020304050", 50000, "FPV_BTG_PACTUAL_DINAMICA"))
	if err != nil {
		t.Fatalf("Insufficient balance must not be an error: %v", err)
	}

	if result.Subscribed {
		t.Error("Expected no subscription")
	}
	if !strings.Contains(result.Message, "FPV_BTG_PACTUAL_DINAMICA") {
		t.Errorf("Expected message naming the fund, got %q", result.Message)
	}
	if len(storage.transactions) != 0 {
		t.Errorf("Expected empty ledger, got %d entries", len(storage.transactions))
	}
	if len(publisher.events) != 0 {
		t.Errorf("Expected no notifications, got %d", len(publisher.events))
	}
}

func TestSubscribeComparesNumerically(t *testing.T) {
	storage := NewMockStorage()
	storage.addFund("FDO-ACCIONES", "FPV", 1000000)

	// "900000" > "1000000" как строки, но не как числа
	result, err := newTestService(storage, nil).Subscribe(context.Background(),
		subscribeRequest("1", 900000, "FDO-ACCIONES"))
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if result.Subscribed {
		t.Error("900000 must be below a 1000000 minimum")
	}
}

func TestSubscribeExistingUserIsNotDuplicated(t *testing.T) {
	storage := NewMockStorage()
	storage.addFund("DEUDAPRIVADA", "FPV", 50000)
	svc := newTestService(storage, nil)

	for i := 0; i < 2; i++ {
		if _, err := svc.Subscribe(context.Background(), subscribeRequest("77", 60000, "DEUDAPRIVADA")); err != nil {
			t.Fatalf("Subscribe #%d failed: %v", i+1, err)
		}
	}

	if len(storage.users) != 1 {
		t.Errorf("Expected 1 user, got %d", len(storage.users))
	}
	if storage.createCalls != 1 {
		t.Errorf("Expected 1 create call, got %d", storage.createCalls)
	}
}

func TestSubscribeUsesStoredBalanceOfExistingUser(t *testing.T) {
	storage := NewMockStorage()
	storage.addFund("DEUDAPRIVADA", "FPV", 50000)
	storage.addUser("88", "88@example.com", "300", 10000)

	result, err := newTestService(storage, nil).Subscribe(context.Background(),
		subscribeRequest("88", 90000, "DEUDAPRIVADA"))
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if result.Subscribed {
		t.Error("Stored balance 10000 is below the 50000 minimum")
	}
}

func TestSubscribeMissingFields(t *testing.T) {
	_, err := newTestService(NewMockStorage(), nil).Subscribe(context.Background(), &SubscribeRequest{Telefono: "300"})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if len(validationErr.Missing) != 2 || validationErr.Missing[0] != "cedula" || validationErr.Missing[1] != "correo" {
		t.Errorf("Expected missing [cedula correo], got %v", validationErr.Missing)
	}
}

func TestSubscribeMissingFund(t *testing.T) {
	storage := NewMockStorage()
	req := subscribeRequest("1020", 500000, "")
	req.Fondo.Categoria = " "

	_, err := newTestService(storage, nil).Subscribe(context.Background(), req)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if len(validationErr.Missing) != 2 || validationErr.Missing[0] != "fondo.nombre" || validationErr.Missing[1] != "fondo.categoria" {
		t.Errorf("Expected missing [fondo.nombre fondo.categoria], got %v", validationErr.Missing)
	}
	if len(storage.users) != 0 {
		t.Errorf("Expected no user to be created, got %d", len(storage.users))
	}
}

func TestSubscribeBalanceScale(t *testing.T) {
	req := subscribeRequest("1020", 0, "DEUDAPRIVADA")
	saldo := decimal.RequireFromString("100.005")
	req.Saldo = &saldo

	_, err := newTestService(NewMockStorage(), nil).Subscribe(context.Background(), req)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError for 3 decimals, got %v", err)
	}

	saldo = decimal.RequireFromString("100.50")
	if err := req.Validate(); err != nil {
		t.Errorf("Expected 2 decimals to be accepted, got %v", err)
	}
}

func TestSubscribeNegativeBalance(t *testing.T) {
	req := subscribeRequest("1", -5, "X")

	_, err := newTestService(NewMockStorage(), nil).Subscribe(context.Background(), req)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestSubscribeUnknownFund(t *testing.T) {
	_, err := newTestService(NewMockStorage(), nil).Subscribe(context.Background(),
		subscribeRequest("1", 100, "NO_EXISTE"))

	if !errors.Is(err, ErrFundNotFound) {
		t.Errorf("Expected ErrFundNotFound, got %v", err)
	}
}

func TestSubscribePublishFailureKeepsLedgerEntry(t *testing.T) {
	storage := NewMockStorage()
	storage.addFund("DEUDAPRIVADA", "FPV", 50000)
	publisher := &MockPublisher{err: errors.New("broker unavailable")}

	result, err := newTestService(storage, publisher).Subscribe(context.Background(),
		subscribeRequest("1", 60000, "DEUDAPRIVADA"))
	if err != nil {
		t.Fatalf("Publish failure must not fail the subscription: %v", err)
	}

	if !result.Subscribed {
		t.Error("Expected subscription")
	}
	if len(storage.transactions) != 1 {
		t.Errorf("Expected the ledger entry to be kept, got %d entries", len(storage.transactions))
	}
}

func TestSubscribeRetriesOnConflict(t *testing.T) {
	storage := NewMockStorage()
	storage.addFund("DEUDAPRIVADA", "FPV", 50000)
	storage.conflictsLeft = 2

	reg := prometheus.NewRegistry()
	svc := newTestService(storage, nil)
	svc.metrics = metrics.New(reg)

	result, err := svc.Subscribe(context.Background(), subscribeRequest("1", 60000, "DEUDAPRIVADA"))
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if !result.Subscribed || len(storage.transactions) != 1 {
		t.Errorf("Expected one entry after retries, got %d", len(storage.transactions))
	}
	if got := testutil.ToFloat64(svc.metrics.LedgerConflicts); got != 2 {
		t.Errorf("Expected 2 conflicts counted, got %v", got)
	}
	if got := testutil.ToFloat64(svc.metrics.Subscriptions.WithLabelValues(metrics.OutcomeSubscribed)); got != 1 {
		t.Errorf("Expected 1 subscription counted, got %v", got)
	}
}

func TestDepositAccumulatesOnPosition(t *testing.T) {
	storage := NewMockStorage()
	storage.addFund("FPV_BTG_PACTUAL_ECOPETROL", "FPV", 125000)
	svc := newTestService(storage, nil)
	ctx := context.Background()

	if _, err := svc.Subscribe(ctx, subscribeRequest("5", 500000, "FPV_BTG_PACTUAL_ECOPETROL")); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	previous := decimal.NewFromInt(500000)
	expected := []int64{520000, 550000, 551000}
	for i, monto := range []int64{20000, 30000, 1000} {
		entry, err := svc.RecordTransaction(ctx, &TransactionRequest{
			Cedula:    "5",
			Fondo:     "FPV_BTG_PACTUAL_ECOPETROL",
			Operacion: "deposito",
			Monto:     decimalPtr(monto),
		})
		if err != nil {
			t.Fatalf("Deposit #%d failed: %v", i+1, err)
		}

		if !entry.Monto.Equal(decimal.NewFromInt(expected[i])) {
			t.Errorf("Deposit #%d: expected %d, got %s", i+1, expected[i], entry.Monto)
		}
		if !entry.Monto.GreaterThan(previous) {
			t.Errorf("Deposit #%d: cumulative amount must increase", i+1)
		}
		previous = entry.Monto
	}

	if entry := storage.transactions[1]; entry.TipoTransaccion != "deposito" {
		t.Errorf("Operation kind must be stored as sent, got %s", entry.TipoTransaccion)
	}
}

func TestCancellationRefundsBalance(t *testing.T) {
	storage := NewMockStorage()
	storage.addUser("9", "9@example.com", "3109998877", 200000)
	svc := newTestService(storage, nil)

	entry, err := svc.RecordTransaction(context.Background(), &TransactionRequest{
		Cedula:    "9",
		Fondo:     "DEUDAPRIVADA",
		Operacion: "CANCELACION",
		Monto:     decimalPtr(75000),
	})
	if err != nil {
		t.Fatalf("Cancellation failed: %v", err)
	}

	user := storage.users[storages.UserKey{Cedula: "9", Correo: "9@example.com"}]
	if !user.Saldo.Equal(decimal.NewFromInt(275000)) {
		t.Errorf("Expected saldo 275000, got %s", user.Saldo)
	}
	if user.Telefono != "3109998877" || user.Correo != "9@example.com" {
		t.Errorf("Other user attributes must be preserved: %+v", user)
	}
	if !entry.Monto.Equal(decimal.NewFromInt(75000)) || len(storage.transactions) != 1 {
		t.Errorf("Expected a 75000 cancellation entry, got %s", entry.Monto)
	}
}

func TestRecordTransactionValidation(t *testing.T) {
	svc := newTestService(NewMockStorage(), nil)

	tests := []struct {
		name string
		req  *TransactionRequest
	}{
		{"missing cedula", &TransactionRequest{Fondo: "F", Operacion: "deposito", Monto: decimalPtr(1)}},
		{"missing monto", &TransactionRequest{Cedula: "1", Fondo: "F", Operacion: "deposito"}},
		{"zero monto", &TransactionRequest{Cedula: "1", Fondo: "F", Operacion: "deposito", Monto: decimalPtr(0)}},
		{"negative monto", &TransactionRequest{Cedula: "1", Fondo: "F", Operacion: "deposito", Monto: decimalPtr(-10)}},
		{"monto below cent", &TransactionRequest{Cedula: "1", Fondo: "F", Operacion: "deposito", Monto: decimalFromString("0.001")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordTransaction(context.Background(), tt.req)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
		})
	}
}

func TestRecordTransactionUnknownUser(t *testing.T) {
	_, err := newTestService(NewMockStorage(), nil).RecordTransaction(context.Background(), &TransactionRequest{
		Cedula: "404", Fondo: "F", Operacion: "deposito", Monto: decimalPtr(10),
	})

	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestConcurrentDepositIsRecomputed(t *testing.T) {
	storage := NewMockStorage()
	storage.addUser("3", "3@example.com", "", 500000)
	storage.transactions = []storages.Transaction{
		{ID: "open", User: "3", Fondo: "F", TipoTransaccion: storages.TipoApertura, Monto: decimal.NewFromInt(500000)},
	}

	// Параллельный депозит попадает в журнал между чтением позиции и записью
	storage.beforeAppend = func() {
		storage.transactions = append(storage.transactions, storages.Transaction{
			ID: "other", User: "3", Fondo: "F", TipoTransaccion: storages.TipoDeposito, Monto: decimal.NewFromInt(520000),
		})
	}

	entry, err := newTestService(storage, nil).RecordTransaction(context.Background(), &TransactionRequest{
		Cedula: "3", Fondo: "F", Operacion: "DEPOSITO", Monto: decimalPtr(10000),
	})
	if err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	if !entry.Monto.Equal(decimal.NewFromInt(530000)) {
		t.Errorf("Expected 530000 after recomputation, got %s", entry.Monto)
	}
}

func TestRecordTransactionConflictExhausted(t *testing.T) {
	storage := NewMockStorage()
	storage.addUser("3", "3@example.com", "", 500000)
	storage.conflictsLeft = 10

	_, err := newTestService(storage, nil).RecordTransaction(context.Background(), &TransactionRequest{
		Cedula: "3", Fondo: "F", Operacion: "DEPOSITO", Monto: decimalPtr(10000),
	})

	if !errors.Is(err, storages.ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}
	if storage.conflictsLeft != 7 {
		t.Errorf("Expected 3 attempts, %d conflicts left", storage.conflictsLeft)
	}
}

func TestRecordTransactionStoreFailure(t *testing.T) {
	storage := NewMockStorage()
	storage.addUser("3", "3@example.com", "", 500000)
	storage.failAppend = errStoreDown

	_, err := newTestService(storage, nil).RecordTransaction(context.Background(), &TransactionRequest{
		Cedula: "3", Fondo: "F", Operacion: "DEPOSITO", Monto: decimalPtr(10000),
	})

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Errorf("Expected StoreError, got %v", err)
	}
}

func TestListTransactions(t *testing.T) {
	storage := NewMockStorage()
	storage.transactions = []storages.Transaction{
		{ID: "a", User: "1", Fondo: "F", TipoTransaccion: storages.TipoApertura, Monto: decimal.NewFromInt(1)},
		{ID: "b", User: "2", Fondo: "F", TipoTransaccion: storages.TipoApertura, Monto: decimal.NewFromInt(2)},
		{ID: "c", User: "1", Fondo: "G", TipoTransaccion: storages.TipoApertura, Monto: decimal.NewFromInt(3)},
	}

	transactions, err := newTestService(storage, nil).ListTransactions(context.Background(), "1")
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}

	if len(transactions) != 2 {
		t.Errorf("Expected 2 transactions, got %d", len(transactions))
	}
}

func TestListTransactionsMissingUser(t *testing.T) {
	_, err := newTestService(NewMockStorage(), nil).ListTransactions(context.Background(), "  ")

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError, got %v", err)
	}
}
