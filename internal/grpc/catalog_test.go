package grpc

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gw-fund-subscriptions/internal/cache"
	"gw-fund-subscriptions/internal/storages"
)

// MockFundReader - мок для storages.FundReader
type MockFundReader struct {
	funds     []storages.Fund
	listCalls int
	err       error
}

func (m *MockFundReader) ListFunds(ctx context.Context) ([]storages.Fund, error) {
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.funds, nil
}

func (m *MockFundReader) GetFund(ctx context.Context, nombre, categoria string) (*storages.Fund, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.funds {
		if m.funds[i].Nombre == nombre && m.funds[i].Categoria == categoria {
			return &m.funds[i], nil
		}
	}
	return nil, storages.ErrNotFound
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func startCatalog(t *testing.T, reader *MockFundReader, fundCache *cache.FundCache) *CatalogClient {
	t.Helper()

	logger := newTestLogger()
	listener := bufconn.Listen(1024 * 1024)

	srv, _ := NewServer(NewCatalogServer(reader, logger), logger)
	go func() {
		_ = srv.Serve(listener)
	}()
	t.Cleanup(srv.Stop)

	dialer := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return listener.DialContext(ctx)
	})

	client, err := NewCatalogClient("bufnet", "0", 5*time.Second, fundCache, logger, dialer)
	if err != nil {
		t.Fatalf("NewCatalogClient failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client
}

func testFunds() []storages.Fund {
	return []storages.Fund{
		{Nombre: "FPV_BTG_PACTUAL_RECAUDADORA", Categoria: "FPV", MontoMinimo: decimal.NewFromInt(75000)},
		{Nombre: "DEUDAPRIVADA", Categoria: "FIC", MontoMinimo: decimal.RequireFromString("50000.25"), Descripcion: "Deuda privada"},
	}
}

func TestCatalogListFunds(t *testing.T) {
	client := startCatalog(t, &MockFundReader{funds: testFunds()}, nil)

	funds, err := client.ListFunds(context.Background())
	if err != nil {
		t.Fatalf("ListFunds failed: %v", err)
	}

	if len(funds) != 2 {
		t.Fatalf("Expected 2 funds, got %d", len(funds))
	}
	if !funds[1].MontoMinimo.Equal(decimal.RequireFromString("50000.25")) || funds[1].Descripcion != "Deuda privada" {
		t.Errorf("Fund not preserved over the wire: %+v", funds[1])
	}
}

func TestCatalogListFundsUsesCache(t *testing.T) {
	reader := &MockFundReader{funds: testFunds()}
	client := startCatalog(t, reader, cache.NewFundCache(time.Minute))

	for i := 0; i < 3; i++ {
		if _, err := client.ListFunds(context.Background()); err != nil {
			t.Fatalf("ListFunds failed: %v", err)
		}
	}

	if reader.listCalls != 1 {
		t.Errorf("Expected 1 server call, got %d", reader.listCalls)
	}
}

func TestCatalogGetFund(t *testing.T) {
	client := startCatalog(t, &MockFundReader{funds: testFunds()}, nil)
	ctx := context.Background()

	fund, err := client.GetFund(ctx, "DEUDAPRIVADA", "FIC")
	if err != nil {
		t.Fatalf("GetFund failed: %v", err)
	}
	if fund.Categoria != "FIC" {
		t.Errorf("Expected FIC, got %s", fund.Categoria)
	}

	fund, err = client.GetFund(ctx, "FPV_BTG_PACTUAL_RECAUDADORA", "")
	if err != nil {
		t.Fatalf("GetFund by name failed: %v", err)
	}
	if !fund.MontoMinimo.Equal(decimal.NewFromInt(75000)) {
		t.Errorf("Expected 75000, got %s", fund.MontoMinimo)
	}

	if _, err := client.GetFund(ctx, "NO_EXISTE", "FPV"); !errors.Is(err, storages.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCatalogStoreFailure(t *testing.T) {
	client := startCatalog(t, &MockFundReader{err: errors.New("db down")}, nil)

	if _, err := client.ListFunds(context.Background()); err == nil {
		t.Error("Expected error when the store fails")
	}
}

func TestCatalogHealth(t *testing.T) {
	client := startCatalog(t, &MockFundReader{}, nil)

	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	resp, err := client.health.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Overall health check failed: %v", err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("Expected SERVING, got %s", resp.GetStatus())
	}
}

func TestFundStructRoundTrip(t *testing.T) {
	fund := testFunds()[1]

	data, err := proto.Marshal(fundToStruct(&fund))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	decoded := new(structpb.Struct)
	if err := proto.Unmarshal(data, decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got := stringField(decoded, fieldMontoMinimo); got != "50000.25" {
		t.Errorf("Expected monto_minimo 50000.25 as string, got %q", got)
	}

	restored, err := structToFund(decoded)
	if err != nil {
		t.Fatalf("structToFund failed: %v", err)
	}
	if restored.Nombre != fund.Nombre || restored.Categoria != fund.Categoria || !restored.MontoMinimo.Equal(fund.MontoMinimo) {
		t.Errorf("Expected %+v, got %+v", fund, restored)
	}
}

func TestStructToFundRejectsMalformedMessages(t *testing.T) {
	cases := map[string]*structpb.Struct{
		"missing nombre": {Fields: map[string]*structpb.Value{
			fieldMontoMinimo: structpb.NewStringValue("1000"),
		}},
		"bad monto": {Fields: map[string]*structpb.Value{
			fieldNombre:      structpb.NewStringValue("DEUDAPRIVADA"),
			fieldMontoMinimo: structpb.NewStringValue("mucho"),
		}},
		"numeric monto": {Fields: map[string]*structpb.Value{
			fieldNombre:      structpb.NewStringValue("DEUDAPRIVADA"),
			fieldMontoMinimo: structpb.NewNumberValue(1000),
		}},
	}

	for name, msg := range cases {
		if _, err := structToFund(msg); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	list := &structpb.ListValue{Values: []*structpb.Value{structpb.NewStringValue("DEUDAPRIVADA")}}
	if _, err := listToFunds(list); err == nil {
		t.Error("Expected error for a catalog entry that is not a struct")
	}
}
