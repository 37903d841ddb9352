package cache

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gw-fund-subscriptions/internal/storages"
)

func testFunds() []storages.Fund {
	return []storages.Fund{
		{Nombre: "DEUDAPRIVADA", Categoria: "FIC", MontoMinimo: decimal.NewFromInt(50000)},
		{Nombre: "FDO-ACCIONES", Categoria: "FIC", MontoMinimo: decimal.NewFromInt(250000)},
	}
}

func TestFundCacheExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewFundCache(time.Minute)
	c.now = func() time.Time { return now }

	if _, ok := c.Get(); ok {
		t.Fatal("Empty cache must miss")
	}

	c.Set(testFunds())
	if funds, ok := c.Get(); !ok || len(funds) != 2 {
		t.Fatalf("Expected 2 cached funds, got %d (hit=%t)", len(funds), ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get(); ok {
		t.Error("Expired cache must miss")
	}
	if c.IsValid() {
		t.Error("Expired cache must not be valid")
	}
}

func TestFundCacheGetFund(t *testing.T) {
	c := NewFundCache(time.Minute)
	c.Set(testFunds())

	if f, ok := c.GetFund("FDO-ACCIONES", ""); !ok || !f.MontoMinimo.Equal(decimal.NewFromInt(250000)) {
		t.Errorf("Expected FDO-ACCIONES by name, got %+v", f)
	}
	if _, ok := c.GetFund("FDO-ACCIONES", "FPV"); ok {
		t.Error("Category mismatch must miss")
	}

	c.Clear()
	if _, ok := c.GetFund("DEUDAPRIVADA", "FIC"); ok {
		t.Error("Cleared cache must miss")
	}
}

func TestFundCacheReturnsCopies(t *testing.T) {
	c := NewFundCache(time.Minute)
	c.Set(testFunds())

	funds, _ := c.Get()
	funds[0].Nombre = "CHANGED"

	if f, ok := c.GetFund("DEUDAPRIVADA", "FIC"); !ok || f.Nombre != "DEUDAPRIVADA" {
		t.Error("Cache contents must not be shared with callers")
	}
}
