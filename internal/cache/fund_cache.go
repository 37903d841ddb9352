package cache

import (
	"sync"
	"time"

	"gw-fund-subscriptions/internal/storages"
)

// FundCache кеш каталога фондов
type FundCache struct {
	funds  []storages.Fund
	mu     sync.RWMutex
	ttl    time.Duration
	lastUp time.Time
	now    func() time.Time
}

// NewFundCache создает новый кеш
func NewFundCache(ttl time.Duration) *FundCache {
	return &FundCache{
		ttl: ttl,
		now: time.Now,
	}
}

// Set сохраняет каталог в кеш
func (c *FundCache) Set(funds []storages.Fund) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.funds = append([]storages.Fund(nil), funds...)
	c.lastUp = c.now()
}

// Get возвращает каталог из кеша, если он актуален
func (c *FundCache) Get() ([]storages.Fund, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.fresh() {
		return nil, false
	}

	return append([]storages.Fund(nil), c.funds...), true
}

// GetFund возвращает фонд по имени; пустая категория совпадает с любой
func (c *FundCache) GetFund(nombre, categoria string) (*storages.Fund, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.fresh() {
		return nil, false
	}

	for i := range c.funds {
		f := c.funds[i]
		if f.Nombre == nombre && (categoria == "" || f.Categoria == categoria) {
			return &f, true
		}
	}
	return nil, false
}

// Clear очищает кеш
func (c *FundCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.funds = nil
	c.lastUp = time.Time{}
}

// IsValid проверяет, актуален ли кеш
func (c *FundCache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.fresh() && len(c.funds) > 0
}

func (c *FundCache) fresh() bool {
	return !c.lastUp.IsZero() && c.now().Sub(c.lastUp) <= c.ttl
}
