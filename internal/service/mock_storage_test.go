package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gw-fund-subscriptions/internal/notification"
	"gw-fund-subscriptions/internal/storages"
)

// MockStorage - мок для Storage с семантикой условной записи
type MockStorage struct {
	users        map[storages.UserKey]*storages.User
	funds        map[string]*storages.Fund
	transactions []storages.Transaction

	createCalls   int
	conflictsLeft int
	failListFunds error
	failAppend    error
	beforeAppend  func()
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		users: make(map[storages.UserKey]*storages.User),
		funds: make(map[string]*storages.Fund),
	}
}

func fundID(nombre, categoria string) string {
	return nombre + "|" + categoria
}

func (m *MockStorage) addFund(nombre, categoria string, minimo int64) {
	m.funds[fundID(nombre, categoria)] = &storages.Fund{
		Nombre:      nombre,
		Categoria:   categoria,
		MontoMinimo: decimal.NewFromInt(minimo),
	}
}

func (m *MockStorage) addUser(cedula, correo, telefono string, saldo int64) {
	key := storages.UserKey{Cedula: cedula, Correo: correo}
	m.users[key] = &storages.User{
		Cedula:   cedula,
		Correo:   correo,
		Telefono: telefono,
		Saldo:    decimal.NewFromInt(saldo),
	}
}

func (m *MockStorage) ListFunds(ctx context.Context) ([]storages.Fund, error) {
	if m.failListFunds != nil {
		return nil, m.failListFunds
	}
	var result []storages.Fund
	for _, f := range m.funds {
		result = append(result, *f)
	}
	return result, nil
}

func (m *MockStorage) GetFund(ctx context.Context, nombre, categoria string) (*storages.Fund, error) {
	if f, exists := m.funds[fundID(nombre, categoria)]; exists {
		copied := *f
		return &copied, nil
	}
	return nil, storages.ErrNotFound
}

func (m *MockStorage) GetUser(ctx context.Context, key storages.UserKey) (*storages.User, error) {
	if u, exists := m.users[key]; exists {
		copied := *u
		return &copied, nil
	}
	return nil, storages.ErrNotFound
}

func (m *MockStorage) FindUserByCedula(ctx context.Context, cedula string) (*storages.User, error) {
	for _, u := range m.users {
		if u.Cedula == cedula {
			copied := *u
			return &copied, nil
		}
	}
	return nil, storages.ErrNotFound
}

func (m *MockStorage) CreateUser(ctx context.Context, user *storages.User) error {
	m.createCalls++
	if _, exists := m.users[user.Key()]; exists {
		return storages.ErrAlreadyExists
	}
	copied := *user
	m.users[user.Key()] = &copied
	return nil
}

func (m *MockStorage) head(user, fondo string) string {
	head := ""
	for _, tx := range m.transactions {
		if tx.User == user && tx.Fondo == fondo {
			head = tx.ID
		}
	}
	return head
}

func (m *MockStorage) AppendEntry(ctx context.Context, w *storages.LedgerWrite) error {
	if m.beforeAppend != nil {
		hook := m.beforeAppend
		m.beforeAppend = nil
		hook()
	}
	if m.failAppend != nil {
		return m.failAppend
	}
	if m.conflictsLeft > 0 {
		m.conflictsLeft--
		return storages.ErrConflict
	}

	u, exists := m.users[w.User]
	if !exists {
		return storages.ErrNotFound
	}
	if !u.Saldo.Equal(w.ExpectedSaldo) {
		return storages.ErrConflict
	}
	if w.CheckHead && m.head(w.Entry.User, w.Entry.Fondo) != w.ExpectedHead {
		return storages.ErrConflict
	}

	m.transactions = append(m.transactions, w.Entry)
	if w.NewSaldo != nil {
		u.Saldo = *w.NewSaldo
	}
	return nil
}

func (m *MockStorage) ListUserTransactions(ctx context.Context, user string) ([]storages.Transaction, error) {
	var result []storages.Transaction
	for _, tx := range m.transactions {
		if tx.User == user {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (m *MockStorage) ListPositionEntries(ctx context.Context, user, fondo string) ([]storages.Transaction, error) {
	var result []storages.Transaction
	for _, tx := range m.transactions {
		if tx.User == user && tx.Fondo == fondo {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MockStorage) Close() error {
	return nil
}

// MockPublisher - мок для Publisher
type MockPublisher struct {
	events []notification.Event
	err    error
}

func (p *MockPublisher) Publish(ctx context.Context, event *notification.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *event)
	return nil
}

var errStoreDown = errors.New("connection refused")
