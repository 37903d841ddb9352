package storages

import "context"

// Storage определяет интерфейс для работы с хранилищем данных
type Storage interface {
	FundReader

	// User operations
	GetUser(ctx context.Context, key UserKey) (*User, error)
	FindUserByCedula(ctx context.Context, cedula string) (*User, error)
	CreateUser(ctx context.Context, user *User) error

	// Ledger operations
	AppendEntry(ctx context.Context, write *LedgerWrite) error
	ListUserTransactions(ctx context.Context, user string) ([]Transaction, error)
	ListPositionEntries(ctx context.Context, user, fondo string) ([]Transaction, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

// FundReader доступ к каталогу фондов только на чтение
type FundReader interface {
	ListFunds(ctx context.Context) ([]Fund, error)
	GetFund(ctx context.Context, nombre, categoria string) (*Fund, error)
}
