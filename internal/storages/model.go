package storages

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// User представляет клиента, подписанного на фонды
type User struct {
	Cedula    string          `db:"cedula"`
	Correo    string          `db:"correo"`
	Telefono  string          `db:"telefono"`
	Saldo     decimal.Decimal `db:"saldo"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// Key возвращает составной ключ пользователя
func (u *User) Key() UserKey {
	return UserKey{Cedula: u.Cedula, Correo: u.Correo}
}

// UserKey составной ключ (cedula, correo)
type UserKey struct {
	Cedula string
	Correo string
}

// Fund представляет инвестиционный фонд из каталога
type Fund struct {
	Nombre      string          `db:"nombre"`
	Categoria   string          `db:"categoria"`
	MontoMinimo decimal.Decimal `db:"monto_minimo"`
	Descripcion string          `db:"descripcion"`

	// Extra хранит прочие плоские атрибуты записи: string или decimal.Decimal
	Extra map[string]interface{} `db:"-"`
}

// SetExtra сохраняет дополнительный атрибут фонда
func (f *Fund) SetExtra(key string, value interface{}) {
	if f.Extra == nil {
		f.Extra = make(map[string]interface{})
	}
	f.Extra[key] = value
}

// Transaction представляет запись журнала операций
type Transaction struct {
	ID              string          `db:"id"`
	User            string          `db:"user_cedula"`
	Fondo           string          `db:"fondo"`
	TipoTransaccion string          `db:"tipo_transaccion"`
	Monto           decimal.Decimal `db:"monto"`
	CreatedAt       time.Time       `db:"created_at"`
}

// Типы операций журнала
const (
	TipoApertura    = "APERTURA"
	TipoDeposito    = "DEPOSITO"
	TipoCancelacion = "CANCELACION"
)

// IsKind сравнивает тип операции без учета регистра
func (t *Transaction) IsKind(kind string) bool {
	return strings.EqualFold(strings.TrimSpace(t.TipoTransaccion), kind)
}

// LedgerWrite описывает условную запись в журнал.
// Запись применяется только если баланс пользователя и последняя запись
// журнала по паре (пользователь, фонд) не изменились с момента чтения.
type LedgerWrite struct {
	Entry         Transaction
	User          UserKey
	ExpectedSaldo decimal.Decimal

	// NewSaldo nil означает, что баланс пользователя не меняется
	NewSaldo *decimal.Decimal

	// CheckHead включает проверку ExpectedHead (пустая строка: записей еще нет)
	CheckHead    bool
	ExpectedHead string
}
