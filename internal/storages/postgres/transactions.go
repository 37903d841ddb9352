package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gw-fund-subscriptions/internal/storages"
)

// serializationFailure код SQLSTATE при конфликте сериализуемых транзакций
const serializationFailure = "40001"

// AppendEntry атомарно добавляет запись в журнал и при необходимости обновляет баланс
func (s *PostgresStorage) AppendEntry(ctx context.Context, w *storages.LedgerWrite) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Блокируем строку пользователя до конца транзакции
	var current decimal.Decimal
	err = tx.QueryRowContext(ctx,
		"SELECT saldo FROM users WHERE cedula = $1 AND correo = $2 FOR UPDATE",
		w.User.Cedula, w.User.Correo,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return storages.ErrNotFound
	}
	if err != nil {
		return s.txError("lock user", err)
	}

	if !current.Equal(w.ExpectedSaldo) {
		s.logger.Debugf("Balance changed for %s: expected %s, got %s",
			w.User.Cedula, w.ExpectedSaldo, current)
		return storages.ErrConflict
	}

	if w.CheckHead {
		var head string
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM transactions
			 WHERE user_cedula = $1 AND fondo = $2
			 ORDER BY seq DESC LIMIT 1`,
			w.Entry.User, w.Entry.Fondo,
		).Scan(&head)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return s.txError("read ledger head", err)
		}
		if head != w.ExpectedHead {
			s.logger.Debugf("Ledger head moved for %s/%s", w.Entry.User, w.Entry.Fondo)
			return storages.ErrConflict
		}
	}

	if w.Entry.CreatedAt.IsZero() {
		w.Entry.CreatedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, user_cedula, fondo, tipo_transaccion, monto, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		w.Entry.ID,
		w.Entry.User,
		w.Entry.Fondo,
		w.Entry.TipoTransaccion,
		w.Entry.Monto,
		w.Entry.CreatedAt,
	)
	if err != nil {
		return s.txError("insert transaction", err)
	}

	if w.NewSaldo != nil {
		_, err = tx.ExecContext(ctx,
			"UPDATE users SET saldo = $1, updated_at = $2 WHERE cedula = $3 AND correo = $4",
			*w.NewSaldo, time.Now().UTC(), w.User.Cedula, w.User.Correo,
		)
		if err != nil {
			return s.txError("update balance", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return s.txError("commit", err)
	}

	s.logger.Infof("Appended ledger entry: ID=%s, Type=%s, User=%s, Fund=%s, Amount=%s",
		w.Entry.ID, w.Entry.TipoTransaccion, w.Entry.User, w.Entry.Fondo, w.Entry.Monto)
	return nil
}

// txError переводит ошибку сериализации в ErrConflict
func (s *PostgresStorage) txError(step string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == serializationFailure {
		return storages.ErrConflict
	}
	s.logger.Errorf("Ledger write failed at %s: %v", step, err)
	return fmt.Errorf("failed to %s: %w", step, err)
}

// ListUserTransactions возвращает все записи журнала пользователя
func (s *PostgresStorage) ListUserTransactions(ctx context.Context, user string) ([]storages.Transaction, error) {
	query := `
		SELECT id, user_cedula, fondo, tipo_transaccion, monto, created_at
		FROM transactions
		WHERE user_cedula = $1
		ORDER BY seq
	`

	return s.queryTransactions(ctx, query, user)
}

// ListPositionEntries возвращает записи журнала по паре (пользователь, фонд)
func (s *PostgresStorage) ListPositionEntries(ctx context.Context, user, fondo string) ([]storages.Transaction, error) {
	query := `
		SELECT id, user_cedula, fondo, tipo_transaccion, monto, created_at
		FROM transactions
		WHERE user_cedula = $1 AND fondo = $2
		ORDER BY seq
	`

	return s.queryTransactions(ctx, query, user, fondo)
}

func (s *PostgresStorage) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]storages.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("Failed to query transactions: %v", err)
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]storages.Transaction, 0)
	for rows.Next() {
		var tx storages.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.User,
			&tx.Fondo,
			&tx.TipoTransaccion,
			&tx.Monto,
			&tx.CreatedAt,
		)
		if err != nil {
			s.logger.Errorf("Failed to scan transaction: %v", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err = rows.Err(); err != nil {
		s.logger.Errorf("Error iterating transactions: %v", err)
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}
