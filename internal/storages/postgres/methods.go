package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gw-fund-subscriptions/internal/storages"
)

// ListFunds возвращает весь каталог фондов
func (s *PostgresStorage) ListFunds(ctx context.Context) ([]storages.Fund, error) {
	query := `
		SELECT nombre, categoria, monto_minimo, descripcion
		FROM fondos
		ORDER BY categoria, nombre
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Errorf("Failed to query funds: %v", err)
		return nil, fmt.Errorf("failed to query funds: %w", err)
	}
	defer rows.Close()

	funds := make([]storages.Fund, 0)
	for rows.Next() {
		var fund storages.Fund
		if err := rows.Scan(&fund.Nombre, &fund.Categoria, &fund.MontoMinimo, &fund.Descripcion); err != nil {
			s.logger.Errorf("Failed to scan fund: %v", err)
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, fund)
	}

	if err := rows.Err(); err != nil {
		s.logger.Errorf("Error iterating funds: %v", err)
		return nil, fmt.Errorf("failed to iterate funds: %w", err)
	}

	return funds, nil
}

// GetFund возвращает фонд по ключу (nombre, categoria)
func (s *PostgresStorage) GetFund(ctx context.Context, nombre, categoria string) (*storages.Fund, error) {
	query := `
		SELECT nombre, categoria, monto_minimo, descripcion
		FROM fondos
		WHERE nombre = $1 AND categoria = $2
	`

	var fund storages.Fund
	err := s.db.QueryRowContext(ctx, query, nombre, categoria).Scan(
		&fund.Nombre,
		&fund.Categoria,
		&fund.MontoMinimo,
		&fund.Descripcion,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, storages.ErrNotFound
	}

	if err != nil {
		s.logger.Errorf("Failed to get fund: %v", err)
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}

	return &fund, nil
}

// GetUser возвращает пользователя по составному ключу
func (s *PostgresStorage) GetUser(ctx context.Context, key storages.UserKey) (*storages.User, error) {
	query := `
		SELECT cedula, correo, telefono, saldo, created_at, updated_at
		FROM users
		WHERE cedula = $1 AND correo = $2
	`

	return s.scanUser(s.db.QueryRowContext(ctx, query, key.Cedula, key.Correo))
}

// FindUserByCedula возвращает первого пользователя с указанной cedula
func (s *PostgresStorage) FindUserByCedula(ctx context.Context, cedula string) (*storages.User, error) {
	query := `
		SELECT cedula, correo, telefono, saldo, created_at, updated_at
		FROM users
		WHERE cedula = $1
		ORDER BY created_at
		LIMIT 1
	`

	return s.scanUser(s.db.QueryRowContext(ctx, query, cedula))
}

func (s *PostgresStorage) scanUser(row *sql.Row) (*storages.User, error) {
	var user storages.User
	err := row.Scan(
		&user.Cedula,
		&user.Correo,
		&user.Telefono,
		&user.Saldo,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, storages.ErrNotFound
	}

	if err != nil {
		s.logger.Errorf("Failed to get user: %v", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// CreateUser создает пользователя, если записи с таким ключом еще нет
func (s *PostgresStorage) CreateUser(ctx context.Context, user *storages.User) error {
	query := `
		INSERT INTO users (cedula, correo, telefono, saldo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cedula, correo) DO NOTHING
	`

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, query,
		user.Cedula,
		user.Correo,
		user.Telefono,
		user.Saldo,
		now,
		now,
	)
	if err != nil {
		s.logger.Errorf("Failed to create user: %v", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return storages.ErrAlreadyExists
	}

	user.CreatedAt = now
	user.UpdatedAt = now

	s.logger.Infof("Created user: cedula=%s", user.Cedula)
	return nil
}
