package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUserNotFound пользователь с указанной cedula не существует
	ErrUserNotFound = errors.New("user not found")

	// ErrFundNotFound фонд (nombre, categoria) отсутствует в каталоге
	ErrFundNotFound = errors.New("fund not found")
)

// ValidationError ошибка входных данных запроса
type ValidationError struct {
	Message string
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Missing, ", "))
	}
	return e.Message
}

// StoreError сбой хранилища на шаге операции
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
