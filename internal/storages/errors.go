package storages

import "errors"

var (
	// ErrNotFound запись отсутствует в хранилище
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists условная вставка не выполнена: запись уже существует
	ErrAlreadyExists = errors.New("already exists")

	// ErrConflict условие записи не выполнено из-за конкурентного изменения
	ErrConflict = errors.New("conflicting concurrent update")
)
