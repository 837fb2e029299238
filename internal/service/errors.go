// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"

	"bugtracker/internal/domain/model"
)

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrForbidden — операция запрещена для роли или владения вызывающего.
	ErrForbidden = errors.New("операция запрещена")
	// ErrInvalidTransition — недопустимый переход статуса.
	ErrInvalidTransition = errors.New("недопустимый переход статуса")
	// ErrInvalidCredentials — неверный email или пароль.
	ErrInvalidCredentials = errors.New("неверные учётные данные")
)

// Actor — вызывающий операцию пользователь, извлечённый из токена.
type Actor struct {
	// ID — идентификатор пользователя
	ID int
	// Role — роль (ADMIN, DEVELOPER, TESTER)
	Role model.Role
}
