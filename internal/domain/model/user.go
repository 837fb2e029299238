// Пакет model — доменные модели баг-трекера.
// Роли, статусы и приоритеты — закрытые перечисления, все проверки
// значений идут через Parse*-функции, строковые литералы в обработчиках
// не используются.
package model

import (
	"fmt"
	"time"
)

// Role — роль пользователя. Назначается при создании, меняется только администратором.
type Role string

const (
	// RoleAdmin — администратор: управление пользователями, удаление сущностей.
	RoleAdmin Role = "ADMIN"
	// RoleDeveloper — разработчик: исполняет проекты и баги.
	RoleDeveloper Role = "DEVELOPER"
	// RoleTester — тестировщик: создаёт проекты и баги.
	RoleTester Role = "TESTER"
)

// ParseRole преобразует строку в Role.
// Возвращает ошибку для недопустимых значений.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	switch r {
	case RoleAdmin, RoleDeveloper, RoleTester:
		return r, nil
	default:
		return "", fmt.Errorf("недопустимая роль: %q, допустимые: ADMIN, DEVELOPER, TESTER", s)
	}
}

// UserStatus — статус учётной записи.
type UserStatus string

const (
	// StatusActive — учётная запись активна.
	StatusActive UserStatus = "ACTIVE"
	// StatusInactive — учётная запись отключена администратором.
	StatusInactive UserStatus = "INACTIVE"
)

// Toggle возвращает противоположный статус.
func (s UserStatus) Toggle() UserStatus {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// ParseUserStatus преобразует строку в UserStatus.
func ParseUserStatus(s string) (UserStatus, error) {
	st := UserStatus(s)
	switch st {
	case StatusActive, StatusInactive:
		return st, nil
	default:
		return "", fmt.Errorf("недопустимый статус пользователя: %q, допустимые: ACTIVE, INACTIVE", s)
	}
}

// User — пользователь системы.
// Хранится в таблице users. Хэш пароля наружу не отдаётся.
type User struct {
	// ID — идентификатор (serial)
	ID int `json:"id"`
	// Name — имя пользователя
	Name string `json:"name"`
	// Email — адрес электронной почты (уникальный)
	Email string `json:"email"`
	// Password — bcrypt-хэш пароля, в JSON не сериализуется
	Password string `json:"-"`
	// Role — роль (ADMIN, DEVELOPER, TESTER)
	Role Role `json:"role"`
	// Status — статус учётной записи (ACTIVE, INACTIVE)
	Status UserStatus `json:"status"`
	// CreatedAt — время создания записи
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummary — минимальное представление пользователя для списков выбора
// (назначение разработчика) и ответа login.
type UserSummary struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Role   Role       `json:"role"`
	Status UserStatus `json:"status,omitempty"`
}

// Summary возвращает представление пользователя без хэша пароля.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Status: u.Status,
	}
}
