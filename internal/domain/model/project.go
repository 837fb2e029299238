package model

import (
	"fmt"
	"time"
)

// ProjectStatus — статус проекта. Линейный жизненный цикл TODO → DOING → DONE.
type ProjectStatus string

const (
	// StatusTodo — проект создан, работа не начата.
	StatusTodo ProjectStatus = "TODO"
	// StatusDoing — назначенный разработчик взял проект в работу.
	StatusDoing ProjectStatus = "DOING"
	// StatusDone — проект завершён (конечный статус).
	StatusDone ProjectStatus = "DONE"
)

// ParseProjectStatus преобразует строку в ProjectStatus.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	st := ProjectStatus(s)
	switch st {
	case StatusTodo, StatusDoing, StatusDone:
		return st, nil
	default:
		return "", fmt.Errorf("недопустимый статус проекта: %q, допустимые: TODO, DOING, DONE", s)
	}
}

// Project — проект.
// Хранится в таблице projects, удаляется мягко (deleted_at).
type Project struct {
	// ID — идентификатор (serial)
	ID int `json:"id"`
	// Name — название проекта
	Name string `json:"name"`
	// Description — описание (опционально)
	Description *string `json:"description"`
	// Status — статус (TODO, DOING, DONE)
	Status ProjectStatus `json:"status"`
	// CreatedBy — кто создал проект (TESTER или ADMIN)
	CreatedBy int `json:"createdBy"`
	// AssignedTo — назначенный разработчик (обязателен)
	AssignedTo int `json:"assignedTo"`
	// CreatedAt — время создания записи
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt — отметка мягкого удаления (nil — запись жива)
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// ProjectRow — строка списка проектов, обогащённая именами
// назначенного разработчика и создателя.
type ProjectRow struct {
	ID             int           `json:"id"`
	Name           string        `json:"name"`
	Description    *string       `json:"description"`
	Status         ProjectStatus `json:"status"`
	AssignedToID   int           `json:"assignedToId"`
	AssignedToName *string       `json:"assignedToName"`
	CreatedByID    *int          `json:"createdById"`
	CreatedByName  *string       `json:"createdByName"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// ProjectRef — минимальное представление проекта для выбора при создании бага.
type ProjectRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
