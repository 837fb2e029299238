package model

import (
	"fmt"
	"time"
)

// BugStatus — статус бага. Линейный жизненный цикл с чередованием
// шагов разработчика и тестировщика:
// ASSIGNED → IN_PROGRESS → FIXED → TESTING → CLOSED.
type BugStatus string

const (
	// BugAssigned — баг создан и назначен разработчику.
	BugAssigned BugStatus = "ASSIGNED"
	// BugInProgress — разработчик взял баг в работу.
	BugInProgress BugStatus = "IN_PROGRESS"
	// BugFixed — разработчик сообщил об исправлении.
	BugFixed BugStatus = "FIXED"
	// BugTesting — тестировщик проверяет исправление.
	BugTesting BugStatus = "TESTING"
	// BugClosed — баг закрыт тестировщиком (конечный статус).
	BugClosed BugStatus = "CLOSED"
)

// ParseBugStatus преобразует строку в BugStatus.
func ParseBugStatus(s string) (BugStatus, error) {
	st := BugStatus(s)
	switch st {
	case BugAssigned, BugInProgress, BugFixed, BugTesting, BugClosed:
		return st, nil
	default:
		return "", fmt.Errorf("недопустимый статус бага: %q, допустимые: ASSIGNED, IN_PROGRESS, FIXED, TESTING, CLOSED", s)
	}
}

// BugPriority — приоритет бага.
type BugPriority string

const (
	PriorityLow      BugPriority = "LOW"
	PriorityMedium   BugPriority = "MEDIUM"
	PriorityHigh     BugPriority = "HIGH"
	PriorityCritical BugPriority = "CRITICAL"
)

// ParseBugPriority преобразует строку в BugPriority.
func ParseBugPriority(s string) (BugPriority, error) {
	p := BugPriority(s)
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return p, nil
	default:
		return "", fmt.Errorf("недопустимый приоритет: %q, допустимые: LOW, MEDIUM, HIGH, CRITICAL", s)
	}
}

// Bug — баг, привязанный к проекту.
// Создаётся тестировщиком, исполняется разработчиком,
// удаляется мягко (deleted_at).
type Bug struct {
	// ID — идентификатор (serial)
	ID int `json:"id"`
	// Title — краткое описание
	Title string `json:"title"`
	// Description — подробное описание
	Description string `json:"description"`
	// ProjectID — родительский проект
	ProjectID int `json:"projectId"`
	// CreatedBy — тестировщик, создавший баг (фиксируется при создании)
	CreatedBy int `json:"createdBy"`
	// AssignedTo — назначенный разработчик
	AssignedTo int `json:"assignedTo"`
	// Priority — приоритет (LOW, MEDIUM, HIGH, CRITICAL)
	Priority BugPriority `json:"priority"`
	// Status — статус жизненного цикла
	Status BugStatus `json:"status"`
	// DueDate — срок исправления (при создании — строго в будущем)
	DueDate time.Time `json:"dueDate"`
	// CreatedAt — время создания записи
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt — отметка мягкого удаления (nil — запись жива)
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// BugRow — строка списка багов, обогащённая названием проекта
// и именами разработчика и создателя.
type BugRow struct {
	ID             int         `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Priority       BugPriority `json:"priority"`
	Status         BugStatus   `json:"status"`
	DueDate        time.Time   `json:"dueDate"`
	ProjectID      int         `json:"projectId"`
	ProjectName    *string     `json:"projectName"`
	AssignedToID   int         `json:"assignedToId"`
	AssignedToName *string     `json:"assignedToName"`
	CreatedByID    int         `json:"createdById"`
	CreatedByName  *string     `json:"createdByName"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}
