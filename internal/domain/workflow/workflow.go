// Пакет workflow — конечные автоматы статусов проектов и багов.
//
// Проект: TODO → DOING → DONE (DONE — конечный статус).
// Переходы выполняет только назначенный разработчик.
//
// Баг: ASSIGNED → IN_PROGRESS → FIXED → TESTING → CLOSED.
// Шаги чередуются по ролям: назначенный разработчик ведёт баг до FIXED,
// создавший тестировщик — до CLOSED. Других переходов нет, администратор
// статусы не меняет.
//
// Автоматы не хранят состояние — текущий статус живёт в строке БД,
// здесь только матрицы допустимых переходов.
package workflow

import (
	"fmt"

	"bugtracker/internal/domain/model"
)

// TransitionError — ошибка недопустимого перехода статуса.
type TransitionError struct {
	// From — текущий статус
	From string
	// To — запрошенный статус
	To string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("недопустимый переход статуса: %s → %s", e.From, e.To)
}

// --- Проекты ---

// projectTransitions — матрица переходов проекта.
// Ключ — текущий статус, значение — единственный допустимый следующий.
// DONE отсутствует в матрице: конечный статус.
var projectTransitions = map[model.ProjectStatus]model.ProjectStatus{
	model.StatusTodo:  model.StatusDoing,
	model.StatusDoing: model.StatusDone,
}

// NextProjectStatus возвращает единственный допустимый следующий статус проекта.
// Для конечного статуса DONE возвращает false.
func NextProjectStatus(from model.ProjectStatus) (model.ProjectStatus, bool) {
	next, ok := projectTransitions[from]
	return next, ok
}

// CheckProjectTransition проверяет переход проекта from → to.
// Возвращает TransitionError, если to не является допустимым преемником from.
func CheckProjectTransition(from, to model.ProjectStatus) error {
	next, ok := projectTransitions[from]
	if !ok || next != to {
		return &TransitionError{From: string(from), To: string(to)}
	}
	return nil
}

// --- Баги ---

// developerBugTransitions — шаги жизненного цикла бага, выполняемые
// назначенным разработчиком.
var developerBugTransitions = map[model.BugStatus]model.BugStatus{
	model.BugAssigned:   model.BugInProgress,
	model.BugInProgress: model.BugFixed,
}

// testerBugTransitions — шаги, выполняемые создавшим баг тестировщиком.
var testerBugTransitions = map[model.BugStatus]model.BugStatus{
	model.BugFixed:   model.BugTesting,
	model.BugTesting: model.BugClosed,
}

// NextBugStatus возвращает допустимый следующий статус бага для роли.
// Для ролей вне жизненного цикла (ADMIN) и для статусов, в которых
// у роли нет хода, возвращает false.
func NextBugStatus(role model.Role, from model.BugStatus) (model.BugStatus, bool) {
	switch role {
	case model.RoleDeveloper:
		next, ok := developerBugTransitions[from]
		return next, ok
	case model.RoleTester:
		next, ok := testerBugTransitions[from]
		return next, ok
	default:
		return "", false
	}
}

// CheckBugTransition проверяет переход бага from → to для роли.
// Возвращает TransitionError, если комбинация (роль, from, to)
// не входит в таблицу допустимых переходов.
func CheckBugTransition(role model.Role, from, to model.BugStatus) error {
	next, ok := NextBugStatus(role, from)
	if !ok || next != to {
		return &TransitionError{From: string(from), To: string(to)}
	}
	return nil
}
