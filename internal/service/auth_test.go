package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"bugtracker/internal/auth"
	"bugtracker/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager("unit-test-secret-key", 24*time.Hour)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewAuthService(store, testTokens(), testLogger())

	hash, err := auth.HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := store.addUser("Тестировщик", model.RoleTester)
	u.Email = "qa@example.com"
	u.Password = hash

	// Успешный вход
	token, summary, err := svc.Login(ctx, "qa@example.com", "correct-password")
	if err != nil {
		t.Fatalf("Login() ошибка: %v", err)
	}
	if token == "" {
		t.Error("Login() вернул пустой токен")
	}
	if summary.ID != u.ID || summary.Role != model.RoleTester {
		t.Errorf("Login() summary = %+v", summary)
	}

	// Токен содержит корректные claims
	claims, err := testTokens().Verify(token)
	if err != nil {
		t.Fatalf("Verify() ошибка: %v", err)
	}
	if claims.UserID != u.ID || claims.Role != model.RoleTester {
		t.Errorf("claims = %+v", claims)
	}

	// Неизвестный email — NotFound
	if _, _, err := svc.Login(ctx, "nobody@example.com", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Неизвестный email: ожидали ErrNotFound, получили: %v", err)
	}

	// Неверный пароль — InvalidCredentials
	if _, _, err := svc.Login(ctx, "qa@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Неверный пароль: ожидали ErrInvalidCredentials, получили: %v", err)
	}

	// Пустые учётные данные — Validation
	if _, _, err := svc.Login(ctx, "", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("Пустые данные: ожидали ErrValidation, получили: %v", err)
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewAuthService(store, testTokens(), testLogger())

	admin := store.addUser("Админ", model.RoleAdmin)
	tester := store.addUser("Тестировщик", model.RoleTester)
	adminActor := Actor{ID: admin.ID, Role: model.RoleAdmin}

	valid := RegisterInput{Name: "Новый", Email: "new@example.com",
		Password: "secret123", Role: "DEVELOPER"}

	// Не администратор — Forbidden
	if _, err := svc.Register(ctx, valid, Actor{ID: tester.ID, Role: model.RoleTester}); !errors.Is(err, ErrForbidden) {
		t.Errorf("Тестировщик регистрирует: ожидали ErrForbidden, получили: %v", err)
	}

	// Регистрация администратора запрещена
	adminInput := valid
	adminInput.Role = "ADMIN"
	if _, err := svc.Register(ctx, adminInput, adminActor); !errors.Is(err, ErrValidation) {
		t.Errorf("Роль ADMIN: ожидали ErrValidation, получили: %v", err)
	}

	// Неизвестная роль
	badRole := valid
	badRole.Role = "MANAGER"
	if _, err := svc.Register(ctx, badRole, adminActor); !errors.Is(err, ErrValidation) {
		t.Errorf("Роль MANAGER: ожидали ErrValidation, получили: %v", err)
	}

	// Пустые поля
	empty := RegisterInput{Name: "X", Role: "TESTER"}
	if _, err := svc.Register(ctx, empty, adminActor); !errors.Is(err, ErrValidation) {
		t.Errorf("Пустые поля: ожидали ErrValidation, получили: %v", err)
	}

	// Успешная регистрация
	u, err := svc.Register(ctx, valid, adminActor)
	if err != nil {
		t.Fatalf("Register() ошибка: %v", err)
	}
	if u.Role != model.RoleDeveloper || u.Status != model.StatusActive {
		t.Errorf("Register(): Role=%q Status=%q", u.Role, u.Status)
	}
	// Пароль хранится в виде bcrypt-хэша
	if u.Password == "secret123" {
		t.Error("Пароль сохранён открытым текстом")
	}
	if !auth.CheckPassword("secret123", u.Password) {
		t.Error("Хэш не совпадает с исходным паролем")
	}

	// Повторный email — Conflict
	if _, err := svc.Register(ctx, valid, adminActor); !errors.Is(err, ErrConflict) {
		t.Errorf("Повторный email: ожидали ErrConflict, получили: %v", err)
	}
}
