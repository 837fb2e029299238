package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"bugtracker/internal/auth"
	"bugtracker/internal/domain/model"
)

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testUser — пользователь для выпуска тестовых токенов.
func testUser(status model.UserStatus) *model.User {
	return &model.User{
		ID:     7,
		Email:  "dev@example.com",
		Role:   model.RoleDeveloper,
		Status: status,
	}
}

// okHandler отвечает 200 и пишет claims из контекста.
func okHandler(t *testing.T, gotClaims **auth.Claims) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotClaims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("middleware-test-secret", time.Hour)
	jwtAuth := NewJWTAuth(tokens, testLogger())

	validToken, err := tokens.Issue(testUser(model.StatusActive))
	if err != nil {
		t.Fatalf("выпуск токена: %v", err)
	}
	inactiveToken, err := tokens.Issue(testUser(model.StatusInactive))
	if err != nil {
		t.Fatalf("выпуск токена: %v", err)
	}
	expiredToken, err := auth.NewTokenManager("middleware-test-secret", -time.Hour).Issue(testUser(model.StatusActive))
	if err != nil {
		t.Fatalf("выпуск просроченного токена: %v", err)
	}
	foreignToken, err := auth.NewTokenManager("another-secret", time.Hour).Issue(testUser(model.StatusActive))
	if err != nil {
		t.Fatalf("выпуск чужого токена: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantCode   string
	}{
		{"без заголовка", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"не Bearer", "Basic abc123", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"пустой токен", "Bearer ", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"мусор вместо токена", "Bearer not-a-jwt", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"просроченный токен", "Bearer " + expiredToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"чужая подпись", "Bearer " + foreignToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"деактивированная учётная запись", "Bearer " + inactiveToken, http.StatusForbidden, "FORBIDDEN"},
		{"валидный токен", "Bearer " + validToken, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotClaims *auth.Claims
			handler := jwtAuth.Middleware()(okHandler(t, &gotClaims))

			req := httptest.NewRequest(http.MethodGet, "/api/bug/getBugList", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("статус = %d, хотели %d, тело: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if tt.wantCode != "" {
				var body struct {
					Message string `json:"message"`
					Error   struct {
						Code string `json:"code"`
					} `json:"error"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("разбор тела ошибки: %v", err)
				}
				if body.Error.Code != tt.wantCode {
					t.Errorf("code = %q, хотели %q", body.Error.Code, tt.wantCode)
				}
				if body.Message == "" {
					t.Error("верхнеуровневый message пустой")
				}
				return
			}

			if gotClaims == nil {
				t.Fatal("claims не попали в контекст")
			}
			if gotClaims.UserID != 7 || gotClaims.Role != model.RoleDeveloper {
				t.Errorf("claims: UserID=%d Role=%q", gotClaims.UserID, gotClaims.Role)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tokens := auth.NewTokenManager("middleware-test-secret", time.Hour)
	jwtAuth := NewJWTAuth(tokens, testLogger())

	devToken, err := tokens.Issue(testUser(model.StatusActive))
	if err != nil {
		t.Fatalf("выпуск токена: %v", err)
	}

	var gotClaims *auth.Claims
	allowed := jwtAuth.Middleware()(RequireRole(model.RoleAdmin, model.RoleDeveloper)(okHandler(t, &gotClaims)))
	denied := jwtAuth.Middleware()(RequireRole(model.RoleAdmin)(okHandler(t, &gotClaims)))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/getUser", nil)
	req.Header.Set("Authorization", "Bearer "+devToken)
	rec := httptest.NewRecorder()
	allowed.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("подходящая роль: статус %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/getUser", nil)
	req.Header.Set("Authorization", "Bearer "+devToken)
	rec = httptest.NewRecorder()
	denied.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("чужая роль: статус %d, хотели 403", rec.Code)
	}

	// Без JWTAuth в цепочке claims нет — 401
	rec = httptest.NewRecorder()
	bare := RequireRole(model.RoleAdmin)(okHandler(t, &gotClaims))
	bare.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/getUser", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("без claims: статус %d, хотели 401", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	var got string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
	}))

	// Сгенерированный идентификатор
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if got == "" || rec.Header().Get("X-Request-ID") != got {
		t.Errorf("request id: контекст %q, заголовок %q", got, rec.Header().Get("X-Request-ID"))
	}

	// Клиентский идентификатор сохраняется
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-id-1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got != "client-id-1" {
		t.Errorf("клиентский request id потерян: %q", got)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/project/projectList", "/api/project/projectList"},
		{"/api/project/getProjectById/42", "/api/project/getProjectById/{id}"},
		{"/api/bug/updateBugStatus/7", "/api/bug/updateBugStatus/{id}"},
		{"/api/admin/status/3", "/api/admin/status/{id}"},
		{"/metrics", "/metrics"},
		{"/api/bug/getBugById/abc", "/api/bug/getBugById/abc"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, хотели %q", tt.path, got, tt.want)
		}
	}
}
