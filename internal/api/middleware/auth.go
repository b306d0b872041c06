package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SlotBooking/internal/api/handlers"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	msgMissingUserID = "отсутствует или некорректен заголовок X-User-ID"
	msgInvalidRole   = "отсутствует или некорректен заголовок X-User-Role"
	msgRoleForbidden = "действие недоступно для вашей роли"
)

// Role роль вызывающего пользователя
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

type contextKey string

const (
	userIDKey   contextKey = "userID"
	userRoleKey contextKey = "userRole"
)

// Auth читает идентификатор и роль пользователя из заголовков.
// Аутентификация выполняется шлюзом перед сервисом, здесь только проверка формата.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(strings.TrimSpace(r.Header.Get(HeaderUserID)))
		if err != nil || userID == uuid.Nil {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		role := Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole))))
		if role != RoleTeacher && role != RoleStudent {
			handlers.RespondUnauthorized(w, msgInvalidRole)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, userRoleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole пропускает только пользователей с указанной ролью, используется после Auth
func RequireRole(role Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if current, ok := GetUserRole(r.Context()); !ok || current != role {
			handlers.RespondForbidden(w, msgRoleForbidden)
			return
		}
		next(w, r)
	}
}

// GetUserID возвращает ID пользователя, положенный в контекст Auth
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}

// GetUserRole возвращает роль пользователя
func GetUserRole(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(userRoleKey).(Role)
	return role, ok
}

// WithUser кладет пользователя в контекст так же, как Auth (для тестов хендлеров)
func WithUser(ctx context.Context, userID uuid.UUID, role Role) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userRoleKey, role)
}
