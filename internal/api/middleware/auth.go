package middleware

import (
	"context"
	"net/http"

	"github.com/lesnaya-zaimka/booking-service/internal/api/handlers"
)

const msgMissingStaffID = "отсутствует идентификатор сотрудника"

// HeaderStaffID заголовок с идентификатором сотрудника
const HeaderStaffID = "X-Staff-ID"

type ctxKey int

const staffIDKey ctxKey = iota

// Auth middleware для служебных маршрутов: требует заголовок X-Staff-ID
// и кладёт его значение в контекст запроса
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		staffID := r.Header.Get(HeaderStaffID)
		if staffID == "" {
			handlers.RespondUnauthorized(w, msgMissingStaffID)
			return
		}

		ctx := context.WithValue(r.Context(), staffIDKey, staffID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetStaffID извлекает идентификатор сотрудника из контекста запроса
func GetStaffID(ctx context.Context) (string, bool) {
	staffID, ok := ctx.Value(staffIDKey).(string)
	return staffID, ok
}
