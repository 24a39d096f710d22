package httpapi

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"gitlab.com/yelinaung/backoffice/internal/logger"
)

// Roles recognised in the X-Role header set by the fronting proxy.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// RoleHeader carries the caller's role.
const RoleHeader = "X-Role"

// RequireRole rejects requests whose role is not one of allowed. A missing
// role is 401, a known but insufficient role is 403.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := strings.ToLower(strings.TrimSpace(r.Header.Get(RoleHeader)))
			if role == "" {
				writeError(w, http.StatusUnauthorized, "missing role")
				return
			}
			if !slices.Contains(allowed, role) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
