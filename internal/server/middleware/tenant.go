package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// problem mirrors the RFC 9457 body huma writes, so clients see one error
// shape whether a request is refused here or by a handler.
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem{Title: http.StatusText(status), Status: status, Detail: detail})
}

// RequireTenant refuses requests that reach board routes without a tenant.
// Every board query is tenant-scoped, so there is nothing to serve.
func RequireTenant() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tid, ok := TenantIDFromContext(r.Context())
			if !ok || tid == uuid.Nil {
				writeProblem(w, http.StatusForbidden, "valid tenant required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
