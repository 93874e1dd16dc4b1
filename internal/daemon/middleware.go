package daemon

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"mediajobs/internal/api"
	"mediajobs/internal/services"
)

const requestIDHeader = "X-Request-ID"

// guard tags each request with a correlation id and, when token is set,
// rejects requests without a matching bearer token.
func guard(token string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(services.WithRequestID(r.Context(), id))

		if token != "" && !bearerMatches(r, token) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "unauthorized"})
			return
		}
		next(w, r)
	}
}

func bearerMatches(r *http.Request, token string) bool {
	candidate, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(candidate)), []byte(token)) == 1
}
