package daemon

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"mediajobs/internal/services"
)

func TestGuardAssignsRequestID(t *testing.T) {
	var seen string
	handler := guard("", func(w http.ResponseWriter, r *http.Request) {
		seen, _ = services.RequestIDFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if seen == "" || rec.Header().Get(requestIDHeader) != seen {
		t.Fatalf("request id not propagated: ctx=%q header=%q", seen, rec.Header().Get(requestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set(requestIDHeader, "caller-7")
	rec = httptest.NewRecorder()
	handler(rec, req)
	if seen != "caller-7" {
		t.Fatalf("caller request id ignored: %q", seen)
	}
}

func TestGuardRejectsWrongToken(t *testing.T) {
	called := false
	handler := guard("s3cret", func(http.ResponseWriter, *http.Request) { called = true })

	for _, header := range []string{"", "Bearer nope", "Basic s3cret"} {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: status %d", header, rec.Code)
		}
	}
	if called {
		t.Fatal("handler ran without a valid token")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	handler(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("handler did not run with a valid token")
	}
}
