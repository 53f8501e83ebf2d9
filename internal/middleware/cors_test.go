package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS_NoOriginsDeniesCrossOrigin(t *testing.T) {
	opts := CORS(nil)
	assert.Empty(t, opts.AllowedOrigins)
	if assert.NotNil(t, opts.AllowOriginFunc) {
		assert.False(t, opts.AllowOriginFunc(nil, "https://evil.example.com"))
	}
}

func TestCORS_ConfiguredOrigins(t *testing.T) {
	opts := CORS([]string{"https://ops.example.com"})
	assert.Equal(t, []string{"https://ops.example.com"}, opts.AllowedOrigins)
	assert.True(t, opts.AllowCredentials)
}

func TestCORS_WildcardDisablesCredentials(t *testing.T) {
	opts := CORS([]string{"*"})
	assert.False(t, opts.AllowCredentials)
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/stats", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
