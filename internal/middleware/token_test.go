package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func tokenTestServer(expected string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return RequireToken(expected)(ok)
}

func TestRequireToken_DisabledWhenUnset(t *testing.T) {
	h := tokenTestServer("")

	req := httptest.NewRequest(http.MethodGet, "/users/count", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireToken_ValidToken(t *testing.T) {
	h := tokenTestServer("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/users/count?token=s3cret", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireToken_MissingToken(t *testing.T) {
	h := tokenTestServer("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/users/count", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRequireToken_WrongToken(t *testing.T) {
	h := tokenTestServer("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/users/count?token=wrong", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
