package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServeDocs(t *testing.T) {
	rr := httptest.NewRecorder()
	ServeDocs("/docs/openapi.yaml").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/docs", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Contains(t, body, `url: "`)
	assert.Contains(t, body, "openapi.yaml")
	assert.Contains(t, body, "persistAuthorization: true")
	assert.Contains(t, body, `req.headers["Idempotency-Key"] = crypto.randomUUID()`)
}

func TestServeDocs_EscapesSpecURL(t *testing.T) {
	rr := httptest.NewRecorder()
	ServeDocs(`/x"});alert(1);//`).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/docs", nil))

	assert.NotContains(t, rr.Body.String(), `/x"});`)
}

func TestServeSpec(t *testing.T) {
	rr := httptest.NewRecorder()
	ServeSpec([]byte("openapi: 3.0.3\n")).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/docs/openapi.yaml", nil))

	assert.Equal(t, "application/yaml", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "openapi: 3.0.3\n", rr.Body.String())
}
