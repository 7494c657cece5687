package apidoc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", doc.Version())
	assert.Contains(t, doc.Paths(), "/auth/{provider}/exchange-token")
	assert.Contains(t, doc.Paths(), "/auth/check-connection/{provider}/{userId}")
	assert.Contains(t, doc.Paths(), "/instagram/webhook")

	op := doc.Operation(http.MethodPost, "/auth/{provider}/exchange-token")
	require.NotNil(t, op)
	assert.Equal(t, "exchangeToken", op.OperationID)
	assert.Nil(t, doc.Operation(http.MethodGet, "/auth/{provider}/exchange-token"))
	assert.Nil(t, doc.Operation(http.MethodGet, "/nowhere"))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`openapi: 3.0.3
info:
  title: broken
paths: {}
`))
	assert.Error(t, err)
}

func TestServeHTTP(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	doc.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "3.0.3", decoded["openapi"])
}
