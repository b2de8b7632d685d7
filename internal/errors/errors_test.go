package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestAppError(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := NewStorageError("failed to read", cause).WithContext("path", "a.csv")

	assert.Equal(t, "[STORAGE] failed to read: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "a.csv", err.Context["path"])

	assert.Equal(t, "[CONFIG] no column", NewConfigError("no column", nil).Error())
	assert.Equal(t, "[NOT_FOUND] dictionary not found", NewNotFoundError("dictionary").Error())
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("prepare: %w", NewConfigError("first name column not found", nil))

	typ, ok := TypeOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrTypeConfig, typ)
	assert.True(t, IsType(wrapped, ErrTypeConfig))
	assert.False(t, IsType(wrapped, ErrTypeStorage))

	_, ok = TypeOf(io.EOF)
	assert.False(t, ok)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/api/lookup").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeNotFound, got["type"])
	assert.Equal(t, float64(404), got["status"])
	assert.Equal(t, "abc", got["trace_id"])
	assert.Equal(t, "/api/lookup", got["instance"])
	assert.NotContains(t, got, "detail")
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"context cancelled", context.Canceled, http.StatusGatewayTimeout, TypeTimeout},
		{"api error", ErrDictionaryMissing, http.StatusServiceUnavailable, TypeDictionaryAbsent},
		{"app not found", NewNotFoundError("name"), http.StatusNotFound, TypeNotFound},
		{"plain error", io.ErrClosedPipe, http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newTestLogger()
			h := NewErrorHandler(logger, false)

			req := httptest.NewRequest(http.MethodGet, "/api/lookup", nil)
			rec := httptest.NewRecorder()
			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.NotContains(t, body, "stack")
			assert.Contains(t, logs.String(), "request failed")
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	logger, _ := newTestLogger()
	h := NewErrorHandler(logger, false)
	rec := httptest.NewRecorder()

	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, rec.Body.Len())
}

func TestErrorHandler_Middleware(t *testing.T) {
	logger, logs := newTestLogger()
	h := NewErrorHandler(logger, true)

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	h.Middleware(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lookup", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "boom", body["panic"])
	assert.Contains(t, body, "stack")
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestErrorHandler_NotFoundAndMethod(t *testing.T) {
	logger, _ := newTestLogger()
	h := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/lookup", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), "Method DELETE is not allowed")
}
