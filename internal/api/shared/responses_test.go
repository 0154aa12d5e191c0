package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requestWithLog returns a request whose context carries a trace ID and a
// capturing logger.
func requestWithLog(t *testing.T) (*http.Request, *logger.TestLogBuffer) {
	t.Helper()
	log, buf := logger.NewTestLogger()
	ctx := context.WithValue(context.Background(), TraceIDKey, "test-trace-id")
	ctx = logger.WithLogger(ctx, log)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	return req.WithContext(ctx), buf
}

func TestRespondWithJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusCreated, map[string]interface{}{"message": "success", "data": 123})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"success","data":123}`, w.Body.String())

	w = httptest.NewRecorder()
	RespondWithJSON(w, req, http.StatusOK, nil)
	assert.Equal(t, "null\n", w.Body.String())
}

type unencodable struct {
	Circular *unencodable
}

func TestRespondWithJSONEncodingError(t *testing.T) {
	req, buf := requestWithLog(t)
	w := httptest.NewRecorder()

	data := &unencodable{}
	data.Circular = data

	RespondWithJSON(w, req, http.StatusOK, data)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "failed to encode JSON response")
}

func TestRespondWithError(t *testing.T) {
	req, _ := requestWithLog(t)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusBadRequest, "Invalid request")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Invalid request", response.Error)
	assert.Equal(t, "test-trace-id", response.TraceID)
}

func TestRespondWithErrorNoTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusUnauthorized, "Unauthorized")

	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		message       string
		err           error
		elevate       bool
		expectedLevel string
	}{
		{"server error", http.StatusInternalServerError, "Internal server error", errors.New("database connection failed"), false, "ERROR"},
		{"client error", http.StatusBadRequest, "Bad request", errors.New("invalid input"), false, "DEBUG"},
		{"elevated client error", http.StatusUnauthorized, "Invalid credentials", errors.New("bad password"), true, "WARN"},
		{"rate limited", http.StatusTooManyRequests, "Too many requests", errors.New("rate limit exceeded"), false, "WARN"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, buf := requestWithLog(t)
			w := httptest.NewRecorder()

			var opts []ResponseOption
			if tc.elevate {
				opts = append(opts, WithElevatedLogLevel())
			}
			RespondWithErrorAndLog(w, req, tc.statusCode, tc.message, tc.err, opts...)

			assert.Equal(t, tc.statusCode, w.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tc.message, response.Error)
			assert.Equal(t, "test-trace-id", response.TraceID)

			entries, err := buf.GetLogEntries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tc.expectedLevel, entries[0]["level"])
			assert.Equal(t, "test-trace-id", entries[0]["trace_id"])
			assert.Equal(t, "*errors.errorString", entries[0]["error_type"])
		})
	}
}

func TestRespondWithErrorAndLogRedacts(t *testing.T) {
	req, buf := requestWithLog(t)
	w := httptest.NewRecorder()

	err := errors.New("connect failed: postgres://dmo:hunter2@db:5432/dmo")
	RespondWithErrorAndLog(w, req, http.StatusInternalServerError, "An unexpected error occurred", err)

	assert.NotContains(t, buf.String(), "hunter2")
	assert.NotContains(t, w.Body.String(), "postgres://")
}
