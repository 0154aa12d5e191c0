package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/api/shared"
	"github.com/stretchr/testify/require"
)

// newRequest builds a request with an optional JSON body, an authenticated
// user (skipped for uuid.Nil) and chi path parameters.
func newRequest(
	t *testing.T,
	method, target string,
	body interface{},
	userID uuid.UUID,
	params map[string]string,
) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	ctx := req.Context()
	if userID != uuid.Nil {
		ctx = shared.WithUserID(ctx, userID)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

// decodeError reads an ErrorResponse from rr.
func decodeError(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp), "body: %s", rr.Body.String())
	return resp
}

func ptr[T any](v T) *T { return &v }
