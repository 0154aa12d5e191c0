package shared

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name" validate:"required"`
	Age  int    `json:"age"  validate:"gte=0"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		requestBody string
		wantErr     error
		errContains string
	}{
		{name: "valid json", requestBody: `{"name": "test", "age": 30}`},
		{name: "invalid json", requestBody: `{"name": "test", "age": 30,}`, errContains: "invalid character"},
		{name: "empty body", requestBody: "", wantErr: ErrEmptyBody},
		{name: "unknown field", requestBody: `{"name": "test", "admin": true}`, errContains: "unknown field"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewBufferString(tc.requestBody))

			var target sample
			err := DecodeJSON(req, &target)

			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.errContains != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
			default:
				require.NoError(t, err)
				assert.Equal(t, sample{Name: "test", Age: 30}, target)
			}
		})
	}
}

type errorReader struct{}

func (errorReader) Read(p []byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestDecodeJSONWithReadError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", errorReader{})
	var target sample
	err := DecodeJSON(req, &target)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if !s.ok {
		return errors.New("custom validation failed")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sample{Name: "a"}))

	err := ValidateRequest(sample{Age: -1})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)

	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.EqualError(t, ValidateRequest(selfValidating{}), "custom validation failed")
}
