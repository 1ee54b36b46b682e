package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/showcase/internal/repository"
	"github.com/templui/showcase/internal/service"
	"github.com/templui/showcase/internal/validation"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Field validation",
			err:            validation.Invalid("title", "title is required"),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"title is required","field":"title"}`,
		},
		{
			name:           "Duplicate field",
			err:            fmt.Errorf("create: %w", validation.Duplicate("title", "title is already in use")),
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"title is already in use","field":"title"}`,
		},
		{
			name:           "Wrapped not found",
			err:            fmt.Errorf("lookup: %w", repository.ErrEntityNotFound),
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"not found"}`,
		},
		{
			name:           "Media not found",
			err:            repository.ErrMediaNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"not found"}`,
		},
		{
			name:           "Media in use",
			err:            service.ErrMediaInUse,
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"media is still referenced"}`,
		},
		{
			name:           "Bad credentials",
			err:            service.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"invalid email or password"}`,
		},
		{
			name:           "Unexpected failure hides details",
			err:            errors.New("disk on fire"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst loginRequest

	decode := func(body string) error {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		return decodeJSON(httptest.NewRecorder(), r, &dst)
	}

	require.NoError(t, decode(`{"email":"admin@example.com","password":"secret"}`))
	assert.Equal(t, "admin@example.com", dst.Email)

	var fe *validation.FieldError
	err := decode(`{"email":`)
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "body", fe.Field)
	assert.Equal(t, "malformed JSON", fe.Message)

	err = decode(`{"email":"` + strings.Repeat("a", maxJSONBody) + `"}`)
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "request body too large", fe.Message)

	err = decode(`{"email":"admin@example.com"}`)
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "password", fe.Field)
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=25&offset=abc", nil)
	assert.Equal(t, 25, queryInt(r, "limit"))
	assert.Equal(t, 0, queryInt(r, "offset"))
	assert.Equal(t, 0, queryInt(r, "missing"))
}
