package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	apperrors "github.com/behancebrothers-ops/jjfg-sub000/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func response(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestParseResponseError_Structured(t *testing.T) {
	cases := []struct {
		status   int
		sentinel error
	}{
		{http.StatusNotFound, apperrors.ErrNotFound},
		{http.StatusBadRequest, apperrors.ErrInvalidInput},
		{http.StatusConflict, apperrors.ErrConflict},
		{http.StatusUnauthorized, apperrors.ErrUnauthorized},
		{http.StatusForbidden, apperrors.ErrForbidden},
		{http.StatusTooManyRequests, apperrors.ErrRateLimited},
		{http.StatusServiceUnavailable, apperrors.ErrServiceUnavail},
	}

	for _, tc := range cases {
		err := ParseResponseError(response(tc.status, `{"error":{"code":"X","message":"nope"}}`), "notification-service")
		assert.True(t, errors.Is(err, tc.sentinel), "status %d: %v", tc.status, err)
	}
}

func TestParseResponseError_ServerError(t *testing.T) {
	err := ParseResponseError(response(http.StatusBadGateway, `{"error":{"code":"UPSTREAM","message":"bad"}}`), "notification-service")
	assert.Contains(t, err.Error(), "notification-service server error (502/UPSTREAM)")
}

func TestParseResponseError_OtherStatusKeepsCode(t *testing.T) {
	err := ParseResponseError(response(http.StatusGone, `{"error":{"code":"GONE","message":"expired"}}`), "svc")
	var appErr *apperrors.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "GONE", appErr.Code)
	assert.Equal(t, http.StatusGone, appErr.Status)
}

func TestParseResponseError_Unstructured(t *testing.T) {
	err := ParseResponseError(response(http.StatusInternalServerError, "<html>oops</html>"), "svc")
	assert.Equal(t, "svc returned status 500: <html>oops</html>", err.Error())
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(400))
	assert.True(t, IsClientError(499))
	assert.False(t, IsClientError(500))
	assert.False(t, IsClientError(200))
}
