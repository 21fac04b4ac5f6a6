package httpclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Timeout:      50 * time.Millisecond,
		FailureRatio: 0.5,
		MinRequests:  2,
	}
}

func TestCircuitBreaker_TripsOn5xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(New(fastConfig(0)), testBreakerConfig("trip-test"), testLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
		_, err := cb.Do(ctx, req)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
	_, err := cb.Do(ctx, req)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_4xxIsNotAFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(New(fastConfig(0)), testBreakerConfig("4xx-test"), testLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
		resp, err := cb.Do(ctx, req)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_RecoversAfterTimeout(t *testing.T) {
	healthy := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(New(fastConfig(0)), testBreakerConfig("recover-test"), testLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
		_, _ = cb.Do(ctx, req)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	healthy = true
	time.Sleep(80 * time.Millisecond)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
	resp, err := cb.Do(ctx, req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestBreakerSettings_IsFailureFilter(t *testing.T) {
	business := errors.New("card declined")
	settings := BreakerSettings(testBreakerConfig("filter-test"), testLogger(), func(err error) bool {
		return !errors.Is(err, business)
	})
	cb := gobreaker.NewCircuitBreaker[int](settings)

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(func() (int, error) { return 0, business })
		require.ErrorIs(t, err, business)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
