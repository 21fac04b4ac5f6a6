package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/config"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
)

const seedProduct = "11111111-1111-1111-1111-111111111111"

const seedJSON = `{
  "products": [
    {"id": "11111111-1111-1111-1111-111111111111", "name": "Product X", "base_price": 1000, "stock": 5, "published": true}
  ]
}`

func localConfig(t *testing.T, seedFile string) *config.Config {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", config.StorageMemory)
	t.Setenv("NOTIFIER", config.NotifierLog)
	t.Setenv("PAYMENT_PROVIDER", config.PaymentMock)
	t.Setenv("RATE_LIMIT_BACKEND", config.RateLimitLocal)
	t.Setenv("SEED_FILE", seedFile)
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewApp_MissingSeedFile(t *testing.T) {
	cfg := localConfig(t, filepath.Join(t.TempDir(), "missing.json"))

	_, err := NewApp(cfg, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open seed file")
}

func TestNewApp_LocalStackSettles(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seed, []byte(seedJSON), 0o600))

	a, err := NewApp(localConfig(t, seed), quietLogger())
	require.NoError(t, err)
	assert.Nil(t, a.pool)
	assert.Nil(t, a.redis)
	assert.Nil(t, a.producer)
	require.NotNil(t, a.localLimiter)

	h := a.httpServer.Handler

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body, err := json.Marshal(map[string]any{
		"lines": []map[string]any{{"product_id": seedProduct, "quantity": 2, "client_price": 1000}},
		"shipping_address": map[string]any{
			"full_name": "John Doe", "line1": "123 Main St", "city": "Springfield",
			"postal_code": "62701", "country": "US",
		},
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlements/direct", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data domain.SettlementResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, domain.StateSettled, created.Data.State)
	assert.Equal(t, int64(3159), created.Data.Totals.TotalAmount)

	require.NoError(t, a.Shutdown())
}
