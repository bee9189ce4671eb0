package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  addr: ":9090"
  mode: release
upstream:
  base_url: http://catalog.local
  timeout: 3s
pricing:
  tax_rate: 0.08
  shipping: 4.99
  promos:
    - code: welcome5
      kind: fixed
      value: 5
      label: "$5 Off"
catalog:
  page_size: 12
persistence:
  driver: sqlite
  dsn: "file:test.db"
notifications:
  duration: 2s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadEnvDefaults(t *testing.T) {
	env, err := LoadEnv("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", env.AppAddr)
	assert.Equal(t, "0.1", env.TaxRate.String())
	assert.True(t, env.Shipping.IsZero())
	assert.Equal(t, 10, env.PageSize)
	assert.Equal(t, DriverMemory, env.PersistenceDriver)
	assert.Len(t, env.Promos, 3)
	assert.Equal(t, 5*time.Second, env.ToastDuration)
}

func TestLoadEnvFromFile(t *testing.T) {
	env, err := LoadEnv(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, ":9090", env.AppAddr)
	assert.Equal(t, "release", env.GinMode)
	assert.Equal(t, "http://catalog.local", env.UpstreamBaseURL)
	assert.Equal(t, 3*time.Second, env.UpstreamTimeout)
	assert.Equal(t, "0.08", env.TaxRate.String())
	assert.Equal(t, "4.99", env.Shipping.String())
	assert.Equal(t, 12, env.PageSize)
	assert.Equal(t, "sqlite", env.PersistenceDriver)
	assert.Equal(t, 2*time.Second, env.ToastDuration)

	require.Len(t, env.Promos, 1)
	assert.Equal(t, "WELCOME5", env.Promos[0].Code)
	assert.Equal(t, models.PromoFixed, env.Promos[0].Kind)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("APP_ADDR", ":7000")
	t.Setenv("TAX_RATE", "0.2")
	t.Setenv("PAGE_SIZE", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	env, err := LoadEnv(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, ":7000", env.AppAddr)
	assert.Equal(t, "0.2", env.TaxRate.String())
	assert.Equal(t, 5, env.PageSize)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, env.CORSOrigins)
}

func TestLoadEnvRejectsBadValues(t *testing.T) {
	_, err := LoadEnv(writeConfig(t, "pricing:\n  promos:\n    - code: X\n      kind: bogus\n      value: 1\n"))
	assert.Error(t, err)

	t.Setenv("PAGE_SIZE", "zero")
	_, err = LoadEnv("")
	assert.Error(t, err)
}

func TestLoadEnvMissingFile(t *testing.T) {
	_, err := LoadEnv(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPromoWatcherReloads(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	got := make(chan []models.Promo, 4)
	w, err := NewPromoWatcher(path, func(p []models.Promo) { got <- p })
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	updated := "pricing:\n  promos:\n    - code: half\n      kind: percentage\n      value: 50\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case promos := <-got:
		require.Len(t, promos, 1)
		assert.Equal(t, "HALF", promos[0].Code)
	case <-time.After(3 * time.Second):
		t.Fatal("promo reload not observed")
	}
}
