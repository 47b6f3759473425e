package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"dinehub/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
database:
  host: db.internal
  port: 5433
  user: app
  password: secret
  database: dinehub_db
rabbitmq:
  host: mq.internal
  port: 5672
  user: app
  password: secret
order:
  tax_rate: 0.08
loyalty:
  redeem_value: 0.02
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "mq.internal", cfg.RabbitMQ.Host)
	assert.Equal(t, 0.08, cfg.Order.TaxRate)
	assert.Equal(t, 0.02, cfg.Loyalty.RedeemValue)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
database:
  host: localhost
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.10, cfg.Order.TaxRate)
	assert.Equal(t, 0.01, cfg.Loyalty.RedeemValue)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
