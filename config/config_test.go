package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"Restore/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":8080\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, EnvDevelopment, cfg.Server.Environment)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "store.db", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "usd", cfg.Stripe.Currency)

	rule, err := cfg.DeliveryRule()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDeliveryRule, rule)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Server.Addr)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
stripe:
  secret_key: from-file
redis:
  ttl: 30s
shipping:
  free_delivery_threshold: "50"
  delivery_fee: "2.50"
`)
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_env")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_env")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk_test_env", cfg.Stripe.SecretKey)
	assert.Equal(t, "whsec_env", cfg.Stripe.WebhookSecret)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)

	rule, err := cfg.DeliveryRule()
	require.NoError(t, err)
	assert.Equal(t, int64(5000), rule.FreeThreshold)
	assert.Equal(t, int64(250), rule.Fee)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "database:\n  driver: oracle\n"))
	assert.ErrorContains(t, err, "database.driver")

	_, err = Load(writeConfig(t, "shipping:\n  delivery_fee: \"-1\"\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "shipping:\n  delivery_fee: \"1.234\"\n"))
	assert.ErrorContains(t, err, "shipping.delivery_fee")
}

func TestSeedIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, Seed(db))
	require.NoError(t, Seed(db))

	var products int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	assert.Equal(t, int64(len(seedProducts)), products)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@test.com").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}
