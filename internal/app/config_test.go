package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PG_DSN", "postgres://u:p@db:5432/budgetdesk")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, "ru", cfg.ReportLocale)
	require.Equal(t, 168*time.Hour, cfg.ReportShareTTL)
	require.Equal(t, 30, cfg.SupplierBatchSize)
	require.Equal(t, "0 6 * * *", cfg.OverdueScanCron)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsOversizedBatch(t *testing.T) {
	t.Setenv("SUPPLIER_BATCH_SIZE", "31")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "SUPPLIER_BATCH_SIZE")
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{PGDSN: "postgres://x", SupplierBatchSize: 10, ReportShareTTL: time.Hour}
	require.NoError(t, cfg.Validate())

	cfg.PGDSN = " "
	require.Error(t, cfg.Validate())

	cfg = Config{PGDSN: "postgres://x", SupplierBatchSize: 10}
	require.ErrorContains(t, cfg.Validate(), "REPORT_SHARE_TTL")
}

func TestIsProduction(t *testing.T) {
	require.True(t, (&Config{AppEnv: "production"}).IsProduction())
	var nilCfg *Config
	require.False(t, nilCfg.IsProduction())
}
