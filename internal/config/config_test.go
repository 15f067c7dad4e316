package config

import (
	"testing"
	"time"

	"adtime-printshop/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "adtime")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "printshop")
	t.Setenv("REDIS_ADDR", "localhost:6379")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 24*time.Hour, cfg.Redis.StateTTL)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "ignored", cfg.Pricing.PrintTypePolicy)
	assert.Equal(t, "4+0", cfg.Pricing.SheetPrintType)
	assert.Equal(t, 320.0, cfg.Pricing.SheetWidthMM)
	assert.Equal(t, "15", cfg.Pricing.DefaultPrintPrice.String())
	assert.Equal(t, "0.15", cfg.Pricing.DefaultPaperPrice.String())
	assert.Equal(t, "host=localhost port=5432 user=adtime password=secret dbname=printshop sslmode=disable", cfg.Database.DSN())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PRICING_PRINT_TYPE_POLICY", "matched")
	t.Setenv("PRICING_DEFAULT_PRINT_PRICE", "17.50")
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("ADMIN_IDS", "1,2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "matched", cfg.Pricing.PrintTypePolicy)
	assert.Equal(t, "17.5", cfg.Pricing.DefaultPrintPrice.String())
	assert.Equal(t, []int64{1, 2}, cfg.Admin.IDs)

	opts := cfg.Pricing.Options()
	assert.Equal(t, pricing.PrintTypeMatched, opts.PrintTypePolicy)
	assert.Equal(t, 450.0, opts.SheetHeight)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing database host", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DB_HOST", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown print type policy", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PRICING_PRINT_TYPE_POLICY", "sometimes")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PRINT_TYPE_POLICY: oneof=ignored matched")
	})

	t.Run("non-positive sheet size", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PRICING_SHEET_WIDTH_MM", "0")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SHEET_WIDTH_MM: gt=0")
	})

	t.Run("negative default print price", func(t *testing.T) {
		setRequired(t)
		t.Setenv("PRICING_DEFAULT_PRINT_PRICE", "-1")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DEFAULT_PRINT_PRICE: gte=0")
	})

	t.Run("bot without admins", func(t *testing.T) {
		setRequired(t)
		t.Setenv("TELEGRAM_TOKEN", "token")
		_, err := Load()
		assert.Error(t, err)
	})
}
