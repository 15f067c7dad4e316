package config

import (
	"fmt"
	"time"

	"adtime-printshop/internal/pricing"
	"adtime-printshop/pkg/validate"

	"github.com/caarlos0/env/v9"
	"github.com/shopspring/decimal"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Telegram TelegramConfig `envPrefix:"TELEGRAM_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	HTTP     HTTPConfig     `envPrefix:"HTTP_"`
	Catalog  CatalogConfig  `envPrefix:"CATALOG_"`
	Pricing  PricingConfig  `envPrefix:"PRICING_"`
	Admin    AdminConfig    `envPrefix:"ADMIN_"`
}

type TelegramConfig struct {
	Token string `env:"TOKEN"`
	Debug bool   `env:"DEBUG" envDefault:"false"`
}

type DatabaseConfig struct {
	Host            string        `env:"HOST,required,notEmpty"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER,required,notEmpty"`
	Password        string        `env:"PASSWORD,required,notEmpty"`
	Name            string        `env:"NAME,required,notEmpty"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
	RetryMaxElapsed time.Duration `env:"RETRY_MAX_ELAPSED" envDefault:"2m"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"true"`
}

type RedisConfig struct {
	Addr     string        `env:"ADDR,required,notEmpty"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	StateTTL time.Duration `env:"STATE_TTL" envDefault:"24h"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	RateLimit       int64         `env:"RATE_LIMIT" envDefault:"120" validate:"gte=0"`
	RateWindow      time.Duration `env:"RATE_WINDOW" envDefault:"1m"`
}

// CatalogConfig selects the external catalog API as reference data source.
// When BaseURL is empty the engine reads the reference tables from Postgres.
type CatalogConfig struct {
	BaseURL string        `env:"BASE_URL"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type PricingConfig struct {
	PrintTypePolicy           string          `env:"PRINT_TYPE_POLICY" envDefault:"ignored" validate:"oneof=ignored matched"`
	SheetPrintType            string          `env:"SHEET_PRINT_TYPE" envDefault:"4+0"`
	SheetPrintTypeFromRequest bool            `env:"SHEET_PRINT_TYPE_FROM_REQUEST" envDefault:"false"`
	SheetWidthMM              float64         `env:"SHEET_WIDTH_MM" envDefault:"320" validate:"gt=0"`
	SheetHeightMM             float64         `env:"SHEET_HEIGHT_MM" envDefault:"450" validate:"gt=0"`
	DefaultPrintPrice         decimal.Decimal `env:"DEFAULT_PRINT_PRICE" envDefault:"15.00" validate:"gte=0"`
	DefaultPaperPrice         decimal.Decimal `env:"DEFAULT_PAPER_PRICE" envDefault:"0.15" validate:"gte=0"`
}

type AdminConfig struct {
	IDs       []int64 `env:"IDS" envSeparator:","`
	ChannelID int64   `env:"CHANNEL_ID"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %s", validate.Describe(err))
	}

	if cfg.Telegram.Token != "" && len(cfg.Admin.IDs) == 0 {
		return nil, fmt.Errorf("at least one admin ID is required when the bot is enabled")
	}

	return &cfg, nil
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func (c PricingConfig) Options() pricing.Options {
	return pricing.Options{
		PrintTypePolicy:           pricing.PrintTypePolicy(c.PrintTypePolicy),
		SheetPrintType:            c.SheetPrintType,
		SheetPrintTypeFromRequest: c.SheetPrintTypeFromRequest,
		SheetWidth:                c.SheetWidthMM,
		SheetHeight:               c.SheetHeightMM,
		DefaultPrintPrice:         c.DefaultPrintPrice,
		DefaultPaperPrice:         c.DefaultPaperPrice,
	}
}
