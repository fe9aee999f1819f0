package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host               string
	Port               int
	CORSAllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type PricingConfig struct {
	DefaultUnknownTollRate decimal.Decimal
	EuroAdjustmentMode     string
	DefaultMarginPercent   decimal.Decimal
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Pricing     PricingConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:               v.GetString("HTTP_HOST"),
			Port:               v.GetInt("HTTP_PORT"),
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Pricing: PricingConfig{
			EuroAdjustmentMode: strings.ToLower(strings.TrimSpace(v.GetString("PRICING_EURO_ADJUSTMENT_MODE"))),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.DB.MaxOpenConns <= 0 {
		cfg.DB.MaxOpenConns = 20
	}
	if cfg.DB.MaxIdleConns <= 0 {
		cfg.DB.MaxIdleConns = 5
	}
	if cfg.DB.ConnMaxLifetime == "" {
		cfg.DB.ConnMaxLifetime = "30m"
	}
	if len(cfg.HTTP.CORSAllowedOrigins) == 0 {
		cfg.HTTP.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.Pricing.EuroAdjustmentMode == "" {
		cfg.Pricing.EuroAdjustmentMode = "add"
	}

	var err error
	if cfg.Pricing.DefaultUnknownTollRate, err = decimalOr(v.GetString("PRICING_DEFAULT_UNKNOWN_TOLL_RATE"), "0.200"); err != nil {
		return nil, fmt.Errorf("PRICING_DEFAULT_UNKNOWN_TOLL_RATE: %w", err)
	}
	if cfg.Pricing.DefaultMarginPercent, err = decimalOr(v.GetString("PRICING_DEFAULT_MARGIN_PERCENT"), "15"); err != nil {
		return nil, fmt.Errorf("PRICING_DEFAULT_MARGIN_PERCENT: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	switch cfg.Pricing.EuroAdjustmentMode {
	case "add", "subtract", "ignore":
	default:
		return fmt.Errorf("PRICING_EURO_ADJUSTMENT_MODE must be add, subtract or ignore")
	}
	if cfg.Pricing.DefaultUnknownTollRate.IsNegative() {
		return fmt.Errorf("PRICING_DEFAULT_UNKNOWN_TOLL_RATE must not be negative")
	}
	if cfg.Pricing.DefaultMarginPercent.IsNegative() || cfg.Pricing.DefaultMarginPercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("PRICING_DEFAULT_MARGIN_PERCENT must be within [0, 100]")
	}
	return nil
}

func decimalOr(raw, fallback string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	return decimal.NewFromString(raw)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
