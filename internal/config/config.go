package config

import (
	"fmt"
	"strings"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	Fund       FundConfig       `mapstructure:"fund"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Oracle     OracleConfig     `mapstructure:"oracle"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type AuthConfig struct {
	AdminKey string `mapstructure:"admin_key"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// FundConfig is the deployment-time fund definition. Decimal-valued
// fields are strings here and parsed into fixed-point when building the
// model config.
type FundConfig struct {
	Admin               string                `mapstructure:"admin"`
	QuoteDenom          string                `mapstructure:"quote_denom"`
	FundSubaccountID    string                `mapstructure:"fund_subaccount_id"`
	PerformanceFeeRate  string                `mapstructure:"performance_fee_rate"`
	MinYearlyROIForFees string                `mapstructure:"min_yearly_roi_for_fees"`
	SpotMarkets         []model.SpotMarketRef `mapstructure:"spot_markets"`
	DerivativeMarketIDs []string              `mapstructure:"derivative_market_ids"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type OracleConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

type SettlementConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type RateLimitConfig struct {
	QPS   float64 `mapstructure:"qps"`
	Burst int     `mapstructure:"burst"`
}

// ModelConfig parses the raw fund section into the engine's fixed-point
// config and validates the fields the engine cannot default.
func (f FundConfig) ModelConfig() (model.FundConfig, error) {
	var out model.FundConfig

	if f.Admin == "" {
		return out, fmt.Errorf("fund.admin is required")
	}
	if f.QuoteDenom == "" {
		return out, fmt.Errorf("fund.quote_denom is required")
	}
	if f.FundSubaccountID == "" {
		return out, fmt.Errorf("fund.fund_subaccount_id is required")
	}

	feeRate, err := decimal.NewFromString(f.PerformanceFeeRate)
	if err != nil {
		return out, fmt.Errorf("invalid fund.performance_fee_rate: %w", err)
	}
	if feeRate.IsNegative() || feeRate.GreaterThan(decimal.NewFromInt(1)) {
		return out, fmt.Errorf("fund.performance_fee_rate must be within [0, 1]")
	}

	minROI, err := decimal.NewFromString(f.MinYearlyROIForFees)
	if err != nil {
		return out, fmt.Errorf("invalid fund.min_yearly_roi_for_fees: %w", err)
	}
	if minROI.LessThan(decimal.NewFromInt(1)) {
		return out, fmt.Errorf("fund.min_yearly_roi_for_fees is a multiplier and must be >= 1")
	}

	return model.FundConfig{
		Admin:               f.Admin,
		SpotMarkets:         f.SpotMarkets,
		DerivativeMarketIDs: f.DerivativeMarketIDs,
		QuoteDenom:          f.QuoteDenom,
		FundSubaccountID:    f.FundSubaccountID,
		PerformanceFeeRate:  feeRate,
		MinYearlyROIForFees: minROI,
	}, nil
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. FUNDGATE_ORACLE_BASE_URL
	viper.SetEnvPrefix("fundgate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("oracle.timeout_ms", 5000)
	viper.SetDefault("settlement.timeout_ms", 5000)
	viper.SetDefault("ratelimit.qps", 50)
	viper.SetDefault("ratelimit.burst", 100)
	viper.SetDefault("fund.performance_fee_rate", "0")
	viper.SetDefault("fund.min_yearly_roi_for_fees", "1")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
