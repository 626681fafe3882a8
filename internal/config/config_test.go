package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFundSection() FundConfig {
	return FundConfig{
		Admin:               "inj1admin",
		QuoteDenom:          "usdt",
		FundSubaccountID:    "fund-sub-0",
		PerformanceFeeRate:  "0.2",
		MinYearlyROIForFees: "1.1",
		DerivativeMarketIDs: []string{"perp-btc-usdt"},
	}
}

func TestModelConfigParsesDecimals(t *testing.T) {
	cfg, err := validFundSection().ModelConfig()
	require.NoError(t, err)
	assert.True(t, cfg.PerformanceFeeRate.Equal(decimal.RequireFromString("0.2")))
	assert.True(t, cfg.MinYearlyROIForFees.Equal(decimal.RequireFromString("1.1")))
}

func TestModelConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*FundConfig)
		want   string
	}{
		{"missing admin", func(f *FundConfig) { f.Admin = "" }, "fund.admin"},
		{"missing quote denom", func(f *FundConfig) { f.QuoteDenom = "" }, "fund.quote_denom"},
		{"missing subaccount", func(f *FundConfig) { f.FundSubaccountID = "" }, "fund.fund_subaccount_id"},
		{"fee rate not a number", func(f *FundConfig) { f.PerformanceFeeRate = "lots" }, "performance_fee_rate"},
		{"fee rate above one", func(f *FundConfig) { f.PerformanceFeeRate = "1.5" }, "within [0, 1]"},
		{"negative fee rate", func(f *FundConfig) { f.PerformanceFeeRate = "-0.1" }, "within [0, 1]"},
		{"roi below one", func(f *FundConfig) { f.MinYearlyROIForFees = "0.9" }, "must be >= 1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			section := validFundSection()
			tc.mutate(&section)
			_, err := section.ModelConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
