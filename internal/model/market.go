package model

import (
	"github.com/shopspring/decimal"
)

// SpotMarket is the oracle's record of a spot market.
type SpotMarket struct {
	MarketID   string `json:"market_id"`
	BaseDenom  string `json:"base_denom"`
	QuoteDenom string `json:"quote_denom"`
}

// DerivativeMarket is the oracle's record of a perpetual-style market,
// including the current mark price and cumulative funding index.
type DerivativeMarket struct {
	MarketID          string          `json:"market_id"`
	QuoteDenom        string          `json:"quote_denom"`
	MarkPrice         decimal.Decimal `json:"mark_price"`
	CumulativeFunding decimal.Decimal `json:"cumulative_funding"`
}

// DerivativePosition is a subaccount's open position in a derivative
// market as reported by the oracle.
type DerivativePosition struct {
	IsLong                 bool            `json:"is_long"`
	Quantity               decimal.Decimal `json:"quantity"`
	EntryPrice             decimal.Decimal `json:"entry_price"`
	Margin                 decimal.Decimal `json:"margin"`
	CumulativeFundingEntry decimal.Decimal `json:"cumulative_funding_entry"`
}
