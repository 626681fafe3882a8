package model

import (
	"github.com/shopspring/decimal"
)

// SpotMarketRef pairs a spot market with the oracle source used to price
// its base asset.
type SpotMarketRef struct {
	MarketID     string `json:"market_id" mapstructure:"market_id"`
	OracleSource string `json:"oracle_source" mapstructure:"oracle_source"`
}

// FundConfig is the immutable configuration of the single fund instance.
// It is written once at initialization and loaded on every call.
type FundConfig struct {
	Admin               string          `json:"admin"`
	SpotMarkets         []SpotMarketRef `json:"spot_markets"`
	DerivativeMarketIDs []string        `json:"derivative_market_ids"`
	QuoteDenom          string          `json:"quote_denom"`
	FundSubaccountID    string          `json:"fund_subaccount_id"`
	PerformanceFeeRate  decimal.Decimal `json:"performance_fee_rate"`
	// MinYearlyROIForFees is a multiplier: 1.10 means the position must
	// earn at least 10% annualized before any performance fee is charged.
	MinYearlyROIForFees decimal.Decimal `json:"min_yearly_roi_for_fees"`
}

// LPPosition is one holder's open stake in the fund. A holder has at most
// one open position; it is deleted in full on redemption.
type LPPosition struct {
	Shares             decimal.Decimal `json:"shares"`
	SubscriptionTime   int64           `json:"subscription_time"` // unix seconds, block time
	SubscriptionAmount decimal.Decimal `json:"subscription_amount"`
}

// Coin is an asset amount in a named denomination.
type Coin struct {
	Denom  string          `json:"denom"`
	Amount decimal.Decimal `json:"amount"`
}

// CashTransfer instructs the settlement channel to pay an amount of a
// denom to an address.
type CashTransfer struct {
	ToAddress string          `json:"to_address"`
	Denom     string          `json:"denom"`
	Amount    decimal.Decimal `json:"amount"`
}

// PositionTransfer instructs the settlement channel to move a derivative
// position quantity between subaccounts.
type PositionTransfer struct {
	MarketID                string          `json:"market_id"`
	SourceSubaccountID      string          `json:"source_subaccount_id"`
	DestinationSubaccountID string          `json:"destination_subaccount_id"`
	Quantity                decimal.Decimal `json:"quantity"`
}

// OrderCommand is an externally-defined exchange command the admin may
// relay through the fund. Only allow-listed command types pass.
type OrderCommand struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// CommandTypeBatchUpdateOrders is the only command shape the engine
// forwards for AdminExecuteMessages.
const CommandTypeBatchUpdateOrders = "batch_update_orders"
