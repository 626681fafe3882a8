package model

import (
	"github.com/shopspring/decimal"
)

// SubscribeRequest deposits quote funds into the fund. BlockTime is the
// host chain's block timestamp; the engine never reads the wall clock.
type SubscribeRequest struct {
	Sender    string `json:"sender" binding:"required"`
	BlockTime int64  `json:"block_time" binding:"required"`
	Funds     []Coin `json:"funds" binding:"required"`
}

type SubscribeResponse struct {
	MintedShares decimal.Decimal `json:"minted_shares"`
	TotalShares  decimal.Decimal `json:"total_shares"`
}

// RedeemRequest burns the sender's full position.
type RedeemRequest struct {
	Sender               string `json:"sender" binding:"required"`
	BlockTime            int64  `json:"block_time" binding:"required"`
	RedeemerSubaccountID string `json:"redeemer_subaccount_id" binding:"required"`
}

type RedeemResponse struct {
	BurnedShares      decimal.Decimal    `json:"burned_shares"`
	CashReturns       []CashTransfer     `json:"cash_returns"`
	PositionTransfers []PositionTransfer `json:"position_transfers"`
	FeeCharged        bool               `json:"fee_charged"`
}

// ClaimFeePositionsRequest moves every accrued fee position to the
// admin's chosen subaccount.
type ClaimFeePositionsRequest struct {
	Sender                string `json:"sender" binding:"required"`
	ReceivingSubaccountID string `json:"receiving_subaccount_id" binding:"required"`
}

type ClaimFeePositionsResponse struct {
	Transfers []PositionTransfer `json:"transfers"`
}

// AdminCommandsRequest relays a batch of exchange commands.
type AdminCommandsRequest struct {
	Sender   string         `json:"sender" binding:"required"`
	Commands []OrderCommand `json:"commands" binding:"required"`
}

type CloseFundRequest struct {
	Sender string `json:"sender" binding:"required"`
}
