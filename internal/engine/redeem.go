package engine

import (
	"context"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/fundgate/fundgate/internal/pkg/apperrors"
	"github.com/fundgate/fundgate/internal/pkg/metrics"
	"github.com/fundgate/fundgate/internal/settlement"
	"github.com/fundgate/fundgate/internal/store"
	"github.com/shopspring/decimal"
)

// Redeem burns the sender's full position and pays out a pro-rata slice
// of every asset class, net of the performance fee when the annualized
// ROI threshold is crossed. Settlement instructions leave the process
// only after the ledger mutation has committed.
func (e *Engine) Redeem(ctx context.Context, req model.RedeemRequest) (*model.RedeemResponse, error) {
	recorder := settlement.NewRecorder()
	var resp *model.RedeemResponse

	err := e.store.Update(ctx, func(tx store.Tx) error {
		cfg, err := loadConfig(tx)
		if err != nil {
			return err
		}

		position, err := tx.Position(req.Sender)
		if err != nil {
			return err
		}
		if position == nil {
			return apperrors.Reject("redeemer LP position does not exist")
		}

		quoteBalance, err := e.quoteCashBalance(ctx, cfg)
		if err != nil {
			return err
		}
		if err := ensureHoldPeriodElapsed(req.BlockTime, position.SubscriptionTime); err != nil {
			return err
		}

		totalShares, err := tx.TotalShares()
		if err != nil {
			return err
		}
		if !totalShares.IsPositive() {
			return apperrors.StateInconsistent("position exists but no shares outstanding")
		}
		sharesToBurn := position.Shares

		payout, err := e.computeProRataPayout(ctx, tx, cfg, req, quoteBalance, sharesToBurn, totalShares)
		if err != nil {
			return err
		}

		chargeFee, err := shouldChargePerformanceFee(cfg, position, payout.totalNotional, req.BlockTime)
		if err != nil {
			return err
		}

		// Burn first; the floor check and instruction emission both work
		// against the post-burn totals.
		newTotal := totalShares.Sub(sharesToBurn)
		if err := tx.SetTotalShares(newTotal); err != nil {
			return err
		}
		if err := tx.DeletePosition(req.Sender); err != nil {
			return err
		}

		closed, err := tx.IsFundClosed()
		if err != nil {
			return err
		}

		if req.Sender == cfg.Admin && !closed {
			// Admin redemption while the fund is open: the floor still
			// binds and no settlement instructions are emitted.
			adminShares, err := tx.AdminOwnedShares()
			if err != nil {
				return err
			}
			adminShares = adminShares.Sub(sharesToBurn)
			if err := checkAdminFloor(adminShares, newTotal); err != nil {
				return err
			}
			if err := tx.SetAdminOwnedShares(adminShares); err != nil {
				return err
			}
			resp = &model.RedeemResponse{BurnedShares: sharesToBurn}
			metrics.SharesOutstanding.Set(newTotal.InexactFloat64())
			return nil
		}

		result, err := e.emitRedemptionInstructions(tx, cfg, req, recorder, payout, position, chargeFee)
		if err != nil {
			return err
		}
		result.BurnedShares = sharesToBurn
		resp = result
		metrics.SharesOutstanding.Set(newTotal.InexactFloat64())
		return nil
	})
	observe("redeem", err)
	if err != nil {
		return nil, err
	}

	e.flush(ctx, recorder)
	return resp, nil
}

// ensureHoldPeriodElapsed rejects redemptions until a full year of block
// time has passed since subscription.
func ensureHoldPeriodElapsed(blockTime, subscriptionTime int64) error {
	if blockTime <= subscriptionTime+oneYearSeconds {
		return apperrors.Reject("position is locked for one year after subscription")
	}
	return nil
}

// redemptionPayout is the redeemer's pro-rata entitlement before fees.
type redemptionPayout struct {
	cash          []model.Coin
	transfers     []model.PositionTransfer
	totalNotional decimal.Decimal
}

// computeProRataPayout walks every asset class and slices out
// shares_to_burn / total_shares of each holding, accumulating the
// redemption notional used for profit measurement.
func (e *Engine) computeProRataPayout(
	ctx context.Context,
	tx store.Tx,
	cfg *model.FundConfig,
	req model.RedeemRequest,
	quoteBalance, sharesToBurn, totalShares decimal.Decimal,
) (*redemptionPayout, error) {
	denomDecimals, err := tx.DenomDecimals()
	if err != nil {
		return nil, err
	}
	quoteDecimals, ok := denomDecimals[cfg.QuoteDenom]
	if !ok {
		return nil, apperrors.StateInconsistent("no decimals snapshot for quote denom")
	}

	quoteWithdrawal := div(quoteBalance.Mul(sharesToBurn), totalShares)
	payout := &redemptionPayout{
		cash:          []model.Coin{{Denom: cfg.QuoteDenom, Amount: quoteWithdrawal}},
		totalNotional: quoteWithdrawal,
	}

	for _, ref := range cfg.SpotMarkets {
		holding, err := e.spotHoldingFor(ctx, cfg, denomDecimals, quoteDecimals, ref)
		if err != nil {
			return nil, err
		}
		withdrawal := div(holding.balance.Mul(sharesToBurn), totalShares)
		payout.cash = append(payout.cash, model.Coin{Denom: holding.baseDenom, Amount: withdrawal})
		payout.totalNotional = payout.totalNotional.Add(withdrawal.Mul(holding.price))
	}

	for _, marketID := range cfg.DerivativeMarketIDs {
		position, err := e.querier.SubaccountPosition(ctx, marketID, cfg.FundSubaccountID)
		if err != nil {
			return nil, err
		}
		if position == nil || position.Quantity.IsZero() {
			continue
		}

		market, err := e.querier.DerivativeMarket(ctx, marketID)
		if err != nil {
			return nil, err
		}
		applyFunding(position, market.CumulativeFunding)

		transferQuantity := div(position.Quantity.Mul(sharesToBurn), totalShares)
		payout.transfers = append(payout.transfers, model.PositionTransfer{
			MarketID:                marketID,
			SourceSubaccountID:      cfg.FundSubaccountID,
			DestinationSubaccountID: req.RedeemerSubaccountID,
			Quantity:                transferQuantity,
		})

		slice := model.DerivativePosition{
			IsLong:                 position.IsLong,
			Quantity:               transferQuantity,
			EntryPrice:             position.EntryPrice,
			Margin:                 div(position.Margin.Mul(sharesToBurn), totalShares),
			CumulativeFundingEntry: position.CumulativeFundingEntry,
		}
		payout.totalNotional = payout.totalNotional.Add(positionValue(&slice, market.MarkPrice))
	}

	return payout, nil
}

// shouldChargePerformanceFee annualizes the position's profit and
// compares it against the configured minimum yearly ROI. Equality at the
// boundary charges no fee.
func shouldChargePerformanceFee(
	cfg *model.FundConfig,
	position *model.LPPosition,
	totalNotional decimal.Decimal,
	blockTime int64,
) (bool, error) {
	holdingSeconds := blockTime - position.SubscriptionTime
	if holdingSeconds <= 0 {
		// Unreachable past the hold-period gate; kept so the annualizer
		// can never divide by zero.
		return false, apperrors.StateInconsistent("non-positive holding period")
	}

	profit := totalNotional.Sub(position.SubscriptionAmount)
	profitPerYear := div(profit.Mul(decimal.NewFromInt(oneYearSeconds)), decimal.NewFromInt(holdingSeconds))

	// MinYearlyROIForFees is stored as a multiplier (1.10 = 10% hurdle).
	threshold := position.SubscriptionAmount.Mul(cfg.MinYearlyROIForFees.Sub(one))
	return profitPerYear.GreaterThan(threshold), nil
}

// emitRedemptionInstructions splits every outgoing asset between the
// redeemer and the admin fee, accruing derivative fee slices into the
// admin fee ledger instead of transferring them immediately.
func (e *Engine) emitRedemptionInstructions(
	tx store.Tx,
	cfg *model.FundConfig,
	req model.RedeemRequest,
	recorder *settlement.Recorder,
	payout *redemptionPayout,
	position *model.LPPosition,
	chargeFee bool,
) (*model.RedeemResponse, error) {
	feeRate := decimal.Zero
	if chargeFee {
		profit := payout.totalNotional.Sub(position.SubscriptionAmount)
		feeRate = div(profit.Mul(cfg.PerformanceFeeRate), payout.totalNotional)
	}

	resp := &model.RedeemResponse{FeeCharged: chargeFee}

	for _, coin := range payout.cash {
		fee := feeRate.Mul(coin.Amount)
		if fee.IsPositive() {
			recorder.SendCash(model.CashTransfer{
				ToAddress: cfg.Admin,
				Denom:     coin.Denom,
				Amount:    fee,
			})
		}
		redeemerTransfer := model.CashTransfer{
			ToAddress: req.Sender,
			Denom:     coin.Denom,
			Amount:    coin.Amount.Sub(fee),
		}
		recorder.SendCash(redeemerTransfer)
		resp.CashReturns = append(resp.CashReturns, redeemerTransfer)
	}

	feePositions, err := tx.AdminFeePositions()
	if err != nil {
		return nil, err
	}
	feeAccrued := false

	for _, transfer := range payout.transfers {
		feeQuantity := feeRate.Mul(transfer.Quantity)
		if feeQuantity.IsPositive() {
			existing, ok := feePositions[transfer.MarketID]
			if !ok {
				existing = decimal.Zero
			}
			feePositions[transfer.MarketID] = existing.Add(feeQuantity)
			feeAccrued = true
		}

		transfer.Quantity = transfer.Quantity.Sub(feeQuantity)
		recorder.TransferPosition(transfer)
		resp.PositionTransfers = append(resp.PositionTransfers, transfer)
	}

	if feeAccrued {
		if err := tx.SetAdminFeePositions(feePositions); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
