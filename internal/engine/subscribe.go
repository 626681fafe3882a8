package engine

import (
	"context"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/fundgate/fundgate/internal/pkg/apperrors"
	"github.com/fundgate/fundgate/internal/pkg/metrics"
	"github.com/fundgate/fundgate/internal/store"
	"github.com/shopspring/decimal"
)

// Subscribe converts a quote-denom deposit into newly minted shares at
// the current NAV and opens the sender's position. Everything inside one
// store transaction; any rejection discards the whole call.
func (e *Engine) Subscribe(ctx context.Context, req model.SubscribeRequest) (*model.SubscribeResponse, error) {
	var resp *model.SubscribeResponse

	err := e.store.Update(ctx, func(tx store.Tx) error {
		cfg, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if err := ensureFundOpen(tx); err != nil {
			return err
		}

		deposit, err := quoteDepositAmount(req.Funds, cfg.QuoteDenom)
		if err != nil {
			return err
		}

		denomDecimals, err := tx.DenomDecimals()
		if err != nil {
			return err
		}
		totalShares, err := tx.TotalShares()
		if err != nil {
			return err
		}

		// NAV before the new deposit is considered part of the fund.
		totalNotional, err := e.fundTotalNotional(ctx, cfg, denomDecimals)
		if err != nil {
			return err
		}

		minted, err := sharesToMint(deposit, totalNotional, totalShares)
		if err != nil {
			return err
		}

		newTotal, err := e.storeSubscription(tx, cfg, req, minted, totalShares, deposit)
		if err != nil {
			return err
		}

		metrics.FundNotional.Set(totalNotional.InexactFloat64())
		resp = &model.SubscribeResponse{MintedShares: minted, TotalShares: newTotal}
		return nil
	})
	observe("subscribe", err)
	if err != nil {
		return nil, err
	}

	metrics.SharesOutstanding.Set(resp.TotalShares.InexactFloat64())
	return resp, nil
}

// quoteDepositAmount enforces the single-asset-in policy: every deposited
// coin must be the fund's quote denom.
func quoteDepositAmount(funds []model.Coin, quoteDenom string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, coin := range funds {
		if coin.Denom != quoteDenom {
			return decimal.Zero, apperrors.Reject("invalid coin denomination: " + coin.Denom)
		}
		total = total.Add(coin.Amount)
	}
	return total, nil
}

// sharesToMint prices the deposit into shares. The first subscription
// into an empty fund mints a fixed baseline quantity regardless of
// deposit size, anchoring the share/value exchange rate.
func sharesToMint(deposit, totalNotional, totalShares decimal.Decimal) (decimal.Decimal, error) {
	if totalShares.IsZero() {
		return baselineShares, nil
	}

	if !deposit.IsPositive() {
		return decimal.Zero, apperrors.Reject("supplied quote funds must be greater than 0")
	}
	if !totalNotional.IsPositive() {
		// Shares outstanding but nothing of value behind them; minting
		// against this denominator cannot be priced.
		return decimal.Zero, apperrors.StateInconsistent("fund notional is not positive")
	}

	minted := div(totalShares.Mul(deposit), totalNotional)
	if minted.IsZero() {
		return decimal.Zero, apperrors.Reject("insufficient funds to mint LP shares")
	}
	return minted, nil
}

func (e *Engine) storeSubscription(
	tx store.Tx,
	cfg *model.FundConfig,
	req model.SubscribeRequest,
	minted, totalShares, deposit decimal.Decimal,
) (decimal.Decimal, error) {
	existing, err := tx.Position(req.Sender)
	if err != nil {
		return decimal.Zero, err
	}
	if existing != nil {
		// One open position per holder; top-ups would need average-cost
		// tracking the ledger does not carry.
		return decimal.Zero, apperrors.Reject("already subscribed")
	}

	newTotal := totalShares.Add(minted)
	if err := tx.SetPosition(req.Sender, model.LPPosition{
		Shares:             minted,
		SubscriptionTime:   req.BlockTime,
		SubscriptionAmount: deposit,
	}); err != nil {
		return decimal.Zero, err
	}
	if err := tx.SetTotalShares(newTotal); err != nil {
		return decimal.Zero, err
	}

	adminShares, err := tx.AdminOwnedShares()
	if err != nil {
		return decimal.Zero, err
	}
	if req.Sender == cfg.Admin {
		adminShares = adminShares.Add(minted)
		if err := tx.SetAdminOwnedShares(adminShares); err != nil {
			return decimal.Zero, err
		}
	}

	if err := checkAdminFloor(adminShares, newTotal); err != nil {
		return decimal.Zero, err
	}
	return newTotal, nil
}
