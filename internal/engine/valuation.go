package engine

import (
	"context"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/fundgate/fundgate/internal/pkg/apperrors"
	"github.com/shopspring/decimal"
)

// spotHolding is one spot market's base-asset balance together with its
// decimal-adjusted oracle price in quote units.
type spotHolding struct {
	baseDenom string
	balance   decimal.Decimal
	price     decimal.Decimal
}

func (h spotHolding) notional() decimal.Decimal {
	return h.balance.Mul(h.price)
}

// quoteCashBalance returns the fund's quote-denom cash balance, rejecting
// a negative balance as upstream inconsistency.
func (e *Engine) quoteCashBalance(ctx context.Context, cfg *model.FundConfig) (decimal.Decimal, error) {
	balance, err := e.querier.SubaccountDeposit(ctx, cfg.FundSubaccountID, cfg.QuoteDenom)
	if err != nil {
		return decimal.Zero, err
	}
	if balance.IsNegative() {
		return decimal.Zero, apperrors.StateInconsistent("vault quote deposits are negative")
	}
	return balance, nil
}

// spotHoldingFor prices one spot market's base balance. The raw oracle
// price is adjusted for the precision difference between base and quote:
// adjusted = raw * 10^(quote_decimals - base_decimals).
func (e *Engine) spotHoldingFor(
	ctx context.Context,
	cfg *model.FundConfig,
	denomDecimals map[string]uint32,
	quoteDecimals uint32,
	ref model.SpotMarketRef,
) (*spotHolding, error) {
	market, err := e.querier.SpotMarket(ctx, ref.MarketID)
	if err != nil {
		return nil, err
	}

	baseDecimals, ok := denomDecimals[market.BaseDenom]
	if !ok {
		return nil, apperrors.StateInconsistent("no decimals snapshot for denom " + market.BaseDenom)
	}

	balance, err := e.querier.SubaccountDeposit(ctx, cfg.FundSubaccountID, market.BaseDenom)
	if err != nil {
		return nil, err
	}
	if balance.IsNegative() {
		return nil, apperrors.StateInconsistent("vault base deposits are negative")
	}

	rawPrice, err := e.querier.OraclePrice(ctx, ref.OracleSource, market.BaseDenom, market.QuoteDenom)
	if err != nil {
		return nil, err
	}
	adjusted := rawPrice.Mul(decimal.New(1, int32(quoteDecimals)-int32(baseDecimals)))

	return &spotHolding{
		baseDenom: market.BaseDenom,
		balance:   balance,
		price:     adjusted,
	}, nil
}

// derivativeNotional values the fund's position in one derivative market:
// funding applied first, then marked at the current mark price. No open
// position contributes zero.
func (e *Engine) derivativeNotional(ctx context.Context, cfg *model.FundConfig, marketID string) (decimal.Decimal, error) {
	market, err := e.querier.DerivativeMarket(ctx, marketID)
	if err != nil {
		return decimal.Zero, err
	}

	position, err := e.querier.SubaccountPosition(ctx, marketID, cfg.FundSubaccountID)
	if err != nil {
		return decimal.Zero, err
	}
	if position == nil {
		return decimal.Zero, nil
	}

	applyFunding(position, market.CumulativeFunding)
	return positionValue(position, market.MarkPrice), nil
}

// fundTotalNotional computes the fund's NAV in quote units: quote cash
// plus every spot and derivative holding. Always recomputed fresh; share
// pricing must never see a cached value.
func (e *Engine) fundTotalNotional(
	ctx context.Context,
	cfg *model.FundConfig,
	denomDecimals map[string]uint32,
) (decimal.Decimal, error) {
	quoteDecimals, ok := denomDecimals[cfg.QuoteDenom]
	if !ok {
		return decimal.Zero, apperrors.StateInconsistent("no decimals snapshot for quote denom")
	}

	total, err := e.quoteCashBalance(ctx, cfg)
	if err != nil {
		return decimal.Zero, err
	}

	for _, ref := range cfg.SpotMarkets {
		holding, err := e.spotHoldingFor(ctx, cfg, denomDecimals, quoteDecimals, ref)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(holding.notional())
	}

	for _, marketID := range cfg.DerivativeMarketIDs {
		notional, err := e.derivativeNotional(ctx, cfg, marketID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(notional)
	}

	return total, nil
}
