package engine

import (
	"github.com/fundgate/fundgate/internal/model"
	"github.com/shopspring/decimal"
)

// applyFunding settles the funding accrued since the position's entry
// into its margin. Longs pay positive funding, shorts receive it.
func applyFunding(p *model.DerivativePosition, cumulativeFunding decimal.Decimal) {
	if p == nil {
		return
	}
	unrealized := p.Quantity.Mul(cumulativeFunding.Sub(p.CumulativeFundingEntry))
	if p.IsLong {
		p.Margin = p.Margin.Sub(unrealized)
	} else {
		p.Margin = p.Margin.Add(unrealized)
	}
	p.CumulativeFundingEntry = cumulativeFunding
}

// positionValue estimates the position's notional at the given mark
// price: margin plus unrealized pnl. A flat position is worth zero.
func positionValue(p *model.DerivativePosition, markPrice decimal.Decimal) decimal.Decimal {
	if p == nil || p.Quantity.IsZero() {
		return decimal.Zero
	}
	pnl := p.Quantity.Mul(markPrice.Sub(p.EntryPrice))
	if !p.IsLong {
		pnl = pnl.Neg()
	}
	return p.Margin.Add(pnl)
}
