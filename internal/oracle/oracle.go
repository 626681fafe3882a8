package oracle

import (
	"context"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/shopspring/decimal"
)

// Querier is the market-data and position oracle: synchronous point
// queries against the current committed chain state. The engine never
// caches answers across calls.
type Querier interface {
	SpotMarket(ctx context.Context, marketID string) (*model.SpotMarket, error)
	DerivativeMarket(ctx context.Context, marketID string) (*model.DerivativeMarket, error)

	// SubaccountDeposit returns the total balance of denom held by the
	// subaccount. May be negative when upstream state is inconsistent;
	// callers must treat that as fatal.
	SubaccountDeposit(ctx context.Context, subaccountID, denom string) (decimal.Decimal, error)

	// SubaccountPosition returns nil when the subaccount has no open
	// position in the market.
	SubaccountPosition(ctx context.Context, marketID, subaccountID string) (*model.DerivativePosition, error)

	// OraclePrice returns the raw price of base in quote from the given
	// price source, before any decimal-precision adjustment.
	OraclePrice(ctx context.Context, source, baseDenom, quoteDenom string) (decimal.Decimal, error)

	DenomDecimals(ctx context.Context, denoms []string) (map[string]uint32, error)
}
