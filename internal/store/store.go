package store

import (
	"context"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/shopspring/decimal"
)

// Tx exposes the fund's persisted records to one in-flight call. Reads see
// the committed state plus the call's own staged writes; nothing becomes
// visible to other calls until the enclosing Update commits.
type Tx interface {
	FundConfig() (*model.FundConfig, error)
	SetFundConfig(cfg model.FundConfig) error

	DenomDecimals() (map[string]uint32, error)
	SetDenomDecimals(decimals map[string]uint32) error

	TotalShares() (decimal.Decimal, error)
	SetTotalShares(total decimal.Decimal) error

	// Position returns nil when the holder has no open position.
	Position(holder string) (*model.LPPosition, error)
	SetPosition(holder string, pos model.LPPosition) error
	DeletePosition(holder string) error

	AdminOwnedShares() (decimal.Decimal, error)
	SetAdminOwnedShares(shares decimal.Decimal) error

	AdminFeePositions() (map[string]decimal.Decimal, error)
	SetAdminFeePositions(positions map[string]decimal.Decimal) error

	IsFundClosed() (bool, error)
	SetFundClosed(closed bool) error
}

// Store is the persistent key-value state behind the engine. Update runs
// fn against a transaction; if fn returns an error every staged write is
// discarded. Execution is serial per fund instance, so implementations
// only need all-or-nothing commit, not interleaving safety.
type Store interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
}
