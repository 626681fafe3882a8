package engine

import (
	"context"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/fundgate/fundgate/internal/pkg/apperrors"
	"github.com/fundgate/fundgate/internal/store"
)

// CloseFund permanently closes the fund. Only the admin may close, and
// only once every derivative market shows a flat fund position, verified
// by direct query rather than any cached ledger.
func (e *Engine) CloseFund(ctx context.Context, req model.CloseFundRequest) error {
	err := e.store.Update(ctx, func(tx store.Tx) error {
		cfg, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if req.Sender != cfg.Admin {
			return apperrors.Unauthorized("only the fund admin may close the fund")
		}

		for _, marketID := range cfg.DerivativeMarketIDs {
			position, err := e.querier.SubaccountPosition(ctx, marketID, cfg.FundSubaccountID)
			if err != nil {
				return err
			}
			if position != nil && !position.Quantity.IsZero() {
				return apperrors.Reject("fund still holds a position in market " + marketID)
			}
		}

		return tx.SetFundClosed(true)
	})
	observe("close_fund", err)
	return err
}
