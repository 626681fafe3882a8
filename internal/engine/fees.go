package engine

import (
	"context"
	"sort"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/fundgate/fundgate/internal/pkg/apperrors"
	"github.com/fundgate/fundgate/internal/settlement"
	"github.com/fundgate/fundgate/internal/store"
	"github.com/shopspring/decimal"
)

// ClaimFeePositions moves every accrued fee position from the fund
// account to the admin's chosen subaccount and zeroes the claimed
// entries, so nothing can be claimed twice.
func (e *Engine) ClaimFeePositions(ctx context.Context, req model.ClaimFeePositionsRequest) (*model.ClaimFeePositionsResponse, error) {
	recorder := settlement.NewRecorder()
	var resp *model.ClaimFeePositionsResponse

	err := e.store.Update(ctx, func(tx store.Tx) error {
		cfg, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if req.Sender != cfg.Admin {
			return apperrors.Unauthorized("only the fund admin may claim fee positions")
		}

		feePositions, err := tx.AdminFeePositions()
		if err != nil {
			return err
		}

		// Stable market order so every replica emits the same sequence.
		marketIDs := make([]string, 0, len(feePositions))
		for marketID := range feePositions {
			marketIDs = append(marketIDs, marketID)
		}
		sort.Strings(marketIDs)

		transfers := make([]model.PositionTransfer, 0, len(marketIDs))
		for _, marketID := range marketIDs {
			quantity := feePositions[marketID]
			if !quantity.IsPositive() {
				continue
			}
			transfer := model.PositionTransfer{
				MarketID:                marketID,
				SourceSubaccountID:      cfg.FundSubaccountID,
				DestinationSubaccountID: req.ReceivingSubaccountID,
				Quantity:                quantity,
			}
			recorder.TransferPosition(transfer)
			transfers = append(transfers, transfer)
		}

		if err := tx.SetAdminFeePositions(map[string]decimal.Decimal{}); err != nil {
			return err
		}
		resp = &model.ClaimFeePositionsResponse{Transfers: transfers}
		return nil
	})
	observe("claim_fee_positions", err)
	if err != nil {
		return nil, err
	}

	e.flush(ctx, recorder)
	return resp, nil
}
