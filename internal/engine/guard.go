package engine

import (
	"github.com/fundgate/fundgate/internal/pkg/apperrors"
	"github.com/fundgate/fundgate/internal/store"
	"github.com/shopspring/decimal"
)

// checkAdminFloor enforces the 10% admin-ownership floor: after any mint
// or burn, admin_owned_shares * 10 >= total_shares must hold.
func checkAdminFloor(adminShares, totalShares decimal.Decimal) error {
	if adminShares.Mul(ten).LessThan(totalShares) {
		return apperrors.Reject("admin must own at least 10% of fund")
	}
	return nil
}

func ensureFundOpen(tx store.Tx) error {
	closed, err := tx.IsFundClosed()
	if err != nil {
		return err
	}
	if closed {
		return apperrors.Reject("fund is closed")
	}
	return nil
}
