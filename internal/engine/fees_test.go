package engine

import (
	"context"
	"testing"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/fundgate/fundgate/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFeePositions(t *testing.T, env *testEnv, positions map[string]decimal.Decimal) {
	t.Helper()
	require.NoError(t, env.store.Update(context.Background(), func(tx store.Tx) error {
		return tx.SetAdminFeePositions(positions)
	}))
}

func TestClaimFeePositionsEmitsSortedTransfersAndClears(t *testing.T) {
	env := newTestEnv(t)
	seedFeePositions(t, env, map[string]decimal.Decimal{
		"perp-zzz": decimal.NewFromInt(3),
		"perp-aaa": decimal.NewFromInt(1),
		"perp-mmm": decimal.NewFromInt(2),
	})

	resp, err := env.engine.ClaimFeePositions(context.Background(), model.ClaimFeePositionsRequest{
		Sender:                testAdmin,
		ReceivingSubaccountID: "admin-sub-1",
	})
	require.NoError(t, err)

	require.Len(t, resp.Transfers, 3)
	assert.Equal(t, "perp-aaa", resp.Transfers[0].MarketID)
	assert.Equal(t, "perp-mmm", resp.Transfers[1].MarketID)
	assert.Equal(t, "perp-zzz", resp.Transfers[2].MarketID)
	for _, transfer := range resp.Transfers {
		assert.Equal(t, testFundSub, transfer.SourceSubaccountID)
		assert.Equal(t, "admin-sub-1", transfer.DestinationSubaccountID)
	}
	require.Len(t, env.sink.positions, 3)

	// Ledger cleared: second claim moves nothing.
	assert.Empty(t, env.feePositions(t))

	resp, err = env.engine.ClaimFeePositions(context.Background(), model.ClaimFeePositionsRequest{
		Sender:                testAdmin,
		ReceivingSubaccountID: "admin-sub-1",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Transfers)
	assert.Len(t, env.sink.positions, 3)
}

func TestClaimFeePositionsSkipsNonPositiveEntries(t *testing.T) {
	env := newTestEnv(t)
	seedFeePositions(t, env, map[string]decimal.Decimal{
		"perp-live": decimal.NewFromInt(4),
		"perp-zero": decimal.Zero,
	})

	resp, err := env.engine.ClaimFeePositions(context.Background(), model.ClaimFeePositionsRequest{
		Sender:                testAdmin,
		ReceivingSubaccountID: "admin-sub-1",
	})
	require.NoError(t, err)
	require.Len(t, resp.Transfers, 1)
	assert.Equal(t, "perp-live", resp.Transfers[0].MarketID)
}

func TestClaimFeePositionsRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	seedFeePositions(t, env, map[string]decimal.Decimal{
		testPerpID: decimal.NewFromInt(1),
	})

	_, err := env.engine.ClaimFeePositions(context.Background(), model.ClaimFeePositionsRequest{
		Sender:                testHolder,
		ReceivingSubaccountID: testRedeemSub,
	})
	requireRejected(t, err, "only the fund admin")

	// Rejection leaves the ledger intact.
	assert.Len(t, env.feePositions(t), 1)
	assert.Empty(t, env.sink.positions)
}
