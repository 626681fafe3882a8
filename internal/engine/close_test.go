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

func isClosed(t *testing.T, env *testEnv) bool {
	t.Helper()
	var closed bool
	require.NoError(t, env.store.View(context.Background(), func(tx store.Tx) error {
		var err error
		closed, err = tx.IsFundClosed()
		return err
	}))
	return closed
}

func TestCloseFundRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	err := env.engine.CloseFund(context.Background(), model.CloseFundRequest{Sender: testHolder})
	requireRejected(t, err, "only the fund admin")
	assert.False(t, isClosed(t, env))
}

func TestCloseFundRejectsOpenExposure(t *testing.T) {
	env := newTestEnv(t)
	env.querier.positions[testPerpID] = model.DerivativePosition{
		IsLong:     true,
		Quantity:   decimal.NewFromInt(3),
		EntryPrice: decimal.NewFromInt(100),
		Margin:     decimal.NewFromInt(50),
	}

	err := env.engine.CloseFund(context.Background(), model.CloseFundRequest{Sender: testAdmin})
	requireRejected(t, err, "still holds a position")
	assert.False(t, isClosed(t, env))

	// Flat after the position unwinds.
	delete(env.querier.positions, testPerpID)
	require.NoError(t, env.engine.CloseFund(context.Background(), model.CloseFundRequest{Sender: testAdmin}))
	assert.True(t, isClosed(t, env))
}

func TestCloseFundIgnoresZeroQuantityPosition(t *testing.T) {
	env := newTestEnv(t)
	env.querier.positions[testPerpID] = model.DerivativePosition{
		IsLong:   true,
		Quantity: decimal.Zero,
		Margin:   decimal.Zero,
	}

	require.NoError(t, env.engine.CloseFund(context.Background(), model.CloseFundRequest{Sender: testAdmin}))
	assert.True(t, isClosed(t, env))
}

func TestClosedFundGatesCommandsButNotClaims(t *testing.T) {
	env := newTestEnv(t)
	env.subscribe(t, testAdmin, t0, "1000")
	require.NoError(t, env.engine.CloseFund(context.Background(), model.CloseFundRequest{Sender: testAdmin}))

	err := env.engine.ExecuteAdminCommands(context.Background(), model.AdminCommandsRequest{
		Sender:   testAdmin,
		Commands: []model.OrderCommand{{Type: model.CommandTypeBatchUpdateOrders}},
	})
	requireRejected(t, err, "fund is closed")

	// Fee claims stay available so the admin can still collect.
	seedFeePositions(t, env, map[string]decimal.Decimal{testPerpID: decimal.NewFromInt(2)})
	resp, err := env.engine.ClaimFeePositions(context.Background(), model.ClaimFeePositionsRequest{
		Sender:                testAdmin,
		ReceivingSubaccountID: "admin-sub-1",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Transfers, 1)
}

func TestAdminCommandsAllowList(t *testing.T) {
	env := newTestEnv(t)

	err := env.engine.ExecuteAdminCommands(context.Background(), model.AdminCommandsRequest{
		Sender:   testAdmin,
		Commands: []model.OrderCommand{{Type: "withdraw_all"}},
	})
	requireRejected(t, err, "command type not allowed")
	assert.Empty(t, env.sink.commands)

	err = env.engine.ExecuteAdminCommands(context.Background(), model.AdminCommandsRequest{
		Sender: testAdmin,
		Commands: []model.OrderCommand{
			{Type: model.CommandTypeBatchUpdateOrders},
			{Type: model.CommandTypeBatchUpdateOrders},
		},
	})
	require.NoError(t, err)
	assert.Len(t, env.sink.commands, 2)
}

func TestAdminCommandsRequireAdmin(t *testing.T) {
	env := newTestEnv(t)

	err := env.engine.ExecuteAdminCommands(context.Background(), model.AdminCommandsRequest{
		Sender:   testHolder,
		Commands: []model.OrderCommand{{Type: model.CommandTypeBatchUpdateOrders}},
	})
	requireRejected(t, err, "only the fund admin")
	assert.Empty(t, env.sink.commands)
}
