package store

import (
	"context"
	"errors"
	"testing"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCommitPersists(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, s.Update(context.Background(), func(tx Tx) error {
		if err := tx.SetTotalShares(decimal.NewFromInt(42)); err != nil {
			return err
		}
		return tx.SetPosition("holder", model.LPPosition{
			Shares:             decimal.NewFromInt(42),
			SubscriptionTime:   100,
			SubscriptionAmount: decimal.NewFromInt(1000),
		})
	}))

	require.NoError(t, s.View(context.Background(), func(tx Tx) error {
		total, err := tx.TotalShares()
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(42)))

		pos, err := tx.Position("holder")
		require.NoError(t, err)
		require.NotNil(t, pos)
		assert.Equal(t, int64(100), pos.SubscriptionTime)
		return nil
	}))
}

func TestMemoryStoreErrorDiscardsStagedWrites(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Update(context.Background(), func(tx Tx) error {
		return tx.SetTotalShares(decimal.NewFromInt(10))
	}))

	boom := errors.New("boom")
	err := s.Update(context.Background(), func(tx Tx) error {
		if err := tx.SetTotalShares(decimal.NewFromInt(99)); err != nil {
			return err
		}
		if err := tx.SetPosition("holder", model.LPPosition{Shares: decimal.NewFromInt(99)}); err != nil {
			return err
		}
		if err := tx.SetFundClosed(true); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, s.View(context.Background(), func(tx Tx) error {
		total, err := tx.TotalShares()
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(10)), "aborted write leaked: %s", total)

		pos, err := tx.Position("holder")
		require.NoError(t, err)
		assert.Nil(t, pos)

		closed, err := tx.IsFundClosed()
		require.NoError(t, err)
		assert.False(t, closed)
		return nil
	}))
}

func TestMemoryStoreViewCannotMutate(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Update(context.Background(), func(tx Tx) error {
		return tx.SetAdminFeePositions(map[string]decimal.Decimal{"m1": decimal.NewFromInt(5)})
	}))

	require.NoError(t, s.View(context.Background(), func(tx Tx) error {
		return tx.SetAdminFeePositions(map[string]decimal.Decimal{})
	}))

	require.NoError(t, s.View(context.Background(), func(tx Tx) error {
		fees, err := tx.AdminFeePositions()
		require.NoError(t, err)
		assert.Len(t, fees, 1)
		return nil
	}))
}

func TestMemoryStoreReadsReturnCopies(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Update(context.Background(), func(tx Tx) error {
		return tx.SetPosition("holder", model.LPPosition{Shares: decimal.NewFromInt(7)})
	}))

	require.NoError(t, s.Update(context.Background(), func(tx Tx) error {
		pos, err := tx.Position("holder")
		require.NoError(t, err)
		pos.Shares = decimal.NewFromInt(1) // mutating the copy is a no-op
		return nil
	}))

	require.NoError(t, s.View(context.Background(), func(tx Tx) error {
		pos, err := tx.Position("holder")
		require.NoError(t, err)
		assert.True(t, pos.Shares.Equal(decimal.NewFromInt(7)))
		return nil
	}))
}
