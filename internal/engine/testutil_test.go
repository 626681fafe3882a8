package engine

import (
	"context"
	"testing"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/fundgate/fundgate/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testAdmin     = "inj1admin"
	testHolder    = "inj1holder"
	testHolder2   = "inj1holder2"
	testFundSub   = "fund-sub-0"
	testQuote     = "usdt"
	testSpotID    = "spot-atom-usdt"
	testSpotBase  = "atom"
	testPerpID    = "perp-btc-usdt"
	testRedeemSub = "redeemer-sub-0"
)

// fakeQuerier is a static market-data oracle for tests. Position reads
// hand out copies since the engine applies funding in place.
type fakeQuerier struct {
	spotMarkets       map[string]model.SpotMarket
	derivativeMarkets map[string]model.DerivativeMarket
	deposits          map[string]decimal.Decimal // denom -> fund balance
	positions         map[string]model.DerivativePosition
	prices            map[string]decimal.Decimal // base denom -> raw price
	decimals          map[string]uint32
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		spotMarkets: map[string]model.SpotMarket{
			testSpotID: {MarketID: testSpotID, BaseDenom: testSpotBase, QuoteDenom: testQuote},
		},
		derivativeMarkets: map[string]model.DerivativeMarket{
			testPerpID: {
				MarketID:          testPerpID,
				QuoteDenom:        testQuote,
				MarkPrice:         decimal.NewFromInt(100),
				CumulativeFunding: decimal.Zero,
			},
		},
		deposits: map[string]decimal.Decimal{},
		positions: map[string]model.DerivativePosition{},
		prices: map[string]decimal.Decimal{
			testSpotBase: decimal.NewFromInt(2),
		},
		decimals: map[string]uint32{
			testQuote:    6,
			testSpotBase: 6,
		},
	}
}

func (q *fakeQuerier) SpotMarket(_ context.Context, marketID string) (*model.SpotMarket, error) {
	m, ok := q.spotMarkets[marketID]
	if !ok {
		return nil, errNotFound(marketID)
	}
	return &m, nil
}

func (q *fakeQuerier) DerivativeMarket(_ context.Context, marketID string) (*model.DerivativeMarket, error) {
	m, ok := q.derivativeMarkets[marketID]
	if !ok {
		return nil, errNotFound(marketID)
	}
	return &m, nil
}

func (q *fakeQuerier) SubaccountDeposit(_ context.Context, _, denom string) (decimal.Decimal, error) {
	balance, ok := q.deposits[denom]
	if !ok {
		return decimal.Zero, nil
	}
	return balance, nil
}

func (q *fakeQuerier) SubaccountPosition(_ context.Context, marketID, _ string) (*model.DerivativePosition, error) {
	p, ok := q.positions[marketID]
	if !ok {
		return nil, nil
	}
	copied := p
	return &copied, nil
}

func (q *fakeQuerier) OraclePrice(_ context.Context, _, baseDenom, _ string) (decimal.Decimal, error) {
	price, ok := q.prices[baseDenom]
	if !ok {
		return decimal.Zero, errNotFound(baseDenom)
	}
	return price, nil
}

func (q *fakeQuerier) DenomDecimals(_ context.Context, denoms []string) (map[string]uint32, error) {
	out := make(map[string]uint32, len(denoms))
	for _, denom := range denoms {
		if d, ok := q.decimals[denom]; ok {
			out[denom] = d
		}
	}
	return out, nil
}

type notFoundErr string

func (e notFoundErr) Error() string { return "not found: " + string(e) }

func errNotFound(id string) error { return notFoundErr(id) }

// recordingSink captures emitted settlement instructions.
type recordingSink struct {
	cash      []model.CashTransfer
	positions []model.PositionTransfer
	commands  []model.OrderCommand
}

func (s *recordingSink) SendCash(_ context.Context, transfer model.CashTransfer) error {
	s.cash = append(s.cash, transfer)
	return nil
}

func (s *recordingSink) TransferPosition(_ context.Context, transfer model.PositionTransfer) error {
	s.positions = append(s.positions, transfer)
	return nil
}

func (s *recordingSink) SubmitCommands(_ context.Context, commands []model.OrderCommand) error {
	s.commands = append(s.commands, commands...)
	return nil
}

func testFundConfig() model.FundConfig {
	return model.FundConfig{
		Admin:               testAdmin,
		SpotMarkets:         []model.SpotMarketRef{{MarketID: testSpotID, OracleSource: "band"}},
		DerivativeMarketIDs: []string{testPerpID},
		QuoteDenom:          testQuote,
		FundSubaccountID:    testFundSub,
		PerformanceFeeRate:  decimal.RequireFromString("0.2"),
		MinYearlyROIForFees: decimal.RequireFromString("1.1"),
	}
}

type testEnv struct {
	engine  *Engine
	store   *store.MemoryStore
	querier *fakeQuerier
	sink    *recordingSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:   store.NewMemoryStore(),
		querier: newFakeQuerier(),
		sink:    &recordingSink{},
	}
	env.engine = New(env.store, env.querier, env.sink)
	require.NoError(t, env.engine.Initialize(context.Background(), testFundConfig()))
	return env
}

func (env *testEnv) totalShares(t *testing.T) decimal.Decimal {
	t.Helper()
	var total decimal.Decimal
	require.NoError(t, env.store.View(context.Background(), func(tx store.Tx) error {
		var err error
		total, err = tx.TotalShares()
		return err
	}))
	return total
}

func (env *testEnv) position(t *testing.T, holder string) *model.LPPosition {
	t.Helper()
	var pos *model.LPPosition
	require.NoError(t, env.store.View(context.Background(), func(tx store.Tx) error {
		var err error
		pos, err = tx.Position(holder)
		return err
	}))
	return pos
}

func (env *testEnv) adminShares(t *testing.T) decimal.Decimal {
	t.Helper()
	var shares decimal.Decimal
	require.NoError(t, env.store.View(context.Background(), func(tx store.Tx) error {
		var err error
		shares, err = tx.AdminOwnedShares()
		return err
	}))
	return shares
}

func (env *testEnv) feePositions(t *testing.T) map[string]decimal.Decimal {
	t.Helper()
	var positions map[string]decimal.Decimal
	require.NoError(t, env.store.View(context.Background(), func(tx store.Tx) error {
		var err error
		positions, err = tx.AdminFeePositions()
		return err
	}))
	return positions
}

func (env *testEnv) closeForTest(t *testing.T) {
	t.Helper()
	require.NoError(t, env.store.Update(context.Background(), func(tx store.Tx) error {
		return tx.SetFundClosed(true)
	}))
}

func (env *testEnv) subscribe(t *testing.T, sender string, blockTime int64, amount string) *model.SubscribeResponse {
	t.Helper()
	resp, err := env.engine.Subscribe(context.Background(), model.SubscribeRequest{
		Sender:    sender,
		BlockTime: blockTime,
		Funds:     []model.Coin{{Denom: testQuote, Amount: decimal.RequireFromString(amount)}},
	})
	require.NoError(t, err)
	return resp
}

func requireRejected(t *testing.T, err error, contains string) {
	t.Helper()
	require.Error(t, err)
	require.Contains(t, err.Error(), contains)
}
