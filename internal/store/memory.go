package store

import (
	"context"
	"sync"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/shopspring/decimal"
)

// MemoryStore keeps all fund state in process memory. Used for tests and
// deterministic replay; the transaction works on a deep copy that is
// swapped in atomically on commit.
type MemoryStore struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	cfg          *model.FundConfig
	decimals     map[string]uint32
	totalShares  decimal.Decimal
	positions    map[string]model.LPPosition
	adminShares  decimal.Decimal
	feePositions map[string]decimal.Decimal
	closed       bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: memState{
			positions:    make(map[string]model.LPPosition),
			feePositions: make(map[string]decimal.Decimal),
		},
	}
}

func (s *MemoryStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(&memTx{state: &staged}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

func (s *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	return fn(&memTx{state: &staged})
}

func (st memState) clone() memState {
	out := st
	if st.cfg != nil {
		cfg := *st.cfg
		cfg.SpotMarkets = append([]model.SpotMarketRef(nil), st.cfg.SpotMarkets...)
		cfg.DerivativeMarketIDs = append([]string(nil), st.cfg.DerivativeMarketIDs...)
		out.cfg = &cfg
	}
	out.decimals = make(map[string]uint32, len(st.decimals))
	for k, v := range st.decimals {
		out.decimals[k] = v
	}
	out.positions = make(map[string]model.LPPosition, len(st.positions))
	for k, v := range st.positions {
		out.positions[k] = v
	}
	out.feePositions = make(map[string]decimal.Decimal, len(st.feePositions))
	for k, v := range st.feePositions {
		out.feePositions[k] = v
	}
	return out
}

type memTx struct {
	state *memState
}

func (t *memTx) FundConfig() (*model.FundConfig, error) {
	if t.state.cfg == nil {
		return nil, nil
	}
	cfg := *t.state.cfg
	return &cfg, nil
}

func (t *memTx) SetFundConfig(cfg model.FundConfig) error {
	t.state.cfg = &cfg
	return nil
}

func (t *memTx) DenomDecimals() (map[string]uint32, error) {
	out := make(map[string]uint32, len(t.state.decimals))
	for k, v := range t.state.decimals {
		out[k] = v
	}
	return out, nil
}

func (t *memTx) SetDenomDecimals(decimals map[string]uint32) error {
	next := make(map[string]uint32, len(decimals))
	for k, v := range decimals {
		next[k] = v
	}
	t.state.decimals = next
	return nil
}

func (t *memTx) TotalShares() (decimal.Decimal, error) {
	return t.state.totalShares, nil
}

func (t *memTx) SetTotalShares(total decimal.Decimal) error {
	t.state.totalShares = total
	return nil
}

func (t *memTx) Position(holder string) (*model.LPPosition, error) {
	pos, ok := t.state.positions[holder]
	if !ok {
		return nil, nil
	}
	return &pos, nil
}

func (t *memTx) SetPosition(holder string, pos model.LPPosition) error {
	t.state.positions[holder] = pos
	return nil
}

func (t *memTx) DeletePosition(holder string) error {
	delete(t.state.positions, holder)
	return nil
}

func (t *memTx) AdminOwnedShares() (decimal.Decimal, error) {
	return t.state.adminShares, nil
}

func (t *memTx) SetAdminOwnedShares(shares decimal.Decimal) error {
	t.state.adminShares = shares
	return nil
}

func (t *memTx) AdminFeePositions() (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(t.state.feePositions))
	for k, v := range t.state.feePositions {
		out[k] = v
	}
	return out, nil
}

func (t *memTx) SetAdminFeePositions(positions map[string]decimal.Decimal) error {
	next := make(map[string]decimal.Decimal, len(positions))
	for k, v := range positions {
		next[k] = v
	}
	t.state.feePositions = next
	return nil
}

func (t *memTx) IsFundClosed() (bool, error) {
	return t.state.closed, nil
}

func (t *memTx) SetFundClosed(closed bool) error {
	t.state.closed = closed
	return nil
}
