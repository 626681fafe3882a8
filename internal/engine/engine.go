package engine

import (
	"context"
	"errors"
	"sort"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/fundgate/fundgate/internal/oracle"
	"github.com/fundgate/fundgate/internal/pkg/apperrors"
	"github.com/fundgate/fundgate/internal/pkg/logger"
	"github.com/fundgate/fundgate/internal/pkg/metrics"
	"github.com/fundgate/fundgate/internal/settlement"
	"github.com/fundgate/fundgate/internal/store"
	"github.com/shopspring/decimal"
)

const oneYearSeconds int64 = 365 * 24 * 60 * 60

// sharePrecision is the fixed scale for every division in the engine.
// All replicas must round identically, so no division goes through the
// package-level default precision.
const sharePrecision int32 = 18

var (
	ten            = decimal.NewFromInt(10)
	one            = decimal.NewFromInt(1)
	baselineShares = decimal.New(1, 18) // first-subscription mint, 1e18 smallest units
)

func div(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, sharePrecision)
}

// Engine is the fund accounting core: it owns every mutation of the share
// ledger and emits settlement instructions only after the enclosing state
// transaction commits.
type Engine struct {
	store   store.Store
	querier oracle.Querier
	sink    settlement.Sink
}

func New(st store.Store, querier oracle.Querier, sink settlement.Sink) *Engine {
	return &Engine{store: st, querier: querier, sink: sink}
}

// Ping is the liveness probe.
func (e *Engine) Ping() string {
	return "pong"
}

// Initialize validates the fund configuration against live market data and
// bootstraps the ledger. Idempotent: when state already exists it only
// verifies the stored config still matches and skips the bootstrap.
func (e *Engine) Initialize(ctx context.Context, cfg model.FundConfig) error {
	return e.store.Update(ctx, func(tx store.Tx) error {
		existing, err := tx.FundConfig()
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Admin != cfg.Admin || existing.QuoteDenom != cfg.QuoteDenom {
				return apperrors.ConfigInvalid("stored fund config does not match the provided one")
			}
			return nil
		}

		if len(cfg.SpotMarkets) == 0 && len(cfg.DerivativeMarketIDs) == 0 {
			return apperrors.ConfigInvalid("no markets provided")
		}

		denoms := map[string]bool{cfg.QuoteDenom: true}

		for _, ref := range cfg.SpotMarkets {
			if ref.OracleSource == "" {
				return apperrors.ConfigInvalid("missing oracle source for spot market " + ref.MarketID)
			}
			market, err := e.querier.SpotMarket(ctx, ref.MarketID)
			if err != nil {
				return err
			}
			if market.QuoteDenom != cfg.QuoteDenom {
				return apperrors.ConfigInvalid("incorrect quote denom for spot market " + ref.MarketID)
			}
			denoms[market.BaseDenom] = true
		}

		for _, marketID := range cfg.DerivativeMarketIDs {
			market, err := e.querier.DerivativeMarket(ctx, marketID)
			if err != nil {
				return err
			}
			if market.QuoteDenom != cfg.QuoteDenom {
				return apperrors.ConfigInvalid("incorrect quote denom for derivative market " + marketID)
			}
		}

		denomList := make([]string, 0, len(denoms))
		for denom := range denoms {
			denomList = append(denomList, denom)
		}
		sort.Strings(denomList)

		denomDecimals, err := e.querier.DenomDecimals(ctx, denomList)
		if err != nil {
			return err
		}
		for _, denom := range denomList {
			if _, ok := denomDecimals[denom]; !ok {
				return apperrors.ConfigInvalid("no decimals registered for denom " + denom)
			}
		}

		if err := tx.SetFundConfig(cfg); err != nil {
			return err
		}
		if err := tx.SetDenomDecimals(denomDecimals); err != nil {
			return err
		}
		if err := tx.SetTotalShares(decimal.Zero); err != nil {
			return err
		}
		if err := tx.SetAdminOwnedShares(decimal.Zero); err != nil {
			return err
		}
		if err := tx.SetAdminFeePositions(map[string]decimal.Decimal{}); err != nil {
			return err
		}
		return tx.SetFundClosed(false)
	})
}

// ExecuteAdminCommands relays a batch of exchange commands on behalf of
// the admin. Only allow-listed command shapes pass, and nothing passes
// once the fund is closed.
func (e *Engine) ExecuteAdminCommands(ctx context.Context, req model.AdminCommandsRequest) error {
	recorder := settlement.NewRecorder()

	err := e.store.Update(ctx, func(tx store.Tx) error {
		cfg, err := loadConfig(tx)
		if err != nil {
			return err
		}
		if req.Sender != cfg.Admin {
			return apperrors.Unauthorized("only the fund admin may execute commands")
		}
		if err := ensureFundOpen(tx); err != nil {
			return err
		}
		for _, cmd := range req.Commands {
			if cmd.Type != model.CommandTypeBatchUpdateOrders {
				return apperrors.Unauthorized("command type not allowed: " + cmd.Type)
			}
		}
		recorder.SubmitCommands(req.Commands)
		return nil
	})
	observe("admin_commands", err)
	if err != nil {
		return err
	}

	e.flush(ctx, recorder)
	return nil
}

func loadConfig(tx store.Tx) (*model.FundConfig, error) {
	cfg, err := tx.FundConfig()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, apperrors.StateInconsistent("fund is not initialized")
	}
	return cfg, nil
}

// flush replays recorded settlement instructions after the state commit.
// The instructions are fire-and-forget within the transaction model; a
// delivery failure is logged, never rolled back.
func (e *Engine) flush(ctx context.Context, recorder *settlement.Recorder) {
	if err := recorder.Flush(ctx, e.sink); err != nil {
		logger.LogError(ctx, err, "failed to deliver settlement instructions")
	}
}

func observe(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrBusinessReject {
			metrics.RejectsTotal.WithLabelValues(op).Inc()
		}
	}
	metrics.TransactionsTotal.WithLabelValues(op, status).Inc()
}
