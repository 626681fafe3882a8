package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fundgate/fundgate/internal/model"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// PostgresStore persists fund state in Postgres. Singleton records live in
// fund_records as JSON; holder positions and fee positions get keyed rows
// so a call only rewrites the rows it touches.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(1 * time.Hour)

	s := &PostgresStore{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fund_records (
			key   TEXT PRIMARY KEY,
			value JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS lp_positions (
			holder              TEXT PRIMARY KEY,
			shares              TEXT NOT NULL,
			subscription_time   BIGINT NOT NULL,
			subscription_amount TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS admin_fee_positions (
			market_id TEXT PRIMARY KEY,
			quantity  TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, fn, false)
}

func (s *PostgresStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, fn, true)
}

func (s *PostgresStore) run(ctx context.Context, fn func(tx Tx) error, readOnly bool) error {
	sqlTx, err := s.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(&pgTx{ctx: ctx, tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if readOnly {
		return sqlTx.Rollback()
	}
	return sqlTx.Commit()
}

type pgTx struct {
	ctx context.Context
	tx  *sqlx.Tx
}

func (t *pgTx) loadRecord(key string, out any) (bool, error) {
	var raw []byte
	err := t.tx.QueryRowxContext(t.ctx, `SELECT value FROM fund_records WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, out)
}

func (t *pgTx) saveRecord(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO fund_records (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = $2
	`, key, raw)
	return err
}

func (t *pgTx) FundConfig() (*model.FundConfig, error) {
	var cfg model.FundConfig
	ok, err := t.loadRecord("config", &cfg)
	if err != nil || !ok {
		return nil, err
	}
	return &cfg, nil
}

func (t *pgTx) SetFundConfig(cfg model.FundConfig) error {
	return t.saveRecord("config", cfg)
}

func (t *pgTx) DenomDecimals() (map[string]uint32, error) {
	decimals := make(map[string]uint32)
	if _, err := t.loadRecord("denom_decimals", &decimals); err != nil {
		return nil, err
	}
	return decimals, nil
}

func (t *pgTx) SetDenomDecimals(decimals map[string]uint32) error {
	return t.saveRecord("denom_decimals", decimals)
}

func (t *pgTx) TotalShares() (decimal.Decimal, error) {
	return t.loadDecimal("total_shares")
}

func (t *pgTx) SetTotalShares(total decimal.Decimal) error {
	return t.saveRecord("total_shares", total)
}

func (t *pgTx) AdminOwnedShares() (decimal.Decimal, error) {
	return t.loadDecimal("admin_owned_shares")
}

func (t *pgTx) SetAdminOwnedShares(shares decimal.Decimal) error {
	return t.saveRecord("admin_owned_shares", shares)
}

func (t *pgTx) loadDecimal(key string) (decimal.Decimal, error) {
	var d decimal.Decimal
	ok, err := t.loadRecord(key, &d)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, nil
	}
	return d, nil
}

func (t *pgTx) Position(holder string) (*model.LPPosition, error) {
	var row struct {
		Shares             string `db:"shares"`
		SubscriptionTime   int64  `db:"subscription_time"`
		SubscriptionAmount string `db:"subscription_amount"`
	}
	err := t.tx.GetContext(t.ctx, &row,
		`SELECT shares, subscription_time, subscription_amount FROM lp_positions WHERE holder = $1`, holder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	shares, err := decimal.NewFromString(row.Shares)
	if err != nil {
		return nil, fmt.Errorf("corrupt shares for holder %s: %w", holder, err)
	}
	amount, err := decimal.NewFromString(row.SubscriptionAmount)
	if err != nil {
		return nil, fmt.Errorf("corrupt subscription amount for holder %s: %w", holder, err)
	}
	return &model.LPPosition{
		Shares:             shares,
		SubscriptionTime:   row.SubscriptionTime,
		SubscriptionAmount: amount,
	}, nil
}

func (t *pgTx) SetPosition(holder string, pos model.LPPosition) error {
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO lp_positions (holder, shares, subscription_time, subscription_amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (holder)
		DO UPDATE SET shares = $2, subscription_time = $3, subscription_amount = $4
	`, holder, pos.Shares.String(), pos.SubscriptionTime, pos.SubscriptionAmount.String())
	return err
}

func (t *pgTx) DeletePosition(holder string) error {
	_, err := t.tx.ExecContext(t.ctx, `DELETE FROM lp_positions WHERE holder = $1`, holder)
	return err
}

func (t *pgTx) AdminFeePositions() (map[string]decimal.Decimal, error) {
	rows, err := t.tx.QueryxContext(t.ctx, `SELECT market_id, quantity FROM admin_fee_positions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var marketID, quantity string
		if err := rows.Scan(&marketID, &quantity); err != nil {
			return nil, err
		}
		q, err := decimal.NewFromString(quantity)
		if err != nil {
			return nil, fmt.Errorf("corrupt fee position for market %s: %w", marketID, err)
		}
		out[marketID] = q
	}
	return out, rows.Err()
}

func (t *pgTx) SetAdminFeePositions(positions map[string]decimal.Decimal) error {
	if _, err := t.tx.ExecContext(t.ctx, `DELETE FROM admin_fee_positions`); err != nil {
		return err
	}
	for marketID, quantity := range positions {
		_, err := t.tx.ExecContext(t.ctx,
			`INSERT INTO admin_fee_positions (market_id, quantity) VALUES ($1, $2)`,
			marketID, quantity.String())
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *pgTx) IsFundClosed() (bool, error) {
	var closed bool
	ok, err := t.loadRecord("fund_closed", &closed)
	if err != nil || !ok {
		return false, err
	}
	return closed, nil
}

func (t *pgTx) SetFundClosed(closed bool) error {
	return t.saveRecord("fund_closed", closed)
}
