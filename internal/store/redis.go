package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fundgate/fundgate/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	keyConfig        = "fund:config"
	keyDenomDecimals = "fund:denom_decimals"
	keyTotalShares   = "fund:total_shares"
	keyAdminShares   = "fund:admin_owned_shares"
	keyFeePositions  = "fund:fee_positions"
	keyFundClosed    = "fund:closed"
	keyPositionFmt   = "fund:position:%s"
)

// RedisStore keeps fund state in Redis as JSON values. Reads go straight
// to the server; writes are staged and committed with a single TxPipeline
// so a failed call leaves nothing behind. Serial execution per fund makes
// this all-or-nothing commit sufficient.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: rdb}, nil
}

func (s *RedisStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	tx := &redisTx{
		ctx:     ctx,
		client:  s.client,
		staged:  make(map[string][]byte),
		deleted: make(map[string]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

func (s *RedisStore) View(ctx context.Context, fn func(tx Tx) error) error {
	tx := &redisTx{
		ctx:     ctx,
		client:  s.client,
		staged:  make(map[string][]byte),
		deleted: make(map[string]bool),
	}
	return fn(tx)
}

type redisTx struct {
	ctx     context.Context
	client  *redis.Client
	staged  map[string][]byte
	deleted map[string]bool
}

func (t *redisTx) commit() error {
	if len(t.staged) == 0 && len(t.deleted) == 0 {
		return nil
	}
	pipe := t.client.TxPipeline()
	for key, raw := range t.staged {
		pipe.Set(t.ctx, key, raw, 0)
	}
	for key := range t.deleted {
		pipe.Del(t.ctx, key)
	}
	_, err := pipe.Exec(t.ctx)
	return err
}

// load reads a key honoring the call's own staged writes; returns false
// when the key is unset.
func (t *redisTx) load(key string, out any) (bool, error) {
	if t.deleted[key] {
		return false, nil
	}
	if raw, ok := t.staged[key]; ok {
		return true, json.Unmarshal(raw, out)
	}
	raw, err := t.client.Get(t.ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, out)
}

func (t *redisTx) save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	delete(t.deleted, key)
	t.staged[key] = raw
	return nil
}

func (t *redisTx) FundConfig() (*model.FundConfig, error) {
	var cfg model.FundConfig
	ok, err := t.load(keyConfig, &cfg)
	if err != nil || !ok {
		return nil, err
	}
	return &cfg, nil
}

func (t *redisTx) SetFundConfig(cfg model.FundConfig) error {
	return t.save(keyConfig, cfg)
}

func (t *redisTx) DenomDecimals() (map[string]uint32, error) {
	decimals := make(map[string]uint32)
	if _, err := t.load(keyDenomDecimals, &decimals); err != nil {
		return nil, err
	}
	return decimals, nil
}

func (t *redisTx) SetDenomDecimals(decimals map[string]uint32) error {
	return t.save(keyDenomDecimals, decimals)
}

func (t *redisTx) TotalShares() (decimal.Decimal, error) {
	return t.loadDecimal(keyTotalShares)
}

func (t *redisTx) SetTotalShares(total decimal.Decimal) error {
	return t.save(keyTotalShares, total)
}

func (t *redisTx) AdminOwnedShares() (decimal.Decimal, error) {
	return t.loadDecimal(keyAdminShares)
}

func (t *redisTx) SetAdminOwnedShares(shares decimal.Decimal) error {
	return t.save(keyAdminShares, shares)
}

func (t *redisTx) loadDecimal(key string) (decimal.Decimal, error) {
	var d decimal.Decimal
	ok, err := t.load(key, &d)
	if err != nil || !ok {
		return decimal.Zero, err
	}
	return d, nil
}

func (t *redisTx) Position(holder string) (*model.LPPosition, error) {
	var pos model.LPPosition
	ok, err := t.load(fmt.Sprintf(keyPositionFmt, holder), &pos)
	if err != nil || !ok {
		return nil, err
	}
	return &pos, nil
}

func (t *redisTx) SetPosition(holder string, pos model.LPPosition) error {
	return t.save(fmt.Sprintf(keyPositionFmt, holder), pos)
}

func (t *redisTx) DeletePosition(holder string) error {
	key := fmt.Sprintf(keyPositionFmt, holder)
	delete(t.staged, key)
	t.deleted[key] = true
	return nil
}

func (t *redisTx) AdminFeePositions() (map[string]decimal.Decimal, error) {
	positions := make(map[string]decimal.Decimal)
	if _, err := t.load(keyFeePositions, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

func (t *redisTx) SetAdminFeePositions(positions map[string]decimal.Decimal) error {
	return t.save(keyFeePositions, positions)
}

func (t *redisTx) IsFundClosed() (bool, error) {
	var closed bool
	ok, err := t.load(keyFundClosed, &closed)
	if err != nil || !ok {
		return false, err
	}
	return closed, nil
}

func (t *redisTx) SetFundClosed(closed bool) error {
	return t.save(keyFundClosed, closed)
}
