package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iqbalbaharum/pool-sniper/internal/types"
	"github.com/redis/go-redis/v9"
)

// RecordCache is the hot copy of pool-genesis records, keyed by amm
// id. MySQL stays the source of truth; the cache only saves a round
// trip on the read path.
type RecordCache struct {
	client *redis.Client
}

func NewRecordCache(client *redis.Client) *RecordCache {
	return &RecordCache{client: client}
}

func (c *RecordCache) Set(ctx context.Context, rec *types.PoolGenesisRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return c.client.HSet(ctx, rec.AmmID.String(), KEY_RECORD, data).Err()
}

func (c *RecordCache) Get(ctx context.Context, ammId string) (*types.PoolGenesisRecord, error) {
	data, err := c.client.HGet(ctx, ammId, KEY_RECORD).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, types.ErrNotFound
		}
		return nil, err
	}

	var rec types.PoolGenesisRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("%w: cached record: %v", types.ErrDecode, err)
	}

	return &rec, nil
}
