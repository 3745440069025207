package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/emrgen/taxonomy/internal/model"
	redis "github.com/redis/go-redis/v9"
)

const (
	entryVersionHash = "entry:version"
	entryTTL         = time.Hour
)

func entryKey(id uint) string {
	return "entry:" + strconv.FormatUint(uint64(id), 10)
}

// EntryCache fronts the live-entry read path. Misses return (nil, nil), the
// caller falls through to the store.
type EntryCache interface {
	// GetEntry gets the live entry from the cache.
	GetEntry(ctx context.Context, id uint) (*model.TaxonEntry, error)
	// GetEntryVersion gets the cached live version of an entry. Misses
	// return 0.
	GetEntryVersion(ctx context.Context, id uint) (int64, error)
	// SetEntry sets the live entry and its version in the cache.
	SetEntry(ctx context.Context, entry *model.TaxonEntry) error
	// DeleteEntry drops an entry from the cache.
	DeleteEntry(ctx context.Context, id uint) error
}

var _ EntryCache = (*RedisEntryCache)(nil)

type RedisEntryCache struct {
	client *redis.Client
}

func NewRedisEntryCache(r *Redis) *RedisEntryCache {
	return &RedisEntryCache{client: r.client}
}

func (r *RedisEntryCache) GetEntry(ctx context.Context, id uint) (*model.TaxonEntry, error) {
	res := r.client.Get(ctx, entryKey(id))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, nil
		}
		return nil, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	entry := &model.TaxonEntry{}
	err = json.Unmarshal(buf, entry)
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *RedisEntryCache) GetEntryVersion(ctx context.Context, id uint) (int64, error) {
	res := r.client.HGet(ctx, entryVersionHash, entryKey(id))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return 0, nil
		}
		return 0, res.Err()
	}

	return strconv.ParseInt(res.Val(), 10, 64)
}

func (r *RedisEntryCache) SetEntry(ctx context.Context, entry *model.TaxonEntry) error {
	marshal, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := p.Set(ctx, entryKey(entry.ID), marshal, entryTTL).Err(); err != nil {
			return err
		}

		if err := p.HSet(ctx, entryVersionHash, entryKey(entry.ID), entry.Version).Err(); err != nil {
			return err
		}

		return nil
	})

	return err
}

func (r *RedisEntryCache) DeleteEntry(ctx context.Context, id uint) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := p.Del(ctx, entryKey(id)).Err(); err != nil {
			return err
		}

		if err := p.HDel(ctx, entryVersionHash, entryKey(id)).Err(); err != nil {
			return err
		}

		return nil
	})

	return err
}
