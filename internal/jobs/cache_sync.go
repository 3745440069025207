package jobs

import (
	"context"
	"time"

	"github.com/emrgen/taxonomy/internal/cache"
	"github.com/emrgen/taxonomy/internal/store"
	"github.com/sirupsen/logrus"
)

// CacheSyncTask re-primes the entry cache with rows updated since the last
// run, so reads after a save hit the cache instead of the database.
type CacheSyncTask struct {
	store    store.Store
	cache    cache.EntryCache
	cron     string
	lastSync time.Time
}

func NewCacheSyncTask(interval string, store store.Store, cache cache.EntryCache) *CacheSyncTask {
	return &CacheSyncTask{
		store:    store,
		cache:    cache,
		cron:     interval,
		lastSync: time.Now(),
	}
}

func (c *CacheSyncTask) ID() string {
	return "cache_sync"
}

func (c *CacheSyncTask) Schedule() string {
	return c.cron
}

func (c *CacheSyncTask) Run() {
	ctx := context.Background()
	since := c.lastSync
	c.lastSync = time.Now()

	entries, err := c.store.ListEntriesUpdatedSince(ctx, since)
	if err != nil {
		logrus.Errorf("cache sync: listing updated entries: %v", err)
		return
	}

	for _, entry := range entries {
		if err := c.cache.SetEntry(ctx, entry); err != nil {
			logrus.Errorf("cache sync: priming entry %d: %v", entry.ID, err)
		}
	}

	if len(entries) > 0 {
		logrus.Infof("cache sync: primed %d entries", len(entries))
	}
}
