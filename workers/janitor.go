package workers

import (
	"context"
	"log"
	"time"

	"housefinder/storage"
)

// CacheJanitor prunes cached recommendation state past its TTL so a stale
// result set or saved form never outlives its usefulness. The device id is never touched.
type CacheJanitor struct {
	store     *storage.SQLiteStore
	ttl       time.Duration
	triggerCh chan struct{}
}

func NewCacheJanitor(store *storage.SQLiteStore, ttl time.Duration) *CacheJanitor {
	return &CacheJanitor{
		store:     store,
		ttl:       ttl,
		triggerCh: make(chan struct{}, 1),
	}
}

// Trigger requests an immediate sweep.
func (j *CacheJanitor) Trigger() {
	select {
	case j.triggerCh <- struct{}{}:
	default:
	}
}

// Run sweeps every interval until the context is canceled.
func (j *CacheJanitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.triggerCh:
			j.sweep()
		case <-ctx.Done():
			return
		}
	}
}

func (j *CacheJanitor) sweep() {
	keys := []string{storage.KeyRecommendations, storage.KeySource, storage.KeyForm}
	deleted, err := j.store.DeleteStale(keys, j.ttl)
	if err != nil {
		log.Printf("Janitor: sweep error: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Janitor: pruned %d stale cache entries", deleted)
	}
}
