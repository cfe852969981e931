package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ignatzorin/services-marketplace/internal/models"
)

// MemoryRatingCache хранит рейтинги в памяти процесса, когда Redis не настроен.
type MemoryRatingCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	cache map[int64]*cacheEntry
}

type cacheEntry struct {
	rating    models.WorkerRating
	expiresAt time.Time
}

// NewMemoryRatingCache создаёт кэш и запускает очистку устаревших записей до отмены ctx.
func NewMemoryRatingCache(ctx context.Context, ttl time.Duration) *MemoryRatingCache {
	c := &MemoryRatingCache{
		ttl:   ttl,
		cache: make(map[int64]*cacheEntry),
	}
	go c.cleanup(ctx)
	return c
}

func (c *MemoryRatingCache) Get(_ context.Context, workerID int64) (*models.WorkerRating, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[workerID]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	rating := entry.rating
	return &rating, true
}

// Set не заменяет агрегат, посчитанный по большему числу отзывов.
func (c *MemoryRatingCache) Set(_ context.Context, rating *models.WorkerRating) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if cur, ok := c.cache[rating.WorkerID]; ok && now.Before(cur.expiresAt) && cur.rating.TotalReviews > rating.TotalReviews {
		return
	}
	c.cache[rating.WorkerID] = &cacheEntry{
		rating:    *rating,
		expiresAt: now.Add(c.ttl),
	}
}

func (c *MemoryRatingCache) Invalidate(_ context.Context, workerID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, workerID)
}

func (c *MemoryRatingCache) cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.cache {
				if now.After(entry.expiresAt) {
					delete(c.cache, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
