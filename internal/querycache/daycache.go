package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oakfield-health/practice-console/internal/api"
	"github.com/oakfield-health/practice-console/internal/observability/metrics"
)

// DayKeyPrefix namespaces every cached calendar-day response. Invalidation
// always happens at this granularity: a mutation touching a day evicts that
// day's entry, a bulk change evicts the whole prefix.
const DayKeyPrefix = "calendar-day:"

// DayKey builds the cache key for a local date key ("2006-01-02").
func DayKey(dateKey string) string {
	return DayKeyPrefix + dateKey
}

// DayEventCache caches the raw appointment list for each local day.
type DayEventCache struct {
	store   Store
	ttl     time.Duration
	metrics *metrics.ClientMetrics
}

// NewDayEventCache creates a day-keyed cache over the given store. A zero
// ttl means entries live until invalidated.
func NewDayEventCache(store Store, ttl time.Duration, m *metrics.ClientMetrics) *DayEventCache {
	return &DayEventCache{store: store, ttl: ttl, metrics: m}
}

// Get returns the cached appointments for a local date key, if present.
func (c *DayEventCache) Get(ctx context.Context, dateKey string) ([]api.Appointment, bool, error) {
	raw, ok, err := c.store.Get(ctx, DayKey(dateKey))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		c.metrics.ObserveCacheLookup("day", "miss")
		return nil, false, nil
	}
	var appts []api.Appointment
	if err := json.Unmarshal(raw, &appts); err != nil {
		// A corrupt entry is treated as a miss and evicted.
		_ = c.store.Delete(ctx, DayKey(dateKey))
		c.metrics.ObserveCacheLookup("day", "corrupt")
		return nil, false, nil
	}
	c.metrics.ObserveCacheLookup("day", "hit")
	return appts, true, nil
}

// Put stores the appointments for a local date key.
func (c *DayEventCache) Put(ctx context.Context, dateKey string, appts []api.Appointment) error {
	raw, err := json.Marshal(appts)
	if err != nil {
		return fmt.Errorf("querycache: encode day %s: %w", dateKey, err)
	}
	return c.store.Set(ctx, DayKey(dateKey), raw, c.ttl)
}

// Invalidate evicts the given local date keys.
func (c *DayEventCache) Invalidate(ctx context.Context, dateKeys ...string) error {
	if len(dateKeys) == 0 {
		return nil
	}
	keys := make([]string, len(dateKeys))
	for i, dk := range dateKeys {
		keys[i] = DayKey(dk)
	}
	c.metrics.ObserveInvalidation("day")
	return c.store.Delete(ctx, keys...)
}

// InvalidateAll evicts every cached day.
func (c *DayEventCache) InvalidateAll(ctx context.Context) error {
	c.metrics.ObserveInvalidation("all")
	return c.store.DeleteByPrefix(ctx, DayKeyPrefix)
}
