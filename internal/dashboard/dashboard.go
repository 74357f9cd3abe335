// Package dashboard assembles the console's landing snapshot. Every card is
// fetched concurrently and fails independently; a dead metrics endpoint never
// blanks the appointment counts.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/oakfield-health/practice-console/internal/api"
	"github.com/oakfield-health/practice-console/internal/calendar"
	"github.com/oakfield-health/practice-console/internal/querycache"
	"github.com/oakfield-health/practice-console/internal/timewire"
	"github.com/oakfield-health/practice-console/pkg/logging"
)

// Card is one dashboard tile: either a value or the error that replaced it.
type Card[T any] struct {
	Value T
	Err   error
}

// Snapshot is the assembled dashboard state.
type Snapshot struct {
	TodayCount    Card[int]
	WeekCount     Card[int]
	PatientTotal  Card[int]
	BackendHealth Card[string]
	BackendInfo   Card[api.SystemInfo]
	TakenAt       time.Time
}

// Builder fetches dashboard snapshots. Day counts go through the same query
// cache the calendar uses, so a freshly viewed week costs no extra requests.
type Builder struct {
	client *api.Client
	cache  *querycache.DayEventCache
	loc    *time.Location
	logger *logging.Logger
	now    func() time.Time
}

// NewBuilder wires a dashboard builder.
func NewBuilder(client *api.Client, cache *querycache.DayEventCache, loc *time.Location, logger *logging.Logger) *Builder {
	if loc == nil {
		loc = time.Local
	}
	return &Builder{
		client: client,
		cache:  cache,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// Build fans out one fetch per card and waits for all of them.
func (b *Builder) Build(ctx context.Context) Snapshot {
	now := b.now().In(b.loc)
	snap := Snapshot{TakenAt: now}

	var wg sync.WaitGroup
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	run(func() {
		snap.TodayCount.Value, snap.TodayCount.Err = b.countDays(ctx, now, 1)
	})
	run(func() {
		snap.WeekCount.Value, snap.WeekCount.Err = b.countDays(ctx, calendar.StartOfISOWeek(now, b.loc), 7)
	})
	run(func() {
		snap.PatientTotal.Value, snap.PatientTotal.Err = b.patientTotal(ctx)
	})
	run(func() {
		snap.BackendHealth.Value, snap.BackendHealth.Err = b.health(ctx)
	})
	run(func() {
		info, err := b.client.Info(ctx)
		if err != nil {
			snap.BackendInfo.Err = err
			return
		}
		snap.BackendInfo.Value = *info
	})
	wg.Wait()

	for _, err := range []error{snap.TodayCount.Err, snap.WeekCount.Err, snap.PatientTotal.Err, snap.BackendHealth.Err, snap.BackendInfo.Err} {
		if err != nil {
			b.logger.Warn("dashboard card failed", "error", err)
		}
	}
	return snap
}

// countDays sums the appointments of n consecutive days starting at first,
// reading each day through the cache.
func (b *Builder) countDays(ctx context.Context, first time.Time, n int) (int, error) {
	total := 0
	for i := 0; i < n; i++ {
		key := timewire.DateKey(first.AddDate(0, 0, i), b.loc)
		appts, ok, err := b.cache.Get(ctx, key)
		if err != nil {
			b.logger.Warn("cache read failed", "day", key, "error", err)
			ok = false
		}
		if !ok {
			appts, err = b.client.DayAppointments(ctx, key)
			if err != nil {
				return 0, err
			}
			if err := b.cache.Put(ctx, key, appts); err != nil {
				b.logger.Warn("cache write failed", "day", key, "error", err)
			}
		}
		total += len(appts)
	}
	return total, nil
}

// patientTotal reads the total from the first page's pagination envelope
// instead of walking every page.
func (b *Builder) patientTotal(ctx context.Context) (int, error) {
	page, err := b.client.ListPatients(ctx, api.PatientQuery{Page: 1, Limit: 1})
	if err != nil {
		return 0, err
	}
	return page.Meta.Total, nil
}

func (b *Builder) health(ctx context.Context) (string, error) {
	status, err := b.client.Health(ctx)
	if err != nil {
		return "unreachable", err
	}
	return status.Status, nil
}
