package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/avail-cli/avail/cache"
	"github.com/avail-cli/avail/interval"
)

// cachedProvider consults the range cache before delegating to the real
// backend, and writes successful fetches back.
type cachedProvider struct {
	inner  Provider
	store  *cache.Store
	maxAge time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// Cached wraps p with the store: a fresh entry covering the requested
// range short-circuits the fetch entirely. Fetch errors pass through
// unchanged; a failed cache write is only a warning because the fetched
// data is already in hand.
func Cached(p Provider, store *cache.Store, maxAge time.Duration, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &cachedProvider{
		inner:  p,
		store:  store,
		maxAge: maxAge,
		now:    time.Now,
		logger: logger,
	}
}

func (c *cachedProvider) Name() string { return c.inner.Name() }

func (c *cachedProvider) FetchBusy(ctx context.Context, rangeStart, rangeEnd time.Time, loc *time.Location) ([]interval.Interval, error) {
	now := c.now()

	if ivals, ok := c.store.Lookup(c.inner.Name(), rangeStart, rangeEnd, now, c.maxAge).Get(); ok {
		for i := range ivals {
			ivals[i].Start = ivals[i].Start.In(loc)
			ivals[i].End = ivals[i].End.In(loc)
		}
		c.logger.Debug("cache hit", "provider", c.inner.Name(), "intervals", len(ivals))
		return ivals, nil
	}

	ivals, err := c.inner.FetchBusy(ctx, rangeStart, rangeEnd, loc)
	if err != nil {
		return nil, err
	}

	entry := cache.Entry{
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		FetchedAt:  now,
		Intervals:  ivals,
	}
	if err := c.store.Put(c.inner.Name(), entry); err != nil {
		c.logger.Warn("cache write failed", "provider", c.inner.Name(), "error", err)
	}
	return ivals, nil
}
