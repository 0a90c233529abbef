package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avail-cli/avail/cache"
	"github.com/avail-cli/avail/interval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedSecondFetchSkipsBackend(t *testing.T) {
	store := cache.NewStore(t.TempDir(), discardLogger())
	inner := &fakeProvider{name: "google", ivals: []interval.Interval{utcSpan(2, 10, 11)}}

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	p := Cached(inner, store, 5*time.Minute, discardLogger()).(*cachedProvider)
	p.now = func() time.Time { return now }

	rangeStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	first, err := p.FetchBusy(context.Background(), rangeStart, rangeEnd, time.UTC)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.EqualValues(t, 1, atomic.LoadInt32(&inner.calls))

	second, err := p.FetchBusy(context.Background(), rangeStart, rangeEnd, time.UTC)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&inner.calls), "cached fetch must not hit the backend")
	require.Len(t, second, 1)
	assert.True(t, second[0].Start.Equal(first[0].Start))
	assert.True(t, second[0].End.Equal(first[0].End))
}

func TestCachedExpiredEntryRefetches(t *testing.T) {
	store := cache.NewStore(t.TempDir(), discardLogger())
	inner := &fakeProvider{name: "google", ivals: []interval.Interval{utcSpan(2, 10, 11)}}

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	p := Cached(inner, store, 5*time.Minute, discardLogger()).(*cachedProvider)
	p.now = func() time.Time { return now }

	rangeStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	_, err := p.FetchBusy(context.Background(), rangeStart, rangeEnd, time.UTC)
	require.NoError(t, err)

	// Move past the max age; the entry is stale and the backend is hit again.
	p.now = func() time.Time { return now.Add(10 * time.Minute) }
	_, err = p.FetchBusy(context.Background(), rangeStart, rangeEnd, time.UTC)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&inner.calls))
}

func TestCachedFetchErrorPassesThroughUncached(t *testing.T) {
	store := cache.NewStore(t.TempDir(), discardLogger())
	boom := errors.New("connection refused")
	inner := &fakeProvider{name: "outlook", err: boom}

	p := Cached(inner, store, 5*time.Minute, discardLogger())

	rangeStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	_, err := p.FetchBusy(context.Background(), rangeStart, rangeEnd, time.UTC)
	assert.ErrorIs(t, err, boom)

	// Nothing was written; a later successful fetch still hits the backend.
	inner.err = nil
	_, err = p.FetchBusy(context.Background(), rangeStart, rangeEnd, time.UTC)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&inner.calls))
}

func TestCachedHitLocalizesToRequestedZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	store := cache.NewStore(t.TempDir(), discardLogger())
	inner := &fakeProvider{name: "google", ivals: []interval.Interval{utcSpan(2, 15, 16)}}

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	p := Cached(inner, store, 5*time.Minute, discardLogger()).(*cachedProvider)
	p.now = func() time.Time { return now }

	rangeStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rangeEnd := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	_, err = p.FetchBusy(context.Background(), rangeStart, rangeEnd, loc)
	require.NoError(t, err)

	cached, err := p.FetchBusy(context.Background(), rangeStart, rangeEnd, loc)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, loc, cached[0].Start.Location())
	assert.True(t, cached[0].Start.Equal(utcSpan(2, 15, 16).Start))
}
