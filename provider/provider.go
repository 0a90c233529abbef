// Package provider defines the calendar backends that contribute busy
// intervals, and the machinery to query them all concurrently. A provider
// that cannot deliver never aborts the computation; its outcome carries
// the reason and the planner works with whatever the others returned.
package provider

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/avail-cli/avail/interval"
	"github.com/samber/mo"
	"golang.org/x/sync/errgroup"
)

// ErrNotConfigured marks a provider that is enabled but missing its
// credentials or endpoint. Callers use errors.Is to tell this apart from a
// fetch that genuinely failed.
var ErrNotConfigured = errors.New("provider not configured")

// Provider is one calendar backend. FetchBusy returns the busy intervals
// between rangeStart and rangeEnd with every instant localized to loc;
// malformed events are dropped inside the provider, not surfaced as
// errors.
type Provider interface {
	Name() string
	FetchBusy(ctx context.Context, rangeStart, rangeEnd time.Time, loc *time.Location) ([]interval.Interval, error)
}

// Outcome is one provider's contribution: Ok with intervals, or Err with
// the reason nothing was contributed.
type Outcome = mo.Result[[]interval.Interval]

// FetchAll queries every provider concurrently and returns an outcome per
// provider name. Failures stay inside their outcome; the other fetches
// run to completion regardless.
func FetchAll(ctx context.Context, providers []Provider, rangeStart, rangeEnd time.Time, loc *time.Location) map[string]Outcome {
	outcomes := make([]Outcome, len(providers))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			ivals, err := p.FetchBusy(ctx, rangeStart, rangeEnd, loc)
			if err != nil {
				outcomes[i] = mo.Err[[]interval.Interval](err)
				return nil
			}
			outcomes[i] = mo.Ok(ivals)
			return nil
		})
	}
	// Goroutines always return nil; errors live in the outcomes.
	_ = g.Wait()

	byName := make(map[string]Outcome, len(providers))
	for i, p := range providers {
		byName[p.Name()] = outcomes[i]
	}
	return byName
}

// Collect concatenates the successful contributions in provider-name order
// so repeated runs see the same sequence. Failed outcomes contribute
// nothing.
func Collect(outcomes map[string]Outcome) []interval.Interval {
	names := make([]string, 0, len(outcomes))
	for name := range outcomes {
		names = append(names, name)
	}
	sort.Strings(names)

	var all []interval.Interval
	for _, name := range names {
		if ivals, err := outcomes[name].Get(); err == nil {
			all = append(all, ivals...)
		}
	}
	return all
}
