// Package avail computes open meeting slots by subtracting calendar
// events from configurable working windows.
package avail

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/avail-cli/avail/interval"
	"github.com/avail-cli/avail/provider"
	"github.com/avail-cli/avail/schedule"
)

// Request describes one availability computation.
type Request struct {
	// Days is how many calendar days to scan, starting today. Must be
	// positive.
	Days int
	// Professional restricts slots to working hours and skips weekends.
	Professional bool
	// BlockMinutes overrides the slot granularity; zero keeps the
	// default.
	BlockMinutes int
	// Hours overrides the working hours; the zero value keeps the
	// default.
	Hours schedule.WorkHours
	// Location is the timezone everything is computed in; nil means
	// the system zone.
	Location *time.Location
}

// Warning records a provider that contributed nothing and why.
type Warning struct {
	Provider string
	Err      error
}

// Unconfigured reports whether the provider was never set up, as
// opposed to failing.
func (w Warning) Unconfigured() bool {
	return errors.Is(w.Err, provider.ErrNotConfigured)
}

// DaySlots is one scanned day and its free slots, empty when the day is
// fully booked.
type DaySlots struct {
	Day   schedule.Date
	Slots []interval.Interval
}

// Result is the availability for the requested span. Days holds every
// scanned day in order; in professional mode weekends are not scanned
// and do not appear.
type Result struct {
	Days     []DaySlots
	Warnings []Warning
}

// Empty reports whether no day has any free slot.
func (r *Result) Empty() bool {
	for _, d := range r.Days {
		if len(d.Slots) > 0 {
			return false
		}
	}
	return true
}

// Engine wires providers to the planner.
type Engine struct {
	providers []provider.Provider
	logger    *slog.Logger
	now       func() time.Time
}

// NewEngine returns an engine over the given providers, which should
// already be filtered to the enabled ones.
func NewEngine(providers []provider.Provider, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{providers: providers, logger: logger, now: time.Now}
}

// ComputeAvailability fetches busy intervals from every provider and
// subtracts them from the working windows of the next req.Days days.
// Provider failures reduce to warnings; with no providers at all, or
// all of them failing, every slot in the window comes back free.
func (e *Engine) ComputeAvailability(ctx context.Context, req Request) (*Result, error) {
	if req.Days <= 0 {
		return nil, schedule.ErrNonPositiveDays
	}
	if req.BlockMinutes < 0 {
		return nil, schedule.ErrNonPositiveBlock
	}
	loc := req.Location
	if loc == nil {
		loc = time.Local
	}

	mode := schedule.Standard
	if req.Professional {
		mode = schedule.Professional
	}
	planner := schedule.NewPlanner(mode, loc)
	if req.BlockMinutes != 0 {
		planner.BlockMinutes = req.BlockMinutes
	}
	if req.Hours != (schedule.WorkHours{}) {
		planner.Hours = req.Hours
	}

	startDay := schedule.DateOf(e.now().In(loc))
	rangeStart := startDay.Time(loc)
	rangeEnd := startDay.AddDays(req.Days).Time(loc)

	outcomes := provider.FetchAll(ctx, e.providers, rangeStart, rangeEnd, loc)
	busy := interval.Merge(provider.Collect(outcomes))
	warnings := collectWarnings(outcomes)
	for _, w := range warnings {
		if w.Unconfigured() {
			e.logger.Debug("provider skipped", "provider", w.Provider, "reason", w.Err)
		} else {
			e.logger.Warn("provider failed, continuing without it", "provider", w.Provider, "error", w.Err)
		}
	}

	plan, err := planner.Plan(startDay, req.Days, busy)
	if err != nil {
		return nil, err
	}

	days := make([]DaySlots, 0, req.Days)
	for _, day := range planner.Days(startDay, req.Days) {
		days = append(days, DaySlots{Day: day, Slots: plan[day]})
	}

	e.logger.Debug("availability computed",
		"start", startDay,
		"days", len(days),
		"busy", len(busy),
		"warnings", len(warnings))
	return &Result{Days: days, Warnings: warnings}, nil
}

func collectWarnings(outcomes map[string]provider.Outcome) []Warning {
	names := make([]string, 0, len(outcomes))
	for name := range outcomes {
		names = append(names, name)
	}
	sort.Strings(names)

	var warnings []Warning
	for _, name := range names {
		if outcomes[name].IsError() {
			warnings = append(warnings, Warning{Provider: name, Err: outcomes[name].Error()})
		}
	}
	return warnings
}
