package schedule

import (
	"errors"
	"time"

	"github.com/avail-cli/avail/interval"
)

var (
	// ErrNonPositiveDays is returned when a plan is requested for zero or
	// negative days.
	ErrNonPositiveDays = errors.New("days must be a positive integer")
	// ErrNonPositiveBlock is returned when the slot width is zero or
	// negative.
	ErrNonPositiveBlock = errors.New("block size must be a positive number of minutes")
)

// Planner computes per-day availability. It is a pure value: identical
// inputs always produce identical plans. The busy set is injected by the
// caller; the planner never fetches anything itself.
type Planner struct {
	Mode         Mode
	Hours        WorkHours
	BlockMinutes int
	Location     *time.Location
}

// NewPlanner returns a planner with the given mode in loc and default
// hours and block size.
func NewPlanner(mode Mode, loc *time.Location) Planner {
	return Planner{
		Mode:         mode,
		Hours:        DefaultWorkHours(),
		BlockMinutes: DefaultBlockMinutes,
		Location:     loc,
	}
}

// validate reports usage errors before any planning work starts.
func (p Planner) validate(numDays int) error {
	if numDays <= 0 {
		return ErrNonPositiveDays
	}
	if p.BlockMinutes <= 0 {
		return ErrNonPositiveBlock
	}
	return nil
}

// Days lists the dates the planner will consider for a range of numDays
// calendar days starting at startDay. In Professional mode Saturdays and
// Sundays are absent; skipped days still consume the calendar-day quota.
func (p Planner) Days(startDay Date, numDays int) []Date {
	var days []Date
	for i := 0; i < numDays; i++ {
		day := startDay.AddDays(i)
		if p.Mode == Professional {
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
		}
		days = append(days, day)
	}
	return days
}

// Plan computes the free intervals of numDays consecutive calendar days
// starting at startDay, given an already merged busy set. Days without any
// free interval are omitted from the result; weekend days in Professional
// mode never appear at all. The caller is expected to have produced busy
// via interval.Merge.
func (p Planner) Plan(startDay Date, numDays int, busy []interval.Interval) (map[Date][]interval.Interval, error) {
	if err := p.validate(numDays); err != nil {
		return nil, err
	}

	result := make(map[Date][]interval.Interval)
	for _, day := range p.Days(startDay, numDays) {
		window := DayWindow(day, p.Mode, p.Hours, p.Location)
		free := FreeSlots(Tile(window, p.BlockMinutes), busy)
		if len(free) == 0 {
			continue
		}
		result[day] = free
	}
	return result, nil
}
