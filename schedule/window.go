package schedule

import (
	"time"

	"github.com/avail-cli/avail/interval"
)

// Window is the eligible span of one calendar day: [Start, End) in the
// computation's location.
type Window struct {
	Day   Date
	Start time.Time
	End   time.Time
}

// DayWindow computes the eligible window of day under mode. Standard mode
// runs from the work start hour to the next midnight; Professional mode
// stops at the work end hour. Weekend policy is not applied here, the
// planner owns it.
func DayWindow(day Date, mode Mode, hours WorkHours, loc *time.Location) Window {
	start := time.Date(day.Year, day.Month, day.Day, hours.StartHour, 0, 0, 0, loc)

	var end time.Time
	if mode == Professional {
		end = time.Date(day.Year, day.Month, day.Day, hours.EndHour, 0, 0, 0, loc)
	} else {
		end = time.Date(day.Year, day.Month, day.Day+1, 0, 0, 0, 0, loc)
	}

	return Window{Day: day, Start: start, End: end}
}

// Tile splits the window into consecutive fixed-width candidate slots.
// Only whole blocks are emitted: tiling stops once the next slot's end
// would pass the window end, so a partial remainder is dropped. A window
// with End <= Start yields no slots. blockMinutes must be positive; the
// planner validates it before tiling.
func Tile(w Window, blockMinutes int) []interval.Interval {
	block := time.Duration(blockMinutes) * time.Minute

	var slots []interval.Interval
	for t := w.Start; ; t = t.Add(block) {
		end := t.Add(block)
		if end.After(w.End) {
			break
		}
		slots = append(slots, interval.Interval{Start: t, End: end})
	}
	return slots
}
