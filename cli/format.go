package cli

import (
	"fmt"
	"strings"

	"github.com/avail-cli/avail"
	"github.com/avail-cli/avail/interval"
	"github.com/avail-cli/avail/schedule"
)

const (
	noSlotsMessage  = "No available slots found."
	noAvailability  = "No availability"
	slotSeparator   = " // "
	clockTimeLayout = "3:04 PM"
)

// formatResult renders one line per scanned day, slots joined with a
// separator so the whole thing pastes cleanly into a chat message.
func formatResult(res *avail.Result, numDays int, today schedule.Date) string {
	if res.Empty() {
		return noSlotsMessage
	}
	crossMonth := false
	for _, day := range res.Days {
		if day.Day.Month != today.Month {
			crossMonth = true
			break
		}
	}
	lines := make([]string, 0, len(res.Days))
	for _, day := range res.Days {
		label := dayLabel(day.Day, numDays, crossMonth)
		if len(day.Slots) == 0 {
			lines = append(lines, label+" - "+noAvailability)
			continue
		}
		slots := make([]string, 0, len(day.Slots))
		for _, s := range day.Slots {
			slots = append(slots, formatSlot(s))
		}
		lines = append(lines, label+" - "+strings.Join(slots, slotSeparator))
	}
	return strings.Join(lines, "\n")
}

// dayLabel picks the density of the label by how far out the run looks.
// Short runs get a bare weekday; longer runs add the day of the month,
// and once any scanned day leaves the starting month, every label
// carries the month name so the reader never has to guess.
func dayLabel(day schedule.Date, numDays int, crossMonth bool) string {
	wd := day.Weekday().String()[:2]
	switch {
	case numDays < 7:
		return wd
	case crossMonth:
		return fmt.Sprintf("%s %d %s", day.Month, day.Day, wd)
	default:
		return fmt.Sprintf("%s %s", wd, ordinal(day.Day))
	}
}

func formatSlot(iv interval.Interval) string {
	return iv.Start.Format(clockTimeLayout) + " - " + iv.End.Format(clockTimeLayout)
}

func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
