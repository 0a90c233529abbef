package schedule

import (
	"github.com/avail-cli/avail/interval"
)

// FreeSlots filters the candidate slots down to those that overlap no busy
// interval, then merges exactly adjacent survivors into larger ranges.
// busy must be the sorted, disjoint output of interval.Merge; candidates
// must be in chronological order, as produced by Tile.
func FreeSlots(candidates, busy []interval.Interval) []interval.Interval {
	var free []interval.Interval

	bi := 0
	for _, slot := range candidates {
		// Skip busy intervals that ended at or before this slot. Because
		// both sequences are sorted, only the first remaining busy interval
		// can overlap the slot.
		for bi < len(busy) && !busy[bi].End.After(slot.Start) {
			bi++
		}
		if bi < len(busy) && slot.Overlaps(busy[bi]) {
			continue
		}
		free = append(free, slot)
	}

	return mergeAdjacent(free)
}

// mergeAdjacent joins slots whose bounds meet exactly. Unlike busy merging
// this never bridges a gap: [9:00,9:15) and [9:15,9:30) become one range,
// but a missing quarter hour between two slots keeps them apart.
func mergeAdjacent(slots []interval.Interval) []interval.Interval {
	if len(slots) == 0 {
		return nil
	}

	merged := make([]interval.Interval, 0, len(slots))
	cur := slots[0]
	for _, s := range slots[1:] {
		if s.Start.Equal(cur.End) {
			cur.End = s.End
			continue
		}
		merged = append(merged, cur)
		cur = s
	}
	return append(merged, cur)
}
