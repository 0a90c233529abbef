package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/avail-cli/avail"
	"github.com/avail-cli/avail/interval"
	"github.com/avail-cli/avail/schedule"
)

func TestOrdinal(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "1st"}, {2, "2nd"}, {3, "3rd"}, {4, "4th"},
		{11, "11th"}, {12, "12th"}, {13, "13th"},
		{21, "21st"}, {22, "22nd"}, {23, "23rd"}, {31, "31st"},
	}
	for _, tt := range tests {
		if got := ordinal(tt.n); got != tt.want {
			t.Errorf("ordinal(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestDayLabel(t *testing.T) {
	tests := []struct {
		name       string
		day        schedule.Date
		numDays    int
		crossMonth bool
		want       string
	}{
		{
			name:    "short run uses bare weekday",
			day:     schedule.Date{Year: 2026, Month: time.March, Day: 2},
			numDays: 3,
			want:    "Mo",
		},
		{
			name:       "short run stays bare even across months",
			day:        schedule.Date{Year: 2026, Month: time.April, Day: 1},
			numDays:    3,
			crossMonth: true,
			want:       "We",
		},
		{
			name:    "week or longer adds the day of month",
			day:     schedule.Date{Year: 2026, Month: time.March, Day: 3},
			numDays: 10,
			want:    "Tu 3rd",
		},
		{
			name:       "month-crossing run spells out the month",
			day:        schedule.Date{Year: 2026, Month: time.April, Day: 2},
			numDays:    45,
			crossMonth: true,
			want:       "April 2 Th",
		},
		{
			name:       "starting-month days get the month too once the run crosses",
			day:        schedule.Date{Year: 2026, Month: time.March, Day: 31},
			numDays:    7,
			crossMonth: true,
			want:       "March 31 Tu",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dayLabel(tt.day, tt.numDays, tt.crossMonth); got != tt.want {
				t.Errorf("dayLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatSlot(t *testing.T) {
	loc := time.UTC
	iv := interval.Interval{
		Start: time.Date(2026, 3, 2, 9, 0, 0, 0, loc),
		End:   time.Date(2026, 3, 2, 13, 45, 0, 0, loc),
	}
	if got := formatSlot(iv); got != "9:00 AM - 1:45 PM" {
		t.Errorf("formatSlot() = %q", got)
	}

	midnight := interval.Interval{
		Start: time.Date(2026, 3, 2, 23, 0, 0, 0, loc),
		End:   time.Date(2026, 3, 3, 0, 0, 0, 0, loc),
	}
	if got := formatSlot(midnight); got != "11:00 PM - 12:00 AM" {
		t.Errorf("formatSlot() = %q", got)
	}
}

func TestFormatResult(t *testing.T) {
	loc := time.UTC
	today := schedule.Date{Year: 2026, Month: time.March, Day: 2}
	res := &avail.Result{
		Days: []avail.DaySlots{
			{
				Day: schedule.Date{Year: 2026, Month: time.March, Day: 2},
				Slots: []interval.Interval{
					{Start: time.Date(2026, 3, 2, 9, 0, 0, 0, loc), End: time.Date(2026, 3, 2, 10, 30, 0, 0, loc)},
					{Start: time.Date(2026, 3, 2, 14, 0, 0, 0, loc), End: time.Date(2026, 3, 2, 16, 0, 0, 0, loc)},
				},
			},
			{Day: schedule.Date{Year: 2026, Month: time.March, Day: 3}},
			{
				Day: schedule.Date{Year: 2026, Month: time.March, Day: 4},
				Slots: []interval.Interval{
					{Start: time.Date(2026, 3, 4, 9, 0, 0, 0, loc), End: time.Date(2026, 3, 5, 0, 0, 0, 0, loc)},
				},
			},
		},
	}

	got := formatResult(res, 3, today)
	want := strings.Join([]string{
		"Mo - 9:00 AM - 10:30 AM // 2:00 PM - 4:00 PM",
		"Tu - No availability",
		"We - 9:00 AM - 12:00 AM",
	}, "\n")
	if got != want {
		t.Errorf("formatResult() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatResultCrossMonth(t *testing.T) {
	loc := time.UTC
	today := schedule.Date{Year: 2026, Month: time.March, Day: 31}
	res := &avail.Result{
		Days: []avail.DaySlots{
			{
				Day: schedule.Date{Year: 2026, Month: time.March, Day: 31},
				Slots: []interval.Interval{
					{Start: time.Date(2026, 3, 31, 9, 0, 0, 0, loc), End: time.Date(2026, 3, 31, 10, 0, 0, 0, loc)},
				},
			},
			{
				Day: schedule.Date{Year: 2026, Month: time.April, Day: 1},
				Slots: []interval.Interval{
					{Start: time.Date(2026, 4, 1, 9, 0, 0, 0, loc), End: time.Date(2026, 4, 1, 10, 0, 0, 0, loc)},
				},
			},
		},
	}

	got := formatResult(res, 7, today)
	want := strings.Join([]string{
		"March 31 Tu - 9:00 AM - 10:00 AM",
		"April 1 We - 9:00 AM - 10:00 AM",
	}, "\n")
	if got != want {
		t.Errorf("formatResult() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatResultNothingFree(t *testing.T) {
	today := schedule.Date{Year: 2026, Month: time.March, Day: 2}

	booked := &avail.Result{Days: []avail.DaySlots{
		{Day: schedule.Date{Year: 2026, Month: time.March, Day: 2}},
		{Day: schedule.Date{Year: 2026, Month: time.March, Day: 3}},
	}}
	if got := formatResult(booked, 2, today); got != noSlotsMessage {
		t.Errorf("formatResult() = %q, want %q", got, noSlotsMessage)
	}

	// A weekend-only professional scan has no days at all.
	empty := &avail.Result{}
	if got := formatResult(empty, 2, today); got != noSlotsMessage {
		t.Errorf("formatResult() = %q, want %q", got, noSlotsMessage)
	}
}
