// Package schedule turns a merged busy set into per-day free time. It
// generates the eligible window for each calendar day, tiles it into
// fixed-width candidate slots, removes the slots that collide with busy
// intervals and merges what is left back into human-sized ranges.
package schedule

import (
	"fmt"
	"time"
)

// Mode selects the day-window policy.
type Mode int

const (
	// Standard covers 9AM up to, but not including, the next midnight.
	Standard Mode = iota
	// Professional covers weekday working hours only (9AM-5PM by default);
	// the planner skips weekends entirely in this mode.
	Professional
)

func (m Mode) String() string {
	switch m {
	case Standard:
		return "standard"
	case Professional:
		return "professional"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// WorkHours bounds the eligible part of a day. Hours are whole local hours.
type WorkHours struct {
	StartHour int
	EndHour   int
}

// Default schedule parameters, shared with the configuration layer.
const (
	DefaultWorkStartHour = 9
	DefaultWorkEndHour   = 17
	DefaultBlockMinutes  = 15
)

// DefaultWorkHours returns the 9AM-5PM bounds.
func DefaultWorkHours() WorkHours {
	return WorkHours{StartHour: DefaultWorkStartHour, EndHour: DefaultWorkEndHour}
}

// Date is a civil calendar date, used as the day key of planning results.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// Time returns the date's midnight in loc.
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n calendar days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// Weekday returns the day of the week of the date.
func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}
