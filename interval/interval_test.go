package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func span(sh, sm, eh, em int) Interval {
	return Interval{Start: at(sh, sm), End: at(eh, em)}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		end    time.Time
		wantOK bool
	}{
		{name: "ordered bounds", start: at(9, 0), end: at(10, 0), wantOK: true},
		{name: "zero length", start: at(9, 0), end: at(9, 0), wantOK: false},
		{name: "reversed bounds", start: at(10, 0), end: at(9, 0), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, ok := New(tt.start, tt.end)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.True(t, iv.Valid())
				assert.Equal(t, tt.start, iv.Start)
				assert.Equal(t, tt.end, iv.End)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{name: "disjoint", a: span(9, 0, 10, 0), b: span(11, 0, 12, 0), want: false},
		{name: "touching at boundary", a: span(9, 0, 10, 0), b: span(10, 0, 11, 0), want: false},
		{name: "partial overlap", a: span(9, 0, 10, 0), b: span(9, 30, 11, 0), want: true},
		{name: "containment", a: span(9, 0, 12, 0), b: span(10, 0, 11, 0), want: true},
		{name: "identical", a: span(9, 0, 10, 0), b: span(9, 0, 10, 0), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestContains(t *testing.T) {
	iv := span(9, 0, 10, 0)
	assert.True(t, iv.Contains(at(9, 0)))
	assert.True(t, iv.Contains(at(9, 59)))
	assert.False(t, iv.Contains(at(10, 0)))
	assert.False(t, iv.Contains(at(8, 59)))
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name  string
		input []Interval
		want  []Interval
	}{
		{
			name:  "empty input",
			input: nil,
			want:  nil,
		},
		{
			name:  "single interval",
			input: []Interval{span(9, 0, 10, 0)},
			want:  []Interval{span(9, 0, 10, 0)},
		},
		{
			name:  "overlapping pair",
			input: []Interval{span(9, 0, 10, 0), span(9, 30, 11, 0)},
			want:  []Interval{span(9, 0, 11, 0)},
		},
		{
			name:  "touching pair merges",
			input: []Interval{span(9, 0, 10, 0), span(10, 0, 11, 0)},
			want:  []Interval{span(9, 0, 11, 0)},
		},
		{
			name:  "separated pair stays split",
			input: []Interval{span(9, 0, 10, 0), span(10, 15, 11, 0)},
			want:  []Interval{span(9, 0, 10, 0), span(10, 15, 11, 0)},
		},
		{
			name:  "contained interval absorbed",
			input: []Interval{span(9, 0, 12, 0), span(10, 0, 11, 0)},
			want:  []Interval{span(9, 0, 12, 0)},
		},
		{
			name:  "duplicates collapse",
			input: []Interval{span(9, 0, 10, 0), span(9, 0, 10, 0)},
			want:  []Interval{span(9, 0, 10, 0)},
		},
		{
			name:  "unsorted input",
			input: []Interval{span(14, 0, 15, 0), span(9, 0, 10, 0), span(9, 45, 10, 30)},
			want:  []Interval{span(9, 0, 10, 30), span(14, 0, 15, 0)},
		},
		{
			name:  "malformed inputs dropped",
			input: []Interval{span(10, 0, 10, 0), span(11, 0, 9, 0), span(9, 0, 10, 0)},
			want:  []Interval{span(9, 0, 10, 0)},
		},
		{
			name:  "only malformed input",
			input: []Interval{span(10, 0, 10, 0)},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.input))
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	input := []Interval{
		span(9, 0, 10, 0),
		span(9, 30, 11, 0),
		span(13, 0, 13, 15),
		span(13, 15, 14, 0),
	}

	once := Merge(input)
	twice := Merge(once)
	assert.Equal(t, once, twice)
}

func TestMergeOrderInsensitive(t *testing.T) {
	a := span(9, 0, 10, 0)
	b := span(9, 45, 11, 0)
	c := span(12, 0, 13, 0)
	d := span(12, 30, 12, 45)

	orderings := [][]Interval{
		{a, b, c, d},
		{d, c, b, a},
		{b, d, a, c},
		{c, a, d, b},
	}

	want := Merge(orderings[0])
	require.NotEmpty(t, want)
	for _, input := range orderings[1:] {
		assert.Equal(t, want, Merge(input))
	}
}

// covered reports whether t falls inside any interval of the set.
func covered(ivals []Interval, t time.Time) bool {
	for _, iv := range ivals {
		if iv.Contains(t) {
			return true
		}
	}
	return false
}

func TestMergeInvariants(t *testing.T) {
	input := []Interval{
		span(9, 0, 9, 45),
		span(9, 45, 10, 30),
		span(10, 15, 11, 0),
		span(12, 0, 12, 30),
		span(15, 0, 16, 0),
		span(15, 30, 15, 45),
	}

	merged := Merge(input)
	require.NotEmpty(t, merged)

	for i := range merged {
		assert.True(t, merged[i].Valid())
		if i > 0 {
			// Strict separation: neighbours never touch.
			assert.True(t, merged[i-1].End.Before(merged[i].Start),
				"intervals %d and %d are not strictly separated", i-1, i)
		}
	}

	// Coverage: minute-by-minute membership is identical before and after.
	for tick := at(8, 0); tick.Before(at(17, 0)); tick = tick.Add(time.Minute) {
		assert.Equal(t, covered(input, tick), covered(merged, tick),
			"coverage differs at %s", tick)
	}
}

func TestOverlapsAny(t *testing.T) {
	busy := Merge([]Interval{span(10, 0, 10, 30), span(12, 0, 13, 0)})

	tests := []struct {
		name string
		slot Interval
		want bool
	}{
		{name: "before all busy", slot: span(9, 0, 9, 15), want: false},
		{name: "ends where busy starts", slot: span(9, 45, 10, 0), want: false},
		{name: "inside busy", slot: span(10, 0, 10, 15), want: true},
		{name: "starts where busy ends", slot: span(10, 30, 10, 45), want: false},
		{name: "spans a gap edge", slot: span(11, 45, 12, 15), want: true},
		{name: "after all busy", slot: span(13, 0, 13, 15), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.slot.OverlapsAny(busy))
		})
	}
}
