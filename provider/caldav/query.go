package caldav

import (
	"encoding/xml"
	"time"
)

// calendarQuery is the REPORT body asking for every VEVENT in a time
// range. The expand element makes the server deliver recurring events as
// already expanded instances, so no recurrence handling happens on this
// side.
type calendarQuery struct {
	XMLName xml.Name `xml:"urn:ietf:params:xml:ns:caldav calendar-query"`
	Prop    prop     `xml:"DAV: prop"`
	Filter  filter   `xml:"urn:ietf:params:xml:ns:caldav filter"`
}

type prop struct {
	GetETag      *struct{}     `xml:"DAV: getetag"`
	CalendarData *calendarData `xml:"urn:ietf:params:xml:ns:caldav calendar-data"`
}

type calendarData struct {
	Expand *expand `xml:"urn:ietf:params:xml:ns:caldav expand,omitempty"`
}

type expand struct {
	Start string `xml:"start,attr"`
	End   string `xml:"end,attr"`
}

type filter struct {
	CompFilter compFilter `xml:"urn:ietf:params:xml:ns:caldav comp-filter"`
}

type compFilter struct {
	Name       string      `xml:"name,attr"`
	CompFilter *compFilter `xml:"urn:ietf:params:xml:ns:caldav comp-filter,omitempty"`
	TimeRange  *timeRange  `xml:"urn:ietf:params:xml:ns:caldav time-range,omitempty"`
}

type timeRange struct {
	Start string `xml:"start,attr"`
	End   string `xml:"end,attr"`
}

const queryTimeLayout = "20060102T150405Z"

// buildQuery returns the calendar-query for events overlapping
// [rangeStart, rangeEnd).
func buildQuery(rangeStart, rangeEnd time.Time) *calendarQuery {
	start := rangeStart.UTC().Format(queryTimeLayout)
	end := rangeEnd.UTC().Format(queryTimeLayout)

	return &calendarQuery{
		Prop: prop{
			GetETag: &struct{}{},
			CalendarData: &calendarData{
				Expand: &expand{Start: start, End: end},
			},
		},
		Filter: filter{
			CompFilter: compFilter{
				Name: "VCALENDAR",
				CompFilter: &compFilter{
					Name:      "VEVENT",
					TimeRange: &timeRange{Start: start, End: end},
				},
			},
		},
	}
}
