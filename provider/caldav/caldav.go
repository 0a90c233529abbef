// Package caldav fetches busy intervals from any CalDAV server by
// issuing a calendar-query REPORT and decoding the returned iCalendar
// objects.
package caldav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avail-cli/avail/internal/httpclient"
	"github.com/avail-cli/avail/interval"
	"github.com/avail-cli/avail/provider"
	"github.com/emersion/go-ical"
)

const requestTimeout = 30 * time.Second

// Config carries the server coordinates. All three fields are required;
// a partially filled config reports provider.ErrNotConfigured at fetch
// time rather than failing construction.
type Config struct {
	URL      string
	Username string
	Password string
}

func (c Config) complete() bool {
	return c.URL != "" && c.Username != "" && c.Password != ""
}

// Provider fetches events over CalDAV.
type Provider struct {
	cfg    Config
	logger *slog.Logger

	// newWrapper builds the transport; tests swap it for a mock.
	newWrapper func() (httpclient.Wrapper, error)
}

// New returns a CalDAV provider. Configuration is validated when
// FetchBusy runs, not here.
func New(cfg Config, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{cfg: cfg, logger: logger}
	p.newWrapper = p.dialWrapper
	return p
}

func (p *Provider) Name() string { return "caldav" }

func (p *Provider) dialWrapper() (httpclient.Wrapper, error) {
	base, err := url.Parse(p.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid caldav url %q: %w", p.cfg.URL, err)
	}
	client := &http.Client{
		Transport: httpclient.NewBasicAuthTransport(p.cfg.Username, p.cfg.Password, nil, p.logger),
		Timeout:   requestTimeout,
	}
	return httpclient.NewWrapper(client, *base, p.logger)
}

// FetchBusy runs a calendar-query REPORT for [rangeStart, rangeEnd) and
// converts every VEVENT in the response to an interval in loc. All-day
// events do not block time and are skipped.
func (p *Provider) FetchBusy(ctx context.Context, rangeStart, rangeEnd time.Time, loc *time.Location) ([]interval.Interval, error) {
	if !p.cfg.complete() {
		return nil, fmt.Errorf("caldav: %w", provider.ErrNotConfigured)
	}
	wrapper, err := p.newWrapper()
	if err != nil {
		return nil, err
	}

	body, err := wrapper.DoREPORT(ctx, p.cfg.URL, 1, buildQuery(rangeStart, rangeEnd))
	if err != nil {
		return nil, fmt.Errorf("caldav report failed: %w", err)
	}
	payloads, err := parseMultistatus(body)
	if err != nil {
		return nil, fmt.Errorf("parsing caldav response: %w", err)
	}

	var busy []interval.Interval
	for _, data := range payloads {
		busy = append(busy, p.eventIntervals(data, loc)...)
	}
	p.logger.Debug("caldav fetch complete",
		"objects", len(payloads),
		"intervals", len(busy))
	return busy, nil
}

// eventIntervals decodes one calendar object and extracts the busy span
// of each VEVENT inside it. Undecodable objects and events with missing
// or malformed times are skipped, not fatal.
func (p *Provider) eventIntervals(data string, loc *time.Location) []interval.Interval {
	cal, err := ical.NewDecoder(strings.NewReader(data)).Decode()
	if err != nil {
		p.logger.Debug("skipping undecodable calendar object", "error", err)
		return nil
	}

	var out []interval.Interval
	for _, event := range cal.Events() {
		startProp := event.Props.Get(ical.PropDateTimeStart)
		if startProp == nil || startProp.ValueType() == ical.ValueDate {
			continue
		}
		start, err := event.Props.DateTime(ical.PropDateTimeStart, loc)
		if err != nil {
			p.logger.Debug("skipping event with unparseable DTSTART", "error", err)
			continue
		}
		end, err := eventEnd(event, start, loc)
		if err != nil {
			p.logger.Debug("skipping event without usable end", "error", err)
			continue
		}
		iv, ok := interval.New(start.In(loc), end.In(loc))
		if !ok {
			continue
		}
		out = append(out, iv)
	}
	return out
}

// eventEnd resolves DTEND, falling back to DTSTART+DURATION.
func eventEnd(event ical.Event, start time.Time, loc *time.Location) (time.Time, error) {
	if event.Props.Get(ical.PropDateTimeEnd) != nil {
		return event.Props.DateTime(ical.PropDateTimeEnd, loc)
	}
	if durProp := event.Props.Get(ical.PropDuration); durProp != nil {
		dur, err := durProp.Duration()
		if err != nil {
			return time.Time{}, fmt.Errorf("bad DURATION: %w", err)
		}
		return start.Add(dur), nil
	}
	return time.Time{}, errors.New("event has neither DTEND nor DURATION")
}
