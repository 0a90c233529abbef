// Package google fetches busy intervals from Google Calendar across
// every calendar the account subscribes to.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/avail-cli/avail/interval"
	"github.com/avail-cli/avail/provider"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Provider reads the OAuth client credentials and a previously issued
// user token from disk and queries the Calendar API with them.
type Provider struct {
	credentialsPath string
	tokenPath       string
	logger          *slog.Logger

	// newService is swapped in tests to point at a fake API server.
	newService func(ctx context.Context) (*calendar.Service, error)
}

// New returns a Google Calendar provider reading credentials from the
// given paths. The files are opened when FetchBusy runs, not here.
func New(credentialsPath, tokenPath string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		credentialsPath: credentialsPath,
		tokenPath:       tokenPath,
		logger:          logger,
	}
	p.newService = p.dialService
	return p
}

func (p *Provider) Name() string { return "google" }

func (p *Provider) dialService(ctx context.Context) (*calendar.Service, error) {
	creds, err := os.ReadFile(p.credentialsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("google: no credentials at %s: %w", p.credentialsPath, provider.ErrNotConfigured)
		}
		return nil, fmt.Errorf("google: reading credentials: %w", err)
	}
	conf, err := googleoauth.ConfigFromJSON(creds, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("google: parsing credentials: %w", err)
	}
	tok, err := tokenFromFile(p.tokenPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("google: no token at %s, run the authorization flow first: %w", p.tokenPath, provider.ErrNotConfigured)
		}
		return nil, err
	}
	return calendar.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, tok)))
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("google: decoding token file %s: %w", path, err)
	}
	return tok, nil
}

// FetchBusy lists the account's calendars and collects the events of
// each one concurrently. Recurring events arrive as expanded single
// instances, and all-day events are skipped.
func (p *Provider) FetchBusy(ctx context.Context, rangeStart, rangeEnd time.Time, loc *time.Location) ([]interval.Interval, error) {
	srv, err := p.newService(ctx)
	if err != nil {
		return nil, err
	}

	calendarIDs, err := listCalendars(ctx, srv)
	if err != nil {
		return nil, fmt.Errorf("google: listing calendars: %w", err)
	}

	timeMin := rangeStart.Format(time.RFC3339)
	timeMax := rangeEnd.Format(time.RFC3339)

	g, ctx := errgroup.WithContext(ctx)
	perCalendar := make([][]interval.Interval, len(calendarIDs))
	for i, id := range calendarIDs {
		i, id := i, id
		g.Go(func() error {
			ivals, err := calendarBusy(ctx, srv, id, timeMin, timeMax, loc)
			if err != nil {
				return fmt.Errorf("google: calendar %s: %w", id, err)
			}
			perCalendar[i] = ivals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var busy []interval.Interval
	for _, ivals := range perCalendar {
		busy = append(busy, ivals...)
	}
	p.logger.Debug("google fetch complete",
		"calendars", len(calendarIDs),
		"intervals", len(busy))
	return busy, nil
}

func listCalendars(ctx context.Context, srv *calendar.Service) ([]string, error) {
	var ids []string
	err := srv.CalendarList.List().Pages(ctx, func(list *calendar.CalendarList) error {
		for _, entry := range list.Items {
			ids = append(ids, entry.Id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func calendarBusy(ctx context.Context, srv *calendar.Service, calendarID, timeMin, timeMax string, loc *time.Location) ([]interval.Interval, error) {
	var busy []interval.Interval
	call := srv.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(timeMin).
		TimeMax(timeMax)
	err := call.Pages(ctx, func(events *calendar.Events) error {
		for _, ev := range events.Items {
			if iv, ok := eventInterval(ev, loc); ok {
				busy = append(busy, iv)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return busy, nil
}

// eventInterval converts one event to a busy span. All-day events carry
// Date instead of DateTime and do not block time, so they are dropped,
// as is anything with unparseable timestamps.
func eventInterval(ev *calendar.Event, loc *time.Location) (interval.Interval, bool) {
	if ev.Start == nil || ev.End == nil || ev.Start.DateTime == "" || ev.End.DateTime == "" {
		return interval.Interval{}, false
	}
	start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
	if err != nil {
		return interval.Interval{}, false
	}
	end, err := time.Parse(time.RFC3339, ev.End.DateTime)
	if err != nil {
		return interval.Interval{}, false
	}
	return interval.New(start.In(loc), end.In(loc))
}
