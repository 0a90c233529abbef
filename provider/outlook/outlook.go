// Package outlook fetches busy intervals from an Outlook calendar via
// the Microsoft Graph calendarView endpoint.
package outlook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/avail-cli/avail/interval"
	"github.com/avail-cli/avail/provider"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const (
	defaultBaseURL = "https://graph.microsoft.com/v1.0"
	defaultTenant  = "common"
	pageSize       = "100"

	// Graph emits seven fractional digits regardless of precision.
	graphTimeLayout = "2006-01-02T15:04:05.0000000"
)

var graphScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

type credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Tenant       string `json:"tenant"`
}

// Provider reads app credentials and a previously issued user token from
// disk and queries Graph with them.
type Provider struct {
	credentialsPath string
	tokenPath       string
	logger          *slog.Logger

	// baseURL and newClient are swapped in tests.
	baseURL   string
	newClient func(ctx context.Context) (*http.Client, error)
}

// New returns an Outlook provider reading credentials from the given
// paths. The files are opened when FetchBusy runs, not here.
func New(credentialsPath, tokenPath string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{
		credentialsPath: credentialsPath,
		tokenPath:       tokenPath,
		logger:          logger,
		baseURL:         defaultBaseURL,
	}
	p.newClient = p.dialClient
	return p
}

func (p *Provider) Name() string { return "outlook" }

func (p *Provider) dialClient(ctx context.Context) (*http.Client, error) {
	creds, err := loadCredentials(p.credentialsPath)
	if err != nil {
		return nil, err
	}
	tok, err := tokenFromFile(p.tokenPath)
	if err != nil {
		return nil, err
	}
	tenant := creds.Tenant
	if tenant == "" {
		tenant = defaultTenant
	}
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     microsoft.AzureADEndpoint(tenant),
		Scopes:       graphScopes,
	}
	return oauth2.NewClient(ctx, conf.TokenSource(ctx, tok)), nil
}

func loadCredentials(path string) (*credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("outlook: no credentials at %s: %w", path, provider.ErrNotConfigured)
		}
		return nil, fmt.Errorf("outlook: reading credentials: %w", err)
	}
	var creds credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("outlook: parsing credentials file %s: %w", path, err)
	}
	if creds.ClientID == "" {
		return nil, fmt.Errorf("outlook: credentials file %s has no client_id: %w", path, provider.ErrNotConfigured)
	}
	return &creds, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("outlook: no token at %s, run the authorization flow first: %w", path, provider.ErrNotConfigured)
		}
		return nil, fmt.Errorf("outlook: reading token: %w", err)
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("outlook: decoding token file %s: %w", path, err)
	}
	return tok, nil
}

type graphTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphEvent struct {
	Subject  string    `json:"subject"`
	IsAllDay bool      `json:"isAllDay"`
	Start    graphTime `json:"start"`
	End      graphTime `json:"end"`
}

type calendarViewPage struct {
	Value    []graphEvent `json:"value"`
	NextLink string       `json:"@odata.nextLink"`
}

// FetchBusy walks the calendarView for [rangeStart, rangeEnd), following
// @odata.nextLink until the view is exhausted. All-day events are
// skipped.
func (p *Provider) FetchBusy(ctx context.Context, rangeStart, rangeEnd time.Time, loc *time.Location) ([]interval.Interval, error) {
	client, err := p.newClient(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("startDateTime", rangeStart.UTC().Format(time.RFC3339))
	query.Set("endDateTime", rangeEnd.UTC().Format(time.RFC3339))
	query.Set("$top", pageSize)
	next := p.baseURL + "/me/calendarView?" + query.Encode()

	var busy []interval.Interval
	pages := 0
	for next != "" {
		page, err := p.fetchPage(ctx, client, next)
		if err != nil {
			return nil, err
		}
		pages++
		for _, ev := range page.Value {
			if iv, ok := eventInterval(ev, loc, p.logger); ok {
				busy = append(busy, iv)
			}
		}
		next = page.NextLink
	}
	p.logger.Debug("outlook fetch complete", "pages", pages, "intervals", len(busy))
	return busy, nil
}

func (p *Provider) fetchPage(ctx context.Context, client *http.Client, urlStr string) (*calendarViewPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	// Normalizes every event time to UTC, whatever zone it was created in.
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("outlook: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("outlook: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var page calendarViewPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("outlook: decoding response: %w", err)
	}
	return &page, nil
}

func eventInterval(ev graphEvent, loc *time.Location, logger *slog.Logger) (interval.Interval, bool) {
	if ev.IsAllDay {
		return interval.Interval{}, false
	}
	start, err := parseGraphTime(ev.Start)
	if err != nil {
		logger.Debug("skipping event with unparseable start", "subject", ev.Subject, "error", err)
		return interval.Interval{}, false
	}
	end, err := parseGraphTime(ev.End)
	if err != nil {
		logger.Debug("skipping event with unparseable end", "subject", ev.Subject, "error", err)
		return interval.Interval{}, false
	}
	return interval.New(start.In(loc), end.In(loc))
}

func parseGraphTime(gt graphTime) (time.Time, error) {
	zone := time.UTC
	if gt.TimeZone != "" && !strings.EqualFold(gt.TimeZone, "UTC") {
		z, err := time.LoadLocation(gt.TimeZone)
		if err != nil {
			return time.Time{}, fmt.Errorf("unsupported time zone %q: %w", gt.TimeZone, err)
		}
		zone = z
	}
	for _, layout := range []string{graphTimeLayout, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, gt.DateTime, zone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized graph timestamp %q", gt.DateTime)
}
