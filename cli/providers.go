package cli

import (
	"io"
	"log/slog"

	"github.com/avail-cli/avail/cache"
	"github.com/avail-cli/avail/config"
	"github.com/avail-cli/avail/provider"
	"github.com/avail-cli/avail/provider/caldav"
	"github.com/avail-cli/avail/provider/google"
	"github.com/avail-cli/avail/provider/outlook"
)

const (
	googleCredentialsFile  = "google_credentials.json"
	googleTokenFile        = "google_token.json"
	outlookCredentialsFile = "outlook_credentials.json"
	outlookTokenFile       = "outlook_token.json"
)

// buildProviders assembles the enabled providers, each wrapped with the
// cache when caching is on. A provider that is enabled but has no
// credentials still gets built; it reports that itself at fetch time.
func buildProviders(cfg config.Config, logger *slog.Logger) ([]provider.Provider, error) {
	var providers []provider.Provider

	if cfg.UseGoogleCalendar {
		creds, err := credentialPath(googleCredentialsFile)
		if err != nil {
			return nil, err
		}
		token, err := credentialPath(googleTokenFile)
		if err != nil {
			return nil, err
		}
		providers = append(providers, google.New(creds, token, logger))
	}
	if cfg.UseOutlookCalendar {
		creds, err := credentialPath(outlookCredentialsFile)
		if err != nil {
			return nil, err
		}
		token, err := credentialPath(outlookTokenFile)
		if err != nil {
			return nil, err
		}
		providers = append(providers, outlook.New(creds, token, logger))
	}
	if cfg.UseCalDAV {
		providers = append(providers, caldav.New(caldav.Config{
			URL:      cfg.CalDAVURL,
			Username: cfg.CalDAVUsername,
			Password: cfg.CalDAVPassword,
		}, logger))
	}

	if cfg.UseCache && len(providers) > 0 {
		dir, err := cacheDirPath()
		if err != nil {
			return nil, err
		}
		store := cache.NewStore(dir, logger)
		for i, p := range providers {
			providers[i] = provider.Cached(p, store, cfg.CacheTTL(), logger)
		}
	}
	return providers, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
