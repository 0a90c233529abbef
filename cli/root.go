// Package cli implements the avail command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/avail-cli/avail"
	"github.com/avail-cli/avail/cache"
	"github.com/avail-cli/avail/config"
	"github.com/avail-cli/avail/provider"
	"github.com/avail-cli/avail/schedule"
)

const defaultDays = 3

// computer is what the command needs from the availability engine.
type computer interface {
	ComputeAvailability(ctx context.Context, req avail.Request) (*avail.Result, error)
}

// Swapped in tests.
var (
	engineFactory = func(providers []provider.Provider, logger *slog.Logger) computer {
		return avail.NewEngine(providers, logger)
	}
	clipboardWrite = clipboard.WriteAll
	nowFunc        = time.Now
	configPath     = config.Path
	cacheDirPath   = config.CacheDir
	credentialPath = config.CredentialFile
)

type options struct {
	professional bool
	est          bool
	pst          bool
	verbose      bool
	noCopy       bool

	setTimezone    string
	toggleTimezone bool
	quiet          bool
	google         bool
	noGoogle       bool
	outlook        bool
	noOutlook      bool
	caldav         bool
	noCaldav       bool
	cacheOn        bool
	noCache        bool
	cacheTime      int
	clearCache     bool
}

// NewRootCommand builds the avail command. Settings flags persist their
// change and exit without computing anything; the rest of the flags
// shape a single run.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "avail [days]",
		Short: "Find open meeting slots across your calendars",
		Long: `avail subtracts your calendar events from each day's working window
and prints the remaining free slots, ready to paste into a message.

With no arguments it looks three days ahead. Pass a number of days to
look further, and -p to restrict slots to working hours on weekdays.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.professional, "professional", "p", false, "limit slots to working hours and skip weekends")
	flags.BoolVar(&opts.est, "est", false, "use Eastern time for this run")
	flags.BoolVar(&opts.pst, "pst", false, "use Pacific time for this run")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&opts.noCopy, "no-copy", false, "do not copy the result to the clipboard")

	flags.StringVar(&opts.setTimezone, "set-default-timezone", "", "persist the default timezone (EST or PST) and exit")
	flags.BoolVar(&opts.toggleTimezone, "toggle-timezone", false, "flip the default timezone between EST and PST and exit")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "toggle quiet mode and exit")
	flags.BoolVar(&opts.google, "google", false, "enable the Google Calendar provider and exit")
	flags.BoolVar(&opts.noGoogle, "no-google", false, "disable the Google Calendar provider and exit")
	flags.BoolVar(&opts.outlook, "outlook", false, "enable the Outlook provider and exit")
	flags.BoolVar(&opts.noOutlook, "no-outlook", false, "disable the Outlook provider and exit")
	flags.BoolVar(&opts.caldav, "caldav", false, "enable the CalDAV provider and exit")
	flags.BoolVar(&opts.noCaldav, "no-caldav", false, "disable the CalDAV provider and exit")
	flags.BoolVar(&opts.cacheOn, "cache", false, "enable the event cache and exit")
	flags.BoolVar(&opts.noCache, "no-cache", false, "disable the event cache and exit")
	flags.IntVar(&opts.cacheTime, "cache-time", 0, "persist the cache expiration in seconds and exit")
	flags.BoolVar(&opts.clearCache, "clear-cache", false, "delete all cached events and exit")

	cmd.MarkFlagsMutuallyExclusive("est", "pst")
	cmd.MarkFlagsMutuallyExclusive("set-default-timezone", "toggle-timezone")
	cmd.MarkFlagsMutuallyExclusive("google", "no-google")
	cmd.MarkFlagsMutuallyExclusive("outlook", "no-outlook")
	cmd.MarkFlagsMutuallyExclusive("caldav", "no-caldav")
	cmd.MarkFlagsMutuallyExclusive("cache", "no-cache")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts *options) error {
	started := nowFunc()
	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)

	days := defaultDays
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("days must be a number, got %q", args[0])
		}
		days = n
	}

	cfgPath, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath, logger)
	if err != nil {
		return err
	}

	handled, err := applySettings(cmd, opts, &cfg, cfgPath, logger)
	if err != nil {
		return err
	}
	if handled {
		return nil
	}

	loc, zone, err := runLocation(opts, cfg)
	if err != nil {
		return err
	}
	if !cfg.QuietMode {
		fmt.Fprintf(cmd.OutOrStdout(), "Using %s timezone\n", zoneDisplay(zone))
	}

	providers, err := buildProviders(cfg, logger)
	if err != nil {
		return err
	}

	engine := engineFactory(providers, logger)
	res, err := engine.ComputeAvailability(cmd.Context(), avail.Request{
		Days:         days,
		Professional: opts.professional,
		BlockMinutes: cfg.BlockMinutes,
		Hours:        cfg.WorkHours(),
		Location:     loc,
	})
	if err != nil {
		return err
	}

	today := schedule.DateOf(nowFunc().In(loc))
	out := formatResult(res, days, today)
	fmt.Fprintln(cmd.OutOrStdout(), out)

	copied := false
	var copyErr error
	if !opts.noCopy && !res.Empty() {
		if copyErr = clipboardWrite(out); copyErr != nil {
			logger.Debug("clipboard copy failed", "error", copyErr)
		} else {
			copied = true
		}
	}
	if !cfg.QuietMode {
		switch {
		case copied:
			fmt.Fprintf(cmd.OutOrStdout(), "\nAvailability copied to clipboard! (%.2fs)\n", nowFunc().Sub(started).Seconds())
		case copyErr != nil:
			fmt.Fprintf(cmd.OutOrStdout(), "\nFailed to copy to clipboard: %v\n", copyErr)
		}
	}
	return nil
}

// applySettings handles the persist-and-exit flags. It reports handled
// when the run should stop after saving, with nothing computed.
func applySettings(cmd *cobra.Command, opts *options, cfg *config.Config, cfgPath string, logger *slog.Logger) (bool, error) {
	out := cmd.OutOrStdout()
	handled := false
	changed := false

	if opts.clearCache {
		dir, err := cacheDirPath()
		if err != nil {
			return true, err
		}
		if err := cache.NewStore(dir, logger).Clear(); err != nil {
			return true, fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintln(out, "Cache cleared successfully")
		handled = true
	}

	if opts.setTimezone != "" {
		tz := strings.ToUpper(opts.setTimezone)
		if tz != "EST" && tz != "PST" {
			return true, fmt.Errorf("unknown timezone %q, valid values are EST and PST", opts.setTimezone)
		}
		cfg.DefaultTimezone = tz
		fmt.Fprintf(out, "Default timezone set to %s\n", tz)
		changed = true
	}
	if opts.toggleTimezone {
		if cfg.DefaultTimezone == "EST" {
			cfg.DefaultTimezone = "PST"
		} else {
			cfg.DefaultTimezone = "EST"
		}
		fmt.Fprintf(out, "Default timezone switched to %s\n", cfg.DefaultTimezone)
		changed = true
	}
	if cmd.Flags().Changed("quiet") {
		cfg.QuietMode = !cfg.QuietMode
		fmt.Fprintf(out, "Quiet mode %s\n", onOff(cfg.QuietMode))
		changed = true
	}

	toggles := []struct {
		enable, disable bool
		target          *bool
		label           string
	}{
		{opts.google, opts.noGoogle, &cfg.UseGoogleCalendar, "Google Calendar integration"},
		{opts.outlook, opts.noOutlook, &cfg.UseOutlookCalendar, "Outlook Calendar integration"},
		{opts.caldav, opts.noCaldav, &cfg.UseCalDAV, "CalDAV integration"},
		{opts.cacheOn, opts.noCache, &cfg.UseCache, "API response caching"},
	}
	for _, tg := range toggles {
		if tg.enable {
			*tg.target = true
			fmt.Fprintf(out, "%s enabled\n", tg.label)
			changed = true
		}
		if tg.disable {
			*tg.target = false
			fmt.Fprintf(out, "%s disabled\n", tg.label)
			changed = true
		}
	}

	if cmd.Flags().Changed("cache-time") {
		if opts.cacheTime <= 0 {
			return true, errors.New("cache time must be a positive number of seconds")
		}
		cfg.CacheExpirationSeconds = opts.cacheTime
		fmt.Fprintf(out, "Cache expiration set to %d seconds\n", opts.cacheTime)
		changed = true
	}

	if changed {
		if err := config.Save(*cfg, cfgPath); err != nil {
			return true, err
		}
		handled = true
	}
	return handled, nil
}

func runLocation(opts *options, cfg config.Config) (*time.Location, string, error) {
	override := cfg
	if opts.est {
		override.DefaultTimezone = "EST"
	}
	if opts.pst {
		override.DefaultTimezone = "PST"
	}
	loc, err := override.Location()
	return loc, override.DefaultTimezone, err
}

func zoneDisplay(zone string) string {
	if zone == "PST" {
		return "PST (Pacific)"
	}
	return "EST (Eastern)"
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
