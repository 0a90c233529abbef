// Package cache stores previously fetched busy intervals per provider so
// that repeated invocations within a short window skip the network. An
// entry records the range it was fetched for and when; freshness is an
// explicit, filesystem-independent predicate on those fields.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avail-cli/avail/interval"
	"github.com/google/uuid"
	"github.com/samber/mo"
)

// Entry is one provider's cached contribution.
type Entry struct {
	RangeStart time.Time
	RangeEnd   time.Time
	FetchedAt  time.Time
	Intervals  []interval.Interval
}

// Fresh reports whether the entry is young enough to serve at now.
func (e Entry) Fresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(e.FetchedAt) <= maxAge
}

// Covers reports whether the entry's fetch range fully contains the
// requested [reqStart, reqEnd) range.
func (e Entry) Covers(reqStart, reqEnd time.Time) bool {
	return !e.RangeStart.After(reqStart) && !e.RangeEnd.Before(reqEnd)
}

// overlapping returns the entry's intervals that intersect [reqStart,
// reqEnd), dropping malformed ones.
func (e Entry) overlapping(reqStart, reqEnd time.Time) []interval.Interval {
	req := interval.Interval{Start: reqStart, End: reqEnd}
	var out []interval.Interval
	for _, iv := range e.Intervals {
		if iv.Valid() && iv.Overlaps(req) {
			out = append(out, iv)
		}
	}
	return out
}

// Store keeps one JSON file per provider in a directory. The file layout
// matches what earlier versions of the tool wrote, so existing cache
// directories keep working.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore returns a store rooted at dir. The directory is created on the
// first write, not here.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

const fileSuffix = "_cache.json"

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+fileSuffix)
}

// cacheFile is the on-disk shape: metadata with the fetch range, then the
// events as [start, end] RFC 3339 pairs.
type cacheFile struct {
	Metadata struct {
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		CreatedAt string `json:"created_at"`
	} `json:"metadata"`
	Events [][2]string `json:"events"`
}

// Lookup returns the cached intervals overlapping [reqStart, reqEnd) when a
// fresh, covering entry exists for name. Everything else, including a
// missing or undecodable file, is a miss, never an error: the caller falls
// back to fetching.
func (s *Store) Lookup(name string, reqStart, reqEnd, now time.Time, maxAge time.Duration) mo.Option[[]interval.Interval] {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return mo.None[[]interval.Interval]()
	}

	entry, err := decodeEntry(data)
	if err != nil {
		s.logger.Debug("discarding unreadable cache file", "provider", name, "error", err)
		return mo.None[[]interval.Interval]()
	}

	if !entry.Fresh(now, maxAge) || !entry.Covers(reqStart, reqEnd) {
		return mo.None[[]interval.Interval]()
	}

	return mo.Some(entry.overlapping(reqStart, reqEnd))
}

// Put writes the entry for name, replacing any previous one. The write
// goes through a uniquely named temp file in the same directory followed
// by a rename, so concurrent invocations never observe a half-written
// file.
func (s *Store) Put(name string, e Entry) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := encodeEntry(e)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	target := s.path(name)
	tmp := fmt.Sprintf("%s.%s.tmp", target, uuid.New().String()[:8])
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// Clear removes every cache file in the store's directory. A store whose
// directory does not exist clears successfully.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), fileSuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, ent.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", ent.Name(), err)
		}
	}
	return nil
}

func decodeEntry(data []byte) (Entry, error) {
	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return Entry{}, err
	}

	var e Entry
	var err error
	if e.RangeStart, err = time.Parse(time.RFC3339, f.Metadata.StartTime); err != nil {
		return Entry{}, fmt.Errorf("bad start_time: %w", err)
	}
	if e.RangeEnd, err = time.Parse(time.RFC3339, f.Metadata.EndTime); err != nil {
		return Entry{}, fmt.Errorf("bad end_time: %w", err)
	}
	if e.FetchedAt, err = time.Parse(time.RFC3339, f.Metadata.CreatedAt); err != nil {
		return Entry{}, fmt.Errorf("bad created_at: %w", err)
	}

	for _, pair := range f.Events {
		start, err := time.Parse(time.RFC3339, pair[0])
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, pair[1])
		if err != nil {
			continue
		}
		if iv, ok := interval.New(start, end); ok {
			e.Intervals = append(e.Intervals, iv)
		}
	}
	return e, nil
}

func encodeEntry(e Entry) ([]byte, error) {
	var f cacheFile
	f.Metadata.StartTime = e.RangeStart.Format(time.RFC3339)
	f.Metadata.EndTime = e.RangeEnd.Format(time.RFC3339)
	f.Metadata.CreatedAt = e.FetchedAt.Format(time.RFC3339)
	f.Events = make([][2]string, 0, len(e.Intervals))
	for _, iv := range e.Intervals {
		f.Events = append(f.Events, [2]string{
			iv.Start.Format(time.RFC3339),
			iv.End.Format(time.RFC3339),
		})
	}
	return json.MarshalIndent(&f, "", "  ")
}
