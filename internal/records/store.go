package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cenkalti/backoff/v4"
)

// DefaultReadRetry is how long LoadCurrent keeps re-reading a record whose
// JSON ends early, which is what a file still being written looks like.
const DefaultReadRetry = 200 * time.Millisecond

// Store reads paper records from a single flat directory.
type Store struct {
	dir       string
	fsys      fs.FS
	logger    *slog.Logger
	readRetry time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for non-fatal read problems.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReadRetry bounds how long to re-read truncated records. Zero disables retries.
func WithReadRetry(d time.Duration) Option {
	return func(s *Store) {
		s.readRetry = d
	}
}

// NewStore creates a store rooted at dir. The directory does not need to exist yet.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		dir:       dir,
		fsys:      os.DirFS(dir),
		logger:    slog.Default(),
		readRetry: DefaultReadRetry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the record directory.
func (s *Store) Dir() string {
	return s.dir
}

// Health reports whether the record directory is present and readable.
func (s *Store) Health() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat records dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("records path is not a directory: %s", s.dir)
	}
	return nil
}

// Scan lists current and legacy records in filename order and computes the
// staleness key. A missing directory yields an empty listing.
func (s *Store) Scan() (*Listing, error) {
	listing := &Listing{}

	jsonNames, err := s.glob("*.json")
	if err != nil {
		return nil, err
	}
	mdNames, err := s.glob("*.md")
	if err != nil {
		return nil, err
	}

	for _, name := range jsonNames {
		if strings.HasSuffix(name, SidecarSuffix) {
			continue
		}
		entry := s.entry(name, FormatCurrent)
		listing.Current = append(listing.Current, entry)
		listing.observe(entry.ModTime)
	}

	for _, name := range mdNames {
		entry := s.entry(name, FormatLegacy)
		listing.Legacy = append(listing.Legacy, entry)
		listing.observe(entry.ModTime)

		if info, err := fs.Stat(s.fsys, entry.ID+SidecarSuffix); err == nil {
			listing.observe(info.ModTime())
		}
	}

	listing.Count = len(listing.Current) + len(listing.Legacy)
	return listing, nil
}

func (l *Listing) observe(t time.Time) {
	if t.After(l.LatestModTime) {
		l.LatestModTime = t
	}
}

func (s *Store) glob(pattern string) ([]string, error) {
	names, err := doublestar.Glob(s.fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s in %s: %w", pattern, s.dir, err)
	}
	slices.Sort(names)
	return names, nil
}

func (s *Store) entry(name string, format Format) Entry {
	entry := Entry{
		ID:     strings.TrimSuffix(name, filepath.Ext(name)),
		Path:   filepath.Join(s.dir, name),
		Format: format,
	}
	if info, err := fs.Stat(s.fsys, name); err == nil {
		entry.ModTime = info.ModTime()
	}
	return entry
}

// SidecarPath returns where the tag sidecar of a legacy record lives.
func (s *Store) SidecarPath(id string) string {
	return filepath.Join(s.dir, id+SidecarSuffix)
}

// LoadCurrent reads and decodes a structured record. Records that end
// mid-document are re-read until the retry window is spent.
func (s *Store) LoadCurrent(entry Entry) (*CurrentRecord, error) {
	var rec CurrentRecord

	operation := func() error {
		data, err := os.ReadFile(entry.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return backoff.Permanent(fmt.Errorf("%w: %s", ErrNotFound, entry.Path))
			}
			return backoff.Permanent(fmt.Errorf("read %s: %w", entry.Path, err))
		}

		trimmed := bytes.TrimSpace(data)
		if len(trimmed) == 0 {
			return fmt.Errorf("read %s: empty file", entry.Path)
		}
		if trimmed[0] != '{' {
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrNotObject, entry.Path))
		}

		rec = CurrentRecord{}
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			err = fmt.Errorf("decode %s: %w", entry.Path, err)
			if isTruncated(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	if err := backoff.Retry(operation, s.retryPolicy()); err != nil {
		return nil, err
	}
	rec.ID = entry.ID
	return &rec, nil
}

func (s *Store) retryPolicy() backoff.BackOff {
	if s.readRetry <= 0 {
		return &backoff.StopBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 50 * time.Millisecond
	b.MaxElapsedTime = s.readRetry
	return b
}

func isTruncated(err error) bool {
	var syntaxErr *json.SyntaxError
	return errors.As(err, &syntaxErr) && strings.Contains(syntaxErr.Error(), "unexpected end of JSON input")
}

// LoadLegacy reads a markdown record and its sidecar tags. Sidecar problems
// never fail the load; they leave the tags empty.
func (s *Store) LoadLegacy(entry Entry) (*LegacyRecord, error) {
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, entry.Path)
		}
		return nil, fmt.Errorf("read %s: %w", entry.Path, err)
	}

	rec := &LegacyRecord{
		ID:       entry.ID,
		Markdown: strings.ToValidUTF8(string(data), ""),
		Tags:     EmptyTags(),
	}

	sidecar := s.SidecarPath(entry.ID)
	raw, err := os.ReadFile(sidecar)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		s.logger.Debug("Unreadable tag sidecar", "path", sidecar, "error", err)
	default:
		tags, shape, err := ParseTags(raw)
		if err != nil {
			s.logger.Debug("Ignoring malformed tag sidecar", "path", sidecar, "error", err)
			break
		}
		rec.Tags, rec.TagShape = tags, shape
	}

	return rec, nil
}
