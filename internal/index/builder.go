package index

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/txltxl22/ai-paper-digest-sub001/internal/records"
)

// RecordSource is the record store the builder reads from.
// *records.Store implements it.
type RecordSource interface {
	Scan() (*records.Listing, error)
	LoadCurrent(entry records.Entry) (*records.CurrentRecord, error)
	LoadLegacy(entry records.Entry) (*records.LegacyRecord, error)
}

var _ RecordSource = (*records.Store)(nil)

// Stats describes the cached index.
type Stats struct {
	Cached        bool          `json:"cached"`
	Documents     int           `json:"documents"`
	Files         int           `json:"files"`
	LatestModTime time.Time     `json:"latest_mtime"`
	BuildID       string        `json:"build_id,omitempty"`
	BuiltAt       time.Time     `json:"built_at"`
	BuildDuration time.Duration `json:"build_duration"`
}

// snapshot is one published build.
type snapshot struct {
	docs     []Document
	count    int
	latest   time.Time
	buildID  string
	builtAt  time.Time
	duration time.Duration
}

// Builder builds the document index and caches it between calls.
type Builder struct {
	source     RecordSource
	normalizer *Normalizer
	logger     *slog.Logger

	mu    sync.Mutex
	cache *snapshot
	epoch uint64 // bumped by ClearCache
}

// NewBuilder creates a builder over source. A nil logger uses slog.Default().
func NewBuilder(source RecordSource, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		source:     source,
		normalizer: NewNormalizer(logger),
		logger:     logger,
	}
}

// Documents returns the current documents, rebuilding when the record set
// looks stale. The returned slice is a copy owned by the caller.
func (b *Builder) Documents() []Document {
	listing, err := b.source.Scan()
	if err != nil {
		b.logger.Error("Failed to scan records", "error", err)
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.cache != nil {
			return cloneDocuments(b.cache.docs)
		}
		return []Document{}
	}

	b.mu.Lock()
	if c := b.cache; c != nil && c.count == listing.Count && !listing.LatestModTime.After(c.latest) {
		docs := cloneDocuments(c.docs)
		b.mu.Unlock()
		return docs
	}
	epoch := b.epoch
	b.mu.Unlock()

	snap := b.build(listing)

	b.mu.Lock()
	if b.epoch == epoch {
		b.cache = snap
	} else {
		b.logger.Debug("Cache cleared during build, not publishing", "build_id", snap.buildID)
	}
	b.mu.Unlock()

	return cloneDocuments(snap.docs)
}

// ClearCache drops the cached index. The next Documents call rebuilds.
func (b *Builder) ClearCache() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache = nil
	b.epoch++
	b.logger.Debug("Search index cache cleared")
}

// Stats reports on the cached index without triggering a build.
func (b *Builder) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.cache
	if c == nil {
		return Stats{}
	}
	return Stats{
		Cached:        true,
		Documents:     len(c.docs),
		Files:         c.count,
		LatestModTime: c.latest,
		BuildID:       c.buildID,
		BuiltAt:       c.builtAt,
		BuildDuration: c.duration,
	}
}

// build reads every record in listing. Current records are processed first
// so they win over a legacy record with the same ID.
func (b *Builder) build(listing *records.Listing) *snapshot {
	start := time.Now()
	buildID := uuid.NewString()

	docs := make([]Document, 0, listing.Count)
	seen := make(map[string]struct{}, listing.Count)
	skipped := 0

	add := func(entry records.Entry, load func(records.Entry) (*Document, error)) {
		if _, dup := seen[entry.ID]; dup {
			b.logger.Debug("Record superseded by current format", "id", entry.ID, "path", entry.Path)
			return
		}
		doc, err := load(entry)
		if err != nil {
			skipped++
			b.logger.Warn("Skipping record", "path", entry.Path, "format", entry.Format, "error", err)
			return
		}
		docs = append(docs, *doc)
		seen[entry.ID] = struct{}{}
	}

	for _, entry := range listing.Current {
		add(entry, b.loadCurrent)
	}
	for _, entry := range listing.Legacy {
		add(entry, b.loadLegacy)
	}

	duration := time.Since(start)
	b.logger.Info("Built search index",
		"build_id", buildID,
		"documents", len(docs),
		"files", listing.Count,
		"skipped", skipped,
		"duration", duration,
	)

	return &snapshot{
		docs:     docs,
		count:    listing.Count,
		latest:   listing.LatestModTime,
		buildID:  buildID,
		builtAt:  start,
		duration: duration,
	}
}

func (b *Builder) loadCurrent(entry records.Entry) (doc *Document, err error) {
	defer recoverRecord(&err)
	rec, err := b.source.LoadCurrent(entry)
	if err != nil {
		return nil, err
	}
	return b.normalizer.Current(rec)
}

func (b *Builder) loadLegacy(entry records.Entry) (doc *Document, err error) {
	defer recoverRecord(&err)
	rec, err := b.source.LoadLegacy(entry)
	if err != nil {
		return nil, err
	}
	return b.normalizer.Legacy(rec)
}

// recoverRecord turns a panic while handling one record into an error for that record.
func recoverRecord(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("record panic: %v", r)
	}
}
