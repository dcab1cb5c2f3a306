package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"shoebox/internal/geo"
	"shoebox/internal/ledger"
	"shoebox/internal/logging"
	"shoebox/internal/media/exif"
	"shoebox/internal/services"
	"shoebox/internal/sidecar"
	"shoebox/internal/timestamp"
)

// Extractor is the metadata collaborator the resolver reads embedded fields
// from and writes canonical values back through. *exif.Client satisfies it.
type Extractor interface {
	Extract(ctx context.Context, path string) (exif.Raw, error)
	Embed(ctx context.Context, path, canonical string, point *geo.Point) error
}

// Options tune one resolver run.
type Options struct {
	// Workers bounds the per-file worker pool. Zero means cores minus one.
	Workers int
	// LedgerBatchSize is how many outcomes accumulate between ledger
	// flushes. A crash loses at most one batch.
	LedgerBatchSize int
	// KeepSidecars leaves matched sidecar files on disk after their values
	// are captured.
	KeepSidecars bool
	// EmbedCanonical writes resolved values back into the media container.
	EmbedCanonical bool
}

// Stats aggregates the outcomes of one resolver run.
type Stats struct {
	Processed       int
	WithTimestamp   int
	WithGeotag      int
	Unresolved      int
	GeotagConflicts int
	ExtractFailures int
	Embedded        int
	SidecarsRemoved int
}

// Resolver computes one canonical timestamp and one canonical geotag per
// file from up to three candidate sources, earliest timestamp winning.
type Resolver struct {
	extractor Extractor
	opts      Options
	logger    *slog.Logger
}

// NewResolver constructs a resolver around the extraction collaborator.
func NewResolver(extractor Extractor, opts Options, logger *slog.Logger) *Resolver {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU() - 1
		if opts.Workers < 1 {
			opts.Workers = 1
		}
	}
	if opts.LedgerBatchSize <= 0 {
		opts.LedgerBatchSize = 250
	}
	if logger == nil {
		logger = logging.NewNop()
	} else {
		logger = logger.With(logging.String(logging.FieldComponent, "resolver"))
	}
	return &Resolver{extractor: extractor, opts: opts, logger: logger}
}

type outcome struct {
	entry          *ledger.Entry
	timestampOK    bool
	geotagOK       bool
	conflict       bool
	extractFailed  bool
	embedded       bool
	sidecarRemoved bool
}

func (s *Stats) merge(out *outcome) {
	s.Processed++
	if out.timestampOK {
		s.WithTimestamp++
	} else {
		s.Unresolved++
	}
	if out.geotagOK {
		s.WithGeotag++
	}
	if out.conflict {
		s.GeotagConflicts++
	}
	if out.extractFailed {
		s.ExtractFailures++
	}
	if out.embedded {
		s.Embedded++
	}
	if out.sidecarRemoved {
		s.SidecarsRemoved++
	}
}

// Run resolves every entry on a worker pool and merges the outcomes into the
// ledger. Workers keep their findings on private outcome records; only this
// goroutine touches the ledger. Per-file failures degrade to missing values,
// so the only error paths out of Run are ledger writes and cancellation.
func (r *Resolver) Run(ctx context.Context, led *ledger.Ledger, entries []*ledger.Entry, progress func(done, total int)) (Stats, error) {
	stats := Stats{}
	total := len(entries)
	if total == 0 {
		return stats, nil
	}

	jobs := make(chan *ledger.Entry)
	outcomes := make(chan *outcome)

	var wg sync.WaitGroup
	for i := 0; i < r.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				outcomes <- r.resolveFile(ctx, entry)
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, entry := range entries {
			select {
			case jobs <- entry:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var writeErr error
	done := 0
	sinceFlush := 0
	for out := range outcomes {
		done++
		if writeErr != nil {
			continue
		}
		stats.merge(out)
		if err := led.Put(out.entry); err != nil {
			writeErr = fmt.Errorf("resolve: record outcome: %w", err)
			continue
		}
		sinceFlush++
		if sinceFlush >= r.opts.LedgerBatchSize {
			if err := led.Write(); err != nil {
				writeErr = fmt.Errorf("resolve: %w", err)
				continue
			}
			sinceFlush = 0
		}
		if progress != nil {
			progress(done, total)
		}
	}
	if writeErr != nil {
		return stats, writeErr
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if err := led.Write(); err != nil {
		return stats, fmt.Errorf("resolve: %w", err)
	}
	return stats, nil
}

type candidate struct {
	canonical string
	source    string
}

// resolveFile works out the canonical timestamp and geotag for one entry.
// Every candidate considered leaves a provenance line, rejected or not.
func (r *Resolver) resolveFile(ctx context.Context, entry *ledger.Entry) *outcome {
	out := &outcome{entry: entry}
	note := func(format string, args ...any) {
		entry.Provenance = append(entry.Provenance, ledger.Provenance{
			Stage:  "resolve",
			Detail: fmt.Sprintf(format, args...),
		})
	}

	var candidates []candidate

	// Filename. The first pattern that matches settles this source: a
	// fragment that matched but failed to standardize yields nothing rather
	// than probing weaker patterns.
	if canonical, rawValue, pattern, ok := timestamp.FromName(filepath.Base(entry.Path)); ok {
		candidates = append(candidates, candidate{canonical: canonical, source: "filename"})
		note("timestamp candidate %s from filename pattern %s", canonical, pattern)
	} else if pattern != "" {
		note("filename pattern %s matched %q but it did not standardize", pattern, rawValue)
		r.logger.Debug(
			"filename timestamp rejected",
			logging.String(logging.FieldFile, entry.Path),
			logging.Error(fmt.Errorf("%w: pattern %s on %q", services.ErrRecoverableParse, pattern, rawValue)),
		)
	}

	// Sidecar.
	var record *sidecar.Record
	if entry.Sidecar != "" {
		loaded, err := sidecar.Load(entry.Sidecar)
		if err != nil {
			note("sidecar unreadable: %v", err)
		} else {
			record = loaded
			if canonical, ok := sidecarTimestamp(record, note); ok {
				candidates = append(candidates, candidate{canonical: canonical, source: "sidecar"})
				note("timestamp candidate %s from sidecar", canonical)
			}
		}
	}

	// Embedded container metadata. A failed extraction after retries means
	// no candidate from this source, never a failed file.
	var raw exif.Raw
	extracted := false
	if r.extractor != nil {
		var err error
		raw, err = r.extractor.Extract(ctx, entry.Path)
		if err != nil {
			out.extractFailed = true
			note("extraction failed: %v", err)
			r.logger.Warn(
				"metadata extraction failed",
				logging.String(logging.FieldFile, entry.Path),
				logging.Error(err),
			)
		} else {
			extracted = true
		}
	}
	if extracted {
		if canonical, field, ok := embeddedTimestamp(raw, entry.Extension, note); ok {
			candidates = append(candidates, candidate{canonical: canonical, source: "embedded"})
			note("timestamp candidate %s from embedded %s", canonical, field)
		}
	}

	r.pickTimestamp(entry, candidates, note, out)
	r.pickGeotag(entry, raw, extracted, record, note, out)

	if r.opts.EmbedCanonical && r.extractor != nil && (out.timestampOK || out.geotagOK) {
		if err := r.extractor.Embed(ctx, entry.Path, entry.Timestamp, entry.Geotag); err != nil {
			note("embedding canonical values failed: %v", err)
			r.logger.Warn(
				"embed write-back failed",
				logging.String(logging.FieldFile, entry.Path),
				logging.Error(err),
			)
		} else {
			out.embedded = true
			note("embedded canonical values into container")
		}
	}

	if !r.opts.KeepSidecars && entry.Sidecar != "" && record != nil {
		if err := os.Remove(entry.Sidecar); err != nil && !os.IsNotExist(err) {
			r.logger.Warn(
				"failed to remove sidecar",
				logging.String(logging.FieldFile, entry.Sidecar),
				logging.Error(err),
			)
		} else {
			out.sidecarRemoved = true
		}
	}

	entry.ResolvedAt = time.Now().UTC().Format(time.RFC3339)
	return out
}

func (r *Resolver) pickTimestamp(entry *ledger.Entry, candidates []candidate, note func(string, ...any), out *outcome) {
	if len(candidates) == 0 {
		note("no timestamp candidates from any source")
		return
	}
	values := make([]string, len(candidates))
	for i, c := range candidates {
		values[i] = c.canonical
	}
	best, ok := timestamp.Earliest(values...)
	if !ok {
		note("no valid timestamp among %d candidates", len(candidates))
		return
	}
	source := "unknown"
	for _, c := range candidates {
		if c.canonical == best {
			source = c.source
			break
		}
	}
	entry.Timestamp = best
	out.timestampOK = true
	note("resolved timestamp %s, earliest of %d candidates, from %s", best, len(candidates), source)
}

// pickGeotag prefers embedded coordinates over the sidecar block and never
// merges across sources. An embedded conflict aborts the whole geotag, it
// does not fall back to the sidecar.
func (r *Resolver) pickGeotag(entry *ledger.Entry, raw exif.Raw, extracted bool, record *sidecar.Record, note func(string, ...any), out *outcome) {
	var point *geo.Point
	if extracted {
		embedded, err := raw.Position()
		switch {
		case errors.Is(err, geo.ErrConflict):
			out.conflict = true
			note("geotag resolution aborted: %v", err)
			r.logger.Warn(
				"conflicting embedded geotag",
				logging.String(logging.FieldFile, entry.Path),
				logging.Error(fmt.Errorf("%w: %w", services.ErrConflictingGeotag, err)),
			)
			return
		case err != nil:
			note("embedded geotag rejected: %v", err)
		case embedded != nil:
			point = embedded
			note("geotag candidate %s from embedded fields", embedded)
		}
	}
	if point == nil && record != nil {
		if block := record.BestGeo(); block != nil {
			fromSidecar, err := geo.FromSigned(block.Latitude, block.Longitude)
			if err != nil {
				note("sidecar geotag rejected: %v", err)
			} else {
				point = fromSidecar
				note("geotag candidate %s from sidecar", fromSidecar)
			}
		}
	}
	if point == nil {
		return
	}
	entry.Geotag = point
	out.geotagOK = true
}

// sidecarTimestamp standardizes photoTakenTime and creationTime independently
// and keeps the earlier of the two.
func sidecarTimestamp(record *sidecar.Record, note func(string, ...any)) (string, bool) {
	taken, takenOK := firstStandardizable(record.PhotoTaken.Values(), "photoTakenTime", note)
	created, createdOK := firstStandardizable(record.Creation.Values(), "creationTime", note)
	switch {
	case takenOK && createdOK:
		if earliest, ok := timestamp.Earliest(taken, created); ok {
			return earliest, true
		}
		return "", false
	case takenOK:
		return taken, true
	case createdOK:
		return created, true
	default:
		return "", false
	}
}

func firstStandardizable(values []string, field string, note func(string, ...any)) (string, bool) {
	for _, value := range values {
		canonical, err := timestamp.Standardize(value)
		if err != nil {
			note("sidecar %s value %q rejected: %v", field, value, err)
			continue
		}
		return canonical, true
	}
	return "", false
}

// embeddedTimestamp standardizes every date field for the extension and keeps
// the earliest valid one.
func embeddedTimestamp(raw exif.Raw, ext string, note func(string, ...any)) (string, string, bool) {
	var (
		best      string
		bestField string
		bestTime  time.Time
		found     bool
	)
	for _, value := range raw.Dates(ext) {
		canonical, err := timestamp.Standardize(value.Value)
		if err != nil {
			note("embedded %s value %q rejected: %v", value.Field, value.Value, err)
			continue
		}
		if !timestamp.IsValid(canonical) {
			note("embedded %s value %q rejected: zero date", value.Field, value.Value)
			continue
		}
		parsed, err := timestamp.Parse(canonical)
		if err != nil {
			continue
		}
		if !found || parsed.Before(bestTime) {
			best, bestField, bestTime, found = canonical, value.Field, parsed, true
		}
	}
	return best, bestField, found
}
