package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"shoebox/internal/fileutil"
	"shoebox/internal/geo"
	"shoebox/internal/services"
	"shoebox/internal/timestamp"
)

const (
	// StateDirName is the per-root directory holding the ledger and the
	// cluster report.
	StateDirName = ".shoebox"

	fileName       = "ledger.json"
	currentVersion = 1
)

// Provenance records one decision made about a file, in the order decisions
// were taken.
type Provenance struct {
	Stage  string `json:"stage"`
	Detail string `json:"detail"`
}

// Entry is the ledger record for one media file.
type Entry struct {
	Path       string       `json:"path"`
	Extension  string       `json:"extension"`
	Size       int64        `json:"size"`
	Sidecar    string       `json:"sidecar,omitempty"`
	MatchTier  string       `json:"match_tier,omitempty"`
	Timestamp  string       `json:"timestamp,omitempty"`
	Geotag     *geo.Point   `json:"geotag,omitempty"`
	Provenance []Provenance `json:"provenance,omitempty"`
	ResolvedAt string       `json:"resolved_at,omitempty"`
}

// Matched reports whether the sidecar matcher has already claimed or
// explicitly passed on this file.
func (e *Entry) Matched() bool {
	return e.MatchTier != ""
}

// Resolved reports whether the file carries a usable canonical timestamp.
func (e *Entry) Resolved() bool {
	return timestamp.IsValid(e.Timestamp)
}

func (e *Entry) clone() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Geotag != nil {
		point := *e.Geotag
		clone.Geotag = &point
	}
	if e.Provenance != nil {
		clone.Provenance = append([]Provenance(nil), e.Provenance...)
	}
	return &clone
}

type document struct {
	Version     int               `json:"version"`
	GeneratedAt string            `json:"generated_at"`
	Entries     map[string]*Entry `json:"entries"`
}

// Ledger is the per-root record of every media file and what is known about
// it, keyed by absolute path. Safe for concurrent use; accessors exchange
// copies, never shared pointers.
type Ledger struct {
	path string

	mu      sync.RWMutex
	entries map[string]*Entry
}

// StateDir returns the state directory for a batch root.
func StateDir(root string) string {
	return filepath.Join(root, StateDirName)
}

// PathFor returns the ledger file path for a batch root.
func PathFor(root string) string {
	return filepath.Join(StateDir(root), fileName)
}

// Open loads the ledger for a batch root, starting empty when none exists
// yet. A ledger that exists but cannot be parsed is an error; it is never
// silently replaced.
func Open(root string) (*Ledger, error) {
	ledger := &Ledger{
		path:    PathFor(root),
		entries: make(map[string]*Entry),
	}

	data, err := os.ReadFile(ledger.path)
	if errors.Is(err, os.ErrNotExist) {
		return ledger, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", ledger.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse ledger %s: %w", services.ErrValidation, ledger.path, err)
	}
	if doc.Version != currentVersion {
		return nil, fmt.Errorf("%w: ledger %s has version %d, want %d",
			services.ErrValidation, ledger.path, doc.Version, currentVersion)
	}
	for path, entry := range doc.Entries {
		if entry == nil {
			continue
		}
		if entry.Path == "" {
			entry.Path = path
		}
		ledger.entries[path] = entry
	}
	return ledger, nil
}

// Path returns the on-disk location of the ledger file.
func (l *Ledger) Path() string {
	return l.path
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Get returns a copy of the entry for path.
func (l *Ledger) Get(path string) (*Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.entries[path]
	if !ok {
		return nil, false
	}
	return entry.clone(), true
}

// Put stores a copy of the entry, keyed by its path.
func (l *Ledger) Put(entry *Entry) error {
	if entry == nil || entry.Path == "" {
		return errors.New("ledger entry requires a path")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[entry.Path] = entry.clone()
	return nil
}

// Remove drops the entry for path, reporting whether one existed.
func (l *Ledger) Remove(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[path]; !ok {
		return false
	}
	delete(l.entries, path)
	return true
}

// Retain drops every entry whose path is not in keep. Returns the number of
// entries removed.
func (l *Ledger) Retain(keep map[string]bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for path := range l.entries {
		if !keep[path] {
			delete(l.entries, path)
			removed++
		}
	}
	return removed
}

// Entries returns copies of all entries sorted by path.
func (l *Ledger) Entries() []*Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := make([]*Entry, 0, len(l.entries))
	for _, entry := range l.entries {
		entries = append(entries, entry.clone())
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

// Write persists the ledger atomically. The bytes are re-read and re-parsed
// before replacing the previous file; any failure leaves the previous ledger
// in place.
func (l *Ledger) Write() error {
	l.mu.RLock()
	doc := document{
		Version:     currentVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:     l.entries,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	count := len(l.entries)
	l.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("%w: encode ledger: %w", services.ErrLedgerWrite, err)
	}

	validate := func(raw []byte) error {
		var check document
		if err := json.Unmarshal(raw, &check); err != nil {
			return fmt.Errorf("reparse: %w", err)
		}
		if check.Version != currentVersion {
			return fmt.Errorf("reparse: version %d, want %d", check.Version, currentVersion)
		}
		if len(check.Entries) != count {
			return fmt.Errorf("reparse: %d entries, want %d", len(check.Entries), count)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("%w: create state dir: %w", services.ErrLedgerWrite, err)
	}
	if err := fileutil.WriteFileAtomicValidated(l.path, data, 0o644, validate); err != nil {
		return fmt.Errorf("%w: %s: %w", services.ErrLedgerWrite, l.path, err)
	}
	return nil
}
