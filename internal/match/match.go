package match

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"shoebox/internal/fileutil"
	"shoebox/internal/logging"
	"shoebox/internal/scan"
)

// Match confidence tiers, recorded on each ledger entry.
const (
	TierExact             = "exact"
	TierSuffixStripped    = "suffix_stripped"
	TierCopiedFromSibling = "copied_from_sibling"
	TierTruncatedName     = "truncated_name"
	TierUnmatched         = "unmatched"
)

const (
	canonicalSuffix = "supplemental-metadata"

	defaultPrefixLength = 43
	defaultSuffixMargin = 4
)

// suffixTruncations holds every truncation of the canonical sidecar suffix,
// longest first. The export may cut the suffix at any character boundary.
var suffixTruncations = func() []string {
	out := make([]string, 0, len(canonicalSuffix))
	for i := len(canonicalSuffix); i >= 1; i-- {
		out = append(out, canonicalSuffix[:i])
	}
	return out
}()

// parenTruncations additionally probes the bare (no-suffix) sidecar form used
// by older exports.
var parenTruncations = append(append([]string(nil), suffixTruncations...), "")

var (
	parenStem      = regexp.MustCompile(`^(.+)\((\d+)\)$`)
	variantMarkers = []string{"-edited", "-effects"}
)

// Pair is one matched (media, sidecar) pairing with its confidence tier.
type Pair struct {
	MediaPath   string
	SidecarPath string
	Tier        string
}

// Result is the complete outcome of the matching passes over one batch root.
type Result struct {
	Pairs          []Pair
	LeftoverMedia  []string
	OrphanSidecars []string
	JunkDirs       []string
	JunkMedia      []string
	JunkSidecars   []string
	Renamed        int
	Copied         int
}

// Matcher pairs media files with their JSON sidecars across six strictly
// ordered passes. Every pass consumes from the residual of the previous one;
// a file claimed by an earlier pass is never reconsidered.
type Matcher struct {
	prefixLength int
	suffixMargin int
	logger       *slog.Logger
}

// NewMatcher constructs a matcher. Non-positive tunables select the defaults
// observed in real exports (43-character grouping prefix, 4-character margin).
func NewMatcher(prefixLength, suffixMargin int, logger *slog.Logger) *Matcher {
	if prefixLength <= 0 {
		prefixLength = defaultPrefixLength
	}
	if suffixMargin <= 0 {
		suffixMargin = defaultSuffixMargin
	}
	if logger == nil {
		logger = logging.NewNop()
	} else {
		logger = logger.With(logging.String(logging.FieldComponent, "matcher"))
	}
	return &Matcher{prefixLength: prefixLength, suffixMargin: suffixMargin, logger: logger}
}

type file struct {
	path string
	dir  string
	name string
}

type pool struct {
	media    map[string]file
	sidecars map[string]file
}

func newPool(media, sidecars []scan.File) *pool {
	p := &pool{
		media:    make(map[string]file, len(media)),
		sidecars: make(map[string]file, len(sidecars)),
	}
	for _, m := range media {
		p.media[m.Path] = file{path: m.Path, dir: m.Dir, name: m.Name}
	}
	for _, s := range sidecars {
		p.sidecars[s.Path] = file{path: s.Path, dir: s.Dir, name: s.Name}
	}
	return p
}

func (p *pool) sortedMedia() []file {
	out := make([]file, 0, len(p.media))
	for _, f := range p.media {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out
}

func (p *pool) sortedSidecars() []file {
	out := make([]file, 0, len(p.sidecars))
	for _, f := range p.sidecars {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out
}

// Run executes the matching passes. Pass 1 renames truncated sidecar names on
// disk; pass 2 duplicates sidecar files for -edited/-effects variants. All
// other passes only read.
func (m *Matcher) Run(media, sidecars []scan.File) *Result {
	p := newPool(media, sidecars)
	result := &Result{}

	m.canonicalizeSuffixes(p, result)
	m.propagateVariants(p, result)
	m.pairExact(p, result)
	m.pairParenthetical(p, result)
	m.pairTruncated(p, result)
	m.filterDirectories(p, result)

	return result
}

// canonicalizeSuffixes is pass 1: any sidecar ending in a truncation of
// .supplemental-metadata.json is renamed to <base>.json. Longest truncation
// first, so a full suffix is never partially stripped.
func (m *Matcher) canonicalizeSuffixes(p *pool, result *Result) {
	for _, sc := range p.sortedSidecars() {
		for _, truncation := range suffixTruncations {
			marker := "." + truncation + ".json"
			if !strings.HasSuffix(sc.name, marker) {
				continue
			}
			base := strings.TrimSuffix(sc.name, marker)
			if base == "" {
				break
			}
			target := filepath.Join(sc.dir, base+".json")
			if _, exists := p.sidecars[target]; exists {
				m.logger.Debug(
					"canonical sidecar name already taken",
					logging.String(logging.FieldFile, sc.path),
					logging.String("target", target),
				)
				break
			}
			if err := os.Rename(sc.path, target); err != nil {
				m.logger.Warn(
					"failed to canonicalize sidecar name",
					logging.String(logging.FieldFile, sc.path),
					logging.Error(err),
				)
				break
			}
			delete(p.sidecars, sc.path)
			p.sidecars[target] = file{path: target, dir: sc.dir, name: base + ".json"}
			result.Renamed++
			break
		}
	}
}

// propagateVariants is pass 2: a -edited/-effects media file without its own
// sidecar inherits a copy of its base version's sidecar.
func (m *Matcher) propagateVariants(p *pool, result *Result) {
	for _, md := range p.sortedMedia() {
		ext := filepath.Ext(md.name)
		stem := strings.TrimSuffix(md.name, ext)

		var marker string
		for _, candidate := range variantMarkers {
			if strings.HasSuffix(stem, candidate) && len(stem) > len(candidate) {
				marker = candidate
				break
			}
		}
		if marker == "" {
			continue
		}
		if _, hasOwn := p.sidecars[md.path+".json"]; hasOwn {
			continue
		}

		basePath := filepath.Join(md.dir, strings.TrimSuffix(stem, marker)+ext)
		baseSidecar, ok := p.sidecars[basePath+".json"]
		if !ok {
			continue
		}

		target := md.path + ".json"
		if err := fileutil.CopyFile(baseSidecar.path, target); err != nil {
			m.logger.Warn(
				"failed to copy sibling sidecar",
				logging.String(logging.FieldFile, md.path),
				logging.Error(err),
			)
			continue
		}
		result.Pairs = append(result.Pairs, Pair{MediaPath: md.path, SidecarPath: target, Tier: TierCopiedFromSibling})
		result.Copied++
		delete(p.media, md.path)
	}
}

// pairExact is pass 3: <mediaFullName>.json.
func (m *Matcher) pairExact(p *pool, result *Result) {
	for _, md := range p.sortedMedia() {
		key := md.path + ".json"
		if _, ok := p.sidecars[key]; !ok {
			continue
		}
		result.Pairs = append(result.Pairs, Pair{MediaPath: md.path, SidecarPath: key, Tier: TierExact})
		delete(p.media, md.path)
		delete(p.sidecars, key)
	}
}

// pairParenthetical is pass 4: photo(2).jpg pairs with
// photo.jpg.supplemental-metadata(2).json, trying every suffix truncation.
func (m *Matcher) pairParenthetical(p *pool, result *Result) {
	for _, md := range p.sortedMedia() {
		ext := filepath.Ext(md.name)
		stem := strings.TrimSuffix(md.name, ext)
		groups := parenStem.FindStringSubmatch(stem)
		if groups == nil {
			continue
		}
		stripped := groups[1] + ext
		index := "(" + groups[2] + ")"

		for _, truncation := range parenTruncations {
			candidate := stripped + "." + truncation + index + ".json"
			if truncation == "" {
				candidate = stripped + index + ".json"
			}
			key := filepath.Join(md.dir, candidate)
			if _, ok := p.sidecars[key]; !ok {
				continue
			}
			result.Pairs = append(result.Pairs, Pair{MediaPath: md.path, SidecarPath: key, Tier: TierSuffixStripped})
			delete(p.media, md.path)
			delete(p.sidecars, key)
			break
		}
	}
}

// pairTruncated is pass 5: names silently cut at a path-length limit. Group
// remaining names per directory by a fixed-length prefix, then pair a JSON
// with a media file when their prefix-stripped base names agree up to the
// shorter length minus the suffix margin.
func (m *Matcher) pairTruncated(p *pool, result *Result) {
	type bucket struct {
		media    []file
		sidecars []file
	}
	groups := make(map[string]*bucket)

	add := func(f file, base string, isSidecar bool) {
		if len(base) < m.prefixLength {
			return
		}
		key := f.dir + "\x00" + base[:m.prefixLength]
		b := groups[key]
		if b == nil {
			b = &bucket{}
			groups[key] = b
		}
		if isSidecar {
			b.sidecars = append(b.sidecars, f)
		} else {
			b.media = append(b.media, f)
		}
	}

	for _, md := range p.sortedMedia() {
		add(md, md.name, false)
	}
	for _, sc := range p.sortedSidecars() {
		add(sc, strings.TrimSuffix(sc.name, ".json"), true)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		b := groups[key]
		for _, sc := range b.sidecars {
			if _, alive := p.sidecars[sc.path]; !alive {
				continue
			}
			jsonBase := strings.TrimSuffix(sc.name, ".json")
			for _, md := range b.media {
				if _, alive := p.media[md.path]; !alive {
					continue
				}
				if !m.truncatedEqual(jsonBase, md.name) {
					continue
				}
				result.Pairs = append(result.Pairs, Pair{MediaPath: md.path, SidecarPath: sc.path, Tier: TierTruncatedName})
				delete(p.media, md.path)
				delete(p.sidecars, sc.path)
				break
			}
		}
	}
}

// truncatedEqual compares two names that already share the grouping prefix:
// both are cut to the shorter prefix-stripped length minus the margin and
// must agree exactly on what remains.
func (m *Matcher) truncatedEqual(jsonBase, mediaName string) bool {
	if len(jsonBase) < m.prefixLength || len(mediaName) < m.prefixLength {
		return false
	}
	if jsonBase[:m.prefixLength] != mediaName[:m.prefixLength] {
		return false
	}
	restJSON := jsonBase[m.prefixLength:]
	restMedia := mediaName[m.prefixLength:]
	keep := len(restJSON)
	if len(restMedia) < keep {
		keep = len(restMedia)
	}
	keep -= m.suffixMargin
	if keep <= 0 {
		return true
	}
	return restJSON[:keep] == restMedia[:keep]
}

// filterDirectories is pass 6: a directory whose residue is purely JSON or
// purely media cannot be reconstructed and is junk; mixed residue is a
// genuine leftover worth reporting file by file.
func (m *Matcher) filterDirectories(p *pool, result *Result) {
	type residue struct {
		media    []string
		sidecars []string
	}
	dirs := make(map[string]*residue)

	for _, md := range p.sortedMedia() {
		r := dirs[md.dir]
		if r == nil {
			r = &residue{}
			dirs[md.dir] = r
		}
		r.media = append(r.media, md.path)
	}
	for _, sc := range p.sortedSidecars() {
		r := dirs[sc.dir]
		if r == nil {
			r = &residue{}
			dirs[sc.dir] = r
		}
		r.sidecars = append(r.sidecars, sc.path)
	}

	names := make([]string, 0, len(dirs))
	for dir := range dirs {
		names = append(names, dir)
	}
	sort.Strings(names)

	for _, dir := range names {
		r := dirs[dir]
		switch {
		case len(r.media) == 0 || len(r.sidecars) == 0:
			result.JunkDirs = append(result.JunkDirs, dir)
			result.JunkMedia = append(result.JunkMedia, r.media...)
			result.JunkSidecars = append(result.JunkSidecars, r.sidecars...)
			m.logger.Debug(
				"junk directory",
				logging.String(logging.FieldDirectory, dir),
				logging.Int("media", len(r.media)),
				logging.Int("sidecars", len(r.sidecars)),
			)
		default:
			result.LeftoverMedia = append(result.LeftoverMedia, r.media...)
			result.OrphanSidecars = append(result.OrphanSidecars, r.sidecars...)
		}
	}
	sort.Strings(result.LeftoverMedia)
	sort.Strings(result.OrphanSidecars)
	sort.Strings(result.JunkMedia)
	sort.Strings(result.JunkSidecars)
}

// Matched returns the pairs as a media-path keyed map.
func (r *Result) Matched() map[string]Pair {
	out := make(map[string]Pair, len(r.Pairs))
	for _, pair := range r.Pairs {
		out[pair.MediaPath] = pair
	}
	return out
}

// TierCounts aggregates pair counts by confidence tier.
func (r *Result) TierCounts() map[string]int {
	out := make(map[string]int, 4)
	for _, pair := range r.Pairs {
		out[pair.Tier]++
	}
	return out
}

func (r *Result) String() string {
	return fmt.Sprintf("pairs=%d leftover=%d orphans=%d junk_dirs=%d",
		len(r.Pairs), len(r.LeftoverMedia), len(r.OrphanSidecars), len(r.JunkDirs))
}
