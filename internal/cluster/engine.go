package cluster

import (
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"shoebox/internal/geo"
	"shoebox/internal/ledger"
	"shoebox/internal/logging"
	"shoebox/internal/timestamp"
)

// Default relationship thresholds.
const (
	DefaultTimeSeconds = 300.0
	DefaultDistanceKm  = 0.1
)

// Thresholds are the pairwise limits for the temporal and location relations.
type Thresholds struct {
	TimeSeconds float64 `json:"time_seconds"`
	DistanceKm  float64 `json:"distance_km"`
}

// Statistics summarizes one clustering run.
type Statistics struct {
	Files            int `json:"files"`
	WithTimestamp    int `json:"with_timestamp"`
	WithGeotag       int `json:"with_geotag"`
	TemporalClusters int `json:"temporal_clusters"`
	LocationClusters int `json:"location_clusters"`
	EventClusters    int `json:"event_clusters"`
}

// Report is the relationship output document. Indices refer to FileIndex;
// singleton clusters are omitted from the three partition lists.
type Report struct {
	FileIndex  map[int]string `json:"file_index"`
	TPrime     [][]int        `json:"T_prime"`
	LPrime     [][]int        `json:"L_prime"`
	EPrime     [][]int        `json:"E_prime"`
	Thresholds Thresholds     `json:"thresholds"`
	Statistics Statistics     `json:"statistics"`
}

// Engine derives the three relationship partitions from resolved canonical
// values: T primed by capture-time proximity, L primed by location proximity,
// and E primed by both holding for the same pair.
type Engine struct {
	thresholds Thresholds
	logger     *slog.Logger
}

// NewEngine constructs a clustering engine. Non-positive thresholds select
// the defaults.
func NewEngine(thresholds Thresholds, logger *slog.Logger) *Engine {
	if thresholds.TimeSeconds <= 0 {
		thresholds.TimeSeconds = DefaultTimeSeconds
	}
	if thresholds.DistanceKm <= 0 {
		thresholds.DistanceKm = DefaultDistanceKm
	}
	if logger == nil {
		logger = logging.NewNop()
	} else {
		logger = logger.With(logging.String(logging.FieldComponent, "cluster"))
	}
	return &Engine{thresholds: thresholds, logger: logger}
}

type member struct {
	index   int
	when    time.Time
	hasWhen bool
	point   *geo.Point
}

// Compute builds the partitions over every entry with at least one canonical
// value. The three relations live on independent union-find structures, so
// they are computed concurrently over the read-only member list.
func (e *Engine) Compute(entries []*ledger.Entry) *Report {
	members, index := e.collect(entries)
	report := &Report{
		FileIndex:  index,
		TPrime:     [][]int{},
		LPrime:     [][]int{},
		EPrime:     [][]int{},
		Thresholds: e.thresholds,
	}
	report.Statistics.Files = len(members)
	for _, m := range members {
		if m.hasWhen {
			report.Statistics.WithTimestamp++
		}
		if m.point != nil {
			report.Statistics.WithGeotag++
		}
	}

	temporal := newUnionFind(len(members))
	location := newUnionFind(len(members))
	event := newUnionFind(len(members))

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		e.linkTemporal(members, temporal)
	}()
	go func() {
		defer wg.Done()
		e.linkLocation(members, location)
	}()
	go func() {
		defer wg.Done()
		e.linkEvents(members, event)
	}()
	wg.Wait()

	report.TPrime = temporal.sets()
	report.LPrime = location.sets()
	report.EPrime = event.sets()
	report.Statistics.TemporalClusters = len(report.TPrime)
	report.Statistics.LocationClusters = len(report.LPrime)
	report.Statistics.EventClusters = len(report.EPrime)
	return report
}

// collect filters entries to those with a usable value and indexes them in
// path order so reruns produce identical reports.
func (e *Engine) collect(entries []*ledger.Entry) ([]member, map[int]string) {
	usable := make([]*ledger.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Resolved() || entry.Geotag != nil {
			usable = append(usable, entry)
		}
	}
	sort.Slice(usable, func(i, j int) bool { return usable[i].Path < usable[j].Path })

	members := make([]member, len(usable))
	index := make(map[int]string, len(usable))
	for i, entry := range usable {
		m := member{index: i, point: entry.Geotag}
		if entry.Resolved() {
			if when, err := timestamp.Parse(entry.Timestamp); err == nil {
				m.when = when
				m.hasWhen = true
			}
		}
		members[i] = m
		index[i] = entry.Path
	}
	return members, index
}

// linkTemporal unions files whose capture times fall within the threshold.
// After sorting, consecutive within-threshold links produce exactly the
// transitive closure of the pairwise relation: any in-threshold pair spans
// only in-threshold consecutive gaps.
func (e *Engine) linkTemporal(members []member, uf *unionFind) {
	timed := make([]member, 0, len(members))
	for _, m := range members {
		if m.hasWhen {
			timed = append(timed, m)
		}
	}
	sort.Slice(timed, func(i, j int) bool { return timed[i].when.Before(timed[j].when) })

	for i := 1; i < len(timed); i++ {
		if e.withinTime(timed[i-1], timed[i]) {
			uf.union(timed[i-1].index, timed[i].index)
		}
	}
}

// linkLocation unions files whose geotags fall within the distance threshold.
// A spatial grid prunes the candidate pairs; every surviving pair is verified
// with the real great-circle distance. Cells are padded to three times the
// threshold so longitude shrink keeps neighbors adjacent up to roughly 70
// degrees of latitude.
func (e *Engine) linkLocation(members []member, uf *unionFind) {
	grid := geo.NewGrid(3 * e.thresholds.DistanceKm)
	located := make([]member, 0, len(members))
	for _, m := range members {
		if m.point != nil {
			grid.Insert(m.index, m.point)
			located = append(located, m)
		}
	}
	byIndex := make(map[int]member, len(located))
	for _, m := range located {
		byIndex[m.index] = m
	}

	for _, m := range located {
		for _, other := range grid.Neighbors(m.point) {
			if other <= m.index {
				continue
			}
			if e.withinDistance(m, byIndex[other]) {
				uf.union(m.index, other)
			}
		}
	}
}

// linkEvents unions only pairs that satisfy both relations at once. The AND
// runs at the pair level before any transitive closure, so a chain of files
// alternating time-only and location-only links never merges.
func (e *Engine) linkEvents(members []member, uf *unionFind) {
	grid := geo.NewGrid(3 * e.thresholds.DistanceKm)
	both := make([]member, 0, len(members))
	for _, m := range members {
		if m.hasWhen && m.point != nil {
			grid.Insert(m.index, m.point)
			both = append(both, m)
		}
	}
	byIndex := make(map[int]member, len(both))
	for _, m := range both {
		byIndex[m.index] = m
	}

	for _, m := range both {
		for _, other := range grid.Neighbors(m.point) {
			if other <= m.index {
				continue
			}
			candidate := byIndex[other]
			if e.withinTime(m, candidate) && e.withinDistance(m, candidate) {
				uf.union(m.index, other)
			}
		}
	}
}

func (e *Engine) withinTime(a, b member) bool {
	return math.Abs(a.when.Sub(b.when).Seconds()) <= e.thresholds.TimeSeconds
}

func (e *Engine) withinDistance(a, b member) bool {
	return geo.DistanceKm(a.point, b.point) <= e.thresholds.DistanceKm
}
