// Package capacity holds the authoritative node and farm collections pulled
// from the registry and exposes derived selectors over them.
package capacity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/narvanalabs/grid-explorer/internal/aggregate"
	"github.com/narvanalabs/grid-explorer/internal/filter"
	"github.com/narvanalabs/grid-explorer/internal/liveness"
	"github.com/narvanalabs/grid-explorer/internal/models"
	"github.com/narvanalabs/grid-explorer/pkg/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrStaleIngestion is returned when an ingestion carries a sequence
	// number lower than one already applied.
	ErrStaleIngestion = errors.New("stale ingestion")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store closed")

	// ErrNoFetcher is returned by Refresh when the store was built without a Fetcher.
	ErrNoFetcher = errors.New("no fetcher configured")

	// ErrFetch wraps failures of the underlying Fetcher during Refresh.
	ErrFetch = errors.New("fetch failed")
)

// Fetcher retrieves complete node and farm collections, typically from the
// registry client.
type Fetcher interface {
	ListNodes(ctx context.Context) ([]models.NodeRecord, error)
	ListFarms(ctx context.Context) ([]models.FarmRecord, error)
}

// IngestResult describes one applied ingestion.
type IngestResult struct {
	BatchID  string
	Sequence uint64
	Accepted int
	Rejected int
}

// RefreshResult describes one completed refresh.
type RefreshResult struct {
	Sequence uint64
	Nodes    IngestResult
	Farms    IngestResult
	Duration time.Duration
}

// Store owns the current node and farm collections. Writers are serialized;
// readers observe immutable snapshots, since every ingestion swaps in a new
// slice rather than mutating the held one.
type Store struct {
	fetcher Fetcher
	logger  *slog.Logger
	now     func() time.Time

	seq            atomic.Uint64
	group          singleflight.Group
	refreshTimeout time.Duration

	mu          sync.RWMutex
	nodes       []models.NodeRecord
	nodesLoaded bool
	nodeSeq     uint64
	farms       []models.FarmRecord
	farmsLoaded bool
	farmSeq     uint64
	lastRefresh time.Time
	closed      bool
}

// Option configures a Store.
type Option func(*Store)

// WithFetcher sets the source used by Refresh.
func WithFetcher(f Fetcher) Option {
	return func(s *Store) {
		s.fetcher = f
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the wall clock used for liveness evaluation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithRefreshTimeout bounds a shared refresh. A refresh is detached from the
// contexts of its callers, so this is the only deadline it carries.
func WithRefreshTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.refreshTimeout = d
	}
}

// NewStore creates an empty store. Nodes start in the "not loaded" state.
func NewStore(opts ...Option) *Store {
	s := &Store{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// NextSequence returns a new ingestion sequence number, strictly greater
// than any previously returned.
func (s *Store) NextSequence() uint64 {
	return s.seq.Add(1)
}

// observe keeps the sequence counter ahead of externally supplied numbers.
func (s *Store) observe(seq uint64) {
	for {
		cur := s.seq.Load()
		if seq <= cur || s.seq.CompareAndSwap(cur, seq) {
			return
		}
	}
}

// IngestNodes replaces the held node collection with records. Records
// missing their identity are dropped with a warning. An ingestion whose seq
// is lower than the last applied node ingestion is rejected with
// ErrStaleIngestion; re-applying the same seq is allowed.
func (s *Store) IngestNodes(seq uint64, records []models.NodeRecord) (IngestResult, error) {
	s.observe(seq)
	result, nodes := s.validNodes(seq, records)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return result, ErrClosed
	}
	if seq < s.nodeSeq {
		s.logger.Warn("discarding stale node ingestion",
			"batch_id", result.BatchID,
			"sequence", seq,
			"applied_sequence", s.nodeSeq,
		)
		return result, fmt.Errorf("%w: nodes seq %d < %d", ErrStaleIngestion, seq, s.nodeSeq)
	}

	s.nodes = nodes
	s.nodesLoaded = true
	s.nodeSeq = seq

	s.logger.Debug("nodes ingested",
		"batch_id", result.BatchID,
		"sequence", seq,
		"accepted", result.Accepted,
		"rejected", result.Rejected,
	)
	return result, nil
}

// IngestFarms replaces the held farm collection with records, with the same
// validation and sequencing rules as IngestNodes.
func (s *Store) IngestFarms(seq uint64, records []models.FarmRecord) (IngestResult, error) {
	s.observe(seq)
	result, farms := s.validFarms(seq, records)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return result, ErrClosed
	}
	if seq < s.farmSeq {
		s.logger.Warn("discarding stale farm ingestion",
			"batch_id", result.BatchID,
			"sequence", seq,
			"applied_sequence", s.farmSeq,
		)
		return result, fmt.Errorf("%w: farms seq %d < %d", ErrStaleIngestion, seq, s.farmSeq)
	}

	s.farms = farms
	s.farmsLoaded = true
	s.farmSeq = seq

	s.logger.Debug("farms ingested",
		"batch_id", result.BatchID,
		"sequence", seq,
		"accepted", result.Accepted,
		"rejected", result.Rejected,
	)
	return result, nil
}

// validNodes drops node records missing their identity.
func (s *Store) validNodes(seq uint64, records []models.NodeRecord) (IngestResult, []models.NodeRecord) {
	result := IngestResult{BatchID: uuid.NewString(), Sequence: seq}
	nodes := make([]models.NodeRecord, 0, len(records))
	for i := range records {
		if err := records[i].Validate(); err != nil {
			s.logger.Warn("dropping node record",
				"batch_id", result.BatchID,
				"index", i,
				"error", err,
			)
			result.Rejected++
			continue
		}
		nodes = append(nodes, records[i])
	}
	result.Accepted = len(nodes)
	return result, nodes
}

// validFarms drops farm records missing their identity.
func (s *Store) validFarms(seq uint64, records []models.FarmRecord) (IngestResult, []models.FarmRecord) {
	result := IngestResult{BatchID: uuid.NewString(), Sequence: seq}
	farms := make([]models.FarmRecord, 0, len(records))
	for i := range records {
		if err := records[i].Validate(); err != nil {
			s.logger.Warn("dropping farm record",
				"batch_id", result.BatchID,
				"index", i,
				"error", err,
			)
			result.Rejected++
			continue
		}
		farms = append(farms, records[i])
	}
	result.Accepted = len(farms)
	return result, farms
}

// ResetNodes returns the node collection to the "not loaded" state. The
// applied sequence number is kept, so older in-flight ingestions stay stale.
func (s *Store) ResetNodes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = nil
	s.nodesLoaded = false
}

// Nodes returns the held node collection and whether it has been loaded.
// A loaded but empty collection returns a non-nil empty slice and true.
func (s *Store) Nodes() ([]models.NodeRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.nodesLoaded {
		return nil, false
	}
	return slices.Clone(s.nodes), true
}

// Farms returns the held farm collection and whether it has been loaded.
func (s *Store) Farms() ([]models.FarmRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.farmsLoaded {
		return nil, false
	}
	return slices.Clone(s.farms), true
}

// snapshot returns the held slices without copying. Callers must not modify them.
func (s *Store) snapshot() ([]models.NodeRecord, bool, []models.FarmRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes, s.nodesLoaded, s.farms
}

// CurrentStats aggregates the held collections at the current instant.
// An unloaded node collection aggregates as empty.
func (s *Store) CurrentStats() models.FleetStats {
	nodes, _, farms := s.snapshot()
	return aggregate.Aggregate(nodes, farms, s.now().Unix())
}

// CountryGroups groups the held nodes by country in first-seen order.
func (s *Store) CountryGroups() []models.CountryCount {
	nodes, _, _ := s.snapshot()
	return aggregate.GroupByCountry(nodes)
}

// Overview is the fleet summary derived from one snapshot at one instant.
type Overview struct {
	Stats        models.FleetStats
	Distribution map[string]int
	Status       map[liveness.Status]int
	Loaded       bool
	LastRefresh  time.Time
}

// CurrentOverview aggregates, distributes and classifies the held nodes
// from a single snapshot, so all parts describe the same ingestion.
func (s *Store) CurrentOverview() Overview {
	s.mu.RLock()
	nodes, farms := s.nodes, s.farms
	ov := Overview{
		Loaded:      s.nodesLoaded && s.farmsLoaded,
		LastRefresh: s.lastRefresh,
	}
	s.mu.RUnlock()

	now := s.now().Unix()
	ov.Stats = aggregate.Aggregate(nodes, farms, now)
	ov.Distribution = aggregate.Distribution(nodes)
	ov.Status = aggregate.StatusCounts(nodes, now)
	return ov
}

// CurrentNodes applies sel to the held nodes. The returned slice is owned
// by the caller. When nodes are not loaded it returns nil.
func (s *Store) CurrentNodes(sel filter.Selection) ([]models.NodeRecord, error) {
	return s.currentNodes(sel, s.now())
}

func (s *Store) currentNodes(sel filter.Selection, now time.Time) ([]models.NodeRecord, error) {
	nodes, loaded, _ := s.snapshot()
	if !loaded {
		if err := sel.Validate(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	out, err := filter.Apply(nodes, sel, now.Unix())
	if err != nil {
		return nil, err
	}
	return slices.Clone(out), nil
}

// Loaded reports whether both collections have been ingested at least once
// since creation (or since the last ResetNodes for nodes).
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodesLoaded && s.farmsLoaded
}

// LastRefresh returns the completion time of the last successful Refresh.
func (s *Store) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// Refresh fetches both collections and ingests them under one sequence
// number. Concurrent calls share a single in-flight refresh and its result.
// The shared refresh outlives any one caller: a caller whose ctx ends gets
// ctx.Err() while the refresh carries on for the others. Nothing is
// ingested when either fetch fails.
func (s *Store) Refresh(ctx context.Context) (RefreshResult, error) {
	if s.fetcher == nil {
		return RefreshResult{}, ErrNoFetcher
	}

	ch := s.group.DoChan("refresh", func() (interface{}, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("joined in-flight refresh", "refresh_id", logger.RefreshIDFromContext(ctx))
		}
		if res.Err != nil {
			return RefreshResult{}, res.Err
		}
		return res.Val.(RefreshResult), nil
	case <-ctx.Done():
		return RefreshResult{}, ctx.Err()
	}
}

func (s *Store) refresh(ctx context.Context) (RefreshResult, error) {
	if s.refreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.refreshTimeout)
		defer cancel()
	}

	start := s.now()
	seq := s.NextSequence()

	var nodes []models.NodeRecord
	var farms []models.FarmRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nodes, err = s.fetcher.ListNodes(gctx)
		if err != nil {
			return fmt.Errorf("%w: nodes: %w", ErrFetch, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		farms, err = s.fetcher.ListFarms(gctx)
		if err != nil {
			return fmt.Errorf("%w: farms: %w", ErrFetch, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return RefreshResult{}, err
	}

	result, err := s.apply(seq, nodes, farms)
	if err != nil {
		return RefreshResult{}, err
	}

	result.Duration = s.now().Sub(start)
	log := (&logger.Logger{Logger: s.logger}).WithContext(ctx)
	log.Info("registry refresh applied",
		"sequence", seq,
		"nodes", result.Nodes.Accepted,
		"farms", result.Farms.Accepted,
		"rejected", result.Nodes.Rejected+result.Farms.Rejected,
		"duration", result.Duration,
	)
	return result, nil
}

// apply swaps in both collections under one lock. If either collection has
// already moved past seq, neither is replaced.
func (s *Store) apply(seq uint64, nodeRecords []models.NodeRecord, farmRecords []models.FarmRecord) (RefreshResult, error) {
	result := RefreshResult{Sequence: seq}
	var nodes []models.NodeRecord
	var farms []models.FarmRecord
	result.Nodes, nodes = s.validNodes(seq, nodeRecords)
	result.Farms, farms = s.validFarms(seq, farmRecords)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return RefreshResult{}, ErrClosed
	}
	if seq < s.nodeSeq || seq < s.farmSeq {
		s.logger.Warn("discarding stale refresh",
			"sequence", seq,
			"node_sequence", s.nodeSeq,
			"farm_sequence", s.farmSeq,
		)
		return RefreshResult{}, fmt.Errorf("%w: refresh seq %d behind nodes %d or farms %d",
			ErrStaleIngestion, seq, s.nodeSeq, s.farmSeq)
	}

	s.nodes, s.nodesLoaded, s.nodeSeq = nodes, true, seq
	s.farms, s.farmsLoaded, s.farmSeq = farms, true, seq
	s.lastRefresh = s.now()
	return result, nil
}

// Close disposes the store. Held data stays readable; further ingestion
// fails with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
