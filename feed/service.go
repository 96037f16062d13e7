package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiomede/graph-metrics/pkg/clock"
	"github.com/pdiomede/graph-metrics/pkg/graphnet"
)

// Sentinel errors for refresh failures
var (
	ErrRefreshInFlight = errors.New("refresh already in flight")
	ErrEventSource     = errors.New("event source unavailable")
)

// EventSource fetches the raw delegation event streams
// -----------------------------------------------------
type EventSource interface {
	FetchDelegationEvents(ctx context.Context, limit int) (*graphnet.DelegationEvents, error)
}

// MetricsSource fetches network-wide delegator counters
type MetricsSource interface {
	FetchNetworkMetrics(ctx context.Context) (*graphnet.NetworkMetrics, error)
}

// Clock abstracts time for production and testing
type Clock interface {
	Now() time.Time
}

// State is the feed lifecycle: idle → loading → ready|failed → loading …
// -----------------------------------------------------------------------
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

// String returns the lower-case state name
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Metrics holds the secondary delegator counters. Available is false when
// the metrics source failed; the feed itself still works then.
type Metrics struct {
	DelegatorCount       string
	ActiveDelegatorCount string
	Available            bool
}

// Snapshot is one complete refresh result. Every refresh rebuilds it from
// scratch; there is no incremental merge with the previous snapshot.
type Snapshot struct {
	Activities  []Activity
	Metrics     Metrics
	Dropped     int // raw events dropped as unparsable
	RefreshedAt time.Time
}

// View is what the presentation layer reads
type View struct {
	State        State
	Stale        bool // loading with previous data still showing
	Snapshot     Snapshot
	ErrorMessage string
}

// Option configures the Service
// ------------------------------------------------
type Option func(*Service)

// WithClock injects a custom Clock (e.g., for testing)
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithCap sets the merged feed size cap
func WithCap(n int) Option {
	return func(s *Service) { s.cap = n }
}

// WithEnrichWorkers bounds the enrichment fan-out
func WithEnrichWorkers(n int) Option {
	return func(s *Service) { s.enrichWorkers = n }
}

// WithResolver injects a prepared resolver (e.g., for testing)
func WithResolver(r *Resolver) Option {
	return func(s *Service) { s.resolver = r }
}

// Service owns the refresh cycle and the current feed snapshot.
// -------------------------------------------------------------
// One refresh runs at a time; a refresh triggered while another is in
// flight is rejected with ErrRefreshInFlight rather than interleaved.
// The resolver cache is retained across refreshes: a cached name can only
// go stale, never wrong enough to break the feed, and it saves a full
// re-resolution of a mostly-unchanged address set.
type Service struct {
	source        EventSource
	metrics       MetricsSource
	resolver      *Resolver
	clock         Clock
	cap           int
	enrichWorkers int

	events chan Event

	refreshing sync.Mutex // held for the duration of one refresh

	mu       sync.RWMutex
	state    State
	snapshot Snapshot
	errMsg   string
}

// NewService constructs a Service with required dependencies and options.
// By default it uses a real clock, the full-horizon cap and 8 enrichment
// workers.
func NewService(source EventSource, metrics MetricsSource, lookup NameLookup, opts ...Option) *Service {
	s := &Service{
		source:        source,
		metrics:       metrics,
		resolver:      NewResolver(lookup),
		clock:         clock.SystemClock{},
		cap:           CapFull,
		enrichWorkers: DefaultEnrichWorkers,
		events:        make(chan Event, 16),
		state:         StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the lifecycle event stream. Events are best-effort
// observability: when nobody drains the channel they are dropped, never
// allowed to stall a refresh.
func (s *Service) Events() <-chan Event {
	return s.events
}

// Close closes the event stream. Call once, after the last refresh.
func (s *Service) Close() {
	close(s.events)
}

// Refresh runs one full fetch→merge→enrich cycle and atomically replaces
// the feed snapshot.
//
// The two upstream fetches run concurrently and are both awaited; a
// metrics failure degrades the counters to unavailable while the feed
// still reaches ready. An event-source failure clears the snapshot and
// moves the feed to failed. Refresh is idempotent and safely
// re-triggerable.
func (s *Service) Refresh(ctx context.Context) error {
	if !s.refreshing.TryLock() {
		return ErrRefreshInFlight
	}
	defer s.refreshing.Unlock()

	start := s.clock.Now()
	s.setLoading()
	s.emit(RefreshStarted{StartedAt: start})

	// Fetch both sources concurrently. Errors are captured per branch so a
	// failure in one never cancels the other.
	var (
		events     *graphnet.DelegationEvents
		eventsErr  error
		counters   *graphnet.NetworkMetrics
		countersEr error
	)
	var g errgroup.Group
	g.Go(func() error {
		events, eventsErr = s.source.FetchDelegationEvents(ctx, s.cap)
		return nil
	})
	g.Go(func() error {
		counters, countersEr = s.metrics.FetchNetworkMetrics(ctx)
		return nil
	})
	_ = g.Wait()

	if eventsErr != nil {
		err := fmt.Errorf("%w: %w", ErrEventSource, eventsErr)
		s.setFailed("delegation activity is unavailable right now")
		s.emit(RefreshFailed{Err: err})
		return err
	}

	metrics := Metrics{Available: false}
	if countersEr != nil {
		s.emit(MetricsUnavailable{Err: countersEr})
	} else {
		metrics = Metrics{
			DelegatorCount:       counters.DelegatorCount,
			ActiveDelegatorCount: counters.ActiveDelegatorCount,
			Available:            true,
		}
	}

	activities, diag := Merge(events, s.cap)
	s.emit(SourcesFetched{
		Deposits:    len(events.Deposits),
		Withdrawals: len(events.Withdrawals),
		Dropped:     diag.Dropped,
	})

	activities = Enrich(ctx, activities, s.resolver, s.enrichWorkers)

	s.setReady(Snapshot{
		Activities:  activities,
		Metrics:     metrics,
		Dropped:     diag.Dropped,
		RefreshedAt: s.clock.Now(),
	})
	s.emit(RefreshCompleted{
		Records:  len(activities),
		Resolved: s.resolver.CacheSize(),
		Duration: s.clock.Now().Sub(start),
	})
	return nil
}

// View returns the current state and snapshot for the presentation layer
func (s *Service) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{
		State:        s.state,
		Stale:        s.state == StateLoading && !s.snapshot.RefreshedAt.IsZero(),
		Snapshot:     s.snapshot,
		ErrorMessage: s.errMsg,
	}
}

// Resolver exposes the session name cache
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

func (s *Service) setLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateLoading
}

func (s *Service) setReady(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateReady
	s.snapshot = snapshot
	s.errMsg = ""
}

func (s *Service) setFailed(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
	s.snapshot = Snapshot{}
	s.errMsg = message
}

func (s *Service) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
