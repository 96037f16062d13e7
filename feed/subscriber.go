package feed

import "time"

// Event represents a refresh lifecycle event
// ------------------------------------------
type Event any

type RefreshStarted struct {
	StartedAt time.Time
}

type SourcesFetched struct {
	Deposits    int
	Withdrawals int
	Dropped     int
}

type MetricsUnavailable struct {
	Err error
}

type RefreshCompleted struct {
	Records  int
	Resolved int // addresses decided in the name cache so far
	Duration time.Duration
}

type RefreshFailed struct {
	Err error
}

// Subscriber handles event subscriptions.
type Subscriber struct {
	done                      chan struct{}
	refreshStartedHandler     func(RefreshStarted)
	sourcesFetchedHandler     func(SourcesFetched)
	metricsUnavailableHandler func(MetricsUnavailable)
	refreshCompletedHandler   func(RefreshCompleted)
	refreshFailedHandler      func(RefreshFailed)
}

// OnRefreshStarted sets the handler for RefreshStarted events
func OnRefreshStarted(fn func(RefreshStarted)) func(*Subscriber) {
	return func(s *Subscriber) { s.refreshStartedHandler = fn }
}

// OnSourcesFetched sets the handler for SourcesFetched events
func OnSourcesFetched(fn func(SourcesFetched)) func(*Subscriber) {
	return func(s *Subscriber) { s.sourcesFetchedHandler = fn }
}

// OnMetricsUnavailable sets the handler for MetricsUnavailable events
func OnMetricsUnavailable(fn func(MetricsUnavailable)) func(*Subscriber) {
	return func(s *Subscriber) { s.metricsUnavailableHandler = fn }
}

// OnRefreshCompleted sets the handler for RefreshCompleted events
func OnRefreshCompleted(fn func(RefreshCompleted)) func(*Subscriber) {
	return func(s *Subscriber) { s.refreshCompletedHandler = fn }
}

// OnRefreshFailed sets the handler for RefreshFailed events
func OnRefreshFailed(fn func(RefreshFailed)) func(*Subscriber) {
	return func(s *Subscriber) { s.refreshFailedHandler = fn }
}

// NewSubscriber creates a Subscriber with the given options and starts the
// dispatch loop. Returns a closer function that waits until every event has
// been handled; call it after the event channel is closed.
//
// Example:
//
//	closer := feed.NewSubscriber(svc.Events(),
//	  feed.OnRefreshCompleted(func(e RefreshCompleted) { ... }),
//	)
//	defer closer()
func NewSubscriber(events <-chan Event, opts ...func(*Subscriber)) func() {
	s := &Subscriber{
		done:                      make(chan struct{}),
		refreshStartedHandler:     func(RefreshStarted) {},     // nop by default
		sourcesFetchedHandler:     func(SourcesFetched) {},     // nop by default
		metricsUnavailableHandler: func(MetricsUnavailable) {}, // nop by default
		refreshCompletedHandler:   func(RefreshCompleted) {},   // nop by default
		refreshFailedHandler:      func(RefreshFailed) {},      // nop by default
	}

	for _, opt := range opts {
		opt(s)
	}

	go func() {
		defer close(s.done)
		for ev := range events {
			switch e := ev.(type) {
			case RefreshStarted:
				s.refreshStartedHandler(e)
			case SourcesFetched:
				s.sourcesFetchedHandler(e)
			case MetricsUnavailable:
				s.metricsUnavailableHandler(e)
			case RefreshCompleted:
				s.refreshCompletedHandler(e)
			case RefreshFailed:
				s.refreshFailedHandler(e)
			}
		}
	}()

	return func() {
		<-s.done
	}
}
