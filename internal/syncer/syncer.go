// Package syncer drives the snapshot broadcast loops: two independent
// periodic tickers (full and state-only) plus on-demand full syncs
// requested after successful commands.
package syncer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/procdash/procdash/internal/hub"
	"github.com/procdash/procdash/internal/snapshot"
)

// Default tick intervals.
const (
	DefaultFullInterval  = 1500 * time.Millisecond
	DefaultStateInterval = 1000 * time.Millisecond
)

// Source builds the two snapshot variants.
type Source interface {
	BuildFull(ctx context.Context) ([]snapshot.View, error)
	BuildState(ctx context.Context) ([]snapshot.StateView, error)
}

// Broadcaster pushes an envelope to all subscribers.
type Broadcaster interface {
	Broadcast(env hub.Envelope)
}

// Config configures a Scheduler.
type Config struct {
	Source      Source
	Broadcaster Broadcaster

	// FullInterval and StateInterval are the periodic tick intervals
	// (defaults DefaultFullInterval / DefaultStateInterval).
	FullInterval  time.Duration
	StateInterval time.Duration

	// BuildTimeout bounds one snapshot build so a hung manager call or
	// log read can't stall broadcasting forever (default 10s).
	BuildTimeout time.Duration
}

// Scheduler runs the sync loops. Full syncs — timer ticks and on-demand
// requests alike — are serialized through a single goroutine, so a slow
// cycle can never overwrite a newer one's broadcast. On-demand requests
// arriving while a sync is already pending coalesce into one.
type Scheduler struct {
	source        Source
	broadcaster   Broadcaster
	fullInterval  time.Duration
	stateInterval time.Duration
	buildTimeout  time.Duration

	fullReq chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a scheduler.
func New(cfg Config) *Scheduler {
	fullInterval := cfg.FullInterval
	if fullInterval <= 0 {
		fullInterval = DefaultFullInterval
	}
	stateInterval := cfg.StateInterval
	if stateInterval <= 0 {
		stateInterval = DefaultStateInterval
	}
	buildTimeout := cfg.BuildTimeout
	if buildTimeout <= 0 {
		buildTimeout = 10 * time.Second
	}
	return &Scheduler{
		source:        cfg.Source,
		broadcaster:   cfg.Broadcaster,
		fullInterval:  fullInterval,
		stateInterval: stateInterval,
		buildTimeout:  buildTimeout,
		fullReq:       make(chan struct{}, 1),
	}
}

// Start launches the sync loops. Call Stop to shut down.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(2)
	go s.runFull(ctx)
	go s.runState(ctx)
}

// Stop shuts down the loops and waits for them to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// RequestFullSync asks for an immediate full sync, independent of the
// timer's phase. It never blocks: if a request is already pending the
// two merge into one sync.
func (s *Scheduler) RequestFullSync() {
	select {
	case s.fullReq <- struct{}{}:
	default:
	}
}

func (s *Scheduler) runFull(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.fullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.fullReq:
		}
		s.syncFull(ctx)
	}
}

func (s *Scheduler) runState(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.stateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncState(ctx)
		}
	}
}

// syncFull builds and broadcasts one full snapshot. A failed build is
// logged and skipped — clients simply see no update until the next
// successful cycle.
func (s *Scheduler) syncFull(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.buildTimeout)
	defer cancel()

	views, err := s.source.BuildFull(ctx)
	if err != nil {
		log.Printf("syncer: full snapshot failed: %v", err)
		return
	}
	s.broadcaster.Broadcast(hub.Envelope{Type: hub.TypeUpdate, Data: views})
}

func (s *Scheduler) syncState(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.buildTimeout)
	defer cancel()

	views, err := s.source.BuildState(ctx)
	if err != nil {
		log.Printf("syncer: state snapshot failed: %v", err)
		return
	}
	s.broadcaster.Broadcast(hub.Envelope{Type: hub.TypeState, Data: views})
}
