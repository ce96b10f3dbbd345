package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/procdash/procdash/internal/logtail"
	"github.com/procdash/procdash/internal/manager"
)

// TailFunc reads the last n lines of the log file at path.
type TailFunc func(path string, n int) (string, error)

// Config configures a snapshot Reader.
type Config struct {
	// Manager provides the process listing.
	Manager manager.Manager

	// TailLines is how many trailing log lines the full snapshot carries
	// per process (default logtail.DefaultLines).
	TailLines int

	// Tail overrides the log tail reader. Nil means logtail.Tail.
	Tail TailFunc
}

// Reader builds the two snapshot variants from a fresh manager listing.
// Instrumentation-module entries are filtered out of both.
type Reader struct {
	mgr       manager.Manager
	tailLines int
	tail      TailFunc
}

// NewReader creates a snapshot reader.
func NewReader(cfg Config) *Reader {
	tailLines := cfg.TailLines
	if tailLines <= 0 {
		tailLines = logtail.DefaultLines
	}
	tail := cfg.Tail
	if tail == nil {
		tail = logtail.Tail
	}
	return &Reader{
		mgr:       cfg.Manager,
		tailLines: tailLines,
		tail:      tail,
	}
}

// BuildFull queries the manager and builds the full snapshot, loading
// each process's log tail concurrently. The result preserves the
// manager's listing order regardless of tail completion order.
//
// A listing failure fails the whole snapshot — that is systemic, there
// is nothing to show. A single process's log-read failure is isolated:
// that process gets a placeholder logs string and the cycle still
// completes for everyone else.
func (r *Reader) BuildFull(ctx context.Context) ([]View, error) {
	entries, err := r.mgr.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	entries = filterModules(entries)

	views := make([]View, len(entries))
	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		go func(i int, e manager.ProcessEntry) {
			defer wg.Done()
			logs, err := r.tail(e.OutLogPath, r.tailLines)
			if err != nil {
				slog.Warn("log tail unavailable",
					"process", e.Name,
					"id", e.ID,
					"path", e.OutLogPath,
					"err", err,
				)
				logs = fmt.Sprintf("[logs unavailable: %v]", err)
			}
			views[i] = fullView(e, logs)
		}(i, e)
	}
	wg.Wait()

	return views, nil
}

// BuildState builds the lightweight snapshot straight from the listing.
// No file I/O, so no per-process failure mode.
func (r *Reader) BuildState(ctx context.Context) ([]StateView, error) {
	entries, err := r.mgr.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	entries = filterModules(entries)

	views := make([]StateView, len(entries))
	for i, e := range entries {
		views[i] = stateView(e)
	}
	return views, nil
}

// filterModules drops instrumentation-module entries. They belong to
// the monitoring layer itself and must never reach clients.
func filterModules(entries []manager.ProcessEntry) []manager.ProcessEntry {
	filtered := entries[:0:0]
	for _, e := range entries {
		if e.IsModule {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}
