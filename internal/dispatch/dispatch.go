package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/procdash/procdash/internal/logtail"
	"github.com/procdash/procdash/internal/manager"
)

// Syncer is asked for an immediate full snapshot sync after a mutation,
// so clients see the command's effect without waiting for the next tick.
type Syncer interface {
	RequestFullSync()
}

// TruncateFunc truncates a log file to zero length.
type TruncateFunc func(path string) error

// Config configures a Dispatcher.
type Config struct {
	Manager manager.Manager
	Syncer  Syncer

	// Truncate overrides log truncation. Nil means logtail.Truncate.
	Truncate TruncateFunc
}

// Dispatcher routes validated commands to process-manager operations.
//
// Success/failure signaling is asymmetric by design: a successful
// mutation triggers an immediate resync broadcast, a failed one is only
// logged — clients keep the last-known state until the next periodic
// tick. There is no error channel back to the issuing client.
type Dispatcher struct {
	mgr      manager.Manager
	syncer   Syncer
	truncate TruncateFunc
}

// New creates a dispatcher.
func New(cfg Config) *Dispatcher {
	truncate := cfg.Truncate
	if truncate == nil {
		truncate = logtail.Truncate
	}
	return &Dispatcher{
		mgr:      cfg.Manager,
		syncer:   cfg.Syncer,
		truncate: truncate,
	}
}

// Handle executes one inbound command. It never returns an error:
// every failure mode is logged and absorbed here.
func (d *Dispatcher) Handle(ctx context.Context, cmd Command) {
	switch cmd.Kind {
	case KindStart:
		d.single(ctx, cmd.Kind, d.mgr.Start, cmd.ID)
	case KindStop:
		d.single(ctx, cmd.Kind, d.mgr.Stop, cmd.ID)
	case KindRestart:
		d.single(ctx, cmd.Kind, d.mgr.Restart, cmd.ID)
	case KindReset:
		d.single(ctx, cmd.Kind, d.mgr.Reset, cmd.ID)
	case KindClear:
		d.clearLogs(ctx, cmd.ID)
	case KindStartAll:
		d.bulk(ctx, cmd.Kind, d.mgr.Start)
	case KindStopAll:
		d.bulk(ctx, cmd.Kind, d.mgr.Stop)
	case KindRestartAll:
		d.bulk(ctx, cmd.Kind, d.mgr.Restart)
	case KindResetAll:
		d.bulk(ctx, cmd.Kind, d.mgr.Reset)
	default:
		// ParseCommand filters unknown kinds; anything that still lands
		// here is ignored the same way.
		slog.Debug("ignoring unknown command", "kind", cmd.Kind)
	}
}

type mutation func(ctx context.Context, id int) error

// single applies one mutation to one process. Success triggers an
// immediate resync; failure is logged with the target and no broadcast
// happens.
func (d *Dispatcher) single(ctx context.Context, kind Kind, op mutation, id int) {
	if err := op(ctx, id); err != nil {
		slog.Error("process command failed", "command", kind, "id", id, "err", err)
		return
	}
	slog.Info("process command applied", "command", kind, "id", id)
	d.syncer.RequestFullSync()
}

// bulk applies a mutation to every non-module process concurrently.
// Each sub-operation's outcome is logged individually; the resync is
// requested once, after all of them have finished, so the broadcast
// reflects every completed mutation.
func (d *Dispatcher) bulk(ctx context.Context, kind Kind, op mutation) {
	entries, err := d.mgr.List(ctx)
	if err != nil {
		slog.Error("bulk command: listing processes failed", "command", kind, "err", err)
		return
	}

	var wg sync.WaitGroup
	for _, e := range entries {
		if e.IsModule {
			continue
		}
		wg.Add(1)
		go func(e manager.ProcessEntry) {
			defer wg.Done()
			if err := op(ctx, e.ID); err != nil {
				slog.Error("bulk command failed for process",
					"command", kind,
					"id", e.ID,
					"name", e.Name,
					"err", err,
				)
				return
			}
			slog.Info("bulk command applied to process", "command", kind, "id", e.ID, "name", e.Name)
		}(e)
	}
	wg.Wait()

	d.syncer.RequestFullSync()
}

// clearLogs truncates a process's stdout and stderr logs. The two files
// are attempted independently — one failing doesn't block the other —
// and the resync runs regardless, so clients see whatever was cleared.
func (d *Dispatcher) clearLogs(ctx context.Context, id int) {
	entries, err := d.mgr.Describe(ctx, id)
	if err != nil {
		slog.Error("clear-logs: describe failed", "id", id, "err", err)
		return
	}
	if len(entries) == 0 {
		slog.Error("clear-logs: no such process", "id", id)
		return
	}

	// Cluster instances share log paths; the first entry carries them.
	e := entries[0]
	for _, path := range []string{e.OutLogPath, e.ErrLogPath} {
		if path == "" {
			continue
		}
		if err := d.truncate(path); err != nil {
			slog.Warn("clear-logs: truncate failed", "id", id, "path", path, "err", err)
			continue
		}
		slog.Info("cleared log", "id", id, "path", path)
	}

	d.syncer.RequestFullSync()
}
