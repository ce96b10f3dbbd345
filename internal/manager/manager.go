// Package manager talks to the PM2 process manager.
//
// The dashboard treats the manager as an external collaborator: it only
// needs a status listing plus the lifecycle mutations (start, stop,
// restart, reset) and a per-process describe for log paths. Everything
// is keyed by PM2's numeric process id.
package manager

import "context"

// ProcessEntry is one raw listing entry as reported by the process
// manager. The dashboard never mutates entries; it derives views from
// them each sync cycle.
type ProcessEntry struct {
	// ID is the manager's numeric process id, the stable identity key
	// for all commands.
	ID int

	// Name is the logical app name. Cluster instances share a name.
	Name string

	// ExecMode is the manager's execution mode string, e.g. "fork_mode"
	// or "cluster_mode". Passed through opaquely.
	ExecMode string

	// Instance is the per-instance index for cluster mode. Nil when the
	// manager doesn't report one.
	Instance *int

	// Status is the lifecycle status string (online, stopped, errored,
	// launching, ...). Treated opaquely.
	Status string

	// RestartCount is the manager's restart counter.
	RestartCount int

	// UptimeStart is the process start time in milliseconds since epoch.
	UptimeStart int64

	// CPUPercent and MemoryBytes are the latest resource readings.
	CPUPercent  float64
	MemoryBytes uint64

	// OutLogPath and ErrLogPath are the flat files holding the process's
	// stdout and stderr.
	OutLogPath string
	ErrLogPath string

	// IsModule marks instrumentation entries that belong to the
	// monitoring layer itself. They must never appear on the dashboard
	// and never receive bulk commands.
	IsModule bool
}

// Manager is the subset of process-manager operations the dashboard
// depends on. Each call either resolves or fails with an opaque error.
type Manager interface {
	// List enumerates all managed processes with runtime metadata.
	List(ctx context.Context) ([]ProcessEntry, error)

	// Start, Stop, Restart and Reset apply the corresponding lifecycle
	// operation to one process. Reset clears the restart counter.
	Start(ctx context.Context, id int) error
	Stop(ctx context.Context, id int) error
	Restart(ctx context.Context, id int) error
	Reset(ctx context.Context, id int) error

	// Describe returns the listing entries for a single process id.
	// Cluster apps may return several entries; the dashboard only needs
	// the log paths, which are shared.
	Describe(ctx context.Context, id int) ([]ProcessEntry, error)
}
