package manager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/procdash/procdash/internal/exitcode"
)

// DefaultCallTimeout bounds every pm2 invocation so a hung daemon can't
// stall a sync cycle indefinitely.
const DefaultCallTimeout = 10 * time.Second

// PM2Config configures a PM2 CLI client.
type PM2Config struct {
	// Bin is the pm2 binary to invoke. Empty means "pm2" from PATH.
	Bin string

	// CallTimeout bounds each pm2 invocation (default DefaultCallTimeout).
	CallTimeout time.Duration
}

// PM2 is a Manager backed by the pm2 command-line client. Listing uses
// `pm2 jlist`, which emits the full process table as JSON; mutations use
// the plain lifecycle subcommands addressed by numeric id.
type PM2 struct {
	bin     string
	timeout time.Duration
}

// NewPM2 creates a PM2 CLI client.
func NewPM2(cfg PM2Config) *PM2 {
	bin := cfg.Bin
	if bin == "" {
		bin = "pm2"
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &PM2{bin: bin, timeout: timeout}
}

// Ping verifies the pm2 daemon is reachable. Used once at startup;
// failure is fatal for the server.
func (p *PM2) Ping(ctx context.Context) error {
	if _, err := p.run(ctx, "ping"); err != nil {
		return exitcode.ManagerUnavailable(err)
	}
	return nil
}

// List enumerates all managed processes via `pm2 jlist`.
func (p *PM2) List(ctx context.Context) ([]ProcessEntry, error) {
	out, err := p.run(ctx, "jlist")
	if err != nil {
		return nil, err
	}
	entries, err := parseProcessList(out)
	if err != nil {
		return nil, fmt.Errorf("parsing pm2 process list: %w", err)
	}
	return entries, nil
}

// Start starts a stopped process.
func (p *PM2) Start(ctx context.Context, id int) error {
	_, err := p.run(ctx, "start", strconv.Itoa(id))
	return err
}

// Stop stops a running process.
func (p *PM2) Stop(ctx context.Context, id int) error {
	_, err := p.run(ctx, "stop", strconv.Itoa(id))
	return err
}

// Restart restarts a process.
func (p *PM2) Restart(ctx context.Context, id int) error {
	_, err := p.run(ctx, "restart", strconv.Itoa(id))
	return err
}

// Reset clears a process's restart counter.
func (p *PM2) Reset(ctx context.Context, id int) error {
	_, err := p.run(ctx, "reset", strconv.Itoa(id))
	return err
}

// Describe returns the listing entries for one process id. pm2's own
// describe output is human-oriented, so this filters jlist instead —
// the fields are identical.
func (p *PM2) Describe(ctx context.Context, id int) ([]ProcessEntry, error) {
	entries, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	var matched []ProcessEntry
	for _, e := range entries {
		if e.ID == id {
			matched = append(matched, e)
		}
	}
	if len(matched) == 0 {
		return nil, exitcode.ProcessNotFound(id)
	}
	return matched, nil
}

// run invokes pm2 with a bounded timeout, returning stdout. stderr is
// folded into the error for diagnostics.
func (p *PM2) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// #nosec G204 -- pm2 binary comes from trusted config, args are
	// subcommand names and numeric ids.
	cmd := exec.CommandContext(ctx, p.bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", p.bin, strings.Join(args, " "), err, detail)
		}
		return nil, fmt.Errorf("%s %s: %w", p.bin, strings.Join(args, " "), err)
	}
	return stdout.Bytes(), nil
}

// pm2Process mirrors the subset of `pm2 jlist` output the dashboard
// reads. pm2 nests most runtime metadata under pm2_env.
type pm2Process struct {
	PMID  int    `json:"pm_id"`
	Name  string `json:"name"`
	Monit struct {
		Memory uint64  `json:"memory"`
		CPU    float64 `json:"cpu"`
	} `json:"monit"`
	Env struct {
		ExecMode    string `json:"exec_mode"`
		Status      string `json:"status"`
		RestartTime int    `json:"restart_time"`
		PMUptime    int64  `json:"pm_uptime"`
		OutLogPath  string `json:"pm_out_log_path"`
		ErrLogPath  string `json:"pm_err_log_path"`
		Instance    *int   `json:"NODE_APP_INSTANCE"`
		AxmOptions  struct {
			IsModule bool `json:"isModule"`
		} `json:"axm_options"`
	} `json:"pm2_env"`
}

// parseProcessList decodes jlist JSON into ProcessEntry values.
func parseProcessList(data []byte) ([]ProcessEntry, error) {
	var raw []pm2Process
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	entries := make([]ProcessEntry, 0, len(raw))
	for _, r := range raw {
		entries = append(entries, ProcessEntry{
			ID:           r.PMID,
			Name:         r.Name,
			ExecMode:     r.Env.ExecMode,
			Instance:     r.Env.Instance,
			Status:       r.Env.Status,
			RestartCount: r.Env.RestartTime,
			UptimeStart:  r.Env.PMUptime,
			CPUPercent:   r.Monit.CPU,
			MemoryBytes:  r.Monit.Memory,
			OutLogPath:   r.Env.OutLogPath,
			ErrLogPath:   r.Env.ErrLogPath,
			IsModule:     r.Env.AxmOptions.IsModule,
		})
	}
	return entries, nil
}
