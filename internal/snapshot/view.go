// Package snapshot derives dashboard views from process-manager state.
//
// Views are ephemeral: every sync cycle rebuilds the full list from a
// fresh manager listing, so there is no cross-cycle state to reconcile.
package snapshot

import (
	"fmt"

	"github.com/procdash/procdash/internal/manager"
)

// View is one process as shown on the dashboard, including the tailed
// log output. Field names match the wire format expected by clients.
type View struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Status  string  `json:"status"`
	Restart int     `json:"restart"`
	Uptime  int64   `json:"uptime"`
	CPU     float64 `json:"cpu"`
	Memory  string  `json:"memory"`
	Type    string  `json:"type"`
	Logs    string  `json:"logs"`
}

// StateView is the lightweight variant broadcast at high frequency.
// Same shape as View minus uptime and logs.
type StateView struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Status  string  `json:"status"`
	Restart int     `json:"restart"`
	CPU     float64 `json:"cpu"`
	Memory  string  `json:"memory"`
	Type    string  `json:"type"`
}

// DisplayName derives the dashboard name for an entry. Cluster
// instances of one logical app all share a name, so the instance index
// is appended to disambiguate: {name}-{instance}. Fork-mode processes
// and cluster entries without a reported index keep the plain name.
func DisplayName(e manager.ProcessEntry) string {
	if !isClusterMode(e.ExecMode) || e.Instance == nil {
		return e.Name
	}
	return fmt.Sprintf("%s-%d", e.Name, *e.Instance)
}

func isClusterMode(mode string) bool {
	return mode == "cluster_mode" || mode == "cluster"
}

// FormatMemory renders resident memory bytes as "12.34 MB".
func FormatMemory(bytes uint64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/1024/1024)
}

func fullView(e manager.ProcessEntry, logs string) View {
	return View{
		ID:      e.ID,
		Name:    DisplayName(e),
		Status:  e.Status,
		Restart: e.RestartCount,
		Uptime:  e.UptimeStart,
		CPU:     e.CPUPercent,
		Memory:  FormatMemory(e.MemoryBytes),
		Type:    e.ExecMode,
		Logs:    logs,
	}
}

func stateView(e manager.ProcessEntry) StateView {
	return StateView{
		ID:      e.ID,
		Name:    DisplayName(e),
		Status:  e.Status,
		Restart: e.RestartCount,
		CPU:     e.CPUPercent,
		Memory:  FormatMemory(e.MemoryBytes),
		Type:    e.ExecMode,
	}
}
