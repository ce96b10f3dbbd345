package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/procdash/procdash/internal/config"
	"github.com/procdash/procdash/internal/exitcode"
	"github.com/procdash/procdash/internal/manager"
	"github.com/procdash/procdash/internal/snapshot"
)

var (
	statusConfig string
	statusJSON   bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a one-shot snapshot of managed processes",
	Long: `Print the current state of all managed processes, the same view the
dashboard's state broadcast carries (no logs). Instrumentation modules
are hidden, matching the dashboard.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusConfig, "config", "", "Path to TOML config file")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(statusConfig)
	if err != nil {
		return exitcode.Wrap(exitcode.ErrUsage, "loading config", err)
	}

	mgr := manager.NewPM2(manager.PM2Config{
		Bin:         cfg.PM2.Bin,
		CallTimeout: cfg.CallTimeout(),
	})
	reader := snapshot.NewReader(snapshot.Config{Manager: mgr})

	views, err := reader.BuildState(cmd.Context())
	if err != nil {
		return exitcode.ManagerUnavailable(err)
	}

	if statusJSON {
		return json.NewEncoder(os.Stdout).Encode(views)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tRESTARTS\tCPU\tMEMORY\tTYPE")
	for _, v := range views {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.1f%%\t%s\t%s\n",
			v.ID, v.Name, v.Status, v.Restart, v.CPU, v.Memory, v.Type)
	}
	return w.Flush()
}
