package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yarri-oss/gnnpipe/internal/cli/config"
	"github.com/yarri-oss/gnnpipe/internal/cli/output"
	"github.com/yarri-oss/gnnpipe/internal/state"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Show recorded pipeline run history",
		Long: `List recent pipeline runs, newest first. With a run ID argument,
show the per-stage outcomes of that run.`,
		Example: `  # Recent runs
  gnnpipe runs

  # Stage outcomes of one run
  gnnpipe runs 5e6b1c9a-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "Maximum number of runs to list")

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions, args []string) error {
	cfg := getConfig(cmd.Context())
	r := getRenderer(cmd)

	store := state.NewSQLiteStore(config.GetLogger(cmd.Context()))
	if err := store.Open(cfg.StatePath); err != nil {
		return fmt.Errorf("failed to open run history at %s: %w", cfg.StatePath, err)
	}
	defer store.Close()

	if len(args) == 1 {
		return showStageRuns(r, store, args[0])
	}
	return showRuns(r, store, opts.Limit)
}

func showRuns(r *output.Renderer, store state.Store, limit int) error {
	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(runs)
	}
	if len(runs) == 0 {
		r.Println("No runs recorded yet. Start one with: gnnpipe run")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		elapsed := ""
		if run.CompletedAt != nil {
			elapsed = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			run.ID,
			run.Dataset,
			string(run.Status),
			run.StartedAt.Local().Format(time.RFC3339),
			elapsed,
		})
	}
	r.Table([]string{"Run", "Dataset", "Status", "Started", "Elapsed"}, rows)
	return nil
}

func showStageRuns(r *output.Renderer, store state.Store, runID string) error {
	stageRuns, err := store.GetStageRuns(runID)
	if err != nil {
		return err
	}
	if len(stageRuns) == 0 {
		return fmt.Errorf("no stages recorded for run %s", runID)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(stageRuns)
	}

	rows := make([][]string, 0, len(stageRuns))
	for _, sr := range stageRuns {
		rows = append(rows, []string{
			sr.Stage,
			sr.Tool,
			string(sr.Status),
			fmt.Sprintf("%d", sr.ExitCode),
			(time.Duration(sr.DurationMS) * time.Millisecond).String(),
			sr.Error,
		})
	}
	r.Table([]string{"Stage", "Tool", "Status", "Exit", "Duration", "Error"}, rows)
	return nil
}
