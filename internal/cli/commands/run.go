package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yarri-oss/gnnpipe/internal/engine"
	"github.com/yarri-oss/gnnpipe/internal/state"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	From string
	Only string
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline stages in dependency order",
		Long: `Execute the pipeline (convert, sample, stats) in dependency order.

Each stage's preconditions are checked before its tool is dispatched, and
the first failure aborts the run. The print stage is inspection-only and
never part of a pipeline run.`,
		Example: `  # Run the full pipeline
  gnnpipe run

  # Resume from sampling, keeping the converted graph
  gnnpipe run --from sample

  # Re-run a single stage
  gnnpipe run --only stats`,
		Aliases: []string{"build"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "Skip stages upstream of this one")
	cmd.Flags().StringVar(&opts.Only, "only", "", "Run exactly this stage")
	cmd.MarkFlagsMutuallyExclusive("from", "only")
	stageNames := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"convert", "sample", "stats"}, cobra.ShellCompDirectiveNoFileComp
	}
	_ = cmd.RegisterFlagCompletionFunc("from", stageNames)
	_ = cmd.RegisterFlagCompletionFunc("only", stageNames)

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	cfg := getConfig(cmd.Context())
	r := getRenderer(cmd)

	eng, cleanup, err := newEngine(cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()

	r.Printf("Dataset %s at %s\n", cfg.Dataset, cfg.DataRoot)
	started := time.Now()

	result, runErr := eng.Run(cmd.Context(), engine.RunOptions{
		From: opts.From,
		Only: opts.Only,
		Progress: func(name string, status state.StageStatus) {
			switch status {
			case state.StageStatusSuccess:
				r.Success(name)
			case state.StageStatusSkipped:
				r.Printf("%s skipped\n", name)
			default:
				r.Error(name + " failed")
			}
		},
	})

	if result != nil {
		elapsed := time.Since(started).Round(time.Millisecond)
		r.Printf("Run %s: %s in %s\n", result.RunID, result.Status, elapsed)
	}
	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	return nil
}
