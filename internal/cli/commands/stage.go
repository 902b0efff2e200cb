package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yarri-oss/gnnpipe/internal/stage"
	"github.com/yarri-oss/gnnpipe/internal/toolchain"
)

// newStageCommand builds a subcommand that runs one pipeline stage.
func newStageCommand(name, example string) *cobra.Command {
	var dryRun bool

	s, err := stage.Get(name)
	if err != nil {
		panic(err) // stage names are compile-time constants
	}

	cmd := &cobra.Command{
		Use:     name,
		Short:   s.Short,
		Long:    s.Short + ".\n\nDispatches " + s.Tool + " after validating upstream artifacts.",
		Example: example,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStage(cmd, name, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the tool invocation without dispatching")
	return cmd
}

func runStage(cmd *cobra.Command, name string, dryRun bool) error {
	cfg := getConfig(cmd.Context())
	r := getRenderer(cmd)

	s, err := stage.Get(name)
	if err != nil {
		return err
	}

	if dryRun {
		args := s.Args(cfg.Layout(), stage.Params{FileFormat: cfg.FileFormat})
		r.Println(toolchain.CommandLine(s.Tool, args))
		return nil
	}

	eng, cleanup, err := newEngine(cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()

	started := time.Now()
	result, err := eng.RunStage(cmd.Context(), name)
	if err != nil {
		return err
	}

	elapsed := time.Since(started).Round(time.Millisecond)
	r.Success(fmt.Sprintf("%s completed in %s (run %s)", name, elapsed, result.RunID))
	return nil
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	return newStageCommand(stage.Convert, `  # Convert the default dataset
  gnnpipe convert

  # Convert another dataset under a different root
  gnnpipe convert --dataset ogbn-mag --data-root /srv/data/ogbn-mag

  # Show the tool invocation without running it
  gnnpipe convert --dry-run`)
}

// NewSampleCommand creates the sample command.
func NewSampleCommand() *cobra.Command {
	return newStageCommand(stage.Sample, `  # Sample neighborhoods into 20 training shards
  gnnpipe sample

  # Use a different shard count
  gnnpipe sample --shards 40`)
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	return newStageCommand(stage.Stats, `  # Compute statistics over the training shards
  gnnpipe stats`)
}

// NewPrintCommand creates the print command.
func NewPrintCommand() *cobra.Command {
	return newStageCommand(stage.Print, `  # Print sampled training records
  gnnpipe print`)
}
