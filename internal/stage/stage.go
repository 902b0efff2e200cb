// Package stage declares the pipeline stages of the sampling toolchain and
// the command line each one dispatches. Argument assembly is pure: the same
// layout and parameters always produce the same argv.
package stage

import (
	"fmt"

	"github.com/yarri-oss/gnnpipe/internal/layout"
)

// Stage names. These are also the CLI subcommand names.
const (
	Convert = "convert"
	Sample  = "sample"
	Stats   = "stats"
	Print   = "print"
)

// Tool binary names of the external toolchain.
const (
	ConvertTool = "tfgnn_convert_ogb_dataset"
	SampleTool  = "tfgnn_graph_sampler"
	StatsTool   = "tfgnn_sampled_stats"
	PrintTool   = "tfgnn_print_training_data"
)

// Params holds the per-invocation knobs that are not part of the layout.
type Params struct {
	// FileFormat is the record format identifier passed to stats and print.
	FileFormat string
}

// Stage describes one pipeline stage.
type Stage struct {
	// Name identifies the stage and its CLI subcommand.
	Name string
	// Short is a one-line description.
	Short string
	// Tool is the external binary the stage dispatches to.
	Tool string
	// Upstream names the stages whose outputs this stage consumes.
	Upstream []string
	// Pipeline marks stages that belong to the default `run` sequence.
	// Inspection-only stages are invoked explicitly.
	Pipeline bool

	// Args assembles the tool's argument list.
	Args func(l *layout.Layout, p Params) []string
	// Check validates that the stage's upstream artifacts exist.
	Check func(l *layout.Layout) error
	// Produces lists the paths the stage writes, for plan output.
	Produces func(l *layout.Layout) []string
}

// PreconditionError reports a missing upstream artifact. It names the stage
// the operator should run first so the failure never surfaces as an opaque
// tool error.
type PreconditionError struct {
	Stage    string
	RunFirst string
	Err      error
}

func (e *PreconditionError) Error() string {
	if e.RunFirst != "" {
		return fmt.Sprintf("stage %s: missing upstream artifact (run %q first): %v", e.Stage, e.RunFirst, e.Err)
	}
	return fmt.Sprintf("stage %s: missing upstream artifact: %v", e.Stage, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }
