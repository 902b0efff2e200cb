package stage

import (
	"fmt"

	"github.com/yarri-oss/gnnpipe/internal/layout"
)

// All returns every stage in declaration order (convert, sample, stats,
// print). The slice is rebuilt on each call so callers may not mutate shared
// state.
func All() []*Stage {
	return []*Stage{
		convertStage(),
		sampleStage(),
		statsStage(),
		printStage(),
	}
}

// Get looks a stage up by name.
func Get(name string) (*Stage, error) {
	for _, s := range All() {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown stage: %q", name)
}

// Names returns the stage names in declaration order.
func Names() []string {
	stages := All()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}
	return names
}

func convertStage() *Stage {
	return &Stage{
		Name:     Convert,
		Short:    "Convert the raw OGB dataset into a schema-described graph",
		Tool:     ConvertTool,
		Pipeline: true,
		Args: func(l *layout.Layout, _ Params) []string {
			return []string{
				"--dataset=" + l.Dataset,
				"--ogb_datasets_dir=" + l.DownloadDir(),
				"--output=" + l.GraphDir(),
			}
		},
		Check: func(l *layout.Layout) error {
			if err := layout.CheckDir(l.DownloadDir(), "download the dataset into "+l.DownloadDir()); err != nil {
				return &PreconditionError{Stage: Convert, Err: err}
			}
			return nil
		},
		Produces: func(l *layout.Layout) []string {
			return []string{l.GraphDir(), l.SchemaPath()}
		},
	}
}

func sampleStage() *Stage {
	return &Stage{
		Name:     Sample,
		Short:    "Sample bounded neighborhoods around seed nodes for training",
		Tool:     SampleTool,
		Upstream: []string{Convert},
		Pipeline: true,
		Args: func(l *layout.Layout, _ Params) []string {
			return []string{
				"--graph_schema=" + l.SchemaPath(),
				"--sampling_spec=" + l.SamplingSpecPath(),
				"--output_samples=" + l.TrainingShardedPath(),
			}
		},
		Check: func(l *layout.Layout) error {
			if err := layout.CheckFile(l.SchemaPath(), "run convert first"); err != nil {
				return &PreconditionError{Stage: Sample, RunFirst: Convert, Err: err}
			}
			if err := layout.CheckFile(l.SamplingSpecPath(), "place a sampling spec in the dataset root or set source_dir"); err != nil {
				return &PreconditionError{Stage: Sample, Err: err}
			}
			return nil
		},
		Produces: func(l *layout.Layout) []string {
			return []string{l.TrainingShardedPath()}
		},
	}
}

func statsStage() *Stage {
	return &Stage{
		Name:     Stats,
		Short:    "Aggregate statistics over the sampled training shards",
		Tool:     StatsTool,
		Upstream: []string{Sample},
		Pipeline: true,
		Args: func(l *layout.Layout, p Params) []string {
			return []string{
				"--graph_schema=" + l.SchemaPath(),
				"--input_pattern=" + l.TrainingShardGlob(),
				"--input_format=" + p.FileFormat,
				"--output=" + l.StatsPath(),
			}
		},
		Check:    checkShards(Stats),
		Produces: func(l *layout.Layout) []string { return []string{l.StatsPath()} },
	}
}

func printStage() *Stage {
	return &Stage{
		Name:     Print,
		Short:    "Print sampled training records for inspection",
		Tool:     PrintTool,
		Upstream: []string{Sample},
		Args: func(l *layout.Layout, p Params) []string {
			return []string{
				"--graph_schema=" + l.SchemaPath(),
				"--examples=" + l.TrainingShardGlob(),
				"--file_format=" + p.FileFormat,
			}
		},
		Check:    checkShards(Print),
		Produces: func(*layout.Layout) []string { return nil },
	}
}

// checkShards verifies the graph schema and the full shard set exist.
func checkShards(name string) func(l *layout.Layout) error {
	return func(l *layout.Layout) error {
		if err := layout.CheckFile(l.SchemaPath(), "run convert first"); err != nil {
			return &PreconditionError{Stage: name, RunFirst: Convert, Err: err}
		}
		n, err := l.CountShards()
		if err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
		if n != l.Shards {
			return &PreconditionError{
				Stage:    name,
				RunFirst: Sample,
				Err:      fmt.Errorf("found %d of %d training shards matching %s", n, l.Shards, l.TrainingShardGlob()),
			}
		}
		return nil
	}
}
