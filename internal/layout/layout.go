// Package layout defines the on-disk dataset layout the sampling toolchain
// operates on. All paths are derived deterministically from the dataset
// identifier, the data root, and the shard count; nothing here touches the
// filesystem except the existence checks.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

// Default layout values.
const (
	DefaultDataRoot   = "/tmp/data"
	SchemaFileName    = "schema.pbtxt"
	SamplingSpecName  = "sampling_spec.pbtxt"
	StatsFileName     = "stats.pbtxt"
	TrainingShardBase = "data"
)

// Layout resolves the directories and files of a single dataset.
type Layout struct {
	// Dataset is the dataset identifier, e.g. "ogbn-arxiv".
	Dataset string
	// Root is the dataset root directory, e.g. "/tmp/data/ogbn-arxiv".
	Root string
	// SourceDir is the toolchain source checkout, used to locate the
	// bundled sampling spec when the dataset root does not carry one.
	SourceDir string
	// Shards is the number of training shards the sampler writes.
	Shards int
}

// New builds a layout for the dataset. An empty root defaults to
// DefaultDataRoot/<dataset>.
func New(dataset, root, sourceDir string, shards int) *Layout {
	if root == "" {
		root = filepath.Join(DefaultDataRoot, dataset)
	}
	return &Layout{
		Dataset:   dataset,
		Root:      root,
		SourceDir: sourceDir,
		Shards:    shards,
	}
}

// DownloadDir is where the raw dataset download lives (convert input).
func (l *Layout) DownloadDir() string {
	return filepath.Join(l.Root, "download")
}

// GraphDir is the converted graph directory (convert output).
func (l *Layout) GraphDir() string {
	return filepath.Join(l.Root, "graph")
}

// SchemaPath is the graph schema file inside the graph directory.
func (l *Layout) SchemaPath() string {
	return filepath.Join(l.GraphDir(), SchemaFileName)
}

// SamplingSpecPath locates the sampling spec. A spec placed in the dataset
// root wins; otherwise the copy shipped with the toolchain source is used.
func (l *Layout) SamplingSpecPath() string {
	local := filepath.Join(l.Root, SamplingSpecName)
	if _, err := os.Stat(local); err == nil {
		return local
	}
	if l.SourceDir != "" {
		return filepath.Join(l.SourceDir, "examples", "sampler", l.Dataset, SamplingSpecName)
	}
	return local
}

// TrainingDir holds the sampled training shards.
func (l *Layout) TrainingDir() string {
	return filepath.Join(l.Root, "training")
}

// TrainingShardedPath is the sharded output spec the sampler consumes,
// e.g. ".../training/data@20".
func (l *Layout) TrainingShardedPath() string {
	return filepath.Join(l.TrainingDir(), ShardedName(TrainingShardBase, l.Shards))
}

// TrainingShardGlob is the glob matching every training shard,
// e.g. ".../training/data-?????-of-00020".
func (l *Layout) TrainingShardGlob() string {
	return filepath.Join(l.TrainingDir(), ShardGlob(TrainingShardBase, l.Shards))
}

// TrainingShardPath returns the path of shard i.
func (l *Layout) TrainingShardPath(i int) string {
	return filepath.Join(l.TrainingDir(), ShardFile(TrainingShardBase, i, l.Shards))
}

// StatsPath is the statistics output file.
func (l *Layout) StatsPath() string {
	return filepath.Join(l.Root, StatsFileName)
}

// StateDir holds gnnpipe's own state (run history database).
func (l *Layout) StateDir() string {
	return filepath.Join(l.Root, ".gnnpipe")
}

// CheckDir reports a descriptive error when dir is missing or not a directory.
func CheckDir(dir, hint string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s\nHint: %s", dir, hint)
	}
	if err != nil {
		return fmt.Errorf("cannot stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}
	return nil
}

// CheckFile reports a descriptive error when path is missing or a directory.
func CheckFile(path, hint string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s\nHint: %s", path, hint)
	}
	if err != nil {
		return fmt.Errorf("cannot stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("expected a file, found a directory: %s", path)
	}
	return nil
}

// CountShards returns how many of the layout's training shards exist on disk.
func (l *Layout) CountShards() (int, error) {
	matches, err := filepath.Glob(l.TrainingShardGlob())
	if err != nil {
		return 0, fmt.Errorf("bad shard glob: %w", err)
	}
	return len(matches), nil
}
