// Package config provides configuration management for the gnnpipe CLI.
//
// Precedence (highest to lowest): flags > env vars > config file > defaults.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Prefix is the toolchain installation prefix (binaries under bin/).
	// Empty means the tools are resolved on PATH.
	Prefix string `koanf:"prefix"`
	// SourceDir is the toolchain source checkout, used to find bundled
	// sampling specs.
	SourceDir string `koanf:"source_dir"`
	// Dataset is the dataset identifier.
	Dataset string `koanf:"dataset"`
	// DataRoot is the dataset root directory. Empty derives
	// <default data dir>/<dataset>.
	DataRoot string `koanf:"data_root"`
	// Shards is the number of training shards the sampler writes.
	Shards int `koanf:"shards"`
	// FileFormat is the record format identifier for stats and print.
	FileFormat string `koanf:"file_format"`
	// StatePath is the run-history database path. Empty derives
	// <data_root>/.gnnpipe/state.db.
	StatePath string `koanf:"state_path"`

	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
}

// Default configuration values.
const (
	DefaultDataset    = "ogbn-arxiv"
	DefaultShards     = 20
	DefaultFileFormat = "tfrecord"
	DefaultOutput     = "auto" // auto-detect: TTY=text, non-TTY=markdown
)

// ConfigFileNames are the file names searched for in the working directory.
var ConfigFileNames = []string{"gnnpipe.yaml", "gnnpipe.yml"}
