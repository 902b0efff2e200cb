package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Force bool
	Dirs  bool
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a gnnpipe.yaml seeded with the current configuration",
		Long: `Write gnnpipe.yaml in the working directory, seeded with the
resolved configuration so flags and environment overrides become the
file's defaults. With --dirs the dataset directory skeleton is created
too.`,
		Example: `  # Scaffold a config for a different dataset
  gnnpipe init --dataset ogbn-products

  # Also create the data root skeleton
  gnnpipe init --dirs`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Overwrite an existing gnnpipe.yaml")
	cmd.Flags().BoolVar(&opts.Dirs, "dirs", false, "Create the dataset directory skeleton")

	return cmd
}

func runInit(cmd *cobra.Command, opts *InitOptions) error {
	cfg := getConfig(cmd.Context())
	r := getRenderer(cmd)

	path := "gnnpipe.yaml"
	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	doc := map[string]interface{}{
		"dataset":     cfg.Dataset,
		"data_root":   cfg.DataRoot,
		"shards":      cfg.Shards,
		"file_format": cfg.FileFormat,
	}
	if cfg.Prefix != "" {
		doc["prefix"] = cfg.Prefix
	}
	if cfg.SourceDir != "" {
		doc["source_dir"] = cfg.SourceDir
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	header := []byte("# gnnpipe configuration. Flags and GNNPIPE_* env vars override these.\n")
	if err := os.WriteFile(path, append(header, data...), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	r.Success("wrote " + path)

	if opts.Dirs {
		l := cfg.Layout()
		for _, dir := range []string{l.DownloadDir(), l.GraphDir(), l.TrainingDir(), l.StateDir()} {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
			r.Success("created " + dir)
		}
	}

	r.Println("")
	r.Println("Next: gnnpipe plan")
	return nil
}
