// Package commands implements the gnnpipe subcommands.
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yarri-oss/gnnpipe/internal/cli/config"
	"github.com/yarri-oss/gnnpipe/internal/cli/output"
	"github.com/yarri-oss/gnnpipe/internal/engine"
	"github.com/yarri-oss/gnnpipe/internal/stage"
	"github.com/yarri-oss/gnnpipe/internal/state"
	"github.com/yarri-oss/gnnpipe/internal/toolchain"
)

type configKey struct{}
type rendererKey struct{}

// WithConfig stores the loaded config in the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithRenderer stores the output renderer in the context.
func WithRenderer(ctx context.Context, r *output.Renderer) context.Context {
	return context.WithValue(ctx, rendererKey{}, r)
}

// getConfig retrieves the config from the command context.
func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		Dataset:      config.DefaultDataset,
		Shards:       config.DefaultShards,
		FileFormat:   config.DefaultFileFormat,
		OutputFormat: config.DefaultOutput,
	}
}

// getRenderer retrieves the renderer from the command context.
func getRenderer(cmd *cobra.Command) *output.Renderer {
	if r, ok := cmd.Context().Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeAuto)
}

// newEngine builds an engine from the command's configuration. The returned
// cleanup closes the state store.
func newEngine(cmd *cobra.Command, withStore bool) (*engine.Engine, func(), error) {
	cfg := getConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())

	var store state.Store
	cleanup := func() {}
	if withStore {
		stateDir := filepath.Dir(cfg.StatePath)
		if stateDir != "." && stateDir != "" {
			if err := os.MkdirAll(stateDir, 0750); err != nil {
				return nil, nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		s := state.NewSQLiteStore(logger)
		if err := s.Open(cfg.StatePath); err != nil {
			return nil, nil, err
		}
		store = s
		cleanup = func() { _ = s.Close() }
	}

	runner := toolchain.New(cfg.Prefix, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)

	eng, err := engine.New(engine.Config{
		Layout: cfg.Layout(),
		Params: stage.Params{FileFormat: cfg.FileFormat},
		Runner: runner,
		Store:  store,
		Logger: logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return eng, cleanup, nil
}
