package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/yarri-oss/gnnpipe/internal/cli/output"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := getRenderer(cmd)
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(map[string]string{
					"version": version,
					"go":      runtime.Version(),
					"os":      runtime.GOOS,
					"arch":    runtime.GOARCH,
				})
			}
			r.Printf("gnnpipe %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
