package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/yarri-oss/gnnpipe/internal/cli/output"
)

// NewPlanCommand creates the plan command.
func NewPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show every stage's tool invocation without running anything",
		Long: `Display the command line each stage would dispatch, its upstream
stages, and whether its preconditions currently hold.`,
		Example: `  # Inspect the assembled invocations
  gnnpipe plan

  # Machine-readable plan
  gnnpipe plan -o json`,
		RunE: runPlan,
	}
}

func runPlan(cmd *cobra.Command, _ []string) error {
	r := getRenderer(cmd)

	eng, cleanup, err := newEngine(cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	items, err := eng.Plan()
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(items)
	}

	styles := r.Styles()
	for _, item := range items {
		header := item.Stage
		if len(item.Upstream) > 0 {
			header += " (after " + strings.Join(item.Upstream, ", ") + ")"
		}
		r.Println(styles.Header2.Render(header))
		r.Println("  " + item.Command)
		if item.Blocked != "" {
			r.Println("  " + styles.Warning.Render("blocked: ") + firstLine(item.Blocked))
		} else {
			r.Println("  " + styles.Success.Render("ready"))
		}
		r.Println("")
	}
	return nil
}

// firstLine trims multi-line precondition messages for one-line display.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
