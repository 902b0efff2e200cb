package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/yarri-oss/gnnpipe/internal/cli/output"
	"github.com/yarri-oss/gnnpipe/internal/stage"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List the pipeline stages and their dependencies",
		Aliases: []string{"stages", "ls"},
		RunE:    runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	r := getRenderer(cmd)

	stages := stage.All()

	if r.EffectiveMode() == output.ModeJSON {
		type item struct {
			Stage    string   `json:"stage"`
			Tool     string   `json:"tool"`
			Upstream []string `json:"upstream,omitempty"`
			Pipeline bool     `json:"pipeline"`
			Short    string   `json:"description"`
		}
		items := make([]item, 0, len(stages))
		for _, s := range stages {
			items = append(items, item{
				Stage:    s.Name,
				Tool:     s.Tool,
				Upstream: s.Upstream,
				Pipeline: s.Pipeline,
				Short:    s.Short,
			})
		}
		return r.JSON(items)
	}

	rows := make([][]string, 0, len(stages))
	for _, s := range stages {
		pipeline := "yes"
		if !s.Pipeline {
			pipeline = "no"
		}
		rows = append(rows, []string{
			s.Name,
			s.Tool,
			strings.Join(s.Upstream, ", "),
			pipeline,
			s.Short,
		})
	}
	r.Table([]string{"Stage", "Tool", "After", "Pipeline", "Description"}, rows)
	return nil
}
