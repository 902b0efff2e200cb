package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yarri-oss/gnnpipe/internal/cli/output"
	"github.com/yarri-oss/gnnpipe/internal/stage"
	"github.com/yarri-oss/gnnpipe/internal/toolchain"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the toolchain and dataset layout",
		Long: `Verify that every stage's tool binary is resolvable, report which
pipeline artifacts are present on disk, and check the run-history
database location.`,
		RunE: runDoctor,
	}
}

type doctorCheck struct {
	Name   string `json:"check"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg := getConfig(cmd.Context())
	r := getRenderer(cmd)

	eng, cleanup, err := newEngine(cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	l := eng.Layout()
	runner := toolchain.New(cfg.Prefix, cmd.OutOrStdout(), cmd.ErrOrStderr(), nil)

	var checks []doctorCheck

	for _, s := range stage.All() {
		path, err := runner.Resolve(s.Tool)
		if err != nil {
			checks = append(checks, doctorCheck{s.Tool, false, err.Error()})
			continue
		}
		checks = append(checks, doctorCheck{s.Tool, true, path})
	}

	checks = append(checks, fileCheck("graph schema", l.SchemaPath()))
	checks = append(checks, fileCheck("sampling spec", l.SamplingSpecPath()))

	count, err := l.CountShards()
	switch {
	case err != nil:
		checks = append(checks, doctorCheck{"training shards", false, err.Error()})
	case count == l.Shards:
		checks = append(checks, doctorCheck{"training shards", true,
			fmt.Sprintf("%d of %d present", count, l.Shards)})
	default:
		checks = append(checks, doctorCheck{"training shards", false,
			fmt.Sprintf("%d of %d present", count, l.Shards)})
	}

	checks = append(checks, fileCheck("sampling stats", l.StatsPath()))
	checks = append(checks, fileCheck("run history", cfg.StatePath))

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(checks)
	}

	healthy := true
	for _, c := range checks {
		if c.OK {
			r.Success(c.Name + ": " + c.Detail)
			continue
		}
		healthy = false
		r.Printf("   %s: %s\n", c.Name, c.Detail)
	}
	if !healthy {
		r.Println("")
		r.Println("Missing artifacts are produced by earlier stages; see: gnnpipe plan")
	}
	return nil
}

func fileCheck(name, path string) doctorCheck {
	info, err := os.Stat(path)
	if err != nil {
		return doctorCheck{name, false, "not found at " + path}
	}
	if info.IsDir() {
		return doctorCheck{name, false, path + " is a directory"}
	}
	return doctorCheck{name, true, path}
}
