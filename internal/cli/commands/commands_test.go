package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarri-oss/gnnpipe/internal/cli/config"
	"github.com/yarri-oss/gnnpipe/internal/cli/output"
)

// testContext wires a config and a non-TTY renderer into a command, the way
// the root command's PersistentPreRunE does.
func testContext(t *testing.T, cmd *cobra.Command, cfg *config.Config, mode output.OutputMode) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	ctx := WithConfig(context.Background(), cfg)
	ctx = WithRenderer(ctx, output.NewRendererWithTTY(buf, buf, false, mode))
	cmd.SetContext(ctx)
	return buf
}

func testConfig(root string) *config.Config {
	return &config.Config{
		Dataset:    "ogbn-arxiv",
		DataRoot:   root,
		Shards:     20,
		FileFormat: "tfrecord",
		StatePath:  filepath.Join(root, ".gnnpipe", "state.db"),
	}
}

func TestStageCommandsDeclareDryRun(t *testing.T) {
	for _, newCmd := range []func() *cobra.Command{
		NewConvertCommand, NewSampleCommand, NewStatsCommand, NewPrintCommand,
	} {
		cmd := newCmd()
		flag := cmd.Flags().Lookup("dry-run")
		require.NotNil(t, flag, "%s should have a --dry-run flag", cmd.Use)
		assert.Equal(t, "false", flag.DefValue)
	}
}

func TestRunCommandAliasAndFromFlag(t *testing.T) {
	cmd := NewRunCommand()
	assert.Contains(t, cmd.Aliases, "build")
	assert.NotNil(t, cmd.Flags().Lookup("from"))
}

func TestPrintDryRunArgs(t *testing.T) {
	root := t.TempDir()
	cmd := NewPrintCommand()
	buf := testContext(t, cmd, testConfig(root), output.ModeText)
	cmd.SetArgs([]string{"--dry-run"})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "tfgnn_print_training_data")
	assert.Contains(t, out, "--examples="+filepath.Join(root, "training", "data-?????-of-00020"))
	assert.Contains(t, out, "--file_format=tfrecord")
}

func TestPlanReportsBlockedStages(t *testing.T) {
	root := t.TempDir()
	cmd := NewPlanCommand()
	buf := testContext(t, cmd, testConfig(root), output.ModeText)

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "convert")
	assert.Contains(t, out, "blocked:")
	// Convert waits only on the raw download, never on its own output.
	assert.Contains(t, out, filepath.Join(root, "download"))
}

func TestPlanReadyAfterArtifacts(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "download"), 0750))

	cmd := NewPlanCommand()
	buf := testContext(t, cmd, testConfig(root), output.ModeText)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "ready")
}

func TestListJSONIncludesPipelineFlag(t *testing.T) {
	cmd := NewListCommand()
	buf := testContext(t, cmd, testConfig(t.TempDir()), output.ModeJSON)

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, `"stage": "print"`)
	assert.Contains(t, out, `"pipeline": false`)
}

func TestDoctorReportsMissingTools(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)
	cfg.Prefix = filepath.Join(root, "nonexistent-prefix")

	cmd := NewDoctorCommand()
	buf := testContext(t, cmd, cfg, output.ModeText)

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "tfgnn_graph_sampler")
	assert.Contains(t, out, "not found")
	assert.Contains(t, out, "gnnpipe plan")
}

func TestInitWritesDirsSkeleton(t *testing.T) {
	t.Chdir(t.TempDir())
	root := t.TempDir()

	cmd := NewInitCommand()
	testContext(t, cmd, testConfig(root), output.ModeText)
	cmd.SetArgs([]string{"--dirs"})

	require.NoError(t, cmd.Execute())

	for _, dir := range []string{"download", "graph", "training", ".gnnpipe"} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err, "init --dirs should create %s", dir)
		assert.True(t, info.IsDir())
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "missing", firstLine("missing\nHint: run convert"))
	assert.Equal(t, "single", firstLine("single"))
}
