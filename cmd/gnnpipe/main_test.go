// Package main provides tests for the gnnpipe CLI.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yarri-oss/gnnpipe/internal/cli"
	"github.com/yarri-oss/gnnpipe/internal/cli/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "gnnpipe") {
		t.Errorf("version output should contain 'gnnpipe', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := execute(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"convert", "sample", "stats", "print", "run", "plan", "list", "runs", "doctor", "init"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestConvertDryRun(t *testing.T) {
	root := t.TempDir()
	output, err := execute(t, "convert", "--dry-run", "--data-root", root)
	if err != nil {
		t.Fatalf("convert --dry-run error = %v", err)
	}

	want := fmt.Sprintf("tfgnn_convert_ogb_dataset --dataset=ogbn-arxiv --ogb_datasets_dir=%s --output=%s",
		filepath.Join(root, "download"), filepath.Join(root, "graph"))
	if !strings.Contains(output, want) {
		t.Errorf("dry-run output = %q, want it to contain %q", output, want)
	}
}

func TestSampleDryRunShardedOutput(t *testing.T) {
	root := t.TempDir()
	output, err := execute(t, "sample", "--dry-run", "--data-root", root)
	if err != nil {
		t.Fatalf("sample --dry-run error = %v", err)
	}

	want := "--output_samples=" + filepath.Join(root, "training", "data@20")
	if !strings.Contains(output, want) {
		t.Errorf("dry-run output = %q, want it to contain %q", output, want)
	}
}

func TestStatsDryRunShardPattern(t *testing.T) {
	root := t.TempDir()
	output, err := execute(t, "stats", "--dry-run", "--data-root", root)
	if err != nil {
		t.Fatalf("stats --dry-run error = %v", err)
	}

	want := "--input_pattern=" + filepath.Join(root, "training", "data-?????-of-00020")
	if !strings.Contains(output, want) {
		t.Errorf("dry-run output = %q, want it to contain %q", output, want)
	}
	if !strings.Contains(output, "--input_format=tfrecord") {
		t.Errorf("dry-run output should use the default file format, got: %s", output)
	}
}

func TestPlanJSON(t *testing.T) {
	root := t.TempDir()
	output, err := execute(t, "plan", "-o", "json", "--data-root", root)
	if err != nil {
		t.Fatalf("plan error = %v", err)
	}

	var items []map[string]interface{}
	if err := json.Unmarshal([]byte(output), &items); err != nil {
		t.Fatalf("plan -o json did not produce valid JSON: %v\noutput: %s", err, output)
	}
	if len(items) != 4 {
		t.Errorf("plan should list 4 stages, got %d", len(items))
	}
	if items[0]["stage"] != "convert" {
		t.Errorf("plan should start with convert, got %v", items[0]["stage"])
	}
	// An empty layout blocks every stage.
	for _, item := range items {
		if item["blocked"] == nil || item["blocked"] == "" {
			t.Errorf("stage %v should be blocked on an empty layout", item["stage"])
		}
	}
}

func TestListCommand(t *testing.T) {
	output, err := execute(t, "list")
	if err != nil {
		t.Errorf("list command error = %v", err)
	}
	for _, tool := range []string{"tfgnn_convert_ogb_dataset", "tfgnn_graph_sampler", "tfgnn_sampled_stats", "tfgnn_print_training_data"} {
		if !strings.Contains(output, tool) {
			t.Errorf("list output should contain %q, got: %s", tool, output)
		}
	}
}

func TestConvertMissingDownloadDir(t *testing.T) {
	root := t.TempDir()
	_, err := execute(t, "convert", "--data-root", root)
	if err == nil {
		t.Fatal("convert on an empty layout should fail its precondition")
	}
	if !strings.Contains(err.Error(), "download") {
		t.Errorf("error should name the missing download directory, got: %v", err)
	}
}

func TestInitCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	output, err := execute(t, "init", "--dataset", "ogbn-mag")
	if err != nil {
		t.Fatalf("init error = %v", err)
	}
	if !strings.Contains(output, "gnnpipe.yaml") {
		t.Errorf("init output should mention gnnpipe.yaml, got: %s", output)
	}

	data, err := os.ReadFile("gnnpipe.yaml")
	if err != nil {
		t.Fatalf("init should write gnnpipe.yaml: %v", err)
	}
	if !strings.Contains(string(data), "dataset: ogbn-mag") {
		t.Errorf("gnnpipe.yaml should record the dataset, got:\n%s", data)
	}

	// A second init without --force refuses to clobber the file.
	if _, err := execute(t, "init"); err == nil {
		t.Error("init should refuse to overwrite an existing gnnpipe.yaml")
	}
}

func TestRunsEmptyHistory(t *testing.T) {
	root := t.TempDir()
	statePath := filepath.Join(root, "state.db")

	output, err := execute(t, "runs", "--data-root", root, "--state", statePath)
	if err != nil {
		t.Fatalf("runs error = %v", err)
	}
	if !strings.Contains(output, "No runs recorded") {
		t.Errorf("runs output should report empty history, got: %s", output)
	}
}
