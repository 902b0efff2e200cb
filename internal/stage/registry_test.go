package stage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/yarri-oss/gnnpipe/internal/layout"
)

func arxivLayout() *layout.Layout {
	return layout.New("ogbn-arxiv", "/tmp/data/ogbn-arxiv", "", 20)
}

func TestAll_Order(t *testing.T) {
	got := Names()
	want := []string{"convert", "sample", "stats", "print"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stage order = %v, want %v", got, want)
	}
}

func TestGet_Unknown(t *testing.T) {
	if _, err := Get("compact"); err == nil {
		t.Error("expected error for unknown stage")
	}
}

func TestConvert_Args(t *testing.T) {
	s, err := Get(Convert)
	if err != nil {
		t.Fatal(err)
	}
	got := s.Args(arxivLayout(), Params{FileFormat: "tfrecord"})
	want := []string{
		"--dataset=ogbn-arxiv",
		"--ogb_datasets_dir=/tmp/data/ogbn-arxiv/download",
		"--output=/tmp/data/ogbn-arxiv/graph",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("convert args = %v, want %v", got, want)
	}
}

func TestSample_Args(t *testing.T) {
	s, err := Get(Sample)
	if err != nil {
		t.Fatal(err)
	}
	got := s.Args(arxivLayout(), Params{FileFormat: "tfrecord"})
	want := []string{
		"--graph_schema=/tmp/data/ogbn-arxiv/graph/schema.pbtxt",
		"--sampling_spec=/tmp/data/ogbn-arxiv/sampling_spec.pbtxt",
		"--output_samples=/tmp/data/ogbn-arxiv/training/data@20",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sample args = %v, want %v", got, want)
	}
}

func TestStats_Args(t *testing.T) {
	s, err := Get(Stats)
	if err != nil {
		t.Fatal(err)
	}
	got := s.Args(arxivLayout(), Params{FileFormat: "tfrecord"})
	want := []string{
		"--graph_schema=/tmp/data/ogbn-arxiv/graph/schema.pbtxt",
		"--input_pattern=/tmp/data/ogbn-arxiv/training/data-?????-of-00020",
		"--input_format=tfrecord",
		"--output=/tmp/data/ogbn-arxiv/stats.pbtxt",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stats args = %v, want %v", got, want)
	}
}

func TestPrint_Args(t *testing.T) {
	s, err := Get(Print)
	if err != nil {
		t.Fatal(err)
	}
	got := s.Args(arxivLayout(), Params{FileFormat: "tfrecord"})
	want := []string{
		"--graph_schema=/tmp/data/ogbn-arxiv/graph/schema.pbtxt",
		"--examples=/tmp/data/ogbn-arxiv/training/data-?????-of-00020",
		"--file_format=tfrecord",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("print args = %v, want %v", got, want)
	}
}

// Re-assembling with identical configuration must produce an identical argv.
func TestArgs_Deterministic(t *testing.T) {
	for _, s := range All() {
		first := s.Args(arxivLayout(), Params{FileFormat: "tfrecord"})
		second := s.Args(arxivLayout(), Params{FileFormat: "tfrecord"})
		if !reflect.DeepEqual(first, second) {
			t.Errorf("stage %s argv not deterministic: %v vs %v", s.Name, first, second)
		}
	}
}

func TestConvert_Check(t *testing.T) {
	root := t.TempDir()
	l := layout.New("ogbn-arxiv", root, "", 20)
	s, _ := Get(Convert)

	err := s.Check(l)
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}

	if err := os.MkdirAll(l.DownloadDir(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := s.Check(l); err != nil {
		t.Errorf("check after creating download dir: %v", err)
	}
}

func TestSample_Check_NamesConvert(t *testing.T) {
	root := t.TempDir()
	l := layout.New("ogbn-arxiv", root, "", 20)
	s, _ := Get(Sample)

	err := s.Check(l)
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	if pre.RunFirst != Convert {
		t.Errorf("RunFirst = %q, want %q", pre.RunFirst, Convert)
	}
}

func TestStats_Check_ShardCensus(t *testing.T) {
	root := t.TempDir()
	l := layout.New("ogbn-arxiv", root, "", 3)
	s, _ := Get(Stats)

	if err := os.MkdirAll(filepath.Dir(l.SchemaPath()), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(l.SchemaPath(), []byte("node_sets {}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(l.TrainingDir(), 0755); err != nil {
		t.Fatal(err)
	}

	// Two of three shards: still a precondition failure pointing at sample.
	for i := 0; i < 2; i++ {
		if err := os.WriteFile(l.TrainingShardPath(i), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	err := s.Check(l)
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	if pre.RunFirst != Sample {
		t.Errorf("RunFirst = %q, want %q", pre.RunFirst, Sample)
	}

	if err := os.WriteFile(l.TrainingShardPath(2), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.Check(l); err != nil {
		t.Errorf("check with full shard set: %v", err)
	}
}

func TestUpstream_Declarations(t *testing.T) {
	wants := map[string][]string{
		Convert: nil,
		Sample:  {Convert},
		Stats:   {Sample},
		Print:   {Sample},
	}
	for _, s := range All() {
		if !reflect.DeepEqual(s.Upstream, wants[s.Name]) {
			t.Errorf("stage %s upstream = %v, want %v", s.Name, s.Upstream, wants[s.Name])
		}
	}
}

func TestPipelineMembership(t *testing.T) {
	for _, s := range All() {
		wantPipeline := s.Name != Print
		if s.Pipeline != wantPipeline {
			t.Errorf("stage %s Pipeline = %v, want %v", s.Name, s.Pipeline, wantPipeline)
		}
	}
}
