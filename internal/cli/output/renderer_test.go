package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"text", ModeText},
		{"markdown", ModeMarkdown},
		{"json", ModeJSON},
		{"auto", ModeAuto},
		{"", ModeAuto},
		{"bogus", ModeAuto},
	}
	for _, tt := range tests {
		if got := Mode(tt.in); got != tt.want {
			t.Errorf("Mode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEffectiveMode_Auto(t *testing.T) {
	var buf bytes.Buffer
	tty := NewRendererWithTTY(&buf, &buf, true, ModeAuto)
	if tty.EffectiveMode() != ModeText {
		t.Errorf("auto on TTY should be text, got %q", tty.EffectiveMode())
	}

	pipe := NewRendererWithTTY(&buf, &buf, false, ModeAuto)
	if pipe.EffectiveMode() != ModeMarkdown {
		t.Errorf("auto on pipe should be markdown, got %q", pipe.EffectiveMode())
	}
}

func TestEffectiveMode_Explicit(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithTTY(&buf, &buf, true, ModeJSON)
	if r.EffectiveMode() != ModeJSON {
		t.Errorf("explicit json should win over TTY, got %q", r.EffectiveMode())
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithTTY(&buf, &buf, false, ModeJSON)

	if err := r.JSON(map[string]int{"shards": 20}); err != nil {
		t.Fatalf("JSON error = %v", err)
	}

	var decoded map[string]int
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["shards"] != 20 {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestNonTTY_NoANSI(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, false, ModeText)

	r.Success("converted dataset")
	r.Warning("3 of 20 shards present")
	r.Error("tool not found")

	combined := out.String() + errOut.String()
	if strings.Contains(combined, "\x1b[") {
		t.Errorf("non-TTY output contains ANSI codes: %q", combined)
	}
}

func TestTable_Markdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithTTY(&buf, &buf, false, ModeMarkdown)

	r.Table([]string{"STAGE", "TOOL"}, [][]string{
		{"convert", "tfgnn_convert_ogb_dataset"},
		{"sample", "tfgnn_graph_sampler"},
	})

	got := buf.String()
	if !strings.Contains(got, "| convert |") {
		t.Errorf("markdown table missing row: %q", got)
	}
	if !strings.Contains(got, "| ---") {
		t.Errorf("markdown table missing separator: %q", got)
	}
}

func TestTable_Text(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithTTY(&buf, &buf, true, ModeText)

	r.Table([]string{"STAGE"}, [][]string{{"convert"}})
	if !strings.Contains(buf.String(), "convert") {
		t.Errorf("table output missing row: %q", buf.String())
	}
}
