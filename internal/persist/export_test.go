package persist

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/todoreducer/internal/model"
)

var exportTodos = []model.Todo{
	{ID: 1, Text: "buy milk", CreatedAt: "2024-03-01T09:30:00.000Z"},
	{ID: 2, Text: "walk dog", Completed: true, CreatedAt: "2024-03-01T10:00:00.000Z"},
}

func TestExportName(t *testing.T) {
	at := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	if got := ExportName(at, FormatJSON); got != "todos_2024-03-01.json" {
		t.Fatalf("ExportName = %q", got)
	}
	if got := ExportName(at, FormatYAML); got != "todos_2024-03-01.yaml" {
		t.Fatalf("ExportName(yaml) = %q", got)
	}
}

func TestExport_IndentedJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, exportTodos, FormatJSON); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  {\n    \"id\": 1,") {
		t.Fatalf("export is not two-space indented:\n%s", buf.String())
	}
	var back []model.Todo
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(back) != 2 || back[1].Text != "walk dog" || !back[1].Completed {
		t.Fatalf("decoded export = %+v", back)
	}
}

func TestExport_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, nil, FormatJSON); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if buf.String() != "[]" {
		t.Fatalf("Export(nil) = %q, want []", buf.String())
	}
}

func TestExportFile_YAML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	path, err := ExportFile(dir, exportTodos, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), FormatYAML)
	if err != nil {
		t.Fatalf("ExportFile: %v", err)
	}
	if filepath.Base(path) != "todos_2024-03-01.yaml" {
		t.Fatalf("path = %q", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var back []model.Todo
	if err := yaml.Unmarshal(b, &back); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if len(back) != 2 || back[0].CreatedAt != "2024-03-01T09:30:00.000Z" {
		t.Fatalf("decoded yaml = %+v", back)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "json": FormatJSON, "yml": FormatYAML, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Errorf("ParseFormat(csv) returned nil error")
	}
}
