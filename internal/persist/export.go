package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/todoreducer/internal/model"
)

// Format selects the export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "", "json", "yaml" and "yml".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json or yaml)", s)
}

// ExportName is the download name for an export taken at now:
// todos_<YYYY-MM-DD>.json.
func ExportName(now time.Time, f Format) string {
	ext := "json"
	if f == FormatYAML {
		ext = "yaml"
	}
	return fmt.Sprintf("todos_%s.%s", now.UTC().Format(time.DateOnly), ext)
}

// Export writes todos to w with two-space indentation.
func Export(w io.Writer, todos []model.Todo, f Format) error {
	todos = nonNil(todos)
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(todos); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		return enc.Close()
	default:
		b, err := json.MarshalIndent(todos, "", "  ")
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		_, err = w.Write(b)
		return err
	}
}

// ExportFile writes an export into dir and returns its path.
func ExportFile(dir string, todos []model.Todo, now time.Time, f Format) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	var buf bytes.Buffer
	if err := Export(&buf, todos, f); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ExportName(now, f))
	if err := atomic.WriteFile(path, &buf); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}
