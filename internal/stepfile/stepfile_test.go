package stepfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iron-Ham/stepsched/internal/errors"
)

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"steps.txt", FormatText},
		{"input", FormatText},
		{"plan.yaml", FormatYAML},
		{"plan.YML", FormatYAML},
		{"dir.yaml/steps", FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatFor(tt.path); got != tt.want {
				t.Errorf("FormatFor(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"toml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("ParseFormat(%q) error = %v, want ErrInvalidInput", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestParse_UnknownFormat(t *testing.T) {
	if _, err := Parse(strings.NewReader(""), Format("csv")); err == nil {
		t.Error("Parse with unknown format returned nil error")
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("text by extension", func(t *testing.T) {
		path := filepath.Join(dir, "steps.txt")
		if err := os.WriteFile(path, []byte(fixtureText), 0644); err != nil {
			t.Fatal(err)
		}
		sf, err := ParseFile(path)
		if err != nil {
			t.Fatalf("ParseFile() error = %v", err)
		}
		if sf.Source != path {
			t.Errorf("Source = %q, want %q", sf.Source, path)
		}
		if len(sf.Edges) != 7 {
			t.Errorf("got %d edges, want 7", len(sf.Edges))
		}
	})

	t.Run("yaml by extension", func(t *testing.T) {
		path := filepath.Join(dir, "plan.yml")
		if err := os.WriteFile(path, []byte(fixturePlan), 0644); err != nil {
			t.Fatal(err)
		}
		sf, err := ParseFile(path)
		if err != nil {
			t.Fatalf("ParseFile() error = %v", err)
		}
		if sf.Workers == nil || *sf.Workers != 2 {
			t.Errorf("Workers = %v, want 2", sf.Workers)
		}
	})

	t.Run("malformed error names the file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.txt")
		if err := os.WriteFile(path, []byte("nonsense\n"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := ParseFile(path)
		var malformed *errors.MalformedEdgeError
		if !errors.As(err, &malformed) {
			t.Fatalf("ParseFile() error = %v, want *MalformedEdgeError", err)
		}
		if malformed.Source != path {
			t.Errorf("Source = %q, want %q", malformed.Source, path)
		}
		if !strings.Contains(err.Error(), "source="+path) {
			t.Errorf("error %q does not mention the file", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ParseFile(filepath.Join(dir, "nope.txt")); err == nil {
			t.Error("ParseFile on a missing file returned nil error")
		}
	})
}
