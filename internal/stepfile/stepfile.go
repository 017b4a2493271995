package stepfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Iron-Ham/stepsched/internal/errors"
	"github.com/Iron-Ham/stepsched/internal/graph"
)

// Format identifies an input encoding.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// FormatFor picks a format from a file extension. Anything that is not
// .yaml or .yml is read as text.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// ParseFormat converts a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatText, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", errors.NewValidationError("unknown input format, expected text or yaml").
			WithField("format").
			WithValue(name)
	}
}

// Stepfile is a parsed input.
type Stepfile struct {
	// Source names where the input came from, for messages.
	Source string

	// Edges are the precedence pairs in the order they were read.
	Edges []graph.Edge

	// Steps lists every declared step, including those with no edges.
	// Text inputs only declare steps through edges and leave this empty.
	Steps []string

	// Durations holds explicit step costs from a YAML plan.
	Durations map[string]int

	// Workers and TimeOffset override the configured run settings when set.
	Workers    *int
	TimeOffset *int
}

// Graph builds the precedence graph.
func (s *Stepfile) Graph() *graph.Graph {
	return graph.Build(s.Edges, s.Steps...)
}

// Parse reads a stepfile from r.
func Parse(r io.Reader, format Format) (*Stepfile, error) {
	switch format {
	case FormatText, "":
		return parseText(r)
	case FormatYAML:
		return parsePlan(r)
	default:
		return nil, fmt.Errorf("unsupported stepfile format %q", format)
	}
}

// ParseFile reads a stepfile from path, picking the format from its
// extension.
func ParseFile(path string) (*Stepfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening stepfile")
	}
	defer f.Close()

	sf, err := Parse(f, FormatFor(path))
	if err != nil {
		var malformed *errors.MalformedEdgeError
		if errors.As(err, &malformed) {
			malformed.WithSource(path)
		}
		return nil, err
	}
	sf.Source = path
	return sf, nil
}
