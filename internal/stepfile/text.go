package stepfile

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/Iron-Ham/stepsched/internal/errors"
	"github.com/Iron-Ham/stepsched/internal/graph"
)

var edgeLine = regexp.MustCompile(`^Step (\S+) must be finished before step (\S+) can begin\.$`)

// ParseLine reads a single precedence line.
func ParseLine(line string) (graph.Edge, bool) {
	m := edgeLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return graph.Edge{}, false
	}
	return graph.Edge{From: m[1], To: m[2]}, true
}

// FormatLine renders e in the text format.
func FormatLine(e graph.Edge) string {
	return fmt.Sprintf("Step %s must be finished before step %s can begin.", e.From, e.To)
}

func parseText(r io.Reader) (*Stepfile, error) {
	sf := &Stepfile{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, ok := ParseLine(line)
		if !ok {
			return nil, errors.NewMalformedEdgeError(lineNo, line)
		}
		sf.Edges = append(sf.Edges, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading stepfile")
	}
	return sf, nil
}
