package stepfile

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/stepsched/internal/errors"
	"github.com/Iron-Ham/stepsched/internal/graph"
)

// Plan is the YAML plan document.
type Plan struct {
	Workers    *int       `yaml:"workers,omitempty"`
	TimeOffset *int       `yaml:"time_offset,omitempty"`
	Steps      []PlanStep `yaml:"steps"`
}

// PlanStep declares one step and its prerequisites.
type PlanStep struct {
	ID        string   `yaml:"id"`
	DependsOn []string `yaml:"depends_on,omitempty"`
	Duration  *int     `yaml:"duration,omitempty"`

	line int
}

// UnmarshalYAML records where the step was declared so errors can point at it.
func (s *PlanStep) UnmarshalYAML(value *yaml.Node) error {
	type raw PlanStep
	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}
	*s = PlanStep(r)
	s.line = value.Line
	return nil
}

func parsePlan(r io.Reader) (*Stepfile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading plan")
	}

	var plan Plan
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return nil, errors.NewMalformedEdgeError(0, "").WithReason(fmt.Sprintf("invalid plan: %v", err))
		}
	}
	return plan.Stepfile()
}

// Stepfile validates the plan and flattens it into edges. Each dependency
// becomes an edge (dep, id) in declaration order.
func (p *Plan) Stepfile() (*Stepfile, error) {
	sf := &Stepfile{
		Workers:    p.Workers,
		TimeOffset: p.TimeOffset,
	}

	declared := make(map[string]bool, len(p.Steps))
	for _, step := range p.Steps {
		if step.ID == "" {
			return nil, errors.NewMalformedEdgeError(step.line, "").WithReason("step id is required")
		}
		if declared[step.ID] {
			return nil, errors.NewMalformedEdgeError(step.line, step.ID).
				WithReason(fmt.Sprintf("duplicate step id %q", step.ID))
		}
		declared[step.ID] = true
		sf.Steps = append(sf.Steps, step.ID)
	}

	for _, step := range p.Steps {
		for _, dep := range step.DependsOn {
			if !declared[dep] {
				return nil, errors.NewMalformedEdgeError(step.line, step.ID).
					WithReason(fmt.Sprintf("step %q depends on undeclared step %q", step.ID, dep))
			}
			sf.Edges = append(sf.Edges, graph.Edge{From: dep, To: step.ID})
		}
		if step.Duration != nil {
			if *step.Duration < 0 {
				return nil, errors.NewMalformedEdgeError(step.line, step.ID).
					WithReason(fmt.Sprintf("step %q has negative duration %d", step.ID, *step.Duration))
			}
			if sf.Durations == nil {
				sf.Durations = make(map[string]int)
			}
			sf.Durations[step.ID] = *step.Duration
		}
	}
	return sf, nil
}
