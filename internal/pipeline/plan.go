package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentx-labs/extkit/internal/stage"
)

// ErrNoModes is returned by Resolve when no mode was selected.
var ErrNoModes = errors.New("no mode selected")

// Plan is the ordered list of stages a run executes.
type Plan struct {
	// Modes are the effective modes, in composition order.
	Modes  []Mode
	Stages []stage.Stage
}

// Resolve merges the operations of the selected modes into one plan.
// Operations are composed in canonical mode order regardless of the order
// modes were given in. ModeAll supersedes every install-side mode. A
// stage appearing in several operations runs once, at its first position;
// SetOwnership always runs last.
func Resolve(modes ...Mode) (Plan, error) {
	if len(modes) == 0 {
		return Plan{}, ErrNoModes
	}

	selected := make(map[Mode]bool, len(modes))
	for _, m := range modes {
		if _, ok := operations[m]; !ok {
			return Plan{}, fmt.Errorf("unknown mode %q", m)
		}
		selected[m] = true
	}

	var plan Plan
	seen := make(map[stage.Name]bool)
	ownership := false
	for _, m := range canonicalModes {
		if !selected[m] || (selected[ModeAll] && installSide(m)) {
			continue
		}
		plan.Modes = append(plan.Modes, m)
		for _, name := range operations[m].Stages {
			if name == stage.SetOwnership {
				ownership = true
				continue
			}
			if seen[name] {
				continue
			}
			seen[name] = true
			plan.Stages = append(plan.Stages, stage.MustLookup(name))
		}
	}
	if ownership {
		plan.Stages = append(plan.Stages, stage.MustLookup(stage.SetOwnership))
	}
	return plan, nil
}

// Names returns the stage names of the plan in order.
func (p Plan) Names() []stage.Name {
	out := make([]stage.Name, len(p.Stages))
	for i, s := range p.Stages {
		out[i] = s.Name
	}
	return out
}

func (p Plan) String() string {
	names := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		names[i] = string(s.Name)
	}
	return strings.Join(names, " -> ")
}

// Tools returns the external programs the plan may invoke, in order of
// first use.
func (p Plan) Tools() []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range p.Stages {
		for _, tool := range s.Tools {
			if !seen[tool] {
				seen[tool] = true
				out = append(out, tool)
			}
		}
	}
	return out
}
