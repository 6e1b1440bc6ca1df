// Package workflow recognizes higher-level patterns in a session's
// command log and builds the aggregate analysis attached at finalize.
package workflow

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/designmem/internal/design"
	"github.com/HendryAvila/designmem/internal/graph"
)

// maxChainModifications caps how many modification or finishing commands
// a single modification chain claims after its creation command.
const maxChainModifications = 3

// Analyze returns the workflows found in cmds, in this order: the
// creation sequence, modification chains by creation order, then boolean
// operations by sequence. cmds must be in sequence order.
func Analyze(cmds []design.Command, g *graph.Graph) []design.Workflow {
	var out []design.Workflow
	if w, ok := creationSequence(cmds); ok {
		out = append(out, w)
	}
	out = append(out, modificationChains(cmds)...)
	out = append(out, booleanOperations(cmds, g)...)
	return out
}

func stage(c design.Command) design.Stage { return c.Relationships.WorkflowStage }

func creationSequence(cmds []design.Command) (design.Workflow, bool) {
	var members []string
	for _, c := range cmds {
		if stage(c) == design.StageCreation {
			members = append(members, c.NodeID())
		}
	}
	if len(members) < 2 {
		return design.Workflow{}, false
	}
	return design.Workflow{
		Type:         design.WorkflowCreationSequence,
		Description:  "Sequential geometry creation",
		Members:      members,
		DesignIntent: "Building up the design with multiple geometric elements",
	}, true
}

// modificationChains anchors one chain at every creation command. Later
// modifications may appear in several overlapping chains.
func modificationChains(cmds []design.Command) []design.Workflow {
	var out []design.Workflow
	for i, c := range cmds {
		if stage(c) != design.StageCreation {
			continue
		}
		chain := []design.Command{c}
		for _, next := range cmds[i+1:] {
			if len(chain) > maxChainModifications {
				break
			}
			if s := stage(next); s == design.StageModification || s == design.StageFinishing {
				chain = append(chain, next)
			}
		}
		if len(chain) < 2 {
			continue
		}
		members := make([]string, len(chain))
		names := make([]string, len(chain))
		for j, m := range chain {
			members[j] = m.NodeID()
			names[j] = m.Name
		}
		out = append(out, design.Workflow{
			Type:         design.WorkflowModificationChain,
			Description:  fmt.Sprintf("Creation followed by %d modifications", len(chain)-1),
			Members:      members,
			DesignIntent: "Iterative refinement: " + strings.Join(names, " → "),
		})
	}
	return out
}

func booleanOperations(cmds []design.Command, g *graph.Graph) []design.Workflow {
	if g == nil {
		return nil
	}
	var out []design.Workflow
	for _, c := range cmds {
		if c.Relationships.Category != design.CategoryBoolean {
			continue
		}
		n, ok := g.Node(c.NodeID())
		if !ok || len(n.Dependencies) < 2 {
			continue
		}
		out = append(out, design.Workflow{
			Type:         design.WorkflowBooleanOperation,
			Description:  fmt.Sprintf("%s combining multiple objects", c.Name),
			Members:      append(n.Dependencies, n.ID),
			DesignIntent: fmt.Sprintf("Combining geometry using %s operation", strings.ToLower(strings.TrimPrefix(c.Name, "Boolean"))),
		})
	}
	return out
}

// Summarize computes the aggregate analysis of a session.
func Summarize(cmds []design.Command, g *graph.Graph) *design.Analysis {
	a := &design.Analysis{
		CommandCount:           len(cmds),
		CategoryHistogram:      make(map[design.Category]int),
		StageHistogram:         make(map[design.Stage]int),
		LongestDependencyChain: []string{},
		Workflows:              Analyze(cmds, g),
	}
	for _, c := range cmds {
		a.CategoryHistogram[c.Relationships.Category]++
		a.StageHistogram[stage(c)]++
	}
	if g != nil {
		a.LongestDependencyChain = g.LongestChain()
	}
	if a.Workflows == nil {
		a.Workflows = []design.Workflow{}
	}
	return a
}
