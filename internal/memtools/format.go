package memtools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/HendryAvila/designmem/internal/design"
	"github.com/HendryAvila/designmem/internal/memory"
)

// formatCommands renders commands at the given detail level. Full detail
// is handled by callers, which print the JSON document instead.
func formatCommands(b *strings.Builder, cmds []design.Command, level string) {
	for _, c := range cmds {
		rel := c.Relationships
		fmt.Fprintf(b, "%d. %s [%s/%s]", c.Sequence, c.NodeID(), rel.Category, rel.WorkflowStage)
		if len(rel.DependsOn) > 0 {
			fmt.Fprintf(b, " <- %s", strings.Join(rel.DependsOn, ", "))
		}
		b.WriteString("\n")
		if level == memory.DetailSummary {
			continue
		}
		fmt.Fprintf(b, "   %s\n", rel.DesignIntent)
		if c.Intent != "" {
			fmt.Fprintf(b, "   %s\n", c.Intent)
		}
	}
}

// formatAnalysis renders histograms, the longest chain and workflows.
func formatAnalysis(b *strings.Builder, a *design.Analysis, level string) {
	if a == nil {
		return
	}
	fmt.Fprintf(b, "\n## Analysis\n\n")
	fmt.Fprintf(b, "- **Commands**: %d\n", a.CommandCount)
	fmt.Fprintf(b, "- **Categories**: %s\n", histogram(a.CategoryHistogram))
	fmt.Fprintf(b, "- **Stages**: %s\n", histogram(a.StageHistogram))
	if len(a.LongestDependencyChain) > 0 {
		fmt.Fprintf(b, "- **Longest chain** (%d): %s\n", len(a.LongestDependencyChain),
			strings.Join(a.LongestDependencyChain, " -> "))
	}
	fmt.Fprintf(b, "- **Workflows**: %d\n", len(a.Workflows))
	if level == memory.DetailSummary {
		return
	}
	for _, w := range a.Workflows {
		fmt.Fprintf(b, "  - %s: %s (%s)\n", w.Type, w.Description, strings.Join(w.Members, ", "))
		fmt.Fprintf(b, "    %s\n", w.DesignIntent)
	}
}

// histogram renders a count map as "k=v" pairs in key order.
func histogram[K ~string](m map[K]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[K(k)])
	}
	return strings.Join(parts, ", ")
}

// withFooter appends the token estimate.
func withFooter(s string) string {
	return s + memory.TokenFooter(memory.EstimateTokens(s))
}
