package memory

import (
	"fmt"
	"strconv"
)

// Detail levels accepted by the read tools.
//   - summary: node ids, categories and counts only
//   - standard: adds design intents and workflow descriptions
//   - full: the complete design memory document
const (
	DetailSummary  = "summary"
	DetailStandard = "standard"
	DetailFull     = "full"
)

// DetailLevelValues returns the enum values for MCP tool definitions.
func DetailLevelValues() []string {
	return []string{DetailSummary, DetailStandard, DetailFull}
}

// ParseDetailLevel normalizes a detail_level string. Empty and unknown
// values become DetailStandard.
func ParseDetailLevel(s string) string {
	switch s {
	case DetailSummary, DetailFull:
		return s
	default:
		return DetailStandard
	}
}

// SummaryFooter is appended to summary-mode responses.
const SummaryFooter = "\n---\nUse detail_level: standard or full for intents and geometry."

// NavigationHint returns a footer when results were capped by a limit, or
// "" when everything fits.
func NavigationHint(showing, total int, hint string) string {
	if total <= 0 || showing >= total {
		return ""
	}
	if hint != "" {
		return fmt.Sprintf("\nShowing %d of %d. %s", showing, total, hint)
	}
	return fmt.Sprintf("\nShowing %d of %d.", showing, total)
}

// ─── Token Estimation ───────────────────────────────────────────────────────

// EstimateTokens approximates a token count as len/4, with a floor of 1
// for non-empty text.
func EstimateTokens(text string) int {
	n := len(text)
	if n == 0 {
		return 0
	}
	if n < 4 {
		return 1
	}
	return n / 4
}

// TokenFooter returns a one-line footer with the estimated response size.
func TokenFooter(estimatedTokens int) string {
	return fmt.Sprintf("\n~%s tokens", formatNumber(estimatedTokens))
}

// formatNumber inserts thousands separators.
func formatNumber(n int) string {
	s := strconv.Itoa(n)
	if n < 1000 {
		return s
	}
	var out []byte
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}
