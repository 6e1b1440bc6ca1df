package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReviewPrompt handles the design-review MCP prompt.
// It asks the AI to explain how an archived design was built.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("design-review",
		mcp.WithPromptDescription(
			"Review an archived design session: how the model was built, "+
				"which operations everything depends on and where the workflow could be simplified.",
		),
		mcp.WithArgument("session_id",
			mcp.ArgumentDescription("Archived session to review. Default: the most recent one"),
		),
	)
}

// Handle processes the design-review prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	target := "the most recent session (find it with `design_sessions`)"
	desc := "Review latest design session"
	if id, ok := req.Params.Arguments["session_id"]; ok && id != "" {
		target = fmt.Sprintf("session `%s`", id)
		desc = fmt.Sprintf("Review design session %s", id)
	}

	return &mcp.GetPromptResult{
		Description: desc,
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Please review %s.\n\n"+
						"1. Run `design_get` with detail_level=standard and describe the build order\n"+
						"2. For the last command of the longest dependency chain, run `design_chain` "+
						"and explain what it depends on\n"+
						"3. Point out repeated patterns or workflows that could be parameterised",
					target,
				)),
			},
		},
	}, nil
}
