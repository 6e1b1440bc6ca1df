// Package prompts implements MCP prompt handlers for design capture.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// CapturePrompt handles the design-capture MCP prompt.
// It guides the AI through recording a modelling session.
type CapturePrompt struct{}

// NewCapturePrompt creates a CapturePrompt.
func NewCapturePrompt() *CapturePrompt {
	return &CapturePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *CapturePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("design-capture",
		mcp.WithPromptDescription(
			"Capture a CAD modelling session as design memory. "+
				"Opens a session, records each operation as it happens "+
				"and saves the analysed history when you are done.",
		),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("What you are about to model, e.g. 'bracket with two mounting holes'"),
		),
	)
}

// Handle processes the design-capture prompt request.
func (p *CapturePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	goal := "a new part"
	if g, ok := req.Params.Arguments["goal"]; ok && g != "" {
		goal = g
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Capture design session: %s", goal),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I am about to model %s and want the session captured as design memory.\n\n"+
						"Please:\n"+
						"1. Run `design_capture_start`\n"+
						"2. After each CAD operation I report, call `design_capture_record` with the event "+
						"(command, created and affected ids, parameters, before placements, resulting geometry)\n"+
						"3. When I say I am done, run `design_capture_stop` and summarise the detected workflows "+
						"and the longest dependency chain",
					goal,
				)),
			},
		},
	}, nil
}
