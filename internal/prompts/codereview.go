// Package prompts contains the prompt template bodies exposed by the server.
package prompts

import (
	"context"
	"fmt"

	"github.com/hanq-io/toolbelt/internal/envelope"
	"github.com/hanq-io/toolbelt/internal/registry"
	"github.com/hanq-io/toolbelt/mcp"
)

// CodeReview returns a prompt template that asks a model to review a piece of
// code. The language argument is optional; when absent the reviewer is asked
// to infer it.
func CodeReview() registry.PromptDef {
	return registry.PromptDef{
		Descriptor: mcp.Prompt{
			Name:        "code-review",
			Description: "Request a structured review of a piece of code",
			Arguments: []mcp.PromptArgument{
				{Name: "code", Description: "The code to review", Required: true},
				{Name: "language", Description: "Programming language of the code"},
			},
		},
		Handler: func(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
			lang := args["language"]
			if lang == "" {
				lang = "the language it appears to be written in"
			}
			text := fmt.Sprintf(
				"Please review the following code, treating it as %s.\n\n"+
					"Cover, in order: correctness, readability, performance, and security. "+
					"For each finding, cite the relevant lines and suggest a concrete fix.\n\n"+
					"```\n%s\n```",
				lang, args["code"])
			return envelope.PromptResult(
				"Structured code review request",
				envelope.UserMessage(text),
			), nil
		},
	}
}
