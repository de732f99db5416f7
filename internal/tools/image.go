package tools

import (
	"context"
	"errors"

	"github.com/hanq-io/toolbelt/internal/envelope"
	"github.com/hanq-io/toolbelt/internal/inference"
	"github.com/hanq-io/toolbelt/internal/registry"
	"github.com/hanq-io/toolbelt/internal/schema"
	"github.com/hanq-io/toolbelt/mcp"
)

// ImageGenerator is the contract this tool has with the remote inference
// collaborator: prompt in, image bytes and mime type out.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (data []byte, mimeType string, err error)
}

type generateImageArgs struct {
	Prompt string `json:"prompt" jsonschema:"description=Text description of the image to generate"`
}

// GenerateImage returns a tool that renders a text prompt into an image via
// the given generator. Missing credentials and provider failures surface as
// business errors on the invocation, never as process failures.
func GenerateImage(gen ImageGenerator) registry.ToolDef {
	return registry.ToolDef{
		Descriptor: mcp.Tool{
			Name:        "generateImage",
			Description: "Generate an image from a text prompt",
			InputSchema: schema.Reflect[generateImageArgs](),
		},
		Handler: func(ctx context.Context, args schema.Args) (*mcp.CallToolResult, error) {
			data, mimeType, err := gen.Generate(ctx, args.String("prompt"))
			if err != nil {
				if errors.Is(err, inference.ErrMissingToken) {
					return envelope.Errorf("%v", err), nil
				}
				return envelope.Errorf("image generation failed: %v", err), nil
			}
			return envelope.Image(data, mimeType, envelope.WithAudience(mcp.RoleUser)), nil
		},
	}
}
