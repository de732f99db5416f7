// Package tools contains the tool handler bodies exposed by the server. Each
// constructor returns a registry.ToolDef pairing a reflected input schema
// with a handler; the dispatch layer owns validation and error boundaries, so
// the handlers only contain their own business rules.
package tools

import (
	"context"
	"fmt"

	"github.com/hanq-io/toolbelt/internal/envelope"
	"github.com/hanq-io/toolbelt/internal/registry"
	"github.com/hanq-io/toolbelt/internal/schema"
	"github.com/hanq-io/toolbelt/mcp"
)

type greetingArgs struct {
	Name     string `json:"name" jsonschema:"description=Name of the person to greet"`
	Language string `json:"language" jsonschema:"enum=ko,enum=en,enum=ja,enum=zh,enum=es,enum=fr,enum=de,description=Language for the greeting"`
}

var greetingTemplates = map[string]string{
	"ko": "안녕하세요, %s님! 만나서 반갑습니다.",
	"en": "Hello, %s! Nice to meet you.",
	"ja": "こんにちは、%sさん！お会いできて嬉しいです。",
	"zh": "你好，%s！很高兴见到你。",
	"es": "¡Hola, %s! Encantado de conocerte.",
	"fr": "Bonjour, %s ! Ravi de vous rencontrer.",
	"de": "Hallo, %s! Schön, dich kennenzulernen.",
}

// Greeting returns a tool that greets a person in one of the supported
// languages.
func Greeting() registry.ToolDef {
	return registry.ToolDef{
		Descriptor: mcp.Tool{
			Name:        "greeting",
			Description: "Greet a person by name in the requested language",
			InputSchema: schema.Reflect[greetingArgs](),
		},
		Handler: func(ctx context.Context, args schema.Args) (*mcp.CallToolResult, error) {
			tmpl, ok := greetingTemplates[args.String("language")]
			if !ok {
				// The enum constraint makes this unreachable via dispatch;
				// guard anyway for direct callers.
				return envelope.Errorf("unsupported language %q", args.String("language")), nil
			}
			return envelope.Text(fmt.Sprintf(tmpl, args.String("name"))), nil
		},
	}
}
