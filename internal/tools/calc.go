package tools

import (
	"context"
	"strconv"

	"github.com/hanq-io/toolbelt/internal/envelope"
	"github.com/hanq-io/toolbelt/internal/registry"
	"github.com/hanq-io/toolbelt/internal/schema"
	"github.com/hanq-io/toolbelt/mcp"
)

type calcArgs struct {
	A        float64 `json:"a" jsonschema:"description=First operand"`
	B        float64 `json:"b" jsonschema:"description=Second operand"`
	Operator string  `json:"operator" jsonschema:"enum=+,enum=-,enum=*,enum=/,description=Arithmetic operator"`
}

// Calc returns a four-function arithmetic tool. Division by zero passes type
// checking and fails at evaluation time as a business error.
func Calc() registry.ToolDef {
	return registry.ToolDef{
		Descriptor: mcp.Tool{
			Name:        "calc",
			Description: "Evaluate a basic arithmetic expression",
			InputSchema: schema.Reflect[calcArgs](),
		},
		Handler: func(ctx context.Context, args schema.Args) (*mcp.CallToolResult, error) {
			a, b := args.Number("a"), args.Number("b")
			op := args.String("operator")

			var result float64
			switch op {
			case "+":
				result = a + b
			case "-":
				result = a - b
			case "*":
				result = a * b
			case "/":
				if b == 0 {
					return envelope.Errorf("cannot divide %s by zero", formatNumber(a)), nil
				}
				result = a / b
			default:
				return envelope.Errorf("unsupported operator %q", op), nil
			}

			return envelope.Textf("%s %s %s = %s",
				formatNumber(a), op, formatNumber(b), formatNumber(result)), nil
		},
	}
}

// formatNumber renders a float without a trailing ".0" so whole numbers read
// the way a person would write them: 6 / 3 = 2, not 6.000000 / 3.000000 = 2.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
