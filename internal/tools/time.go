package tools

import (
	"context"
	"time"

	"github.com/hanq-io/toolbelt/internal/envelope"
	"github.com/hanq-io/toolbelt/internal/registry"
	"github.com/hanq-io/toolbelt/internal/schema"
	"github.com/hanq-io/toolbelt/mcp"
)

type currentTimeArgs struct {
	Timezone string `json:"timezone" jsonschema:"description=IANA timezone identifier such as Asia/Seoul or UTC"`
}

const timestampLayout = "2006-01-02 15:04:05"

// CurrentTime returns a tool reporting the current wall-clock time in a
// requested IANA timezone. Zone validity can only be established by loading
// the zone, so a bad identifier is a business error at evaluation time, not a
// validation error.
func CurrentTime() registry.ToolDef {
	return currentTimeWithClock(time.Now)
}

func currentTimeWithClock(clock func() time.Time) registry.ToolDef {
	return registry.ToolDef{
		Descriptor: mcp.Tool{
			Name:        "getCurrentTime",
			Description: "Report the current time in an IANA timezone",
			InputSchema: schema.Reflect[currentTimeArgs](),
		},
		Handler: func(ctx context.Context, args schema.Args) (*mcp.CallToolResult, error) {
			tz := args.String("timezone")
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return envelope.Errorf("invalid timezone %q: %v", tz, err), nil
			}
			return envelope.Textf("Current time in %s: %s",
				tz, clock().In(loc).Format(timestampLayout)), nil
		},
	}
}
