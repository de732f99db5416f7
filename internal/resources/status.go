// Package resources contains the resource handler bodies exposed by the
// server.
package resources

import (
	"context"
	"time"

	"github.com/hanq-io/toolbelt/internal/envelope"
	"github.com/hanq-io/toolbelt/internal/registry"
	"github.com/hanq-io/toolbelt/mcp"
)

// ServerStatusURI is the fixed identifier of the synthetic status resource.
const ServerStatusURI = "status://server/primary"

// serverStatus is the synthetic status record served at ServerStatusURI.
type serverStatus struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Region            string  `json:"region"`
	Status            string  `json:"status"`
	UptimeSeconds     int     `json:"uptimeSeconds"`
	ActiveConnections int     `json:"activeConnections"`
	CPUUsage          float64 `json:"cpuUsage"`
	MemoryUsage       float64 `json:"memoryUsage"`
	LastDeployment    string  `json:"lastDeployment"`
	ReportedAt        string  `json:"reportedAt"`
}

// ServerStatus returns the static server-status resource: a JSON document a
// client can parse back into the documented field set. A handler failure here
// would be a bug in this package, not a condition the envelope layer
// accommodates, so the handler is written to be total.
func ServerStatus() registry.ResourceDef {
	return serverStatusWithClock(time.Now)
}

func serverStatusWithClock(clock func() time.Time) registry.ResourceDef {
	return registry.ResourceDef{
		Descriptor: mcp.Resource{
			URI:         ServerStatusURI,
			Name:        "Server status",
			Description: "Synthetic status record for the primary server",
			MimeType:    "application/json",
		},
		Handler: func(ctx context.Context) ([]mcp.ResourceContents, error) {
			now := clock().UTC()
			return envelope.JSONResource(ServerStatusURI, serverStatus{
				ID:                "srv-001",
				Name:              "primary",
				Region:            "ap-northeast-2",
				Status:            "healthy",
				UptimeSeconds:     86400,
				ActiveConnections: 42,
				CPUUsage:          0.23,
				MemoryUsage:       0.41,
				LastDeployment:    now.Add(-24 * time.Hour).Format(time.RFC3339),
				ReportedAt:        now.Format(time.RFC3339),
			})
		},
	}
}
