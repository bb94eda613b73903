package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mockingbird/internal/httpserver/deps"
)

const defaultPingTimeout = 2 * time.Second

type componentStatus struct {
	OK       bool   `json:"ok"`
	Backend  string `json:"backend,omitempty"`
	Servers  *int   `json:"servers,omitempty"`
	Running  *int   `json:"running,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Impact   string `json:"impact,omitempty"`
	Error    string `json:"error,omitempty"`
	Watching *bool  `json:"watching,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		servers, running := 0, 0
		if d.Registry != nil {
			for _, st := range d.Registry.List() {
				servers++
				if st.Running {
					running++
				}
			}
		}
		watching := d.WatchEnabled

		components := map[string]componentStatus{
			"registry": {
				OK:      d.Registry != nil,
				Servers: &servers,
				Running: &running,
			},
			"store": checkStore(r.Context(), d),
			"watcher": {
				OK:       true,
				Watching: &watching,
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if registry, exists := components["registry"]; exists && !registry.OK {
		return "critical"
	}

	// Store down: servers keep answering but edits are not persisted.
	if st, exists := components["store"]; exists && !st.OK {
		return "degraded"
	}

	return "operational"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{
			OK:     true,
			Mode:   "memory",
			Impact: "persistence-disabled",
		}
	}

	pinger, ok := d.Store.(deps.Pinger)
	if !ok {
		return componentStatus{OK: true, Backend: d.Store.Name(), Mode: "optimal"}
	}

	timeout := d.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := pinger.Ping(ctx); err != nil {
		return componentStatus{
			OK:      false,
			Backend: d.Store.Name(),
			Mode:    "degraded",
			Impact:  "persistence-unavailable",
			Error:   err.Error(),
		}
	}

	return componentStatus{OK: true, Backend: d.Store.Name(), Mode: "optimal"}
}
