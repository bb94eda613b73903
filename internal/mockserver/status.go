package mockserver

import (
	"fmt"
	"time"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
)

// ServerStatus is a read-only snapshot of one mock server.
type ServerStatus struct {
	Port      int               `json:"port"`
	Running   bool              `json:"isRunning"`
	URL       string            `json:"url"`
	StartedAt time.Time         `json:"startedAt"`
	StoppedAt *time.Time        `json:"stoppedAt,omitempty"`
	Endpoints []domain.Endpoint `json:"endpoints"`
}

// LocalURL is the base URL callers use to reach the mock server on port.
func LocalURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}
