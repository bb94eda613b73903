// Package formatting renders route tables for humans (MCP tool results and the CLI).
package formatting

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
)

// NoEndpoints is printed in place of an empty table.
const NoEndpoints = "No endpoints configured"

// Flags returns the "[Error: ON]" / "[Delay: 100ms]" markers of ep, space separated.
func Flags(ep domain.Endpoint) string {
	var parts []string
	if ep.ErrorResponse != nil {
		state := "OFF"
		if ep.ErrorResponse.Enabled {
			state = "ON"
		}
		parts = append(parts, fmt.Sprintf("[Error: %s]", state))
	}
	if ep.Delay > 0 {
		parts = append(parts, fmt.Sprintf("[Delay: %dms]", ep.Delay))
	}
	return strings.Join(parts, " ")
}

// EndpointLine is the one-line form "GET /ping → 200 [Error: OFF]".
func EndpointLine(ep domain.Endpoint) string {
	line := fmt.Sprintf("%s %s → %d", ep.Method, ep.Path, ep.Response.Status)
	if flags := Flags(ep); flags != "" {
		line += " " + flags
	}
	return line
}

// EndpointTable renders eps as a table, or NoEndpoints when empty.
func EndpointTable(eps []domain.Endpoint) string {
	if len(eps) == 0 {
		return NoEndpoints
	}

	t := newTable()
	t.AppendHeader(table.Row{"METHOD", "PATH", "STATUS", "FLAGS"})
	for _, ep := range eps {
		t.AppendRow(table.Row{ep.Method, ep.Path, strconv.Itoa(ep.Response.Status), Flags(ep)})
	}
	return t.Render()
}

// ServerRow is the summary of one server used by ServerTable.
type ServerRow struct {
	Port      int
	State     string
	URL       string
	Endpoints int
}

// ServerTable renders one summary row per server.
func ServerTable(rows []ServerRow) string {
	t := newTable()
	t.AppendHeader(table.Row{"PORT", "STATE", "URL", "ENDPOINTS"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Port, r.State, r.URL, r.Endpoints})
	}
	return t.Render()
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}
