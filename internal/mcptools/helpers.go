// Package mcptools exposes the study guide over the Model Context Protocol.
//
// Each tool follows the same shape:
//   - a struct holding its dependencies, built by a constructor
//   - Definition() returns the mcp.Tool schema
//   - Handle() processes one call
//
// Validation and domain failures are returned as tool errors
// (mcp.NewToolResultError) so the client sees them; the Go error return is
// reserved for failures of the transport itself.
package mcptools

import (
	"fmt"
	"strings"

	"github.com/ashureev/studyguide/internal/progress"
	"github.com/mark3labs/mcp-go/mcp"
)

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// writeSummary renders the headline progress figures.
func writeSummary(b *strings.Builder, sum progress.Summary) {
	fmt.Fprintf(b, "Overall: %s\n", percent(sum.Overall))
	fmt.Fprintf(b, "Study guide: %s\n", percent(sum.StudyGuide))
	fmt.Fprintf(b, "Labs: %s\n", percent(sum.Labs))
	fmt.Fprintf(b, "Completed: %d of %d tracked (%s basis)\n", sum.Completed, sum.Touched, sum.Basis)
}
