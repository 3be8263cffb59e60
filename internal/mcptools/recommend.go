package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashureev/studyguide/internal/curriculum"
	"github.com/ashureev/studyguide/internal/progress"
	"github.com/ashureev/studyguide/internal/recommend"
	"github.com/mark3labs/mcp-go/mcp"
)

// RecommendTool handles the get_recommendations MCP tool.
type RecommendTool struct {
	progress   *progress.Store
	curriculum *curriculum.Curriculum
}

// NewRecommendTool creates a RecommendTool.
func NewRecommendTool(p *progress.Store, c *curriculum.Curriculum) *RecommendTool {
	return &RecommendTool{progress: p, curriculum: c}
}

// Definition returns the MCP tool definition for get_recommendations.
func (t *RecommendTool) Definition() mcp.Tool {
	return mcp.NewTool("get_recommendations",
		mcp.WithDescription(
			"Suggest what to study next based on recorded progress: "+
				"the next study-guide section, labs for completed domains and a study tip.",
		),
	)
}

// Handle processes the get_recommendations tool call.
func (t *RecommendTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recs := recommend.Next(t.progress, t.curriculum)

	var b strings.Builder
	b.WriteString("# Recommended next steps\n\n")
	for i, r := range recs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Text)
	}
	return mcp.NewToolResultText(b.String()), nil
}
