package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ashureev/studyguide/internal/agent"
	"github.com/mark3labs/mcp-go/mcp"
)

// Asker answers study questions. *agent.Service implements it.
type Asker interface {
	Ask(ctx context.Context, req agent.AskRequest) (*agent.Answer, error)
}

// AskTool handles the ask_question MCP tool.
type AskTool struct {
	svc Asker
}

// NewAskTool creates an AskTool.
func NewAskTool(svc Asker) *AskTool {
	return &AskTool{svc: svc}
}

// Definition returns the MCP tool definition for ask_question.
func (t *AskTool) Definition() mcp.Tool {
	return mcp.NewTool("ask_question",
		mcp.WithDescription(
			"Ask a question about the AWS Certified Data Engineer exam. "+
				"The question is routed to the matching domain specialists "+
				"(ingestion, storage, security, operations, course coordinator) "+
				"and their answers are merged into one response.",
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The learner's question"),
		),
		mcp.WithString("context",
			mcp.Description("Optional extra context passed to every specialist"),
		),
	)
}

// Handle processes the ask_question tool call.
func (t *AskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := strings.TrimSpace(req.GetString("question", ""))
	if question == "" {
		return mcp.NewToolResultError("'question' is required"), nil
	}

	answer, err := t.svc.Ask(ctx, agent.AskRequest{
		Question: question,
		Context:  req.GetString("context", ""),
	})
	if err != nil {
		if errors.Is(err, agent.ErrEmptyQuestion) {
			return mcp.NewToolResultError("'question' is required"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(answer.Text)
	fmt.Fprintf(&b, "\n\n---\n_Answered by: %s", answer.DomainLabels())
	if answer.Degraded {
		b.WriteString(" (partial: ")
		for i, f := range answer.Failures {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(f.Message)
		}
		b.WriteString(")")
	}
	b.WriteString("_")
	return mcp.NewToolResultText(b.String()), nil
}
