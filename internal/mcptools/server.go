package mcptools

import (
	"github.com/ashureev/studyguide/internal/curriculum"
	"github.com/ashureev/studyguide/internal/progress"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported to MCP clients during initialization.
const Version = "0.1.0"

// Deps are the components the MCP tools operate on.
type Deps struct {
	Asker      Asker
	Progress   *progress.Store
	Curriculum *curriculum.Curriculum
}

// NewServer builds the MCP server with every study-guide tool registered.
func NewServer(d Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"studyguide",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	ask := NewAskTool(d.Asker)
	s.AddTool(ask.Definition(), ask.Handle)

	getProgress := NewGetProgressTool(d.Progress, d.Curriculum)
	s.AddTool(getProgress.Definition(), getProgress.Handle)

	update := NewUpdateProgressTool(d.Progress, d.Curriculum)
	s.AddTool(update.Definition(), update.Handle)

	recs := NewRecommendTool(d.Progress, d.Curriculum)
	s.AddTool(recs.Definition(), recs.Handle)

	reset := NewResetProgressTool(d.Progress)
	s.AddTool(reset.Definition(), reset.Handle)

	return s
}

const instructions = `You have access to an AWS Certified Data Engineer study guide.

Use ask_question for exam topics; it routes to domain specialists and merges their answers.
Use get_progress and get_recommendations before suggesting what to study next.
Call update_progress when the learner says they finished a section or lab.
Only call reset_progress when the learner explicitly asks to start over.`
