package mcptools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ashureev/studyguide/internal/curriculum"
	"github.com/ashureev/studyguide/internal/domain"
	"github.com/ashureev/studyguide/internal/progress"
	"github.com/mark3labs/mcp-go/mcp"
)

// GetProgressTool handles the get_progress MCP tool.
type GetProgressTool struct {
	progress   *progress.Store
	curriculum *curriculum.Curriculum
}

// NewGetProgressTool creates a GetProgressTool.
func NewGetProgressTool(p *progress.Store, c *curriculum.Curriculum) *GetProgressTool {
	return &GetProgressTool{progress: p, curriculum: c}
}

// Definition returns the MCP tool definition for get_progress.
func (t *GetProgressTool) Definition() mcp.Tool {
	return mcp.NewTool("get_progress",
		mcp.WithDescription(
			"Show the learner's progress through the study guide and labs: "+
				"completion percentages, completed sections and the last section visited.",
		),
		mcp.WithString("section_type",
			mcp.Description("Limit the section listing to one family"),
			mcp.Enum(string(domain.SectionStudyGuide), string(domain.SectionLabs)),
		),
	)
}

// Handle processes the get_progress tool call.
func (t *GetProgressTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	families := domain.SectionTypes
	if raw := req.GetString("section_type", ""); raw != "" {
		st, ok := domain.ParseSectionType(raw)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown section_type %q", raw)), nil
		}
		families = []domain.SectionType{st}
	}

	sum := t.progress.Summary()
	var b strings.Builder
	b.WriteString("# Study progress\n\n")
	writeSummary(&b, sum)
	if sum.LastVisited != nil {
		fmt.Fprintf(&b, "Last visited: %s\n", t.curriculum.DisplayTitle(sum.LastVisited.Type, sum.LastVisited.ID))
	}

	for _, st := range families {
		sections := t.curriculum.StudyGuide
		heading := "Study guide"
		if st == domain.SectionLabs {
			sections = t.curriculum.Labs
			heading = "Labs"
		}
		fmt.Fprintf(&b, "\n## %s\n\n", heading)
		for _, s := range sections {
			mark := " "
			if t.progress.IsComplete(st, s.ID) {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, t.curriculum.DisplayTitle(st, s.ID))
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

// UpdateProgressTool handles the update_progress MCP tool.
type UpdateProgressTool struct {
	progress   *progress.Store
	curriculum *curriculum.Curriculum
}

// NewUpdateProgressTool creates an UpdateProgressTool.
func NewUpdateProgressTool(p *progress.Store, c *curriculum.Curriculum) *UpdateProgressTool {
	return &UpdateProgressTool{progress: p, curriculum: c}
}

// Definition returns the MCP tool definition for update_progress.
func (t *UpdateProgressTool) Definition() mcp.Tool {
	return mcp.NewTool("update_progress",
		mcp.WithDescription(
			"Mark a study-guide section or lab complete (or incomplete). "+
				"Section ids come from the curriculum, e.g. 'domain1' or 'lab1_2'.",
		),
		mcp.WithString("section_type",
			mcp.Required(),
			mcp.Description("Section family"),
			mcp.Enum(string(domain.SectionStudyGuide), string(domain.SectionLabs)),
		),
		mcp.WithString("section_id",
			mcp.Required(),
			mcp.Description("Section id within the family"),
		),
		mcp.WithBoolean("complete",
			mcp.Description("Completion flag (default: true)"),
		),
	)
}

// Handle processes the update_progress tool call.
func (t *UpdateProgressTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, ok := domain.ParseSectionType(req.GetString("section_type", ""))
	if !ok {
		return mcp.NewToolResultError("'section_type' must be study_guide or labs"), nil
	}
	id := strings.TrimSpace(req.GetString("section_id", ""))
	if id == "" {
		return mcp.NewToolResultError("'section_id' is required"), nil
	}
	if !t.curriculum.Has(st, id) {
		return mcp.NewToolResultError(fmt.Sprintf("no %s section %q in the curriculum", st, id)), nil
	}
	complete := boolArg(req, "complete", true)

	if _, err := t.progress.MarkComplete(ctx, st, id, complete); err != nil {
		if errors.Is(err, progress.ErrPersist) {
			return mcp.NewToolResultError(fmt.Sprintf("progress updated but not saved: %v", err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to update progress: %v", err)), nil
	}

	state := "complete"
	if !complete {
		state = "incomplete"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Marked %s as %s. Overall progress: %s",
		t.curriculum.DisplayTitle(st, id), state, percent(t.progress.CompletionPercentage("")))), nil
}

// ResetProgressTool handles the reset_progress MCP tool.
type ResetProgressTool struct {
	progress *progress.Store
}

// NewResetProgressTool creates a ResetProgressTool.
func NewResetProgressTool(p *progress.Store) *ResetProgressTool {
	return &ResetProgressTool{progress: p}
}

// Definition returns the MCP tool definition for reset_progress.
func (t *ResetProgressTool) Definition() mcp.Tool {
	return mcp.NewTool("reset_progress",
		mcp.WithDescription("Erase all recorded progress. Requires confirm=true."),
		mcp.WithBoolean("confirm",
			mcp.Required(),
			mcp.Description("Must be true to reset"),
		),
	)
}

// Handle processes the reset_progress tool call.
func (t *ResetProgressTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !boolArg(req, "confirm", false) {
		return mcp.NewToolResultError("reset_progress requires confirm=true"), nil
	}
	if err := t.progress.Reset(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("progress reset but not saved: %v", err)), nil
	}
	return mcp.NewToolResultText("All progress has been reset."), nil
}
