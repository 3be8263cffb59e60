// Package recommend derives "what to study next" from learner progress and
// the curriculum order.
package recommend

import (
	"fmt"
	"strings"

	"github.com/ashureev/studyguide/internal/curriculum"
	"github.com/ashureev/studyguide/internal/domain"
	"github.com/ashureev/studyguide/internal/progress"
)

// MaxRecommendations caps the list returned by Next.
const MaxRecommendations = 5

// Kind tags a recommendation.
type Kind string

const (
	KindStudy    Kind = "study"
	KindLab      Kind = "lab"
	KindTip      Kind = "tip"
	KindComplete Kind = "complete"
)

// Recommendation is one suggested next step.
type Recommendation struct {
	Kind        Kind               `json:"kind"`
	SectionType domain.SectionType `json:"section_type,omitempty"`
	SectionID   string             `json:"section_id,omitempty"`
	Title       string             `json:"title,omitempty"`
	Text        string             `json:"text"`
}

// ProgressReader is the read side of the progress store.
type ProgressReader interface {
	IsComplete(t domain.SectionType, id string) bool
	CompletionPercentage(t domain.SectionType) float64
}

// Tip thresholds on overall completion percentage.
var tips = []struct {
	below float64
	text  string
}{
	{25, "You're just getting started. Work through the study guide domains in order before diving into the labs."},
	{50, "Good momentum. Pair each completed domain with its hands-on labs to reinforce the concepts."},
	{75, "You're past the halfway mark. Revisit your weakest domain and start taking practice questions."},
}

const finalTip = "You're nearly there. Review the exam preparation tips and take a full-length practice exam."

const congratulations = "Congratulations! You've completed every study guide section and lab. You're ready to schedule your AWS Certified Data Engineer exam."

// Next returns at most MaxRecommendations suggestions: the first incomplete
// study section, the first incomplete lab of every completed topic domain,
// then one tip. A fully completed curriculum yields a single congratulation.
func Next(p ProgressReader, c *curriculum.Curriculum) []Recommendation {
	if allComplete(p, c) {
		return []Recommendation{{Kind: KindComplete, Text: congratulations}}
	}

	var out []Recommendation
	for _, s := range c.StudyGuide {
		if p.IsComplete(domain.SectionStudyGuide, s.ID) {
			continue
		}
		title := c.DisplayTitle(domain.SectionStudyGuide, s.ID)
		out = append(out, Recommendation{
			Kind:        KindStudy,
			SectionType: domain.SectionStudyGuide,
			SectionID:   s.ID,
			Title:       title,
			Text:        "Continue with " + title,
		})
		break
	}

	for _, ts := range c.TopicSections() {
		if !p.IsComplete(domain.SectionStudyGuide, ts.ID) {
			continue
		}
		for _, lab := range c.LabsFor(ts.ID) {
			if p.IsComplete(domain.SectionLabs, lab.ID) {
				continue
			}
			title := c.DisplayTitle(domain.SectionLabs, lab.ID)
			out = append(out, Recommendation{
				Kind:        KindLab,
				SectionType: domain.SectionLabs,
				SectionID:   lab.ID,
				Title:       title,
				Text:        fmt.Sprintf("Try %s to practice %s", title, ts.Title),
			})
			break
		}
	}

	out = append(out, Recommendation{Kind: KindTip, Text: Tip(p.CompletionPercentage(""))})

	if len(out) > MaxRecommendations {
		out = out[:MaxRecommendations]
	}
	return out
}

// Tip picks the motivational tip for an overall completion percentage.
func Tip(percent float64) string {
	for _, t := range tips {
		if percent < t.below {
			return t.text
		}
	}
	return finalTip
}

func allComplete(p ProgressReader, c *curriculum.Curriculum) bool {
	for _, s := range c.StudyGuide {
		if !p.IsComplete(domain.SectionStudyGuide, s.ID) {
			return false
		}
	}
	for _, l := range c.Labs {
		if !p.IsComplete(domain.SectionLabs, l.ID) {
			return false
		}
	}
	return true
}

// Briefing renders progress and recommendations as plain text for the
// coordinator's prompt context.
func Briefing(sum progress.Summary, recs []Recommendation, c *curriculum.Curriculum) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Learner progress (%s basis): %.0f%% overall, %.0f%% of study guide, %.0f%% of labs.\n",
		sum.Basis, sum.Overall, sum.StudyGuide, sum.Labs)
	fmt.Fprintf(&b, "Sections completed: %d of %d touched.\n", sum.Completed, sum.Touched)
	if sum.LastVisited != nil {
		fmt.Fprintf(&b, "Last visited: %s.\n", c.DisplayTitle(sum.LastVisited.Type, sum.LastVisited.ID))
	}
	if len(recs) > 0 {
		b.WriteString("Current recommendations:\n")
		for _, r := range recs {
			fmt.Fprintf(&b, "- %s\n", r.Text)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
