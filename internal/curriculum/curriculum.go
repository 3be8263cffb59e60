// Package curriculum holds the fixed, ordered catalog of study-guide sections
// and labs. The catalog is read once at startup and never mutated.
package curriculum

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ashureev/studyguide/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed curriculum.yaml
var defaultCatalog []byte

// Section is one addressable unit of course content.
type Section struct {
	ID     string     `yaml:"id" json:"id"`
	Title  string     `yaml:"title" json:"title"`
	File   string     `yaml:"file" json:"file,omitempty"`
	Weight string     `yaml:"weight,omitempty" json:"weight,omitempty"`
	Topic  domain.Tag `yaml:"topic,omitempty" json:"topic,omitempty"`   // study sections only
	Domain string     `yaml:"domain,omitempty" json:"domain,omitempty"` // labs only: owning study section
}

// Curriculum is the ordered catalog.
type Curriculum struct {
	StudyGuide []Section `yaml:"study_guide" json:"study_guide"`
	Labs       []Section `yaml:"labs" json:"labs"`

	index map[domain.SectionKey]int
}

// Default returns the embedded course catalog.
func Default() (*Curriculum, error) {
	c, err := Parse(defaultCatalog)
	if err != nil {
		return nil, fmt.Errorf("curriculum: embedded catalog: %w", err)
	}
	return c, nil
}

// Parse decodes and validates a catalog from YAML bytes.
func Parse(data []byte) (*Curriculum, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("curriculum: catalog is empty")
	}
	var c Curriculum
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("curriculum: decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadReader reads a catalog from r.
func LoadReader(r io.Reader) (*Curriculum, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("curriculum: read catalog: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (*Curriculum, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("curriculum: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("curriculum: %s: %w", path, err)
	}
	return c, nil
}

// Load returns the catalog at path, or the embedded default when path is empty.
func Load(path string) (*Curriculum, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

func (c *Curriculum) validate() error {
	if len(c.StudyGuide) == 0 {
		return fmt.Errorf("curriculum: no study-guide sections")
	}
	c.index = make(map[domain.SectionKey]int, len(c.StudyGuide)+len(c.Labs))
	topics := make(map[domain.Tag]string)

	for i, s := range c.StudyGuide {
		if s.ID == "" {
			return fmt.Errorf("curriculum: study section %d has no id", i)
		}
		key := domain.SectionKey{Type: domain.SectionStudyGuide, ID: s.ID}
		if _, dup := c.index[key]; dup {
			return fmt.Errorf("curriculum: duplicate study section %q", s.ID)
		}
		c.index[key] = i
		if s.Topic == "" {
			continue
		}
		if !s.Topic.Valid() || s.Topic == domain.TagCoordinator {
			return fmt.Errorf("curriculum: study section %q has unknown topic %q", s.ID, s.Topic)
		}
		if other, dup := topics[s.Topic]; dup {
			return fmt.Errorf("curriculum: topic %q claimed by both %q and %q", s.Topic, other, s.ID)
		}
		topics[s.Topic] = s.ID
	}

	for i, l := range c.Labs {
		if l.ID == "" {
			return fmt.Errorf("curriculum: lab %d has no id", i)
		}
		key := domain.SectionKey{Type: domain.SectionLabs, ID: l.ID}
		if _, dup := c.index[key]; dup {
			return fmt.Errorf("curriculum: duplicate lab %q", l.ID)
		}
		owner, ok := c.Lookup(domain.SectionStudyGuide, l.Domain)
		if !ok || owner.Topic == "" {
			return fmt.Errorf("curriculum: lab %q references unknown domain %q", l.ID, l.Domain)
		}
		c.index[key] = i
	}
	return nil
}

// Lookup finds a section by type and id.
func (c *Curriculum) Lookup(t domain.SectionType, id string) (Section, bool) {
	i, ok := c.index[domain.SectionKey{Type: t, ID: id}]
	if !ok {
		return Section{}, false
	}
	if t == domain.SectionLabs {
		return c.Labs[i], true
	}
	return c.StudyGuide[i], true
}

// Has reports whether the section exists.
func (c *Curriculum) Has(t domain.SectionType, id string) bool {
	_, ok := c.Lookup(t, id)
	return ok
}

// Count returns the number of sections of type t; "" counts both families.
func (c *Curriculum) Count(t domain.SectionType) int {
	switch t {
	case domain.SectionStudyGuide:
		return len(c.StudyGuide)
	case domain.SectionLabs:
		return len(c.Labs)
	case "":
		return len(c.StudyGuide) + len(c.Labs)
	}
	return 0
}

// Counts returns per-family section counts.
func (c *Curriculum) Counts() map[domain.SectionType]int {
	return map[domain.SectionType]int{
		domain.SectionStudyGuide: len(c.StudyGuide),
		domain.SectionLabs:       len(c.Labs),
	}
}

// TopicSections returns the study sections bound to a topic domain, in order.
func (c *Curriculum) TopicSections() []Section {
	var out []Section
	for _, s := range c.StudyGuide {
		if s.Topic != "" {
			out = append(out, s)
		}
	}
	return out
}

// LabsFor returns the labs owned by the study section domainID, in order.
func (c *Curriculum) LabsFor(domainID string) []Section {
	var out []Section
	for _, l := range c.Labs {
		if l.Domain == domainID {
			out = append(out, l)
		}
	}
	return out
}

// SectionForTopic returns the study section bound to tag.
func (c *Curriculum) SectionForTopic(tag domain.Tag) (Section, bool) {
	for _, s := range c.StudyGuide {
		if s.Topic == tag {
			return s, true
		}
	}
	return Section{}, false
}

// DisplayTitle renders a section heading, e.g. "Domain 1: Data Ingestion ..."
// or "LAB1_2: Streaming Data with Amazon Kinesis".
func (c *Curriculum) DisplayTitle(t domain.SectionType, id string) string {
	s, ok := c.Lookup(t, id)
	if !ok {
		return id
	}
	if t == domain.SectionLabs {
		return fmt.Sprintf("%s: %s", strings.ToUpper(s.ID), s.Title)
	}
	if s.Topic != "" {
		for i, ts := range c.TopicSections() {
			if ts.ID == s.ID {
				return fmt.Sprintf("Domain %d: %s", i+1, s.Title)
			}
		}
	}
	return s.Title
}

