package domain

import "strings"

// SectionType is one of the two content families tracked for progress.
type SectionType string

const (
	SectionStudyGuide SectionType = "study_guide"
	SectionLabs       SectionType = "labs"
)

// SectionTypes lists both families in persistence order.
var SectionTypes = []SectionType{SectionStudyGuide, SectionLabs}

// Valid reports whether s names a known section family.
func (s SectionType) Valid() bool {
	return s == SectionStudyGuide || s == SectionLabs
}

// ParseSectionType accepts the canonical names plus the singular "lab" and
// the hyphenated "study-guide" forms.
func ParseSectionType(s string) (SectionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "study_guide", "study-guide", "study":
		return SectionStudyGuide, true
	case "labs", "lab":
		return SectionLabs, true
	}
	return SectionType(s), false
}

// SectionKey addresses one unit of course content.
type SectionKey struct {
	Type SectionType `json:"section_type"`
	ID   string      `json:"section_id"`
}

// Less orders keys by type, then id.
func (k SectionKey) Less(other SectionKey) bool {
	if k.Type != other.Type {
		return k.Type < other.Type
	}
	return k.ID < other.ID
}

func (k SectionKey) String() string {
	return string(k.Type) + "/" + k.ID
}
