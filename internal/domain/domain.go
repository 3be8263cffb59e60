// Package domain contains core domain types for the study-guide backend.
package domain

import "strings"

// Tag identifies a specialist domain a question can be routed to.
type Tag string

const (
	TagIngestion   Tag = "ingestion"
	TagStorage     Tag = "storage"
	TagSecurity    Tag = "security"
	TagOperations  Tag = "operations"
	TagCoordinator Tag = "coordinator"
)

// Tags lists every tag in canonical order.
var Tags = []Tag{TagIngestion, TagStorage, TagSecurity, TagOperations, TagCoordinator}

// TopicTags lists the four topic domains in canonical order.
var TopicTags = []Tag{TagIngestion, TagStorage, TagSecurity, TagOperations}

var tagLabels = map[Tag]string{
	TagIngestion:   "Data Ingestion",
	TagStorage:     "Data Storage",
	TagSecurity:    "Security",
	TagOperations:  "Operations",
	TagCoordinator: "Course Coordinator",
}

// Label returns the human-readable name of the tag.
func (t Tag) Label() string {
	if l, ok := tagLabels[t]; ok {
		return l
	}
	return string(t)
}

// Valid reports whether t is a known tag.
func (t Tag) Valid() bool {
	_, ok := tagLabels[t]
	return ok
}

// Rank returns the position of t in canonical order, or len(Tags) if unknown.
func (t Tag) Rank() int {
	for i, known := range Tags {
		if known == t {
			return i
		}
	}
	return len(Tags)
}

// ParseTag parses a tag name case-insensitively.
func ParseTag(s string) (Tag, bool) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}
