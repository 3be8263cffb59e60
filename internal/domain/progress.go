package domain

import "maps"

// ProgressRecord is the completion state of one touched section.
type ProgressRecord struct {
	Complete  bool      `json:"complete"`
	Timestamp Timestamp `json:"timestamp"`
}

// ProgressDocument is the persisted progress state of one learner.
// A section absent from its family map is implicitly incomplete.
type ProgressDocument struct {
	StudyGuide  map[string]ProgressRecord `json:"study_guide"`
	Labs        map[string]ProgressRecord `json:"labs"`
	LastUpdated Timestamp                 `json:"last_updated"`
}

// NewProgressDocument returns an empty document stamped with lastUpdated.
func NewProgressDocument(lastUpdated Timestamp) ProgressDocument {
	return ProgressDocument{
		StudyGuide:  make(map[string]ProgressRecord),
		Labs:        make(map[string]ProgressRecord),
		LastUpdated: lastUpdated,
	}
}

// Family returns the record map for t, or nil for an unknown type.
func (d *ProgressDocument) Family(t SectionType) map[string]ProgressRecord {
	switch t {
	case SectionStudyGuide:
		if d.StudyGuide == nil {
			d.StudyGuide = make(map[string]ProgressRecord)
		}
		return d.StudyGuide
	case SectionLabs:
		if d.Labs == nil {
			d.Labs = make(map[string]ProgressRecord)
		}
		return d.Labs
	}
	return nil
}

// Clone returns a deep copy.
func (d ProgressDocument) Clone() ProgressDocument {
	out := ProgressDocument{
		StudyGuide:  maps.Clone(d.StudyGuide),
		Labs:        maps.Clone(d.Labs),
		LastUpdated: d.LastUpdated,
	}
	if out.StudyGuide == nil {
		out.StudyGuide = make(map[string]ProgressRecord)
	}
	if out.Labs == nil {
		out.Labs = make(map[string]ProgressRecord)
	}
	return out
}

// Len returns the number of touched sections across both families.
func (d ProgressDocument) Len() int {
	return len(d.StudyGuide) + len(d.Labs)
}
