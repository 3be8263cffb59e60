// Package agent routes learner questions to domain specialists and merges
// their answers.
package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ashureev/studyguide/internal/domain"
)

// ErrEmptyQuestion is wrapped by the invalid_input error for blank questions.
var ErrEmptyQuestion = errors.New("question is empty")

// ErrorKind classifies failures surfaced by the question pipeline.
type ErrorKind string

const (
	// KindHostedService is a failed call to the hosted model.
	KindHostedService ErrorKind = "hosted_service"
	// KindSynthesis marks a merge call that failed and fell back to concatenation.
	KindSynthesis ErrorKind = "synthesis"
	// KindInvalidInput is a request the pipeline refuses to run.
	KindInvalidInput ErrorKind = "invalid_input"
)

// Error is a pipeline failure tagged with its kind and, when known, the
// specialist domain that produced it. Its message keeps the user-facing
// "Error processing question: ..." form.
type Error struct {
	Kind   ErrorKind
	Domain domain.Tag
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return "Error processing question: " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// AskRequest is one learner question with optional extra context.
type AskRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

// SpecialistResponse is one handler's answer, labeled with its domain.
type SpecialistResponse struct {
	Domain domain.Tag `json:"domain"`
	Label  string     `json:"label"`
	Text   string     `json:"text"`
}

// Failure describes a handler or synthesis failure in an Answer.
type Failure struct {
	Domain  domain.Tag `json:"domain,omitempty"`
	Kind    ErrorKind  `json:"kind"`
	Message string     `json:"message"`
}

func failureFrom(err error) Failure {
	var e *Error
	if errors.As(err, &e) {
		return Failure{Domain: e.Domain, Kind: e.Kind, Message: e.Error()}
	}
	return Failure{Kind: KindHostedService, Message: err.Error()}
}

// Answer is the result of one Ask.
type Answer struct {
	ID        string               `json:"id"`
	Question  string               `json:"question"`
	Domains   []domain.Tag         `json:"domains"`
	Text      string               `json:"answer"`
	Responses []SpecialistResponse `json:"responses"`
	Degraded  bool                 `json:"degraded"`
	Failures  []Failure            `json:"errors,omitempty"`
}

// DomainLabels renders the routed domains for display, e.g. "Data Ingestion, Security".
func (a *Answer) DomainLabels() string {
	labels := make([]string, 0, len(a.Domains))
	for _, d := range a.Domains {
		labels = append(labels, d.Label())
	}
	return strings.Join(labels, ", ")
}

func (a *Answer) String() string {
	return fmt.Sprintf("[%s] %s", a.DomainLabels(), a.Text)
}
