package agent

import (
	"strings"

	"github.com/ashureev/studyguide/internal/domain"
)

// Keyword tables. Matching is case-insensitive substring containment; no
// topic keyword may contain a keyword of another domain.
var (
	coordinatorKeywords = []string{
		"progress", "recommend", "course", "study plan", "study guide",
		"next lab", "what should i study", "where should i start", "what's next",
		"exam tip", "certification", "syllabus", "curriculum",
	}

	topicKeywords = map[domain.Tag][]string{
		domain.TagIngestion: {
			"ingest", "kinesis", "firehose", "glue", "crawler", "etl", "dms",
			"database migration", "msk", "kafka", "transfer family", "datasync",
			"appflow", "streaming", "data stream", "cdc", "change data capture",
		},
		domain.TagStorage: {
			"s3", "redshift", "dynamodb", "rds", "aurora", "elasticache",
			"documentdb", "neptune", "timestream", "keyspaces", "data lake",
			"warehouse", "partition", "parquet", "storage", "bucket",
			"schema design", "lifecycle",
		},
		domain.TagSecurity: {
			"iam", "lake formation", "kms", "encrypt", "macie", "cloudtrail",
			"aws config", "permission", "access control", "policy", "policies",
			"secur", "compliance", "governance", "row-level", "column-level",
			"vpc endpoint", "privacy", "pii",
		},
		domain.TagOperations: {
			"step function", "cloudwatch", "cost explorer", "trusted advisor",
			"eventbridge", "lambda", "aws batch", "orchestrat", "monitor",
			"alert", "cost", "optimiz", "schedul", "airflow", "mwaa",
			"troubleshoot", "logging", "metric",
		},
	}

	fallbackKeywords = []string{"data", "pipeline", "aws", "amazon", "service"}
)

// Router classifies questions into domain tags with static keyword tables.
type Router struct {
	coordinator []string
	topics      map[domain.Tag][]string
	fallback    []string
}

// NewRouter returns a router over the built-in keyword tables.
func NewRouter() *Router {
	return &Router{
		coordinator: coordinatorKeywords,
		topics:      topicKeywords,
		fallback:    fallbackKeywords,
	}
}

// Match records which keywords selected a tag.
type Match struct {
	Tag      domain.Tag `json:"domain"`
	Keywords []string   `json:"keywords,omitempty"`
}

// Classify returns the tags selected for question in canonical order. The
// result is never empty.
func (r *Router) Classify(question string) []domain.Tag {
	matches := r.Explain(question)
	tags := make([]domain.Tag, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m.Tag)
	}
	return tags
}

// Explain is Classify with the matching keywords attached. Fallback routes
// carry the fallback term that matched, or none for the default route.
func (r *Router) Explain(question string) []Match {
	q := strings.ToLower(question)

	if hits := matchAny(q, r.coordinator); len(hits) > 0 {
		return []Match{{Tag: domain.TagCoordinator, Keywords: hits}}
	}

	var out []Match
	for _, tag := range domain.TopicTags {
		if hits := matchAny(q, r.topics[tag]); len(hits) > 0 {
			out = append(out, Match{Tag: tag, Keywords: hits})
		}
	}
	if len(out) > 0 {
		return out
	}

	if hits := matchAny(q, r.fallback); len(hits) > 0 {
		return []Match{{Tag: domain.TagIngestion, Keywords: hits}}
	}
	return []Match{{Tag: domain.TagCoordinator}}
}

func matchAny(q string, keywords []string) []string {
	var hits []string
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}
