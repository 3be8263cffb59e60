package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ashureev/studyguide/internal/agent"
	"github.com/ashureev/studyguide/internal/curriculum"
	"github.com/ashureev/studyguide/internal/domain"
	"github.com/ashureev/studyguide/internal/llm"
	"github.com/ashureev/studyguide/internal/progress"
	"github.com/ashureev/studyguide/internal/store"
)

type brokenRepo struct {
	store.Repository
}

func (brokenRepo) Save(context.Context, domain.ProgressDocument) error { return errors.New("read-only fs") }
func (brokenRepo) Ping(context.Context) error                          { return errors.New("gone") }

type testEnv struct {
	router   http.Handler
	progress *progress.Store
}

func newTestEnv(t *testing.T, gen llm.Generator, repo store.Repository, limit int) *testEnv {
	t.Helper()
	if repo == nil {
		repo = store.NewMemory()
	}
	cat, err := curriculum.Default()
	if err != nil {
		t.Fatalf("curriculum: %v", err)
	}
	var tick atomic.Int64
	clock := func() time.Time {
		return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(tick.Add(1)) * time.Second)
	}
	ps, err := progress.Open(context.Background(), repo, progress.WithClock(clock))
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	svc, err := agent.NewService(gen)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	limiter := NewRateLimiter(limit, time.Minute)
	t.Cleanup(limiter.Stop)

	base := NewHandler(ps, cat, repo, nil)
	return &testEnv{
		router: NewRouter(Routes{
			Ask:      NewAskHandler(svc, limiter, nil),
			Progress: NewProgressHandler(base),
			Status:   NewStatusHandler(base, StatusInfo{Provider: "fake", Model: "m"}),
		}),
		progress: ps,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.RemoteAddr = "198.51.100.4:1234"
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rr.Body.String(), err)
	}
	return v
}

var echoGen = llm.GeneratorFunc(func(_ context.Context, req llm.Request) (string, error) {
	return "answer to " + req.Prompt, nil
})

func TestAskEndpoint(t *testing.T) {
	env := newTestEnv(t, echoGen, nil, 10)

	rr := env.do(t, http.MethodPost, "/api/ask", `{"question":"What is a Glue crawler?"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	ans := decode[agent.Answer](t, rr)
	if ans.ID == "" {
		t.Error("answer id is empty")
	}
	if len(ans.Domains) != 1 || ans.Domains[0] != domain.TagIngestion {
		t.Errorf("domains = %v", ans.Domains)
	}
	if ans.Text != "answer to Question:\nWhat is a Glue crawler?" {
		t.Errorf("answer = %q", ans.Text)
	}
}

func TestAskEndpointErrors(t *testing.T) {
	failing := llm.GeneratorFunc(func(context.Context, llm.Request) (string, error) {
		return "", errors.New("AccessDeniedException")
	})
	env := newTestEnv(t, failing, nil, 10)

	rr := env.do(t, http.MethodPost, "/api/ask", `{"question":"  "}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("blank question status = %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/api/ask", `not json`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/api/ask", `{"question":"What is Glue?"}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("all-failed status = %d", rr.Code)
	}
	body := decode[map[string]interface{}](t, rr)
	if body["kind"] != string(agent.KindHostedService) {
		t.Errorf("kind = %v", body["kind"])
	}
	if msg, _ := body["message"].(string); !strings.HasPrefix(msg, "Error processing question:") {
		t.Errorf("message = %q", msg)
	}
}

func TestAskEndpointRateLimited(t *testing.T) {
	env := newTestEnv(t, echoGen, nil, 1)

	if rr := env.do(t, http.MethodPost, "/api/ask", `{"question":"Glue?"}`); rr.Code != http.StatusOK {
		t.Fatalf("first status = %d", rr.Code)
	}
	if rr := env.do(t, http.MethodPost, "/api/ask", `{"question":"Glue?"}`); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", rr.Code)
	}
}

func TestClassifyEndpoint(t *testing.T) {
	env := newTestEnv(t, echoGen, nil, 10)

	rr := env.do(t, http.MethodPost, "/api/classify", `{"question":"How do I set up a Kinesis stream and secure it with IAM?"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	got := decode[classifyResponse](t, rr)
	if len(got.Domains) != 2 || got.Domains[0] != domain.TagIngestion || got.Domains[1] != domain.TagSecurity {
		t.Errorf("domains = %v", got.Domains)
	}
}

func TestProgressLifecycle(t *testing.T) {
	env := newTestEnv(t, echoGen, nil, 10)

	rr := env.do(t, http.MethodPut, "/api/progress/labs/lab1_1", `{"complete":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("mark status %d: %s", rr.Code, rr.Body.String())
	}
	mark := decode[map[string]interface{}](t, rr)
	if mark["section_type"] != "labs" || mark["section_id"] != "lab1_1" || mark["complete"] != true {
		t.Errorf("mark response = %v", mark)
	}

	// Missing body means complete; "study-guide" is accepted as an alias.
	if rr := env.do(t, http.MethodPut, "/api/progress/study-guide/intro", ""); rr.Code != http.StatusOK {
		t.Fatalf("alias mark status %d: %s", rr.Code, rr.Body.String())
	}
	if !env.progress.IsComplete(domain.SectionStudyGuide, "intro") {
		t.Error("intro should be complete")
	}

	rr = env.do(t, http.MethodPut, "/api/progress/labs/lab1_2", `{"complete":false}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("incomplete mark status %d", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/api/progress", "")
	got := decode[progressResponse](t, rr)
	if got.Summary.Touched != 3 || got.Summary.Completed != 2 {
		t.Errorf("summary = %+v", got.Summary)
	}
	if got.Summary.LastVisited == nil || got.Summary.LastVisited.ID != "lab1_2" {
		t.Errorf("last visited = %+v", got.Summary.LastVisited)
	}
	if !got.Progress.Labs["lab1_1"].Complete {
		t.Error("lab1_1 should be complete in the document")
	}

	rr = env.do(t, http.MethodDelete, "/api/progress", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("reset status %d", rr.Code)
	}
	if env.progress.CompletionPercentage("") != 0 {
		t.Error("reset should clear progress")
	}
}

func TestMarkSectionEmptyChunkedBody(t *testing.T) {
	env := newTestEnv(t, echoGen, nil, 10)

	for _, tc := range []struct {
		id   string
		body string
	}{
		{"lab1_1", ""},
		{"lab1_2", "  \n"},
	} {
		req := httptest.NewRequest(http.MethodPut, "/api/progress/labs/"+tc.id, io.NopCloser(strings.NewReader(tc.body)))
		req.ContentLength = -1
		req.TransferEncoding = []string{"chunked"}
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status %d: %s", tc.id, rr.Code, rr.Body.String())
		}
		if !env.progress.IsComplete(domain.SectionLabs, tc.id) {
			t.Errorf("%s should default to complete", tc.id)
		}
	}
}

func TestProgressValidation(t *testing.T) {
	env := newTestEnv(t, echoGen, nil, 10)

	if rr := env.do(t, http.MethodPut, "/api/progress/videos/x", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown type status = %d", rr.Code)
	}
	if rr := env.do(t, http.MethodPut, "/api/progress/labs/lab9_9", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown section status = %d", rr.Code)
	}
	if rr := env.do(t, http.MethodPut, "/api/progress/labs/lab1_1", "{"); rr.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d", rr.Code)
	}
}

func TestProgressPersistFailure(t *testing.T) {
	env := newTestEnv(t, echoGen, brokenRepo{Repository: store.NewMemory()}, 10)

	rr := env.do(t, http.MethodPut, "/api/progress/labs/lab1_1", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if !env.progress.IsComplete(domain.SectionLabs, "lab1_1") {
		t.Error("in-memory mutation should survive a persist failure")
	}

	rr = env.do(t, http.MethodGet, "/api/status", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status endpoint = %d", rr.Code)
	}
}

func TestRecommendationsAndCurriculum(t *testing.T) {
	env := newTestEnv(t, echoGen, nil, 10)
	env.do(t, http.MethodPut, "/api/progress/study_guide/intro", "")
	env.do(t, http.MethodPut, "/api/progress/study_guide/domain1", "")

	rr := env.do(t, http.MethodGet, "/api/recommendations", "")
	recs := decode[map[string][]map[string]interface{}](t, rr)["recommendations"]
	if len(recs) != 3 {
		t.Fatalf("recommendations = %v", recs)
	}
	if recs[0]["section_id"] != "domain2" || recs[1]["section_id"] != "lab1_1" || recs[2]["kind"] != "tip" {
		t.Errorf("recommendations = %v", recs)
	}

	rr = env.do(t, http.MethodGet, "/api/curriculum", "")
	cat := decode[map[string][]curriculumEntry](t, rr)
	if len(cat["study_guide"]) != 6 || len(cat["labs"]) != 15 {
		t.Fatalf("curriculum sizes %d/%d", len(cat["study_guide"]), len(cat["labs"]))
	}
	if !cat["study_guide"][1].Complete || cat["study_guide"][1].DisplayTitle != "Domain 1: Data Ingestion and Transformation" {
		t.Errorf("domain1 entry = %+v", cat["study_guide"][1])
	}
}

func TestStatusAndHeartbeat(t *testing.T) {
	env := newTestEnv(t, echoGen, nil, 10)

	rr := env.do(t, http.MethodGet, "/api/status", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decode[map[string]interface{}](t, rr)
	if body["status"] != "healthy" {
		t.Errorf("body = %v", body)
	}

	if rr := env.do(t, http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("heartbeat = %d", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/nope", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown route = %d", rr.Code)
	}
}
